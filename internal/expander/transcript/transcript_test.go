package transcript

import (
	"testing"

	"github.com/vybium/expander/internal/expander/field"
)

func TestLockUnlockExcludesFromProofStream(t *testing.T) {
	f := field.NewM31()
	tr := New(f, SHA256Hasher{})

	tr.AppendBytes([]byte("visible"))

	stateBefore := tr.HashAndReturnState()

	tr.LockProof()
	tr.AppendBytes([]byte("hidden-commitment"))
	tr.UnlockProof()

	stateAfter := tr.HashAndReturnState()

	if string(stateBefore) == string(stateAfter) {
		t.Fatal("locked append should still perturb transcript state")
	}

	proof := tr.ProofBytes()
	if string(proof) != "visible" {
		t.Fatalf("proof stream should only contain unlocked data, got %q", proof)
	}
}

func TestSetStateSynchronizesTranscripts(t *testing.T) {
	f := field.NewM31()
	root := New(f, SHA256Hasher{})
	other := New(f, SHA256Hasher{})

	root.AppendBytes([]byte("round1"))
	other.AppendBytes([]byte("round1-but-different"))

	// Before sync, states differ...
	if string(root.HashAndReturnState()) == string(other.HashAndReturnState()) {
		t.Fatal("states should differ before sync")
	}

	// ... and after SetState, subsequent challenges match.
	other.SetState(root.State())
	rootState := root.HashAndReturnState()
	otherState := other.HashAndReturnState()
	if string(rootState) != string(otherState) {
		t.Fatal("states should match immediately after SetState")
	}

	rootChallenge := root.ChallengeField()
	otherChallenge := other.ChallengeField()
	if !rootChallenge.Equal(otherChallenge) {
		t.Fatal("synced transcripts should squeeze identical challenges")
	}
}

func TestChallengeIndexInRange(t *testing.T) {
	f := field.NewM31()
	tr := New(f, Sha3Hasher{})
	tr.AppendBytes([]byte("seed"))

	for i := 0; i < 100; i++ {
		idx, err := tr.ChallengeIndex(17)
		if err != nil {
			t.Fatalf("ChallengeIndex: %v", err)
		}
		if idx < 0 || idx >= 17 {
			t.Fatalf("challenge index %d out of range [0,17)", idx)
		}
	}
}

func TestChallengeBitsLength(t *testing.T) {
	f := field.NewM31()
	tr := New(f, KeccakHasher{})
	tr.AppendBytes([]byte("seed"))

	bits := tr.ChallengeBits(13)
	if len(bits) != 13 {
		t.Fatalf("got %d bits, want 13", len(bits))
	}
}
