package mpi

import (
	"errors"
	"testing"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/transcript"
)

func TestSingleRankCoefCombineVecIsIdentity(t *testing.T) {
	f := field.NewM31()
	c := NewSingleRank()

	local := []field.Element{f.NewElementFromUint64(3), f.NewElementFromUint64(5)}
	combined, err := c.CoefCombineVec(local, f, nil)
	if err != nil {
		t.Fatalf("CoefCombineVec: %v", err)
	}
	if len(combined) != 2 || !combined[0].Equal(local[0]) || !combined[1].Equal(local[1]) {
		t.Fatalf("combined = %v, want local unchanged at world size 1", combined)
	}
}

func TestSingleRankGatherVec(t *testing.T) {
	f := field.NewM31()
	c := NewSingleRank()

	local := []field.Element{f.NewElementFromUint64(7)}
	gathered, err := c.GatherVec(local)
	if err != nil {
		t.Fatalf("GatherVec: %v", err)
	}
	if len(gathered) != 1 || len(gathered[0]) != 1 || !gathered[0][0].Equal(local[0]) {
		t.Fatalf("gathered = %v, want one rank's vector unchanged", gathered)
	}
}

func TestRootBroadcastRoundTrip(t *testing.T) {
	c := NewSingleRank()
	payload := []byte{1, 2, 3, 4}
	got, err := c.RootBroadcast(payload)
	if err != nil {
		t.Fatalf("RootBroadcast: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("RootBroadcast returned %v, want %v", got, payload)
	}
}

func TestTranscriptVerifierSyncAdoptsHashedStateAtWorldSizeOne(t *testing.T) {
	f := field.NewM31()
	c := NewSingleRank()

	tr := transcript.New(f, transcript.SHA256Hasher{})
	tr.AppendField(f.NewElementFromUint64(42))
	want := tr.HashAndReturnState()

	if err := c.TranscriptVerifierSync(tr); err != nil {
		t.Fatalf("TranscriptVerifierSync: %v", err)
	}
	after := tr.State()
	if string(after) != string(want) {
		t.Fatalf("single-rank sync did not adopt the hashed state: got %x, want %x", after, want)
	}
}

func TestCoefCombineVecRejectsMismatchedRMPILength(t *testing.T) {
	f := field.NewM31()
	c := NewSingleRank()
	local := []field.Element{f.NewElementFromUint64(1)}
	// World size 1 needs zero r_mpi variables; one variable implies world
	// size 2, which the loopback transport does not provide.
	_, err := c.CoefCombineVec(local, f, []field.Element{f.NewElementFromUint64(9)})
	if err == nil {
		t.Fatal("expected an error for r_mpi length mismatched with world size")
	}
}

func TestParallelMapCollectsFirstError(t *testing.T) {
	sentinel := errors.New("boom")
	err := ParallelMap(10, 4, func(i int) error {
		if i == 7 {
			return sentinel
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected an error from ParallelMap")
	}
}

func TestParallelMapRunsEveryIndex(t *testing.T) {
	seen := make([]bool, 20)
	err := ParallelMap(len(seen), 5, func(i int) error {
		seen[i] = true
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelMap: %v", err)
	}
	for i, v := range seen {
		if !v {
			t.Fatalf("index %d was never visited", i)
		}
	}
}
