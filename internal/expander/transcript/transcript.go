// Package transcript implements the Fiat-Shamir contract (spec.md §3.4): a
// stateful object absorbing bytes/field elements and squeezing challenges,
// with a lock/unlock mechanism for data (like commitments) that must feed
// the hash state without being re-recorded in the emitted proof stream.
//
// Grounded on the teacher's internal/vybium-starks-vm/protocols/proof_stream.go,
// whose Enqueue/Dequeue pair plus IncludeInFiatShamirHeuristic gate is this
// package's lock/unlock mechanism under a different name, and
// utils/channel.go's Send/ReceiveRandomInt absorb-then-squeeze pattern.
package transcript

import (
	"fmt"

	"github.com/vybium/expander/internal/expander/field"
)

// Hasher is the pluggable digest function behind a transcript: it must be a
// fixed-output-length, collision-resistant compression of a byte string.
type Hasher interface {
	// Hash returns digest(data), not retaining a reference to data.
	Hash(data []byte) []byte
	// Size is the digest length in bytes.
	Size() int
}

// Transcript is a Fiat-Shamir transcript over a fixed field.
type Transcript struct {
	hasher Hasher
	fld    field.Field

	state []byte
	// proof accumulates the emitted bytes of the proof stream; appends made
	// while locked feed state but are not appended here.
	proof []byte
	// locked, when true, means AppendBytes/AppendField still hash but do
	// not grow proof — the lock_proof/unlock_proof contract of spec.md §3.4.
	locked bool
}

// New creates a transcript over the given field using the given hasher.
func New(fld field.Field, hasher Hasher) *Transcript {
	return &Transcript{
		hasher: hasher,
		fld:    fld,
		state:  make([]byte, hasher.Size()),
	}
}

// LockProof begins a scope in which appended data updates the hash state
// but is not recorded in the emitted proof stream (used for data the
// verifier already has, such as a commitment sent out-of-band).
func (t *Transcript) LockProof() { t.locked = true }

// UnlockProof ends a LockProof scope.
func (t *Transcript) UnlockProof() { t.locked = false }

// AppendBytes absorbs raw bytes into the transcript state.
func (t *Transcript) AppendBytes(data []byte) {
	t.state = t.hasher.Hash(append(append([]byte{}, t.state...), data...))
	if !t.locked {
		t.proof = append(t.proof, data...)
	}
}

// AppendField absorbs a field element's canonical serialization.
func (t *Transcript) AppendField(e field.Element) {
	t.AppendBytes(e.Bytes())
}

// ChallengeField squeezes one field element's worth of randomness.
func (t *Transcript) ChallengeField() field.Element {
	challenge := t.fld.FromUniformBytes(t.squeeze(t.fld.SizeBytes() * 2))
	return challenge
}

// ChallengeIndex squeezes a challenge index in [0, upperBound).
func (t *Transcript) ChallengeIndex(upperBound int) (int, error) {
	if upperBound <= 0 {
		return 0, fmt.Errorf("transcript: challenge index upper bound must be positive, got %d", upperBound)
	}
	raw := t.squeeze(8)
	var v uint64
	for _, b := range raw {
		v = v<<8 | uint64(b)
	}
	return int(v % uint64(upperBound)), nil
}

// ChallengeBits squeezes n independent challenge bits.
func (t *Transcript) ChallengeBits(n int) []bool {
	nbytes := (n + 7) / 8
	raw := t.squeeze(nbytes)
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = (raw[i/8]>>uint(i%8))&1 == 1
	}
	return out
}

// squeeze draws n fresh bytes of randomness and ratchets the transcript
// state forward so the same challenge is never produced twice.
func (t *Transcript) squeeze(n int) []byte {
	out := make([]byte, 0, n)
	counter := byte(0)
	for len(out) < n {
		block := t.hasher.Hash(append(append([]byte{}, t.state...), counter))
		out = append(out, block...)
		counter++
	}
	t.state = t.hasher.Hash(append([]byte{0x01}, t.state...))
	return out[:n]
}

// State returns a copy of the transcript's raw internal state, suitable for
// later restoring via SetState to fork an independent transcript that
// behaves identically to this one from this point forward — used by the
// parallel GKR verifier to hand each layer's goroutine its own transcript
// checkpointed at the point the sequential prover reached before that
// layer's sum-check began.
func (t *Transcript) State() []byte {
	return append([]byte{}, t.state...)
}

// HashAndReturnState hashes the current state and returns the digest,
// without mutating the transcript — used by transcript_verifier_sync (§5)
// to compare ranks' states without perturbing them.
func (t *Transcript) HashAndReturnState() []byte {
	return t.hasher.Hash(t.state)
}

// SetState forcibly overwrites the transcript's state, used by the MPI
// root to bring other ranks' transcripts back into sync after a collective
// operation so that subsequent squeezed challenges match across ranks.
func (t *Transcript) SetState(state []byte) {
	t.state = append([]byte{}, state...)
}

// ProofBytes returns the bytes emitted into the proof stream so far
// (excludes anything appended while locked).
func (t *Transcript) ProofBytes() []byte {
	return append([]byte{}, t.proof...)
}
