// Package pcs defines the generic multilinear polynomial commitment scheme
// contract (spec.md §4.F) that the GKR driver's final opening point/claim is
// handed to, plus its MPI-aware extension (spec.md §4.D "Distributed (MPI)
// aggregation"). Concrete schemes (Orion, Hyrax) live in their own
// subpackages and both satisfy this contract, demonstrating it is not
// Orion-specific.
//
// Grounded on the teacher's pkg/vybium-starks-vm/vm.go re-export pattern of
// naming a capability as an interface first and letting concrete types
// satisfy it structurally.
package pcs

import (
	"io"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/mpi"
	"github.com/vybium/expander/internal/expander/transcript"
)

// Commitment is an opaque binding to a committed multilinear polynomial.
type Commitment interface {
	// Bytes returns the canonical serialization appended to the transcript
	// and the emitted proof stream.
	Bytes() []byte
}

// MultilinearPCS is the contract spec.md §4.F names: commit once, open at
// many points, verify each opening independently of the others.
type MultilinearPCS interface {
	// Commit binds polynomial (its 2^n evaluations on the Boolean
	// hypercube) to a Commitment.
	Commit(fld field.Field, polynomial []field.Element) (Commitment, error)

	// Open produces the claimed evaluation at point and a scheme-specific
	// opening proof, squeezing any scheme-internal randomness from tr.
	Open(fld field.Field, polynomial []field.Element, commitment Commitment, point []field.Element, tr *transcript.Transcript) (claimedEval field.Element, opening any, err error)

	// Verify checks an opening against a commitment, point and claimed
	// evaluation, squeezing the same scheme-internal randomness from tr in
	// the same order Open did.
	Verify(fld field.Field, commitment Commitment, point []field.Element, claimedEval field.Element, opening any, tr *transcript.Transcript) (bool, error)
}

// CommitmentCodec is implemented by MultilinearPCS schemes that know how to
// serialize their own Commitment and opening values, so a caller assembling
// a proof stream (spec.md §6: "prefixed by the commitment bytes... followed
// by the PCS opening") can persist either without depending on which
// concrete scheme (Orion, Hyrax) produced them.
type CommitmentCodec interface {
	WriteCommitment(w io.Writer, c Commitment) error
	ReadCommitment(r io.Reader) (Commitment, error)
	WriteOpening(w io.Writer, opening any) error
	ReadOpening(r io.Reader, fld field.Field) (any, error)
}

// MultilinearPCSForMPI extends MultilinearPCS with rank-aware commit/open:
// every rank contributes its local polynomial shard, and the root alone
// emits an aggregated Commitment/opening (spec.md §4.D's "only the root's
// aggregated proof is emitted").
type MultilinearPCSForMPI interface {
	MultilinearPCS

	CommitMPI(fld field.Field, mpiConfig *mpi.Config, localPolynomial []field.Element) (Commitment, error)
	OpenMPI(fld field.Field, mpiConfig *mpi.Config, localPolynomial []field.Element, commitment Commitment, point []field.Element, tr *transcript.Transcript) (claimedEval field.Element, opening any, err error)
}
