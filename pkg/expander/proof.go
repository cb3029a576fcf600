package expander

import (
	"fmt"
	"io"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/gkr"
	"github.com/vybium/expander/internal/expander/pcs"
	"github.com/vybium/expander/internal/expander/pcs/hyrax"
	"github.com/vybium/expander/internal/expander/pcs/orion"
)

// Proof is the GKR sum-check transcript together with the polynomial
// commitment and opening binding its final layer-0 claim(s) to an actual
// committed witness (spec.md §1, §6, §8 Universal Invariant #1). Without
// Commitment/Opening, GKR.FinalClaim0/FinalClaim1 are only checked for
// self-consistency against the rest of the sum-check transcript — a
// prover could pick any pair of final claims with a valid sum-check fold
// and Verify's GKR replay alone would accept it, independent of whether a
// real witness producing the claimed output existed.
type Proof struct {
	GKR *gkr.Proof

	PCS        PCSKind
	Commitment pcs.Commitment
	// Opening is the PCS scheme's opening proof at the single point the
	// final claim(s) were checked against: FinalPoint0 directly when
	// layer 0 has no mul gates, or the point Reduction combines
	// FinalPoint0/FinalPoint1 into otherwise.
	Opening any
	// Reduction is non-nil only when GKR.HasFinalClaim1: the point-
	// reduction sum-check (internal/expander/pcs/hyrax/batch.go) combining
	// FinalPoint0/FinalClaim0 and FinalPoint1/FinalClaim1 into the single
	// point/claim Opening was produced for. ReducePoints/VerifyReduction
	// are PCS-scheme agnostic (they operate on the raw polynomial, not any
	// commitment), so this is used regardless of which scheme PCS names.
	Reduction *hyrax.ReductionProof
}

func writeCommitment(w io.Writer, kind PCSKind, c pcs.Commitment) error {
	switch kind {
	case PCSOrion:
		return orion.WriteCommitment(w, c)
	case PCSHyrax:
		return hyrax.WriteCommitment(w, c)
	default:
		return fmt.Errorf("expander: unknown PCS kind %v", kind)
	}
}

func readCommitment(r io.Reader, kind PCSKind) (pcs.Commitment, error) {
	switch kind {
	case PCSOrion:
		return orion.ReadCommitment(r)
	case PCSHyrax:
		return hyrax.ReadCommitment(r)
	default:
		return nil, fmt.Errorf("expander: unknown PCS kind %v", kind)
	}
}

func writeOpening(w io.Writer, kind PCSKind, opening any) error {
	switch kind {
	case PCSOrion:
		return orion.WriteOpening(w, opening)
	case PCSHyrax:
		return hyrax.WriteOpening(w, opening)
	default:
		return fmt.Errorf("expander: unknown PCS kind %v", kind)
	}
}

func readOpening(r io.Reader, kind PCSKind, fld field.Field) (any, error) {
	switch kind {
	case PCSOrion:
		return orion.ReadOpening(r, fld)
	case PCSHyrax:
		return hyrax.ReadOpening(r, fld)
	default:
		return nil, fmt.Errorf("expander: unknown PCS kind %v", kind)
	}
}

func writeReduction(w io.Writer, rp *hyrax.ReductionProof) error {
	if err := writeElementMatrix(w, rp.RoundEvals); err != nil {
		return err
	}
	return writeElement(w, rp.FinalClaimedEval)
}

func readReduction(r io.Reader, fld field.Field) (*hyrax.ReductionProof, error) {
	roundEvals, err := readElementMatrix(r, fld)
	if err != nil {
		return nil, err
	}
	finalClaimedEval, err := readElement(r, fld)
	if err != nil {
		return nil, err
	}
	return &hyrax.ReductionProof{RoundEvals: roundEvals, FinalClaimedEval: finalClaimedEval}, nil
}

// WriteProof serializes proof to w: the PCS kind, the commitment bytes,
// the GKR sum-check transcript, the point-reduction proof (when present),
// and finally the PCS opening — spec.md §6's "prefixed by the commitment
// bytes ... followed by the PCS opening".
func WriteProof(w io.Writer, proof *Proof) error {
	if err := writeU64(w, uint64(proof.PCS)); err != nil {
		return err
	}
	if err := writeCommitment(w, proof.PCS, proof.Commitment); err != nil {
		return fmt.Errorf("expander: writing commitment: %w", err)
	}
	if err := gkr.WriteProof(w, proof.GKR); err != nil {
		return fmt.Errorf("expander: writing GKR proof: %w", err)
	}
	if proof.GKR.HasFinalClaim1 {
		if err := writeReduction(w, proof.Reduction); err != nil {
			return fmt.Errorf("expander: writing point-reduction proof: %w", err)
		}
	}
	if err := writeOpening(w, proof.PCS, proof.Opening); err != nil {
		return fmt.Errorf("expander: writing PCS opening: %w", err)
	}
	return nil
}

// ReadProof deserializes a Proof written by WriteProof.
func ReadProof(r io.Reader, fld field.Field) (*Proof, error) {
	kindU, err := readU64(r)
	if err != nil {
		return nil, err
	}
	kind := PCSKind(kindU)

	commitment, err := readCommitment(r, kind)
	if err != nil {
		return nil, fmt.Errorf("expander: reading commitment: %w", err)
	}

	gkrProof, err := gkr.ReadProof(r, fld)
	if err != nil {
		return nil, fmt.Errorf("expander: reading GKR proof: %w", err)
	}

	var reduction *hyrax.ReductionProof
	if gkrProof.HasFinalClaim1 {
		if reduction, err = readReduction(r, fld); err != nil {
			return nil, fmt.Errorf("expander: reading point-reduction proof: %w", err)
		}
	}

	opening, err := readOpening(r, kind, fld)
	if err != nil {
		return nil, fmt.Errorf("expander: reading PCS opening: %w", err)
	}

	return &Proof{GKR: gkrProof, PCS: kind, Commitment: commitment, Opening: opening, Reduction: reduction}, nil
}
