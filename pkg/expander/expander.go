// Package expander re-exports the layered-circuit GKR prover/verifier
// internals as a stable public surface, the way the teacher's
// pkg/vybium-starks-vm/vm.go re-exports its VM internals: concrete proving
// machinery stays in internal/expander/*, and this package is the only
// import path consumers outside this module should use.
package expander

import (
	"github.com/vybium/expander/internal/expander/gkr"
	"github.com/vybium/expander/internal/expander/pcs/hyrax"
	"github.com/vybium/expander/internal/expander/transcript"
)

// Prove runs the GKR sum-check prover over circuit, which must already have
// had Evaluate called on it so every layer's InputVals/OutputVals are
// populated, and binds the result to a polynomial commitment to layer 0's
// input (the witness) so the GKR transcript alone can't be trusted without
// the committed witness it claims to be about (spec.md §1, §8 Universal
// Invariant #1).
func Prove(circ *Circuit, cfg *Config) (*Proof, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(circ.Layers) == 0 {
		return nil, newError(ErrInvalidCircuit, "circuit has no layers", nil)
	}
	fld, err := cfg.Field.build()
	if err != nil {
		return nil, newError(ErrInvalidConfig, "building field", err)
	}
	hasher, err := cfg.Hasher.build()
	if err != nil {
		return nil, newError(ErrInvalidConfig, "building hasher", err)
	}

	numVars := effectiveNumVars(circ.Layers[0].InputVarNum)
	scheme, err := cfg.PCS.build(fld, numVars, cfg.SoundnessBits, hasher)
	if err != nil {
		return nil, newError(ErrInvalidConfig, "building PCS scheme", err)
	}

	witness := padWitness(fld, circ.Layers[0].InputVals)
	commitment, err := scheme.Commit(fld, witness)
	if err != nil {
		return nil, newError(ErrProveFailed, "PCS commit", err)
	}

	// The GKR transcript is seeded with the commitment bytes before any
	// sum-check round runs, so every challenge GKR squeezes is already
	// bound to the committed witness — spec.md §2's data-flow order
	// "commit input MLE (F) -> GKR driver (E) drives sum-check".
	tr := transcript.New(fld, hasher)
	tr.AppendBytes(commitment.Bytes())

	gkrProof, err := gkr.Prove(fld, circ, tr)
	if err != nil {
		return nil, newError(ErrProveFailed, "GKR prove failed", err)
	}

	proof := &Proof{GKR: gkrProof, PCS: cfg.PCS, Commitment: commitment}

	if !gkrProof.HasFinalClaim1 {
		point := padPoint(fld, gkrProof.FinalPoint0, numVars)
		openTr := openingTranscript(fld, hasher, commitment, [][]FieldElement{point}, []FieldElement{gkrProof.FinalClaim0})
		claimedEval, opening, err := scheme.Open(fld, witness, commitment, point, openTr)
		if err != nil {
			return nil, newError(ErrProveFailed, "PCS open", err)
		}
		if !claimedEval.Equal(gkrProof.FinalClaim0) {
			return nil, newError(ErrProveFailed, "PCS-opened evaluation does not match the GKR proof's final claim", nil)
		}
		proof.Opening = opening
		return proof, nil
	}

	// Layer 0 has mul gates: the sum-check left two final claims, at two
	// distinct points, about the same witness polynomial. Fold them into
	// one claim at one point first (hyrax.ReducePoints is PCS-agnostic —
	// it runs regardless of which scheme Open/Verify ultimately use), then
	// open the committed witness at that single reduced point.
	point0 := padPoint(fld, gkrProof.FinalPoint0, numVars)
	point1 := padPoint(fld, gkrProof.FinalPoint1, numVars)
	openTr := openingTranscript(fld, hasher, commitment, [][]FieldElement{point0, point1}, []FieldElement{gkrProof.FinalClaim0, gkrProof.FinalClaim1})
	newPoint, reduction, err := hyrax.ReducePoints(fld, witness, [][]FieldElement{point0, point1}, []FieldElement{gkrProof.FinalClaim0, gkrProof.FinalClaim1}, openTr)
	if err != nil {
		return nil, newError(ErrProveFailed, "reducing final claims to a single point", err)
	}
	claimedEval, opening, err := scheme.Open(fld, witness, commitment, newPoint, openTr)
	if err != nil {
		return nil, newError(ErrProveFailed, "PCS open", err)
	}
	if !claimedEval.Equal(reduction.FinalClaimedEval) {
		return nil, newError(ErrProveFailed, "PCS-opened evaluation does not match the reduced claim", nil)
	}
	proof.Opening = opening
	proof.Reduction = reduction
	return proof, nil
}

// Verify checks proof against circuit's claimed public output, replaying
// the GKR sum-check (sequentially or, per cfg.Parallel, with the per-layer
// parallel verifier) and then checking the PCS opening at the resulting
// final point(s) against proof.Commitment — without this second step, a
// proof's final claim(s) would only be checked for internal sum-check
// consistency, never against any actual committed witness.
func Verify(circ *Circuit, outputVals []FieldElement, proof *Proof, cfg *Config) (bool, error) {
	if err := cfg.Validate(); err != nil {
		return false, err
	}
	if proof.PCS != cfg.PCS {
		return false, newError(ErrVerifyFailed, "proof's PCS kind does not match Config", nil)
	}
	if len(circ.Layers) == 0 {
		return false, newError(ErrInvalidCircuit, "circuit has no layers", nil)
	}
	fld, err := cfg.Field.build()
	if err != nil {
		return false, newError(ErrInvalidConfig, "building field", err)
	}
	hasher, err := cfg.Hasher.build()
	if err != nil {
		return false, newError(ErrInvalidConfig, "building hasher", err)
	}

	numVars := effectiveNumVars(circ.Layers[0].InputVarNum)
	scheme, err := cfg.PCS.build(fld, numVars, cfg.SoundnessBits, hasher)
	if err != nil {
		return false, newError(ErrInvalidConfig, "building PCS scheme", err)
	}

	tr := transcript.New(fld, hasher)
	tr.AppendBytes(proof.Commitment.Bytes())

	if cfg.Parallel {
		if err := gkr.VerifyParallel(fld, circ, outputVals, proof.GKR, hasher, tr.State()); err != nil {
			return false, nil
		}
	} else {
		if err := gkr.Verify(fld, circ, outputVals, proof.GKR, tr); err != nil {
			return false, nil
		}
	}

	if !proof.GKR.HasFinalClaim1 {
		point := padPoint(fld, proof.GKR.FinalPoint0, numVars)
		openTr := openingTranscript(fld, hasher, proof.Commitment, [][]FieldElement{point}, []FieldElement{proof.GKR.FinalClaim0})
		ok, err := scheme.Verify(fld, proof.Commitment, point, proof.GKR.FinalClaim0, proof.Opening, openTr)
		if err != nil {
			return false, newError(ErrVerifyFailed, "PCS verify", err)
		}
		return ok, nil
	}

	if proof.Reduction == nil {
		return false, newError(ErrVerifyFailed, "proof is missing its point-reduction proof", nil)
	}
	point0 := padPoint(fld, proof.GKR.FinalPoint0, numVars)
	point1 := padPoint(fld, proof.GKR.FinalPoint1, numVars)
	openTr := openingTranscript(fld, hasher, proof.Commitment, [][]FieldElement{point0, point1}, []FieldElement{proof.GKR.FinalClaim0, proof.GKR.FinalClaim1})
	newPoint, ok, err := hyrax.VerifyReduction(fld, numVars, [][]FieldElement{point0, point1}, []FieldElement{proof.GKR.FinalClaim0, proof.GKR.FinalClaim1}, proof.Reduction, openTr)
	if err != nil {
		return false, newError(ErrVerifyFailed, "verifying point-reduction proof", err)
	}
	if !ok {
		return false, nil
	}
	ok, err = scheme.Verify(fld, proof.Commitment, newPoint, proof.Reduction.FinalClaimedEval, proof.Opening, openTr)
	if err != nil {
		return false, newError(ErrVerifyFailed, "PCS verify", err)
	}
	return ok, nil
}
