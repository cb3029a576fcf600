package expander

import (
	"fmt"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/pcs"
	"github.com/vybium/expander/internal/expander/pcs/hyrax"
	"github.com/vybium/expander/internal/expander/pcs/orion"
	"github.com/vybium/expander/internal/expander/transcript"
)

// PCSKind selects the concrete polynomial commitment scheme Prove commits
// the witness layer through and Verify checks the opening against.
type PCSKind int

const (
	PCSOrion PCSKind = iota
	PCSHyrax
)

func (k PCSKind) String() string {
	switch k {
	case PCSOrion:
		return "orion"
	case PCSHyrax:
		return "hyrax"
	default:
		return "unknown"
	}
}

// pcsScheme is the subset of pcs.MultilinearPCS plus pcs.CommitmentCodec a
// concrete scheme must satisfy to be wired into Prove/Verify's proof
// stream.
type pcsScheme interface {
	pcs.MultilinearPCS
	pcs.CommitmentCodec
}

// build constructs the concrete scheme for a layer-0 input of 2^numVars
// field elements.
func (k PCSKind) build(fld field.Field, numVars, soundnessBits int, hasher transcript.Hasher) (pcsScheme, error) {
	switch k {
	case PCSOrion:
		return orion.NewScheme(numVars, soundnessBits, fld.FieldSizeBits(), hasher)
	case PCSHyrax:
		return hyrax.NewScheme(numVars)
	default:
		return nil, fmt.Errorf("expander: unknown PCS kind %v", k)
	}
}

// effectiveNumVars maps a layer's InputVarNum to the variable count the PCS
// layer commits over: Orion and Hyrax both require at least one variable,
// so a single-constant layer-0 (InputVarNum == 0) is treated as a
// 1-variable polynomial whose two hypercube corners hold the same
// constant — padPoint/padWitness below keep that padding deterministic and
// identical on both the Prove and Verify sides.
func effectiveNumVars(inputVarNum int) int {
	if inputVarNum == 0 {
		return 1
	}
	return inputVarNum
}

// padWitness widens a layer-0 input to at least one variable, duplicating
// its single value across both hypercube corners so any opening point
// evaluates to the same constant regardless of which corner padPoint's
// extra coordinate lands on.
func padWitness(fld field.Field, vals []FieldElement) []FieldElement {
	if len(vals) > 1 {
		return vals
	}
	v := fld.Zero()
	if len(vals) == 1 {
		v = vals[0]
	}
	return []FieldElement{v, v}
}

// padPoint widens point with trailing zero coordinates up to numVars
// variables, the counterpart padWitness's polynomial is defined over.
func padPoint(fld field.Field, point []FieldElement, numVars int) []FieldElement {
	if len(point) >= numVars {
		return point
	}
	out := append([]FieldElement(nil), point...)
	for len(out) < numVars {
		out = append(out, fld.Zero())
	}
	return out
}

// openingTranscript seeds a fresh transcript for the PCS opening phase
// (and, when there are two final claims, the point-reduction sum-check
// ahead of it) from data both Prove and Verify already have independently
// of one another: the commitment and the claim(s)/point(s) GKR's sum-check
// already reduced layer 0 to. Keeping this separate from the GKR phase's
// own transcript means the opening phase never needs to reconstruct
// exactly how many internal rounds gkr.VerifyParallel's goroutines ran —
// it only depends on public, proof-carried values.
func openingTranscript(fld field.Field, hasher transcript.Hasher, commitment pcs.Commitment, points [][]FieldElement, claims []FieldElement) *transcript.Transcript {
	tr := transcript.New(fld, hasher)
	tr.AppendBytes(commitment.Bytes())
	for _, point := range points {
		for _, e := range point {
			tr.AppendField(e)
		}
	}
	for _, c := range claims {
		tr.AppendField(c)
	}
	return tr
}
