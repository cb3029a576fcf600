package sumcheck

import "github.com/vybium/expander/internal/expander/field"

// SquareHelper runs the GKR-square sum-check variant (spec.md §4.B):
// P(x) = eq(·,rz)·f(x)^k for some k ≤ 7, giving a degree-(k+1) round
// polynomial instead of ProductHelper's degree-2. Grounded on the same
// original_source prover_helper round-loop shape, generalized from a fixed
// product-of-two to a fixed power.
type SquareHelper struct {
	fld field.Field

	FEvals  []field.Element // the polynomial being raised to Power
	EqEvals []field.Element // eq(·, rz) weights, folded alongside FEvals

	Power int
}

// NewSquareHelper seeds a square-sumcheck helper over 2^numVars evaluations.
func NewSquareHelper(fld field.Field, power int, fEvals, eqEvals []field.Element) *SquareHelper {
	return &SquareHelper{fld: fld, FEvals: fEvals, EqEvals: eqEvals, Power: power}
}

// Degree is the round polynomial's degree: Power (from f(x)^Power) plus 1
// (from the linear eq(·,rz) factor).
func (h *SquareHelper) Degree() int { return h.Power + 1 }

// PolyEvalAt samples p at 0, 1, ..., degree.
func (h *SquareHelper) PolyEvalAt(varIdx, degree int) []field.Element {
	out := make([]field.Element, degree+1)
	for i := range out {
		out[i] = h.fld.Zero()
	}
	half := len(h.FEvals) / 2
	for i := 0; i < half; i++ {
		f0, f1 := h.FEvals[2*i], h.FEvals[2*i+1]
		eq0, eq1 := h.EqEvals[2*i], h.EqEvals[2*i+1]
		for t := 0; t <= degree; t++ {
			ft := lerp(h.fld, f0, f1, uint64(t))
			eqt := lerp(h.fld, eq0, eq1, uint64(t))
			fPow := h.fld.One()
			for p := 0; p < h.Power; p++ {
				fPow = fPow.Mul(ft)
			}
			out[t] = out[t].Add(eqt.Mul(fPow))
		}
	}
	return out
}

// ReceiveChallenge folds both vectors in place at r, halving their length.
func (h *SquareHelper) ReceiveChallenge(varIdx int, r field.Element) {
	half := len(h.FEvals) / 2
	newF := make([]field.Element, half)
	newEq := make([]field.Element, half)
	for i := 0; i < half; i++ {
		newF[i] = h.FEvals[2*i].Add(r.Mul(h.FEvals[2*i+1].Sub(h.FEvals[2*i])))
		newEq[i] = h.EqEvals[2*i].Add(r.Mul(h.EqEvals[2*i+1].Sub(h.EqEvals[2*i])))
	}
	h.FEvals = newF
	h.EqEvals = newEq
}

// Claim returns the fully-bound value once a single evaluation remains.
func (h *SquareHelper) Claim() field.Element {
	fPow := h.fld.One()
	for p := 0; p < h.Power; p++ {
		fPow = fPow.Mul(h.FEvals[0])
	}
	return h.EqEvals[0].Mul(fPow)
}

var _ ProductGateHelper = (*SquareHelper)(nil)
