// Package sumcheck implements the sum-check engine (spec.md §4.B): the
// contract exposed to the GKR layer driver for reducing
// Σ_{x∈{0,1}^n} P(x) = S to a single point evaluation P(r) = v, where P is a
// product of multilinear extensions.
//
// Grounded on the teacher's
// internal/vybium-starks-vm/protocols/univariate_sumcheck.go, whose
// generateRoundPolynomial/reduceProblem/verifyRoundConsistency round loop is
// adapted here from a univariate coset sum-check to the GKR multilinear
// sum-check described by original_source/sumcheck/src/prover_helper's
// poly_eval_at/receive_challenge pair.
package sumcheck

import "github.com/vybium/expander/internal/expander/field"

// ProductGateHelper is the contract the GKR driver binds one variable at a
// time against, for a sum-check instance whose summand is a product of two
// MLEs (spec.md §4.B).
type ProductGateHelper interface {
	// PolyEvalAt returns the univariate round polynomial, evaluated at
	// 0, 1, ..., degree.
	PolyEvalAt(varIdx, degree int) []field.Element
	// ReceiveChallenge folds both bound vectors in place at the given
	// challenge, halving their effective length.
	ReceiveChallenge(varIdx int, r field.Element)
}

// ProductHelper runs the degree-2 sum-check for P(x) = v(x)·hg(x), where v
// is the MLE being bound (pulled from InitVals on round 0, and from VEvals
// on every subsequent round) and hg is the linearization polynomial
// Σ_o eq(rz,o)·coef·(the other side's value), per spec.md §4.B / §4.C.
type ProductHelper struct {
	fld field.Field

	// VEvals and HgEvals are the live, progressively-folded vectors;
	// length starts at 2^numVars and halves on every ReceiveChallenge.
	VEvals, HgEvals []field.Element
	// InitVals backs VEvals's values on round 0 only, before the first
	// fold — bookkeeping for the pre-SIMD/pre-bind input values.
	InitVals []field.Element
	// GateExists prunes pairs neither a mul nor an add gate touches.
	GateExists []bool

	numVars int
	round   int
}

// NewProductHelper allocates scratch of the given length (2^numVars) and
// seeds VEvals from initVals so round 0's PolyEvalAt reads live data.
func NewProductHelper(fld field.Field, numVars int, hgEvals, initVals []field.Element, gateExists []bool) *ProductHelper {
	n := 1 << uint(numVars)
	h := &ProductHelper{
		fld:        fld,
		VEvals:     append([]field.Element(nil), initVals[:n]...),
		HgEvals:    hgEvals,
		InitVals:   initVals,
		GateExists: gateExists,
		numVars:    numVars,
	}
	return h
}

func lerp(fld field.Field, a, b field.Element, t uint64) field.Element {
	if t == 0 {
		return a
	}
	if t == 1 {
		return b
	}
	// a + t*(b-a)
	diff := b.Sub(a)
	return a.Add(diff.Mul(fld.NewElementFromUint64(t)))
}

// PolyEvalAt implements ProductGateHelper.PolyEvalAt for a degree-2 product
// of two MLEs: samples p at 0, 1, ..., degree by linearly extrapolating
// each pair (v[2i], v[2i+1]) and (hg[2i], hg[2i+1]) to t and multiplying.
func (h *ProductHelper) PolyEvalAt(varIdx, degree int) []field.Element {
	out := make([]field.Element, degree+1)
	for i := range out {
		out[i] = h.fld.Zero()
	}
	half := len(h.VEvals) / 2
	for i := 0; i < half; i++ {
		if h.GateExists != nil && !h.GateExists[2*i] && !h.GateExists[2*i+1] {
			continue
		}
		v0, v1 := h.VEvals[2*i], h.VEvals[2*i+1]
		hg0, hg1 := h.HgEvals[2*i], h.HgEvals[2*i+1]
		for t := 0; t <= degree; t++ {
			vt := lerp(h.fld, v0, v1, uint64(t))
			hgt := lerp(h.fld, hg0, hg1, uint64(t))
			out[t] = out[t].Add(vt.Mul(hgt))
		}
	}
	return out
}

// ReceiveChallenge implements ProductGateHelper.ReceiveChallenge: folds
// VEvals, HgEvals and GateExists in place, halving their length.
func (h *ProductHelper) ReceiveChallenge(varIdx int, r field.Element) {
	half := len(h.VEvals) / 2
	newV := make([]field.Element, half)
	newHg := make([]field.Element, half)
	var newExists []bool
	if h.GateExists != nil {
		newExists = make([]bool, half)
	}
	for i := 0; i < half; i++ {
		newV[i] = h.VEvals[2*i].Add(r.Mul(h.VEvals[2*i+1].Sub(h.VEvals[2*i])))
		newHg[i] = h.HgEvals[2*i].Add(r.Mul(h.HgEvals[2*i+1].Sub(h.HgEvals[2*i])))
		if h.GateExists != nil {
			newExists[i] = h.GateExists[2*i] || h.GateExists[2*i+1]
		}
	}
	h.VEvals = newV
	h.HgEvals = newHg
	h.GateExists = newExists
	h.round++
}

// Claim returns the fully-bound product value after all variables have
// received a challenge (len(VEvals) == len(HgEvals) == 1).
func (h *ProductHelper) Claim() field.Element {
	return h.VEvals[0].Mul(h.HgEvals[0])
}

var _ ProductGateHelper = (*ProductHelper)(nil)
