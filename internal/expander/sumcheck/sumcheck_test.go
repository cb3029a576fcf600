package sumcheck

import (
	"testing"

	"github.com/vybium/expander/internal/expander/field"
)

func u64s(f *field.M31, vs ...uint64) []field.Element {
	out := make([]field.Element, len(vs))
	for i, v := range vs {
		out[i] = f.NewElementFromUint64(v)
	}
	return out
}

// sumOfProduct computes Σ_x v[x]*hg[x] directly, the claim a sum-check
// proof over the product of v and hg must reduce to.
func sumOfProduct(f *field.M31, v, hg []field.Element) field.Element {
	sum := f.Zero()
	for i := range v {
		sum = sum.Add(v[i].Mul(hg[i]))
	}
	return sum
}

func TestProductSumcheckRoundTrip(t *testing.T) {
	f := field.NewM31()
	v := u64s(f, 2, 3, 5, 7)
	hg := u64s(f, 11, 13, 17, 19)
	claim := sumOfProduct(f, v, hg)

	numVars := 2
	h := NewProductHelper(f, numVars, append([]field.Element(nil), hg...), v, nil)

	challenges := u64s(f, 9, 4)
	currentClaim := claim
	for round := 0; round < numVars; round++ {
		evals := h.PolyEvalAt(round, 2)
		next, err := CheckRound(f, evals, currentClaim, challenges[round])
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		h.ReceiveChallenge(round, challenges[round])
		currentClaim = next
	}

	if !h.Claim().Equal(currentClaim) {
		t.Fatalf("final bound product = %v, does not match reduced claim %v", h.Claim(), currentClaim)
	}
}

func TestCheckRoundRejectsInconsistentPolynomial(t *testing.T) {
	f := field.NewM31()
	claim := f.NewElementFromUint64(100)
	bogus := u64s(f, 1, 2, 3)
	if _, err := CheckRound(f, bogus, claim, f.NewElementFromUint64(5)); err == nil {
		t.Fatal("expected an error for p(0)+p(1) != claim")
	}
}

func TestSquareHelperRoundTrip(t *testing.T) {
	f := field.NewM31()
	fvals := u64s(f, 2, 3, 5, 7)
	eq := u64s(f, 1, 1, 1, 1) // a trivial "all-ones" weighting

	power := 3
	claim := f.Zero()
	for i := range fvals {
		term := f.One()
		for p := 0; p < power; p++ {
			term = term.Mul(fvals[i])
		}
		claim = claim.Add(eq[i].Mul(term))
	}

	h := NewSquareHelper(f, power, append([]field.Element(nil), fvals...), append([]field.Element(nil), eq...))
	challenges := u64s(f, 6, 14)
	currentClaim := claim
	for round := 0; round < 2; round++ {
		evals := h.PolyEvalAt(round, h.Degree())
		next, err := CheckRound(f, evals, currentClaim, challenges[round])
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		h.ReceiveChallenge(round, challenges[round])
		currentClaim = next
	}

	if !h.Claim().Equal(currentClaim) {
		t.Fatalf("final claim %v does not match reduced value %v", h.Claim(), currentClaim)
	}
}

func TestLagrangeEvalReproducesSamples(t *testing.T) {
	f := field.NewM31()
	evals := u64s(f, 4, 9, 16, 25, 36) // p(t) = (t+2)^2 at t=0..4
	for t := 0; t < len(evals); t++ {
		got := LagrangeEval(f, evals, f.NewElementFromUint64(uint64(t)))
		if !got.Equal(evals[t]) {
			t.Fatalf("LagrangeEval at sample point %d = %v, want %v", t, got, evals[t])
		}
	}
}
