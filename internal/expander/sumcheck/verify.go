package sumcheck

import (
	"fmt"

	"github.com/vybium/expander/internal/expander/field"
)

// LagrangeEval reconstructs the unique degree-len(evals)-1 polynomial p with
// p(0), p(1), ..., p(len(evals)-1) = evals, and evaluates it at x. Used by
// the verifier both to check p(0)+p(1) == claim and to derive the next
// round's claim p(r) after receiving the challenge r.
func LagrangeEval(fld field.Field, evals []field.Element, x field.Element) field.Element {
	n := len(evals)
	result := fld.Zero()
	for i := 0; i < n; i++ {
		xi := fld.NewElementFromUint64(uint64(i))
		num := fld.One()
		den := fld.One()
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			xj := fld.NewElementFromUint64(uint64(j))
			num = num.Mul(x.Sub(xj))
			den = den.Mul(xi.Sub(xj))
		}
		denInv, ok := den.Inv()
		if !ok {
			// den is zero only when two sample points coincide, which
			// cannot happen for distinct integers 0..n-1 in a field of
			// characteristic > n.
			panic("sumcheck: degenerate Lagrange denominator")
		}
		term := evals[i].Mul(num).Mul(denInv)
		result = result.Add(term)
	}
	return result
}

// CheckRound verifies one sum-check round: the round polynomial's values at
// 0 and 1 must sum to the running claim (spec.md §4.B: "p(0)+p(1) ≠
// prev_claim" is the sole failure condition the sum-check engine itself
// reports). On success it returns the next round's claim, p(r).
func CheckRound(fld field.Field, roundEvals []field.Element, claim field.Element, r field.Element) (field.Element, error) {
	if len(roundEvals) < 2 {
		return nil, fmt.Errorf("sumcheck: round polynomial needs at least 2 evaluations, got %d", len(roundEvals))
	}
	sum := roundEvals[0].Add(roundEvals[1])
	if !sum.Equal(claim) {
		return nil, fmt.Errorf("sumcheck: round consistency check failed: p(0)+p(1) = %v, want %v", sum, claim)
	}
	return LagrangeEval(fld, roundEvals, r), nil
}
