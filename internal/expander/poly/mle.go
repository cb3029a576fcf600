// Package poly implements the multilinear polynomial and equality-polynomial
// engine: dense evaluation-table representation, variable fixing, and the
// eq(x,r) expansion used throughout sum-check and the GKR driver.
//
// Grounded on the teacher's internal/vybium-starks-vm/core/polynomial.go
// (a buffer-owning polynomial type) and polynomial_extended.go (in-place
// folding over a reusable scratch slice), generalized from univariate
// coefficient vectors to Boolean-hypercube evaluation vectors.
package poly

import (
	"fmt"

	"github.com/vybium/expander/internal/expander/field"
)

// MultiLinearPoly is represented by its 2^n evaluations on the Boolean
// hypercube, indexed little-endian (the least significant bit of the index
// is the fastest-varying variable).
type MultiLinearPoly struct {
	Evals []field.Element
}

// NumVars returns n such that len(Evals) == 2^n.
func (p *MultiLinearPoly) NumVars() int {
	n := 0
	for l := len(p.Evals); l > 1; l >>= 1 {
		n++
	}
	return n
}

// FixTopVariable binds the most-significant variable to r, halving the
// length of the evaluation table: new[i] = old[i]*(1-r) + old[i+len/2]*r.
func (p *MultiLinearPoly) FixTopVariable(r field.Element) *MultiLinearPoly {
	half := len(p.Evals) / 2
	out := make([]field.Element, half)
	one := oneOf(r)
	oneMinusR := one.Sub(r)
	for i := 0; i < half; i++ {
		lo := p.Evals[i].Mul(oneMinusR)
		hi := p.Evals[i+half].Mul(r)
		out[i] = lo.Add(hi)
	}
	return &MultiLinearPoly{Evals: out}
}

// Evaluate computes P(point) by successively fixing every variable,
// highest index first, matching FixTopVariable's bit convention.
func (p *MultiLinearPoly) Evaluate(point []field.Element) field.Element {
	cur := p
	for i := len(point) - 1; i >= 0; i-- {
		cur = cur.FixTopVariable(point[i])
	}
	return cur.Evals[0]
}

// EvaluateWithBuffer destructively folds scratch (which must start out
// equal to the polynomial's coefficients, and may be longer-capacity than
// strictly needed) by fixing one variable per entry of point, and returns
// the resulting single evaluation without any further allocation.
func EvaluateWithBuffer(point []field.Element, scratch []field.Element) (field.Element, error) {
	if len(scratch) == 0 {
		return nil, fmt.Errorf("poly: scratch buffer must be non-empty")
	}
	length := len(scratch)
	for _, r := range point {
		if length < 2 {
			return nil, fmt.Errorf("poly: point has more variables than scratch can fold")
		}
		half := length / 2
		one := oneOf(r)
		oneMinusR := one.Sub(r)
		for i := 0; i < half; i++ {
			lo := scratch[2*i].Mul(oneMinusR)
			hi := scratch[2*i+1].Mul(r)
			scratch[i] = lo.Add(hi)
		}
		length = half
	}
	return scratch[0], nil
}

func oneOf(e field.Element) field.Element {
	// Any element carries enough type information to recover its field's
	// multiplicative identity via Exp(0).
	return e.Exp(0)
}

// BuildEqXR returns the 2^|r| evaluations of eq(x,r) = Π_i (x_i r_i + (1-x_i)(1-r_i))
// over x ranging across the Boolean hypercube, built by successive doubling:
// eq_{r[:k+1]} = eq_{r[:k]} ⊗ (1-r_k, r_k).
func BuildEqXR(r []field.Element) []field.Element {
	if len(r) == 0 {
		return nil
	}
	one := oneOf(r[0])
	table := []field.Element{one.Sub(r[0]), r[0]}
	for k := 1; k < len(r); k++ {
		rk := r[k]
		oneMinusRk := one.Sub(rk)
		next := make([]field.Element, len(table)*2)
		for i, v := range table {
			next[i] = v.Mul(oneMinusRk)
			next[i+len(table)] = v.Mul(rk)
		}
		table = next
	}
	return table
}

// EqVec computes Π_i (a_i b_i + (1-a_i)(1-b_i)) in O(|a|).
func EqVec(a, b []field.Element) (field.Element, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("poly: eq_vec length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return nil, fmt.Errorf("poly: eq_vec requires at least one variable")
	}
	one := oneOf(a[0])
	result := a[0].Mul(b[0]).Add(one.Sub(a[0]).Mul(one.Sub(b[0])))
	for i := 1; i < len(a); i++ {
		term := a[i].Mul(b[i]).Add(one.Sub(a[i]).Mul(one.Sub(b[i])))
		result = result.Mul(term)
	}
	return result, nil
}

// EqEvalAt computes out[i] = factor * Π_j (i_j r_j + (1-i_j)(1-r_j)) for all
// i in {0,1}^|r|, using a two-halves outer-product to cut both memory and
// multiplication count relative to BuildEqXR followed by a scalar scale:
// r is split into a low half and a high half, each expanded independently
// via successive doubling into tmp1/tmp2, and the result is their outer
// product scaled by factor.
func EqEvalAt(r []field.Element, factor field.Element, out, tmp1, tmp2 []field.Element) error {
	n := len(r)
	if len(out) != 1<<uint(n) {
		return fmt.Errorf("poly: eq_eval_at output length %d != 2^%d", len(out), n)
	}
	if n == 0 {
		out[0] = factor
		return nil
	}

	half1 := n / 2
	half2 := n - half1
	lowR := r[:half1]
	highR := r[half1:]

	if len(tmp1) < 1<<uint(half1) || len(tmp2) < 1<<uint(half2) {
		return fmt.Errorf("poly: eq_eval_at scratch buffers too small")
	}

	one := oneOf(factor)
	fillEqTable(lowR, tmp1, one)
	fillEqTable(highR, tmp2, one)

	for hi := 0; hi < 1<<uint(half2); hi++ {
		scale := tmp2[hi].Mul(factor)
		base := hi << uint(half1)
		for lo := 0; lo < 1<<uint(half1); lo++ {
			out[base+lo] = tmp1[lo].Mul(scale)
		}
	}
	return nil
}

// fillEqTable writes the 2^|r| successive-doubling eq table for r into dst
// (dst must have capacity >= 2^|r|; for |r|==0 it writes the single entry 1).
func fillEqTable(r []field.Element, dst []field.Element, one field.Element) {
	if len(r) == 0 {
		dst[0] = one
		return
	}
	dst[0] = one.Sub(r[0])
	dst[1] = r[0]
	length := 2
	for k := 1; k < len(r); k++ {
		rk := r[k]
		oneMinusRk := one.Sub(rk)
		for i := length - 1; i >= 0; i-- {
			hi := dst[i].Mul(rk)
			lo := dst[i].Mul(oneMinusRk)
			dst[i] = lo
			dst[i+length] = hi
		}
		length *= 2
	}
}
