package poly

import (
	"testing"

	"github.com/vybium/expander/internal/expander/field"
)

func elems(f *field.M31, vs ...uint64) []field.Element {
	out := make([]field.Element, len(vs))
	for i, v := range vs {
		out[i] = f.NewElementFromUint64(v)
	}
	return out
}

func TestFixTopVariableThenEvaluate(t *testing.T) {
	f := field.NewM31()
	// P over 2 variables with evaluations [1,2,3,4] at (x0,x1) = (0,0),(1,0),(0,1),(1,1).
	p := &MultiLinearPoly{Evals: elems(f, 1, 2, 3, 4)}

	r := elems(f, 5, 9) // arbitrary challenge point, r0 then r1

	direct := p.Evaluate(r)

	// Spec invariant: P(r0,...,r_{n-1}) == P.fix(r_{n-1}).eval(r0,...,r_{n-2}).
	fixed := p.FixTopVariable(r[len(r)-1])
	viaFix := fixed.Evaluate(r[:len(r)-1])

	if !direct.Equal(viaFix) {
		t.Fatalf("fix-then-evaluate mismatch: direct=%v, viaFix=%v", direct, viaFix)
	}
}

func TestEvaluateWithBufferMatchesEvaluate(t *testing.T) {
	f := field.NewM31()
	p := &MultiLinearPoly{Evals: elems(f, 1, 2, 3, 4, 5, 6, 7, 8)}
	r := elems(f, 3, 4, 10)

	want := p.Evaluate(r)

	scratch := make([]field.Element, len(p.Evals))
	copy(scratch, p.Evals)
	got, err := EvaluateWithBuffer(r, scratch)
	if err != nil {
		t.Fatalf("EvaluateWithBuffer: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEqVecIdentities(t *testing.T) {
	f := field.NewM31()
	r := elems(f, 7, 11, 13)

	t.Run("EqAtSelfIsOne", func(t *testing.T) {
		// eq(b,b) = 1 holds for Boolean points b.
		b := elems(f, 1, 0, 1)
		v, err := EqVec(b, b)
		if err != nil {
			t.Fatalf("EqVec: %v", err)
		}
		if !v.Equal(f.One()) {
			t.Fatalf("eq(b,b) = %v, want 1", v)
		}
	})

	t.Run("Symmetric", func(t *testing.T) {
		s := elems(f, 2, 3, 4)
		ab, err := EqVec(r, s)
		if err != nil {
			t.Fatalf("EqVec: %v", err)
		}
		ba, err := EqVec(s, r)
		if err != nil {
			t.Fatalf("EqVec: %v", err)
		}
		if !ab.Equal(ba) {
			t.Fatalf("eq(r,s) != eq(s,r): %v vs %v", ab, ba)
		}
	})
}

func TestBuildEqXRSumsToOne(t *testing.T) {
	f := field.NewM31()
	r := elems(f, 17, 19, 23)
	table := BuildEqXR(r)

	if len(table) != 1<<uint(len(r)) {
		t.Fatalf("table length = %d, want %d", len(table), 1<<uint(len(r)))
	}

	sum := f.Zero()
	for _, v := range table {
		sum = sum.Add(v)
	}
	if !sum.Equal(f.One()) {
		t.Fatalf("sum of eq(x,r) over the hypercube = %v, want 1", sum)
	}
}

func TestEqEvalAtMatchesBuildEqXR(t *testing.T) {
	f := field.NewM31()
	r := elems(f, 29, 31, 37, 41)

	factor := f.NewElementFromUint64(5)

	want := BuildEqXR(r)
	for i := range want {
		want[i] = want[i].Mul(factor)
	}

	out := make([]field.Element, len(want))
	tmp1 := make([]field.Element, 1<<2)
	tmp2 := make([]field.Element, 1<<2)
	if err := EqEvalAt(r, factor, out, tmp1, tmp2); err != nil {
		t.Fatalf("EqEvalAt: %v", err)
	}

	for i := range want {
		if !out[i].Equal(want[i]) {
			t.Fatalf("index %d: got %v, want %v", i, out[i], want[i])
		}
	}
}
