package hyrax

import (
	"testing"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/poly"
	"github.com/vybium/expander/internal/expander/transcript"
)

func halfPoint(fld field.Field, numVars int) []field.Element {
	point := make([]field.Element, numVars)
	for i := range point {
		point[i] = fld.InvTwo()
	}
	return point
}

func samplePolynomial(fld field.Field, n int) []field.Element {
	out := make([]field.Element, n)
	for i := range out {
		out[i] = fld.NewElementFromUint64(uint64(i + 1))
	}
	return out
}

func TestCommitOpenVerifyRoundTrip(t *testing.T) {
	fld := field.NewBN254Fr()
	numVars := 8
	s, err := NewScheme(numVars)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}

	polynomial := samplePolynomial(fld, 1<<uint(numVars))
	commitment, err := s.Commit(fld, polynomial)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	point := halfPoint(fld, numVars)
	tr := transcript.New(fld, transcript.SHA256Hasher{})
	claimedEval, opening, err := s.Open(fld, polynomial, commitment, point, tr)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// evaluating at the all-1/2 point is the arithmetic mean of [1..256]:
	// (1+256)/2 = 128.5
	want := fld.NewElementFromUint64(257)
	invTwo := fld.InvTwo()
	want = want.Mul(invTwo)
	if !claimedEval.Equal(want) {
		t.Fatalf("claimedEval = %v, want %v", claimedEval, want)
	}

	tr2 := transcript.New(fld, transcript.SHA256Hasher{})
	ok, err := s.Verify(fld, commitment, point, claimedEval, opening, tr2)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify returned false for an honest opening")
	}
}

func TestVerifyRejectsWrongClaimedEval(t *testing.T) {
	fld := field.NewBN254Fr()
	numVars := 6
	s, err := NewScheme(numVars)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}
	polynomial := samplePolynomial(fld, 1<<uint(numVars))
	commitment, err := s.Commit(fld, polynomial)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	point := halfPoint(fld, numVars)
	tr := transcript.New(fld, transcript.SHA256Hasher{})
	claimedEval, opening, err := s.Open(fld, polynomial, commitment, point, tr)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tampered := claimedEval.Add(fld.One())

	tr2 := transcript.New(fld, transcript.SHA256Hasher{})
	ok, err := s.Verify(fld, commitment, point, tampered, opening, tr2)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify accepted a tampered claimed evaluation")
	}
}

func TestVerifyRejectsTamperedFoldedRow(t *testing.T) {
	fld := field.NewBN254Fr()
	numVars := 6
	s, err := NewScheme(numVars)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}
	polynomial := samplePolynomial(fld, 1<<uint(numVars))
	commitment, err := s.Commit(fld, polynomial)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	point := halfPoint(fld, numVars)
	tr := transcript.New(fld, transcript.SHA256Hasher{})
	claimedEval, opening, err := s.Open(fld, polynomial, commitment, point, tr)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	o := opening.(*Opening)
	o.FoldedRow[0] = o.FoldedRow[0].Add(fld.One())

	tr2 := transcript.New(fld, transcript.SHA256Hasher{})
	ok, err := s.Verify(fld, commitment, point, claimedEval, o, tr2)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify accepted a tampered folded row")
	}
}

func TestBatchOpenSamePointRoundTrip(t *testing.T) {
	fld := field.NewBN254Fr()
	numVars := 6
	s, err := NewScheme(numVars)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}

	polyA := samplePolynomial(fld, 1<<uint(numVars))
	polyB := samplePolynomial(fld, 1<<uint(numVars))
	for i := range polyB {
		polyB[i] = polyB[i].Mul(fld.NewElementFromUint64(3))
	}

	_, commitmentA, err := Commit(s.Params, s.Gens, polyA)
	if err != nil {
		t.Fatalf("Commit A: %v", err)
	}
	_, commitmentB, err := Commit(s.Params, s.Gens, polyB)
	if err != nil {
		t.Fatalf("Commit B: %v", err)
	}

	point := halfPoint(fld, numVars)
	trOpen := transcript.New(fld, transcript.SHA256Hasher{})
	claimedEval, opening, err := BatchOpenSamePoint(s, fld, [][]field.Element{polyA, polyB}, point, trOpen)
	if err != nil {
		t.Fatalf("BatchOpenSamePoint: %v", err)
	}

	trVerify := transcript.New(fld, transcript.SHA256Hasher{})
	ok, err := BatchVerifySamePoint(s, fld, []*Commitment{commitmentA, commitmentB}, point, claimedEval, opening, trVerify)
	if err != nil {
		t.Fatalf("BatchVerifySamePoint: %v", err)
	}
	if !ok {
		t.Fatal("BatchVerifySamePoint returned false for an honest batched opening")
	}
}

func TestReducePointsThenOpenVerify(t *testing.T) {
	fld := field.NewBN254Fr()
	numVars := 6
	s, err := NewScheme(numVars)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}
	polynomial := samplePolynomial(fld, 1<<uint(numVars))
	commitment, err := s.Commit(fld, polynomial)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	pointA := halfPoint(fld, numVars)
	pointB := make([]field.Element, numVars)
	for i := range pointB {
		pointB[i] = fld.NewElementFromUint64(uint64(i + 2))
	}

	evalAt := func(point []field.Element) field.Element {
		scratch := append([]field.Element(nil), polynomial...)
		v, err := poly.EvaluateWithBuffer(point, scratch)
		if err != nil {
			t.Fatalf("EvaluateWithBuffer: %v", err)
		}
		return v
	}
	claimA := evalAt(pointA)
	claimB := evalAt(pointB)

	trProve := transcript.New(fld, transcript.SHA256Hasher{})
	newPoint, proof, err := ReducePoints(fld, polynomial, [][]field.Element{pointA, pointB}, []field.Element{claimA, claimB}, trProve)
	if err != nil {
		t.Fatalf("ReducePoints: %v", err)
	}

	trProveOpen := transcript.New(fld, transcript.SHA256Hasher{})
	claimedEval, opening, err := s.Open(fld, polynomial, commitment, newPoint, trProveOpen)
	if err != nil {
		t.Fatalf("Open at reduced point: %v", err)
	}
	if !claimedEval.Equal(proof.FinalClaimedEval) {
		t.Fatalf("Open's claimedEval = %v, reduction's FinalClaimedEval = %v", claimedEval, proof.FinalClaimedEval)
	}

	trVerifyReduce := transcript.New(fld, transcript.SHA256Hasher{})
	verifiedPoint, ok, err := VerifyReduction(fld, numVars, [][]field.Element{pointA, pointB}, []field.Element{claimA, claimB}, proof, trVerifyReduce)
	if err != nil {
		t.Fatalf("VerifyReduction: %v", err)
	}
	if !ok {
		t.Fatal("VerifyReduction rejected an honest reduction proof")
	}

	trVerifyOpen := transcript.New(fld, transcript.SHA256Hasher{})
	ok2, err := s.Verify(fld, commitment, verifiedPoint, proof.FinalClaimedEval, opening, trVerifyOpen)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok2 {
		t.Fatal("Verify rejected the opening at the reduced point")
	}
}
