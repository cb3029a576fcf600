package orion

import (
	"testing"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/transcript"
)

func halfPoint(fld field.Field, n int) []field.Element {
	point := make([]field.Element, n)
	for i := range point {
		point[i] = fld.InvTwo()
	}
	return point
}

func TestCommitOpenVerifyRoundTrip(t *testing.T) {
	fld := field.NewBN254Fr()
	params, err := NewParams(8, 80, fld.FieldSizeBits())
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}

	polynomial := make([]field.Element, params.RowNum*params.MsgLen)
	for i := range polynomial {
		polynomial[i] = fld.NewElementFromUint64(uint64(i + 1))
	}

	hasher := transcript.SHA256Hasher{}
	committer, commitment, err := Commit(fld, params, hasher, polynomial)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	point := halfPoint(fld, 8)
	proverTr := transcript.New(fld, hasher)
	claimedEval, opening, err := committer.Open(point, proverTr)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Evaluating [1..256] (as 16x16, little-endian index) at all-1/2 yields
	// the mean of the 256 entries, 128.5.
	want := fld.NewElementFromUint64(257)
	half, _ := fld.NewElementFromUint64(2).Inv()
	want = want.Mul(half)
	if !claimedEval.Equal(want) {
		t.Fatalf("claimedEval = %s, want %s (mean of 1..256)", claimedEval.String(), want.String())
	}

	verifierTr := transcript.New(fld, hasher)
	ok, err := Verify(fld, params, hasher, commitment, point, claimedEval, opening, verifierTr)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify returned false for an honest opening")
	}
}

func TestVerifyRejectsTamperedMerklePath(t *testing.T) {
	fld := field.NewBN254Fr()
	params, err := NewParams(8, 80, fld.FieldSizeBits())
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}

	polynomial := make([]field.Element, params.RowNum*params.MsgLen)
	for i := range polynomial {
		polynomial[i] = fld.NewElementFromUint64(uint64(i + 1))
	}

	hasher := transcript.SHA256Hasher{}
	committer, commitment, err := Commit(fld, params, hasher, polynomial)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	point := halfPoint(fld, 8)
	proverTr := transcript.New(fld, hasher)
	claimedEval, opening, err := committer.Open(point, proverTr)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	tampered := *opening
	tamperedProofs := append([][]proofNode(nil), opening.QueryProofs...)
	path := append([]proofNode(nil), tamperedProofs[0]...)
	path[0] = proofNode{Hash: append([]byte(nil), path[0].Hash...), IsRight: path[0].IsRight}
	path[0].Hash[0] ^= 0xFF
	tamperedProofs[0] = path
	tampered.QueryProofs = tamperedProofs

	verifierTr := transcript.New(fld, hasher)
	ok, err := Verify(fld, params, hasher, commitment, point, claimedEval, &tampered, verifierTr)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify accepted a tampered Merkle path")
	}
}

func TestVerifyRejectsWrongClaimedEval(t *testing.T) {
	fld := field.NewBN254Fr()
	params, err := NewParams(8, 80, fld.FieldSizeBits())
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}

	polynomial := make([]field.Element, params.RowNum*params.MsgLen)
	for i := range polynomial {
		polynomial[i] = fld.NewElementFromUint64(uint64(i + 1))
	}

	hasher := transcript.SHA256Hasher{}
	committer, commitment, err := Commit(fld, params, hasher, polynomial)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	point := halfPoint(fld, 8)
	proverTr := transcript.New(fld, hasher)
	claimedEval, opening, err := committer.Open(point, proverTr)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	wrongEval := claimedEval.Add(fld.One())

	verifierTr := transcript.New(fld, hasher)
	ok, err := Verify(fld, params, hasher, commitment, point, wrongEval, opening, verifierTr)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify accepted a mismatched claimed evaluation")
	}
}

func TestSchemeSatisfiesMultilinearPCS(t *testing.T) {
	fld := field.NewBN254Fr()
	scheme, err := NewScheme(8, 80, fld.FieldSizeBits(), transcript.SHA256Hasher{})
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}

	polynomial := make([]field.Element, scheme.Params.RowNum*scheme.Params.MsgLen)
	for i := range polynomial {
		polynomial[i] = fld.NewElementFromUint64(uint64(i + 1))
	}

	commitment, err := scheme.Commit(fld, polynomial)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	point := halfPoint(fld, 8)
	proverTr := transcript.New(fld, scheme.Hasher)
	claimedEval, opening, err := scheme.Open(fld, polynomial, commitment, point, proverTr)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	verifierTr := transcript.New(fld, scheme.Hasher)
	ok, err := scheme.Verify(fld, commitment, point, claimedEval, opening, verifierTr)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify returned false for an honest opening through the Scheme wrapper")
	}
}
