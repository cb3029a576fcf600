package hyrax

import (
	"bytes"
	"fmt"

	"github.com/cloudflare/bn256"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/poly"
)

// Commitment is RowNum Pedersen vector commitments, one per matrix row.
type Commitment struct {
	RowCommits []*bn256.G1
}

// Bytes concatenates each row commitment's canonical marshaling.
func (c *Commitment) Bytes() []byte {
	out := make([]byte, 0, len(c.RowCommits)*64)
	for _, p := range c.RowCommits {
		out = append(out, p.Marshal()...)
	}
	return out
}

// Opening is the folded row, letting Verify
// recompute both the commitment-side and evaluation-side checks without any
// further interaction.
type Opening struct {
	// FoldedRow is E[j] = Σ_i eq(r_row,i)·M[i][j], ColNum entries.
	FoldedRow []field.Element
}

// Committer holds a commitment key (the shared generator vector) and the
// matrix it committed, so Open can re-derive rows without re-deriving the
// key.
type Committer struct {
	params *Params
	gens   []*bn256.G1
	matrix [][]field.Element
}

// Setup draws a fresh, random commitment key sized for params. Grounded on
// distributed-lab-bulletproofs's NewWeightNormLinearPublic, which seeds its
// GVec/HVec the same way at construction time.
func Setup(params *Params) ([]*bn256.G1, error) {
	gens, err := randGenerators(params.ColNum)
	if err != nil {
		return nil, fmt.Errorf("hyrax: generating commitment key: %w", err)
	}
	return gens, nil
}

// Commit arranges polynomial into params.RowNum rows of params.ColNum
// entries and binds each row with its own Pedersen vector commitment under
// the shared generators gens.
func Commit(params *Params, gens []*bn256.G1, polynomial []field.Element) (*Committer, *Commitment, error) {
	if len(polynomial) != params.RowNum*params.ColNum {
		return nil, nil, fmt.Errorf("hyrax: polynomial has %d entries, want %d", len(polynomial), params.RowNum*params.ColNum)
	}
	if len(gens) != params.ColNum {
		return nil, nil, fmt.Errorf("hyrax: commitment key has %d generators, want %d", len(gens), params.ColNum)
	}

	matrix := make([][]field.Element, params.RowNum)
	rowCommits := make([]*bn256.G1, params.RowNum)
	for i := 0; i < params.RowNum; i++ {
		row := polynomial[i*params.ColNum : (i+1)*params.ColNum]
		matrix[i] = row
		rowCommits[i] = multiScalarMul(gens, row)
	}

	return &Committer{params: params, gens: gens, matrix: matrix}, &Commitment{RowCommits: rowCommits}, nil
}

// splitPoint divides an n-variable evaluation point into its column part
// (the low-order, fastest-varying ColBits variables, matching Orion's
// row-major Evals[i*ColNum+j] layout) and its row part.
func splitPoint(point []field.Element, params *Params) (rCol, rRow []field.Element, err error) {
	if len(point) != params.RowBits+params.ColBits {
		return nil, nil, fmt.Errorf("hyrax: point has %d variables, want %d", len(point), params.RowBits+params.ColBits)
	}
	return point[:params.ColBits], point[params.ColBits:], nil
}

// Open folds the matrix's rows with eq(r_row,·) weights into a single
// ColNum-length vector and evaluates it at the column point — no
// transcript-squeezed randomness is needed since the weights are derived
// directly from the public evaluation point, unlike Orion's proximity-test
// repetitions.
func (c *Committer) Open(point []field.Element, fld field.Field) (field.Element, *Opening, error) {
	rCol, rRow, err := splitPoint(point, c.params)
	if err != nil {
		return nil, nil, err
	}

	eqRow := poly.BuildEqXR(rRow)
	folded := make([]field.Element, c.params.ColNum)
	for j := 0; j < c.params.ColNum; j++ {
		acc := fld.Zero()
		for i := 0; i < c.params.RowNum; i++ {
			acc = acc.Add(eqRow[i].Mul(c.matrix[i][j]))
		}
		folded[j] = acc
	}

	claimedEval, err := poly.EvaluateWithBuffer(rCol, append([]field.Element(nil), folded...))
	if err != nil {
		return nil, nil, fmt.Errorf("hyrax: evaluating folded row: %w", err)
	}
	return claimedEval, &Opening{FoldedRow: folded}, nil
}

// Verify checks that opening.FoldedRow evaluates to claimedEval at the
// column point, and that it is the correct eq(r_row,·)-weighted combination
// of commitment's rows by re-deriving that combination as a single
// multiscalar group operation and checking it against a commitment to
// FoldedRow under the same generators.
func Verify(fld field.Field, params *Params, gens []*bn256.G1, commitment *Commitment, point []field.Element, claimedEval field.Element, opening *Opening) (bool, error) {
	if len(commitment.RowCommits) != params.RowNum {
		return false, fmt.Errorf("hyrax: commitment has %d row commitments, want %d", len(commitment.RowCommits), params.RowNum)
	}
	if len(opening.FoldedRow) != params.ColNum {
		return false, fmt.Errorf("hyrax: opening folded row has %d entries, want %d", len(opening.FoldedRow), params.ColNum)
	}
	if len(gens) != params.ColNum {
		return false, fmt.Errorf("hyrax: commitment key has %d generators, want %d", len(gens), params.ColNum)
	}

	rCol, rRow, err := splitPoint(point, params)
	if err != nil {
		return false, err
	}

	gotEval, err := poly.EvaluateWithBuffer(rCol, append([]field.Element(nil), opening.FoldedRow...))
	if err != nil {
		return false, fmt.Errorf("hyrax: evaluating folded row: %w", err)
	}
	if !gotEval.Equal(claimedEval) {
		return false, nil
	}

	eqRow := poly.BuildEqXR(rRow)
	lhs := multiScalarMul(commitment.RowCommits, eqRow)
	rhs := multiScalarMul(gens, opening.FoldedRow)
	return bytes.Equal(lhs.Marshal(), rhs.Marshal()), nil
}
