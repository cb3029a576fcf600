// Package orion implements the Orion tensor-code polynomial commitment
// scheme (spec.md §4.D): commit a multilinear polynomial as a row-encoded
// matrix committed column-wise via Merkle tree; open at a point by
// revealing a linear combination row (the "evaluation row") plus proximity
// rows for soundness, and the queried columns' Merkle paths; verify by
// checking the evaluation row's claimed value and that every queried
// column is consistent with both the evaluation row's and each proximity
// row's codeword.
//
// Grounded on the teacher's internal/vybium-starks-vm/core/merkle.go
// (Merkle tree/proof, generalized to a pluggable hasher in merkle.go) and
// codes/reed_solomon.go (the "treat a vector as polynomial coefficients,
// evaluate over a domain" linear-code shape, adapted in code.go to a
// symmetric encode used for rows instead of a decode-oriented RS check).
package orion

import (
	"fmt"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/poly"
	"github.com/vybium/expander/internal/expander/transcript"
)

// Commitment is the Merkle root over an Orion-committed polynomial's
// encoded columns.
type Commitment struct {
	Root []byte
}

// Bytes implements pcs.Commitment.
func (c *Commitment) Bytes() []byte { return append([]byte(nil), c.Root...) }

// Opening is the proof Open returns: the evaluation row, the proximity
// rows, and the queried columns with their Merkle paths.
type Opening struct {
	E             []field.Element
	ProximityRows [][]field.Element

	QueryIndices []int
	// QueryColumns[q] holds RowNum entries, one per matrix row, of the
	// encoded matrix's column QueryIndices[q].
	QueryColumns [][]field.Element
	QueryProofs  [][]proofNode
}

// Committer holds the committed matrix so Open can be called after Commit.
type Committer struct {
	fld       field.Field
	params    *Params
	hasher    transcript.Hasher
	matrix    [][]field.Element // RowNum x MsgLen
	codewords [][]field.Element // RowNum x CodeLen
	tree      *merkleTree
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func leafBytes(column []field.Element) []byte {
	var out []byte
	for _, v := range column {
		out = append(out, v.Bytes()...)
	}
	return out
}

// Commit lays out polynomial as a RowNum x MsgLen matrix, row-encodes it,
// and Merkle-commits over its columns, per spec.md §4.D's Commit steps 1-6.
func Commit(fld field.Field, params *Params, hasher transcript.Hasher, polynomial []field.Element) (*Committer, *Commitment, error) {
	if len(polynomial) != params.RowNum*params.MsgLen {
		return nil, nil, fmt.Errorf("orion: polynomial has %d entries, want %d (row_num=%d * msg_len=%d)",
			len(polynomial), params.RowNum*params.MsgLen, params.RowNum, params.MsgLen)
	}

	matrix := make([][]field.Element, params.RowNum)
	for i := range matrix {
		matrix[i] = polynomial[i*params.MsgLen : (i+1)*params.MsgLen]
	}

	codewords := make([][]field.Element, params.RowNum)
	for i, row := range matrix {
		codewords[i] = encodeRow(fld, row, params.CodeLen)
	}

	paddedLen := nextPow2(params.CodeLen)
	leaves := make([][]byte, paddedLen)
	zeroColumn := make([]field.Element, params.RowNum)
	for i := range zeroColumn {
		zeroColumn[i] = fld.Zero()
	}
	zeroLeaf := hasher.Hash(leafBytes(zeroColumn))
	for j := 0; j < paddedLen; j++ {
		if j >= params.CodeLen {
			leaves[j] = zeroLeaf
			continue
		}
		column := make([]field.Element, params.RowNum)
		for i := range column {
			column[i] = codewords[i][j]
		}
		leaves[j] = hasher.Hash(leafBytes(column))
	}

	tree := newMerkleTree(hasher, leaves)
	c := &Committer{fld: fld, params: params, hasher: hasher, matrix: matrix, codewords: codewords, tree: tree}
	return c, &Commitment{Root: tree.root()}, nil
}

// splitPoint divides an opening point into (r_msg, r_col) per spec.md
// §4.D's "r = (r_msg, r_col)", using this package's evaluation convention
// where index bit 0 (point[0]) is the fastest-varying / least-significant
// bit: the column index j sits in the low log2(msg_len) bits of i*msg_len+j,
// so r_msg is the low slice of point and r_col the high slice.
func splitPoint(point []field.Element, msgLen, rowNum int) (rMsg, rCol []field.Element, err error) {
	msgBits := 0
	for 1<<uint(msgBits) < msgLen {
		msgBits++
	}
	rowBits := 0
	for 1<<uint(rowBits) < rowNum {
		rowBits++
	}
	if len(point) != msgBits+rowBits {
		return nil, nil, fmt.Errorf("orion: point has %d variables, want %d (msg_bits=%d + row_bits=%d)", len(point), msgBits+rowBits, msgBits, rowBits)
	}
	return point[:msgBits], point[msgBits:], nil
}

// Open implements spec.md §4.D's Open(point r): the evaluation row, R
// proximity rows, and Q queried columns with Merkle paths.
func (c *Committer) Open(point []field.Element, tr *transcript.Transcript) (field.Element, *Opening, error) {
	rMsg, rCol, err := splitPoint(point, c.params.MsgLen, c.params.RowNum)
	if err != nil {
		return nil, nil, err
	}

	eqCol := poly.BuildEqXR(rCol)
	e := make([]field.Element, c.params.MsgLen)
	for j := range e {
		e[j] = c.fld.Zero()
	}
	for i, row := range c.matrix {
		for j, v := range row {
			e[j] = e[j].Add(eqCol[i].Mul(v))
		}
	}

	claimedEval, err := poly.EvaluateWithBuffer(rMsg, append([]field.Element(nil), e...))
	if err != nil {
		return nil, nil, fmt.Errorf("orion: evaluating evaluation row: %w", err)
	}

	proximityRows := make([][]field.Element, c.params.Repetitions)
	for k := 0; k < c.params.Repetitions; k++ {
		weights := make([]field.Element, c.params.RowNum)
		for i := range weights {
			weights[i] = tr.ChallengeField()
		}
		row := make([]field.Element, c.params.MsgLen)
		for j := range row {
			row[j] = c.fld.Zero()
		}
		for i, mRow := range c.matrix {
			for j, v := range mRow {
				row[j] = row[j].Add(weights[i].Mul(v))
			}
		}
		proximityRows[k] = row
	}

	queryIndices := make([]int, c.params.NumQueries)
	queryColumns := make([][]field.Element, c.params.NumQueries)
	queryProofs := make([][]proofNode, c.params.NumQueries)
	for q := 0; q < c.params.NumQueries; q++ {
		idx, err := tr.ChallengeIndex(c.params.CodeLen)
		if err != nil {
			return nil, nil, fmt.Errorf("orion: squeezing query index: %w", err)
		}
		column := make([]field.Element, c.params.RowNum)
		for i := range column {
			column[i] = c.codewords[i][idx]
		}
		queryIndices[q] = idx
		queryColumns[q] = column
		queryProofs[q] = c.tree.proof(idx)
	}

	return claimedEval, &Opening{
		E:             e,
		ProximityRows: proximityRows,
		QueryIndices:  queryIndices,
		QueryColumns:  queryColumns,
		QueryProofs:   queryProofs,
	}, nil
}
