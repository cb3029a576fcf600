package orion

import (
	"fmt"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/poly"
	"github.com/vybium/expander/internal/expander/transcript"
)

// Verify implements spec.md §4.D's Verify(commitment, point, claimed_eval,
// opening): it re-derives the same proximity-row weights and query indices
// Open squeezed (tr must be a transcript in the same state Open started
// from), then checks the evaluation row's claimed value and that every
// queried column is consistent with both the evaluation row's and each
// proximity row's codeword.
func Verify(fld field.Field, params *Params, hasher transcript.Hasher, commitment *Commitment, point []field.Element, claimedEval field.Element, opening *Opening, tr *transcript.Transcript) (bool, error) {
	if len(opening.E) != params.MsgLen {
		return false, fmt.Errorf("orion: opening evaluation row has %d entries, want %d", len(opening.E), params.MsgLen)
	}
	if len(opening.ProximityRows) != params.Repetitions {
		return false, fmt.Errorf("orion: opening has %d proximity rows, want %d", len(opening.ProximityRows), params.Repetitions)
	}
	if len(opening.QueryIndices) != params.NumQueries {
		return false, fmt.Errorf("orion: opening has %d queries, want %d", len(opening.QueryIndices), params.NumQueries)
	}

	rMsg, rCol, err := splitPoint(point, params.MsgLen, params.RowNum)
	if err != nil {
		return false, err
	}

	gotEval, err := poly.EvaluateWithBuffer(rMsg, append([]field.Element(nil), opening.E...))
	if err != nil {
		return false, fmt.Errorf("orion: evaluating opened evaluation row: %w", err)
	}
	if !gotEval.Equal(claimedEval) {
		return false, nil
	}

	weights := make([][]field.Element, params.Repetitions)
	for k := 0; k < params.Repetitions; k++ {
		w := make([]field.Element, params.RowNum)
		for i := range w {
			w[i] = tr.ChallengeField()
		}
		weights[k] = w
	}

	queryIndices := make([]int, params.NumQueries)
	for q := 0; q < params.NumQueries; q++ {
		idx, err := tr.ChallengeIndex(params.CodeLen)
		if err != nil {
			return false, fmt.Errorf("orion: squeezing query index: %w", err)
		}
		queryIndices[q] = idx
		if idx != opening.QueryIndices[q] {
			return false, nil
		}
	}

	eqCol := poly.BuildEqXR(rCol)
	codewordE := encodeRow(fld, opening.E, params.CodeLen)
	codewordsP := make([][]field.Element, params.Repetitions)
	for k, row := range opening.ProximityRows {
		codewordsP[k] = encodeRow(fld, row, params.CodeLen)
	}

	for q, idx := range queryIndices {
		column := opening.QueryColumns[q]
		if len(column) != params.RowNum {
			return false, fmt.Errorf("orion: query %d column has %d entries, want %d", q, len(column), params.RowNum)
		}

		leaf := hasher.Hash(leafBytes(column))
		if !verifyMerklePath(hasher, commitment.Root, leaf, opening.QueryProofs[q], idx) {
			return false, nil
		}

		sumE := fld.Zero()
		for i, v := range column {
			sumE = sumE.Add(eqCol[i].Mul(v))
		}
		if !sumE.Equal(codewordE[idx]) {
			return false, nil
		}

		for k, w := range weights {
			sumP := fld.Zero()
			for i, v := range column {
				sumP = sumP.Add(w[i].Mul(v))
			}
			if !sumP.Equal(codewordsP[k][idx]) {
				return false, nil
			}
		}
	}

	return true, nil
}
