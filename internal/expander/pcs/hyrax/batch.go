package hyrax

import (
	"fmt"

	"github.com/cloudflare/bn256"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/pcs"
	"github.com/vybium/expander/internal/expander/poly"
	"github.com/vybium/expander/internal/expander/sumcheck"
	"github.com/vybium/expander/internal/expander/transcript"
)

// BatchOpenSamePoint combines K polynomials of identical shape into one via
// a random linear combination (gamma squeezed from tr), then opens the
// combination at a single point — spec.md §4.E's "random-linear-combination
// of multiple polynomials" half of batched opening.
func BatchOpenSamePoint(s *Scheme, fld field.Field, polynomials [][]field.Element, point []field.Element, tr *transcript.Transcript) (field.Element, *Opening, error) {
	if len(polynomials) == 0 {
		return nil, nil, fmt.Errorf("hyrax: BatchOpenSamePoint needs at least one polynomial")
	}
	n := len(polynomials[0])
	combined := make([]field.Element, n)
	copy(combined, polynomials[0])

	gamma := tr.ChallengeField()
	power := fld.One()
	for k := 1; k < len(polynomials); k++ {
		if len(polynomials[k]) != n {
			return nil, nil, fmt.Errorf("hyrax: polynomial %d has %d entries, want %d", k, len(polynomials[k]), n)
		}
		power = power.Mul(gamma)
		for j := 0; j < n; j++ {
			combined[j] = combined[j].Add(power.Mul(polynomials[k][j]))
		}
	}

	// The combined commitment itself is not returned: a verifier re-derives
	// it homomorphically from the K individual commitments in
	// BatchVerifySamePoint rather than trusting a value sent out of band.
	committer, _, err := Commit(s.Params, s.Gens, combined)
	if err != nil {
		return nil, nil, err
	}
	s.committer = committer
	return s.committer.Open(point, fld)
}

// BatchVerifySamePoint re-derives the combined commitment from commitments
// (the same homomorphic combination BatchOpenSamePoint used to combine the
// underlying polynomials, since Pedersen commitment is additively
// homomorphic) and verifies the opening against it.
func BatchVerifySamePoint(s *Scheme, fld field.Field, commitments []*Commitment, point []field.Element, claimedEval field.Element, opening *Opening, tr *transcript.Transcript) (bool, error) {
	if len(commitments) == 0 {
		return false, fmt.Errorf("hyrax: BatchVerifySamePoint needs at least one commitment")
	}
	rowNum := len(commitments[0].RowCommits)
	combinedRows := make([]*bn256.G1, rowNum)
	for i := 0; i < rowNum; i++ {
		combinedRows[i] = new(bn256.G1).ScalarMult(commitments[0].RowCommits[i], scalarFromElement(fld.One()))
	}

	gamma := tr.ChallengeField()
	power := fld.One()
	for k := 1; k < len(commitments); k++ {
		if len(commitments[k].RowCommits) != rowNum {
			return false, fmt.Errorf("hyrax: commitment %d has %d rows, want %d", k, len(commitments[k].RowCommits), rowNum)
		}
		power = power.Mul(gamma)
		scalar := scalarFromElement(power)
		for i := 0; i < rowNum; i++ {
			combinedRows[i].Add(combinedRows[i], new(bn256.G1).ScalarMult(commitments[k].RowCommits[i], scalar))
		}
	}

	return Verify(fld, s.Params, s.Gens, &Commitment{RowCommits: combinedRows}, point, claimedEval, opening)
}

// ReductionProof is the sum-check transcript reducing K evaluation claims on
// one polynomial, at K distinct points, to a single claim at a single
// point — spec.md §4.E's "sum-check reducing multiple points to one".
// Grounded on internal/expander/sumcheck's generic round-loop contract:
// the reduction is itself a degree-2 sum-check over
// P(X)·(Σ_k gamma^k·eq(point_k,X)), reusing sumcheck.SquareHelper with
// Power=1 rather than adding a bespoke batching primitive to that package.
type ReductionProof struct {
	RoundEvals       [][]field.Element // numVars rounds, each sampled at 0,1,2
	FinalClaimedEval field.Element     // P(newPoint)
}

// ReducePoints runs the prover side of the point-reduction sum-check.
func ReducePoints(fld field.Field, polynomial []field.Element, points [][]field.Element, claims []field.Element, tr *transcript.Transcript) ([]field.Element, *ReductionProof, error) {
	numVars, err := checkReductionShape(polynomial, points, claims)
	if err != nil {
		return nil, nil, err
	}

	weights := combinedEqWeights(fld, points, tr, len(polynomial))
	helper := sumcheck.NewSquareHelper(fld, 1, append([]field.Element(nil), polynomial...), weights)

	newPoint := make([]field.Element, numVars)
	roundEvals := make([][]field.Element, numVars)
	for v := 0; v < numVars; v++ {
		evals := helper.PolyEvalAt(v, helper.Degree())
		for _, e := range evals {
			tr.AppendField(e)
		}
		r := tr.ChallengeField()
		helper.ReceiveChallenge(v, r)
		newPoint[v] = r
		roundEvals[v] = evals
	}

	return newPoint, &ReductionProof{RoundEvals: roundEvals, FinalClaimedEval: helper.FEvals[0]}, nil
}

// VerifyReduction runs the verifier side: it re-squeezes gamma and every
// round's challenge in the same order ReducePoints did, checks each round's
// consistency (p(0)+p(1) == running claim) and, once all rounds are spent,
// checks the final sum-check claim against FinalClaimedEval times the
// independently-recomputed combined eq weight at the derived point.
func VerifyReduction(fld field.Field, numVars int, points [][]field.Element, claims []field.Element, proof *ReductionProof, tr *transcript.Transcript) ([]field.Element, bool, error) {
	if len(proof.RoundEvals) != numVars {
		return nil, false, fmt.Errorf("hyrax: reduction proof has %d rounds, want %d", len(proof.RoundEvals), numVars)
	}

	gamma := tr.ChallengeField()
	claim := fld.Zero()
	power := fld.One()
	for k, c := range claims {
		if k > 0 {
			power = power.Mul(gamma)
		}
		claim = claim.Add(power.Mul(c))
	}

	newPoint := make([]field.Element, numVars)
	for v := 0; v < numVars; v++ {
		evals := proof.RoundEvals[v]
		for _, e := range evals {
			tr.AppendField(e)
		}
		r := tr.ChallengeField()

		next, err := sumcheck.CheckRound(fld, evals, claim, r)
		if err != nil {
			return nil, false, fmt.Errorf("round %d: %w", v, err)
		}
		claim = next
		newPoint[v] = r
	}

	wAtPoint := combinedEqAtPoint(fld, points, gamma, newPoint)
	ok := claim.Equal(proof.FinalClaimedEval.Mul(wAtPoint))
	return newPoint, ok, nil
}

func checkReductionShape(polynomial []field.Element, points [][]field.Element, claims []field.Element) (int, error) {
	if len(points) == 0 || len(points) != len(claims) {
		return 0, fmt.Errorf("hyrax: points and claims must be equal-length and non-empty")
	}
	numVars := 0
	for n := len(polynomial); n > 1; n >>= 1 {
		numVars++
	}
	if len(polynomial) != 1<<uint(numVars) {
		return 0, fmt.Errorf("hyrax: polynomial length %d is not a power of two", len(polynomial))
	}
	for k, p := range points {
		if len(p) != numVars {
			return 0, fmt.Errorf("hyrax: point %d has %d variables, want %d", k, len(p), numVars)
		}
	}
	return numVars, nil
}

// combinedEqWeights builds W[X] = Σ_k gamma^k·eq(points[k],X) over every
// hypercube vertex X, squeezing gamma from tr exactly once (the same draw
// VerifyReduction re-derives before its round loop).
func combinedEqWeights(fld field.Field, points [][]field.Element, tr *transcript.Transcript, n int) []field.Element {
	gamma := tr.ChallengeField()
	out := make([]field.Element, n)
	for i := range out {
		out[i] = fld.Zero()
	}
	power := fld.One()
	for k, p := range points {
		if k > 0 {
			power = power.Mul(gamma)
		}
		eqk := poly.BuildEqXR(p)
		for i, v := range eqk {
			out[i] = out[i].Add(power.Mul(v))
		}
	}
	return out
}

// combinedEqAtPoint evaluates Σ_k gamma^k·eq(points[k],at) directly, without
// materializing the full hypercube table — used by the verifier once the
// reduction point is known.
func combinedEqAtPoint(fld field.Field, points [][]field.Element, gamma field.Element, at []field.Element) field.Element {
	sum := fld.Zero()
	power := fld.One()
	for k, p := range points {
		if k > 0 {
			power = power.Mul(gamma)
		}
		sum = sum.Add(power.Mul(eqEval(p, at)))
	}
	return sum
}

// eqEval evaluates eq(r,x) = Π_i (r_i x_i + (1-r_i)(1-x_i)) directly.
func eqEval(r, x []field.Element) field.Element {
	var prod field.Element
	for i := range r {
		ri, xi := r[i], x[i]
		one := ri.Exp(0)
		term := ri.Mul(xi).Add(one.Sub(ri).Mul(one.Sub(xi)))
		if i == 0 {
			prod = term
		} else {
			prod = prod.Mul(term)
		}
	}
	return prod
}

var _ pcs.Commitment = (*Commitment)(nil)
