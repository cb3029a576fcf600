// Package gkr implements the GKR layer driver (spec.md §4.C): given a
// layered circuit and its evaluation, it reduces a claim about the output
// layer's values at a random point down to a claim about the input
// (witness) layer's values at a random point, one layer at a time, in
// reverse topological order.
//
// Grounded on the teacher's protocols/prover.go and protocols/verifier.go
// round-orchestration loop (append round polynomial, squeeze challenge,
// repeat) and original_source/gkr/src/verifier/gkr_par_verifier.rs's
// per-layer transcript-checkpoint structure (adapted for the parallel
// verifier in parverifier.go).
//
// The driver has no phase SIMD or phase MPI (spec.md §4.C steps 2–3): the
// circuit model here (internal/expander/circuit) carries plain field
// elements rather than packed SIMD lanes, and proving runs on one rank.
// Each layer runs phase X and, when it has mul gates, phase Y.
package gkr

import (
	"fmt"

	"github.com/vybium/expander/internal/expander/circuit"
	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/poly"
	"github.com/vybium/expander/internal/expander/sumcheck"
	"github.com/vybium/expander/internal/expander/transcript"
)

// uniPower is the exponent used by the pow5 unary gate's GKR-square helper;
// combined with eq(·,rz)'s own degree this produces the degree-6 round
// polynomial spec.md §4.B names explicitly.
const uniPower = 5

// LayerProof is the sum-check transcript for one circuit layer: phase X's
// round polynomials and claimed factors, and (when the layer has mul gates)
// phase Y's.
type LayerProof struct {
	RoundPolysX [][]field.Element
	ClaimVX     field.Element
	ClaimHgX    field.Element
	// UniClaim is the GKR-square helper's final folded value; zero when the
	// layer has no unary gates.
	UniClaim field.Element

	HasPhaseY   bool
	RoundPolysY [][]field.Element
	ClaimVY     field.Element
}

// LayerCheckpoint is the transcript state, eq(·) table and running claim
// immediately before a layer's phase X begins — everything VerifyParallel
// (parverifier.go) needs to verify that layer's sum-check on its own
// goroutine, independent of the other layers' replay.
type LayerCheckpoint struct {
	TranscriptState []byte
	EqOut           []field.Element
	Claim           field.Element
}

// Proof is the full GKR proof for a circuit: one LayerProof per layer
// (output to input), plus the final opening point(s)/claim(s) handed to the
// PCS layer for layer 0's input (witness) values.
type Proof struct {
	LayerProofs []LayerProof
	// LayerCheckpoints[li] lets the parallel verifier replay layer li in
	// isolation; see VerifyParallel's doc comment for what it does and does
	// not establish on its own.
	LayerCheckpoints []LayerCheckpoint

	FinalPoint0 []field.Element
	FinalClaim0 field.Element
	// FinalPoint1/FinalClaim1 are present only if layer 0 has mul gates.
	HasFinalClaim1 bool
	FinalPoint1    []field.Element
	FinalClaim1    field.Element
}

func eqContribution(eqOut []field.Element, coef field.Element, out uint64) field.Element {
	return eqOut[out].Mul(coef)
}

// layerEqTables computes the public quantities the driver needs to bind one
// layer's phase X: the constant-gate correction, the mul/add combined
// hg(x), and (if present) the unary-gate eq(x) weights.
func layerEqTables(fld field.Field, layer *circuit.CircuitLayer, eqOut []field.Element) (constContribution field.Element, hgMulAdd []field.Element, eqUni []field.Element) {
	inLen := 1 << uint(layer.InputVarNum)
	hgMulAdd = make([]field.Element, inLen)
	for i := range hgMulAdd {
		hgMulAdd[i] = fld.Zero()
	}
	for _, g := range layer.Mul {
		term := eqContribution(eqOut, g.Coef, g.Out).Mul(layer.InputVals[g.In1])
		hgMulAdd[g.In0] = hgMulAdd[g.In0].Add(term)
	}
	for _, g := range layer.Add {
		term := eqContribution(eqOut, g.Coef, g.Out)
		hgMulAdd[g.In0] = hgMulAdd[g.In0].Add(term)
	}

	constContribution = fld.Zero()
	for _, g := range layer.Const {
		constContribution = constContribution.Add(eqContribution(eqOut, g.Coef, g.Out))
	}

	if len(layer.Uni) > 0 {
		eqUni = make([]field.Element, inLen)
		for i := range eqUni {
			eqUni[i] = fld.Zero()
		}
		for _, g := range layer.Uni {
			if g.GateType != circuit.UniGateTypePow5 {
				continue
			}
			term := eqContribution(eqOut, g.Coef, g.Out)
			eqUni[g.In0] = eqUni[g.In0].Add(term)
		}
	}
	return
}

// addContributionAt computes add(x)|_{x=rx} = Σ_add eq(rz,Out)·coef·eq(rx,In0),
// a purely public quantity — no secret witness values are needed.
func addContributionAt(fld field.Field, layer *circuit.CircuitLayer, eqOut, eqRx []field.Element) field.Element {
	total := fld.Zero()
	for _, g := range layer.Add {
		total = total.Add(eqContribution(eqOut, g.Coef, g.Out).Mul(eqRx[g.In0]))
	}
	return total
}

// mulHgY computes hg2(y) = Σ_{mul gates} eq(rz,Out)·coef·eq(rx,In0), indexed
// by In1 — the public weight phase Y binds V(y) against.
func mulHgY(fld field.Field, layer *circuit.CircuitLayer, eqOut, eqRx []field.Element) []field.Element {
	out := make([]field.Element, 1<<uint(layer.InputVarNum))
	for i := range out {
		out[i] = fld.Zero()
	}
	for _, g := range layer.Mul {
		term := eqContribution(eqOut, g.Coef, g.Out).Mul(eqRx[g.In0])
		out[g.In1] = out[g.In1].Add(term)
	}
	return out
}

// mulHgYAt evaluates hg2's MLE at a point directly (no folding), purely
// from public data — this is what the verifier computes instead of relying
// on the prover's phase Y fold.
func mulHgYAt(fld field.Field, layer *circuit.CircuitLayer, eqOut, eqRx, eqRy []field.Element) field.Element {
	total := fld.Zero()
	for _, g := range layer.Mul {
		term := eqContribution(eqOut, g.Coef, g.Out).Mul(eqRx[g.In0]).Mul(eqRy[g.In1])
		total = total.Add(term)
	}
	return total
}

// proveLayer runs phase X (and phase Y, if the layer has mul gates) for one
// layer, given the combined eq(·) table over its output wires and the
// running claim.
func proveLayer(fld field.Field, layer *circuit.CircuitLayer, eqOut []field.Element, claim field.Element, tr *transcript.Transcript) (LayerProof, []field.Element, []field.Element, error) {
	constContribution, hgMulAdd, eqUni := layerEqTables(fld, layer, eqOut)
	claimPrime := claim.Sub(constContribution)

	hasUni := eqUni != nil
	degree := 2
	if hasUni {
		degree = uniPower + 1
	}

	mulAdd := sumcheck.NewProductHelper(fld, layer.InputVarNum, hgMulAdd, layer.InputVals, nil)
	var uni *sumcheck.SquareHelper
	if hasUni {
		uni = sumcheck.NewSquareHelper(fld, uniPower, append([]field.Element(nil), layer.InputVals...), eqUni)
	}

	roundPolys := make([][]field.Element, layer.InputVarNum)
	rx := make([]field.Element, layer.InputVarNum)
	currentClaim := claimPrime
	for v := 0; v < layer.InputVarNum; v++ {
		evals := mulAdd.PolyEvalAt(v, degree)
		if hasUni {
			uniEvals := uni.PolyEvalAt(v, degree)
			for i := range evals {
				evals[i] = evals[i].Add(uniEvals[i])
			}
		}
		for _, e := range evals {
			tr.AppendField(e)
		}
		r := tr.ChallengeField()
		next, err := sumcheck.CheckRound(fld, evals, currentClaim, r)
		if err != nil {
			return LayerProof{}, nil, nil, fmt.Errorf("gkr: phase X round %d: %w", v, err)
		}
		mulAdd.ReceiveChallenge(v, r)
		if hasUni {
			uni.ReceiveChallenge(v, r)
		}
		roundPolys[v] = evals
		rx[v] = r
		currentClaim = next
	}

	lp := LayerProof{
		RoundPolysX: roundPolys,
		ClaimVX:     mulAdd.VEvals[0],
		ClaimHgX:    mulAdd.HgEvals[0],
	}
	if hasUni {
		lp.UniClaim = uni.Claim()
	} else {
		lp.UniClaim = fld.Zero()
	}

	if len(layer.Mul) == 0 {
		return lp, rx, nil, nil
	}

	eqRx := poly.BuildEqXR(rx)
	addAtRx := addContributionAt(fld, layer, eqOut, eqRx)
	phaseYClaim := lp.ClaimHgX.Sub(addAtRx)

	hgY := mulHgY(fld, layer, eqOut, eqRx)
	yHelper := sumcheck.NewProductHelper(fld, layer.InputVarNum, hgY, layer.InputVals, nil)

	roundPolysY := make([][]field.Element, layer.InputVarNum)
	ry := make([]field.Element, layer.InputVarNum)
	currentClaimY := phaseYClaim
	for v := 0; v < layer.InputVarNum; v++ {
		evals := yHelper.PolyEvalAt(v, 2)
		for _, e := range evals {
			tr.AppendField(e)
		}
		r := tr.ChallengeField()
		next, err := sumcheck.CheckRound(fld, evals, currentClaimY, r)
		if err != nil {
			return LayerProof{}, nil, nil, fmt.Errorf("gkr: phase Y round %d: %w", v, err)
		}
		yHelper.ReceiveChallenge(v, r)
		roundPolysY[v] = evals
		ry[v] = r
		currentClaimY = next
	}

	lp.HasPhaseY = true
	lp.RoundPolysY = roundPolysY
	lp.ClaimVY = yHelper.VEvals[0]

	return lp, rx, ry, nil
}

// combineEqTables folds two layers' worth of claims about the same
// underlying (lower-layer output) MLE into one, per spec.md §4.C's
// "combining scalar α" ("next-layer claim is α·claim_x + claim_y"): returns
// the next layer's eq(·) table and running claim.
func combineEqTables(fld field.Field, rx, ry []field.Element, alpha, claimX, claimY field.Element) ([]field.Element, field.Element) {
	eqX := poly.BuildEqXR(rx)
	eqY := poly.BuildEqXR(ry)
	out := make([]field.Element, len(eqX))
	for i := range out {
		out[i] = alpha.Mul(eqX[i]).Add(eqY[i])
	}
	return out, alpha.Mul(claimX).Add(claimY)
}

// Prove runs the GKR driver over every layer of c, in reverse topological
// (output to input) order, assuming c.Evaluate has already populated every
// layer's InputVals/OutputVals.
func Prove(fld field.Field, c *circuit.Circuit, tr *transcript.Transcript) (*Proof, error) {
	if len(c.Layers) == 0 {
		return nil, fmt.Errorf("gkr: cannot prove an empty circuit")
	}
	last := c.Layers[len(c.Layers)-1]

	rz := make([]field.Element, last.OutputVarNum)
	for i := range rz {
		rz[i] = tr.ChallengeField()
	}
	eqOut := poly.BuildEqXR(rz)
	claim, err := poly.EvaluateWithBuffer(rz, append([]field.Element(nil), last.OutputVals...))
	if err != nil {
		return nil, fmt.Errorf("gkr: evaluating output claim: %w", err)
	}

	proof := &Proof{
		LayerProofs:      make([]LayerProof, len(c.Layers)),
		LayerCheckpoints: make([]LayerCheckpoint, len(c.Layers)),
	}

	for li := len(c.Layers) - 1; li >= 0; li-- {
		layer := c.Layers[li]
		proof.LayerCheckpoints[li] = LayerCheckpoint{
			TranscriptState: tr.State(),
			EqOut:           append([]field.Element(nil), eqOut...),
			Claim:           claim,
		}
		lp, rx, ry, err := proveLayer(fld, layer, eqOut, claim, tr)
		if err != nil {
			return nil, fmt.Errorf("gkr: layer %d: %w", li, err)
		}
		proof.LayerProofs[li] = lp

		if li == 0 {
			proof.FinalPoint0 = rx
			proof.FinalClaim0 = lp.ClaimVX
			if lp.HasPhaseY {
				proof.HasFinalClaim1 = true
				proof.FinalPoint1 = ry
				proof.FinalClaim1 = lp.ClaimVY
			}
			break
		}

		if lp.HasPhaseY {
			alpha := tr.ChallengeField()
			eqOut, claim = combineEqTables(fld, rx, ry, alpha, lp.ClaimVX, lp.ClaimVY)
		} else {
			eqOut = poly.BuildEqXR(rx)
			claim = lp.ClaimVX
		}
	}

	return proof, nil
}
