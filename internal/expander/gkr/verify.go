package gkr

import (
	"fmt"

	"github.com/vybium/expander/internal/expander/circuit"
	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/poly"
	"github.com/vybium/expander/internal/expander/sumcheck"
	"github.com/vybium/expander/internal/expander/transcript"
)

// replayRounds re-derives the challenges the prover squeezed for one phase,
// checking each round's p(0)+p(1) against the running claim, and returns the
// final reduced claim plus the challenge vector.
func replayRounds(fld field.Field, roundPolys [][]field.Element, claim field.Element, tr *transcript.Transcript) (field.Element, []field.Element, error) {
	r := make([]field.Element, len(roundPolys))
	current := claim
	for v, evals := range roundPolys {
		for _, e := range evals {
			tr.AppendField(e)
		}
		challenge := tr.ChallengeField()
		next, err := sumcheck.CheckRound(fld, evals, current, challenge)
		if err != nil {
			return nil, nil, fmt.Errorf("round %d: %w", v, err)
		}
		r[v] = challenge
		current = next
	}
	return current, r, nil
}

// verifyLayer re-derives a layer's challenges from its proof and checks both
// the phase X and (if present) phase Y finalization equations. Returns the
// challenge point(s) so the caller can fold them into the next layer's claim.
func verifyLayer(fld field.Field, layer *circuit.CircuitLayer, eqOut []field.Element, claim field.Element, lp LayerProof, tr *transcript.Transcript) (rx, ry []field.Element, err error) {
	if len(lp.RoundPolysX) != layer.InputVarNum {
		return nil, nil, fmt.Errorf("gkr: phase X has %d rounds, want %d", len(lp.RoundPolysX), layer.InputVarNum)
	}

	constContribution, _, eqUni := layerEqTables(fld, layer, eqOut)
	claimPrime := claim.Sub(constContribution)

	reducedX, rx, err := replayRounds(fld, lp.RoundPolysX, claimPrime, tr)
	if err != nil {
		return nil, nil, fmt.Errorf("gkr: phase X: %w", err)
	}

	want := lp.ClaimVX.Mul(lp.ClaimHgX)
	if eqUni != nil {
		want = want.Add(lp.UniClaim)
	}
	if !want.Equal(reducedX) {
		return nil, nil, fmt.Errorf("gkr: phase X finalization mismatch: claimed vx*hgx(+uni) = %v, round reduction gives %v", want, reducedX)
	}

	if len(layer.Mul) == 0 {
		if lp.HasPhaseY {
			return nil, nil, fmt.Errorf("gkr: layer has no mul gates but proof includes phase Y")
		}
		// With no mul gates, hg(x) is entirely public: it must equal the
		// add-gate contribution alone.
		eqRx := poly.BuildEqXR(rx)
		addAtRx := addContributionAt(fld, layer, eqOut, eqRx)
		if !lp.ClaimHgX.Equal(addAtRx) {
			return nil, nil, fmt.Errorf("gkr: claimed hg(rx) = %v does not match the public add-gate contribution %v", lp.ClaimHgX, addAtRx)
		}
		return rx, nil, nil
	}

	if !lp.HasPhaseY {
		return nil, nil, fmt.Errorf("gkr: layer has mul gates but proof omits phase Y")
	}
	if len(lp.RoundPolysY) != layer.InputVarNum {
		return nil, nil, fmt.Errorf("gkr: phase Y has %d rounds, want %d", len(lp.RoundPolysY), layer.InputVarNum)
	}

	eqRx := poly.BuildEqXR(rx)
	addAtRx := addContributionAt(fld, layer, eqOut, eqRx)
	phaseYClaim := lp.ClaimHgX.Sub(addAtRx)

	reducedY, ryChallenges, err := replayRounds(fld, lp.RoundPolysY, phaseYClaim, tr)
	if err != nil {
		return nil, nil, fmt.Errorf("gkr: phase Y: %w", err)
	}
	ry = ryChallenges

	eqRy := poly.BuildEqXR(ry)
	hg2AtRy := mulHgYAt(fld, layer, eqOut, eqRx, eqRy)
	wantY := lp.ClaimVY.Mul(hg2AtRy)
	if !wantY.Equal(reducedY) {
		return nil, nil, fmt.Errorf("gkr: phase Y finalization mismatch: claimed vy*hg2(ry) = %v, round reduction gives %v", wantY, reducedY)
	}

	return rx, ry, nil
}

// Verify checks a GKR proof against a circuit's structure (gate lists and
// layer widths — no witness needed) and its public output values. It
// returns nil or an error if the proof is invalid. On success, layer 0's
// reduced point(s) and claim(s) have been checked to equal
// proof.FinalPoint0/FinalClaim0 (and FinalPoint1/FinalClaim1 when present),
// which the PCS layer then checks against a commitment to layer 0's inputs.
func Verify(fld field.Field, c *circuit.Circuit, outputVals []field.Element, proof *Proof, tr *transcript.Transcript) error {
	if len(c.Layers) == 0 {
		return fmt.Errorf("gkr: cannot verify an empty circuit")
	}
	if len(proof.LayerProofs) != len(c.Layers) {
		return fmt.Errorf("gkr: proof has %d layer proofs, want %d", len(proof.LayerProofs), len(c.Layers))
	}
	last := c.Layers[len(c.Layers)-1]
	if len(outputVals) != 1<<uint(last.OutputVarNum) {
		return fmt.Errorf("gkr: output has %d values, want %d", len(outputVals), 1<<uint(last.OutputVarNum))
	}

	rz := make([]field.Element, last.OutputVarNum)
	for i := range rz {
		rz[i] = tr.ChallengeField()
	}
	eqOut := poly.BuildEqXR(rz)
	claim, err := poly.EvaluateWithBuffer(rz, append([]field.Element(nil), outputVals...))
	if err != nil {
		return fmt.Errorf("gkr: evaluating output claim: %w", err)
	}

	for li := len(c.Layers) - 1; li >= 0; li-- {
		layer := c.Layers[li]
		lp := proof.LayerProofs[li]
		rx, ry, err := verifyLayer(fld, layer, eqOut, claim, lp, tr)
		if err != nil {
			return fmt.Errorf("gkr: layer %d: %w", li, err)
		}

		if li == 0 {
			if !equalPoints(rx, proof.FinalPoint0) || !lp.ClaimVX.Equal(proof.FinalClaim0) {
				return fmt.Errorf("gkr: layer 0 final opening point/claim does not match proof")
			}
			if lp.HasPhaseY != proof.HasFinalClaim1 {
				return fmt.Errorf("gkr: layer 0 phase Y presence does not match proof's final claim 1")
			}
			if lp.HasPhaseY && (!equalPoints(ry, proof.FinalPoint1) || !lp.ClaimVY.Equal(proof.FinalClaim1)) {
				return fmt.Errorf("gkr: layer 0 final opening point/claim 1 does not match proof")
			}
			return nil
		}

		if lp.HasPhaseY {
			alpha := tr.ChallengeField()
			eqOut, claim = combineEqTables(fld, rx, ry, alpha, lp.ClaimVX, lp.ClaimVY)
		} else {
			eqOut = poly.BuildEqXR(rx)
			claim = lp.ClaimVX
		}
	}
	return nil
}

func equalPoints(a, b []field.Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
