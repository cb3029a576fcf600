// Package circuit implements the layered arithmetic circuit data model
// (spec.md §3.2), its binary file codec and witness codec (spec.md §6), and
// a shared-memory serialization usable to mmap a circuit read-only across
// ranks on one host.
//
// Layer evaluation is grounded on the teacher's
// internal/vybium-starks-vm/vm/tables.go per-row, per-column weighted-sum
// pattern, generalized from a fixed VM instruction table to an arbitrary
// layered gate list.
package circuit

import (
	"fmt"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/transcript"
)

// CoefType tags how a gate's coefficient is determined.
type CoefType int

const (
	// CoefConstant is a coefficient fixed at circuit-construction time.
	CoefConstant CoefType = iota
	// CoefRandom is filled in from the transcript before proving, making
	// the statement depend on public randomness.
	CoefRandom
	// CoefPublicInput refers to a public-input value by index.
	CoefPublicInput
)

// GateMul is a fan-in-2 multiplication gate: out += coef * in0 * in1.
type GateMul struct {
	In0, In1, Out    uint64
	Coef             field.Element
	CoefType         CoefType
	PublicInputIndex uint64
}

// GateAdd is a fan-in-1 weighted gate: out += coef * in0.
type GateAdd struct {
	In0, Out         uint64
	Coef             field.Element
	CoefType         CoefType
	PublicInputIndex uint64
}

// GateConst is a fan-in-0 gate: out += coef.
type GateConst struct {
	Out              uint64
	Coef             field.Element
	CoefType         CoefType
	PublicInputIndex uint64
}

// Unary gate type tags, per spec.md §3.2.
const (
	UniGateTypePow5     = 12345
	UniGateTypeIdentity = 12346
)

// GateUni is a fan-in-1 nonlinear gate tagged by GateType.
type GateUni struct {
	GateType         uint64
	In0, Out         uint64
	Coef             field.Element
	CoefType         CoefType
	PublicInputIndex uint64
}

// StructureInfo records static facts about a layer's gate list.
type StructureInfo struct {
	// MaxDegreeOne is true iff there are no mul gates, which lets the GKR
	// driver skip sum-check's phase Y for this layer (spec.md §4.C).
	MaxDegreeOne bool
}

// CircuitLayer is one layer of a layered arithmetic circuit. Layer 0 holds
// the input values of the whole circuit.
type CircuitLayer struct {
	InputVarNum, OutputVarNum int

	InputVals, OutputVals []field.Element

	Mul   []GateMul
	Add   []GateAdd
	Const []GateConst
	Uni   []GateUni

	Structure StructureInfo
}

// Circuit is an ordered sequence of CircuitLayers, evaluated layer 0 first.
type Circuit struct {
	Layers []*CircuitLayer
}

// computeStructureInfo derives StructureInfo.MaxDegreeOne from the gate
// list; called once after a layer's gates are finalized.
func (l *CircuitLayer) computeStructureInfo() {
	l.Structure.MaxDegreeOne = len(l.Mul) == 0
}

// Validate checks spec.md §3.2's invariants: gate wire indices in range.
func (l *CircuitLayer) Validate() error {
	inLen := uint64(1) << uint(l.InputVarNum)
	outLen := uint64(1) << uint(l.OutputVarNum)
	checkIn := func(w uint64) error {
		if w >= inLen {
			return fmt.Errorf("circuit: input wire %d out of range [0,%d)", w, inLen)
		}
		return nil
	}
	checkOut := func(w uint64) error {
		if w >= outLen {
			return fmt.Errorf("circuit: output wire %d out of range [0,%d)", w, outLen)
		}
		return nil
	}
	for _, g := range l.Mul {
		if err := checkIn(g.In0); err != nil {
			return err
		}
		if err := checkIn(g.In1); err != nil {
			return err
		}
		if err := checkOut(g.Out); err != nil {
			return err
		}
	}
	for _, g := range l.Add {
		if err := checkIn(g.In0); err != nil {
			return err
		}
		if err := checkOut(g.Out); err != nil {
			return err
		}
	}
	for _, g := range l.Const {
		if err := checkOut(g.Out); err != nil {
			return err
		}
	}
	for _, g := range l.Uni {
		if err := checkIn(g.In0); err != nil {
			return err
		}
		if err := checkOut(g.Out); err != nil {
			return err
		}
	}
	if len(l.InputVals) != int(inLen) {
		return fmt.Errorf("circuit: input_vals has %d entries, want %d", len(l.InputVals), inLen)
	}
	return nil
}

func applyUnary(gateType uint64, x field.Element) (field.Element, error) {
	switch gateType {
	case UniGateTypePow5:
		return x.Exp(5), nil
	case UniGateTypeIdentity:
		return x, nil
	default:
		return nil, fmt.Errorf("circuit: unknown uni gate type %d", gateType)
	}
}

func resolvedCoef(fld field.Field, coef field.Element, coefType CoefType, publicInput []field.Element, idx uint64) (field.Element, error) {
	switch coefType {
	case CoefConstant, CoefRandom:
		// Random coefficients are resolved in place before proving by
		// FillRandomCoefficients; by evaluation time they read like
		// constants.
		return coef, nil
	case CoefPublicInput:
		if idx >= uint64(len(publicInput)) {
			return nil, fmt.Errorf("circuit: public input index %d out of range", idx)
		}
		return publicInput[idx], nil
	default:
		return nil, fmt.Errorf("circuit: unknown coefficient type %d", coefType)
	}
}

// Evaluate computes l.OutputVals from l.InputVals per spec.md §3.2:
// output[i] = Σ_g coef_g · f_g(inputs).
func (l *CircuitLayer) Evaluate(fld field.Field, publicInput []field.Element) error {
	if err := l.Validate(); err != nil {
		return err
	}
	out := make([]field.Element, 1<<uint(l.OutputVarNum))
	for i := range out {
		out[i] = fld.Zero()
	}

	for _, g := range l.Mul {
		coef, err := resolvedCoef(fld, g.Coef, g.CoefType, publicInput, g.PublicInputIndex)
		if err != nil {
			return err
		}
		term := l.InputVals[g.In0].Mul(l.InputVals[g.In1]).Mul(coef)
		out[g.Out] = out[g.Out].Add(term)
	}
	for _, g := range l.Add {
		coef, err := resolvedCoef(fld, g.Coef, g.CoefType, publicInput, g.PublicInputIndex)
		if err != nil {
			return err
		}
		term := l.InputVals[g.In0].Mul(coef)
		out[g.Out] = out[g.Out].Add(term)
	}
	for _, g := range l.Const {
		coef, err := resolvedCoef(fld, g.Coef, g.CoefType, publicInput, g.PublicInputIndex)
		if err != nil {
			return err
		}
		out[g.Out] = out[g.Out].Add(coef)
	}
	for _, g := range l.Uni {
		coef, err := resolvedCoef(fld, g.Coef, g.CoefType, publicInput, g.PublicInputIndex)
		if err != nil {
			return err
		}
		val, err := applyUnary(g.GateType, l.InputVals[g.In0])
		if err != nil {
			return err
		}
		term := val.Mul(coef)
		out[g.Out] = out[g.Out].Add(term)
	}

	l.OutputVals = out
	l.computeStructureInfo()
	return nil
}

// Evaluate runs every layer in order, chaining layer i+1's InputVals to
// layer i's OutputVals (spec.md §3.2's invariant "layer i+1's inputs equal
// layer i's outputs after evaluation").
func (c *Circuit) Evaluate(fld field.Field, publicInput []field.Element) error {
	if len(c.Layers) == 0 {
		return fmt.Errorf("circuit: cannot evaluate an empty circuit")
	}
	for i, layer := range c.Layers {
		if err := layer.Evaluate(fld, publicInput); err != nil {
			return fmt.Errorf("circuit: evaluating layer %d: %w", i, err)
		}
		if i+1 < len(c.Layers) {
			next := c.Layers[i+1]
			if 1<<uint(next.InputVarNum) != len(layer.OutputVals) {
				return fmt.Errorf("circuit: layer %d output width %d does not match layer %d input width %d",
					i, len(layer.OutputVals), i+1, 1<<uint(next.InputVarNum))
			}
			next.InputVals = layer.OutputVals
		}
	}
	return nil
}

// Output returns the values of the final layer after Evaluate.
func (c *Circuit) Output() []field.Element {
	return c.Layers[len(c.Layers)-1].OutputVals
}

// randomCoefSite names one gate whose coefficient is tagged CoefRandom, per
// the design note representation "(layer_id, gate_kind, gate_idx)".
type randomCoefSite struct {
	layerID  int
	gateKind string
	gateIdx  int
}

// randomCoefSites enumerates every CoefRandom-tagged gate in the circuit.
func (c *Circuit) randomCoefSites() []randomCoefSite {
	var sites []randomCoefSite
	for li, layer := range c.Layers {
		for i, g := range layer.Mul {
			if g.CoefType == CoefRandom {
				sites = append(sites, randomCoefSite{li, "mul", i})
			}
		}
		for i, g := range layer.Add {
			if g.CoefType == CoefRandom {
				sites = append(sites, randomCoefSite{li, "add", i})
			}
		}
		for i, g := range layer.Const {
			if g.CoefType == CoefRandom {
				sites = append(sites, randomCoefSite{li, "const", i})
			}
		}
		for i, g := range layer.Uni {
			if g.CoefType == CoefRandom {
				sites = append(sites, randomCoefSite{li, "uni", i})
			}
		}
	}
	return sites
}

// FillRandomCoefficients rewrites every CoefRandom-tagged gate's coefficient
// by squeezing a fresh challenge from tr, before proving. Supplements
// spec.md's terse mention of Random-tagged coefficients with the concrete
// rewrite-in-place pass described by the Design Notes and grounded on
// original_source/gkr/src/verifier/snark.rs's random-input-commitment flow.
func (c *Circuit) FillRandomCoefficients(fld field.Field, tr *transcript.Transcript) {
	for _, site := range c.randomCoefSites() {
		challenge := tr.ChallengeField()
		layer := c.Layers[site.layerID]
		switch site.gateKind {
		case "mul":
			layer.Mul[site.gateIdx].Coef = challenge
		case "add":
			layer.Add[site.gateIdx].Coef = challenge
		case "const":
			layer.Const[site.gateIdx].Coef = challenge
		case "uni":
			layer.Uni[site.gateIdx].Coef = challenge
		}
	}
}
