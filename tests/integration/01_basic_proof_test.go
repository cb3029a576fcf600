package integration_test

import (
	"testing"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/pkg/expander"
)

// Test01_BasicProof exercises the full path an external caller takes:
// build a circuit, evaluate it, prove it, then verify the proof against the
// claimed output.
//
// Related example: examples/01_basic_proof/main.go
func Test01_BasicProof(t *testing.T) {
	f := field.NewM31()
	circ := &expander.Circuit{
		Layers: []*expander.CircuitLayer{
			{
				InputVarNum:  1,
				OutputVarNum: 0,
				InputVals:    []expander.FieldElement{f.NewElementFromUint64(10), f.NewElementFromUint64(32)},
				Add: []expander.GateAdd{
					{In0: 0, Out: 0, Coef: f.One()},
					{In0: 1, Out: 0, Coef: f.One()},
				},
			},
		},
	}
	if err := circ.Evaluate(f, nil); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	output := circ.Output()
	want := f.NewElementFromUint64(42)
	if !output[0].Equal(want) {
		t.Fatalf("output = %v, want %v", output[0], want)
	}

	cfg := expander.DefaultConfig()
	proof, err := expander.Prove(circ, cfg)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	ok, err := expander.Verify(circ, output, proof, cfg)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify returned false for an honest proof")
	}
}
