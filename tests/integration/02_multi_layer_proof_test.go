package integration_test

import (
	"bytes"
	"testing"

	"github.com/vybium/expander/internal/expander/circuit"
	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/pkg/expander"
)

// Test02_MultiLayerProofOverTheWire exercises a multi-layer circuit over
// BN254, round-tripping the circuit, witness and proof through their binary
// file codecs (a byte buffer standing in for a file) rather than keeping
// any of them in memory between prove and verify.
//
// Related example: examples/02_multi_layer_circuit/main.go
func Test02_MultiLayerProofOverTheWire(t *testing.T) {
	f := field.NewBN254Fr()
	circ := &expander.Circuit{
		Layers: []*expander.CircuitLayer{
			{
				InputVarNum:  2,
				OutputVarNum: 1,
				Mul: []expander.GateMul{
					{In0: 0, In1: 1, Out: 0, Coef: f.One()},
					{In0: 2, In1: 3, Out: 1, Coef: f.One()},
				},
			},
			{
				InputVarNum:  1,
				OutputVarNum: 0,
				Add: []expander.GateAdd{
					{In0: 0, Out: 0, Coef: f.One()},
					{In0: 1, Out: 0, Coef: f.One()},
				},
			},
		},
	}
	witness := []expander.FieldElement{
		f.NewElementFromUint64(2),
		f.NewElementFromUint64(3),
		f.NewElementFromUint64(4),
		f.NewElementFromUint64(5),
	}

	var circuitBuf, witnessBuf, proofBuf bytes.Buffer
	if err := circuit.WriteCircuitFile(&circuitBuf, f, circ); err != nil {
		t.Fatalf("WriteCircuitFile: %v", err)
	}
	if err := circuit.WriteWitnessFile(&witnessBuf, witness); err != nil {
		t.Fatalf("WriteWitnessFile: %v", err)
	}

	loaded, err := circuit.ReadCircuitFile(&circuitBuf, f)
	if err != nil {
		t.Fatalf("ReadCircuitFile: %v", err)
	}
	loadedWitness, err := circuit.ReadWitnessFile(&witnessBuf, f)
	if err != nil {
		t.Fatalf("ReadWitnessFile: %v", err)
	}
	loaded.Layers[0].InputVals = loadedWitness
	if err := loaded.Evaluate(f, nil); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	output := loaded.Output()
	want := f.NewElementFromUint64(26) // 2*3 + 4*5
	if !output[0].Equal(want) {
		t.Fatalf("output = %v, want %v", output[0], want)
	}

	cfg := expander.DefaultConfig().WithField(expander.FieldBN254)
	proof, err := expander.Prove(loaded, cfg)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if err := expander.WriteProof(&proofBuf, proof); err != nil {
		t.Fatalf("WriteProof: %v", err)
	}

	readProof, err := expander.ReadProof(&proofBuf, f)
	if err != nil {
		t.Fatalf("ReadProof: %v", err)
	}
	ok, err := expander.Verify(loaded, output, readProof, cfg)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify returned false for an honest proof round-tripped through the wire codecs")
	}
}
