package gkr

import (
	"testing"

	"github.com/vybium/expander/internal/expander/circuit"
	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/transcript"
)

// buildCircuit returns a 2-layer circuit mixing mul, add, const and a pow5
// unary gate, so the proof exercises every phase X/Y branch.
func buildCircuit(f *field.M31) *circuit.Circuit {
	layer0 := &circuit.CircuitLayer{
		InputVarNum:  2,
		OutputVarNum: 2,
		InputVals: []field.Element{
			f.NewElementFromUint64(2),
			f.NewElementFromUint64(3),
			f.NewElementFromUint64(5),
			f.NewElementFromUint64(7),
		},
		Mul: []circuit.GateMul{
			{In0: 0, In1: 1, Out: 0, Coef: f.One(), CoefType: circuit.CoefConstant},
		},
		Add: []circuit.GateAdd{
			{In0: 2, Out: 1, Coef: f.One(), CoefType: circuit.CoefConstant},
		},
		Const: []circuit.GateConst{
			{Out: 2, Coef: f.NewElementFromUint64(9), CoefType: circuit.CoefConstant},
		},
		Uni: []circuit.GateUni{
			{GateType: circuit.UniGateTypePow5, In0: 3, Out: 3, Coef: f.One(), CoefType: circuit.CoefConstant},
		},
	}
	layer1 := &circuit.CircuitLayer{
		InputVarNum:  2,
		OutputVarNum: 1,
		Mul: []circuit.GateMul{
			{In0: 0, In1: 1, Out: 0, Coef: f.One(), CoefType: circuit.CoefConstant},
		},
		Add: []circuit.GateAdd{
			{In0: 2, Out: 0, Coef: f.One(), CoefType: circuit.CoefConstant},
			{In0: 3, Out: 0, Coef: f.One(), CoefType: circuit.CoefConstant},
		},
	}
	return &circuit.Circuit{Layers: []*circuit.CircuitLayer{layer0, layer1}}
}

func TestProveVerifyRoundTrip(t *testing.T) {
	f := field.NewM31()
	c := buildCircuit(f)
	if err := c.Evaluate(f, nil); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	output := c.Output()

	proverTranscript := transcript.New(f, transcript.SHA256Hasher{})
	proof, err := Prove(f, c, proverTranscript)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	verifierTranscript := transcript.New(f, transcript.SHA256Hasher{})
	if err := Verify(f, c, output, proof, verifierTranscript); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsTamperedOutput(t *testing.T) {
	f := field.NewM31()
	c := buildCircuit(f)
	if err := c.Evaluate(f, nil); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	output := append([]field.Element(nil), c.Output()...)
	output[0] = output[0].Add(f.One())

	proverTranscript := transcript.New(f, transcript.SHA256Hasher{})
	proof, err := Prove(f, c, proverTranscript)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	verifierTranscript := transcript.New(f, transcript.SHA256Hasher{})
	if err := Verify(f, c, output, proof, verifierTranscript); err == nil {
		t.Fatal("expected Verify to reject a tampered output claim")
	}
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	f := field.NewM31()
	c := buildCircuit(f)
	if err := c.Evaluate(f, nil); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	output := c.Output()

	proverTranscript := transcript.New(f, transcript.SHA256Hasher{})
	proof, err := Prove(f, c, proverTranscript)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	proof.LayerProofs[1].ClaimVX = proof.LayerProofs[1].ClaimVX.Add(f.One())

	verifierTranscript := transcript.New(f, transcript.SHA256Hasher{})
	if err := Verify(f, c, output, proof, verifierTranscript); err == nil {
		t.Fatal("expected Verify to reject a tampered claim")
	}
}
