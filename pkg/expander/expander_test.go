package expander

import (
	"testing"

	internalfield "github.com/vybium/expander/internal/expander/field"
)

func buildAdderCircuit(f *internalfield.M31) *Circuit {
	layer0 := &CircuitLayer{
		InputVarNum:  1,
		OutputVarNum: 1,
		InputVals:    []internalfield.Element{f.NewElementFromUint64(4), f.NewElementFromUint64(5)},
		Add: []GateAdd{
			{In0: 0, Out: 0, Coef: f.One()},
			{In0: 1, Out: 0, Coef: f.One()},
		},
	}
	return &Circuit{Layers: []*CircuitLayer{layer0}}
}

func TestProveVerifyRoundTrip(t *testing.T) {
	f := internalfield.NewM31()
	circ := buildAdderCircuit(f)
	if err := circ.Evaluate(f, nil); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	output := circ.Output()

	cfg := DefaultConfig()
	proof, err := Prove(circ, cfg)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	ok, err := Verify(circ, output, proof, cfg)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify returned false for an honest proof")
	}
}

func TestVerifyRejectsTamperedOutput(t *testing.T) {
	f := internalfield.NewM31()
	circ := buildAdderCircuit(f)
	if err := circ.Evaluate(f, nil); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	output := append([]internalfield.Element(nil), circ.Output()...)
	output[0] = output[0].Add(f.One())

	cfg := DefaultConfig()
	proof, err := Prove(circ, cfg)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	ok, err := Verify(circ, output, proof, cfg)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify accepted a tampered output claim")
	}
}

func TestProveWithParallelVerify(t *testing.T) {
	f := internalfield.NewM31()
	circ := buildAdderCircuit(f)
	if err := circ.Evaluate(f, nil); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	output := circ.Output()

	cfg := DefaultConfig().WithParallelVerify(true)
	proof, err := Prove(circ, cfg)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	ok, err := Verify(circ, output, proof, cfg)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify (parallel) returned false for an honest proof")
	}
}

func TestConfigValidateRejectsNilMPI(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MPI = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate to reject a nil MPI config")
	}
}

func TestConfigCloneIsIndependent(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Field = FieldBN254
	if cfg.Field == FieldBN254 {
		t.Fatal("mutating the clone's Field affected the original")
	}
}
