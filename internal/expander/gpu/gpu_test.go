package gpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vybium/expander/internal/expander/circuit"
	"github.com/vybium/expander/internal/expander/field"
)

func TestWriteCircuitFormat(t *testing.T) {
	fld := field.NewM31()

	layer0 := &circuit.CircuitLayer{
		InputVarNum: 1, OutputVarNum: 1,
		InputVals:  []field.Element{fld.NewElementFromUint64(2), fld.NewElementFromUint64(3)},
		OutputVals: []field.Element{fld.NewElementFromUint64(6), fld.Zero()},
		Mul: []circuit.GateMul{
			{In0: 0, In1: 1, Out: 0, Coef: fld.One()},
		},
	}
	c := &circuit.Circuit{Layers: []*circuit.CircuitLayer{layer0}}

	var buf bytes.Buffer
	if err := WriteCircuit(&buf, fld, c); err != nil {
		t.Fatalf("WriteCircuit: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"TotalLayer 1 m31ext3",
		"Layer[0] 0 1 1 1 2 2",
		"=====Input Values=====",
		"=====Gates=====",
		"Mul 0,1 0 ",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q, got:\n%s", want, out)
		}
	}
}

func TestWriteCircuitEmptyLayerOmitsSections(t *testing.T) {
	fld := field.NewM31()
	layer0 := &circuit.CircuitLayer{InputVarNum: 0, OutputVarNum: 0, InputVals: []field.Element{fld.Zero()}, OutputVals: []field.Element{fld.Zero()}}
	c := &circuit.Circuit{Layers: []*circuit.CircuitLayer{layer0}}

	var buf bytes.Buffer
	if err := WriteCircuit(&buf, fld, c); err != nil {
		t.Fatalf("WriteCircuit: %v", err)
	}
	if strings.Contains(buf.String(), "=====Gates=====") {
		t.Fatal("gate-less layer should not emit a Gates section marker")
	}
}

func TestWriteTranscriptAppendixChunking(t *testing.T) {
	digest := bytes.Repeat([]byte{0xAB}, 45)
	proof := []byte{1, 2, 3}

	var buf bytes.Buffer
	if err := WriteTranscriptAppendix(&buf, digest, proof); err != nil {
		t.Fatalf("WriteTranscriptAppendix: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "//digest[0-39]") || !strings.Contains(out, "//digest[40-44]") {
		t.Fatalf("expected two digest chunks split at 40 bytes, got:\n%s", out)
	}
	if !strings.Contains(out, "TranscriptDigestByte=45") || !strings.Contains(out, "TranscriptProofByte=3") {
		t.Fatalf("missing byte-count header lines, got:\n%s", out)
	}
}
