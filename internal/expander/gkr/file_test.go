package gkr

import (
	"bytes"
	"testing"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/transcript"
)

func TestWriteReadProofRoundTrip(t *testing.T) {
	f := field.NewM31()
	c := buildCircuit(f)
	if err := c.Evaluate(f, nil); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	output := c.Output()

	proof, err := Prove(f, c, transcript.New(f, transcript.SHA256Hasher{}))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteProof(&buf, proof); err != nil {
		t.Fatalf("WriteProof: %v", err)
	}

	roundTripped, err := ReadProof(&buf, f)
	if err != nil {
		t.Fatalf("ReadProof: %v", err)
	}

	if err := Verify(f, c, output, roundTripped, transcript.New(f, transcript.SHA256Hasher{})); err != nil {
		t.Fatalf("Verify(round-tripped proof): %v", err)
	}
}
