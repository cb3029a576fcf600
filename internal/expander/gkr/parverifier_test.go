package gkr

import (
	"testing"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/transcript"
)

func TestVerifyParallelMatchesSequentialVerify(t *testing.T) {
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

	sequentialTranscript := transcript.New(f, transcript.SHA256Hasher{})
	if err := Verify(f, c, output, proof, sequentialTranscript); err != nil {
		t.Fatalf("sequential Verify: %v", err)
	}

	if err := VerifyParallel(f, c, output, proof, transcript.SHA256Hasher{}, transcript.New(f, transcript.SHA256Hasher{}).State()); err != nil {
		t.Fatalf("VerifyParallel: %v", err)
	}
}

func TestVerifyParallelRejectsTamperedLayer(t *testing.T) {
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

	if err := VerifyParallel(f, c, output, proof, transcript.SHA256Hasher{}, transcript.New(f, transcript.SHA256Hasher{}).State()); err == nil {
		t.Fatal("expected VerifyParallel to reject a tampered claim")
	}
}

func TestVerifyParallelRejectsTamperedOutput(t *testing.T) {
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

	if err := VerifyParallel(f, c, output, proof, transcript.SHA256Hasher{}, transcript.New(f, transcript.SHA256Hasher{}).State()); err == nil {
		t.Fatal("expected VerifyParallel to reject a tampered output claim")
	}
}
