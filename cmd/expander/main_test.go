package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/vybium/expander/internal/expander/circuit"
	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/pkg/expander"
)

func writeFixture(t *testing.T, dir string) (circuitPath, witnessPath string) {
	t.Helper()
	f := field.NewM31()
	c := &circuit.Circuit{
		Layers: []*circuit.CircuitLayer{{
			InputVarNum:  1,
			OutputVarNum: 1,
			Add: []circuit.GateAdd{
				{In0: 0, Out: 0, Coef: f.One()},
				{In0: 1, Out: 0, Coef: f.One()},
			},
		}},
	}

	circuitPath = filepath.Join(dir, "circuit.bin")
	cf, err := os.Create(circuitPath)
	if err != nil {
		t.Fatalf("create circuit file: %v", err)
	}
	defer cf.Close()
	if err := circuit.WriteCircuitFile(cf, f, c); err != nil {
		t.Fatalf("WriteCircuitFile: %v", err)
	}

	witnessPath = filepath.Join(dir, "witness.bin")
	wf, err := os.Create(witnessPath)
	if err != nil {
		t.Fatalf("create witness file: %v", err)
	}
	defer wf.Close()
	witness := []field.Element{f.NewElementFromUint64(4), f.NewElementFromUint64(5)}
	if err := circuit.WriteWitnessFile(wf, witness); err != nil {
		t.Fatalf("WriteWitnessFile: %v", err)
	}
	return circuitPath, witnessPath
}

func TestBuildFieldKnownKinds(t *testing.T) {
	for _, kind := range []expander.FieldKind{
		expander.FieldM31, expander.FieldGoldilocks, expander.FieldBN254, expander.FieldGF2_128,
	} {
		if _, err := buildField(kind); err != nil {
			t.Fatalf("buildField(%v): %v", kind, err)
		}
	}
}

func TestBuildFieldRejectsUnknownKind(t *testing.T) {
	if _, err := buildField(expander.FieldKind(99)); err == nil {
		t.Fatal("expected an error for an unknown field kind")
	}
}

func TestLoadCircuitFileEvaluatesWitness(t *testing.T) {
	dir := t.TempDir()
	circuitPath, witnessPath := writeFixture(t, dir)

	cfg := expander.DefaultConfig()
	c, err := loadCircuitFile(cfg, circuitPath, witnessPath)
	if err != nil {
		t.Fatalf("loadCircuitFile: %v", err)
	}
	output := c.Output()
	if len(output) != 2 {
		t.Fatalf("expected two output values (OutputVarNum 1), got %d", len(output))
	}
	f := field.NewM31()
	if !output[0].Equal(f.NewElementFromUint64(9)) {
		t.Fatalf("expected output 9, got %v", output[0])
	}
}

func TestLoadCircuitFileRejectsMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, witnessPath := writeFixture(t, dir)

	cfg := expander.DefaultConfig()
	if _, err := loadCircuitFile(cfg, filepath.Join(dir, "does-not-exist.bin"), witnessPath); err == nil {
		t.Fatal("expected an error for a missing circuit file")
	}
}

func TestProveVerifyHTTPHandlers(t *testing.T) {
	dir := t.TempDir()
	circuitPath, witnessPath := writeFixture(t, dir)
	proofPath := filepath.Join(dir, "proof.bin")

	mux := newServeMux()

	body, _ := json.Marshal(proveRequest{CircuitPath: circuitPath, WitnessPath: witnessPath})
	proveReq := httptest.NewRequest("POST", "/prove", bytes.NewReader(body))
	proveResp := httptest.NewRecorder()
	mux.ServeHTTP(proveResp, proveReq)
	if proveResp.Code != 200 {
		t.Fatalf("POST /prove: status %d, body %q", proveResp.Code, proveResp.Body.String())
	}
	if err := os.WriteFile(proofPath, proveResp.Body.Bytes(), 0o644); err != nil {
		t.Fatalf("writing proof to disk: %v", err)
	}

	vbody, _ := json.Marshal(verifyRequest{CircuitPath: circuitPath, WitnessPath: witnessPath, ProofPath: proofPath})
	verifyReq := httptest.NewRequest("POST", "/verify", bytes.NewReader(vbody))
	verifyResp := httptest.NewRecorder()
	mux.ServeHTTP(verifyResp, verifyReq)
	if verifyResp.Code != 200 {
		t.Fatalf("POST /verify: status %d, body %q", verifyResp.Code, verifyResp.Body.String())
	}

	var result map[string]bool
	if err := json.Unmarshal(verifyResp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding verify response: %v", err)
	}
	if !result["accepted"] {
		t.Fatal("expected the proof to be accepted")
	}
}

func TestReadyHandler(t *testing.T) {
	mux := newServeMux()
	req := httptest.NewRequest("GET", "/ready", nil)
	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, req)
	if resp.Code != 200 {
		t.Fatalf("GET /ready: status %d", resp.Code)
	}
}
