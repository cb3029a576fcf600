// Command expander is the Expander GKR prover/verifier CLI: prove and
// verify operate on circuit/witness/proof files, and serve exposes the same
// operations over HTTP, per spec.md §6.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/vybium/expander/internal/expander/circuit"
	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/pkg/expander"
)

// buildField mirrors expander.FieldKind.build (unexported) so the CLI can
// read circuit/witness/proof files without reaching into pkg/expander's
// internals.
func buildField(kind expander.FieldKind) (field.Field, error) {
	switch kind {
	case expander.FieldM31:
		return field.NewM31(), nil
	case expander.FieldGoldilocks:
		return field.NewGoldilocks(), nil
	case expander.FieldBN254:
		return field.NewBN254Fr(), nil
	case expander.FieldGF2_128:
		return field.NewGF2_128(), nil
	default:
		return nil, fmt.Errorf("unknown field kind %v", kind)
	}
}

func main() {
	if len(os.Args) < 2 {
		fatal("usage: expander <prove|verify|serve> [args...]")
	}

	switch os.Args[1] {
	case "prove":
		runProve(os.Args[2:])
	case "verify":
		runVerify(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	default:
		fatal(fmt.Sprintf("unknown verb %q: want prove, verify or serve", os.Args[1]))
	}
}

func loadCircuitFile(cfg *expander.Config, circuitPath, witnessPath string) (*expander.Circuit, error) {
	fld, err := buildField(cfg.Field)
	if err != nil {
		return nil, err
	}

	cf, err := os.Open(circuitPath)
	if err != nil {
		return nil, fmt.Errorf("opening circuit file: %w", err)
	}
	defer cf.Close()
	c, err := circuit.ReadCircuitFile(cf, fld)
	if err != nil {
		return nil, fmt.Errorf("reading circuit file: %w", err)
	}

	wf, err := os.Open(witnessPath)
	if err != nil {
		return nil, fmt.Errorf("opening witness file: %w", err)
	}
	defer wf.Close()
	witness, err := circuit.ReadWitnessFile(wf, fld)
	if err != nil {
		return nil, fmt.Errorf("reading witness file: %w", err)
	}

	if len(c.Layers) == 0 {
		return nil, fmt.Errorf("circuit file has no layers")
	}
	c.Layers[0].InputVals = witness
	if err := c.Evaluate(fld, nil); err != nil {
		return nil, fmt.Errorf("evaluating circuit: %w", err)
	}
	return c, nil
}

func runProve(args []string) {
	if len(args) < 3 {
		fatal("usage: expander prove <circuit-file> <witness-file> <proof-file>")
	}
	circuitPath, witnessPath, proofPath := args[0], args[1], args[2]

	cfg := expander.DefaultConfig()
	logStderr("loading circuit and witness...")
	c, err := loadCircuitFile(cfg, circuitPath, witnessPath)
	if err != nil {
		fatal(err.Error())
	}

	logStderr("proving...")
	proof, err := expander.Prove(c, cfg)
	if err != nil {
		fatal(fmt.Sprintf("prove failed: %v", err))
	}

	pf, err := os.Create(proofPath)
	if err != nil {
		fatal(fmt.Sprintf("creating proof file: %v", err))
	}
	defer pf.Close()
	if err := expander.WriteProof(pf, proof); err != nil {
		fatal(fmt.Sprintf("writing proof file: %v", err))
	}
	logStderr("done")
}

func runVerify(args []string) {
	if len(args) < 3 {
		fatal("usage: expander verify <circuit-file> <witness-file> <proof-file>")
	}
	circuitPath, witnessPath, proofPath := args[0], args[1], args[2]

	cfg := expander.DefaultConfig()
	c, err := loadCircuitFile(cfg, circuitPath, witnessPath)
	if err != nil {
		fatal(err.Error())
	}
	output := c.Output()

	fld, err := buildField(cfg.Field)
	if err != nil {
		fatal(err.Error())
	}
	pf, err := os.Open(proofPath)
	if err != nil {
		fatal(fmt.Sprintf("opening proof file: %v", err))
	}
	defer pf.Close()
	proof, err := expander.ReadProof(pf, fld)
	if err != nil {
		fatal(fmt.Sprintf("reading proof file: %v", err))
	}

	ok, err := expander.Verify(c, output, proof, cfg)
	if err != nil {
		fatal(fmt.Sprintf("verify failed: %v", err))
	}
	if !ok {
		fatal("proof rejected")
	}
	fmt.Println("proof accepted")
}

type proveRequest struct {
	CircuitPath string `json:"circuit_path"`
	WitnessPath string `json:"witness_path"`
}

type verifyRequest struct {
	CircuitPath string `json:"circuit_path"`
	WitnessPath string `json:"witness_path"`
	ProofPath   string `json:"proof_path"`
}

func newServeMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/prove", func(w http.ResponseWriter, r *http.Request) {
		var req proveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cfg := expander.DefaultConfig()
		c, err := loadCircuitFile(cfg, req.CircuitPath, req.WitnessPath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		proof, err := expander.Prove(c, cfg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		if err := expander.WriteProof(w, proof); err != nil {
			logStderr(fmt.Sprintf("writing proof response: %v", err))
		}
	})

	mux.HandleFunc("/verify", func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cfg := expander.DefaultConfig()
		c, err := loadCircuitFile(cfg, req.CircuitPath, req.WitnessPath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fld, err := buildField(cfg.Field)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		pf, err := os.Open(req.ProofPath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer pf.Close()
		proof, err := expander.ReadProof(pf, fld)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ok, err := expander.Verify(c, c.Output(), proof, cfg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]bool{"accepted": ok})
	})

	return mux
}

func runServe(args []string) {
	addr := ":8080"
	if len(args) > 0 {
		addr = args[0]
	}

	logStderr(fmt.Sprintf("listening on %s", addr))
	if err := http.ListenAndServe(addr, newServeMux()); err != nil {
		fatal(err.Error())
	}
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "expander:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
