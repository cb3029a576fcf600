// Package gpu implements the write-only circuit/witness text serialization
// format spec.md §6 names for external GPU prover tooling: a TotalLayer/
// Layer[i] header, tagged Input/Output/Gates sections, and an optional
// Fiat-Shamir transcript appendix.
//
// Grounded on original_source/gpu/src/serdes.rs, which supplements spec.md's
// terse format description with the exact section ordering, hex-padding
// convention, and 40-byte-per-line transcript-appendix chunking this package
// reproduces. Read-side parsing is out of scope (per spec.md's "GPU format:
// write-only" note) — this package never needs to parse its own output back.
package gpu

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vybium/expander/internal/expander/circuit"
	"github.com/vybium/expander/internal/expander/field"
)

// fieldTypeTag names the field by serialized width, matching serdes.rs's
// size_of-based dispatch (32 bytes -> bn254, 4 -> m31ext3, 8 -> goldilocksext2).
func fieldTypeTag(fld field.Field) string {
	switch fld.SizeBytes() {
	case 32:
		return "bn254"
	case 4:
		return "m31ext3"
	case 8:
		return "goldilocksext2"
	default:
		return "unknown"
	}
}

// hexLittleEndian renders a field element's canonical little-endian bytes as
// a big-endian-looking "0x"-prefixed hex string, matching serdes.rs's
// "append in little-endian order (from most significant byte)" loop, which
// reads element_bytes back-to-front.
func hexLittleEndian(e field.Element) string {
	b := e.Bytes()
	out := make([]byte, 0, 2+len(b)*2)
	out = append(out, '0', 'x')
	for i := len(b) - 1; i >= 0; i-- {
		out = append(out, hexDigits[b[i]>>4], hexDigits[b[i]&0xF])
	}
	return string(out)
}

var hexDigits = "0123456789abcdef"

// WriteCircuit serializes c to w in the GPU text format, per
// serialize_circuit_to_file: a TotalLayer header, then per-layer headers,
// input/output value sections, and gate lines.
func WriteCircuit(w io.Writer, fld field.Field, c *circuit.Circuit) error {
	bw := bufio.NewWriterSize(w, 8*1024*1024)

	if _, err := fmt.Fprintf(bw, "TotalLayer %d %s\n", len(c.Layers), fieldTypeTag(fld)); err != nil {
		return err
	}

	for layerIdx, layer := range c.Layers {
		if _, err := fmt.Fprintf(bw, "Layer[%d] %d %d %d %d %d %d\n",
			layerIdx, len(layer.Add), len(layer.Mul),
			layer.InputVarNum, layer.OutputVarNum,
			len(layer.InputVals), len(layer.OutputVals)); err != nil {
			return err
		}

		if len(layer.InputVals) > 0 {
			if _, err := fmt.Fprintln(bw, "=====Input Values====="); err != nil {
				return err
			}
			for idx, v := range layer.InputVals {
				if _, err := fmt.Fprintf(bw, "InputVal[%d] %s\n", idx, hexLittleEndian(v)); err != nil {
					return err
				}
			}
		}

		if len(layer.OutputVals) > 0 {
			if _, err := fmt.Fprintln(bw, "=====Output Values====="); err != nil {
				return err
			}
			for idx, v := range layer.OutputVals {
				if _, err := fmt.Fprintf(bw, "OutputVal[%d] %s\n", idx, hexLittleEndian(v)); err != nil {
					return err
				}
			}
		}

		if len(layer.Add) > 0 || len(layer.Mul) > 0 {
			if _, err := fmt.Fprintln(bw, "=====Gates====="); err != nil {
				return err
			}
		}

		for _, g := range layer.Add {
			if _, err := fmt.Fprintf(bw, "Add %d %d %s\n", g.In0, g.Out, hexLittleEndian(g.Coef)); err != nil {
				return err
			}
		}
		for _, g := range layer.Mul {
			if _, err := fmt.Fprintf(bw, "Mul %d,%d %d %s\n", g.In0, g.In1, g.Out, hexLittleEndian(g.Coef)); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// WriteTranscriptAppendix appends the Fiat-Shamir transcript's digest and
// proof bytes to w, per serial_circuit_witness_as_plaintext's
// "=====Transcript Start=====" block: 40 bytes per line, each annotated with
// its byte-range comment.
func WriteTranscriptAppendix(w io.Writer, digest, proof []byte) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, "=====Transcript Start====="); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "TranscriptDigestByte=%d\n", len(digest)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "TranscriptProofByte=%d\n", len(proof)); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(bw, "=====Digest Bytes====="); err != nil {
		return err
	}
	if err := writeByteChunks(bw, digest, "digest"); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(bw, "=====Proof Bytes====="); err != nil {
		return err
	}
	if err := writeByteChunks(bw, proof, "proof"); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(bw, "=====Transcript End====="); err != nil {
		return err
	}
	return bw.Flush()
}

func writeByteChunks(bw *bufio.Writer, data []byte, label string) error {
	const chunkSize = 40
	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[i:end]
		for j, b := range chunk {
			if j > 0 {
				if _, err := bw.WriteString(","); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(bw, "%03d", b); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, " //%s[%d-%d]\n", label, i, end-1); err != nil {
			return err
		}
	}
	return nil
}
