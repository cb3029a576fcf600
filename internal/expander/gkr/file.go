package gkr

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vybium/expander/internal/expander/field"
)

// WriteProof and ReadProof give a Proof a binary on-disk form so the CLI's
// prove/verify verbs and serve's HTTP surface (cmd/expander) can hand a
// proof between processes, matching the length-prefixed, field-agnostic
// encoding internal/expander/circuit/file.go uses for circuits and
// witnesses.

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeBool(w io.Writer, b bool) error {
	v := byte(0)
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := writeU64(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := readU64(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeElement(w io.Writer, e field.Element) error {
	_, err := w.Write(e.Bytes())
	return err
}

func readElement(r io.Reader, fld field.Field) (field.Element, error) {
	buf := make([]byte, fld.SizeBytes())
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return fld.NewElement(buf)
}

func writeElementVec(w io.Writer, vals []field.Element) error {
	if err := writeU64(w, uint64(len(vals))); err != nil {
		return err
	}
	for _, v := range vals {
		if err := writeElement(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readElementVec(r io.Reader, fld field.Field) ([]field.Element, error) {
	n, err := readU64(r)
	if err != nil {
		return nil, err
	}
	out := make([]field.Element, n)
	for i := range out {
		e, err := readElement(r, fld)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func writeElementMatrix(w io.Writer, rows [][]field.Element) error {
	if err := writeU64(w, uint64(len(rows))); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeElementVec(w, row); err != nil {
			return err
		}
	}
	return nil
}

func readElementMatrix(r io.Reader, fld field.Field) ([][]field.Element, error) {
	n, err := readU64(r)
	if err != nil {
		return nil, err
	}
	out := make([][]field.Element, n)
	for i := range out {
		row, err := readElementVec(r, fld)
		if err != nil {
			return nil, err
		}
		out[i] = row
	}
	return out, nil
}

func writeLayerProof(w io.Writer, lp LayerProof) error {
	if err := writeElementMatrix(w, lp.RoundPolysX); err != nil {
		return err
	}
	if err := writeElement(w, lp.ClaimVX); err != nil {
		return err
	}
	if err := writeElement(w, lp.ClaimHgX); err != nil {
		return err
	}
	if err := writeElement(w, lp.UniClaim); err != nil {
		return err
	}
	if err := writeBool(w, lp.HasPhaseY); err != nil {
		return err
	}
	if !lp.HasPhaseY {
		return nil
	}
	if err := writeElementMatrix(w, lp.RoundPolysY); err != nil {
		return err
	}
	return writeElement(w, lp.ClaimVY)
}

func readLayerProof(r io.Reader, fld field.Field) (LayerProof, error) {
	var lp LayerProof
	var err error
	if lp.RoundPolysX, err = readElementMatrix(r, fld); err != nil {
		return lp, err
	}
	if lp.ClaimVX, err = readElement(r, fld); err != nil {
		return lp, err
	}
	if lp.ClaimHgX, err = readElement(r, fld); err != nil {
		return lp, err
	}
	if lp.UniClaim, err = readElement(r, fld); err != nil {
		return lp, err
	}
	if lp.HasPhaseY, err = readBool(r); err != nil {
		return lp, err
	}
	if !lp.HasPhaseY {
		return lp, nil
	}
	if lp.RoundPolysY, err = readElementMatrix(r, fld); err != nil {
		return lp, err
	}
	if lp.ClaimVY, err = readElement(r, fld); err != nil {
		return lp, err
	}
	return lp, nil
}

func writeCheckpoint(w io.Writer, cp LayerCheckpoint) error {
	if err := writeBytes(w, cp.TranscriptState); err != nil {
		return err
	}
	if err := writeElementVec(w, cp.EqOut); err != nil {
		return err
	}
	return writeElement(w, cp.Claim)
}

func readCheckpoint(r io.Reader, fld field.Field) (LayerCheckpoint, error) {
	var cp LayerCheckpoint
	var err error
	if cp.TranscriptState, err = readBytes(r); err != nil {
		return cp, err
	}
	if cp.EqOut, err = readElementVec(r, fld); err != nil {
		return cp, err
	}
	if cp.Claim, err = readElement(r, fld); err != nil {
		return cp, err
	}
	return cp, nil
}

// WriteProof serializes proof to w.
func WriteProof(w io.Writer, proof *Proof) error {
	if err := writeU64(w, uint64(len(proof.LayerProofs))); err != nil {
		return err
	}
	for _, lp := range proof.LayerProofs {
		if err := writeLayerProof(w, lp); err != nil {
			return fmt.Errorf("gkr: writing layer proof: %w", err)
		}
	}

	if err := writeU64(w, uint64(len(proof.LayerCheckpoints))); err != nil {
		return err
	}
	for _, cp := range proof.LayerCheckpoints {
		if err := writeCheckpoint(w, cp); err != nil {
			return fmt.Errorf("gkr: writing layer checkpoint: %w", err)
		}
	}

	if err := writeElementVec(w, proof.FinalPoint0); err != nil {
		return err
	}
	if err := writeElement(w, proof.FinalClaim0); err != nil {
		return err
	}
	if err := writeBool(w, proof.HasFinalClaim1); err != nil {
		return err
	}
	if !proof.HasFinalClaim1 {
		return nil
	}
	if err := writeElementVec(w, proof.FinalPoint1); err != nil {
		return err
	}
	return writeElement(w, proof.FinalClaim1)
}

// ReadProof deserializes a Proof written by WriteProof.
func ReadProof(r io.Reader, fld field.Field) (*Proof, error) {
	proof := &Proof{}

	nLayers, err := readU64(r)
	if err != nil {
		return nil, err
	}
	proof.LayerProofs = make([]LayerProof, nLayers)
	for i := range proof.LayerProofs {
		lp, err := readLayerProof(r, fld)
		if err != nil {
			return nil, fmt.Errorf("gkr: reading layer proof %d: %w", i, err)
		}
		proof.LayerProofs[i] = lp
	}

	nCheckpoints, err := readU64(r)
	if err != nil {
		return nil, err
	}
	proof.LayerCheckpoints = make([]LayerCheckpoint, nCheckpoints)
	for i := range proof.LayerCheckpoints {
		cp, err := readCheckpoint(r, fld)
		if err != nil {
			return nil, fmt.Errorf("gkr: reading layer checkpoint %d: %w", i, err)
		}
		proof.LayerCheckpoints[i] = cp
	}

	if proof.FinalPoint0, err = readElementVec(r, fld); err != nil {
		return nil, err
	}
	if proof.FinalClaim0, err = readElement(r, fld); err != nil {
		return nil, err
	}
	if proof.HasFinalClaim1, err = readBool(r); err != nil {
		return nil, err
	}
	if !proof.HasFinalClaim1 {
		return proof, nil
	}
	if proof.FinalPoint1, err = readElementVec(r, fld); err != nil {
		return nil, err
	}
	if proof.FinalClaim1, err = readElement(r, fld); err != nil {
		return nil, err
	}
	return proof, nil
}
