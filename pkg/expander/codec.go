package expander

import (
	"encoding/binary"
	"io"

	"github.com/vybium/expander/internal/expander/field"
)

// Binary codec helpers for Proof's own framing (the PCS kind tag, the
// final-claim-1 marker, the point-reduction proof), following the same
// length-prefixed conventions as internal/expander/gkr/file.go and
// internal/expander/pcs/orion/codec.go. Duplicated locally rather than
// exported from gkr, matching this module's per-package codec helpers.

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
