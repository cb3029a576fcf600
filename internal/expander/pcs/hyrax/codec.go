package hyrax

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cloudflare/bn256"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/pcs"
)

// Binary codec for Commitment/Opening, following the same length-prefixed
// conventions as internal/expander/gkr/file.go. Duplicated locally rather
// than imported from that package, matching this module's per-package
// codec helpers (internal/expander/pcs/orion/codec.go does the same).

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

// WriteCommitment serializes commitment's row commitments via bn256's
// canonical point marshaling.
func WriteCommitment(w io.Writer, commitment pcs.Commitment) error {
	c, ok := commitment.(*Commitment)
	if !ok {
		return fmt.Errorf("hyrax: WriteCommitment given a commitment of type %T, want *hyrax.Commitment", commitment)
	}
	if err := writeU64(w, uint64(len(c.RowCommits))); err != nil {
		return err
	}
	for _, p := range c.RowCommits {
		if err := writeBytes(w, p.Marshal()); err != nil {
			return err
		}
	}
	return nil
}

// ReadCommitment deserializes a Commitment written by WriteCommitment.
func ReadCommitment(r io.Reader) (pcs.Commitment, error) {
	n, err := readU64(r)
	if err != nil {
		return nil, err
	}
	rows := make([]*bn256.G1, n)
	for i := range rows {
		b, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		p := new(bn256.G1)
		if _, err := p.Unmarshal(b); err != nil {
			return nil, fmt.Errorf("hyrax: unmarshaling row commitment %d: %w", i, err)
		}
		rows[i] = p
	}
	return &Commitment{RowCommits: rows}, nil
}

// WriteOpening serializes opening's folded row.
func WriteOpening(w io.Writer, opening any) error {
	o, ok := opening.(*Opening)
	if !ok {
		return fmt.Errorf("hyrax: WriteOpening given an opening of type %T, want *hyrax.Opening", opening)
	}
	return writeElementVec(w, o.FoldedRow)
}

// ReadOpening deserializes an Opening written by WriteOpening.
func ReadOpening(r io.Reader, fld field.Field) (any, error) {
	vals, err := readElementVec(r, fld)
	if err != nil {
		return nil, err
	}
	return &Opening{FoldedRow: vals}, nil
}
