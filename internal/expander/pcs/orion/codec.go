package orion

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/pcs"
)

// Binary codec for Commitment/Opening, following the same length-prefixed
// conventions as internal/expander/gkr/file.go and
// internal/expander/circuit/file.go. Duplicated locally rather than
// imported from either package, matching the rest of this module's
// per-package codec helpers.

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

// WriteCommitment serializes commitment's Merkle root.
func WriteCommitment(w io.Writer, commitment pcs.Commitment) error {
	c, ok := commitment.(*Commitment)
	if !ok {
		return fmt.Errorf("orion: WriteCommitment given a commitment of type %T, want *orion.Commitment", commitment)
	}
	return writeBytes(w, c.Root)
}

// ReadCommitment deserializes a Commitment written by WriteCommitment.
func ReadCommitment(r io.Reader) (pcs.Commitment, error) {
	root, err := readBytes(r)
	if err != nil {
		return nil, err
	}
	return &Commitment{Root: root}, nil
}

// WriteOpening serializes opening's evaluation row, proximity rows, and
// queried columns with their Merkle paths.
func WriteOpening(w io.Writer, opening any) error {
	o, ok := opening.(*Opening)
	if !ok {
		return fmt.Errorf("orion: WriteOpening given an opening of type %T, want *orion.Opening", opening)
	}
	if err := writeElementVec(w, o.E); err != nil {
		return err
	}
	if err := writeElementMatrix(w, o.ProximityRows); err != nil {
		return err
	}
	if err := writeU64(w, uint64(len(o.QueryIndices))); err != nil {
		return err
	}
	for _, idx := range o.QueryIndices {
		if err := writeU64(w, uint64(idx)); err != nil {
			return err
		}
	}
	if err := writeElementMatrix(w, o.QueryColumns); err != nil {
		return err
	}
	if err := writeU64(w, uint64(len(o.QueryProofs))); err != nil {
		return err
	}
	for _, path := range o.QueryProofs {
		if err := writeU64(w, uint64(len(path))); err != nil {
			return err
		}
		for _, node := range path {
			if err := writeBytes(w, node.Hash); err != nil {
				return err
			}
			if err := writeBool(w, node.IsRight); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadOpening deserializes an Opening written by WriteOpening.
func ReadOpening(r io.Reader, fld field.Field) (any, error) {
	var o Opening
	var err error
	if o.E, err = readElementVec(r, fld); err != nil {
		return nil, err
	}
	if o.ProximityRows, err = readElementMatrix(r, fld); err != nil {
		return nil, err
	}
	nq, err := readU64(r)
	if err != nil {
		return nil, err
	}
	o.QueryIndices = make([]int, nq)
	for i := range o.QueryIndices {
		v, err := readU64(r)
		if err != nil {
			return nil, err
		}
		o.QueryIndices[i] = int(v)
	}
	if o.QueryColumns, err = readElementMatrix(r, fld); err != nil {
		return nil, err
	}
	nPaths, err := readU64(r)
	if err != nil {
		return nil, err
	}
	o.QueryProofs = make([][]proofNode, nPaths)
	for i := range o.QueryProofs {
		nNodes, err := readU64(r)
		if err != nil {
			return nil, err
		}
		path := make([]proofNode, nNodes)
		for j := range path {
			hash, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			isRight, err := readBool(r)
			if err != nil {
				return nil, err
			}
			path[j] = proofNode{Hash: hash, IsRight: isRight}
		}
		o.QueryProofs[i] = path
	}
	return &o, nil
}
