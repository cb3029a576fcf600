package circuit

import (
	"bytes"

	"github.com/vybium/expander/internal/expander/field"
)

// BytesSize returns the number of bytes ToMemory writes for c, so a caller
// can size a POSIX shared-memory segment (or an mmap'd file) before
// populating it — mirroring original_source/circuit/src/layered/share_mem.rs's
// SharedMemory trait, ported from raw pointer arithmetic to a []byte buffer
// since idiomatic Go has no unsafe pointer-copy trait.
func BytesSize(fld field.Field, c *Circuit) int {
	var buf bytes.Buffer
	// ToMemory's own writer never errors on a bytes.Buffer.
	_ = ToMemory(&buf, fld, c)
	return buf.Len()
}

// ToMemory writes c in the same flat, length-prefixed layout a rank would
// mmap read-only and hand to all sibling ranks on one host, skipping the
// file format's magic, field sentinel and random-coefficient index (those
// concerns belong to the on-disk format, not to an in-process transfer).
func ToMemory(w *bytes.Buffer, fld field.Field, c *Circuit) error {
	if err := writeU64(w, uint64(len(c.Layers))); err != nil {
		return err
	}
	for _, l := range c.Layers {
		s := segmentFromLayer(l)
		if err := writeSegment(w, fld, s); err != nil {
			return err
		}
	}
	return nil
}

// FromMemory reads a Circuit back out of the layout ToMemory produced.
// Layers' InputVals are left empty — the caller attaches a witness, same as
// after ReadCircuitFile.
func FromMemory(buf []byte, fld field.Field) (*Circuit, error) {
	r := bytes.NewReader(buf)
	layerCount, err := readU64(r)
	if err != nil {
		return nil, err
	}
	c := &Circuit{Layers: make([]*CircuitLayer, layerCount)}
	for i := range c.Layers {
		s, err := readSegment(r, fld)
		if err != nil {
			return nil, err
		}
		l, err := s.toLayer()
		if err != nil {
			return nil, err
		}
		c.Layers[i] = l
	}
	return c, nil
}
