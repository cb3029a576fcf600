package circuit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vybium/expander/internal/expander/field"
)

// circuitFileMagic is the magic number of the CIRCUIT4 file format, per
// spec.md §6.
const circuitFileMagic uint64 = 0x3456CAB1C0100343

// fieldSentinel identifies which concrete field a circuit file was written
// for. 32 bytes, zero-padded, holding the field's Name().
type fieldSentinel [32]byte

func newFieldSentinel(name string) fieldSentinel {
	var s fieldSentinel
	copy(s[:], name)
	return s
}

func (s fieldSentinel) name() string {
	i := bytes.IndexByte(s[:], 0)
	if i < 0 {
		i = len(s)
	}
	return string(s[:i])
}

// allocation is one (i_offset, o_offset) pairing for a segment child.
type allocation struct {
	IOffset, OOffset uint64
}

// segmentChild references a child segment id plus its allocations within
// the parent segment.
type segmentChild struct {
	SegmentID   uint64
	Allocations []allocation
}

// segment is the on-disk unit of the circuit file format: spec.md §6
// layers a circuit as a DAG of segments so that repeated sub-circuits can
// be shared. Expander's in-memory Circuit is a flat layer list, so the
// codec here treats each layer as exactly one segment with no children —
// documented as a deliberate simplification in DESIGN.md.
type segment struct {
	InputLen, OutputLen uint64
	Children            []segmentChild

	Mul   []GateMul
	Add   []GateAdd
	Const []GateConst
	Uni   []GateUni
}

func writeU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func writeCoef(w io.Writer, fld field.Field, coefType CoefType, coef field.Element, publicInputIdx uint64) error {
	if err := writeU64(w, uint64(coefType)); err != nil {
		return err
	}
	switch coefType {
	case CoefPublicInput:
		return writeU64(w, publicInputIdx)
	default:
		_, err := w.Write(coef.Bytes())
		return err
	}
}

func readCoef(r io.Reader, fld field.Field) (CoefType, field.Element, uint64, error) {
	tagU, err := readU64(r)
	if err != nil {
		return 0, nil, 0, err
	}
	coefType := CoefType(tagU)
	if coefType == CoefPublicInput {
		idx, err := readU64(r)
		if err != nil {
			return 0, nil, 0, err
		}
		return coefType, fld.Zero(), idx, nil
	}
	buf := make([]byte, fld.SizeBytes())
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, 0, err
	}
	e, err := fld.NewElement(buf)
	if err != nil {
		return 0, nil, 0, err
	}
	return coefType, e, 0, nil
}

func segmentFromLayer(l *CircuitLayer) *segment {
	return &segment{
		InputLen:  uint64(1) << uint(l.InputVarNum),
		OutputLen: uint64(1) << uint(l.OutputVarNum),
		Mul:       l.Mul,
		Add:       l.Add,
		Const:     l.Const,
		Uni:       l.Uni,
	}
}

func log2Exact(n uint64) (int, error) {
	if n == 0 {
		return 0, fmt.Errorf("circuit: cannot take log2 of 0")
	}
	bits := 0
	for v := n; v > 1; v >>= 1 {
		bits++
	}
	if uint64(1)<<uint(bits) != n {
		return 0, fmt.Errorf("circuit: %d is not a power of two", n)
	}
	return bits, nil
}

func (s *segment) toLayer() (*CircuitLayer, error) {
	inVars, err := log2Exact(s.InputLen)
	if err != nil {
		return nil, err
	}
	outVars, err := log2Exact(s.OutputLen)
	if err != nil {
		return nil, err
	}
	l := &CircuitLayer{
		InputVarNum:  inVars,
		OutputVarNum: outVars,
		Mul:          s.Mul,
		Add:          s.Add,
		Const:        s.Const,
		Uni:          s.Uni,
	}
	l.computeStructureInfo()
	return l, nil
}

func writeSegment(w io.Writer, fld field.Field, s *segment) error {
	if err := writeU64(w, s.InputLen); err != nil {
		return err
	}
	if err := writeU64(w, s.OutputLen); err != nil {
		return err
	}
	if err := writeU64(w, uint64(len(s.Children))); err != nil {
		return err
	}
	for _, c := range s.Children {
		if err := writeU64(w, c.SegmentID); err != nil {
			return err
		}
		if err := writeU64(w, uint64(len(c.Allocations))); err != nil {
			return err
		}
		for _, a := range c.Allocations {
			if err := writeU64(w, a.IOffset); err != nil {
				return err
			}
			if err := writeU64(w, a.OOffset); err != nil {
				return err
			}
		}
	}

	if err := writeU64(w, uint64(len(s.Mul))); err != nil {
		return err
	}
	for _, g := range s.Mul {
		if err := writeU64(w, g.In0); err != nil {
			return err
		}
		if err := writeU64(w, g.In1); err != nil {
			return err
		}
		if err := writeU64(w, g.Out); err != nil {
			return err
		}
		if err := writeCoef(w, fld, g.CoefType, g.Coef, g.PublicInputIndex); err != nil {
			return err
		}
	}

	if err := writeU64(w, uint64(len(s.Add))); err != nil {
		return err
	}
	for _, g := range s.Add {
		if err := writeU64(w, g.In0); err != nil {
			return err
		}
		if err := writeU64(w, g.Out); err != nil {
			return err
		}
		if err := writeCoef(w, fld, g.CoefType, g.Coef, g.PublicInputIndex); err != nil {
			return err
		}
	}

	if err := writeU64(w, uint64(len(s.Const))); err != nil {
		return err
	}
	for _, g := range s.Const {
		if err := writeU64(w, g.Out); err != nil {
			return err
		}
		if err := writeCoef(w, fld, g.CoefType, g.Coef, g.PublicInputIndex); err != nil {
			return err
		}
	}

	if err := writeU64(w, uint64(len(s.Uni))); err != nil {
		return err
	}
	for _, g := range s.Uni {
		if err := writeU64(w, g.GateType); err != nil {
			return err
		}
		if err := writeU64(w, g.In0); err != nil {
			return err
		}
		if err := writeU64(w, g.Out); err != nil {
			return err
		}
		if err := writeCoef(w, fld, g.CoefType, g.Coef, g.PublicInputIndex); err != nil {
			return err
		}
	}
	return nil
}

func readSegment(r io.Reader, fld field.Field) (*segment, error) {
	s := &segment{}
	var err error
	if s.InputLen, err = readU64(r); err != nil {
		return nil, err
	}
	if s.OutputLen, err = readU64(r); err != nil {
		return nil, err
	}
	childCount, err := readU64(r)
	if err != nil {
		return nil, err
	}
	s.Children = make([]segmentChild, childCount)
	for i := range s.Children {
		sid, err := readU64(r)
		if err != nil {
			return nil, err
		}
		allocCount, err := readU64(r)
		if err != nil {
			return nil, err
		}
		allocs := make([]allocation, allocCount)
		for j := range allocs {
			io_, err := readU64(r)
			if err != nil {
				return nil, err
			}
			oo, err := readU64(r)
			if err != nil {
				return nil, err
			}
			allocs[j] = allocation{IOffset: io_, OOffset: oo}
		}
		s.Children[i] = segmentChild{SegmentID: sid, Allocations: allocs}
	}

	mulCount, err := readU64(r)
	if err != nil {
		return nil, err
	}
	s.Mul = make([]GateMul, mulCount)
	for i := range s.Mul {
		in0, err := readU64(r)
		if err != nil {
			return nil, err
		}
		in1, err := readU64(r)
		if err != nil {
			return nil, err
		}
		out, err := readU64(r)
		if err != nil {
			return nil, err
		}
		ct, coef, pidx, err := readCoef(r, fld)
		if err != nil {
			return nil, err
		}
		s.Mul[i] = GateMul{In0: in0, In1: in1, Out: out, Coef: coef, CoefType: ct, PublicInputIndex: pidx}
	}

	addCount, err := readU64(r)
	if err != nil {
		return nil, err
	}
	s.Add = make([]GateAdd, addCount)
	for i := range s.Add {
		in0, err := readU64(r)
		if err != nil {
			return nil, err
		}
		out, err := readU64(r)
		if err != nil {
			return nil, err
		}
		ct, coef, pidx, err := readCoef(r, fld)
		if err != nil {
			return nil, err
		}
		s.Add[i] = GateAdd{In0: in0, Out: out, Coef: coef, CoefType: ct, PublicInputIndex: pidx}
	}

	constCount, err := readU64(r)
	if err != nil {
		return nil, err
	}
	s.Const = make([]GateConst, constCount)
	for i := range s.Const {
		out, err := readU64(r)
		if err != nil {
			return nil, err
		}
		ct, coef, pidx, err := readCoef(r, fld)
		if err != nil {
			return nil, err
		}
		s.Const[i] = GateConst{Out: out, Coef: coef, CoefType: ct, PublicInputIndex: pidx}
	}

	uniCount, err := readU64(r)
	if err != nil {
		return nil, err
	}
	s.Uni = make([]GateUni, uniCount)
	for i := range s.Uni {
		gt, err := readU64(r)
		if err != nil {
			return nil, err
		}
		in0, err := readU64(r)
		if err != nil {
			return nil, err
		}
		out, err := readU64(r)
		if err != nil {
			return nil, err
		}
		ct, coef, pidx, err := readCoef(r, fld)
		if err != nil {
			return nil, err
		}
		s.Uni[i] = GateUni{GateType: gt, In0: in0, Out: out, Coef: coef, CoefType: ct, PublicInputIndex: pidx}
	}

	return s, nil
}

// randomCoefRef is the on-disk (segment_id, gate_index) pairing identifying
// a random-coefficient gate, where gate_index counts mul, then add, then
// const, then uni gates consecutively within the segment.
type randomCoefRef struct {
	SegmentID uint64
	GateIndex uint64
}

func gateIndexWithinSegment(s *segment, kind string, idx int) uint64 {
	base := uint64(idx)
	switch kind {
	case "mul":
		return base
	case "add":
		return uint64(len(s.Mul)) + base
	case "const":
		return uint64(len(s.Mul)+len(s.Add)) + base
	case "uni":
		return uint64(len(s.Mul)+len(s.Add)+len(s.Const)) + base
	}
	return 0
}

// WriteCircuitFile serializes c into the binary circuit file format
// (spec.md §6): magic, field sentinel, segment count, segments, random-coef
// index, layer count and layer-segment ids.
func WriteCircuitFile(w io.Writer, fld field.Field, c *Circuit) error {
	if err := writeU64(w, circuitFileMagic); err != nil {
		return err
	}
	sentinel := newFieldSentinel(fld.Name())
	if _, err := w.Write(sentinel[:]); err != nil {
		return err
	}

	segments := make([]*segment, len(c.Layers))
	for i, l := range c.Layers {
		segments[i] = segmentFromLayer(l)
	}

	if err := writeU64(w, uint64(len(segments))); err != nil {
		return err
	}
	for _, s := range segments {
		if err := writeSegment(w, fld, s); err != nil {
			return err
		}
	}

	var randomRefs []randomCoefRef
	for li, l := range c.Layers {
		s := segments[li]
		for i, g := range l.Mul {
			if g.CoefType == CoefRandom {
				randomRefs = append(randomRefs, randomCoefRef{uint64(li), gateIndexWithinSegment(s, "mul", i)})
			}
		}
		for i, g := range l.Add {
			if g.CoefType == CoefRandom {
				randomRefs = append(randomRefs, randomCoefRef{uint64(li), gateIndexWithinSegment(s, "add", i)})
			}
		}
		for i, g := range l.Const {
			if g.CoefType == CoefRandom {
				randomRefs = append(randomRefs, randomCoefRef{uint64(li), gateIndexWithinSegment(s, "const", i)})
			}
		}
		for i, g := range l.Uni {
			if g.CoefType == CoefRandom {
				randomRefs = append(randomRefs, randomCoefRef{uint64(li), gateIndexWithinSegment(s, "uni", i)})
			}
		}
	}

	if err := writeU64(w, uint64(len(randomRefs))); err != nil {
		return err
	}
	for _, ref := range randomRefs {
		if err := writeU64(w, ref.SegmentID); err != nil {
			return err
		}
		if err := writeU64(w, ref.GateIndex); err != nil {
			return err
		}
	}

	if err := writeU64(w, uint64(len(c.Layers))); err != nil {
		return err
	}
	for i := range c.Layers {
		if err := writeU64(w, uint64(i)); err != nil {
			return err
		}
	}
	return nil
}

// ReadCircuitFile deserializes a Circuit written by WriteCircuitFile. The
// returned circuit's layers have no InputVals populated; callers set layer
// 0's InputVals (the witness) before calling Circuit.Evaluate.
func ReadCircuitFile(r io.Reader, fld field.Field) (*Circuit, error) {
	magic, err := readU64(r)
	if err != nil {
		return nil, err
	}
	if magic != circuitFileMagic {
		return nil, fmt.Errorf("circuit: bad magic %#x, want %#x", magic, circuitFileMagic)
	}
	var sentinel fieldSentinel
	if _, err := io.ReadFull(r, sentinel[:]); err != nil {
		return nil, err
	}
	if sentinel.name() != fld.Name() {
		return nil, fmt.Errorf("circuit: file was written for field %q, opened with %q", sentinel.name(), fld.Name())
	}

	segCount, err := readU64(r)
	if err != nil {
		return nil, err
	}
	segments := make([]*segment, segCount)
	for i := range segments {
		s, err := readSegment(r, fld)
		if err != nil {
			return nil, err
		}
		segments[i] = s
	}

	randomCount, err := readU64(r)
	if err != nil {
		return nil, err
	}
	refs := make([]randomCoefRef, randomCount)
	for i := range refs {
		sid, err := readU64(r)
		if err != nil {
			return nil, err
		}
		gidx, err := readU64(r)
		if err != nil {
			return nil, err
		}
		refs[i] = randomCoefRef{sid, gidx}
	}

	layerCount, err := readU64(r)
	if err != nil {
		return nil, err
	}
	layerSegmentIDs := make([]uint64, layerCount)
	for i := range layerSegmentIDs {
		id, err := readU64(r)
		if err != nil {
			return nil, err
		}
		layerSegmentIDs[i] = id
	}

	c := &Circuit{Layers: make([]*CircuitLayer, layerCount)}
	for i, sid := range layerSegmentIDs {
		if sid >= uint64(len(segments)) {
			return nil, fmt.Errorf("circuit: layer %d references out-of-range segment %d", i, sid)
		}
		l, err := segments[sid].toLayer()
		if err != nil {
			return nil, err
		}
		c.Layers[i] = l
	}

	for _, ref := range refs {
		if ref.SegmentID >= uint64(layerCount) {
			continue
		}
		markGateRandom(c.Layers[ref.SegmentID], ref.GateIndex)
	}

	return c, nil
}

func markGateRandom(l *CircuitLayer, gateIndex uint64) {
	idx := gateIndex
	if idx < uint64(len(l.Mul)) {
		l.Mul[idx].CoefType = CoefRandom
		return
	}
	idx -= uint64(len(l.Mul))
	if idx < uint64(len(l.Add)) {
		l.Add[idx].CoefType = CoefRandom
		return
	}
	idx -= uint64(len(l.Add))
	if idx < uint64(len(l.Const)) {
		l.Const[idx].CoefType = CoefRandom
		return
	}
	idx -= uint64(len(l.Const))
	if idx < uint64(len(l.Uni)) {
		l.Uni[idx].CoefType = CoefRandom
	}
}

// WriteWitnessFile serializes a flat vector of field elements (layer 0's
// input values) in the same length-prefixed style as the circuit file.
func WriteWitnessFile(w io.Writer, vals []field.Element) error {
	if err := writeU64(w, uint64(len(vals))); err != nil {
		return err
	}
	for _, v := range vals {
		if _, err := w.Write(v.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// ReadWitnessFile deserializes a witness vector written by WriteWitnessFile.
func ReadWitnessFile(r io.Reader, fld field.Field) ([]field.Element, error) {
	n, err := readU64(r)
	if err != nil {
		return nil, err
	}
	out := make([]field.Element, n)
	buf := make([]byte, fld.SizeBytes())
	for i := range out {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		e, err := fld.NewElement(buf)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
