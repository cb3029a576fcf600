package field

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/holiman/uint256"
)

// m31Modulus is 2^31 - 1, grounded on the teacher's NewMersenneField, but
// held as a plain uint32 rather than big.Int since the modulus always fits
// in 31 bits and hot-path arithmetic benefits from avoiding allocation.
const m31Modulus uint32 = (1 << 31) - 1

// M31Element is an element of the Mersenne-31 prime field.
type M31Element struct {
	v uint32
}

func m31Reduce(v uint64) uint32 {
	// Fold the top bits back in, exploiting 2^31 ≡ 1 (mod M31). Two folds
	// bring any uint64 below 2^31 + 8, so one subtraction finishes it.
	v = (v & uint64(m31Modulus)) + (v >> 31)
	v = (v & uint64(m31Modulus)) + (v >> 31)
	if v >= uint64(m31Modulus) {
		v -= uint64(m31Modulus)
	}
	return uint32(v)
}

func (e *M31Element) Add(b Element) Element {
	o := b.(*M31Element)
	return &M31Element{v: m31Reduce(uint64(e.v) + uint64(o.v))}
}

func (e *M31Element) Sub(b Element) Element {
	o := b.(*M31Element)
	if e.v >= o.v {
		return &M31Element{v: e.v - o.v}
	}
	return &M31Element{v: m31Modulus - (o.v - e.v)}
}

func (e *M31Element) Neg() Element {
	if e.v == 0 {
		return &M31Element{v: 0}
	}
	return &M31Element{v: m31Modulus - e.v}
}

func (e *M31Element) Mul(b Element) Element {
	o := b.(*M31Element)
	return &M31Element{v: m31Reduce(uint64(e.v) * uint64(o.v))}
}

func (e *M31Element) Square() Element { return e.Mul(e) }

func (e *M31Element) Inv() (Element, bool) {
	if e.v == 0 {
		return nil, false
	}
	// Fermat: a^(p-2) = a^-1, since M31 is prime.
	return e.Exp(uint64(m31Modulus - 2)), true
}

func (e *M31Element) Exp(exponent uint64) Element {
	result := &M31Element{v: 1}
	base := Element(e)
	for exponent > 0 {
		if exponent&1 == 1 {
			result = result.Mul(base).(*M31Element)
		}
		base = base.Mul(base)
		exponent >>= 1
	}
	return result
}

func (e *M31Element) IsZero() bool { return e.v == 0 }

func (e *M31Element) Equal(b Element) bool {
	o, ok := b.(*M31Element)
	return ok && o.v == e.v
}

func (e *M31Element) Bytes() []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, e.v)
	return out
}

func (e *M31Element) String() string { return fmt.Sprintf("%d", e.v) }

// M31 is the Mersenne-31 field descriptor.
type M31 struct{}

// NewM31 constructs the Mersenne-31 field descriptor.
func NewM31() *M31 { return &M31{} }

func (M31) Zero() Element { return &M31Element{v: 0} }
func (M31) One() Element  { return &M31Element{v: 1} }

func (M31) InvTwo() Element {
	// 2^-1 mod (2^31-1) = (2^31)/2 = 2^30, since 2*2^30 = 2^31 ≡ 1.
	return &M31Element{v: 1 << 30}
}

func (M31) NewElement(b []byte) (Element, error) {
	if len(b) != 4 {
		return nil, fmt.Errorf("field: m31 element must be 4 bytes, got %d", len(b))
	}
	v := binary.LittleEndian.Uint32(b)
	if v >= m31Modulus {
		return nil, fmt.Errorf("field: m31 element %d is not canonical (modulus %d)", v, m31Modulus)
	}
	return &M31Element{v: v}, nil
}

func (M31) NewElementFromUint64(v uint64) Element {
	return &M31Element{v: m31Reduce(v)}
}

func (f M31) RandomElement(rnd io.Reader) (Element, error) {
	var buf [8]byte
	if _, err := io.ReadFull(rnd, buf[:]); err != nil {
		return nil, fmt.Errorf("field: sampling m31 element: %w", err)
	}
	return f.NewElementFromUint64(binary.LittleEndian.Uint64(buf[:])), nil
}

func (f M31) FromUniformBytes(b []byte) Element {
	var acc uint64
	for _, by := range b {
		acc = uint64(m31Reduce(acc<<8 | uint64(by)))
	}
	return f.NewElementFromUint64(acc)
}

func (M31) SizeBytes() int      { return 4 }
func (M31) FieldSizeBits() int  { return 31 }
func (M31) Modulus() *uint256.Int {
	return uint256.NewInt(uint64(m31Modulus))
}
func (M31) Name() string { return "m31" }

// TwoAdicity/RootOfUnity implement field.FFTField: M31's multiplicative
// group has order 2^31 - 2 = 2 * 3^2 * 7 * 11 * 31 * 151 * 331, two-adicity 1.
func (M31) TwoAdicity() int { return 1 }

func (f M31) RootOfUnity() Element {
	return f.NewElementFromUint64(m31Modulus - 1) // the unique element of order 2.
}

var _ Field = M31{}
var _ FFTField = M31{}
