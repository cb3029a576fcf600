package field

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"math/bits"

	"github.com/holiman/uint256"
)

// goldilocksModulus is 2^64 - 2^32 + 1, grounded on the same
// fixed-modulus-specialization idea the teacher applies to Mersenne-31 in
// core/mersenne_field.go, generalized here to a 64-bit prime.
const goldilocksModulus uint64 = 0xFFFFFFFF00000001

// GoldilocksElement is an element of the Goldilocks field.
type GoldilocksElement struct {
	v uint64
}

func goldilocksReduce(v uint64) uint64 {
	if v >= goldilocksModulus {
		v -= goldilocksModulus
	}
	return v
}

// goldilocksReduce128 reduces a 128-bit product using the prime's special
// shape p = 2^64 - 2^32 + 1.
func goldilocksReduce128(hi, lo uint64) uint64 {
	// Split hi into hi_hi (bits 32..63) and hi_lo (bits 0..31).
	hiHi := hi >> 32
	hiLo := hi & 0xFFFFFFFF

	// lo - hiHi, wrapping into the field via the prime's structure.
	t, borrow := bits.Sub64(lo, hiHi, 0)
	if borrow != 0 {
		t -= 0xFFFFFFFF // drops the wrapped 2^64, since 2^64 ≡ 2^32 - 1
	}

	// t + hiLo * (2^32 - 1), reduced: hiLo sits at 2^64 ≡ 2^32 - 1.
	hiLoShifted := (hiLo << 32) - hiLo
	r, carry := bits.Add64(t, hiLoShifted, 0)
	if carry != 0 || r >= goldilocksModulus {
		r -= goldilocksModulus
	}
	return r
}

func (e *GoldilocksElement) Add(b Element) Element {
	o := b.(*GoldilocksElement)
	sum, carry := bits.Add64(e.v, o.v, 0)
	if carry != 0 {
		sum -= goldilocksModulus
	}
	return &GoldilocksElement{v: goldilocksReduce(sum)}
}

func (e *GoldilocksElement) Sub(b Element) Element {
	o := b.(*GoldilocksElement)
	diff, borrow := bits.Sub64(e.v, o.v, 0)
	if borrow != 0 {
		diff += goldilocksModulus
	}
	return &GoldilocksElement{v: diff}
}

func (e *GoldilocksElement) Neg() Element {
	if e.v == 0 {
		return &GoldilocksElement{v: 0}
	}
	return &GoldilocksElement{v: goldilocksModulus - e.v}
}

func (e *GoldilocksElement) Mul(b Element) Element {
	o := b.(*GoldilocksElement)
	hi, lo := bits.Mul64(e.v, o.v)
	return &GoldilocksElement{v: goldilocksReduce128(hi, lo)}
}

func (e *GoldilocksElement) Square() Element { return e.Mul(e) }

func (e *GoldilocksElement) Inv() (Element, bool) {
	if e.v == 0 {
		return nil, false
	}
	return e.Exp(goldilocksModulus - 2), true
}

func (e *GoldilocksElement) Exp(exponent uint64) Element {
	result := &GoldilocksElement{v: 1}
	base := Element(e)
	for exponent > 0 {
		if exponent&1 == 1 {
			result = result.Mul(base).(*GoldilocksElement)
		}
		base = base.Mul(base)
		exponent >>= 1
	}
	return result
}

func (e *GoldilocksElement) IsZero() bool { return e.v == 0 }

func (e *GoldilocksElement) Equal(b Element) bool {
	o, ok := b.(*GoldilocksElement)
	return ok && o.v == e.v
}

func (e *GoldilocksElement) Bytes() []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, e.v)
	return out
}

func (e *GoldilocksElement) String() string { return fmt.Sprintf("%d", e.v) }

// Goldilocks is the p = 2^64 - 2^32 + 1 field descriptor.
type Goldilocks struct{}

// NewGoldilocks constructs the Goldilocks field descriptor.
func NewGoldilocks() *Goldilocks { return &Goldilocks{} }

func (Goldilocks) Zero() Element { return &GoldilocksElement{v: 0} }
func (Goldilocks) One() Element  { return &GoldilocksElement{v: 1} }

func (f Goldilocks) InvTwo() Element {
	inv, _ := f.NewElementFromUint64(2).Inv()
	return inv
}

func (Goldilocks) NewElement(b []byte) (Element, error) {
	if len(b) != 8 {
		return nil, fmt.Errorf("field: goldilocks element must be 8 bytes, got %d", len(b))
	}
	v := binary.LittleEndian.Uint64(b)
	if v >= goldilocksModulus {
		return nil, fmt.Errorf("field: goldilocks element %d is not canonical", v)
	}
	return &GoldilocksElement{v: v}, nil
}

func (Goldilocks) NewElementFromUint64(v uint64) Element {
	return &GoldilocksElement{v: goldilocksReduce(v)}
}

func (f Goldilocks) RandomElement(rnd io.Reader) (Element, error) {
	var buf [16]byte
	if _, err := io.ReadFull(rnd, buf[:]); err != nil {
		return nil, fmt.Errorf("field: sampling goldilocks element: %w", err)
	}
	return f.FromUniformBytes(buf[:]), nil
}

func (f Goldilocks) FromUniformBytes(b []byte) Element {
	acc := new(big.Int).SetBytes(b)
	mod := new(big.Int).SetUint64(goldilocksModulus)
	acc.Mod(acc, mod)
	return &GoldilocksElement{v: acc.Uint64()}
}

func (Goldilocks) SizeBytes() int     { return 8 }
func (Goldilocks) FieldSizeBits() int { return 64 }
func (Goldilocks) Modulus() *uint256.Int {
	return uint256.NewInt(goldilocksModulus)
}
func (Goldilocks) Name() string { return "goldilocks" }

func (Goldilocks) TwoAdicity() int { return 32 }

func (f Goldilocks) RootOfUnity() Element {
	// 7 is a generator of the full multiplicative group of order
	// goldilocksModulus - 1 = 2^32 * (2^32 - 1); raising it to the odd part
	// leaves a generator of the 2-Sylow subgroup of order 2^32.
	oddPart := (goldilocksModulus - 1) >> 32
	return f.NewElementFromUint64(7).Exp(oddPart)
}

var _ Field = Goldilocks{}
var _ FFTField = Goldilocks{}
