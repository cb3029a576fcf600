package field

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/holiman/uint256"
)

// GF2_128Element is an element of GF(2^128), represented as a 128-bit
// polynomial over GF(2) with the standard (x^128 + x^7 + x^2 + x + 1)
// reduction polynomial used by AES-GCM and Expander's binary-field circuits.
// Addition is XOR; multiplication is carry-less polynomial multiplication
// followed by reduction.
type GF2_128Element struct {
	lo, hi uint64
}

func (e *GF2_128Element) Add(b Element) Element {
	o := b.(*GF2_128Element)
	return &GF2_128Element{lo: e.lo ^ o.lo, hi: e.hi ^ o.hi}
}

// Sub is identical to Add in characteristic 2.
func (e *GF2_128Element) Sub(b Element) Element { return e.Add(b) }

// Neg is the identity in characteristic 2.
func (e *GF2_128Element) Neg() Element { return &GF2_128Element{lo: e.lo, hi: e.hi} }

// clmul64 performs carry-less multiplication of two 64-bit polynomials,
// returning the 128-bit product as (hi, lo).
func clmul64(a, b uint64) (hi, lo uint64) {
	for i := 0; i < 64; i++ {
		if (b>>uint(i))&1 == 1 {
			shiftedLo, shiftedHi := shl128(a, 0, uint(i))
			lo ^= shiftedLo
			hi ^= shiftedHi
		}
	}
	return hi, lo
}

func shl128(lo, hi uint64, n uint) (uint64, uint64) {
	if n == 0 {
		return lo, hi
	}
	if n >= 64 {
		return 0, lo << (n - 64)
	}
	newHi := (hi << n) | (lo >> (64 - n))
	newLo := lo << n
	return newLo, newHi
}

func (e *GF2_128Element) Mul(b Element) Element {
	o := b.(*GF2_128Element)

	// Schoolbook carry-less multiply of two 128-bit polynomials into a
	// 256-bit product, expressed as four 64-bit limbs.
	h0, l0 := clmul64(e.lo, o.lo)
	h1, l1 := clmul64(e.lo, o.hi)
	h2, l2 := clmul64(e.hi, o.lo)
	h3, l3 := clmul64(e.hi, o.hi)

	var r [4]uint64 // r[0] lowest .. r[3] highest, 64 bits each
	r[0] = l0
	r[1] = h0 ^ l1 ^ l2
	r[2] = h1 ^ h2 ^ l3
	r[3] = h3

	return gf2_128Reduce(r)
}

// gf2_128Reduce reduces a 256-bit carry-less product modulo
// x^128 + x^7 + x^2 + x + 1, returning a 128-bit element.
func gf2_128Reduce(r [4]uint64) *GF2_128Element {
	// Reduce the high 128 bits (r[2], r[3]) back into the low 128 bits using
	// the identity x^128 = x^7 + x^2 + x + 1 (mod the reduction polynomial).
	hi, lo := r[3], r[2]
	// Bits of hi shifted past x^127 land at x^128..x^134 and fold back once
	// more into the low limb.
	over := (hi >> 57) ^ (hi >> 62) ^ (hi >> 63)
	contribLo := lo ^ (lo << 7) ^ (lo << 2) ^ (lo << 1) ^ over ^ (over << 7) ^ (over << 2) ^ (over << 1)
	contribHi := hi ^ (hi << 7) ^ (hi << 2) ^ (hi << 1) ^ (lo >> 57) ^ (lo >> 62) ^ (lo >> 63)
	r[0] ^= contribLo
	r[1] ^= contribHi
	return &GF2_128Element{lo: r[0], hi: r[1]}
}

func (e *GF2_128Element) Square() Element { return e.Mul(e) }

func (e *GF2_128Element) Inv() (Element, bool) {
	if e.IsZero() {
		return nil, false
	}
	// Multiplicative group has order 2^128 - 1; Fermat's little theorem
	// gives a^-1 = a^(2^128 - 2).
	result := Element(&GF2_128Element{lo: 1})
	base := Element(e)
	exp := make([]byte, 16)
	binary.BigEndian.PutUint64(exp[0:8], ^uint64(0))
	binary.BigEndian.PutUint64(exp[8:16], ^uint64(1)) // 2^128 - 2, big-endian

	for i := len(exp) - 1; i >= 0; i-- {
		for bit := 0; bit < 8; bit++ {
			if (exp[i]>>uint(bit))&1 == 1 {
				result = result.Mul(base)
			}
			base = base.Mul(base)
		}
	}
	return result, true
}

func (e *GF2_128Element) Exp(exponent uint64) Element {
	result := Element(&GF2_128Element{lo: 1})
	base := Element(e)
	for exponent > 0 {
		if exponent&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		exponent >>= 1
	}
	return result
}

func (e *GF2_128Element) IsZero() bool { return e.lo == 0 && e.hi == 0 }

func (e *GF2_128Element) Equal(b Element) bool {
	o, ok := b.(*GF2_128Element)
	return ok && o.lo == e.lo && o.hi == e.hi
}

func (e *GF2_128Element) Bytes() []byte {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[0:8], e.lo)
	binary.LittleEndian.PutUint64(out[8:16], e.hi)
	return out
}

func (e *GF2_128Element) String() string { return fmt.Sprintf("%016x%016x", e.hi, e.lo) }

// GF2_128 is the GF(2^128) field descriptor.
type GF2_128 struct{}

// NewGF2_128 constructs the GF(2^128) field descriptor.
func NewGF2_128() *GF2_128 { return &GF2_128{} }

func (GF2_128) Zero() Element { return &GF2_128Element{} }
func (GF2_128) One() Element  { return &GF2_128Element{lo: 1} }

// InvTwo: in characteristic 2, 1+1=0, so "2" is zero and has no inverse.
// Expander's binary-tower configuration never calls this; it panics loudly
// rather than silently returning a meaningless value.
func (GF2_128) InvTwo() Element {
	panic("field: GF(2^128) has characteristic 2; INV_2 is undefined")
}

func (GF2_128) NewElement(b []byte) (Element, error) {
	if len(b) != 16 {
		return nil, fmt.Errorf("field: gf2_128 element must be 16 bytes, got %d", len(b))
	}
	return &GF2_128Element{
		lo: binary.LittleEndian.Uint64(b[0:8]),
		hi: binary.LittleEndian.Uint64(b[8:16]),
	}, nil
}

func (GF2_128) NewElementFromUint64(v uint64) Element {
	return &GF2_128Element{lo: v}
}

func (f GF2_128) RandomElement(rnd io.Reader) (Element, error) {
	var buf [16]byte
	if _, err := io.ReadFull(rnd, buf[:]); err != nil {
		return nil, fmt.Errorf("field: sampling gf2_128 element: %w", err)
	}
	e, _ := f.NewElement(buf[:])
	return e, nil
}

func (f GF2_128) FromUniformBytes(b []byte) Element {
	// Any 16+ uniform bytes already land uniformly in GF(2^128): fold
	// excess bytes in with XOR, since the field has no modular bias here.
	var out [16]byte
	for i, by := range b {
		out[i%16] ^= by
	}
	e, _ := f.NewElement(out[:])
	return e
}

func (GF2_128) SizeBytes() int     { return 16 }
func (GF2_128) FieldSizeBits() int { return 128 }
func (GF2_128) Modulus() *uint256.Int {
	// Characteristic of GF(2^128) is 2; MODULUS here is reported as the
	// defining prime of the base field GF(2), per spec.md's "the four
	// supported field types" treating Modulus as characteristic-of-base.
	return uint256.NewInt(2)
}
func (GF2_128) Name() string { return "gf2_128" }

var _ Field = GF2_128{}
