package field

import (
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
)

// BN254FrElement wraps gnark-crypto's bn254 scalar field element, grounded
// on giuliop-AlgoPlonk's use of consensys/gnark-crypto for its proving
// backend's native field.
type BN254FrElement struct {
	v fr.Element
}

func (e *BN254FrElement) Add(b Element) Element {
	var r fr.Element
	r.Add(&e.v, &b.(*BN254FrElement).v)
	return &BN254FrElement{v: r}
}

func (e *BN254FrElement) Sub(b Element) Element {
	var r fr.Element
	r.Sub(&e.v, &b.(*BN254FrElement).v)
	return &BN254FrElement{v: r}
}

func (e *BN254FrElement) Neg() Element {
	var r fr.Element
	r.Neg(&e.v)
	return &BN254FrElement{v: r}
}

func (e *BN254FrElement) Mul(b Element) Element {
	var r fr.Element
	r.Mul(&e.v, &b.(*BN254FrElement).v)
	return &BN254FrElement{v: r}
}

func (e *BN254FrElement) Square() Element {
	var r fr.Element
	r.Square(&e.v)
	return &BN254FrElement{v: r}
}

func (e *BN254FrElement) Inv() (Element, bool) {
	if e.v.IsZero() {
		return nil, false
	}
	var r fr.Element
	r.Inverse(&e.v)
	return &BN254FrElement{v: r}, true
}

func (e *BN254FrElement) Exp(exponent uint64) Element {
	var r fr.Element
	r.Exp(e.v, new(big.Int).SetUint64(exponent))
	return &BN254FrElement{v: r}
}

func (e *BN254FrElement) IsZero() bool { return e.v.IsZero() }

func (e *BN254FrElement) Equal(b Element) bool {
	o, ok := b.(*BN254FrElement)
	return ok && e.v.Equal(&o.v)
}

func (e *BN254FrElement) Bytes() []byte {
	b := e.v.Bytes() // big-endian canonical form from gnark-crypto
	out := make([]byte, len(b))
	for i, by := range b {
		out[len(b)-1-i] = by
	}
	return out
}

func (e *BN254FrElement) String() string { return e.v.String() }

// BN254Fr is the BN254 scalar-field descriptor.
type BN254Fr struct{}

// NewBN254Fr constructs the BN254 scalar-field descriptor.
func NewBN254Fr() *BN254Fr { return &BN254Fr{} }

func (BN254Fr) Zero() Element { return &BN254FrElement{} }

func (BN254Fr) One() Element {
	var r fr.Element
	r.SetOne()
	return &BN254FrElement{v: r}
}

func (f BN254Fr) InvTwo() Element {
	inv, _ := f.NewElementFromUint64(2).Inv()
	return inv
}

func (BN254Fr) NewElement(b []byte) (Element, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("field: bn254 element must be 32 bytes, got %d", len(b))
	}
	be := make([]byte, 32)
	for i, by := range b {
		be[31-i] = by
	}
	var r fr.Element
	r.SetBytes(be)
	return &BN254FrElement{v: r}, nil
}

func (BN254Fr) NewElementFromUint64(v uint64) Element {
	var r fr.Element
	r.SetUint64(v)
	return &BN254FrElement{v: r}
}

func (f BN254Fr) RandomElement(rnd io.Reader) (Element, error) {
	var r fr.Element
	if _, err := r.SetRandom(); err != nil {
		return nil, fmt.Errorf("field: sampling bn254 element: %w", err)
	}
	return &BN254FrElement{v: r}, nil
}

func (f BN254Fr) FromUniformBytes(b []byte) Element {
	var r fr.Element
	r.SetBytes(b) // gnark-crypto reduces mod r internally for oversized input
	return &BN254FrElement{v: r}
}

func (BN254Fr) SizeBytes() int     { return fr.Bytes }
func (BN254Fr) FieldSizeBits() int { return fr.Bits }
func (BN254Fr) Modulus() *uint256.Int {
	m, _ := uint256.FromHex("0x30644e72e131a029b85045b68181585d2833e84879b9709143e1f593f0000001")
	return m
}
func (BN254Fr) Name() string { return "bn254" }

var _ Field = BN254Fr{}
