// Package field defines the algebraic capability contracts consumed by the
// rest of Expander: Field, ExtensionField, SimdField and FFTField. Concrete
// field implementations (M31, Goldilocks, GF2_128, BN254Fr) live in their own
// files in this package and are selected at build time rather than through
// dynamic dispatch in hot paths.
package field

import (
	"io"

	"github.com/holiman/uint256"
)

// Element is the capability every field element satisfies, regardless of
// which concrete field it belongs to.
type Element interface {
	Add(b Element) Element
	Sub(b Element) Element
	Neg() Element
	Mul(b Element) Element
	Square() Element
	// Inv returns the multiplicative inverse and false if the element is zero.
	Inv() (Element, bool)
	Exp(exponent uint64) Element
	IsZero() bool
	Equal(b Element) bool
	// Bytes returns the SIZE-byte canonical little-endian encoding.
	Bytes() []byte
	String() string
}

// Field describes a concrete finite field: its distinguished elements, its
// fixed serialized size, and how to reduce uniform randomness into it.
type Field interface {
	// Zero, One and InvTwo are the field's distinguished elements.
	Zero() Element
	One() Element
	InvTwo() Element

	// NewElement builds an element from a canonical SIZE-byte encoding.
	NewElement(b []byte) (Element, error)
	// NewElementFromUint64 builds an element from a small integer, reduced
	// modulo the field's characteristic.
	NewElementFromUint64(v uint64) Element
	// RandomElement samples a uniformly random element.
	RandomElement(rnd io.Reader) (Element, error)
	// FromUniformBytes reduces a uniform random byte string (longer than
	// SIZE, to avoid modulo bias) into a field element.
	FromUniformBytes(b []byte) Element

	// SizeBytes is the fixed-width canonical serialization size, SIZE.
	SizeBytes() int
	// FieldSizeBits is FIELD_SIZE, the bit length of the field's order.
	FieldSizeBits() int
	// Modulus is the field's characteristic as a 256-bit integer, MODULUS.
	Modulus() *uint256.Int

	Name() string
}

// ExtensionField is a degree-DEGREE extension of a BaseField, built from an
// irreducible polynomial whose non-leading nonzero coefficient is W.
type ExtensionField interface {
	Element

	Degree() int
	// W is the base-field coefficient of the extension's defining
	// polynomial (e.g. x^DEGREE - W = 0).
	W() Element

	MulByBaseField(b Element) ExtensionField
	AddByBaseField(b Element) ExtensionField
	// MulByX multiplies by the canonical generator of the extension.
	MulByX() ExtensionField

	ToLimbs() []Element
}

// ExtensionFieldDescriptor builds and reconstitutes extension-field elements
// over a given base field.
type ExtensionFieldDescriptor interface {
	Field
	BaseField() Field
	FromLimbs(limbs []Element) (ExtensionField, error)
}

// SimdField packs PackSize scalar lanes of a Scalar field into one vector
// element that arithmetic treats as a unit; lanes are bound explicitly via
// sum-check at the end of a GKR layer rather than hidden behind the type.
type SimdField interface {
	Element

	PackSize() int
	Unpack() []Element
	Scale(scalar Element) SimdField
	HorizontalSum() Element
}

// SimdFieldDescriptor builds packed vectors over a given scalar field.
type SimdFieldDescriptor interface {
	PackSize() int
	Pack(lanes []Element) (SimdField, error)
}

// FFTField is a field with a multiplicative subgroup of order 2^TwoAdicity,
// generated by RootOfUnity.
type FFTField interface {
	Field
	TwoAdicity() int
	RootOfUnity() Element
}
