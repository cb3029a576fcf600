package expander

import (
	"github.com/vybium/expander/internal/expander/circuit"
	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/transcript"
)

// Circuit is the public name for the layered arithmetic circuit type
// internal/expander/circuit builds and evaluates.
type Circuit = circuit.Circuit

// CircuitLayer is one layer of a Circuit.
type CircuitLayer = circuit.CircuitLayer

// GateMul, GateAdd, GateConst and GateUni are a layer's gate kinds.
type (
	GateMul   = circuit.GateMul
	GateAdd   = circuit.GateAdd
	GateConst = circuit.GateConst
	GateUni   = circuit.GateUni
)

// FieldElement is the capability every concrete field's elements satisfy.
type FieldElement = field.Element

// FieldKind selects which concrete field Config operates over.
type FieldKind int

const (
	FieldM31 FieldKind = iota
	FieldGoldilocks
	FieldBN254
	FieldGF2_128
)

func (k FieldKind) String() string {
	switch k {
	case FieldM31:
		return "m31"
	case FieldGoldilocks:
		return "goldilocks"
	case FieldBN254:
		return "bn254"
	case FieldGF2_128:
		return "gf2_128"
	default:
		return "unknown"
	}
}

func (k FieldKind) build() (field.Field, error) {
	switch k {
	case FieldM31:
		return field.NewM31(), nil
	case FieldGoldilocks:
		return field.NewGoldilocks(), nil
	case FieldBN254:
		return field.NewBN254Fr(), nil
	case FieldGF2_128:
		return field.NewGF2_128(), nil
	default:
		return nil, newError(ErrInvalidConfig, "unknown field kind", nil)
	}
}

// HasherKind selects which Fiat-Shamir hash function Config's transcript
// uses.
type HasherKind int

const (
	HasherSHA256 HasherKind = iota
	HasherSHA3
	HasherKeccak
)

func (k HasherKind) build() (transcript.Hasher, error) {
	switch k {
	case HasherSHA256:
		return transcript.SHA256Hasher{}, nil
	case HasherSHA3:
		return transcript.Sha3Hasher{}, nil
	case HasherKeccak:
		return transcript.KeccakHasher{}, nil
	default:
		return nil, newError(ErrInvalidConfig, "unknown hasher kind", nil)
	}
}
