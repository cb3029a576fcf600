package transcript

import (
	"crypto/sha256"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	mimchash "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// SHA256Hasher backs the default SHA-256 transcript, the first-class
// Fiat-Shamir primitive spec.md §1/§3.4 names explicitly.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}
func (SHA256Hasher) Size() int { return sha256.Size }

// Sha3Hasher backs a SHA3-256 transcript, grounded on the teacher's
// utils/channel.go default hash function.
type Sha3Hasher struct{}

func (Sha3Hasher) Hash(data []byte) []byte {
	h := sha3.Sum256(data)
	return h[:]
}
func (Sha3Hasher) Size() int { return 32 }

// KeccakHasher backs the Keccak-256 transcript exercised by GKR-over-Keccak
// circuits (spec.md §8 scenario #6), grounded on
// distributed-lab-bulletproofs's use of go-ethereum's crypto package for
// Keccak-compatible hashing.
type KeccakHasher struct{}

func (KeccakHasher) Hash(data []byte) []byte {
	return ethcrypto.Keccak256(data)
}
func (KeccakHasher) Size() int { return 32 }

// MiMCHasher backs a BN254-native algebraic transcript hash, grounded on
// giuliop-AlgoPlonk's consensys/gnark-crypto dependency; pairs naturally
// with the BN254Fr field so the transcript can be absorbed as in-circuit
// friendly arithmetic when Expander's circuit itself runs over BN254.
type MiMCHasher struct{}

func (MiMCHasher) Hash(data []byte) []byte {
	h := mimchash.NewMiMC()
	h.Write(data)
	sum := h.Sum(nil)
	// gnark-crypto's MiMC sum is already a canonical fr.Element encoding;
	// re-parse and re-serialize to guarantee a fixed Size() regardless of
	// how many padding bytes Write absorbed.
	var e fr.Element
	e.SetBytes(sum)
	out := e.Bytes()
	return out[:]
}
func (MiMCHasher) Size() int { return fr.Bytes }

var (
	_ Hasher = SHA256Hasher{}
	_ Hasher = Sha3Hasher{}
	_ Hasher = KeccakHasher{}
	_ Hasher = MiMCHasher{}
)
