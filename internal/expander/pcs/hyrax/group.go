package hyrax

import (
	"crypto/rand"
	"math/big"

	"github.com/cloudflare/bn256"

	"github.com/vybium/expander/internal/expander/field"
)

// scalarFromElement reduces a field element's canonical little-endian
// encoding into a bn256 scalar. Scheme is only sound when fld's
// characteristic matches bn256.Order (field.BN254Fr), but the conversion is
// defined for any field so a caller can see the mismatch in test failures
// rather than a compile-time wall.
func scalarFromElement(e field.Element) *big.Int {
	le := e.Bytes()
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	return new(big.Int).Mod(new(big.Int).SetBytes(be), bn256.Order)
}

// randGenerators draws n independent random G1 points to serve as a
// commitment key, the same way distributed-lab-bulletproofs's MustRandPoint
// seeds its GVec/HVec — but returning an error instead of panicking, since
// NewScheme already has an error return to propagate it through.
func randGenerators(n int) ([]*bn256.G1, error) {
	out := make([]*bn256.G1, n)
	for i := range out {
		_, p, err := bn256.RandomG1(rand.Reader)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// multiScalarMul computes Σ scalars[i]*points[i], mirroring
// distributed-lab-bulletproofs's vectorPointScalarMul.
func multiScalarMul(points []*bn256.G1, scalars []field.Element) *bn256.G1 {
	if len(points) == 0 {
		return new(bn256.G1).ScalarBaseMult(big.NewInt(0))
	}
	res := new(bn256.G1).ScalarMult(points[0], scalarFromElement(scalars[0]))
	for i := 1; i < len(points); i++ {
		res.Add(res, new(bn256.G1).ScalarMult(points[i], scalarFromElement(scalars[i])))
	}
	return res
}
