// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package ntru

import (
	"github.com/ntruenc/ntru/internal/ring"
)

// The message buffer M = b || len || m || 0... is carried in a polynomial
// with coefficients mod p.  For p=2 each coefficient holds one bit.  For p=3
// each group of three bits becomes a pair of trits (v/3, v%3); the pair
// (2, 2) never occurs.  Bits are taken least significant first.

func bitAt(buf []byte, k int) uint32 {
	return uint32(buf[k>>3]>>(k&7)) & 1
}

// encodeMessage writes the mod p encoding of buf to out.
func encodeMessage(out ring.Poly, buf []byte, p uint32) {
	out.Zero()
	nbits := 8 * len(buf)
	switch p {
	case 2:
		for k := 0; k < nbits && k < len(out); k++ {
			out[k] = bitAt(buf, k)
		}
	case 3:
		for i := 0; 2*i+1 < len(out); i++ {
			var v uint32
			for j := 0; j < 3; j++ {
				if k := 3*i + j; k < nbits {
					v |= bitAt(buf, k) << j
				}
			}
			out[2*i] = v / 3
			out[2*i+1] = v % 3
		}
	}
}

// decodeMessage inverts encodeMessage into buf.  The returned mask is all ones
// only if in is the encoding of some buffer: no invalid trit pair, no bit past
// the end of buf and no unused coefficient is set.  The work done does not
// depend on the contents of in.
func decodeMessage(buf []byte, in ring.Poly, p uint32) uint32 {
	clear(buf)
	nbits := 8 * len(buf)
	ok := ^uint32(0)
	put := func(k int, bit uint32) {
		if k < nbits {
			buf[k>>3] |= byte(bit << (k & 7))
		} else {
			ok &= zeroMask(bit)
		}
	}
	switch p {
	case 2:
		for k, c := range in {
			put(k, c&1)
		}
	case 3:
		pairs := len(in) / 2
		for i := 0; i < pairs; i++ {
			v := 3*in[2*i] + in[2*i+1]
			ok &^= eqMask(v, 8)
			for j := 0; j < 3; j++ {
				put(3*i+j, v>>j&1)
			}
		}
		if len(in)%2 == 1 {
			ok &= zeroMask(in[len(in)-1])
		}
	}
	return ok
}
