// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package pack converts polynomials to and from their fixed-length wire
// encodings.
//
// Mod-q polynomials are bit-packed least significant bit first.  Trinary
// polynomials are packed five coefficients to a byte in base 3.  Decoding is
// strict: out-of-range coefficients, nonzero padding and trailing digits are
// rejected so that every accepted encoding is the unique encoding of its
// polynomial.
package pack

import (
	"errors"
	"fmt"

	"github.com/ntruenc/ntru/internal/ring"
)

// ErrNonCanonical is returned for encodings that no polynomial packs to.
var ErrNonCanonical = errors.New("pack: non-canonical encoding")

// BitsSize is the byte length of n coefficients of the given bit width.
func BitsSize(n, width int) int {
	return (n*width + 7) / 8
}

// TritsSize is the byte length of n packed trinary coefficients.
func TritsSize(n int) int {
	return (n + 4) / 5
}

// Bits packs each coefficient of a into width bits of dst.  dst must be
// exactly BitsSize(len(a), width) bytes.
func Bits(dst []byte, a ring.Poly, width int) {
	if len(dst) != BitsSize(len(a), width) {
		panic(fmt.Sprintf("pack: destination is %d bytes, need %d", len(dst), BitsSize(len(a), width)))
	}
	var acc uint64
	var nacc, o int
	for _, c := range a {
		acc |= uint64(c) << nacc
		nacc += width
		for nacc >= 8 {
			dst[o] = byte(acc)
			o++
			acc >>= 8
			nacc -= 8
		}
	}
	if nacc > 0 {
		dst[o] = byte(acc)
	}
}

// UnpackBits decodes src into dst, rejecting any coefficient not below q and
// any set padding bit.  dst is zeroed on error.
func UnpackBits(dst ring.Poly, src []byte, width int, q uint32) error {
	if len(src) != BitsSize(len(dst), width) {
		return fmt.Errorf("%w: length %d", ErrNonCanonical, len(src))
	}
	mask := uint64(1)<<width - 1
	var acc uint64
	var nacc, o int
	for i := range dst {
		for nacc < width {
			acc |= uint64(src[o]) << nacc
			o++
			nacc += 8
		}
		c := uint32(acc & mask)
		acc >>= width
		nacc -= width
		if c >= q {
			dst.Zero()
			return ErrNonCanonical
		}
		dst[i] = c
	}
	if acc != 0 {
		dst.Zero()
		return ErrNonCanonical
	}
	return nil
}

// Trits packs a trinary polynomial, whose coefficients are 0, 1 or q-1, into
// dst.  dst must be exactly TritsSize(len(a)) bytes.
func Trits(dst []byte, a ring.Poly, q uint32) {
	if len(dst) != TritsSize(len(a)) {
		panic(fmt.Sprintf("pack: destination is %d bytes, need %d", len(dst), TritsSize(len(a))))
	}
	for o := range dst {
		var v uint32
		for j := 4; j >= 0; j-- {
			v *= 3
			if i := 5*o + j; i < len(a) {
				c := a[i]
				m := uint32(int32(1-c) >> 31) // all ones when c > 1
				v += c&^m | 2&m
			}
		}
		dst[o] = byte(v)
	}
}

// UnpackTrits decodes src into dst, mapping digit 2 to q-1.  Bytes above 242
// and nonzero digits past the last coefficient are rejected.  dst is zeroed on
// error.
func UnpackTrits(dst ring.Poly, src []byte, q uint32) error {
	if len(src) != TritsSize(len(dst)) {
		return fmt.Errorf("%w: length %d", ErrNonCanonical, len(src))
	}
	for o, b := range src {
		if b >= 243 {
			dst.Zero()
			return ErrNonCanonical
		}
		v := uint32(b)
		for j := 0; j < 5; j++ {
			d := v % 3
			v /= 3
			i := 5*o + j
			if i >= len(dst) {
				if d != 0 {
					dst.Zero()
					return ErrNonCanonical
				}
				continue
			}
			m := uint32(int32(1-d) >> 31) // all ones when d == 2
			dst[i] = d + (q-3)&m
		}
	}
	return nil
}
