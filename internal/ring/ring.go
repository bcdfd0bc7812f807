// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package ring implements polynomial arithmetic for both NTRUEncrypt ring
// families.
//
// The prime family computes in Z_q[x]/(x^N+1) and multiplies through a
// negacyclic number theoretic transform.  The power-of-two family computes in
// Z_q[x]/(x^N-1) and multiplies by Karatsuba convolution over a padded
// length.  Both are exposed through the Ring interface; Small provides the
// arithmetic modulo the message modulus p.
//
// Ring values hold only immutable precomputed tables and are safe for
// concurrent use.  Every operation takes caller-owned output polynomials.
package ring

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/ntruenc/ntru/params"
)

// ErrNotInvertible is returned when a polynomial has no inverse in the ring.
var ErrNotInvertible = errors.New("ring: polynomial is not invertible")

// Poly is a ring element in coefficient or transform form.  Coefficients are
// kept in the canonical range [0, q).
type Poly []uint32

// Zero clears every coefficient.
func (p Poly) Zero() {
	clear(p)
}

// Ring is the arithmetic of one parameter set modulo its working modulus q.
type Ring interface {
	// N returns the ring degree.
	N() int

	// Modulus returns q.
	Modulus() uint32

	// NewPoly allocates a zero polynomial.
	NewPoly() Poly

	Add(out, a, b Poly)
	Sub(out, a, b Poly)
	Neg(out, a Poly)
	MulScalar(out, a Poly, s uint32)

	// Mul writes the ring product a*b to out.  out may alias a or b.
	Mul(out, a, b Poly)

	// Forward maps a coefficient-form polynomial to transform form and
	// Backward maps it back.  Both are the identity copy for rings that
	// have no transform.
	Forward(out, a Poly)
	Backward(out, a Poly)

	// MulForward multiplies two transform-form operands.
	MulForward(out, a, b Poly)

	// Invert writes a^-1 mod q to out, or returns ErrNotInvertible and
	// leaves out zeroed.  It runs in time independent of a.
	Invert(out, a Poly) error
}

// New returns the ring for a parameter set.
func New(p *params.Set) (Ring, error) {
	switch p.Family {
	case params.Prime:
		return newNTTRing(p.N, p.Q)
	case params.PowerOfTwo:
		return newConvRing(p.N, p.PadN, p.Q)
	default:
		return nil, fmt.Errorf("ring: unknown family %v for %s", p.Family, p.Name)
	}
}

// Equal reports whether a and b are equal, returning 1 if so and 0
// otherwise.  The running time depends only on the lengths.
func Equal(a, b Poly) int {
	if len(a) != len(b) {
		return 0
	}
	var acc uint32
	for i := range a {
		acc |= a[i] ^ b[i]
	}
	return subtle.ConstantTimeEq(int32(acc>>1|acc&1), 0)
}

// Center returns the representative of a in (-q/2, q/2].
func Center(a, q uint32) int32 {
	x := int64(a)
	m := (int64(q/2) - x) >> 63 // all ones when a > q/2
	return int32(x - int64(q)&m)
}

// Lift stores a small signed value as its canonical residue mod q.
func Lift(v int32, q uint32) uint32 {
	m := uint32(v >> 31)
	return uint32(v) + q&m
}

// zeroMask returns all ones if x == 0 and zero otherwise.
func zeroMask(x uint32) uint32 {
	return uint32(int64(uint64(x)-1) >> 63)
}

// cmov copies src into dst when mask is all ones.
func cmov(dst, src []uint32, mask uint32) {
	for i := range dst {
		dst[i] ^= mask & (dst[i] ^ src[i])
	}
}

// cswap exchanges a and b when mask is all ones.
func cswap(a, b []uint32, mask uint32) {
	for i := range a {
		t := mask & (a[i] ^ b[i])
		a[i] ^= t
		b[i] ^= t
	}
}
