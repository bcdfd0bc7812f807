// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package ring

import (
	"fmt"
	"math/bits"
)

// convRing is Z_q[x]/(x^N-1) for a power-of-two q.  Products are computed by
// Karatsuba over padN coefficients and folded back to N; arithmetic wraps
// modulo 2^32 and is masked to q-1.
type convRing struct {
	n    int
	padN int
	q    uint32
	mask uint32
	bin  *Small // mod 2, cyclic
}

func newConvRing(n, padN int, q uint32) (*convRing, error) {
	if q < 4 || q&(q-1) != 0 {
		return nil, fmt.Errorf("ring: modulus %d is not a power of two", q)
	}
	if padN < n {
		return nil, fmt.Errorf("ring: padded length %d below degree %d", padN, n)
	}
	return &convRing{
		n:    n,
		padN: padN,
		q:    q,
		mask: q - 1,
		bin:  NewSmall(n, 2, false),
	}, nil
}

func (r *convRing) N() int          { return r.n }
func (r *convRing) Modulus() uint32 { return r.q }
func (r *convRing) NewPoly() Poly   { return make(Poly, r.n) }

func (r *convRing) Add(out, a, b Poly) {
	for i := range out[:r.n] {
		out[i] = (a[i] + b[i]) & r.mask
	}
}

func (r *convRing) Sub(out, a, b Poly) {
	for i := range out[:r.n] {
		out[i] = (a[i] - b[i]) & r.mask
	}
}

func (r *convRing) Neg(out, a Poly) {
	for i := range out[:r.n] {
		out[i] = -a[i] & r.mask
	}
}

func (r *convRing) MulScalar(out, a Poly, s uint32) {
	for i := range out[:r.n] {
		out[i] = a[i] * s & r.mask
	}
}

func (r *convRing) Forward(out, a Poly)       { copy(out[:r.n], a[:r.n]) }
func (r *convRing) Backward(out, a Poly)      { copy(out[:r.n], a[:r.n]) }
func (r *convRing) MulForward(out, a, b Poly) { r.Mul(out, a, b) }

func (r *convRing) Mul(out, a, b Poly) {
	buf := make([]uint32, 2*r.padN+4*r.padN+3*r.padN)
	pa := buf[:r.padN]
	pb := buf[r.padN : 2*r.padN]
	prod := buf[2*r.padN : 4*r.padN]
	scratch := buf[4*r.padN:]
	copy(pa, a[:r.n])
	copy(pb, b[:r.n])
	karatsuba(prod, scratch, pa, pb)
	for i := range out[:r.n] {
		out[i] = (prod[i] + prod[i+r.n]) & r.mask
	}
	clear(buf)
}

// karatsuba writes the 2*len(a) coefficient product of a and b to out.
// scratch must hold at least 3*len(a) values.
func karatsuba(out, scratch, a, b []uint32) {
	const schoolbookLimit = 32
	if len(a) < schoolbookLimit {
		for i := 0; i < len(a)*2; i++ {
			out[i] = 0
		}
		for i := range a {
			for j := range b {
				out[i+j] += a[i] * b[j]
			}
		}
		return
	}

	lowLen := len(a) / 2
	highLen := len(a) - lowLen
	aLow, aHigh := a[:lowLen], a[lowLen:]
	bLow, bHigh := b[:lowLen], b[lowLen:]

	for i := 0; i < lowLen; i++ {
		out[i] = aHigh[i] + aLow[i]
	}
	if highLen != lowLen {
		out[lowLen] = aHigh[lowLen]
	}
	for i := 0; i < lowLen; i++ {
		out[highLen+i] = bHigh[i] + bLow[i]
	}
	if highLen != lowLen {
		out[highLen+lowLen] = bHigh[lowLen]
	}

	karatsuba(scratch, scratch[2*highLen:], out[:highLen], out[highLen:highLen*2])
	karatsuba(out[lowLen*2:], scratch[2*highLen:], aHigh, bHigh)
	karatsuba(out, scratch[2*highLen:], aLow, bLow)

	for i := 0; i < lowLen*2; i++ {
		scratch[i] -= out[i] + out[lowLen*2+i]
	}
	if lowLen != highLen {
		scratch[lowLen*2] -= out[lowLen*4]
	}
	for i := 0; i < 2*highLen; i++ {
		out[lowLen+i] += scratch[i]
	}
}

// Invert finds a^-1 mod 2 and lifts it to mod q with Newton iteration
// b = b*(2 - a*b), doubling the precision each round.
func (r *convRing) Invert(out, a Poly) error {
	a2 := r.NewPoly()
	b := r.NewPoly()
	t := r.NewPoly()
	defer func() {
		a2.Zero()
		b.Zero()
		t.Zero()
	}()
	for i := range a2 {
		a2[i] = a[i] & 1
	}
	if err := r.bin.Invert(b, a2); err != nil {
		out[:r.n].Zero()
		return err
	}
	logQ := bits.Len32(r.q) - 1
	for prec := 1; prec < logQ; prec *= 2 {
		r.Mul(t, a, b)
		r.Neg(t, t)
		t[0] = (t[0] + 2) & r.mask
		r.Mul(b, b, t)
	}
	copy(out[:r.n], b)
	return nil
}
