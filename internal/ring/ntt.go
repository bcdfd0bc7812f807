// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package ring

import (
	"fmt"
	"math/bits"

	lring "github.com/tuneinsight/lattigo/v4/ring"
)

// nttRing is Z_q[x]/(x^N+1) for a prime q with 2N | q-1, computed by a
// single-modulus lattigo ring.  Poly values cross into lattigo polynomials
// for each operation and the temporaries are cleared on the way out.
type nttRing struct {
	r *lring.Ring
	n int
	q uint64
}

func newNTTRing(n int, q uint32) (*nttRing, error) {
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("ring: NTT degree %d is not a power of two", n)
	}
	if q >= 1<<31 || !lring.IsPrime(uint64(q)) {
		return nil, fmt.Errorf("ring: NTT modulus %d is not a prime below 2^31", q)
	}
	if (uint64(q)-1)%uint64(2*n) != 0 {
		return nil, fmt.Errorf("ring: 2N=%d does not divide q-1=%d", 2*n, q-1)
	}
	r, err := lring.NewRing(n, []uint64{uint64(q)})
	if err != nil {
		return nil, fmt.Errorf("ring: NTT tables for N=%d q=%d: %w", n, q, err)
	}
	return &nttRing{r: r, n: n, q: uint64(q)}, nil
}

func (r *nttRing) load(a Poly) *lring.Poly {
	p := r.r.NewPoly()
	c := p.Coeffs[0]
	for i, x := range a[:r.n] {
		c[i] = uint64(x)
	}
	return p
}

func (r *nttRing) store(out Poly, p *lring.Poly) {
	for i, x := range p.Coeffs[0][:r.n] {
		out[i] = uint32(x)
	}
}

func wipe(ps ...*lring.Poly) {
	for _, p := range ps {
		p.Zero()
	}
}

func (r *nttRing) N() int          { return r.n }
func (r *nttRing) Modulus() uint32 { return uint32(r.q) }
func (r *nttRing) NewPoly() Poly   { return make(Poly, r.n) }

func (r *nttRing) Add(out, a, b Poly) {
	pa, pb := r.load(a), r.load(b)
	r.r.Add(pa, pb, pa)
	r.store(out, pa)
	wipe(pa, pb)
}

func (r *nttRing) Sub(out, a, b Poly) {
	pa, pb := r.load(a), r.load(b)
	r.r.Sub(pa, pb, pa)
	r.store(out, pa)
	wipe(pa, pb)
}

func (r *nttRing) Neg(out, a Poly) {
	pa := r.load(a)
	r.r.Neg(pa, pa)
	r.store(out, pa)
	wipe(pa)
}

func (r *nttRing) MulScalar(out, a Poly, s uint32) {
	pa := r.load(a)
	r.r.MulScalar(pa, uint64(s)%r.q, pa)
	r.store(out, pa)
	wipe(pa)
}

// Forward is the negacyclic transform.  Slots come out reduced to [0, q).
func (r *nttRing) Forward(out, a Poly) {
	pa := r.load(a)
	r.r.NTT(pa, pa)
	r.store(out, pa)
	wipe(pa)
}

// Backward is the inverse of Forward, scaled by N^-1.
func (r *nttRing) Backward(out, a Poly) {
	pa := r.load(a)
	r.r.InvNTT(pa, pa)
	r.store(out, pa)
	wipe(pa)
}

// MulForward multiplies slot-wise.  One operand is lifted to Montgomery
// form first so the Montgomery product lands back on plain residues.
func (r *nttRing) MulForward(out, a, b Poly) {
	pa, pb := r.load(a), r.load(b)
	r.r.MForm(pa, pa)
	r.r.MulCoeffsMontgomery(pa, pb, pa)
	r.store(out, pa)
	wipe(pa, pb)
}

func (r *nttRing) Mul(out, a, b Poly) {
	pa, pb := r.load(a), r.load(b)
	r.r.NTT(pa, pa)
	r.r.NTT(pb, pb)
	r.r.MForm(pa, pa)
	r.r.MulCoeffsMontgomery(pa, pb, pa)
	r.r.InvNTT(pa, pa)
	r.store(out, pa)
	wipe(pa, pb)
}

// Invert raises every transform slot to q-2 with a square-and-multiply over
// the whole slot vector.  a is invertible exactly when no slot is zero; the
// check is accumulated without branching.
func (r *nttRing) Invert(out, a Poly) error {
	x := r.load(a)
	r.r.NTT(x, x)
	var zero uint32
	for _, s := range x.Coeffs[0] {
		zero |= zeroMask(uint32(s))
	}

	r.r.MForm(x, x)
	acc := x.CopyNew()
	e := r.q - 2
	for k := bits.Len64(e) - 2; k >= 0; k-- {
		r.r.MulCoeffsMontgomery(acc, acc, acc)
		if e>>uint(k)&1 == 1 { // public exponent
			r.r.MulCoeffsMontgomery(acc, x, acc)
		}
	}
	r.r.InvMForm(acc, acc)
	r.r.InvNTT(acc, acc)
	defer wipe(x, acc)

	if zero != 0 {
		out[:r.n].Zero()
		return ErrNotInvertible
	}
	r.store(out, acc)
	return nil
}
