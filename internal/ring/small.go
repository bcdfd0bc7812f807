// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package ring

// Small is the ring Z_p[x]/(x^N-1) or Z_p[x]/(x^N+1) for a message modulus
// p of 2 or 3.
type Small struct {
	n          int
	p          uint32
	negacyclic bool
	barrett    uint64 // ceil(2^32/p)
}

// NewSmall returns the mod p ring of degree n.  It panics if p is not 2 or 3.
func NewSmall(n int, p uint32, negacyclic bool) *Small {
	if p != 2 && p != 3 {
		panic("ring: small modulus must be 2 or 3")
	}
	return &Small{
		n:          n,
		p:          p,
		negacyclic: negacyclic,
		barrett:    (1<<32 + uint64(p) - 1) / uint64(p),
	}
}

func (s *Small) N() int          { return s.n }
func (s *Small) Modulus() uint32 { return s.p }
func (s *Small) NewPoly() Poly   { return make(Poly, s.n) }

// Reduce returns x mod p for x < 2^31.
func (s *Small) Reduce(x uint32) uint32 {
	q := uint32(uint64(x) * s.barrett >> 32)
	return x - q*s.p
}

// FromModQ reduces each coefficient of a, taken as its centered
// representative mod q, to [0, p).
func (s *Small) FromModQ(out, a Poly, q uint32) {
	off := int64(q/2/s.p+1) * int64(s.p)
	for i := range out[:s.n] {
		out[i] = s.Reduce(uint32(int64(Center(a[i], q)) + off))
	}
}

// LiftModQ maps each coefficient of a from [0, p) to the residue mod q of its
// centered representative, so p-1 becomes q-1 when p is 3.
func (s *Small) LiftModQ(out, a Poly, q uint32) {
	for i := range out[:s.n] {
		m := uint32(int32(s.p/2-a[i]) >> 31) // all ones when a[i] > p/2
		out[i] = a[i] + (q-s.p)&m
	}
}

func (s *Small) Add(out, a, b Poly) {
	for i := range out[:s.n] {
		out[i] = s.Reduce(a[i] + b[i])
	}
}

func (s *Small) Sub(out, a, b Poly) {
	for i := range out[:s.n] {
		out[i] = s.Reduce(a[i] + s.p - b[i])
	}
}

// Mul is the schoolbook product.  out may alias a or b.
func (s *Small) Mul(out, a, b Poly) {
	acc := make([]uint32, s.n)
	for i := 0; i < s.n; i++ {
		for j := 0; j < s.n; j++ {
			e := i + j
			if e < s.n {
				acc[e] += a[i] * b[j]
			} else if s.negacyclic {
				acc[e-s.n] += a[i] * (s.p - b[j])
			} else {
				acc[e-s.n] += a[i] * b[j]
			}
		}
	}
	for i := range acc {
		out[i] = s.Reduce(acc[i])
	}
	clear(acc)
}

// rotate writes a*x^k to out.  k is public.
func (s *Small) rotate(out, a []uint32, k int) {
	n := s.n
	for i := 0; i < n; i++ {
		e := (i + k) % (2 * n)
		switch {
		case e < n:
			out[e] = a[i]
		case s.negacyclic:
			out[e-n] = s.Reduce(s.p - a[i])
		default:
			out[e-n] = a[i]
		}
	}
}

// Invert computes a^-1 with a constant-time almost-inverse.  Every iteration
// runs regardless of the input; swaps and the final rotation are selected
// with masks.
func (s *Small) Invert(out, a Poly) error {
	n, p := s.n, s.p
	f := make([]uint32, n+1)
	g := make([]uint32, n+1)
	b := make([]uint32, n)
	c := make([]uint32, n)
	tmp := make([]uint32, n)
	defer func() {
		clear(f)
		clear(g)
		clear(b)
		clear(c)
		clear(tmp)
	}()

	for i := 0; i < n; i++ {
		f[i] = s.Reduce(a[i])
	}
	// g is the modulus polynomial x^N -/+ 1.
	if s.negacyclic {
		g[0] = 1
	} else {
		g[0] = p - 1
	}
	g[n] = 1
	b[0] = 1

	degF, degG := int32(n-1), int32(n)
	var k, f0 uint32
	still := ^uint32(0)
	for iter := 0; iter < 2*n-1; iter++ {
		active := ^zeroMask(f[0]) & still
		swap := active & uint32((degF-degG)>>31)
		cswap(f, g, swap)
		cswap(b, c, swap)
		d := int32(swap) & (degF ^ degG)
		degF ^= d
		degG ^= d

		u := s.Reduce(f[0]*g[0]) & active
		for i := range f {
			f[i] = s.Reduce(f[i] + p*p - u*g[i])
		}
		for i := range b {
			b[i] = s.Reduce(b[i] + p*p - u*c[i])
		}

		copy(f, f[1:])
		f[n] = 0
		s.rotate(tmp, c, 1)
		copy(c, tmp)

		degF--
		k += 1 & still
		f0 ^= still & (f0 ^ f[0])
		still = ^uint32((degF - 1) >> 31)
	}

	// b holds x^k * a^-1 * f0; undo the shift by rotating 2N-k places.
	t := uint32(2*n) - k
	for j := 0; 1<<j <= 2*n; j++ {
		s.rotate(tmp, b, 1<<j)
		cmov(b, tmp, -(t >> uint(j) & 1))
	}

	ok := ^zeroMask(f0)
	for i := range out[:n] {
		out[i] = s.Reduce(b[i]*f0) & ok // f0 is its own inverse mod 2 and 3
	}
	if ok == 0 {
		return ErrNotInvertible
	}
	return nil
}
