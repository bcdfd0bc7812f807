// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package ring

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ntruenc/ntru/params"
)

func randPoly(rng *rand.Rand, n int, q uint32) Poly {
	p := make(Poly, n)
	for i := range p {
		p[i] = rng.Uint32N(q)
	}
	return p
}

// trinary returns a polynomial with plus ones and minus negative ones, as
// residues mod q.
func trinary(rng *rand.Rand, n, plus, minus int, q uint32) Poly {
	p := make(Poly, n)
	idx := rng.Perm(n)
	for _, i := range idx[:plus] {
		p[i] = 1
	}
	for _, i := range idx[plus : plus+minus] {
		p[i] = q - 1
	}
	return p
}

// schoolbook multiplies modulo x^n -/+ 1 and q with plain integer arithmetic.
func schoolbook(a, b Poly, q uint32, negacyclic bool) Poly {
	n := len(a)
	acc := make([]uint64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := uint64(a[i]) * uint64(b[j]) % uint64(q)
			e := i + j
			if e >= n {
				e -= n
				if negacyclic {
					v = (uint64(q) - v) % uint64(q)
				}
			}
			acc[e] = (acc[e] + v) % uint64(q)
		}
	}
	out := make(Poly, n)
	for i := range out {
		out[i] = uint32(acc[i])
	}
	return out
}

func one(n int) Poly {
	p := make(Poly, n)
	p[0] = 1
	return p
}

func TestNew(t *testing.T) {
	for _, p := range params.All() {
		r, err := New(p)
		require.NoError(t, err, p.Name)
		require.Equal(t, p.N, r.N())
		require.Equal(t, p.Q, r.Modulus())
	}
	_, err := newNTTRing(1024, 2048)
	require.Error(t, err)
	_, err = newConvRing(443, 448, 1000)
	require.Error(t, err)
}

func TestNTTCoefficientOps(t *testing.T) {
	r, err := newNTTRing(1024, params.NTRU1024.Q)
	require.NoError(t, err)
	q := uint64(r.Modulus())
	rng := rand.New(rand.NewPCG(1, 1))
	a := randPoly(rng, r.n, r.Modulus())
	b := randPoly(rng, r.n, r.Modulus())
	s := rng.Uint32()

	sum, diff, neg, scaled, prod := r.NewPoly(), r.NewPoly(), r.NewPoly(), r.NewPoly(), r.NewPoly()
	r.Add(sum, a, b)
	r.Sub(diff, a, b)
	r.Neg(neg, a)
	r.MulScalar(scaled, a, s)
	r.MulForward(prod, a, b)
	for i := range a {
		x, y := uint64(a[i]), uint64(b[i])
		require.Equal(t, uint32((x+y)%q), sum[i])
		require.Equal(t, uint32((x+q-y)%q), diff[i])
		require.Equal(t, uint32((q-x)%q), neg[i])
		require.Equal(t, uint32(x*(uint64(s)%q)%q), scaled[i])
		require.Equal(t, uint32(x*y%q), prod[i])
	}
}

func TestNTTRoundTrip(t *testing.T) {
	r, err := newNTTRing(1024, params.NTRU1024.Q)
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(2, 2))
	a := randPoly(rng, r.n, r.Modulus())
	f := r.NewPoly()
	b := r.NewPoly()
	r.Forward(f, a)
	r.Backward(b, f)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNTTMulMatchesSchoolbook(t *testing.T) {
	q := params.NTRU1024.Q
	for _, n := range []int{16, 64, 1024} {
		r, err := newNTTRing(n, q)
		require.NoError(t, err)
		rng := rand.New(rand.NewPCG(3, uint64(n)))
		a := randPoly(rng, n, q)
		b := trinary(rng, n, n/4, n/4, q)
		got := r.NewPoly()
		r.Mul(got, a, b)
		if diff := cmp.Diff(schoolbook(a, b, q, true), got); diff != "" {
			t.Fatalf("n=%d product mismatch (-want +got):\n%s", n, diff)
		}

		// Aliased output.
		r.Mul(a, a, b)
		require.Equal(t, got, a)
	}
}

func TestConvMulMatchesSchoolbook(t *testing.T) {
	for _, p := range []*params.Set{params.NTRU443, params.NTRU743} {
		r, err := newConvRing(p.N, p.PadN, p.Q)
		require.NoError(t, err)
		rng := rand.New(rand.NewPCG(4, uint64(p.N)))
		a := randPoly(rng, p.N, p.Q)
		b := randPoly(rng, p.N, p.Q)
		got := r.NewPoly()
		r.Mul(got, a, b)
		if diff := cmp.Diff(schoolbook(a, b, p.Q, false), got); diff != "" {
			t.Fatalf("%s product mismatch (-want +got):\n%s", p.Name, diff)
		}
	}
}

func TestKaratsubaOddLengths(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))
	for _, n := range []int{1, 31, 32, 33, 47, 95, 101} {
		a := make([]uint32, n)
		b := make([]uint32, n)
		for i := range a {
			a[i] = rng.Uint32()
			b[i] = rng.Uint32()
		}
		want := make([]uint32, 2*n)
		for i := range a {
			for j := range b {
				want[i+j] += a[i] * b[j]
			}
		}
		got := make([]uint32, 2*n)
		karatsuba(got, make([]uint32, 3*n), a, b)
		require.Equal(t, want, got, "n=%d", n)
	}
}

func TestInvert(t *testing.T) {
	for _, p := range params.All() {
		r, err := New(p)
		require.NoError(t, err)
		rng := rand.New(rand.NewPCG(6, uint64(p.ID)))
		inverted := 0
		for i := 0; i < 8; i++ {
			a := trinary(rng, p.N, p.F.Plus, p.F.Minus, p.Q)
			inv := r.NewPoly()
			if err := r.Invert(inv, a); err != nil {
				require.ErrorIs(t, err, ErrNotInvertible)
				require.Equal(t, r.NewPoly(), inv)
				continue
			}
			inverted++
			prod := r.NewPoly()
			r.Mul(prod, a, inv)
			require.Equal(t, one(p.N), prod, p.Name)
		}
		require.NotZero(t, inverted, p.Name)
	}
}

func TestInvertZero(t *testing.T) {
	for _, p := range params.All() {
		r, err := New(p)
		require.NoError(t, err)
		out := r.NewPoly()
		require.ErrorIs(t, r.Invert(out, r.NewPoly()), ErrNotInvertible)
	}
}

func TestNTTInvertZeroSlot(t *testing.T) {
	r, err := newNTTRing(1024, params.NTRU1024.Q)
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(7, 7))
	slots := randPoly(rng, r.n, r.Modulus())
	for i := range slots {
		if slots[i] == 0 {
			slots[i] = 1
		}
	}
	slots[17] = 0
	a := r.NewPoly()
	r.Backward(a, slots)
	out := r.NewPoly()
	require.ErrorIs(t, r.Invert(out, a), ErrNotInvertible)
	require.Equal(t, r.NewPoly(), out)
}

func TestConvInvertEvenParity(t *testing.T) {
	// 1+x vanishes at x=1 mod 2, so it has no inverse mod x^N-1.
	r, err := newConvRing(443, 448, 2048)
	require.NoError(t, err)
	a := r.NewPoly()
	a[0], a[1] = 1, 1
	require.ErrorIs(t, r.Invert(r.NewPoly(), a), ErrNotInvertible)
}

func TestSmallReduce(t *testing.T) {
	for _, p := range []uint32{2, 3} {
		s := NewSmall(8, p, false)
		for x := uint32(0); x < 1<<16; x++ {
			require.Equal(t, x%p, s.Reduce(x))
		}
		for _, x := range []uint32{1<<31 - 1, 1<<31 - 2, 1<<30 + 7, 1 << 30} {
			require.Equal(t, x%p, s.Reduce(x))
		}
	}
	require.Panics(t, func() { NewSmall(8, 5, false) })
}

func TestSmallInvert(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 8))
	for trial := 0; trial < 200; trial++ {
		n := []int{5, 7, 11, 16, 17, 31, 43, 64}[rng.IntN(8)]
		p := uint32(2 + rng.IntN(2))
		s := NewSmall(n, p, rng.IntN(2) == 0)
		a := randPoly(rng, n, p)
		inv := s.NewPoly()
		if err := s.Invert(inv, a); err != nil {
			require.ErrorIs(t, err, ErrNotInvertible)
			continue
		}
		prod := s.NewPoly()
		s.Mul(prod, a, inv)
		require.Equal(t, one(n), prod, "n=%d p=%d a=%v", n, p, a)
	}
}

func TestSmallModQ(t *testing.T) {
	for _, p := range params.All() {
		s := NewSmall(4, p.P, p.Family == params.Prime)
		in := Poly{0, 1, p.Q - 1, p.Q / 2}
		got := s.NewPoly()
		s.FromModQ(got, in, p.Q)
		want := Poly{0, 1, p.P - 1, (p.Q / 2) % p.P}
		require.Equal(t, want, got, p.Name)

		small := Poly{0, 1, p.P - 1, 0}
		lifted := s.NewPoly()
		s.LiftModQ(lifted, small, p.Q)
		back := s.NewPoly()
		s.FromModQ(back, lifted, p.Q)
		require.Equal(t, small, back, p.Name)
	}
	s := NewSmall(3, 3, false)
	lifted := s.NewPoly()
	s.LiftModQ(lifted, Poly{0, 1, 2}, 2048)
	require.Equal(t, Poly{0, 1, 2047}, lifted)
}

func TestCenterLift(t *testing.T) {
	const q = 2048
	require.Equal(t, int32(0), Center(0, q))
	require.Equal(t, int32(1024), Center(1024, q))
	require.Equal(t, int32(-1023), Center(1025, q))
	require.Equal(t, int32(-1), Center(q-1, q))
	for v := int32(-1023); v <= 1024; v++ {
		require.Equal(t, v, Center(Lift(v, q), q))
	}
}

func TestEqual(t *testing.T) {
	a := Poly{1, 2, 3}
	require.Equal(t, 1, Equal(a, Poly{1, 2, 3}))
	require.Equal(t, 0, Equal(a, Poly{1, 2, 4}))
	require.Equal(t, 0, Equal(a, Poly{1, 2}))
	require.Equal(t, 0, Equal(Poly{1 << 31}, Poly{0}))
}
