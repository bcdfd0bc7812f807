// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package sampler

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ntruenc/ntru/internal/ring"
	"github.com/ntruenc/ntru/internal/xof"
	"github.com/ntruenc/ntru/params"
)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestTrinaryWeights(t *testing.T) {
	for _, p := range params.All() {
		for _, w := range []params.Weight{p.F, p.G, p.R} {
			out := make(ring.Poly, p.N)
			require.NoError(t, Trinary(out, w.Plus, w.Minus, p.Q, rand.Reader))
			var plus, minus int
			for _, c := range out {
				switch c {
				case 0:
				case 1:
					plus++
				case p.Q - 1:
					minus++
				default:
					t.Fatalf("%s: coefficient %d is not trinary", p.Name, c)
				}
			}
			require.Equal(t, w.Plus, plus, p.Name)
			require.Equal(t, w.Minus, minus, p.Name)
		}
	}
}

func TestTrinaryDeterministic(t *testing.T) {
	p := params.NTRU743
	a := make(ring.Poly, p.N)
	b := make(ring.Poly, p.N)
	require.NoError(t, Trinary(a, p.R.Plus, p.R.Minus, p.Q, xof.CSPRNG([]byte("seed"), nil)))
	require.NoError(t, Trinary(b, p.R.Plus, p.R.Minus, p.Q, xof.CSPRNG([]byte("seed"), nil)))
	require.Equal(t, a, b)
	require.NoError(t, Trinary(b, p.R.Plus, p.R.Minus, p.Q, xof.CSPRNG([]byte("other"), nil)))
	require.NotEqual(t, a, b)
}

func TestTrinaryExhausted(t *testing.T) {
	out := make(ring.Poly, 443)
	err := Trinary(out, 10, 10, 2048, zeroReader{})
	require.ErrorIs(t, err, ErrEntropyExhausted)
	require.Equal(t, make(ring.Poly, 443), out)

	err = Trinary(out, 10, 10, 2048, bytes.NewReader(make([]byte, 3)))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	require.Error(t, Trinary(make(ring.Poly, 4), 3, 2, 2048, rand.Reader))
}

func TestUniform(t *testing.T) {
	for _, p := range []uint32{2, 3} {
		out := make(ring.Poly, 1024)
		require.NoError(t, Uniform(out, p, rand.Reader))
		counts := make([]int, p)
		for _, c := range out {
			require.Less(t, c, p)
			counts[c]++
		}
		for v, c := range counts {
			// Loose bounds; each residue is expected 1024/p times.
			require.Greater(t, c, 1024/int(p)/2, "p=%d value %d", p, v)
		}
	}
	require.Error(t, Uniform(make(ring.Poly, 8), 5, rand.Reader))

	out := ring.Poly{1, 1, 1}
	require.ErrorIs(t, Uniform(out, 2, bytes.NewReader(nil)), io.EOF)
	require.Equal(t, ring.Poly{0, 0, 0}, out)
}

func TestUniformRejection(t *testing.T) {
	block := make([]byte, bufSize)
	block[0] = 250
	block[1] = 3*81 - 1 // 242 = 22222 in base 3
	out := make(ring.Poly, 5)
	require.NoError(t, Uniform(out, 3, bytes.NewReader(block)))
	require.Equal(t, ring.Poly{2, 2, 2, 2, 2}, out)
}
