// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package ntru

import (
	"errors"
	"io"

	"github.com/ntruenc/ntru/internal/ring"
	"github.com/ntruenc/ntru/internal/sampler"
	"github.com/ntruenc/ntru/internal/scratch"
	"github.com/ntruenc/ntru/params"
)

const maxKeyGenAttempts = 64

// GenerateKey creates a key pair for p, drawing all randomness from rand.
// With a deterministic rand the key is a function of its output.
func GenerateKey(rand io.Reader, p *params.Set) (*PrivateKey, error) {
	e, err := engineFor(p)
	if err != nil {
		return nil, err
	}
	return e.generateKey(rand)
}

const (
	kgF = iota
	kgFq
	kgFs
	kgFp
	kgG
	kgTmp
	kgSlots
)

func (e *engine) generateKey(rand io.Reader) (*PrivateKey, error) {
	p := e.p
	sc := scratch.New(p.N, kgSlots)
	defer sc.Release()
	f, fq, fs, fp := sc.Poly(kgF), sc.Poly(kgFq), sc.Poly(kgFs), sc.Poly(kgFp)

	for attempt := 0; attempt < maxKeyGenAttempts; attempt++ {
		if err := sampler.Trinary(f, p.F.Plus, p.F.Minus, p.Q, rand); err != nil {
			return nil, err
		}
		if err := e.ring.Invert(fq, f); err != nil {
			if errors.Is(err, ring.ErrNotInvertible) {
				continue
			}
			return nil, err
		}
		e.small.FromModQ(fs, f, p.Q)
		if err := e.small.Invert(fp, fs); err != nil {
			if errors.Is(err, ring.ErrNotInvertible) {
				continue
			}
			return nil, err
		}

		g, tmp := sc.Poly(kgG), sc.Poly(kgTmp)
		if err := sampler.Trinary(g, p.G.Plus, p.G.Minus, p.Q, rand); err != nil {
			return nil, err
		}
		// h = p*g*f^-1, kept in transform form.
		h := e.ring.NewPoly()
		e.ring.Mul(tmp, g, fq)
		e.ring.MulScalar(tmp, tmp, p.P)
		e.ring.Forward(h, tmp)

		sk := &PrivateKey{
			PublicKey: newPublicKey(e, h),
			f:         append(ring.Poly(nil), f...),
			fp:        append(ring.Poly(nil), fp...),
		}
		return sk, nil
	}
	return nil, ErrKeyGenerationFailed
}
