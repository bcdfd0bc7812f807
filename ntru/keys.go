// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package ntru

import (
	"fmt"

	"github.com/ntruenc/ntru/internal/pack"
	"github.com/ntruenc/ntru/internal/ring"
	"github.com/ntruenc/ntru/params"
)

// PublicKey is an NTRUEncrypt public key.  The public polynomial h is held
// in the form it is multiplied in, which for the prime family is the
// transform domain.
type PublicKey struct {
	e      *engine
	h      ring.Poly
	packed []byte // packed h
}

// PrivateKey is an NTRUEncrypt private key.  It carries the public key so
// decryption can re-encrypt.
type PrivateKey struct {
	PublicKey
	f  ring.Poly // trinary, mod q
	fp ring.Poly // f^-1 mod p
}

func newPublicKey(e *engine, h ring.Poly) PublicKey {
	packed := make([]byte, e.p.PackedPolySize())
	pack.Bits(packed, h, e.p.CoeffBits())
	return PublicKey{e: e, h: h, packed: packed}
}

// Params returns the parameter set of the key.
func (pk *PublicKey) Params() *params.Set {
	return pk.e.p
}

// Bytes returns the wire encoding id || packed h.
func (pk *PublicKey) Bytes() []byte {
	b := make([]byte, 0, pk.e.p.PublicKeySize())
	b = append(b, pk.e.p.ID)
	return append(b, pk.packed...)
}

// Equal reports whether pk and other are the same public key.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.e.p == other.e.p && ring.Equal(pk.h, other.h) == 1
}

// ParsePublicKey decodes a public key.  An unknown identifier yields
// params.ErrUnsupportedParameterSet; anything else malformed yields
// ErrInvalidKey.
func ParsePublicKey(b []byte) (*PublicKey, error) {
	if len(b) == 0 {
		return nil, ErrInvalidKey
	}
	p, err := params.Lookup(b[0])
	if err != nil {
		return nil, err
	}
	e, err := engineFor(p)
	if err != nil {
		return nil, err
	}
	if len(b) != p.PublicKeySize() {
		return nil, fmt.Errorf("%w: %s public key is %d bytes, not %d",
			ErrInvalidKey, p.Name, len(b), p.PublicKeySize())
	}
	h := e.ring.NewPoly()
	if err := pack.UnpackBits(h, b[1:], p.CoeffBits(), p.Q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	pk := newPublicKey(e, h)
	return &pk, nil
}

// Public returns the public half of sk.
func (sk *PrivateKey) Public() *PublicKey {
	pk := sk.PublicKey
	return &pk
}

// Bytes returns the wire encoding id || trits(f) || packed h.
func (sk *PrivateKey) Bytes() []byte {
	p := sk.e.p
	b := make([]byte, p.PrivateKeySize())
	b[0] = p.ID
	pack.Trits(b[1:1+p.PackedTrinarySize()], sk.f, p.Q)
	copy(b[1+p.PackedTrinarySize():], sk.packed)
	return b
}

// ParsePrivateKey decodes a private key, checking the weight of f and
// recomputing its inverse mod p.
func ParsePrivateKey(b []byte) (*PrivateKey, error) {
	if len(b) == 0 {
		return nil, ErrInvalidKey
	}
	p, err := params.Lookup(b[0])
	if err != nil {
		return nil, err
	}
	e, err := engineFor(p)
	if err != nil {
		return nil, err
	}
	if len(b) != p.PrivateKeySize() {
		return nil, fmt.Errorf("%w: %s private key is %d bytes, not %d",
			ErrInvalidKey, p.Name, len(b), p.PrivateKeySize())
	}
	tritsEnd := 1 + p.PackedTrinarySize()
	sk := &PrivateKey{
		f:  e.ring.NewPoly(),
		fp: e.small.NewPoly(),
	}
	fail := func(err error) (*PrivateKey, error) {
		sk.Wipe()
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if err := pack.UnpackTrits(sk.f, b[1:tritsEnd], p.Q); err != nil {
		return fail(err)
	}
	var plus, minus int
	for _, c := range sk.f {
		plus += int(eqMask(c, 1) & 1)
		minus += int(eqMask(c, p.Q-1) & 1)
	}
	if plus != p.F.Plus || minus != p.F.Minus {
		return fail(fmt.Errorf("private polynomial weight %d/%d", plus, minus))
	}
	fs := e.small.NewPoly()
	defer fs.Zero()
	e.small.FromModQ(fs, sk.f, p.Q)
	if err := e.small.Invert(sk.fp, fs); err != nil {
		return fail(err)
	}
	h := e.ring.NewPoly()
	if err := pack.UnpackBits(h, b[tritsEnd:], p.CoeffBits(), p.Q); err != nil {
		return fail(err)
	}
	sk.PublicKey = newPublicKey(e, h)
	return sk, nil
}

// Wipe zeroes the secret polynomials.  The key must not be used afterwards.
func (sk *PrivateKey) Wipe() {
	sk.f.Zero()
	sk.fp.Zero()
}
