// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package ntru

import (
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/ntruenc/ntru/internal/pack"
	"github.com/ntruenc/ntru/internal/ring"
	"github.com/ntruenc/ntru/internal/sampler"
	"github.com/ntruenc/ntru/internal/scratch"
	"github.com/ntruenc/ntru/internal/xof"
	"github.com/ntruenc/ntru/params"
)

var (
	seedCustomization     = []byte("ntru-cca seed")
	blindingCustomization = []byte("ntru-cca blinding")
	maskCustomization     = []byte("ntru-cca mask")
)

const (
	seedSize = 32

	// maxEncryptAttempts bounds the redraws of the random prefix.  A
	// single draw falls short of Dm0 with probability below 2^-9.
	maxEncryptAttempts = 64
)

// Scratch slots shared by encryption and decryption.
const (
	slotR = iota
	slotT
	slotMask
	slotM
	slotC
	slotTmp
	slotA
	slotSmall
	cca2Slots
)

// Encrypt encrypts msg to pk.  rand supplies the 32 byte random prefix,
// which is drawn again whenever the masked message is too unbalanced.
func (pk *PublicKey) Encrypt(rand io.Reader, msg []byte) ([]byte, error) {
	if len(msg) > pk.e.p.MaxMsgLen {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d for %s",
			ErrMessageTooLong, len(msg), pk.e.p.MaxMsgLen, pk.e.p.Name)
	}
	b := make([]byte, params.SeedPrefixSize)
	defer clear(b)
	for attempt := 0; attempt < maxEncryptAttempts; attempt++ {
		if _, err := io.ReadFull(rand, b); err != nil {
			return nil, err
		}
		if ct, ok := pk.encrypt(msg, b); ok {
			return ct, nil
		}
	}
	return nil, ErrEncryptionFailed
}

// Decrypt recovers the message in ct.  Every failure, including a ciphertext
// for another parameter set, returns ErrDecryptionRejected.
func (sk *PrivateKey) Decrypt(ct []byte) ([]byte, error) {
	return sk.decrypt(ct)
}

// seed binds the prefix b to the message and the public key.
func (pk *PublicKey) seed(b, msg []byte) []byte {
	p := pk.e.p
	return xof.KDF(b, seedCustomization, seedSize,
		[]byte{p.ID, byte(len(msg))}, msg, pk.packed[:params.PublicKeyPrefixSize])
}

// mask derives the mod p mask from the packed blinding value t.
func (pk *PublicKey) mask(out, t ring.Poly, sc *scratch.Arena) {
	p := pk.e.p
	packed := sc.Bytes(p.PackedPolySize())
	pack.Bits(packed, t, p.CoeffBits())
	if err := sampler.Uniform(out, p.P, xof.CSPRNG(packed, maskCustomization)); err != nil {
		panic(err) // cSHAKE reads do not fail
	}
}

// weightMask reports whether m holds at least dm0 coefficients of every
// residue below p.  It reads every coefficient regardless of the outcome.
func weightMask(m ring.Poly, p, dm0 uint32) uint32 {
	ok := ^uint32(0)
	for v := uint32(0); v < p; v++ {
		var n uint32
		for _, x := range m {
			n += eqMask(x, v) & 1
		}
		ok &^= ltMask(n, dm0)
	}
	return ok
}

// reencrypt computes c = r*h + (encode(M) + mask) for the message buffer M,
// where r is expanded from seed.  The blinding value t = r*h is left in
// slotT and the lifted masked message in slotM.  The returned mask is the
// Dm0 check on the masked message.
func (pk *PublicKey) reencrypt(c ring.Poly, buf, seed []byte, sc *scratch.Arena) uint32 {
	e, p := pk.e, pk.e.p
	r, t, mask, m := sc.Poly(slotR), sc.Poly(slotT), sc.Poly(slotMask), sc.Poly(slotM)
	err := sampler.Trinary(r, p.R.Plus, p.R.Minus, p.Q, xof.CSPRNG(seed, blindingCustomization))
	if err != nil {
		panic(err)
	}
	e.product(t, sc.Poly(slotTmp), r, pk.h)
	pk.mask(mask, t, sc)
	encodeMessage(m, buf, p.P)
	e.small.Add(m, m, mask)
	ok := weightMask(m, p.P, uint32(p.Dm0))
	e.small.LiftModQ(m, m, p.Q)
	e.ring.Add(c, t, m)
	return ok
}

// encrypt is deterministic in b.  It reports false, alongside the
// ciphertext, when the masked message fails the Dm0 check.
func (pk *PublicKey) encrypt(msg, b []byte) ([]byte, bool) {
	p := pk.e.p
	sc := scratch.New(p.N, cca2Slots)
	defer sc.Release()

	buf := sc.Bytes(p.MessageBufferSize())
	copy(buf, b)
	buf[params.SeedPrefixSize] = byte(len(msg))
	copy(buf[params.SeedPrefixSize+1:], msg)

	c := sc.Poly(slotC)
	ok := pk.reencrypt(c, buf, pk.seed(b, msg), sc)

	ct := make([]byte, p.CiphertextSize())
	ct[0] = p.ID
	pack.Bits(ct[1:], c, p.CoeffBits())
	return ct, ok == ^uint32(0)
}

func (sk *PrivateKey) decrypt(ct []byte) ([]byte, error) {
	e, p := sk.e, sk.e.p
	if len(ct) != p.CiphertextSize() || ct[0] != p.ID {
		return nil, ErrDecryptionRejected
	}
	sc := scratch.New(p.N, cca2Slots)
	defer sc.Release()

	c := sc.Poly(slotC)
	if err := pack.UnpackBits(c, ct[1:], p.CoeffBits(), p.Q); err != nil {
		return nil, ErrDecryptionRejected
	}

	// a = f*c mod q; f*r*h vanishes mod p, leaving f*m'.
	a, tmp, ms := sc.Poly(slotA), sc.Poly(slotTmp), sc.Poly(slotSmall)
	e.ring.Forward(tmp, c)
	e.product(a, ms, sk.f, tmp)
	e.small.FromModQ(ms, a, p.Q)
	m := sc.Poly(slotM)
	e.small.Mul(m, sk.fp, ms)
	weight := weightMask(m, p.P, uint32(p.Dm0))

	// t = c - m' gives the mask, and m' - mask the message encoding.
	t, mask := sc.Poly(slotT), sc.Poly(slotMask)
	e.small.LiftModQ(tmp, m, p.Q)
	e.ring.Sub(t, c, tmp)
	sk.mask(mask, t, sc)
	e.small.Sub(m, m, mask)

	buf := sc.Bytes(p.MessageBufferSize())
	ok := decodeMessage(buf, m, p.P) & weight

	// Check len <= max and zero padding after the message.
	const hdr = params.SeedPrefixSize + 1
	n := uint32(buf[params.SeedPrefixSize])
	ok &^= ltMask(uint32(p.MaxMsgLen), n)
	for i := hdr; i < len(buf); i++ {
		ok &= ltMask(uint32(i-hdr), n) | zeroMask(uint32(buf[i]))
	}
	n &= ok

	b := buf[:params.SeedPrefixSize]
	msg := buf[hdr : hdr+int(n)]
	check := sc.Bytes(p.CiphertextSize())
	check[0] = p.ID
	_ = sk.reencrypt(c, buf, sk.seed(b, msg), sc) // equals weight when c matches
	pack.Bits(check[1:], c, p.CoeffBits())

	if subtle.ConstantTimeCompare(check, ct)&int(ok&1) != 1 {
		return nil, ErrDecryptionRejected
	}
	out := make([]byte, len(msg))
	copy(out, msg)
	return out, nil
}
