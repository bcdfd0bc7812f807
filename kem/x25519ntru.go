// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package kem

import (
	"bytes"
	"crypto/ecdh"
	"crypto/rand"
	"fmt"

	"github.com/ntruenc/ntru/internal/xof"
	"github.com/ntruenc/ntru/ntru"
	"github.com/ntruenc/ntru/params"
)

// kemX25519NTRU combines X25519 with an NTRUEncrypt KEM so the shared key
// stays secret while either one holds.
type kemX25519NTRU struct {
	lattice *kemNTRU
	label   string
}

var _kemX25519NTRU743 = &kemX25519NTRU{
	lattice: _kemNTRU743,
	label:   "x25519-" + params.NTRU743.Name,
}

// X25519NTRU743 returns the hybrid X25519 and ntru-cca-743 KEM.
func X25519NTRU743() KEM {
	return _kemX25519NTRU743
}

const (
	kdfSaltSize          = 32
	x25519PublicKeySize  = 32
	x25519PrivateKeySize = 32
)

func (k *kemX25519NTRU) String() string {
	return k.label
}

func (k *kemX25519NTRU) publicKeySize() int {
	return x25519PublicKeySize + k.lattice.p.PublicKeySize()
}

func (k *kemX25519NTRU) CiphertextSize() int {
	return kdfSaltSize + x25519PublicKeySize + k.lattice.p.CiphertextSize()
}

func (k *kemX25519NTRU) GenerateKey(seed []byte) (pubkey []byte, err error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%s: invalid seed length %d", k, len(seed))
	}

	xPriv, sk, err := k.generate(seed)
	if err != nil {
		return nil, err
	}
	defer sk.Wipe()
	return append(xPriv.PublicKey().Bytes(), sk.Public().Bytes()...), nil
}

func (k *kemX25519NTRU) generate(seed []byte) (*ecdh.PrivateKey, *ntru.PrivateKey, error) {
	x25519SubKey := xof.KDF(seed, []byte("ss "+k.label+" subkey x25519"), x25519PrivateKeySize)
	defer clear(x25519SubKey)
	csprng := xof.CSPRNG(seed, []byte("ss "+k.label+" csprng ntru"))

	xPriv, err := ecdh.X25519().NewPrivateKey(x25519SubKey)
	if err != nil {
		return nil, nil, err
	}
	sk, err := ntru.GenerateKey(csprng, k.lattice.p)
	if err != nil {
		return nil, nil, err
	}
	return xPriv, sk, nil
}

func (k *kemX25519NTRU) Encapsulate(pubkey []byte) (ciphertext, sharedKey []byte, err error) {
	if len(pubkey) != k.publicKeySize() {
		return nil, nil, fmt.Errorf("%s: invalid pubkey length %d", k, len(pubkey))
	}
	rPubBytes := pubkey[:x25519PublicKeySize]
	ntruPubBytes := pubkey[x25519PublicKeySize:]

	// Derive ephemeral key for non-interactive X25519 KEM.
	// The shared secret is derived through X25519 of the recipient's public key and the ephemeral private key.
	// The ephemeral public key becomes the X25519 ciphertext.
	x25519 := ecdh.X25519()
	ePriv, err := x25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	ePub := ePriv.PublicKey()
	rPub, err := x25519.NewPublicKey(rPubBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid recipient X25519 public key: %w", err)
	}
	x25519SharedKey, err := ePriv.ECDH(rPub)
	if err != nil {
		return nil, nil, err
	}

	// Encrypt a fresh secret to the NTRU key.
	pk, err := ntru.ParsePublicKey(ntruPubBytes)
	if err != nil {
		return nil, nil, err
	}
	if pk.Params() != k.lattice.p {
		return nil, nil, fmt.Errorf("%s: public key is for %s", k, pk.Params())
	}
	ntruSecret := make([]byte, KeySize)
	if _, err := rand.Read(ntruSecret); err != nil {
		return nil, nil, err
	}
	ntruCiphertext, err := pk.Encrypt(rand.Reader, ntruSecret)
	if err != nil {
		return nil, nil, err
	}

	salt := make([]byte, kdfSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}

	ciphertext = make([]byte, 0, k.CiphertextSize())
	ciphertext = append(ciphertext, salt...)
	ciphertext = append(ciphertext, ePub.Bytes()...)
	ciphertext = append(ciphertext, ntruCiphertext...)

	key := k.combine(x25519SharedKey, ntruSecret, ePub.Bytes(), rPubBytes, ntruPubBytes, salt)
	return ciphertext, key, nil
}

func (k *kemX25519NTRU) Decapsulate(seed, ciphertext []byte) (sharedKey []byte, err error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%s: invalid seed length %d", k, len(seed))
	}
	if len(ciphertext) != k.CiphertextSize() {
		return nil, fmt.Errorf("%s: invalid ciphertext length %d", k, len(ciphertext))
	}

	rPriv, sk, err := k.generate(seed)
	if err != nil {
		return nil, err
	}
	defer sk.Wipe()

	salt := ciphertext[:kdfSaltSize]
	ePubBytes := ciphertext[kdfSaltSize : kdfSaltSize+x25519PublicKeySize]
	ntruCiphertext := ciphertext[kdfSaltSize+x25519PublicKeySize:]

	// Derive X25519 shared key from ephemeral public key in ciphertext
	// and our recipient private key.
	ePub, err := ecdh.X25519().NewPublicKey(ePubBytes)
	if err != nil {
		return nil, err
	}
	x25519SharedKey, err := rPriv.ECDH(ePub)
	if err != nil {
		return nil, err
	}

	ntruSecret, err := sk.Decrypt(ntruCiphertext)
	if err != nil {
		return nil, err
	}
	if len(ntruSecret) != KeySize {
		return nil, ntru.ErrDecryptionRejected
	}

	key := k.combine(x25519SharedKey, ntruSecret, ePubBytes, rPriv.PublicKey().Bytes(),
		sk.Public().Bytes(), salt)
	return key, nil
}

// combine derives the shared key from both secrets with KMAC-256, binding
// both public keys, the ephemeral key and the salt.
func (k *kemX25519NTRU) combine(x25519SharedKey, ntruSecret, ePub, rPub, ntruPub, salt []byte) []byte {
	ikm := append(append([]byte(nil), x25519SharedKey...), ntruSecret...)
	defer clear(ikm)
	defer clear(x25519SharedKey)
	defer clear(ntruSecret)

	var info bytes.Buffer
	info.Grow(32*3 + len(ntruPub) + len(k.label) + 3)
	info.Write(ePub)
	info.Write(rPub)
	info.Write(ntruPub)
	info.Write(salt)
	info.WriteString("ss " + k.label)
	return xof.KDF(ikm, info.Bytes(), KeySize)
}
