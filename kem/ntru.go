// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package kem

import (
	"crypto/rand"
	"fmt"

	"github.com/ntruenc/ntru/internal/xof"
	"github.com/ntruenc/ntru/ntru"
	"github.com/ntruenc/ntru/params"
)

// kemNTRU encapsulates by encrypting a random 32 byte value with
// NTRUEncrypt.  The shared key is KMAC256 of that value over the public key
// prefix and the ciphertext.
type kemNTRU struct {
	p *params.Set
}

var (
	_kemNTRU443  = &kemNTRU{params.NTRU443}
	_kemNTRU743  = &kemNTRU{params.NTRU743}
	_kemNTRU1024 = &kemNTRU{params.NTRU1024}
)

// NTRU returns the KEM for an NTRUEncrypt parameter set.
func NTRU(p *params.Set) (KEM, error) {
	switch p {
	case params.NTRU443:
		return _kemNTRU443, nil
	case params.NTRU743:
		return _kemNTRU743, nil
	case params.NTRU1024:
		return _kemNTRU1024, nil
	default:
		return nil, fmt.Errorf("%w %v", params.ErrUnsupportedParameterSet, p)
	}
}

func (k *kemNTRU) String() string {
	return k.p.Name
}

func (k *kemNTRU) CiphertextSize() int {
	return k.p.CiphertextSize()
}

func (k *kemNTRU) GenerateKey(seed []byte) (pubkey []byte, err error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%s: invalid seed length %d", k, len(seed))
	}
	sk, err := k.generate(seed)
	if err != nil {
		return nil, err
	}
	defer sk.Wipe()
	return sk.Public().Bytes(), nil
}

func (k *kemNTRU) generate(seed []byte) (*ntru.PrivateKey, error) {
	csprng := xof.CSPRNG(seed, []byte("ss "+k.p.Name+" csprng"))
	return ntru.GenerateKey(csprng, k.p)
}

func (k *kemNTRU) Encapsulate(pubkey []byte) (ciphertext, sharedKey []byte, err error) {
	if len(pubkey) != k.p.PublicKeySize() || pubkey[0] != k.p.ID {
		return nil, nil, fmt.Errorf("%s: invalid pubkey", k)
	}
	pk, err := ntru.ParsePublicKey(pubkey)
	if err != nil {
		return nil, nil, err
	}

	secret := make([]byte, KeySize)
	defer clear(secret)
	if _, err := rand.Read(secret); err != nil {
		return nil, nil, err
	}
	ct, err := pk.Encrypt(rand.Reader, secret)
	if err != nil {
		return nil, nil, err
	}
	return ct, k.sharedKey(secret, pubkey, ct), nil
}

func (k *kemNTRU) Decapsulate(seed, ciphertext []byte) (sharedKey []byte, err error) {
	var sk *ntru.PrivateKey
	switch len(seed) {
	case SeedSize:
		sk, err = k.generate(seed)
	case k.p.PrivateKeySize():
		sk, err = ntru.ParsePrivateKey(seed)
	default:
		return nil, fmt.Errorf("%s: invalid seed length %d", k, len(seed))
	}
	if err != nil {
		return nil, err
	}
	defer sk.Wipe()
	if sk.Params() != k.p {
		return nil, fmt.Errorf("%s: private key is for %s", k, sk.Params())
	}
	if len(ciphertext) != k.p.CiphertextSize() {
		return nil, fmt.Errorf("%s: invalid ciphertext length %d", k, len(ciphertext))
	}

	secret, err := sk.Decrypt(ciphertext)
	if err != nil {
		return nil, err
	}
	defer clear(secret)
	if len(secret) != KeySize {
		return nil, ntru.ErrDecryptionRejected
	}
	return k.sharedKey(secret, sk.Public().Bytes(), ciphertext), nil
}

func (k *kemNTRU) sharedKey(secret, pubkey, ct []byte) []byte {
	return xof.KDF(secret, []byte("ss "+k.p.Name+" shared key"), KeySize,
		pubkey[:1+params.PublicKeyPrefixSize], ct)
}
