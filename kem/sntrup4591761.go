// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package kem

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/companyzero/sntrup4591761"

	"github.com/ntruenc/ntru/internal/xof"
)

// kemSNTRUP4591761 is the Streamlined NTRU Prime KEM.  It remains available
// to decrypt streams and keyfiles written before NTRUEncrypt keys existed.
type kemSNTRUP4591761 struct{}

var _kemSNTRUP4591761 = new(kemSNTRUP4591761)

// SNTRUP4591761 returns the legacy sntrup4591761 KEM.
func SNTRUP4591761() KEM {
	return _kemSNTRUP4591761
}

func (kemSNTRUP4591761) String() string {
	return "sntrup4591761"
}

func (kemSNTRUP4591761) CiphertextSize() int {
	return sntrup4591761.CiphertextSize
}

func (k kemSNTRUP4591761) GenerateKey(seed []byte) (pubkey []byte, err error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%s: invalid seed length %d", k, len(seed))
	}
	pub, _, err := k.generate(seed)
	if err != nil {
		return nil, err
	}
	return pub[:], nil
}

func (kemSNTRUP4591761) generate(seed []byte) (*[sntrup4591761.PublicKeySize]byte, *[sntrup4591761.PrivateKeySize]byte, error) {
	return sntrup4591761.GenerateKey(xof.CSPRNG(seed, []byte("ss sntrup4591761 csprng")))
}

func (k kemSNTRUP4591761) Encapsulate(pubkey []byte) (ciphertext, sharedKey []byte, err error) {
	if len(pubkey) != sntrup4591761.PublicKeySize {
		return nil, nil, fmt.Errorf("%s: invalid pubkey length %d", k, len(pubkey))
	}
	ct, key, err := sntrup4591761.Encapsulate(rand.Reader, (*[sntrup4591761.PublicKeySize]byte)(pubkey))
	if err != nil {
		return nil, nil, err
	}
	return ct[:], key[:], nil
}

// Decapsulate also accepts a serialized private key in place of the seed,
// as stored by old keyfiles.
func (k kemSNTRUP4591761) Decapsulate(seed, ciphertext []byte) (sharedKey []byte, err error) {
	var priv *[sntrup4591761.PrivateKeySize]byte
	switch len(seed) {
	case SeedSize:
		_, priv, err = k.generate(seed)
		if err != nil {
			return nil, err
		}
	case sntrup4591761.PrivateKeySize:
		priv = (*[sntrup4591761.PrivateKeySize]byte)(seed)
	default:
		return nil, fmt.Errorf("%s: invalid privkey length %d", k, len(seed))
	}
	if len(ciphertext) != sntrup4591761.CiphertextSize {
		return nil, fmt.Errorf("%s: invalid ciphertext length %d", k, len(ciphertext))
	}

	key, ok := sntrup4591761.Decapsulate((*[sntrup4591761.CiphertextSize]byte)(ciphertext), priv)
	if ok != 1 {
		return nil, errors.New("sntrup4591761: decapsulate failure")
	}
	return key[:], nil
}
