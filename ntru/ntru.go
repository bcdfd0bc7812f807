// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

/*
Package ntru implements NTRUEncrypt public key encryption with CCA2 security.

Keys and ciphertexts begin with the identifier byte of their parameter set.
A ciphertext encrypts the buffer b || len || m || 0... where b is 32 random
bytes.  The blinding polynomial r is expanded from a KMAC256 digest binding b
to the message and the public key, so decryption can recompute the ciphertext
from the recovered buffer and reject anything that does not match byte for
byte.

Decryption failures are reported as ErrDecryptionRejected regardless of
cause, and the comparison that decides it runs in constant time.
*/
package ntru

import (
	"io"

	"github.com/ntruenc/ntru/params"
)

// KeyPair generates a key pair for the parameter set id and returns the wire
// encodings of both halves.
func KeyPair(rand io.Reader, id byte) (pub, priv []byte, err error) {
	p, err := params.Lookup(id)
	if err != nil {
		return nil, nil, err
	}
	sk, err := GenerateKey(rand, p)
	if err != nil {
		return nil, nil, err
	}
	defer sk.Wipe()
	return sk.PublicKey.Bytes(), sk.Bytes(), nil
}

// Seal encrypts msg to the encoded public key pub.
func Seal(rand io.Reader, pub, msg []byte) ([]byte, error) {
	pk, err := ParsePublicKey(pub)
	if err != nil {
		return nil, err
	}
	return pk.Encrypt(rand, msg)
}

// Open decrypts ct with the encoded private key priv.
func Open(priv, ct []byte) ([]byte, error) {
	sk, err := ParsePrivateKey(priv)
	if err != nil {
		return nil, err
	}
	defer sk.Wipe()
	return sk.Decrypt(ct)
}
