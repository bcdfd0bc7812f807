// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package xof provides the SHA-3 derived functions used to bind and expand
// seeds: a KMAC256 key derivation function and a cSHAKE256 keystream.
package xof

import (
	"crypto/sha3"
	"io"

	"github.com/ntruenc/ntru/internal/kmac"
)

// KDF returns length bytes of KMAC256 output over data, keyed by key and
// domain separated by customization.  key must be at least 32 bytes.
func KDF(key, customization []byte, length int, data ...[]byte) []byte {
	out := make([]byte, length)
	h := kmac.New(key, length, customization)
	for _, d := range data {
		h.Write(d)
	}
	h.Sum(out[:0])
	return out
}

// CSPRNG returns an endless cSHAKE256 keystream seeded with key.  Reads never
// fail.
func CSPRNG(key, customization []byte) io.Reader {
	h := sha3.NewCSHAKE256(nil, customization)
	_, err := h.Write(key)
	if err != nil {
		panic(err)
	}
	return h
}
