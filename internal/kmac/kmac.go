// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kmac implements KMAC256 from NIST SP 800-185 on top of the
// standard library cSHAKE256.
package kmac

import (
	"crypto/sha3"
	"encoding/binary"
	"hash"
	"math/bits"
)

const (
	// minKeySize is the 256-bit security strength.
	minKeySize = 32

	// SP 800-185 forbids tags under 32 bits; 64 is the floor used here.
	minTagSize = 8
)

type kmac256 struct {
	*sha3.SHAKE
	tagSize int

	// encodedKey is bytepad(encode_string(K), rate), replayed on Reset.
	encodedKey []byte
}

// New returns a KMAC256 hash keyed by key, producing tagSize bytes of output
// and domain separated by customization.  It panics if key is shorter than 32
// bytes or tagSize is below 8.
func New(key []byte, tagSize int, customization []byte) hash.Hash {
	if len(key) < minKeySize {
		panic("kmac: key shorter than security strength")
	}
	if tagSize < minTagSize {
		panic("kmac: tag size too small")
	}
	c := sha3.NewCSHAKE256([]byte("KMAC"), customization)
	k := &kmac256{SHAKE: c, tagSize: tagSize}
	enc := append(leftEncode(uint64(len(key))*8), key...)
	k.encodedKey = bytepad(enc, c.BlockSize())
	k.SHAKE.Write(k.encodedKey)
	return k
}

func (k *kmac256) Reset() {
	k.SHAKE.Reset()
	k.SHAKE.Write(k.encodedKey)
}

func (k *kmac256) Size() int { return k.tagSize }

// Sum appends the tag to b without changing the running state.
func (k *kmac256) Sum(b []byte) []byte {
	dup := *k.SHAKE
	dup.Write(rightEncode(uint64(k.tagSize) * 8))
	tag := make([]byte, k.tagSize)
	dup.Read(tag)
	return append(b, tag...)
}

func bytepad(data []byte, rate int) []byte {
	out := append(leftEncode(uint64(rate)), data...)
	if r := len(out) % rate; r != 0 {
		out = append(out, make([]byte, rate-r)...)
	}
	return out
}

// leftEncode prefixes the minimal big-endian encoding of x with its length.
func leftEncode(x uint64) []byte {
	n := max((bits.Len64(x)+7)/8, 1)
	var b [9]byte
	binary.BigEndian.PutUint64(b[1:], x)
	out := b[8-n:]
	out[0] = byte(n)
	return out
}

// rightEncode suffixes the minimal big-endian encoding of x with its length.
func rightEncode(x uint64) []byte {
	n := max((bits.Len64(x)+7)/8, 1)
	var b [9]byte
	binary.BigEndian.PutUint64(b[:8], x<<(64-8*uint(n)))
	b[n] = byte(n)
	return b[:n+1]
}
