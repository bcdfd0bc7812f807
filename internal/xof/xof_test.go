// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package xof

import (
	"bytes"
	"io"
	"testing"
)

func TestKDFSeparation(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	a := KDF(key, []byte("a"), 32, []byte("data"))
	b := KDF(key, []byte("b"), 32, []byte("data"))
	c := KDF(key, []byte("a"), 32, []byte("dat"), []byte("a"))
	if bytes.Equal(a, b) {
		t.Fatal("customization does not separate outputs")
	}
	if !bytes.Equal(a, c) {
		t.Fatal("split data writes changed the output")
	}
	if !bytes.Equal(a, KDF(key, []byte("a"), 32, []byte("data"))) {
		t.Fatal("KDF is not deterministic")
	}
}

func TestCSPRNG(t *testing.T) {
	key := []byte("seed")
	r1 := CSPRNG(key, []byte("x"))
	r2 := CSPRNG(key, []byte("x"))
	b1 := make([]byte, 1000)
	b2 := make([]byte, 1000)
	if _, err := io.ReadFull(r1, b1); err != nil {
		t.Fatal(err)
	}
	// Split reads yield the same stream.
	if _, err := io.ReadFull(r2, b2[:3]); err != nil {
		t.Fatal(err)
	}
	if _, err := io.ReadFull(r2, b2[3:]); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1, b2) {
		t.Fatal("keystreams differ")
	}
	b3 := make([]byte, 1000)
	io.ReadFull(CSPRNG(key, []byte("y")), b3)
	if bytes.Equal(b1, b3) {
		t.Fatal("customization does not separate keystreams")
	}
}
