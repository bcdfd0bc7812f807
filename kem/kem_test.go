// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package kem

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/ntruenc/ntru/ntru"
	"github.com/ntruenc/ntru/params"
)

func newSeed(t *testing.T) []byte {
	seed := make([]byte, SeedSize)
	_, err := rand.Read(seed)
	if err != nil {
		t.Fatal(err)
	}
	return seed
}

func TestRoundTrip(t *testing.T) {
	for _, kem := range All() {
		t.Run(kem.String(), func(t *testing.T) {
			seed := newSeed(t)

			pubkey, err := kem.GenerateKey(seed)
			if err != nil {
				t.Fatalf("GenerateKey: %v", err)
			}

			ciphertext, sharedKey1, err := kem.Encapsulate(pubkey)
			if err != nil {
				t.Fatalf("Encapsulate: %v", err)
			}
			if len(ciphertext) != kem.CiphertextSize() {
				t.Fatalf("ciphertext is %d bytes, want %d", len(ciphertext), kem.CiphertextSize())
			}
			if len(sharedKey1) != KeySize {
				t.Fatalf("shared key is %d bytes", len(sharedKey1))
			}

			sharedKey2, err := kem.Decapsulate(seed, ciphertext)
			if err != nil {
				t.Fatalf("Decapsulate: %v", err)
			}

			if !bytes.Equal(sharedKey1, sharedKey2) {
				t.Fatalf("Failed to derive same shared key")
			}
		})
	}
}

func TestDeterministicKeys(t *testing.T) {
	for _, kem := range All() {
		seed := newSeed(t)
		pk1, err := kem.GenerateKey(seed)
		if err != nil {
			t.Fatal(err)
		}
		pk2, err := kem.GenerateKey(seed)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(pk1, pk2) {
			t.Fatalf("%v: same seed produced different public keys", kem)
		}
	}
}

func TestOpen(t *testing.T) {
	for _, kem := range All() {
		k, err := Open(kem.String())
		if err != nil {
			t.Fatal(err)
		}
		if k != kem {
			t.Fatalf("Open(%q) returned %v", kem.String(), k)
		}
	}
	if _, err := Open("rsa"); err == nil {
		t.Fatal("opened unknown KEM")
	}
	k, err := NTRU(params.NTRU1024)
	if err != nil || k.String() != "ntru-cca-1024" {
		t.Fatalf("NTRU(1024) = %v, %v", k, err)
	}
}

func TestNTRUPrivateKeyDecapsulate(t *testing.T) {
	k := _kemNTRU443
	seed := newSeed(t)
	pubkey, err := k.GenerateKey(seed)
	if err != nil {
		t.Fatal(err)
	}
	sk, err := k.generate(seed)
	if err != nil {
		t.Fatal(err)
	}
	ciphertext, sharedKey1, err := k.Encapsulate(pubkey)
	if err != nil {
		t.Fatal(err)
	}
	sharedKey2, err := k.Decapsulate(sk.Bytes(), ciphertext)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sharedKey1, sharedKey2) {
		t.Fatalf("Failed to derive same shared key")
	}
}

func TestNTRUTamperedCiphertext(t *testing.T) {
	for _, kem := range []KEM{_kemNTRU743, _kemX25519NTRU743} {
		seed := newSeed(t)
		pubkey, err := kem.GenerateKey(seed)
		if err != nil {
			t.Fatal(err)
		}
		ciphertext, _, err := kem.Encapsulate(pubkey)
		if err != nil {
			t.Fatal(err)
		}
		ciphertext[len(ciphertext)-100] ^= 0x10
		_, err = kem.Decapsulate(seed, ciphertext)
		if !errors.Is(err, ntru.ErrDecryptionRejected) {
			t.Fatalf("%v: tampered ciphertext: %v", kem, err)
		}
	}
}

func TestNTRUWrongKeyType(t *testing.T) {
	seed := newSeed(t)
	pubkey, err := _kemNTRU443.GenerateKey(seed)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := _kemNTRU743.Encapsulate(pubkey); err == nil {
		t.Fatal("encapsulated to a key of another parameter set")
	}
}

func TestSntrup4591761LegacyDecapsulate(t *testing.T) {
	kem := _kemSNTRUP4591761

	seed := newSeed(t)
	pubkey, privkey, err := kem.generate(seed)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	ciphertext, sharedKey1, err := kem.Encapsulate(pubkey[:])
	if err != nil {
		t.Fatalf("Encapsulate: %v", err)
	}

	sharedKey2, err := kem.Decapsulate(privkey[:], ciphertext)
	if err != nil {
		t.Fatalf("Decapsulate: %v", err)
	}

	if !bytes.Equal(sharedKey1, sharedKey2) {
		t.Fatalf("Failed to derive same shared key")
	}
}
