// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package params holds the fixed NTRUEncrypt parameter sets.
//
// Each set is identified by a single byte which prefixes every public key,
// private key and ciphertext produced under it.  The table is immutable and
// may be read concurrently without synchronization.
package params

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrUnsupportedParameterSet is returned when an identifier or name does not
// match any configured parameter set.
var ErrUnsupportedParameterSet = errors.New("ntru: unsupported parameter set")

// Family describes the algebraic structure a parameter set computes over.
type Family int

// Ring families
const (
	// PowerOfTwo sets use Z_q[x]/(x^N-1) with q a power of two, multiplied
	// by Karatsuba convolution over a padded length.
	PowerOfTwo Family = iota + 1

	// Prime sets use Z_q[x]/(x^N+1) with q an NTT-friendly prime.
	Prime
)

func (f Family) String() string {
	switch f {
	case PowerOfTwo:
		return "power-of-two"
	case Prime:
		return "prime"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Identifiers of the supported parameter sets.
const (
	IDNTRU443  byte = 0x01
	IDNTRU743  byte = 0x02
	IDNTRU1024 byte = 0x03
)

const (
	// SeedPrefixSize is the length of the random prefix b carried in every
	// encoded message.
	SeedPrefixSize = 32

	// PublicKeyPrefixSize is the number of leading packed public key bytes
	// bound into the blinding seed.
	PublicKeyPrefixSize = 32
)

// Weight is the number of +1 and -1 coefficients of a trinary polynomial.
type Weight struct {
	Plus  int
	Minus int
}

// Total returns the number of nonzero coefficients.
func (w Weight) Total() int {
	return w.Plus + w.Minus
}

// Set describes one NTRUEncrypt parameter set.
type Set struct {
	ID     byte
	Name   string
	Family Family

	// N is the ring degree and PadN the padded length used by the
	// convolution of the power-of-two family (PadN == N otherwise).
	N    int
	PadN int

	// Q is the working modulus and P the small message modulus.
	Q uint32
	P uint32

	// Weights of the private polynomial f, of g, and of the blinding
	// polynomial r.
	F Weight
	G Weight
	R Weight

	// MaxMsgLen is the plaintext capacity in bytes.
	MaxMsgLen int

	// Dm0 is the least number of coefficients the masked message must
	// hold of every residue mod P.
	Dm0 int
}

var (
	// NTRU443 is the power-of-two set with N=443.
	NTRU443 = &Set{
		ID:        IDNTRU443,
		Name:      "ntru-cca-443",
		Family:    PowerOfTwo,
		N:         443,
		PadN:      448,
		Q:         2048,
		P:         3,
		F:         Weight{Plus: 116, Minus: 115},
		G:         Weight{Plus: 115, Minus: 115},
		R:         Weight{Plus: 115, Minus: 115},
		MaxMsgLen: 49,
		Dm0:       115,
	}

	// NTRU743 is the power-of-two set with N=743.
	NTRU743 = &Set{
		ID:        IDNTRU743,
		Name:      "ntru-cca-743",
		Family:    PowerOfTwo,
		N:         743,
		PadN:      752,
		Q:         2048,
		P:         3,
		F:         Weight{Plus: 248, Minus: 247},
		G:         Weight{Plus: 247, Minus: 247},
		R:         Weight{Plus: 247, Minus: 247},
		MaxMsgLen: 106,
		Dm0:       204,
	}

	// NTRU1024 is the prime set with N=1024 and q = 2^30+2^13+1.
	NTRU1024 = &Set{
		ID:        IDNTRU1024,
		Name:      "ntru-cca-1024",
		Family:    Prime,
		N:         1024,
		PadN:      1024,
		Q:         1073750017,
		P:         2,
		F:         Weight{Plus: 257, Minus: 256},
		G:         Weight{Plus: 256, Minus: 256},
		R:         Weight{Plus: 256, Minus: 256},
		MaxMsgLen: 95,
		Dm0:       448,
	}
)

var all = []*Set{NTRU443, NTRU743, NTRU1024}

// Lookup returns the parameter set for an identifier byte.
func Lookup(id byte) (*Set, error) {
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w %#02x", ErrUnsupportedParameterSet, id)
}

// ByName returns the parameter set with the given name.
func ByName(name string) (*Set, error) {
	for _, p := range all {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupportedParameterSet, name)
}

// All returns every supported parameter set in identifier order.
func All() []*Set {
	return append([]*Set(nil), all...)
}

func (p *Set) String() string {
	return p.Name
}

// CoeffBits is the number of bits a packed mod-q coefficient occupies.
func (p *Set) CoeffBits() int {
	return bits.Len32(p.Q - 1)
}

// PackedPolySize is the byte length of a bit-packed mod-q polynomial.
func (p *Set) PackedPolySize() int {
	return (p.N*p.CoeffBits() + 7) / 8
}

// PackedTrinarySize is the byte length of a trinary polynomial packed five
// coefficients per byte.
func (p *Set) PackedTrinarySize() int {
	return (p.N + 4) / 5
}

// PublicKeySize is the wire length of a public key.
func (p *Set) PublicKeySize() int {
	return 1 + p.PackedPolySize()
}

// PrivateKeySize is the wire length of a private key.
func (p *Set) PrivateKeySize() int {
	return 1 + p.PackedTrinarySize() + p.PackedPolySize()
}

// CiphertextSize is the wire length of a ciphertext.
func (p *Set) CiphertextSize() int {
	return 1 + p.PackedPolySize()
}

// MessageBufferSize is the byte length of the encoded message
// b || len || m || padding carried by one ciphertext.
func (p *Set) MessageBufferSize() int {
	if p.P == 2 {
		return p.N / 8
	}
	// Two trits carry three bits.
	return (p.N / 2) * 3 / 8
}
