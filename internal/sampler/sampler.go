// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package sampler draws fixed-weight trinary polynomials and uniform small
// masks from an entropy stream.
//
// The stream is either crypto/rand.Reader or a deterministic cSHAKE256
// keystream, in which case sampling is a pure function of the seed.
package sampler

import (
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/ntruenc/ntru/internal/ring"
)

// ErrEntropyExhausted is returned when the draw budget is used up before the
// requested weight is placed.  Only a degenerate entropy source reaches it.
var ErrEntropyExhausted = errors.New("sampler: entropy source exhausted")

const bufSize = 168 // one cSHAKE256 rate block

// reader hands out entropy in small pieces from a buffered block.
type reader struct {
	src io.Reader
	buf [bufSize]byte
	off int
}

func newReader(src io.Reader) *reader {
	return &reader{src: src, off: bufSize}
}

func (r *reader) next(n int) ([]byte, error) {
	if r.off+n > bufSize {
		if _, err := io.ReadFull(r.src, r.buf[:]); err != nil {
			return nil, fmt.Errorf("sampler: read entropy: %w", err)
		}
		r.off = 0
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) wipe() {
	clear(r.buf[:])
}

// Trinary overwrites out with exactly plus coefficients equal to 1 and minus
// coefficients equal to q-1, at positions chosen uniformly without
// replacement.  Indices are drawn as ceil(log2 N)-bit values; draws outside
// [0, N) and positions already taken are rejected.
func Trinary(out ring.Poly, plus, minus int, q uint32, src io.Reader) error {
	n := len(out)
	if plus < 0 || minus < 0 || plus+minus > n {
		return fmt.Errorf("sampler: weight %d+%d exceeds degree %d", plus, minus, n)
	}
	out.Zero()
	idxBits := bits.Len(uint(n - 1))
	mask := uint16(1)<<idxBits - 1
	budget := 16 * n

	r := newReader(src)
	defer r.wipe()
	for placed := 0; placed < plus+minus; {
		if budget == 0 {
			out.Zero()
			return ErrEntropyExhausted
		}
		budget--
		b, err := r.next(2)
		if err != nil {
			out.Zero()
			return err
		}
		i := int((uint16(b[0]) | uint16(b[1])<<8) & mask)
		if i >= n || out[i] != 0 {
			continue
		}
		if placed < plus {
			out[i] = 1
		} else {
			out[i] = q - 1
		}
		placed++
	}
	return nil
}

// Uniform overwrites out with coefficients uniform in [0, p) for p of 2 or 3.
// For p=3 each byte below 243 yields five base-3 digits and larger bytes are
// rejected; for p=2 each byte yields eight bits.
func Uniform(out ring.Poly, p uint32, src io.Reader) error {
	err := uniform(out, p, src)
	if err != nil {
		out.Zero()
	}
	return err
}

func uniform(out ring.Poly, p uint32, src io.Reader) error {
	r := newReader(src)
	defer r.wipe()
	switch p {
	case 2:
		for i := 0; i < len(out); i += 8 {
			b, err := r.next(1)
			if err != nil {
				return err
			}
			for j := 0; j < 8 && i+j < len(out); j++ {
				out[i+j] = uint32(b[0]>>j) & 1
			}
		}
	case 3:
		budget := 16 * len(out)
		for i := 0; i < len(out); {
			if budget == 0 {
				return ErrEntropyExhausted
			}
			budget--
			b, err := r.next(1)
			if err != nil {
				return err
			}
			v := uint32(b[0])
			if v >= 243 {
				continue
			}
			for j := 0; j < 5 && i < len(out); j++ {
				out[i] = v % 3
				v /= 3
				i++
			}
		}
	default:
		return fmt.Errorf("sampler: unsupported modulus %d", p)
	}
	return nil
}
