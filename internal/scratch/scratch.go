// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package scratch provides working memory for secret intermediate values.
//
// An Arena carves one allocation into fixed-size polynomial slots addressed
// by index and hands out byte buffers on request.  Release zeroes everything
// the arena ever handed out; callers defer it immediately after New so the
// wipe happens on every return path.
package scratch

import (
	"fmt"

	"github.com/ntruenc/ntru/internal/ring"
)

// Arena is not safe for concurrent use.
type Arena struct {
	backing []uint32
	polys   []ring.Poly
	bufs    [][]byte
}

// New returns an arena with slots polynomials of n coefficients each.
func New(n, slots int) *Arena {
	a := &Arena{
		backing: make([]uint32, n*slots),
		polys:   make([]ring.Poly, slots),
	}
	for i := range a.polys {
		a.polys[i] = ring.Poly(a.backing[i*n : (i+1)*n : (i+1)*n])
	}
	return a
}

// Poly returns slot i.  It panics if i is out of range.
func (a *Arena) Poly(i int) ring.Poly {
	if i < 0 || i >= len(a.polys) {
		panic(fmt.Sprintf("scratch: slot %d out of range [0, %d)", i, len(a.polys)))
	}
	return a.polys[i]
}

// Bytes returns a zeroed buffer of length n that is wiped on Release.
func (a *Arena) Bytes(n int) []byte {
	b := make([]byte, n)
	a.bufs = append(a.bufs, b)
	return b
}

// Release zeroes every slot and buffer.  The arena must not be used again.
func (a *Arena) Release() {
	clear(a.backing)
	for _, b := range a.bufs {
		clear(b)
	}
	a.bufs = nil
	a.polys = nil
}
