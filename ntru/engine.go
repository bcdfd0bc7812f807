// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package ntru

import (
	"fmt"
	"sync"

	"github.com/ntruenc/ntru/internal/ring"
	"github.com/ntruenc/ntru/params"
)

// engine bundles a parameter set with its rings.  Engines are immutable.
type engine struct {
	p     *params.Set
	ring  ring.Ring
	small *ring.Small
}

func newEngine(p *params.Set, r ring.Ring) *engine {
	return &engine{
		p:     p,
		ring:  r,
		small: ring.NewSmall(p.N, p.P, p.Family == params.Prime),
	}
}

var (
	enginesOnce sync.Once
	engines     map[byte]*engine
	enginesErr  error
)

func engineFor(p *params.Set) (*engine, error) {
	enginesOnce.Do(func() {
		engines = make(map[byte]*engine)
		for _, p := range params.All() {
			r, err := ring.New(p)
			if err != nil {
				enginesErr = err
				return
			}
			engines[p.ID] = newEngine(p, r)
		}
	})
	if enginesErr != nil {
		return nil, enginesErr
	}
	e, ok := engines[p.ID]
	if !ok || e.p != p {
		return nil, fmt.Errorf("%w %#02x", params.ErrUnsupportedParameterSet, p.ID)
	}
	return e, nil
}

// product writes a*b to out, where a is in coefficient form and b is in
// transform form.  tmp receives the transform of a.
func (e *engine) product(out, tmp, a, b ring.Poly) {
	e.ring.Forward(tmp, a)
	e.ring.MulForward(out, tmp, b)
	e.ring.Backward(out, out)
}
