package prop

import (
	"fmt"

	"github.com/san-kum/krotov/pulse"
	"github.com/san-kum/krotov/qop"
)

// Expm propagates ψ(tₙ₊₁) = exp(−i·G(t_mid)·Δtₙ)·ψ(tₙ), evaluating the
// generator once per interval at the midpoint. Backward propagation runs
// the same formula with a negative signed Δt on the generator it was
// constructed with (the optimiser hands it the adjoint generator).
type Expm struct {
	gen    *qop.Hamiltonian
	tlist  []float64
	params map[*pulse.Control][]float64

	psi      qop.Ket
	tmp      qop.Ket
	h        *qop.Operator
	cursor   int
	backward bool
	rng      func(c *pulse.Control) (lo, hi float64)
}

func NewExpm(gen *qop.Hamiltonian, tlist []float64) *Expm {
	dim := gen.Dim()
	return &Expm{
		gen:   gen,
		tlist: tlist,
		psi:   qop.NewKet(dim),
		tmp:   qop.NewKet(dim),
		h:     qop.NewOperator(dim),
	}
}

func (e *Expm) ChecksRange() bool { return true }

func (e *Expm) Rebind(params map[*pulse.Control][]float64) {
	e.params = params
}

func (e *Expm) Reinit(psi qop.Ket, opts ReinitOptions) {
	e.psi.CopyFrom(psi)
	e.backward = opts.Backward
	e.rng = opts.ControlRange
	if e.backward {
		e.cursor = len(e.tlist) - 2
	} else {
		e.cursor = 0
	}
}

func (e *Expm) State() qop.Ket { return e.psi }

func (e *Expm) Step() (qop.Ket, error) {
	n := e.cursor
	if n < 0 || n >= len(e.tlist)-1 {
		return nil, ErrExhausted
	}

	dt := e.tlist[n+1] - e.tlist[n]
	if e.backward {
		dt = -dt
	}
	tmid := 0.5 * (e.tlist[n] + e.tlist[n+1])

	var stepErr error
	vals := func(c *pulse.Control) float64 {
		p, ok := e.params[c]
		if !ok {
			stepErr = fmt.Errorf("%w: %q", ErrNotBound, c.Name)
			return 0
		}
		v := p[n]
		if e.rng != nil {
			if lo, hi := e.rng(c); v < lo || v > hi {
				stepErr = fmt.Errorf("%w: %q = %g not in [%g, %g] at interval %d",
					ErrRange, c.Name, v, lo, hi, n)
			}
		}
		return v
	}
	e.gen.Eval(e.h, tmid, vals)
	if stepErr != nil {
		return nil, stepErr
	}

	u := e.h.Expm(complex(0, -dt))
	u.Apply(e.tmp, e.psi)
	e.psi, e.tmp = e.tmp, e.psi

	if e.backward {
		e.cursor--
	} else {
		e.cursor++
	}
	return e.psi, nil
}
