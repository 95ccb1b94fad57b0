package prop

import (
	"fmt"

	"github.com/san-kum/krotov/pulse"
	"github.com/san-kum/krotov/qop"
)

const defaultSubsteps = 16

// RK4 integrates dψ/dt = −i·G(t_mid)·ψ across one interval with fixed
// Runge-Kutta substeps. Cheaper than the matrix exponential for larger
// systems; does not check control bounds.
type RK4 struct {
	gen      *qop.Hamiltonian
	tlist    []float64
	params   map[*pulse.Control][]float64
	substeps int

	psi            qop.Ket
	k1, k2, k3, k4 qop.Ket
	scratch        qop.Ket
	h              *qop.Operator
	cursor         int
	backward       bool
}

func NewRK4(gen *qop.Hamiltonian, tlist []float64, substeps int) *RK4 {
	dim := gen.Dim()
	return &RK4{
		gen:      gen,
		tlist:    tlist,
		substeps: substeps,
		psi:      qop.NewKet(dim),
		k1:       qop.NewKet(dim),
		k2:       qop.NewKet(dim),
		k3:       qop.NewKet(dim),
		k4:       qop.NewKet(dim),
		scratch:  qop.NewKet(dim),
		h:        qop.NewOperator(dim),
	}
}

func (r *RK4) ChecksRange() bool { return false }

func (r *RK4) Rebind(params map[*pulse.Control][]float64) {
	r.params = params
}

func (r *RK4) Reinit(psi qop.Ket, opts ReinitOptions) {
	r.psi.CopyFrom(psi)
	r.backward = opts.Backward
	if r.backward {
		r.cursor = len(r.tlist) - 2
	} else {
		r.cursor = 0
	}
}

func (r *RK4) State() qop.Ket { return r.psi }

// deriv computes dst = −i·H·src.
func (r *RK4) deriv(dst, src qop.Ket) {
	r.h.Apply(dst, src)
	dst.Scale(complex(0, -1))
}

func (r *RK4) Step() (qop.Ket, error) {
	n := r.cursor
	if n < 0 || n >= len(r.tlist)-1 {
		return nil, ErrExhausted
	}

	dt := r.tlist[n+1] - r.tlist[n]
	if r.backward {
		dt = -dt
	}
	tmid := 0.5 * (r.tlist[n] + r.tlist[n+1])

	var stepErr error
	vals := func(c *pulse.Control) float64 {
		p, ok := r.params[c]
		if !ok {
			stepErr = fmt.Errorf("%w: %q", ErrNotBound, c.Name)
			return 0
		}
		return p[n]
	}
	r.gen.Eval(r.h, tmid, vals)
	if stepErr != nil {
		return nil, stepErr
	}

	h := dt / float64(r.substeps)
	for s := 0; s < r.substeps; s++ {
		r.deriv(r.k1, r.psi)

		r.scratch.CopyFrom(r.psi)
		r.scratch.Axpy(complex(h*0.5, 0), r.k1)
		r.deriv(r.k2, r.scratch)

		r.scratch.CopyFrom(r.psi)
		r.scratch.Axpy(complex(h*0.5, 0), r.k2)
		r.deriv(r.k3, r.scratch)

		r.scratch.CopyFrom(r.psi)
		r.scratch.Axpy(complex(h, 0), r.k3)
		r.deriv(r.k4, r.scratch)

		h6 := h / 6.0
		r.psi.Axpy(complex(h6, 0), r.k1)
		r.psi.Axpy(complex(2*h6, 0), r.k2)
		r.psi.Axpy(complex(2*h6, 0), r.k3)
		r.psi.Axpy(complex(h6, 0), r.k4)
	}

	if r.backward {
		r.cursor--
	} else {
		r.cursor++
	}
	return r.psi, nil
}
