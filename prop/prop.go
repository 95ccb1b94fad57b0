// Package prop provides piecewise time propagators. A propagator owns the
// current state and an implicit interval cursor; the optimiser rebinds its
// control parameters, reinitialises it at either end of the time grid, and
// asks for one step at a time.
package prop

import (
	"errors"
	"fmt"

	"github.com/san-kum/krotov/pulse"
	"github.com/san-kum/krotov/qop"
)

var (
	ErrUnknownMethod = errors.New("prop: unknown propagation method")
	ErrNotBound      = errors.New("prop: control has no bound pulse")
	ErrRange         = errors.New("prop: control value outside declared range")
	ErrExhausted     = errors.New("prop: stepped past the end of the time grid")
)

// ReinitOptions configures a Reinit call.
type ReinitOptions struct {
	// Backward starts the propagator at the final grid point, stepping
	// toward t₀.
	Backward bool

	// ControlRange returns the allowable interval for a control's bound
	// values. Steppers that check bounds reject values outside it. Nil
	// disables checking.
	ControlRange func(c *pulse.Control) (lo, hi float64)
}

// Propagator advances a state across one time interval per Step call.
type Propagator interface {
	// Rebind attaches pulse arrays (one value per interval) per control.
	Rebind(params map[*pulse.Control][]float64)

	// Reinit resets the cursor to the first (or, backward, last) interval
	// and copies psi as the new current state.
	Reinit(psi qop.Ket, opts ReinitOptions)

	// Step advances one interval and returns a borrow of the new state.
	Step() (qop.Ket, error)

	// State borrows the current state.
	State() qop.Ket

	// ChecksRange reports whether Step validates control values against
	// the declared range.
	ChecksRange() bool
}

// Resolve picks the first non-empty method name, falling back to "auto".
// Callers list their candidates in precedence order.
func Resolve(methods ...string) string {
	for _, m := range methods {
		if m != "" {
			return m
		}
	}
	return "auto"
}

// New constructs a propagator for the named method. "auto" selects the
// matrix-exponential stepper.
func New(method string, gen *qop.Hamiltonian, tlist []float64) (Propagator, error) {
	switch method {
	case "auto", "expm":
		return NewExpm(gen, tlist), nil
	case "rk4":
		return NewRK4(gen, tlist, defaultSubsteps), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}
