package krotov

import (
	"fmt"
	"io"

	"github.com/san-kum/krotov/pulse"
	"github.com/san-kum/krotov/qop"
)

// Trajectory couples an initial state to the generator of its time
// evolution. Target is optional; the bundled functionals count a
// trajectory without a target as having zero overlap.
type Trajectory struct {
	Initial   qop.Ket
	Generator *qop.Hamiltonian
	Target    qop.Ket

	// Per-trajectory propagation method overrides. Empty strings defer
	// to the Problem-level settings.
	PropMethod   string
	FwPropMethod string
	BwPropMethod string
}

// Adjoint returns a copy of the trajectory whose generator is the
// Hermitian conjugate of the original. Backward propagation of the
// co-states runs under this generator.
func (tr Trajectory) Adjoint() Trajectory {
	out := tr
	out.Generator = tr.Generator.Adjoint()
	return out
}

// JTFunc evaluates the final-time functional from the forward
// end-states. The trajectory slice is the caller's original list, so
// targets are available.
type JTFunc func(states []qop.Ket, trajectories []Trajectory) float64

// ChiFunc fills chis[k] with −∂J_T/∂⟨ϕ_k| evaluated at the given
// forward end-states. Each chis[k] is preallocated to the trajectory's
// dimension.
type ChiFunc func(chis []qop.Ket, states []qop.Ket, trajectories []Trajectory)

// UpdateHook runs after the iteration engine and before the info hook.
// It may mutate the freshly written pulses in place.
type UpdateHook func(wrk *Workspace, iter int, updated, guess [][]float64)

// InfoHook observes one completed iteration and may return a record to
// append to Result.Records. A nil return appends nothing.
type InfoHook func(wrk *Workspace, iter int, updated, guess [][]float64) any

// Problem describes one optimisation. Trajectories, Tlist and a
// functional (either Functional, or JT together with Chi) are
// required; everything else has defaults.
type Problem struct {
	Trajectories []Trajectory

	// Tlist is the strictly increasing time grid t₀…t_{NT}. Pulses are
	// defined on the NT midpoints.
	Tlist []float64

	// Functional bundles J_T with its co-state constructor. Supplying
	// JT and Chi directly overrides it.
	Functional Functional
	JT         JTFunc
	Chi        ChiFunc

	// PulseOptions must carry an entry for every control reachable from
	// the trajectories' generators. Nil selects defaults (λ_a = 1,
	// S ≡ 1, identity parametrisation) with a warning on Out.
	PulseOptions pulse.OptionsMap

	IterStart int
	IterStop  int // default 5000

	// Propagation method precedence: BwPropMethod/FwPropMethod, then
	// PropMethod, then the trajectory's own settings, then "auto".
	PropMethod   string
	FwPropMethod string
	BwPropMethod string

	UpdateHook UpdateHook
	InfoHook   InfoHook

	// CheckConvergence inspects the result after each iteration and
	// may set Converged and Message.
	CheckConvergence func(r *Result)

	Verbose bool

	// SkipInitialForwardPropagation computes iteration-0 bookkeeping
	// from whatever states the forward propagators already hold.
	SkipInitialForwardPropagation bool

	// ContinueFrom adopts a prior result: its optimised controls
	// become the new guess and its records are carried over.
	ContinueFrom *Result

	// UseThreads parallelises the per-trajectory fork-join regions.
	UseThreads bool

	// Out receives progress output. Nil means os.Stdout.
	Out io.Writer
}

// functions resolves the functional configuration into a (JT, Chi)
// pair, preferring directly supplied hooks over the bundled
// Functional.
func (p *Problem) functions() (JTFunc, ChiFunc, error) {
	if p.JT != nil {
		if p.Chi == nil {
			return nil, nil, ErrNoChi
		}
		return p.JT, p.Chi, nil
	}
	if p.Functional == nil {
		return nil, nil, ErrNoFunctional
	}
	return p.Functional.JT, p.Functional.Chi, nil
}

func (p *Problem) validate() error {
	if len(p.Trajectories) == 0 {
		return ErrNoTrajectories
	}
	if len(p.Tlist) < 2 {
		return ErrBadTlist
	}
	for n := 1; n < len(p.Tlist); n++ {
		if p.Tlist[n] <= p.Tlist[n-1] {
			return fmt.Errorf("%w: t[%d] = %g, t[%d] = %g",
				ErrBadTlist, n-1, p.Tlist[n-1], n, p.Tlist[n])
		}
	}
	for k, tr := range p.Trajectories {
		if tr.Generator == nil {
			return fmt.Errorf("krotov: trajectory %d has no generator", k)
		}
		if len(tr.Initial) != tr.Generator.Dim() {
			return fmt.Errorf("krotov: trajectory %d: initial state dim %d does not match generator dim %d",
				k, len(tr.Initial), tr.Generator.Dim())
		}
	}
	return nil
}
