package krotov

import (
	"fmt"
	"math"

	"github.com/san-kum/krotov/prop"
	"github.com/san-kum/krotov/pulse"
	"github.com/san-kum/krotov/qop"
	"github.com/san-kum/krotov/storage"
)

// Workspace owns everything one Optimize call mutates: the alternating
// pulse buffers, the per-trajectory storages and propagators, the
// per-control option vectors, and the scratch states. Hooks receive it
// read-mostly; mutating anything other than the pulse buffers voids
// the iteration invariants.
type Workspace struct {
	Trajectories []Trajectory
	Adjoints     []Trajectory
	Tlist        []float64

	// Controls assigns every control a stable index; all per-control
	// vectors below are indexed identically.
	Controls []*pulse.Control

	// Derivs[k][l] is ∂G_k/∂ε_l.
	Derivs [][]qop.ControlDeriv

	LambdaA []float64
	Shapes  [][]float64 // midpoint-sampled S_l, length NT
	Params  []pulse.Parametrization
	IsParam []bool

	// GaInt accumulates the running cost Σₙ αₙ·|Δuₙ′|²·Δtₙ per control,
	// zeroed at the start of every iteration.
	GaInt []float64

	FwProp []prop.Propagator
	BwProp []prop.Propagator

	// FwStorage holds ϕ(tₙ) per trajectory, BwStorage holds χ(tₙ).
	FwStorage []*storage.Storage
	BwStorage []*storage.Storage

	pulses     [2][][]float64
	read       int
	useThreads bool

	chis    []qop.Ket
	states  []qop.Ket
	opPhi   []qop.Ket
	contrib [][]float64
}

func newWorkspace(p *Problem) (*Workspace, error) {
	trajectories := append([]Trajectory(nil), p.Trajectories...)
	w := &Workspace{
		Trajectories: trajectories,
		Tlist:        p.Tlist,
		useThreads:   p.UseThreads,
	}

	w.Adjoints = make([]Trajectory, len(trajectories))
	for k, tr := range trajectories {
		w.Adjoints[k] = tr.Adjoint()
	}

	seen := make(map[*pulse.Control]bool)
	for _, tr := range trajectories {
		for _, c := range tr.Generator.Controls() {
			if !seen[c] {
				seen[c] = true
				w.Controls = append(w.Controls, c)
			}
		}
	}

	w.Derivs = make([][]qop.ControlDeriv, len(trajectories))
	for k, tr := range trajectories {
		w.Derivs[k] = make([]qop.ControlDeriv, len(w.Controls))
		for l, c := range w.Controls {
			w.Derivs[k][l] = tr.Generator.ControlDeriv(c)
		}
	}

	if err := w.applyOptions(p); err != nil {
		return nil, err
	}
	if err := w.initPulses(p); err != nil {
		return nil, err
	}

	nt := w.NT()
	w.FwStorage = make([]*storage.Storage, len(trajectories))
	w.BwStorage = make([]*storage.Storage, len(trajectories))
	w.FwProp = make([]prop.Propagator, len(trajectories))
	w.BwProp = make([]prop.Propagator, len(trajectories))
	for k, tr := range trajectories {
		dim := tr.Generator.Dim()
		w.FwStorage[k] = storage.New(nt+1, dim)
		w.BwStorage[k] = storage.New(nt+1, dim)

		fwMethod := prop.Resolve(p.FwPropMethod, p.PropMethod, tr.FwPropMethod, tr.PropMethod)
		bwMethod := prop.Resolve(p.BwPropMethod, p.PropMethod, tr.BwPropMethod, tr.PropMethod)

		var err error
		if w.FwProp[k], err = prop.New(fwMethod, tr.Generator, w.Tlist); err != nil {
			return nil, fmt.Errorf("krotov: trajectory %d forward: %w", k, err)
		}
		if w.BwProp[k], err = prop.New(bwMethod, w.Adjoints[k].Generator, w.Tlist); err != nil {
			return nil, fmt.Errorf("krotov: trajectory %d backward: %w", k, err)
		}
	}

	w.GaInt = make([]float64, len(w.Controls))
	w.chis = make([]qop.Ket, len(trajectories))
	w.states = make([]qop.Ket, len(trajectories))
	w.opPhi = make([]qop.Ket, len(trajectories))
	w.contrib = make([][]float64, len(trajectories))
	for k, tr := range trajectories {
		dim := tr.Generator.Dim()
		w.chis[k] = qop.NewKet(dim)
		w.states[k] = qop.NewKet(dim)
		w.opPhi[k] = qop.NewKet(dim)
		w.contrib[k] = make([]float64, len(w.Controls))
	}
	return w, nil
}

func (w *Workspace) applyOptions(p *Problem) error {
	l := len(w.Controls)
	w.LambdaA = make([]float64, l)
	w.Shapes = make([][]float64, l)
	w.Params = make([]pulse.Parametrization, l)
	w.IsParam = make([]bool, l)

	opts := p.PulseOptions
	if opts != nil {
		if err := opts.Validate(w.Controls); err != nil {
			return err
		}
	}

	mids := pulse.Midpoints(w.Tlist)
	for i, c := range w.Controls {
		o := pulse.DefaultOptions()
		if opts != nil {
			o = opts[c]
		}
		w.LambdaA[i] = o.LambdaA
		w.Shapes[i] = make([]float64, len(mids))
		for n, t := range mids {
			if o.Shape != nil {
				w.Shapes[i][n] = o.Shape(t)
			} else {
				w.Shapes[i][n] = 1
			}
		}
		if o.Parametrization != nil {
			w.Params[i] = o.Parametrization
			_, identity := o.Parametrization.(pulse.Identity)
			w.IsParam[i] = !identity
		} else {
			w.Params[i] = pulse.Identity{}
		}
	}
	return nil
}

func (w *Workspace) initPulses(p *Problem) error {
	nt := w.NT()
	if prev := p.ContinueFrom; prev != nil {
		if len(prev.OptimizedControls) != len(w.Controls) {
			return fmt.Errorf("%w: %d controls, prior result has %d",
				ErrBadContinuation, len(w.Controls), len(prev.OptimizedControls))
		}
		if len(prev.Tlist) != len(w.Tlist) {
			return fmt.Errorf("%w: %d time grid points, prior result has %d",
				ErrBadContinuation, len(w.Tlist), len(prev.Tlist))
		}
		for l, pl := range prev.OptimizedControls {
			if len(pl) != nt {
				return fmt.Errorf("%w: control %d pulse length %d, want %d",
					ErrBadContinuation, l, len(pl), nt)
			}
			w.pulses[0] = append(w.pulses[0], append([]float64(nil), pl...))
			w.pulses[1] = append(w.pulses[1], append([]float64(nil), pl...))
		}
		return nil
	}

	for _, c := range w.Controls {
		pl, err := pulse.Discretize(c, w.Tlist)
		if err != nil {
			return err
		}
		w.pulses[0] = append(w.pulses[0], pl)
		w.pulses[1] = append(w.pulses[1], append([]float64(nil), pl...))
	}
	return nil
}

// NT is the number of time intervals (pulse values per control).
func (w *Workspace) NT() int { return len(w.Tlist) - 1 }

// ControlIndex resolves a control to its workspace index, or -1.
func (w *Workspace) ControlIndex(c *pulse.Control) int {
	for i, wc := range w.Controls {
		if wc == c {
			return i
		}
	}
	return -1
}

// GuessPulses is the read buffer of the current iteration.
func (w *Workspace) GuessPulses() [][]float64 { return w.pulses[w.read] }

// UpdatedPulses is the write buffer of the current iteration.
func (w *Workspace) UpdatedPulses() [][]float64 { return w.pulses[1-w.read] }

// swap flips the read and write buffers after a completed iteration.
func (w *Workspace) swap() { w.read = 1 - w.read }

// bindings builds the control-to-pulse mapping a propagator consumes.
func (w *Workspace) bindings(pulses [][]float64) map[*pulse.Control][]float64 {
	m := make(map[*pulse.Control][]float64, len(w.Controls))
	for i, c := range w.Controls {
		m[c] = pulses[i]
	}
	return m
}

// rangeFn snapshots per-control bounds from the given pulses, widened
// by a factor of 2 for steppers that check values and 5 for those
// that do not.
func (w *Workspace) rangeFn(pulses [][]float64, checks bool) func(c *pulse.Control) (float64, float64) {
	factor := 5.0
	if checks {
		factor = 2.0
	}
	los := make([]float64, len(w.Controls))
	his := make([]float64, len(w.Controls))
	for i, pl := range pulses {
		lo, hi := pl[0], pl[0]
		for _, v := range pl[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		los[i] = math.Min(lo, factor*lo)
		his[i] = math.Max(hi, factor*hi)
	}
	return func(c *pulse.Control) (float64, float64) {
		i := w.ControlIndex(c)
		if i < 0 {
			return math.Inf(-1), math.Inf(1)
		}
		return los[i], his[i]
	}
}
