package krotov

import (
	"context"
	"errors"
	"io"
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/krotov/pulse"
	"github.com/san-kum/krotov/qop"
	"github.com/san-kum/krotov/shapes"
)

func grid(t0, t1 float64, points int) []float64 {
	tlist := make([]float64, points)
	dt := (t1 - t0) / float64(points-1)
	for i := range tlist {
		tlist[i] = t0 + float64(i)*dt
	}
	return tlist
}

// tlsProblem is the driven two-level system: drift −0.5σz, control σx,
// flat-top guess pulse, |0> to |1> transfer.
func tlsProblem(points, iterStop int) (Problem, *pulse.Control) {
	const tStop, rise = 5.0, 0.3

	drift := qop.NewOperatorFrom(2, []complex128{
		complex(-0.5, 0), 0,
		0, complex(0.5, 0),
	})
	sigmaX := qop.NewOperatorFrom(2, []complex128{0, 1, 1, 0})

	eps := pulse.NewControl("eps", func(t float64) float64 {
		return 0.2 * shapes.FlatTop(t, 0, tStop, rise)
	})
	ham := qop.NewHamiltonian(drift, qop.Term{Op: sigmaX, Control: eps})

	return Problem{
		Trajectories: []Trajectory{{
			Initial:   qop.BasisKet(2, 0),
			Generator: ham,
			Target:    qop.BasisKet(2, 1),
		}},
		Tlist:      grid(0, tStop, points),
		Functional: SquareModulus{},
		PulseOptions: pulse.OptionsMap{eps: {
			LambdaA: 5,
			Shape:   func(t float64) float64 { return shapes.FlatTop(t, 0, tStop, rise) },
		}},
		IterStop: iterStop,
		Out:      io.Discard,
	}, eps
}

func TestConfigurationErrors(t *testing.T) {
	base, eps := tlsProblem(50, 2)

	t.Run("no trajectories", func(t *testing.T) {
		p := base
		p.Trajectories = nil
		if _, err := Optimize(context.Background(), p); !errors.Is(err, ErrNoTrajectories) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("short tlist", func(t *testing.T) {
		p := base
		p.Tlist = []float64{0}
		if _, err := Optimize(context.Background(), p); !errors.Is(err, ErrBadTlist) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("non-increasing tlist", func(t *testing.T) {
		p := base
		p.Tlist = []float64{0, 1, 1, 2}
		if _, err := Optimize(context.Background(), p); !errors.Is(err, ErrBadTlist) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("no functional", func(t *testing.T) {
		p := base
		p.Functional = nil
		if _, err := Optimize(context.Background(), p); !errors.Is(err, ErrNoFunctional) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("JT without chi", func(t *testing.T) {
		p := base
		p.Functional = nil
		p.JT = SquareModulus{}.JT
		if _, err := Optimize(context.Background(), p); !errors.Is(err, ErrNoChi) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("missing pulse options entry", func(t *testing.T) {
		p := base
		other := pulse.NewControl("other", nil)
		p.PulseOptions = pulse.OptionsMap{other: {LambdaA: 1}}
		if _, err := Optimize(context.Background(), p); err == nil {
			t.Error("expected error for missing entry")
		}
	})

	t.Run("bad lambda", func(t *testing.T) {
		p := base
		p.PulseOptions = pulse.OptionsMap{eps: {LambdaA: 0}}
		if _, err := Optimize(context.Background(), p); !errors.Is(err, pulse.ErrBadLambda) {
			t.Errorf("got %v", err)
		}
	})
}

func TestStateTransfer(t *testing.T) {
	p, _ := tlsProblem(500, 50)
	p.CheckConvergence = func(r *Result) {
		if r.JT < 1e-3 {
			r.Converged = true
			r.Message = "J_T below threshold"
		}
	}

	result, err := Optimize(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	if !result.Converged {
		t.Fatalf("did not converge in %d iterations, J_T = %g", result.Iter, result.JT)
	}
	if result.Message != "J_T below threshold" {
		t.Errorf("message: %q", result.Message)
	}
	if result.Iter > 50 {
		t.Errorf("iter %d exceeds iter_stop", result.Iter)
	}

	tau := result.TauValues[0]
	fidelity := real(tau)*real(tau) + imag(tau)*imag(tau)
	if fidelity < 0.99 {
		t.Errorf("fidelity %g below 0.99", fidelity)
	}

	nt := len(p.Tlist) - 1
	for l, pl := range result.OptimizedControls {
		if len(pl) != nt {
			t.Errorf("control %d: pulse length %d, want %d", l, len(pl), nt)
		}
	}
	if len(result.States) != 1 || len(result.States[0]) != 2 {
		t.Fatalf("states malformed: %v", result.States)
	}
	if math.Abs(result.States[0].Norm()-1) > 1e-10 {
		t.Errorf("end state norm %g", result.States[0].Norm())
	}
	if result.EndLocalTime.Before(result.StartLocalTime) {
		t.Error("timestamps out of order")
	}
}

func TestNoOpControl(t *testing.T) {
	const tStop = 5.0
	drift := qop.NewOperatorFrom(2, []complex128{
		complex(-0.5, 0), 0,
		0, complex(0.5, 0),
	})
	eps := pulse.NewControl("eps", func(t float64) float64 { return 0.3 })
	// The control couples through the zero operator, so the update
	// direction vanishes identically.
	ham := qop.NewHamiltonian(drift, qop.Term{Op: qop.NewOperator(2), Control: eps})

	var gaSums []float64
	p := Problem{
		Trajectories: []Trajectory{{
			Initial:   qop.BasisKet(2, 0),
			Generator: ham,
			Target:    qop.BasisKet(2, 1),
		}},
		Tlist:        grid(0, tStop, 100),
		Functional:   SquareModulus{},
		PulseOptions: pulse.OptionsMap{eps: {LambdaA: 5}},
		IterStop:     3,
		InfoHook: func(wrk *Workspace, iter int, updated, guess [][]float64) any {
			sum := 0.0
			for _, g := range wrk.GaInt {
				sum += g
			}
			gaSums = append(gaSums, sum)
			return nil
		},
		Out: io.Discard,
	}

	result, err := Optimize(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	for n, v := range result.OptimizedControls[0] {
		if v != 0.3 {
			t.Fatalf("pulse moved at interval %d: %g", n, v)
		}
	}
	for i, g := range gaSums {
		if g != 0 {
			t.Errorf("g_a_int at report %d: %g", i, g)
		}
	}
}

func TestMaxIterTermination(t *testing.T) {
	p, _ := tlsProblem(50, 2)
	result, err := Optimize(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Converged {
		t.Error("reaching iter_stop must set converged")
	}
	if result.Message != "Reached maximum number of iterations" {
		t.Errorf("message: %q", result.Message)
	}
	if result.Iter != 2 {
		t.Errorf("iter: got %d, want 2", result.Iter)
	}
}

func TestHookRecords(t *testing.T) {
	p, _ := tlsProblem(50, 4)
	type record struct {
		iter int
		jt   float64
	}
	p.InfoHook = func(wrk *Workspace, iter int, updated, guess [][]float64) any {
		return record{iter: iter, jt: 0}
	}

	result, err := Optimize(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	want := result.IterStop - result.IterStart + 1
	if len(result.Records) != want {
		t.Fatalf("records: got %d, want %d", len(result.Records), want)
	}
	for i, rec := range result.Records {
		if rec.(record).iter != result.IterStart+i {
			t.Errorf("record %d has iter %d", i, rec.(record).iter)
		}
	}
}

func TestBookkeeping(t *testing.T) {
	p, _ := tlsProblem(50, 5)

	var iters []int
	var jts, jtPrevs []float64
	p.InfoHook = func(wrk *Workspace, iter int, updated, guess [][]float64) any {
		iters = append(iters, iter)
		return nil
	}
	p.CheckConvergence = func(r *Result) {
		jts = append(jts, r.JT)
		jtPrevs = append(jtPrevs, r.JTPrev)
		if r.Secs < 0 {
			t.Errorf("negative secs: %g", r.Secs)
		}
	}

	if _, err := Optimize(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(iters); i++ {
		if iters[i] < iters[i-1] {
			t.Fatalf("iteration order broken: %v", iters)
		}
	}
	for i := 1; i < len(jts); i++ {
		if jtPrevs[i] != jts[i-1] {
			t.Errorf("JTPrev at %d: got %g, want %g", i, jtPrevs[i], jts[i-1])
		}
	}
}

func TestContinuation(t *testing.T) {
	fresh, _ := tlsProblem(200, 6)
	full, err := Optimize(context.Background(), fresh)
	if err != nil {
		t.Fatal(err)
	}

	first, _ := tlsProblem(200, 3)
	partial, err := Optimize(context.Background(), first)
	if err != nil {
		t.Fatal(err)
	}

	second, _ := tlsProblem(200, 6)
	second.ContinueFrom = partial
	resumed, err := Optimize(context.Background(), second)
	if err != nil {
		t.Fatal(err)
	}

	if resumed.IterStart != 3 || resumed.Iter != 6 {
		t.Fatalf("continuation counters: start %d iter %d", resumed.IterStart, resumed.Iter)
	}

	for n := range full.OptimizedControls[0] {
		a := full.OptimizedControls[0][n]
		b := resumed.OptimizedControls[0][n]
		if math.Abs(a-b) > 1e-9 {
			t.Fatalf("pulse differs at %d: %g vs %g", n, a, b)
		}
	}
}

func TestBadContinuation(t *testing.T) {
	first, _ := tlsProblem(100, 1)
	partial, err := Optimize(context.Background(), first)
	if err != nil {
		t.Fatal(err)
	}

	second, _ := tlsProblem(120, 2)
	second.ContinueFrom = partial
	if _, err := Optimize(context.Background(), second); !errors.Is(err, ErrBadContinuation) {
		t.Fatalf("got %v", err)
	}
}

func TestBoundedParametrization(t *testing.T) {
	const bound = 0.5
	p, eps := tlsProblem(200, 20)
	opts := p.PulseOptions[eps]
	opts.Parametrization = pulse.TanhBound{Min: -bound, Max: bound}
	p.PulseOptions[eps] = opts

	result, err := Optimize(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	for n, v := range result.OptimizedControls[0] {
		if math.Abs(v) >= bound {
			t.Fatalf("pulse escapes bound at %d: %g", n, v)
		}
	}
}

func TestThreadsMatchSequential(t *testing.T) {
	build := func(threads bool) *Result {
		const tStop, rise = 5.0, 0.3
		drift := qop.NewOperatorFrom(2, []complex128{
			complex(-0.5, 0), 0,
			0, complex(0.5, 0),
		})
		sigmaX := qop.NewOperatorFrom(2, []complex128{0, 1, 1, 0})
		eps := pulse.NewControl("eps", func(t float64) float64 {
			return 0.2 * shapes.FlatTop(t, 0, tStop, rise)
		})
		ham := qop.NewHamiltonian(drift, qop.Term{Op: sigmaX, Control: eps})

		p := Problem{
			Trajectories: []Trajectory{
				{Initial: qop.BasisKet(2, 0), Generator: ham, Target: qop.BasisKet(2, 1)},
				{Initial: qop.BasisKet(2, 1), Generator: ham, Target: qop.BasisKet(2, 0)},
			},
			Tlist:        grid(0, tStop, 100),
			Functional:   SquareModulus{},
			PulseOptions: pulse.OptionsMap{eps: {LambdaA: 5}},
			IterStop:     4,
			UseThreads:   threads,
			Out:          io.Discard,
		}
		r, err := Optimize(context.Background(), p)
		if err != nil {
			t.Fatal(err)
		}
		return r
	}

	seq := build(false)
	par := build(true)

	for n := range seq.OptimizedControls[0] {
		if seq.OptimizedControls[0][n] != par.OptimizedControls[0][n] {
			t.Fatalf("pulses diverge at %d: %g vs %g",
				n, seq.OptimizedControls[0][n], par.OptimizedControls[0][n])
		}
	}
}

func TestSkipInitialForwardPropagation(t *testing.T) {
	p, _ := tlsProblem(50, 1)
	p.SkipInitialForwardPropagation = true

	result, err := Optimize(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	// Zeroed propagator states give tau = 0 and J_T = 1 at iteration 0;
	// the first real iteration then propagates normally.
	if result.Iter != 1 {
		t.Errorf("iter: got %d", result.Iter)
	}
	if cmplx.Abs(result.TauValues[0]) == 0 {
		t.Error("after one iteration the end state should overlap the target")
	}
}

func TestContextCancellation(t *testing.T) {
	p, _ := tlsProblem(100, 50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Optimize(ctx, p); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
}

func TestUpdateHookCanMutate(t *testing.T) {
	p, _ := tlsProblem(50, 1)
	p.UpdateHook = func(wrk *Workspace, iter int, updated, guess [][]float64) {
		for n := range updated[0] {
			updated[0][n] = 0
		}
	}

	result, err := Optimize(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	for n, v := range result.OptimizedControls[0] {
		if v != 0 {
			t.Fatalf("update hook mutation not visible at %d: %g", n, v)
		}
	}
}
