package krotov

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/krotov/prop"
)

const maxIterMessage = "Reached maximum number of iterations"

// Optimize runs Krotov's method on the given problem until the
// convergence check fires or IterStop is reached. Configuration errors
// abort before iteration 0; propagation errors abort mid-run and
// invalidate the partial result. The context is checked once per
// iteration boundary.
func Optimize(ctx context.Context, p Problem) (*Result, error) {
	if p.IterStop == 0 {
		p.IterStop = 5000
	}
	if p.Out == nil {
		p.Out = os.Stdout
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	jt, chi, err := p.functions()
	if err != nil {
		return nil, err
	}

	wrk, err := newWorkspace(&p)
	if err != nil {
		return nil, err
	}
	if p.PulseOptions == nil && len(wrk.Controls) > 0 {
		fmt.Fprintln(p.Out, "krotov: no pulse options supplied, using lambda_a = 1 and a flat update shape")
	}

	var result *Result
	if p.ContinueFrom != nil {
		result = continueResult(&p, p.ContinueFrom)
	} else {
		result = newResult(&p, wrk.GuessPulses())
	}

	if p.Verbose {
		fmt.Fprintf(p.Out, "krotov: optimising %d trajectories, %d controls, %d time intervals\n",
			len(wrk.Trajectories), len(wrk.Controls), wrk.NT())
	}

	rp := newReporter(p.Out, result)
	info := p.InfoHook
	if info == nil {
		info = rp.hook
	}

	if p.SkipInitialForwardPropagation {
		if p.Verbose {
			fmt.Fprintln(p.Out, "krotov: skipping initial forward propagation")
		}
		for k := range wrk.states {
			wrk.states[k].CopyFrom(wrk.FwProp[k].State())
		}
	} else {
		if err := initialPropagation(wrk); err != nil {
			return nil, err
		}
	}

	result.JT = jt(wrk.states, p.Trajectories)
	taus, _ := TauValues(wrk.states, p.Trajectories)
	result.TauValues = taus

	if rec := info(wrk, result.IterStart, wrk.UpdatedPulses(), wrk.GuessPulses()); rec != nil {
		result.Records = append(result.Records, rec)
	}

	for i := result.IterStart + 1; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		if err := wrk.iterate(chi); err != nil {
			return nil, err
		}
		result.Secs = time.Since(start).Seconds()

		result.Iter = i
		result.JTPrev = result.JT
		result.JT = jt(wrk.states, p.Trajectories)
		taus, _ := TauValues(wrk.states, p.Trajectories)
		result.TauValues = taus

		if p.UpdateHook != nil {
			p.UpdateHook(wrk, i, wrk.UpdatedPulses(), wrk.GuessPulses())
		}
		result.OptimizedControls = clonePulses(wrk.UpdatedPulses())

		if rec := info(wrk, i, wrk.UpdatedPulses(), wrk.GuessPulses()); rec != nil {
			result.Records = append(result.Records, rec)
		}
		if p.CheckConvergence != nil {
			p.CheckConvergence(result)
		}

		wrk.swap()

		if result.Converged {
			break
		}
		if i >= p.IterStop {
			result.Converged = true
			result.Message = maxIterMessage
			break
		}
	}

	result.States = nil
	for k := range wrk.states {
		result.States = append(result.States, wrk.states[k].Clone())
	}
	result.EndLocalTime = time.Now()
	return result, nil
}

// initialPropagation fills each trajectory's forward storage under the
// guess pulses and records the end-states for the iteration-0 J_T.
func initialPropagation(w *Workspace) error {
	bind := w.bindings(w.GuessPulses())
	rngChecked := w.rangeFn(w.GuessPulses(), true)
	rngUnchecked := w.rangeFn(w.GuessPulses(), false)
	nt := w.NT()

	return forkJoin(len(w.Trajectories), w.useThreads, func(k int) error {
		fp := w.FwProp[k]
		fp.Rebind(bind)
		cr := rngUnchecked
		if fp.ChecksRange() {
			cr = rngChecked
		}
		fp.Reinit(w.Trajectories[k].Initial, prop.ReinitOptions{ControlRange: cr})
		w.FwStorage[k].Write(1, fp.State())
		for n := 1; n <= nt; n++ {
			psi, err := fp.Step()
			if err != nil {
				return err
			}
			w.FwStorage[k].Write(n+1, psi)
		}
		w.states[k].CopyFrom(fp.State())
		return nil
	})
}
