package krotov

import (
	"math"
	"time"

	"github.com/san-kum/krotov/qop"
)

// Result accumulates the state of one optimisation and carries
// everything needed to restart it via Problem.ContinueFrom.
type Result struct {
	Tlist []float64

	IterStart int
	IterStop  int

	// Iter is the index of the last completed iteration. It equals
	// IterStart until the first Krotov update finishes.
	Iter int

	// Secs is the wall-clock duration of the last iteration.
	Secs float64

	// TauValues holds ⟨target_k|ϕ_k(T)⟩ per trajectory; zero where a
	// trajectory has no target.
	TauValues []complex128

	JT     float64
	JTPrev float64

	// GuessControls snapshots the pulses at iteration start;
	// OptimizedControls is replaced after every completed iteration.
	GuessControls     [][]float64
	OptimizedControls [][]float64

	// States are the forward end-states after the last completed
	// forward sweep (deep copies, one per trajectory).
	States []qop.Ket

	StartLocalTime time.Time
	EndLocalTime   time.Time

	// Records collects whatever the info hook returns.
	Records []any

	Converged bool
	Message   string
}

func newResult(p *Problem, guess [][]float64) *Result {
	r := &Result{
		Tlist:          append([]float64(nil), p.Tlist...),
		IterStart:      p.IterStart,
		IterStop:       p.IterStop,
		Iter:           p.IterStart,
		JT:             math.NaN(),
		JTPrev:         math.NaN(),
		StartLocalTime: time.Now(),
	}
	r.GuessControls = clonePulses(guess)
	r.OptimizedControls = clonePulses(guess)
	return r
}

// continueResult adopts a prior result: its optimised controls become
// the new guess, accumulated records are kept, and the iteration
// counters restart from where the prior run stopped.
func continueResult(p *Problem, prev *Result) *Result {
	r := newResult(p, prev.OptimizedControls)
	r.IterStart = prev.Iter
	r.Iter = prev.Iter
	r.JT = prev.JT
	r.JTPrev = prev.JTPrev
	r.TauValues = append([]complex128(nil), prev.TauValues...)
	r.Records = append([]any(nil), prev.Records...)
	return r
}

func clonePulses(pulses [][]float64) [][]float64 {
	out := make([][]float64, len(pulses))
	for l, p := range pulses {
		out[l] = append([]float64(nil), p...)
	}
	return out
}
