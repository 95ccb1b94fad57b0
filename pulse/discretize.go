package pulse

import (
	"errors"
	"fmt"
)

var ErrLengthMismatch = errors.New("pulse: sample length does not match time grid")

// Midpoints returns the interval midpoints of a time grid, one per interval.
func Midpoints(tlist []float64) []float64 {
	mids := make([]float64, len(tlist)-1)
	for n := range mids {
		mids[n] = 0.5 * (tlist[n] + tlist[n+1])
	}
	return mids
}

// Sampled evaluates a continuous control at the interval midpoints of tlist.
func Sampled(f func(t float64) float64, tlist []float64) []float64 {
	vals := make([]float64, len(tlist)-1)
	for n := 0; n < len(tlist)-1; n++ {
		vals[n] = f(0.5 * (tlist[n] + tlist[n+1]))
	}
	return vals
}

// FromSlice copies an already-discretised sequence onto nt intervals. A
// sequence of nt+1 values (one per grid point) is averaged down to interval
// midpoints; any other length is an error.
func FromSlice(vals []float64, nt int) ([]float64, error) {
	switch len(vals) {
	case nt:
		out := make([]float64, nt)
		copy(out, vals)
		return out, nil
	case nt + 1:
		out := make([]float64, nt)
		for n := 0; n < nt; n++ {
			out[n] = 0.5 * (vals[n] + vals[n+1])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: got %d values for %d intervals", ErrLengthMismatch, len(vals), nt)
	}
}

// Discretize materialises a control's guess on the time grid. A control
// with neither Guess nor Samples yields the zero pulse.
func Discretize(c *Control, tlist []float64) ([]float64, error) {
	nt := len(tlist) - 1
	if c.Samples != nil {
		return FromSlice(c.Samples, nt)
	}
	if c.Guess != nil {
		return Sampled(c.Guess, tlist), nil
	}
	return make([]float64, nt), nil
}
