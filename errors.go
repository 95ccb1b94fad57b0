package krotov

import "errors"

// Configuration errors abort an optimisation before iteration 0.
var (
	// ErrNoTrajectories indicates an empty trajectory list.
	ErrNoTrajectories = errors.New("krotov: at least one trajectory required")

	// ErrNoFunctional indicates that neither a Functional nor a JT/Chi
	// pair was supplied.
	ErrNoFunctional = errors.New("krotov: final-time functional required")

	// ErrNoChi indicates a directly supplied JT without its co-state
	// constructor.
	ErrNoChi = errors.New("krotov: chi constructor required alongside a bare JT")

	// ErrBadTlist indicates a time grid that is too short or not strictly
	// increasing.
	ErrBadTlist = errors.New("krotov: tlist must be strictly increasing with at least two points")

	// ErrBadContinuation indicates a ContinueFrom result whose pulses do
	// not match the problem's controls or time grid.
	ErrBadContinuation = errors.New("krotov: continued result does not match problem")
)
