package pulse

import (
	"errors"
	"fmt"
)

var ErrBadLambda = errors.New("pulse: lambda_a must be positive")

// Options configures how one control is updated.
type Options struct {
	// LambdaA is the inverse step size; larger values give smaller updates.
	LambdaA float64

	// Shape is the update shape S(t), evaluated at interval midpoints.
	// Nil means S ≡ 1.
	Shape func(t float64) float64

	// Parametrization, when non-nil, applies updates in the transformed
	// coordinate. Nil means the identity.
	Parametrization Parametrization
}

// OptionsMap assigns options per control.
type OptionsMap map[*Control]Options

// DefaultOptions is used for every control when no map is supplied.
func DefaultOptions() Options {
	return Options{LambdaA: 1}
}

// Validate checks that every control has an entry with a positive λₐ.
func (m OptionsMap) Validate(controls []*Control) error {
	for _, c := range controls {
		opt, ok := m[c]
		if !ok {
			return fmt.Errorf("pulse: no options for control %q", c.Name)
		}
		if opt.LambdaA <= 0 {
			return fmt.Errorf("%w: control %q has lambda_a %g", ErrBadLambda, c.Name, opt.LambdaA)
		}
	}
	return nil
}
