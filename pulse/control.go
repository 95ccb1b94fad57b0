package pulse

// Control identifies one scalar real-valued field of time. Controls are
// compared by pointer identity, never by value; the same *Control shared
// across several generators denotes the same physical field.
type Control struct {
	Name string

	// Guess is the continuous guess field, sampled at interval midpoints
	// when the optimisation starts. Ignored when Samples is set.
	Guess func(t float64) float64

	// Samples is an already-discretised guess, one value per interval
	// (or one per grid point, which is midpoint-averaged down).
	Samples []float64
}

func NewControl(name string, guess func(t float64) float64) *Control {
	return &Control{Name: name, Guess: guess}
}
