package pulse

import "math"

// Parametrization maps a control amplitude ε to an unconstrained update
// variable u and back. Updates computed in u-space keep ε inside whatever
// region the bijection covers.
type Parametrization interface {
	UOfEps(eps float64) float64
	EpsOfU(u float64) float64
	// DEpsDU is the derivative dε/du evaluated at u.
	DEpsDU(u float64) float64
}

// Identity is the trivial parametrisation: updates are additive in ε.
type Identity struct{}

func (Identity) UOfEps(eps float64) float64 { return eps }
func (Identity) EpsOfU(u float64) float64   { return u }
func (Identity) DEpsDU(u float64) float64   { return 1 }

// TanhBound confines ε to the open interval (Min, Max) via
// ε = c + w·tanh(u) with c the interval centre and w its half-width.
type TanhBound struct {
	Min, Max float64
}

func (p TanhBound) centre() float64 { return 0.5 * (p.Max + p.Min) }
func (p TanhBound) width() float64  { return 0.5 * (p.Max - p.Min) }

func (p TanhBound) UOfEps(eps float64) float64 {
	return math.Atanh((eps - p.centre()) / p.width())
}

func (p TanhBound) EpsOfU(u float64) float64 {
	eps := p.centre() + p.width()*math.Tanh(u)
	// tanh rounds to ±1 for large |u|; keep the result strictly inside.
	if eps >= p.Max {
		return math.Nextafter(p.Max, p.Min)
	}
	if eps <= p.Min {
		return math.Nextafter(p.Min, p.Max)
	}
	return eps
}

func (p TanhBound) DEpsDU(u float64) float64 {
	c := math.Cosh(u)
	return p.width() / (c * c)
}
