package qop

import (
	"github.com/san-kum/krotov/pulse"
)

// Term is one control-dependent part of a generator. The coefficient
// multiplying Op is the control value itself unless Coupling is set, in
// which case the coefficient is Coupling(t, ε) and CouplingDeriv supplies
// its derivative with respect to ε.
type Term struct {
	Op            *Operator
	Control       *pulse.Control
	Coupling      func(t, eps float64) float64
	CouplingDeriv func(t, eps float64) float64
}

// Hamiltonian is the generator G(t) = Drift + Σₗ cₗ(t, εₗ)·Hₗ.
type Hamiltonian struct {
	Drift *Operator
	Terms []Term
}

func NewHamiltonian(drift *Operator, terms ...Term) *Hamiltonian {
	return &Hamiltonian{Drift: drift, Terms: terms}
}

func (h *Hamiltonian) Dim() int { return h.Drift.Dim() }

// Controls returns the controls the generator depends on, in term order,
// without duplicates.
func (h *Hamiltonian) Controls() []*pulse.Control {
	seen := make(map[*pulse.Control]bool, len(h.Terms))
	var out []*pulse.Control
	for _, term := range h.Terms {
		if term.Control == nil || seen[term.Control] {
			continue
		}
		seen[term.Control] = true
		out = append(out, term.Control)
	}
	return out
}

// DerivKind tags the cases of a control derivative ∂G/∂εₗ.
type DerivKind int

const (
	// DerivNone marks a control the generator does not depend on.
	DerivNone DerivKind = iota
	// DerivConst marks a constant operator derivative.
	DerivConst
	// DerivTimeDependent marks a derivative whose scalar prefactor depends
	// on time and on the current control value.
	DerivTimeDependent
)

// ControlDeriv is ∂G/∂εₗ as a tagged variant. For DerivConst the derivative
// is Op itself; for DerivTimeDependent it is Coeff(t, ε)·Op.
type ControlDeriv struct {
	Kind  DerivKind
	Op    *Operator
	Coeff func(t, eps float64) float64
}

// ControlDeriv extracts ∂G/∂ε for one control.
func (h *Hamiltonian) ControlDeriv(c *pulse.Control) ControlDeriv {
	for _, term := range h.Terms {
		if term.Control != c {
			continue
		}
		if term.Coupling == nil {
			return ControlDeriv{Kind: DerivConst, Op: term.Op}
		}
		return ControlDeriv{Kind: DerivTimeDependent, Op: term.Op, Coeff: term.CouplingDeriv}
	}
	return ControlDeriv{Kind: DerivNone}
}

// Eval assembles G(t) into dst for the control values provided by vals.
func (h *Hamiltonian) Eval(dst *Operator, t float64, vals func(c *pulse.Control) float64) {
	dst.CopyFrom(h.Drift)
	for _, term := range h.Terms {
		eps := vals(term.Control)
		coeff := eps
		if term.Coupling != nil {
			coeff = term.Coupling(t, eps)
		}
		dst.AddScaled(complex(coeff, 0), term.Op)
	}
}

// Adjoint returns the generator whose drift and term operators are the
// adjoints of h's. Coupling coefficients are real and carry over unchanged.
func (h *Hamiltonian) Adjoint() *Hamiltonian {
	adj := &Hamiltonian{Drift: h.Drift.Adjoint(), Terms: make([]Term, len(h.Terms))}
	for i, term := range h.Terms {
		adj.Terms[i] = Term{
			Op:            term.Op.Adjoint(),
			Control:       term.Control,
			Coupling:      term.Coupling,
			CouplingDeriv: term.CouplingDeriv,
		}
	}
	return adj
}
