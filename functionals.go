package krotov

import "github.com/san-kum/krotov/qop"

// Functional bundles a final-time cost with the co-state constructor
// that seeds the backward propagation.
type Functional interface {
	// JT evaluates the cost from the forward end-states.
	JT(states []qop.Ket, trajectories []Trajectory) float64

	// Chi fills chis[k] with −∂J_T/∂⟨ϕ_k|.
	Chi(chis []qop.Ket, states []qop.Ket, trajectories []Trajectory)
}

// TauValues computes the per-trajectory overlaps τ_k = ⟨target_k|ϕ_k⟩.
// Entries for trajectories without a target are zero and the second
// return reports, per trajectory, whether a target was present.
func TauValues(states []qop.Ket, trajectories []Trajectory) ([]complex128, []bool) {
	taus := make([]complex128, len(trajectories))
	have := make([]bool, len(trajectories))
	for k, tr := range trajectories {
		if tr.Target == nil {
			continue
		}
		taus[k] = tr.Target.Dot(states[k])
		have[k] = true
	}
	return taus, have
}

// SquareModulus is J_T,ss = 1 − (1/N)·Σ_k |τ_k|². Phase-insensitive
// state transfer.
type SquareModulus struct{}

func (SquareModulus) JT(states []qop.Ket, trajectories []Trajectory) float64 {
	taus, _ := TauValues(states, trajectories)
	sum := 0.0
	for _, tau := range taus {
		re, im := real(tau), imag(tau)
		sum += re*re + im*im
	}
	return 1 - sum/float64(len(trajectories))
}

func (SquareModulus) Chi(chis []qop.Ket, states []qop.Ket, trajectories []Trajectory) {
	taus, have := TauValues(states, trajectories)
	n := float64(len(trajectories))
	for k, tr := range trajectories {
		chis[k].Zero()
		if !have[k] {
			continue
		}
		chis[k].Axpy(taus[k]/complex(n, 0), tr.Target)
	}
}

// Overlap is J_T,re = 1 − (1/N)·Σ_k Re τ_k. Sensitive to the global
// phase of the reached state.
type Overlap struct{}

func (Overlap) JT(states []qop.Ket, trajectories []Trajectory) float64 {
	taus, _ := TauValues(states, trajectories)
	sum := 0.0
	for _, tau := range taus {
		sum += real(tau)
	}
	return 1 - sum/float64(len(trajectories))
}

func (Overlap) Chi(chis []qop.Ket, states []qop.Ket, trajectories []Trajectory) {
	n := float64(len(trajectories))
	for k, tr := range trajectories {
		chis[k].Zero()
		if tr.Target == nil {
			continue
		}
		chis[k].Axpy(complex(1/(2*n), 0), tr.Target)
	}
}
