// Package krotov implements an iterative optimal-control optimizer based on
// Krotov's method. Given trajectories whose time evolution depends on a
// shared set of control fields, [Optimize] refines the discretised fields so
// as to minimise a final-time functional J_T while penalising the squared
// pulse update.
//
// Each iteration propagates the co-states χ backward under the guess pulses,
// then walks the time grid forward, updating every pulse value from
// Im⟨χ|∂G/∂ε|ϕ⟩ immediately before the corresponding forward step. The two
// propagations are coupled through per-trajectory snapshot storage.
//
// # Example
//
//	sigmaX := qop.NewOperatorFrom(2, []complex128{0, 1, 1, 0})
//	eps := pulse.NewControl("eps", guess)
//	ham := qop.NewHamiltonian(drift, qop.Term{Op: sigmaX, Control: eps})
//	result, err := krotov.Optimize(ctx, krotov.Problem{
//		Trajectories: []krotov.Trajectory{{Initial: psi0, Generator: ham, Target: tgt}},
//		Tlist:        tlist,
//		Functional:   krotov.SquareModulus{},
//		PulseOptions: pulse.OptionsMap{eps: {LambdaA: 5, Shape: shape}},
//	})
//
// # Thread Safety
//
// A Problem and the Workspace behind one Optimize call are not safe for
// concurrent use. UseThreads parallelises across trajectories inside the
// call; results are identical to the sequential schedule because every
// cross-trajectory reduction sums per-trajectory slots in index order.
package krotov
