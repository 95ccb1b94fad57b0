// Package qop provides dense complex states and operators for quantum
// optimal control:
//
//   - [Ket]: complex state vector
//   - [Operator]: dense square complex matrix with BLAS-backed products
//   - [Hamiltonian]: generator H₀ + Σ εₗ(t)·Hₗ with per-term control bindings
//
// Linear algebra goes through gonum's cblas128 layer. Operators are small
// and dense; the matrix exponential uses scaling and squaring with a
// truncated Taylor series, which is accurate for the sub-unit-norm
// arguments produced by piecewise propagation.
package qop
