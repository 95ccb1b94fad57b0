// Package pulse handles the control side of an optimisation: control
// identity tokens, discretisation of continuous controls onto the midpoints
// of a time grid, optional parametrisations that keep a pulse inside hard
// bounds, and the per-control update options (λₐ, update shape).
package pulse
