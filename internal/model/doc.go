// Package model provides the physical model functions the fitters fit
// measurement data against.
//
// Two models are defined:
//
//   - [OscNoDecay]: a non-decaying sinusoid for ground-state population
//     under static ZZ coupling
//   - [BlochTrajectory]: the Bloch vector of a driven qubit under a
//     cross-resonance tone, obtained from the matrix exponential of the
//     rotation generator
//
// Both match the fit.Func signature: given the time points and a parameter
// vector they return the predicted observables, in the same flattened
// layout the counts package produces.
package model
