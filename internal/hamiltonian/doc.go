// Package hamiltonian characterizes qubit-qubit interactions from
// calibration sweeps.
//
// Two fitters are provided, both composed from the counts reductions and
// the fit driver rather than inheriting shared machinery:
//
//   - [ZZFitter]: static ZZ coupling from ground-state population
//     oscillations, one sweep per spectator state
//   - [CRFitter]: the effective cross-resonance Hamiltonian from Bloch
//     vector tomography, one sweep per control state
//
// Each sweep is recorded twice, once with the control (or spectator) qubit
// in |0> and once in |1>; symmetric and antisymmetric combinations of the
// two fits separate identity-type from Z-type interaction terms.
//
// Fitter instances are not safe for concurrent use. Per-qubit fits inside
// one Fit call run in parallel; each result slot has a single writer.
package hamiltonian
