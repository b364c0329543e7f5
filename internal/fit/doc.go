// Package fit is a generic nonlinear least-squares driver.
//
// A fit is described by a model function value, the measured data and a
// [Config] holding the initial guess and box bounds; there is no fitter
// hierarchy. [Curve] minimizes the (optionally sigma-weighted) sum of
// squared residuals with a gradient-free Nelder-Mead search and estimates
// parameter uncertainties from the residual Jacobian at the optimum.
//
// Model functions are pure: concurrent fits over independent data sets are
// safe as long as each result slot has a single writer.
package fit
