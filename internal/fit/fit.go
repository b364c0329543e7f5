package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Domain errors for curve fitting.
var (
	// ErrBadConfig indicates an inconsistent fit configuration.
	ErrBadConfig = errors.New("fit: invalid configuration")

	// ErrNoConverge indicates the minimizer failed to converge.
	ErrNoConverge = errors.New("fit: minimization did not converge")
)

// Func predicts observables at the given time points for a parameter
// vector. The returned slice must always have the same length for a given
// x; scalar models return len(x) values, vector models an exact multiple.
type Func func(x, p []float64) []float64

// Config holds the caller-supplied fit inputs: initial guess, box bounds
// and optional per-point standard errors used as weights.
type Config struct {
	P0    []float64
	Lower []float64
	Upper []float64
	Sigma []float64

	// MaxIter bounds the minimizer. Zero means DefaultMaxIter.
	MaxIter int
}

// Result is a completed fit: best parameters, their 1-sigma uncertainties
// and the residual sum of squares at the optimum.
type Result struct {
	Params []float64
	Stderr []float64
	RSS    float64
}

const DefaultMaxIter = 4000

// Curve fits ydata = model(xdata, p) by weighted least squares and returns
// the best-fit parameters with uncertainty estimates. Bounds are enforced
// by rejecting out-of-box parameter vectors during the search; P0 is
// clamped into the box. Minimizer failures are returned unchanged, wrapped
// in ErrNoConverge.
func Curve(model Func, xdata, ydata []float64, cfg Config) (*Result, error) {
	if err := validate(xdata, ydata, cfg); err != nil {
		return nil, err
	}

	k := len(cfg.P0)
	obj := func(p []float64) float64 {
		if !inBounds(p, cfg.Lower, cfg.Upper) {
			return math.Inf(1)
		}
		return rss(model, xdata, ydata, cfg.Sigma, p)
	}

	maxIter := cfg.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	settings := &optimize.Settings{
		MajorIterations: maxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-24,
			Iterations: 10 * k,
		},
	}

	p0 := clamp(cfg.P0, cfg.Lower, cfg.Upper)
	problem := optimize.Problem{Func: obj}

	res, err := optimize.Minimize(problem, p0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoConverge, err)
	}
	if err := res.Status.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoConverge, err)
	}

	out := &Result{
		Params: append([]float64(nil), res.X...),
		RSS:    res.F,
	}
	out.Stderr = paramStderr(model, xdata, ydata, cfg.Sigma, out.Params, out.RSS)
	return out, nil
}

func validate(xdata, ydata []float64, cfg Config) error {
	if len(xdata) == 0 || len(ydata) == 0 {
		return fmt.Errorf("%w: empty data", ErrBadConfig)
	}
	if len(ydata)%len(xdata) != 0 {
		return fmt.Errorf("%w: ydata length %d not a multiple of xdata length %d",
			ErrBadConfig, len(ydata), len(xdata))
	}
	k := len(cfg.P0)
	if k == 0 {
		return fmt.Errorf("%w: empty initial guess", ErrBadConfig)
	}
	if cfg.Lower != nil && len(cfg.Lower) != k {
		return fmt.Errorf("%w: lower bounds length %d, want %d", ErrBadConfig, len(cfg.Lower), k)
	}
	if cfg.Upper != nil && len(cfg.Upper) != k {
		return fmt.Errorf("%w: upper bounds length %d, want %d", ErrBadConfig, len(cfg.Upper), k)
	}
	if cfg.Sigma != nil && len(cfg.Sigma) != len(ydata) {
		return fmt.Errorf("%w: sigma length %d, want %d", ErrBadConfig, len(cfg.Sigma), len(ydata))
	}
	return nil
}

func rss(model Func, xdata, ydata, sigma, p []float64) float64 {
	pred := model(xdata, p)
	s := 0.0
	for i := range ydata {
		r := ydata[i] - pred[i]
		if sigma != nil {
			r /= sigma[i]
		}
		s += r * r
	}
	return s
}

func inBounds(p, lower, upper []float64) bool {
	for i := range p {
		if lower != nil && p[i] < lower[i] {
			return false
		}
		if upper != nil && p[i] > upper[i] {
			return false
		}
	}
	return true
}

func clamp(p, lower, upper []float64) []float64 {
	out := append([]float64(nil), p...)
	for i := range out {
		if lower != nil && out[i] < lower[i] {
			out[i] = lower[i]
		}
		if upper != nil && out[i] > upper[i] {
			out[i] = upper[i]
		}
	}
	return out
}
