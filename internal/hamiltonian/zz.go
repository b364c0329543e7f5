package hamiltonian

import (
	"context"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/qfit/internal/counts"
	"github.com/san-kum/qfit/internal/fit"
	"github.com/san-kum/qfit/internal/model"
)

// ZZConfig holds the construction-time inputs of a static ZZ fit.
type ZZConfig struct {
	// Times are the free-evolution durations, one per circuit.
	Times []float64

	// Qubits are the measured qubit indices to analyze.
	Qubits []int

	// Spectators are the neighbor qubits flipped between the two series,
	// aligned with Qubits. Bookkeeping only; they are not measured.
	Spectators []int

	// Guess is the initial (amplitude, frequency, phase, offset) guess.
	Guess []float64

	// Lower and Upper are optional box bounds on the parameters.
	Lower []float64
	Upper []float64

	// ExpectedState is the measured qubit's nominal state, '0' or '1'.
	// Defaults to '0'.
	ExpectedState byte

	// TimeUnit labels the time axis in reports. Defaults to
	// "micro-seconds".
	TimeUnit string

	// MaxIter bounds each per-qubit minimization. Zero means the fit
	// driver default.
	MaxIter int
}

// ZZFitter estimates the static ZZ rate between a qubit and a spectator
// from the oscillation of the qubit's ground-state population, swept over
// evolution time with the spectator prepared in |0> and |1>.
type ZZFitter struct {
	cfg      ZZConfig
	circuits []string

	mean   map[string][][]float64 // series -> qubit slot -> population per time point
	sd     map[string][][]float64
	params map[string][][]float64
	stderr map[string][][]float64
}

// NewZZ validates the configuration and returns a fitter with no results.
func NewZZ(cfg ZZConfig) (*ZZFitter, error) {
	if len(cfg.Times) == 0 {
		return nil, fmt.Errorf("%w: no time points", ErrBadConfig)
	}
	if len(cfg.Qubits) == 0 {
		return nil, fmt.Errorf("%w: no qubits", ErrBadConfig)
	}
	if len(cfg.Spectators) != len(cfg.Qubits) {
		return nil, fmt.Errorf("%w: %d spectators for %d qubits",
			ErrBadConfig, len(cfg.Spectators), len(cfg.Qubits))
	}
	if len(cfg.Guess) != model.OscNumParams {
		return nil, fmt.Errorf("%w: guess has %d parameters, want %d",
			ErrBadConfig, len(cfg.Guess), model.OscNumParams)
	}
	if cfg.ExpectedState == 0 {
		cfg.ExpectedState = '0'
	}
	if cfg.ExpectedState != '0' && cfg.ExpectedState != '1' {
		return nil, fmt.Errorf("%w: expected state %q", ErrBadConfig, cfg.ExpectedState)
	}
	if cfg.TimeUnit == "" {
		cfg.TimeUnit = "micro-seconds"
	}
	return &ZZFitter{
		cfg:      cfg,
		circuits: counts.ZZCircuitNames(len(cfg.Times)),
	}, nil
}

// Config returns the fitter's construction-time configuration.
func (f *ZZFitter) Config() ZZConfig { return f.cfg }

// Circuits returns the circuit names the fitter looks up.
func (f *ZZFitter) Circuits() []string { return f.circuits }

// Fit reduces the backend results to expected-state populations and fits
// the non-decaying oscillation per (series, qubit), weighting points by
// their binomial standard errors. Per-qubit fits run in parallel.
func (f *ZZFitter) Fit(ctx context.Context, results counts.ResultList) error {
	mean := make(map[string][][]float64, len(Series))
	sd := make(map[string][][]float64, len(Series))
	for _, s := range Series {
		mean[s] = make([][]float64, len(f.cfg.Qubits))
		sd[s] = make([][]float64, len(f.cfg.Qubits))
		for qi := range f.cfg.Qubits {
			m, e, err := counts.Populations(results, f.circuits, s, qi, f.cfg.ExpectedState)
			if err != nil {
				return err
			}
			mean[s][qi] = m
			sd[s][qi] = e
		}
	}

	params := make(map[string][][]float64, len(Series))
	stderr := make(map[string][][]float64, len(Series))
	for _, s := range Series {
		params[s] = make([][]float64, len(f.cfg.Qubits))
		stderr[s] = make([][]float64, len(f.cfg.Qubits))
	}

	errs := make([]error, 2*len(f.cfg.Qubits))
	var wg sync.WaitGroup
	for si, s := range Series {
		for qi := range f.cfg.Qubits {
			if err := ctx.Err(); err != nil {
				wg.Wait()
				return err
			}
			wg.Add(1)
			go func(si int, s string, qi int) {
				defer wg.Done()
				res, err := fit.Curve(model.OscNoDecay, f.cfg.Times, mean[s][qi], fit.Config{
					P0:      refineGuess(f.cfg.Times, mean[s][qi], f.cfg.Guess, f.cfg.Lower, f.cfg.Upper),
					Lower:   f.cfg.Lower,
					Upper:   f.cfg.Upper,
					Sigma:   sd[s][qi],
					MaxIter: f.cfg.MaxIter,
				})
				if err != nil {
					errs[si*len(f.cfg.Qubits)+qi] = fmt.Errorf("qubit %d series %s: %w", f.cfg.Qubits[qi], s, err)
					return
				}
				params[s][qi] = res.Params
				stderr[s][qi] = res.Stderr
			}(si, s, qi)
		}
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	f.mean = mean
	f.sd = sd
	f.params = params
	f.stderr = stderr
	return nil
}

// Data returns the reduced population means and standard errors for one
// series and qubit slot.
func (f *ZZFitter) Data(series string, qind int) (mean, stderr []float64, err error) {
	if f.mean == nil {
		return nil, nil, ErrNotFitted
	}
	if qind < 0 || qind >= len(f.cfg.Qubits) {
		return nil, nil, ErrBadQubit
	}
	return f.mean[series][qind], f.sd[series][qind], nil
}

// Params returns the fitted (amplitude, frequency, phase, offset) for one
// series and qubit slot.
func (f *ZZFitter) Params(series string, qind int) ([]float64, error) {
	if f.params == nil {
		return nil, ErrNotFitted
	}
	if qind < 0 || qind >= len(f.cfg.Qubits) {
		return nil, ErrBadQubit
	}
	return f.params[series][qind], nil
}

// Param returns one fit parameter across qubits: qind selects a single
// qubit slot, or AllQubits for the whole list.
func (f *ZZFitter) Param(index int, series string, qind int) ([]float64, error) {
	return f.param(f.params, index, series, qind)
}

// ParamErr is Param for the 1-sigma parameter uncertainties.
func (f *ZZFitter) ParamErr(index int, series string, qind int) ([]float64, error) {
	return f.param(f.stderr, index, series, qind)
}

func (f *ZZFitter) param(src map[string][][]float64, index int, series string, qind int) ([]float64, error) {
	if src == nil {
		return nil, ErrNotFitted
	}
	if index < 0 || index >= model.OscNumParams {
		return nil, fmt.Errorf("%w: parameter index %d", ErrBadConfig, index)
	}
	idx, err := qubitRange(qind, len(f.cfg.Qubits))
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(idx))
	for i, qi := range idx {
		out[i] = src[series][qi][index]
	}
	return out, nil
}

// refineGuess seeds the oscillation fit with a coarse frequency scan.
// At a fixed frequency the model is linear in its remaining parameters
// (a*cos(wt+phi)+c = A*cos(wt)+B*sin(wt)+c), so each candidate gets a
// closed-form least-squares fit; the candidate with the smallest residual
// wins. Nelder-Mead from a single mid-range start can land in a local
// minimum when the true frequency is far from it.
func refineGuess(times, mean, guess, lower, upper []float64) []float64 {
	flo, fhi := scanRange(times, lower, upper)
	if !(fhi > flo) || len(mean) < model.OscNumParams {
		return guess
	}

	const candidates = 128
	n := len(times)
	m := mat.NewDense(n, 3, nil)
	y := mat.NewVecDense(n, mean)

	best := append([]float64(nil), guess...)
	bestRSS := math.Inf(1)
	for i := 0; i < candidates; i++ {
		freq := flo + (fhi-flo)*float64(i)/float64(candidates-1)
		for j, t := range times {
			m.Set(j, 0, math.Cos(2*math.Pi*freq*t))
			m.Set(j, 1, math.Sin(2*math.Pi*freq*t))
			m.Set(j, 2, 1)
		}
		var coef mat.VecDense
		if err := coef.SolveVec(m, y); err != nil {
			continue
		}
		a, b, c := coef.AtVec(0), coef.AtVec(1), coef.AtVec(2)

		rss := 0.0
		for j, t := range times {
			w := 2 * math.Pi * freq * t
			r := mean[j] - (a*math.Cos(w) + b*math.Sin(w) + c)
			rss += r * r
		}
		if rss < bestRSS {
			bestRSS = rss
			best[model.OscAmp] = math.Hypot(a, b)
			best[model.OscFreq] = freq
			best[model.OscPhase] = math.Atan2(-b, a)
			best[model.OscOffset] = c
		}
	}
	return best
}

// scanRange picks the frequency window for the coarse scan: from the
// slowest oscillation the sweep span can resolve up to the Nyquist rate of
// the closest spacing, intersected with the configured frequency bounds.
func scanRange(times, lower, upper []float64) (flo, fhi float64) {
	tmin, tmax := times[0], times[0]
	dt := math.Inf(1)
	for i, t := range times {
		if t < tmin {
			tmin = t
		}
		if t > tmax {
			tmax = t
		}
		if i > 0 {
			if d := math.Abs(t - times[i-1]); d > 0 && d < dt {
				dt = d
			}
		}
	}
	if tmax <= tmin || math.IsInf(dt, 1) {
		return 0, 0
	}
	flo = 1 / (2 * (tmax - tmin))
	fhi = 0.5 / dt
	if lower != nil && lower[model.OscFreq] > flo {
		flo = lower[model.OscFreq]
	}
	if upper != nil && upper[model.OscFreq] < fhi {
		fhi = upper[model.OscFreq]
	}
	return flo, fhi
}

// ZZRate returns the static ZZ rate per qubit: the fitted oscillation
// frequency with the spectator in |1> minus the frequency with it in |0>.
// qind selects one qubit slot, or AllQubits for the whole list.
func (f *ZZFitter) ZZRate(qind int) ([]float64, error) {
	freq0, err := f.Param(model.OscFreq, Series[0], qind)
	if err != nil {
		return nil, err
	}
	freq1, err := f.Param(model.OscFreq, Series[1], qind)
	if err != nil {
		return nil, err
	}
	rates := make([]float64, len(freq0))
	for i := range rates {
		rates[i] = freq1[i] - freq0[i]
	}
	return rates, nil
}
