package hamiltonian

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/qfit/internal/counts"
	"github.com/san-kum/qfit/internal/fit"
	"github.com/san-kum/qfit/internal/model"
)

// CRConfig holds the construction-time inputs of a CR Hamiltonian fit.
type CRConfig struct {
	// Times are the CR pulse durations, one per tomography circuit.
	Times []float64

	// Qubits are the measured target qubit indices to analyze.
	Qubits []int

	// Guess is the initial (omega_x, omega_y, delta) parameter guess.
	Guess []float64

	// Lower and Upper are optional box bounds on the parameters.
	Lower []float64
	Upper []float64

	// TimeUnit labels the time axis in reports. Defaults to "seconds".
	TimeUnit string

	// MaxIter bounds each per-qubit minimization. Zero means the fit
	// driver default.
	MaxIter int
}

// CRFitter estimates the effective cross-resonance Hamiltonian of a
// control-target qubit pair from Bloch vector tomography of the target,
// swept over pulse durations with the control prepared in |0> and |1>.
type CRFitter struct {
	cfg      CRConfig
	circuits []string

	ydata  map[string][][]float64 // series -> qubit slot -> flattened trajectory
	params map[string][][]float64
	stderr map[string][][]float64

	ham map[int]Hamiltonian // memo, dropped when params are replaced
}

// NewCR validates the configuration and returns a fitter with no results.
func NewCR(cfg CRConfig) (*CRFitter, error) {
	if len(cfg.Times) == 0 {
		return nil, fmt.Errorf("%w: no time points", ErrBadConfig)
	}
	if len(cfg.Qubits) == 0 {
		return nil, fmt.Errorf("%w: no qubits", ErrBadConfig)
	}
	if len(cfg.Guess) != model.BlochNumParams {
		return nil, fmt.Errorf("%w: guess has %d parameters, want %d",
			ErrBadConfig, len(cfg.Guess), model.BlochNumParams)
	}
	if cfg.TimeUnit == "" {
		cfg.TimeUnit = "seconds"
	}
	return &CRFitter{
		cfg:      cfg,
		circuits: counts.CRCircuitNames(len(cfg.Times)),
	}, nil
}

// Config returns the fitter's construction-time configuration.
func (f *CRFitter) Config() CRConfig { return f.cfg }

// Circuits returns the tomography circuit names the fitter looks up.
func (f *CRFitter) Circuits() []string { return f.circuits }

// Fit reduces the backend results to Bloch trajectories and fits the Bloch
// model per (series, qubit). Per-qubit fits run in parallel. Any extraction
// or fit error aborts the whole pass; previous results are discarded.
func (f *CRFitter) Fit(ctx context.Context, results counts.ResultList) error {
	ydata := make(map[string][][]float64, len(Series))
	for _, s := range Series {
		ydata[s] = make([][]float64, len(f.cfg.Qubits))
		for qi := range f.cfg.Qubits {
			flat, err := counts.BlochSeries(results, f.circuits, s, qi)
			if err != nil {
				return err
			}
			ydata[s][qi] = flat
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
				res, err := fit.Curve(model.BlochTrajectory, f.cfg.Times, ydata[s][qi], fit.Config{
					P0:      f.cfg.Guess,
					Lower:   f.cfg.Lower,
					Upper:   f.cfg.Upper,
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

	f.ydata = ydata
	f.params = params
	f.stderr = stderr
	f.ham = nil
	return nil
}

// Data returns the reduced, flattened Bloch trajectory for one series and
// qubit slot.
func (f *CRFitter) Data(series string, qind int) ([]float64, error) {
	if f.ydata == nil {
		return nil, ErrNotFitted
	}
	if qind < 0 || qind >= len(f.cfg.Qubits) {
		return nil, ErrBadQubit
	}
	return f.ydata[series][qind], nil
}

// Params returns the fitted (omega_x, omega_y, delta) for one series and
// qubit slot.
func (f *CRFitter) Params(series string, qind int) ([]float64, error) {
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
func (f *CRFitter) Param(index int, series string, qind int) ([]float64, error) {
	return f.param(f.params, index, series, qind)
}

// ParamErr is Param for the 1-sigma parameter uncertainties.
func (f *CRFitter) ParamErr(index int, series string, qind int) ([]float64, error) {
	return f.param(f.stderr, index, series, qind)
}

func (f *CRFitter) param(src map[string][][]float64, index int, series string, qind int) ([]float64, error) {
	if src == nil {
		return nil, ErrNotFitted
	}
	if index < 0 || index >= model.BlochNumParams {
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

// Hamiltonian returns the six interaction-term coefficients per measured
// qubit, keyed by qubit id. The result is memoized; Fit invalidates it.
func (f *CRFitter) Hamiltonian() (map[int]Hamiltonian, error) {
	if f.params == nil {
		return nil, ErrNotFitted
	}
	if f.ham == nil {
		ham := make(map[int]Hamiltonian, len(f.cfg.Qubits))
		for qi, qid := range f.cfg.Qubits {
			ham[qid] = Combine(f.params[Series[0]][qi], f.params[Series[1]][qi])
		}
		f.ham = ham
	}
	return f.ham, nil
}
