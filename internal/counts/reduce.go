package counts

import (
	"errors"
	"fmt"
	"math"
)

// Measurement bases of the CR tomography sweep, in flattening order.
var Bases = [3]string{"x", "y", "z"}

// Series labels the control (or spectator) qubit's initial state; every
// sweep is recorded once per label.
var Series = [2]string{"0", "1"}

// Standard errors of zero would give points infinite weight in a weighted
// fit, so they are floored.
const minStderr = 1e-4

// CRCircuitNames returns the circuit names of a CR tomography sweep with
// n time points.
func CRCircuitNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("cr_ham_tomo_sched_%d", i)
	}
	return names
}

// ZZCircuitNames returns the circuit names of a ZZ sweep with n time points.
// The trailing underscore is part of the name; the series label is appended
// to form the experiment name.
func ZZCircuitNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("zzcircuit_%d_", i)
	}
	return names
}

// CRExperimentName builds the experiment name of one tomography circuit in
// one measurement basis for one series.
func CRExperimentName(circuit, basis, series string) string {
	return fmt.Sprintf("%s_%s_%s", circuit, basis, series)
}

// ZZExperimentName builds the experiment name of one ZZ circuit for one
// series.
func ZZExperimentName(circuit, series string) string {
	return circuit + series
}

// BlochSeries reduces one (series, qubit) CR sweep to a flattened Bloch
// trajectory: the X, Y and Z expectation values at every circuit, stacked
// basis-major (all X values, then all Y, then all Z). The layout must match
// the model prediction layout exactly.
func BlochSeries(results ResultList, circuits []string, series string, qubit int) ([]float64, error) {
	n := len(circuits)
	flat := make([]float64, 3*n)
	for i, circ := range circuits {
		for b, basis := range Bases {
			name := CRExperimentName(circ, basis, series)
			c, err := results.Lookup(name)
			if err != nil {
				return nil, err
			}
			ev, err := c.Expectation(qubit)
			if err != nil {
				return nil, &DataError{Experiment: name, Wrapped: err}
			}
			flat[b*n+i] = ev
		}
	}
	return flat, nil
}

// Populations reduces one (series, qubit) ZZ sweep to the probability of
// the expected state at every circuit, with binomial standard errors.
func Populations(results ResultList, circuits []string, series string, qubit int, expected byte) (mean, stderr []float64, err error) {
	mean = make([]float64, len(circuits))
	stderr = make([]float64, len(circuits))
	for i, circ := range circuits {
		name := ZZExperimentName(circ, series)
		c, err := results.Lookup(name)
		if err != nil {
			return nil, nil, err
		}
		p, sd, err := c.Population(qubit, expected)
		if err != nil {
			return nil, nil, &DataError{Experiment: name, Wrapped: err}
		}
		mean[i] = p
		stderr[i] = sd
	}
	return mean, stderr, nil
}

func binomialStderr(p float64, total int) float64 {
	sd := math.Sqrt(p * (1 - p) / float64(total))
	if sd < minStderr {
		sd = minStderr
	}
	return sd
}

// IsDataError reports whether err is one of the extraction errors that
// indicate incomplete or empty input data.
func IsDataError(err error) bool {
	return errors.Is(err, ErrEmptyCounts) ||
		errors.Is(err, ErrMissingExperiment) ||
		errors.Is(err, ErrQubitOutOfRange)
}
