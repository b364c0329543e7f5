package counts

import (
	"errors"
	"fmt"
)

// Domain errors for measurement data extraction.
var (
	// ErrEmptyCounts indicates an outcome set with zero total shots.
	ErrEmptyCounts = errors.New("counts: empty outcome set")

	// ErrMissingExperiment indicates an experiment name absent from every result.
	ErrMissingExperiment = errors.New("counts: experiment not found in any result")

	// ErrQubitOutOfRange indicates a qubit index outside the measured register.
	ErrQubitOutOfRange = errors.New("counts: qubit index outside bitstring")
)

// DataError wraps a data-extraction error with the experiment it came from.
type DataError struct {
	Experiment string
	Wrapped    error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%v (experiment %q)", e.Wrapped, e.Experiment)
}

func (e *DataError) Unwrap() error {
	return e.Wrapped
}
