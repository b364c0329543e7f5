package hamiltonian

import (
	"errors"

	"github.com/san-kum/qfit/internal/counts"
	"github.com/san-kum/qfit/internal/model"
)

// AllQubits selects every fitted qubit in the accessor methods.
const AllQubits = -1

// Series labels the control (or spectator) qubit's initial state.
var Series = counts.Series

// Interaction-term labels of the effective CR Hamiltonian, in reporting
// order.
var Terms = [6]string{"XI", "YI", "ZI", "XZ", "YZ", "ZZ"}

// Hamiltonian maps an interaction-term label to its coefficient.
type Hamiltonian map[string]float64

// Domain errors shared by the fitters.
var (
	// ErrNotFitted indicates an accessor was called before Fit.
	ErrNotFitted = errors.New("hamiltonian: fitter has no fit results yet")

	// ErrBadQubit indicates a qubit index outside the fitted list.
	ErrBadQubit = errors.New("hamiltonian: qubit index out of range")

	// ErrBadConfig indicates an inconsistent fitter configuration.
	ErrBadConfig = errors.New("hamiltonian: invalid configuration")
)

// Combine derives the six interaction terms from the Bloch fit parameters
// of the two series. The sum of the two series' drive terms isolates the
// identity-on-control part, the difference the Z-on-control part:
//
//	XI = (wx0+wx1)/2   XZ = (wx0-wx1)/2
//	YI = (wy0+wy1)/2   YZ = (wy0-wy1)/2
//	ZI = (d0+d1)/2     ZZ = (d0-d1)/2
//
// Combine is pure; the fitters memoize its output and drop the memo when
// parameters are replaced.
func Combine(p0, p1 []float64) Hamiltonian {
	return Hamiltonian{
		"XI": (p0[model.BlochOmegaX] + p1[model.BlochOmegaX]) / 2,
		"YI": (p0[model.BlochOmegaY] + p1[model.BlochOmegaY]) / 2,
		"ZI": (p0[model.BlochDelta] + p1[model.BlochDelta]) / 2,
		"XZ": (p0[model.BlochOmegaX] - p1[model.BlochOmegaX]) / 2,
		"YZ": (p0[model.BlochOmegaY] - p1[model.BlochOmegaY]) / 2,
		"ZZ": (p0[model.BlochDelta] - p1[model.BlochDelta]) / 2,
	}
}

// qubitRange expands a qubit selector into concrete indices: AllQubits
// selects every fitted qubit, otherwise the single given index.
func qubitRange(qind, n int) ([]int, error) {
	if qind == AllQubits {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}
	if qind < 0 || qind >= n {
		return nil, ErrBadQubit
	}
	return []int{qind}, nil
}
