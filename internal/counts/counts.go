// Package counts turns measurement outcome sets into fit observables.
//
// An outcome set maps classical bitstrings to how often they were observed.
// The package converts those into the quantities the fitters consume:
//
//   - [Counts.Expectation]: ±1 eigenvalue average of a single qubit
//   - [Counts.Population]: probability of a qubit in a given state, with
//     its binomial standard error
//   - [BlochSeries] / [Populations]: full per-qubit time series reductions
//
// Bit ordering follows the little-endian register convention: qubit 0 is
// the rightmost character of a bitstring. All indexing goes through [BitAt]
// so the convention lives in exactly one place.
package counts

// Counts maps a measured bitstring to its occurrence count.
// Counts are borrowed from a backend result and never mutated here.
type Counts map[string]int

// Total returns the number of shots in the outcome set.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// BitAt returns the measured bit of the given qubit within a bitstring.
// Qubit 0 is the rightmost character. The second return is false when the
// bitstring is too short to contain the qubit.
func BitAt(bits string, qubit int) (byte, bool) {
	if qubit < 0 || qubit >= len(bits) {
		return 0, false
	}
	return bits[len(bits)-1-qubit], true
}

// Expectation computes the ±1 eigenvalue average of one qubit: each shot
// contributes +1 when the qubit reads '0' and -1 when it reads '1'.
// The result is in [-1, 1]. Returns ErrEmptyCounts on a zero-shot set and
// ErrQubitOutOfRange when a bitstring does not cover the qubit.
func (c Counts) Expectation(qubit int) (float64, error) {
	total := 0
	signed := 0
	for bits, n := range c {
		b, ok := BitAt(bits, qubit)
		if !ok {
			return 0, ErrQubitOutOfRange
		}
		if b == '1' {
			signed -= n
		} else {
			signed += n
		}
		total += n
	}
	if total == 0 {
		return 0, ErrEmptyCounts
	}
	return float64(signed) / float64(total), nil
}

// Population computes the probability of observing the qubit in the given
// state ('0' or '1') together with the binomial standard error
// sqrt(p(1-p)/N). Returns ErrEmptyCounts on a zero-shot set.
func (c Counts) Population(qubit int, state byte) (p, stderr float64, err error) {
	total := 0
	hits := 0
	for bits, n := range c {
		b, ok := BitAt(bits, qubit)
		if !ok {
			return 0, 0, ErrQubitOutOfRange
		}
		if b == state {
			hits += n
		}
		total += n
	}
	if total == 0 {
		return 0, 0, ErrEmptyCounts
	}
	p = float64(hits) / float64(total)
	stderr = binomialStderr(p, total)
	return p, stderr, nil
}
