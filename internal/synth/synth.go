// Package synth generates backend results from known Hamiltonian
// parameters, for demos and end-to-end validation of the fitters.
package synth

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/san-kum/qfit/internal/counts"
	"github.com/san-kum/qfit/internal/model"
)

// CRParams are the true Bloch drive terms of one (series, qubit).
type CRParams struct {
	OmegaX float64
	OmegaY float64
	Delta  float64
}

// Options controls count generation.
type Options struct {
	// Shots per experiment.
	Shots int

	// Seed enables shot-noise sampling with the given seed. Zero means
	// noiseless: counts are the exact per-shot probabilities, rounded.
	Seed int64
}

// The joint distribution is enumerated over all bitstrings, so the number
// of simulated qubits is capped.
const maxQubits = 16

// CR generates the full two-series CR tomography result for len(p0)
// independent qubits: one experiment per (circuit, basis, series) with a
// joint counts dictionary over all qubits.
func CR(times []float64, p0, p1 []CRParams, opts Options) (counts.MemoryResult, error) {
	if len(p0) == 0 || len(p0) != len(p1) {
		return nil, fmt.Errorf("synth: need matching per-qubit params for both series, got %d and %d", len(p0), len(p1))
	}
	if err := checkOptions(len(p0), opts); err != nil {
		return nil, err
	}

	rng := newRNG(opts.Seed)
	byQubit := map[string][]CRParams{
		counts.Series[0]: p0,
		counts.Series[1]: p1,
	}

	out := make(counts.MemoryResult)
	for i, circ := range counts.CRCircuitNames(len(times)) {
		t := times[i]
		for b, basis := range counts.Bases {
			for _, series := range counts.Series {
				probs := make([]float64, len(p0))
				for q, p := range byQubit[series] {
					v := model.BlochVector(model.Generator(p.OmegaX, p.OmegaY, p.Delta), t)
					probs[q] = (1 + v[b]) / 2
				}
				name := counts.CRExperimentName(circ, basis, series)
				out[name] = jointCounts(probs, opts.Shots, rng)
			}
		}
	}
	return out, nil
}

// ZZ generates the two-series ZZ sweep result for len(freq0) independent
// qubits. The ground-state population oscillates as (1+cos(2*pi*f*t))/2
// with f the series' frequency.
func ZZ(times []float64, freq0, freq1 []float64, opts Options) (counts.MemoryResult, error) {
	if len(freq0) == 0 || len(freq0) != len(freq1) {
		return nil, fmt.Errorf("synth: need matching per-qubit frequencies for both series, got %d and %d", len(freq0), len(freq1))
	}
	if err := checkOptions(len(freq0), opts); err != nil {
		return nil, err
	}

	rng := newRNG(opts.Seed)
	byQubit := map[string][]float64{
		counts.Series[0]: freq0,
		counts.Series[1]: freq1,
	}

	out := make(counts.MemoryResult)
	for i, circ := range counts.ZZCircuitNames(len(times)) {
		t := times[i]
		for _, series := range counts.Series {
			probs := make([]float64, len(freq0))
			for q, f := range byQubit[series] {
				probs[q] = (1 + math.Cos(2*math.Pi*f*t)) / 2
			}
			name := counts.ZZExperimentName(circ, series)
			out[name] = jointCounts(probs, opts.Shots, rng)
		}
	}
	return out, nil
}

func checkOptions(nqubits int, opts Options) error {
	if opts.Shots <= 0 {
		return fmt.Errorf("synth: shots must be positive, got %d", opts.Shots)
	}
	if nqubits > maxQubits {
		return fmt.Errorf("synth: %d qubits exceeds the %d-qubit limit", nqubits, maxQubits)
	}
	return nil
}

func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(seed))
}

// jointCounts builds a counts dictionary over all bitstrings of
// independent qubits, where probs[q] is qubit q's probability of reading
// '0'. With an RNG, every shot is sampled; otherwise counts are the exact
// joint probabilities times the shot budget, rounded.
func jointCounts(probs []float64, shots int, rng *rand.Rand) counts.Counts {
	nq := len(probs)
	c := make(counts.Counts)

	if rng != nil {
		bits := make([]byte, nq)
		for s := 0; s < shots; s++ {
			for q := 0; q < nq; q++ {
				// qubit q sits at string position nq-1-q
				if rng.Float64() < probs[q] {
					bits[nq-1-q] = '0'
				} else {
					bits[nq-1-q] = '1'
				}
			}
			c[string(bits)]++
		}
		return c
	}

	for mask := 0; mask < 1<<nq; mask++ {
		p := 1.0
		var sb strings.Builder
		for q := nq - 1; q >= 0; q-- {
			if mask&(1<<q) != 0 {
				p *= 1 - probs[q]
				sb.WriteByte('1')
			} else {
				p *= probs[q]
				sb.WriteByte('0')
			}
		}
		n := int(math.Round(p * float64(shots)))
		if n > 0 {
			c[sb.String()] = n
		}
	}
	return c
}
