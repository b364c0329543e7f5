package hamiltonian

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/qfit/internal/counts"
	"github.com/san-kum/qfit/internal/model"
	"github.com/san-kum/qfit/internal/synth"
)

func TestCombine(t *testing.T) {
	p0 := []float64{0.30, -0.10, 0.05}
	p1 := []float64{0.10, 0.02, -0.01}
	h := Combine(p0, p1)

	checks := map[string]float64{
		"XI": 0.20, "YI": -0.04, "ZI": 0.02,
		"XZ": 0.10, "YZ": -0.06, "ZZ": 0.03,
	}
	for term, want := range checks {
		if math.Abs(h[term]-want) > 1e-12 {
			t.Errorf("%s = %f, want %f", term, h[term], want)
		}
	}
}

func TestCombineLinearity(t *testing.T) {
	// XI + XZ reconstructs series 0's omega_x exactly, same for the
	// other pairs.
	p0 := []float64{0.137, -0.41, 0.093}
	p1 := []float64{-0.02, 0.77, -0.3}
	h := Combine(p0, p1)

	if math.Abs(h["XI"]+h["XZ"]-p0[model.BlochOmegaX]) > 1e-12 {
		t.Errorf("XI+XZ = %f, want %f", h["XI"]+h["XZ"], p0[model.BlochOmegaX])
	}
	if math.Abs(h["YI"]+h["YZ"]-p0[model.BlochOmegaY]) > 1e-12 {
		t.Errorf("YI+YZ = %f, want %f", h["YI"]+h["YZ"], p0[model.BlochOmegaY])
	}
	if math.Abs(h["ZI"]+h["ZZ"]-p0[model.BlochDelta]) > 1e-12 {
		t.Errorf("ZI+ZZ = %f, want %f", h["ZI"]+h["ZZ"], p0[model.BlochDelta])
	}
}

func TestNewCRValidation(t *testing.T) {
	_, err := NewCR(CRConfig{Qubits: []int{0}, Guess: []float64{0, 0, 0}})
	if !errors.Is(err, ErrBadConfig) {
		t.Errorf("expected ErrBadConfig for no times, got %v", err)
	}
	_, err = NewCR(CRConfig{Times: []float64{1}, Qubits: []int{0}, Guess: []float64{0}})
	if !errors.Is(err, ErrBadConfig) {
		t.Errorf("expected ErrBadConfig for short guess, got %v", err)
	}
}

func TestNewZZValidation(t *testing.T) {
	_, err := NewZZ(ZZConfig{
		Times: []float64{1}, Qubits: []int{0}, Spectators: []int{1, 2},
		Guess: []float64{0.5, 0.1, 0, 0.5},
	})
	if !errors.Is(err, ErrBadConfig) {
		t.Errorf("expected ErrBadConfig for spectator mismatch, got %v", err)
	}
	_, err = NewZZ(ZZConfig{
		Times: []float64{1}, Qubits: []int{0}, Spectators: []int{1},
		Guess: []float64{0.5, 0.1, 0, 0.5}, ExpectedState: 'x',
	})
	if !errors.Is(err, ErrBadConfig) {
		t.Errorf("expected ErrBadConfig for bad expected state, got %v", err)
	}
}

func TestAccessorsBeforeFit(t *testing.T) {
	f, err := NewCR(CRConfig{
		Times: []float64{1, 2}, Qubits: []int{0},
		Guess: []float64{0.1, 0, 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.Params("0", 0); !errors.Is(err, ErrNotFitted) {
		t.Errorf("expected ErrNotFitted, got %v", err)
	}
	if _, err := f.Hamiltonian(); !errors.Is(err, ErrNotFitted) {
		t.Errorf("expected ErrNotFitted, got %v", err)
	}
}

func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestCRFitRecoversParams(t *testing.T) {
	times := linspace(0.5, 10, 20)
	truth := synth.CRParams{OmegaX: 0.1, OmegaY: 0, Delta: 0}

	// noiseless synthetic counts: both series from identical parameters
	result, err := synth.CR(times,
		[]synth.CRParams{truth}, []synth.CRParams{truth},
		synth.Options{Shots: 1 << 30})
	if err != nil {
		t.Fatalf("synth failed: %v", err)
	}

	f, err := NewCR(CRConfig{
		Times:  times,
		Qubits: []int{0},
		Guess:  []float64{0.05, 0.01, 0.01},
		Lower:  []float64{-1, -1, -1},
		Upper:  []float64{1, 1, 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Fit(context.Background(), counts.ResultList{result}); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	for _, s := range Series {
		p, err := f.Params(s, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(p[model.BlochOmegaX]-0.1) > 1e-6 {
			t.Errorf("series %s: omega_x = %.9f, want 0.1", s, p[model.BlochOmegaX])
		}
		if math.Abs(p[model.BlochOmegaY]) > 1e-6 {
			t.Errorf("series %s: omega_y = %.9f, want 0", s, p[model.BlochOmegaY])
		}
		if math.Abs(p[model.BlochDelta]) > 1e-6 {
			t.Errorf("series %s: delta = %.9f, want 0", s, p[model.BlochDelta])
		}
	}

	ham, err := f.Hamiltonian()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := ham[0]
	if math.Abs(h["XI"]-0.1) > 1e-6 {
		t.Errorf("XI = %.9f, want 0.1", h["XI"])
	}
	if math.Abs(h["XZ"]) > 1e-6 {
		t.Errorf("XZ = %.9f, want 0 (identical series)", h["XZ"])
	}
}

func TestCRHamiltonianMemoized(t *testing.T) {
	times := linspace(0.5, 6, 10)
	truth := synth.CRParams{OmegaX: 0.2}
	result, err := synth.CR(times,
		[]synth.CRParams{truth}, []synth.CRParams{truth},
		synth.Options{Shots: 1 << 20})
	if err != nil {
		t.Fatalf("synth failed: %v", err)
	}

	f, err := NewCR(CRConfig{
		Times: times, Qubits: []int{0},
		Guess: []float64{0.1, 0, 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Fit(context.Background(), counts.ResultList{result}); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	h1, err := f.Hamiltonian()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, _ := f.Hamiltonian()
	if h1[0] == nil || h2[0] == nil {
		t.Fatal("missing hamiltonian entries")
	}
	// same memoized maps until the next Fit
	for term, v := range h1[0] {
		if h2[0][term] != v {
			t.Errorf("memoized hamiltonian changed between accesses")
		}
	}

	if err := f.Fit(context.Background(), counts.ResultList{result}); err != nil {
		t.Fatalf("refit failed: %v", err)
	}
	if _, err := f.Hamiltonian(); err != nil {
		t.Errorf("hamiltonian after refit: %v", err)
	}
}

func TestZZFitAndRate(t *testing.T) {
	times := linspace(0.5, 20, 40)
	result, err := synth.ZZ(times, []float64{0.10}, []float64{0.12},
		synth.Options{Shots: 1 << 30})
	if err != nil {
		t.Fatalf("synth failed: %v", err)
	}

	f, err := NewZZ(ZZConfig{
		Times:      times,
		Qubits:     []int{0},
		Spectators: []int{1},
		Guess:      []float64{0.5, 0.11, 0, 0.5},
		Lower:      []float64{0, 0.01, -1, 0},
		Upper:      []float64{1, 1, 1, 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Fit(context.Background(), counts.ResultList{result}); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	rates, err := f.ZZRate(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 1 {
		t.Fatalf("expected 1 rate, got %d", len(rates))
	}
	if math.Abs(rates[0]-0.02) > 1e-5 {
		t.Errorf("zz rate = %.9f, want 0.02", rates[0])
	}

	// the rate is exactly the difference of the fitted frequencies
	f0, err := f.Param(model.OscFreq, Series[0], 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f1, err := f.Param(model.OscFreq, Series[1], 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rates[0] != f1[0]-f0[0] {
		t.Errorf("rate %.12f != freq1-freq0 %.12f", rates[0], f1[0]-f0[0])
	}
}

func TestZZFitGuessFarFromTruth(t *testing.T) {
	// a mid-range frequency guess must not strand the fit in a local
	// minimum when the true frequency sits near the lower bound
	times := linspace(0.5, 20, 30)
	result, err := synth.ZZ(times, []float64{0.08}, []float64{0.05},
		synth.Options{Shots: 1 << 24})
	if err != nil {
		t.Fatalf("synth failed: %v", err)
	}

	f, err := NewZZ(ZZConfig{
		Times:      times,
		Qubits:     []int{0},
		Spectators: []int{1},
		Guess:      []float64{0.5, 0.09, 0, 0.5},
		Lower:      []float64{0, 0.01, -1, 0},
		Upper:      []float64{1, 1, 1, 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Fit(context.Background(), counts.ResultList{result}); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	f0, err := f.Param(model.OscFreq, Series[0], 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f1, err := f.Param(model.OscFreq, Series[1], 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(f0[0]-0.08) > 1e-4 {
		t.Errorf("series 0 frequency = %.9f, want 0.08", f0[0])
	}
	if math.Abs(f1[0]-0.05) > 1e-4 {
		t.Errorf("series 1 frequency = %.9f, want 0.05", f1[0])
	}

	rates, err := f.ZZRate(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(rates[0]+0.03) > 1e-4 {
		t.Errorf("zz rate = %.9f, want -0.03", rates[0])
	}
}

func TestRefineGuessFindsFrequency(t *testing.T) {
	times := linspace(0.5, 20, 40)
	truth := []float64{0.5, 0.05, 0, 0.5}
	data := model.OscNoDecay(times, truth)

	got := refineGuess(times, data, []float64{0.5, 0.3, 0, 0.5},
		[]float64{0, 0.01, -1, 0}, []float64{1, 1, 1, 1})
	if math.Abs(got[model.OscFreq]-0.05) > 0.01 {
		t.Errorf("refined frequency = %.4f, want ~0.05", got[model.OscFreq])
	}
	if math.Abs(got[model.OscOffset]-0.5) > 0.05 {
		t.Errorf("refined offset = %.4f, want ~0.5", got[model.OscOffset])
	}
	if math.Abs(got[model.OscAmp]-0.5) > 0.05 {
		t.Errorf("refined amplitude = %.4f, want ~0.5", got[model.OscAmp])
	}
}

func TestZZRateAllQubits(t *testing.T) {
	times := linspace(0.5, 20, 30)
	result, err := synth.ZZ(times,
		[]float64{0.10, 0.08}, []float64{0.12, 0.05},
		synth.Options{Shots: 1 << 24})
	if err != nil {
		t.Fatalf("synth failed: %v", err)
	}

	f, err := NewZZ(ZZConfig{
		Times:      times,
		Qubits:     []int{0, 1},
		Spectators: []int{2, 3},
		Guess:      []float64{0.5, 0.09, 0, 0.5},
		Lower:      []float64{0, 0.01, -1, 0},
		Upper:      []float64{1, 1, 1, 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Fit(context.Background(), counts.ResultList{result}); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	rates, err := f.ZZRate(AllQubits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("expected rates for all 2 qubits, got %d", len(rates))
	}
	if math.Abs(rates[0]-0.02) > 1e-4 {
		t.Errorf("rate[0] = %.9f, want 0.02", rates[0])
	}
	if math.Abs(rates[1]+0.03) > 1e-4 {
		t.Errorf("rate[1] = %.9f, want -0.03", rates[1])
	}

	if _, err := f.ZZRate(5); !errors.Is(err, ErrBadQubit) {
		t.Errorf("expected ErrBadQubit, got %v", err)
	}
}

func TestFitMissingExperiment(t *testing.T) {
	f, err := NewCR(CRConfig{
		Times: []float64{1, 2}, Qubits: []int{0},
		Guess: []float64{0.1, 0, 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = f.Fit(context.Background(), counts.ResultList{counts.MemoryResult{}})
	if !errors.Is(err, counts.ErrMissingExperiment) {
		t.Errorf("expected ErrMissingExperiment, got %v", err)
	}
}

func TestFitCanceledContext(t *testing.T) {
	times := linspace(0.5, 6, 8)
	truth := synth.CRParams{OmegaX: 0.2}
	result, err := synth.CR(times,
		[]synth.CRParams{truth}, []synth.CRParams{truth},
		synth.Options{Shots: 1024})
	if err != nil {
		t.Fatalf("synth failed: %v", err)
	}

	f, err := NewCR(CRConfig{
		Times: times, Qubits: []int{0},
		Guess: []float64{0.1, 0, 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.Fit(ctx, counts.ResultList{result}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	// an aborted pass leaves no partial results behind
	if _, err := f.Params("0", 0); !errors.Is(err, ErrNotFitted) {
		t.Errorf("expected ErrNotFitted after aborted fit, got %v", err)
	}
}
