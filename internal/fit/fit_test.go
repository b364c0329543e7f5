package fit

import (
	"errors"
	"math"
	"testing"
)

func line(x, p []float64) []float64 {
	y := make([]float64, len(x))
	for i, t := range x {
		y[i] = p[0]*t + p[1]
	}
	return y
}

func cosine(x, p []float64) []float64 {
	y := make([]float64, len(x))
	for i, t := range x {
		y[i] = p[0] * math.Cos(p[1]*t)
	}
	return y
}

func TestCurveLine(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	y := line(x, []float64{2, 1})

	res, err := Curve(line, x, y, Config{P0: []float64{1, 0}})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if math.Abs(res.Params[0]-2) > 1e-5 {
		t.Errorf("slope = %f, want 2", res.Params[0])
	}
	if math.Abs(res.Params[1]-1) > 1e-5 {
		t.Errorf("intercept = %f, want 1", res.Params[1])
	}
	if res.RSS > 1e-10 {
		t.Errorf("rss = %g, want ~0", res.RSS)
	}
}

func TestCurveCosine(t *testing.T) {
	x := make([]float64, 25)
	for i := range x {
		x[i] = float64(i) * 0.4
	}
	truth := []float64{0.8, 0.6}
	y := cosine(x, truth)

	res, err := Curve(cosine, x, y, Config{
		P0:    []float64{1.0, 0.5},
		Lower: []float64{0, 0},
		Upper: []float64{2, 2},
	})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	for i := range truth {
		if math.Abs(res.Params[i]-truth[i]) > 1e-5 {
			t.Errorf("param %d = %f, want %f", i, res.Params[i], truth[i])
		}
	}
}

func TestCurveBounds(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := line(x, []float64{5, 0})

	// the true slope 5 is outside the box; the fit must stay inside
	res, err := Curve(line, x, y, Config{
		P0:    []float64{1, 0},
		Lower: []float64{0, -1},
		Upper: []float64{2, 1},
	})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if res.Params[0] < 0 || res.Params[0] > 2 {
		t.Errorf("slope %f escaped bounds [0, 2]", res.Params[0])
	}
}

func TestCurveClampsGuess(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := line(x, []float64{1, 0})

	// out-of-box P0 must not poison the search with an infinite start
	res, err := Curve(line, x, y, Config{
		P0:    []float64{100, 0},
		Lower: []float64{0, -1},
		Upper: []float64{2, 1},
	})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if math.Abs(res.Params[0]-1) > 1e-4 {
		t.Errorf("slope = %f, want 1", res.Params[0])
	}
}

func TestCurveWeighted(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := line(x, []float64{2, 0})
	sigma := []float64{0.1, 0.1, 0.1, 0.1}

	res, err := Curve(line, x, y, Config{P0: []float64{1, 1}, Sigma: sigma})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if math.Abs(res.Params[0]-2) > 1e-5 {
		t.Errorf("slope = %f, want 2", res.Params[0])
	}
}

func TestCurveStderr(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		x[i] = float64(i)
	}
	// small deterministic perturbation so the residuals are non-zero
	y := line(x, []float64{2, 1})
	for i := range y {
		y[i] += 0.01 * math.Sin(float64(i))
	}

	res, err := Curve(line, x, y, Config{P0: []float64{1, 0}})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	for i, sd := range res.Stderr {
		if math.IsNaN(sd) || sd <= 0 {
			t.Errorf("stderr[%d] = %f, want positive", i, sd)
		}
	}
}

func TestCurveStderrDegenerate(t *testing.T) {
	// as many parameters as points: uncertainties are undefined, not an error
	x := []float64{0, 1}
	y := line(x, []float64{2, 1})

	res, err := Curve(line, x, y, Config{P0: []float64{1, 0}})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	for i, sd := range res.Stderr {
		if !math.IsNaN(sd) {
			t.Errorf("stderr[%d] = %f, want NaN", i, sd)
		}
	}
}

func TestCurveValidation(t *testing.T) {
	x := []float64{0, 1}
	y := []float64{0, 1}

	cases := []struct {
		name string
		cfg  Config
	}{
		{"no guess", Config{}},
		{"bounds length mismatch", Config{P0: []float64{1}, Lower: []float64{0, 0}}},
		{"sigma length mismatch", Config{P0: []float64{1}, Sigma: []float64{1}}},
	}
	for _, tc := range cases {
		if _, err := Curve(line, x, y, tc.cfg); !errors.Is(err, ErrBadConfig) {
			t.Errorf("%s: expected ErrBadConfig, got %v", tc.name, err)
		}
	}

	if _, err := Curve(line, nil, nil, Config{P0: []float64{1, 0}}); !errors.Is(err, ErrBadConfig) {
		t.Errorf("expected ErrBadConfig for empty data, got %v", err)
	}
	if _, err := Curve(line, x, []float64{1, 2, 3}, Config{P0: []float64{1, 0}}); !errors.Is(err, ErrBadConfig) {
		t.Errorf("expected ErrBadConfig for ragged data, got %v", err)
	}
}

func TestCurveVectorModel(t *testing.T) {
	// a model returning 2 values per x point
	double := func(x, p []float64) []float64 {
		y := make([]float64, 2*len(x))
		for i, t := range x {
			y[i] = p[0] * t
			y[len(x)+i] = p[1] * t
		}
		return y
	}
	x := []float64{1, 2, 3}
	y := double(x, []float64{0.5, -0.25})

	res, err := Curve(double, x, y, Config{P0: []float64{0.1, 0.1}})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if math.Abs(res.Params[0]-0.5) > 1e-5 || math.Abs(res.Params[1]+0.25) > 1e-5 {
		t.Errorf("params = %v, want [0.5 -0.25]", res.Params)
	}
}
