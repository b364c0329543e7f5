package fit

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// paramStderr estimates 1-sigma parameter uncertainties from the residual
// Jacobian at the optimum: cov = s^2 * (J^T J)^-1 with s^2 = RSS/(n-k).
// When the problem is degenerate (too few points, singular J^T J) the
// uncertainties are NaN rather than an error; the fit itself is still valid.
func paramStderr(model Func, xdata, ydata, sigma, params []float64, rssVal float64) []float64 {
	k := len(params)
	n := len(ydata)

	stderr := make([]float64, k)
	for i := range stderr {
		stderr[i] = math.NaN()
	}
	if n <= k {
		return stderr
	}

	jac := mat.NewDense(n, k, nil)
	fd.Jacobian(jac, func(dst, p []float64) {
		pred := model(xdata, p)
		for i := range dst {
			r := pred[i] - ydata[i]
			if sigma != nil {
				r /= sigma[i]
			}
			dst[i] = r
		}
	}, params, &fd.JacobianSettings{Formula: fd.Central})

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	var inv mat.Dense
	if err := inv.Inverse(&jtj); err != nil {
		return stderr
	}

	s2 := rssVal / float64(n-k)
	for i := 0; i < k; i++ {
		v := s2 * inv.At(i, i)
		if v < 0 {
			continue
		}
		stderr[i] = math.Sqrt(v)
	}
	return stderr
}
