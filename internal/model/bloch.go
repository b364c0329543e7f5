package model

import "gonum.org/v1/gonum/mat"

// Parameter layout of BlochTrajectory.
const (
	BlochOmegaX = iota
	BlochOmegaY
	BlochDelta
	BlochNumParams
)

// Generator returns the antisymmetric rotation generator of the Bloch
// equation for drive terms (omega_x, omega_y) and detuning delta:
//
//	A = [[ 0,      delta,  omega_y],
//	     [-delta,  0,     -omega_x],
//	     [-omega_y, omega_x, 0    ]]
func Generator(omegaX, omegaY, delta float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, delta, omegaY,
		-delta, 0, -omegaX,
		-omegaY, omegaX, 0,
	})
}

// BlochVector evolves the |0> Bloch vector (0, 0, 1) for time t under the
// generator a, using a dense matrix exponential. Each call is an
// independent solve; there is no accumulated integration error.
func BlochVector(a *mat.Dense, t float64) [3]float64 {
	var at mat.Dense
	at.Scale(t, a)

	var e mat.Dense
	e.Exp(&at)

	// exp(At) applied to (0, 0, 1) is its last column.
	return [3]float64{e.At(0, 2), e.At(1, 2), e.At(2, 2)}
}

// BlochTrajectory predicts the Bloch vector at every time point for
// parameters (omega_x, omega_y, delta) and flattens the result basis-major:
// all X components, then Y, then Z. The layout matches counts.BlochSeries.
func BlochTrajectory(x, p []float64) []float64 {
	a := Generator(p[BlochOmegaX], p[BlochOmegaY], p[BlochDelta])

	n := len(x)
	flat := make([]float64, 3*n)
	for i, t := range x {
		v := BlochVector(a, t)
		flat[i] = v[0]
		flat[n+i] = v[1]
		flat[2*n+i] = v[2]
	}
	return flat
}
