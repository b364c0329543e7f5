package model

import "fmt"

// Flatten stacks per-time-point 3-vectors into a basis-major flat vector:
// all X components, then all Y, then all Z.
func Flatten(vecs [][3]float64) []float64 {
	n := len(vecs)
	flat := make([]float64, 3*n)
	for i, v := range vecs {
		flat[i] = v[0]
		flat[n+i] = v[1]
		flat[2*n+i] = v[2]
	}
	return flat
}

// Split cuts a basis-major flat vector back into its X, Y and Z rows.
// It is the exact inverse of Flatten.
func Split(flat []float64) (x, y, z []float64, err error) {
	if len(flat)%3 != 0 {
		return nil, nil, nil, fmt.Errorf("model: flattened length %d not divisible by 3", len(flat))
	}
	n := len(flat) / 3
	return flat[:n], flat[n : 2*n], flat[2*n:], nil
}
