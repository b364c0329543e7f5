package model

import "math"

// Parameter layout of OscNoDecay. The frequency carries the physics; the
// ZZ rate is the difference of fitted frequencies between the two series.
const (
	OscAmp = iota
	OscFreq
	OscPhase
	OscOffset
	OscNumParams
)

// OscNoDecay predicts a non-decaying oscillation
//
//	y(t) = a*cos(2*pi*f*t + phi) + c
//
// at every time point. Parameters are (a, f, phi, c).
func OscNoDecay(x, p []float64) []float64 {
	a, f, phi, c := p[OscAmp], p[OscFreq], p[OscPhase], p[OscOffset]
	y := make([]float64, len(x))
	for i, t := range x {
		y[i] = a*math.Cos(2*math.Pi*f*t+phi) + c
	}
	return y
}
