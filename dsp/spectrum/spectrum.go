// Package spectrum provides spectrum-domain helpers for the monitor path.
//
// The package intentionally does not implement FFT itself. It operates on
// complex bins produced by an external FFT backend.
package spectrum

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// MinDB is the floor applied by dB conversions.
const MinDB = -130.0

const epsPower = 1e-12

// Magnitude returns |X[k]| for each complex spectrum bin.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re := make([]float64, len(in))
	im := make([]float64, len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Magnitude(out, re, im)
	return out
}

// MagnitudeFromParts computes |X[k]| = sqrt(re[k]^2 + im[k]^2) into dst.
// All three slices must have the same length. This is the zero-allocation
// path for callers that keep real and imaginary parts separate.
func MagnitudeFromParts(dst, re, im []float64) {
	vecmath.Magnitude(dst, re, im)
}

// PowerFromParts computes re[k]^2 + im[k]^2 into dst.
// All three slices must have the same length.
func PowerFromParts(dst, re, im []float64) {
	vecmath.Power(dst, re, im)
}

// MagnitudeDB converts a linear magnitude to decibels, clamped at [MinDB].
func MagnitudeDB(mag float64) float64 {
	db := 20 * math.Log10(math.Max(epsPower, mag))
	if db < MinDB {
		db = MinDB
	}
	return db
}
