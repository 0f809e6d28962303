//go:build !fastmath

package effects

import "math"

// shaperTanh computes the soft-clip transfer function exactly.
func shaperTanh(x float64) float64 {
	return math.Tanh(x)
}
