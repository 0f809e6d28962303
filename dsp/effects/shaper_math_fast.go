//go:build fastmath

package effects

import "github.com/meko-christian/algo-approx"

// shaperTanh computes the soft-clip transfer function via the identity
// tanh(x) = 1 - 2/(e^(2x)+1) using the fast exponential approximation.
// The saturation cutoffs keep the approximation inside (-1, 1).
func shaperTanh(x float64) float64 {
	if x > 10 {
		return 1
	}

	if x < -10 {
		return -1
	}

	return 1 - 2/(approx.FastExp(2*x)+1)
}
