package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/livefx/dsp/buffer"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for
// reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// MonoBlock wraps samples in a single-channel block.
func MonoBlock(samples []float64) *buffer.Block {
	b := buffer.NewBlock(len(samples), 1)
	copy(b.Channel(0), samples)
	return b
}

// StereoBlock wraps left and right sample slices in a two-channel block.
// Both slices must have the same length.
func StereoBlock(left, right []float64) *buffer.Block {
	b := buffer.NewBlock(len(left), 2)
	copy(b.Channel(0), left)
	copy(b.Channel(1), right)
	return b
}
