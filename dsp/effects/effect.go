package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/livefx/dsp/buffer"
)

// ErrUnknownParam is returned when a parameter name is not recognized
// by an effect.
var ErrUnknownParam = errors.New("unknown parameter")

// Effect is the uniform capability set implemented by every processor in
// the chain. Implementations own their DSP state exclusively; the engine
// serializes all access under its chain lock.
type Effect interface {
	// Name identifies the effect in status listings.
	Name() string

	// Enabled reports whether the effect participates in processing.
	// A disabled effect is the identity transform.
	Enabled() bool

	// SetEnabled toggles participation without touching DSP state.
	SetEnabled(enabled bool)

	// Process transforms the block in place, preserving its shape.
	// Implementations must not allocate, block, or panic.
	Process(block *buffer.Block) error

	// Reset clears internal state (delay lines, filter histories,
	// oscillator phase) without reallocating.
	Reset()

	// SetParam sets a named parameter. Non-finite values and unknown
	// names are rejected; finite values are clamped into the parameter's
	// documented stable range.
	SetParam(name string, value float64) error

	// Params returns a snapshot of the current parameter values.
	Params() map[string]float64
}

// meta carries the identity and bypass flag shared by all effects.
type meta struct {
	name    string
	enabled bool
}

func (m *meta) Name() string {
	return m.name
}

func (m *meta) Enabled() bool {
	return m.enabled
}

func (m *meta) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// Toggle flips the enabled flag.
func (m *meta) Toggle() {
	m.enabled = !m.enabled
}

// clampFinite rejects non-finite values and clamps finite ones into
// [lo, hi].
func clampFinite(param string, v, lo, hi float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be finite: %f", param, v)
	}
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v, nil
}

// validSampleRate rejects non-positive or non-finite sample rates.
func validSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("sample rate must be > 0 and finite: %f", sampleRate)
	}
	return nil
}

// validChannels rejects channel counts outside mono/stereo.
func validChannels(channels int) error {
	if channels < 1 || channels > 2 {
		return fmt.Errorf("channel count must be 1 or 2: %d", channels)
	}
	return nil
}

// checkShape verifies that a block fits the channel layout the effect was
// built for. Blocks with fewer channels are fine: a mono block through a
// stereo-configured effect touches only the first channel's state.
func checkShape(block *buffer.Block, channels int) error {
	if block == nil {
		return errors.New("nil block")
	}
	if block.Channels() > channels {
		return fmt.Errorf("block has %d channels, effect configured for %d", block.Channels(), channels)
	}
	return nil
}

// clipUnit bounds a sample into [-1, 1] before it leaves an effect.
func clipUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
