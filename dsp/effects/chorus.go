package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/livefx/dsp/buffer"
	"github.com/cwbudde/livefx/dsp/delay"
)

const (
	defaultChorusRate  = 1.5
	defaultChorusDepth = 0.3
	defaultChorusWet   = 0.5

	minChorusRate = 0.1
	maxChorusRate = 10.0

	chorusBaseDelaySeconds = 0.02
	chorusMaxDelaySeconds  = 0.05

	// The right channel's oscillator runs a quarter cycle ahead for
	// stereo width.
	chorusStereoPhaseOffset = math.Pi / 2
)

// Chorus is a modulated delay. A low-frequency oscillator sweeps the read
// position around a base delay; the delayed signal is read with linear
// interpolation and mixed with the dry input. The delay line has no
// feedback.
type Chorus struct {
	meta

	sampleRate float64
	rate       float64
	depth      float64
	wet        float64

	baseDelaySamples float64
	phase            float64
	phaseIncrement   float64
	lines            []*delay.Line
}

// NewChorus creates a chorus for the given stream layout with practical
// defaults (rate 1.5 Hz, depth 0.3, wet 0.5).
func NewChorus(sampleRate float64, channels int) (*Chorus, error) {
	if err := validSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("chorus: %w", err)
	}
	if err := validChannels(channels); err != nil {
		return nil, fmt.Errorf("chorus: %w", err)
	}

	// Capacity covers base*(1+0.5*maxDepth) with headroom, so the
	// modulated read never leaves allocated storage.
	capacity := int(math.Ceil(chorusMaxDelaySeconds * sampleRate))

	c := &Chorus{
		meta:             meta{name: "chorus", enabled: true},
		sampleRate:       sampleRate,
		depth:            defaultChorusDepth,
		wet:              defaultChorusWet,
		baseDelaySamples: chorusBaseDelaySeconds * sampleRate,
		lines:            make([]*delay.Line, channels),
	}
	for i := range c.lines {
		line, err := delay.New(capacity)
		if err != nil {
			return nil, fmt.Errorf("chorus: %w", err)
		}
		c.lines[i] = line
	}

	if err := c.SetRate(defaultChorusRate); err != nil {
		return nil, err
	}

	return c, nil
}

// SetRate sets the oscillator rate in Hz, clamped into [0.1, 10].
func (c *Chorus) SetRate(rate float64) error {
	v, err := clampFinite("chorus rate", rate, minChorusRate, maxChorusRate)
	if err != nil {
		return err
	}

	c.rate = v
	c.phaseIncrement = 2 * math.Pi * v / c.sampleRate

	return nil
}

// SetDepth sets the modulation depth, clamped into [0, 1].
func (c *Chorus) SetDepth(depth float64) error {
	v, err := clampFinite("chorus depth", depth, 0, 1)
	if err != nil {
		return err
	}

	c.depth = v

	return nil
}

// SetWet sets the wet/dry mix, clamped into [0, 1].
func (c *Chorus) SetWet(wet float64) error {
	v, err := clampFinite("chorus wet", wet, 0, 1)
	if err != nil {
		return err
	}

	c.wet = v

	return nil
}

// Rate returns the oscillator rate in Hz.
func (c *Chorus) Rate() float64 { return c.rate }

// Depth returns the modulation depth.
func (c *Chorus) Depth() float64 { return c.depth }

// Wet returns the wet/dry mix.
func (c *Chorus) Wet() float64 { return c.wet }

// SetParam dispatches a named parameter to its setter.
func (c *Chorus) SetParam(name string, value float64) error {
	switch name {
	case "rate":
		return c.SetRate(value)
	case "depth":
		return c.SetDepth(value)
	case "wet":
		return c.SetWet(value)
	default:
		return fmt.Errorf("%w: chorus %q", ErrUnknownParam, name)
	}
}

// Params returns the current parameter values.
func (c *Chorus) Params() map[string]float64 {
	return map[string]float64{
		"rate":  c.rate,
		"depth": c.depth,
		"wet":   c.wet,
	}
}

// Reset clears the delay lines and the oscillator phase.
func (c *Chorus) Reset() {
	for _, line := range c.lines {
		line.Reset()
	}
	c.phase = 0
}

// Process applies the modulated delay in place. The oscillator phase
// advances once per frame; channel c's oscillator is offset by c·π/2 and
// channel c's samples touch only line c.
func (c *Chorus) Process(block *buffer.Block) error {
	if err := checkShape(block, len(c.lines)); err != nil {
		return fmt.Errorf("chorus: %w", err)
	}

	channels := block.Channels()
	frames := block.Frames()

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			samples := block.Channel(ch)
			in := samples[i]

			lfo := math.Sin(c.phase + float64(ch)*chorusStereoPhaseOffset)
			delaySamples := c.baseDelaySamples + lfo*c.depth*c.baseDelaySamples*0.5

			line := c.lines[ch]
			delayed := line.ReadFractional(delaySamples)
			line.Write(in)

			samples[i] = clipUnit(in*(1-c.wet) + delayed*c.wet)
		}

		c.phase += c.phaseIncrement
		if c.phase >= 2*math.Pi {
			c.phase -= 2 * math.Pi
		}
	}

	return nil
}
