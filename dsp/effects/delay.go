package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/livefx/dsp/buffer"
	"github.com/cwbudde/livefx/dsp/delay"
)

const (
	defaultDelayTimeSeconds = 0.2
	defaultDelayFeedback    = 0.4
	defaultDelayWet         = 0.3

	minDelayTimeSeconds = 0.001
	maxDelayTimeSeconds = 2.0
	maxDelayFeedback    = 0.99
)

// Delay is a ring-buffer echo with feedback and dry/wet mix.
//
// Each channel owns its own delay line, sized once at construction to the
// maximum configurable delay. Changing the delay time at runtime moves only
// the read offset.
type Delay struct {
	meta

	sampleRate   float64
	delaySeconds float64
	feedback     float64
	wet          float64

	delaySamples int
	lines        []*delay.Line
}

// NewDelay creates a delay for the given stream layout with practical
// defaults (200 ms, feedback 0.4, wet 0.3).
func NewDelay(sampleRate float64, channels int) (*Delay, error) {
	if err := validSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}
	if err := validChannels(channels); err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}

	capacity := int(math.Ceil(maxDelayTimeSeconds*sampleRate)) + 1

	d := &Delay{
		meta:       meta{name: "delay", enabled: true},
		sampleRate: sampleRate,
		feedback:   defaultDelayFeedback,
		wet:        defaultDelayWet,
		lines:      make([]*delay.Line, channels),
	}
	for c := range d.lines {
		line, err := delay.New(capacity)
		if err != nil {
			return nil, fmt.Errorf("delay: %w", err)
		}
		d.lines[c] = line
	}

	if err := d.SetTime(defaultDelayTimeSeconds); err != nil {
		return nil, err
	}

	return d, nil
}

// SetTime sets the delay time in seconds, clamped into [0.001, 2].
// Only the read offset changes; the line capacity is fixed.
func (d *Delay) SetTime(seconds float64) error {
	v, err := clampFinite("delay time", seconds, minDelayTimeSeconds, maxDelayTimeSeconds)
	if err != nil {
		return err
	}

	d.delaySeconds = v
	d.delaySamples = int(math.Round(v * d.sampleRate))
	if d.delaySamples < 1 {
		d.delaySamples = 1
	}

	return nil
}

// SetFeedback sets the feedback amount, clamped into [0, 0.99].
func (d *Delay) SetFeedback(feedback float64) error {
	v, err := clampFinite("delay feedback", feedback, 0, maxDelayFeedback)
	if err != nil {
		return err
	}

	d.feedback = v

	return nil
}

// SetWet sets the wet/dry mix, clamped into [0, 1].
func (d *Delay) SetWet(wet float64) error {
	v, err := clampFinite("delay wet", wet, 0, 1)
	if err != nil {
		return err
	}

	d.wet = v

	return nil
}

// Time returns the delay time in seconds.
func (d *Delay) Time() float64 { return d.delaySeconds }

// Feedback returns the feedback amount.
func (d *Delay) Feedback() float64 { return d.feedback }

// Wet returns the wet/dry mix.
func (d *Delay) Wet() float64 { return d.wet }

// DelaySamples returns the current read offset in samples.
func (d *Delay) DelaySamples() int { return d.delaySamples }

// SetParam dispatches a named parameter to its setter.
func (d *Delay) SetParam(name string, value float64) error {
	switch name {
	case "time":
		return d.SetTime(value)
	case "feedback":
		return d.SetFeedback(value)
	case "wet":
		return d.SetWet(value)
	default:
		return fmt.Errorf("%w: delay %q", ErrUnknownParam, name)
	}
}

// Params returns the current parameter values.
func (d *Delay) Params() map[string]float64 {
	return map[string]float64{
		"time":     d.delaySeconds,
		"feedback": d.feedback,
		"wet":      d.wet,
	}
}

// Reset clears all delay line state.
func (d *Delay) Reset() {
	for _, line := range d.lines {
		line.Reset()
	}
}

// Process applies the echo in place. Channel c reads from and writes to
// line c exclusively; a mono block never touches the second line.
func (d *Delay) Process(block *buffer.Block) error {
	if err := checkShape(block, len(d.lines)); err != nil {
		return fmt.Errorf("delay: %w", err)
	}

	for c := 0; c < block.Channels(); c++ {
		samples := block.Channel(c)
		line := d.lines[c]

		for i, in := range samples {
			delayed := line.ReadWriteFeedback(in, d.feedback, d.delaySamples)
			samples[i] = clipUnit(in*(1-d.wet) + delayed*d.wet)
		}
	}

	return nil
}
