package effects

import (
	"fmt"

	"github.com/cwbudde/livefx/dsp/buffer"
)

const (
	defaultDistortionDrive = 5.0
	defaultDistortionTone  = 0.5
	defaultDistortionLevel = 0.5

	minDistortionDrive = 1.0
	maxDistortionDrive = 20.0

	// Tone maps onto the one-pole coefficient range [0.1, 0.9]:
	// low tone filters heavily, high tone passes nearly unfiltered.
	toneCoefOffset = 0.1
	toneCoefScale  = 0.8
)

// Distortion is a hyperbolic-tangent waveshaper with a one-pole tone
// filter and output level. The clip stage is bounded, so the output is
// always inside (-level, level).
type Distortion struct {
	meta

	drive float64
	tone  float64
	level float64

	// Per-channel tone filter history, the only DSP state.
	filterState []float64
}

// NewDistortion creates a distortion for the given stream layout with
// practical defaults (drive 5, tone 0.5, level 0.5).
func NewDistortion(sampleRate float64, channels int) (*Distortion, error) {
	if err := validSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("distortion: %w", err)
	}
	if err := validChannels(channels); err != nil {
		return nil, fmt.Errorf("distortion: %w", err)
	}

	return &Distortion{
		meta:        meta{name: "distortion", enabled: true},
		drive:       defaultDistortionDrive,
		tone:        defaultDistortionTone,
		level:       defaultDistortionLevel,
		filterState: make([]float64, channels),
	}, nil
}

// SetDrive sets the pre-shape gain, clamped into [1, 20].
func (d *Distortion) SetDrive(drive float64) error {
	v, err := clampFinite("distortion drive", drive, minDistortionDrive, maxDistortionDrive)
	if err != nil {
		return err
	}

	d.drive = v

	return nil
}

// SetTone sets the tone control, clamped into [0, 1].
func (d *Distortion) SetTone(tone float64) error {
	v, err := clampFinite("distortion tone", tone, 0, 1)
	if err != nil {
		return err
	}

	d.tone = v

	return nil
}

// SetLevel sets the output level, clamped into [0, 1].
func (d *Distortion) SetLevel(level float64) error {
	v, err := clampFinite("distortion level", level, 0, 1)
	if err != nil {
		return err
	}

	d.level = v

	return nil
}

// Drive returns the pre-shape gain.
func (d *Distortion) Drive() float64 { return d.drive }

// Tone returns the tone control value.
func (d *Distortion) Tone() float64 { return d.tone }

// Level returns the output level.
func (d *Distortion) Level() float64 { return d.level }

// SetParam dispatches a named parameter to its setter.
func (d *Distortion) SetParam(name string, value float64) error {
	switch name {
	case "drive":
		return d.SetDrive(value)
	case "tone":
		return d.SetTone(value)
	case "level":
		return d.SetLevel(value)
	default:
		return fmt.Errorf("%w: distortion %q", ErrUnknownParam, name)
	}
}

// Params returns the current parameter values.
func (d *Distortion) Params() map[string]float64 {
	return map[string]float64{
		"drive": d.drive,
		"tone":  d.tone,
		"level": d.level,
	}
}

// Reset clears the tone filter histories.
func (d *Distortion) Reset() {
	for c := range d.filterState {
		d.filterState[c] = 0
	}
}

// Process applies drive, soft clip, tone filter, and level in place.
func (d *Distortion) Process(block *buffer.Block) error {
	if err := checkShape(block, len(d.filterState)); err != nil {
		return fmt.Errorf("distortion: %w", err)
	}

	coef := toneCoefOffset + toneCoefScale*d.tone

	for c := 0; c < block.Channels(); c++ {
		samples := block.Channel(c)
		state := d.filterState[c]

		for i, in := range samples {
			shaped := shaperTanh(in * d.drive)
			state = state*(1-coef) + shaped*coef
			samples[i] = state * d.level
		}

		d.filterState[c] = state
	}

	return nil
}
