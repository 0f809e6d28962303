package effects

import (
	"fmt"

	"github.com/cwbudde/livefx/dsp/buffer"
)

const (
	reverbNumCombs     = 8
	reverbNumAllpasses = 4

	reverbAllpassGain = 0.5

	// Comb feedback is 0.7 + 0.28*roomSize, giving the classic ~0.84 at
	// the default room size of 0.5 while staying safely below unity.
	reverbFeedbackOffset = 0.7
	reverbFeedbackScale  = 0.28

	defaultReverbRoomSize = 0.5
	defaultReverbDamping  = 0.5
	defaultReverbWet      = 0.3
)

// Mutually incommensurate comb and allpass lengths in samples.
var (
	reverbCombTunings    = [reverbNumCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	reverbAllpassTunings = [reverbNumAllpasses]int{556, 441, 341, 225}
)

type reverbComb struct {
	buffer      []float64
	index       int
	filterStore float64
}

func newReverbComb(size int) reverbComb {
	return reverbComb{buffer: make([]float64, size)}
}

// process runs the comb recurrence with a one-pole damping low-pass in the
// feedback path and returns the delayed sample.
func (c *reverbComb) process(input, feedback, damping float64) float64 {
	out := c.buffer[c.index]

	filtered := out*(1-damping) + c.filterStore*damping
	if filtered < 1e-23 && filtered > -1e-23 {
		filtered = 0
	}
	c.filterStore = filtered

	c.buffer[c.index] = input + filtered*feedback

	c.index++
	if c.index >= len(c.buffer) {
		c.index = 0
	}

	return out
}

func (c *reverbComb) reset() {
	for i := range c.buffer {
		c.buffer[i] = 0
	}
	c.index = 0
	c.filterStore = 0
}

type reverbAllpass struct {
	buffer []float64
	index  int
}

func newReverbAllpass(size int) reverbAllpass {
	return reverbAllpass{buffer: make([]float64, size)}
}

func (a *reverbAllpass) process(input float64) float64 {
	delayed := a.buffer[a.index]

	a.buffer[a.index] = input + delayed*reverbAllpassGain
	out := delayed - input*reverbAllpassGain

	a.index++
	if a.index >= len(a.buffer) {
		a.index = 0
	}

	return out
}

func (a *reverbAllpass) reset() {
	for i := range a.buffer {
		a.buffer[i] = 0
	}
	a.index = 0
}

// reverbChannel is the full Schroeder topology for one channel: eight
// parallel combs summed and scaled by 1/8, then four series allpasses.
type reverbChannel struct {
	combs   [reverbNumCombs]reverbComb
	allpass [reverbNumAllpasses]reverbAllpass
}

func newReverbChannel() reverbChannel {
	var ch reverbChannel
	for i, size := range reverbCombTunings {
		ch.combs[i] = newReverbComb(size)
	}
	for i, size := range reverbAllpassTunings {
		ch.allpass[i] = newReverbAllpass(size)
	}
	return ch
}

func (ch *reverbChannel) process(input, feedback, damping float64) float64 {
	var acc float64
	for i := range ch.combs {
		acc += ch.combs[i].process(input, feedback, damping)
	}
	acc /= reverbNumCombs

	for i := range ch.allpass {
		acc = ch.allpass[i].process(acc)
	}

	return acc
}

func (ch *reverbChannel) reset() {
	for i := range ch.combs {
		ch.combs[i].reset()
	}
	for i := range ch.allpass {
		ch.allpass[i].reset()
	}
}

// Reverb is a Schroeder-topology reverb with room size, damping, and
// dry/wet mix. Every channel owns an independent filter bank.
type Reverb struct {
	meta

	roomSize float64
	damping  float64
	wet      float64

	feedback float64
	channels []reverbChannel
}

// NewReverb creates a reverb for the given stream layout with the classic
// defaults (room 0.5, damping 0.5, wet 0.3).
func NewReverb(sampleRate float64, channels int) (*Reverb, error) {
	if err := validSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("reverb: %w", err)
	}
	if err := validChannels(channels); err != nil {
		return nil, fmt.Errorf("reverb: %w", err)
	}

	r := &Reverb{
		meta:     meta{name: "reverb", enabled: true},
		damping:  defaultReverbDamping,
		wet:      defaultReverbWet,
		channels: make([]reverbChannel, channels),
	}
	for c := range r.channels {
		r.channels[c] = newReverbChannel()
	}

	if err := r.SetRoomSize(defaultReverbRoomSize); err != nil {
		return nil, err
	}

	return r, nil
}

// SetRoomSize sets the room size, clamped into [0, 1]. Room size scales
// the comb feedback; the filter lengths are fixed.
func (r *Reverb) SetRoomSize(roomSize float64) error {
	v, err := clampFinite("reverb room size", roomSize, 0, 1)
	if err != nil {
		return err
	}

	r.roomSize = v
	r.feedback = reverbFeedbackOffset + reverbFeedbackScale*v

	return nil
}

// SetDamping sets the comb damping coefficient, clamped into [0, 1].
func (r *Reverb) SetDamping(damping float64) error {
	v, err := clampFinite("reverb damping", damping, 0, 1)
	if err != nil {
		return err
	}

	r.damping = v

	return nil
}

// SetWet sets the wet/dry mix, clamped into [0, 1].
func (r *Reverb) SetWet(wet float64) error {
	v, err := clampFinite("reverb wet", wet, 0, 1)
	if err != nil {
		return err
	}

	r.wet = v

	return nil
}

// RoomSize returns the room size.
func (r *Reverb) RoomSize() float64 { return r.roomSize }

// Damping returns the damping coefficient.
func (r *Reverb) Damping() float64 { return r.damping }

// Wet returns the wet/dry mix.
func (r *Reverb) Wet() float64 { return r.wet }

// SetParam dispatches a named parameter to its setter.
func (r *Reverb) SetParam(name string, value float64) error {
	switch name {
	case "room_size":
		return r.SetRoomSize(value)
	case "damping":
		return r.SetDamping(value)
	case "wet":
		return r.SetWet(value)
	default:
		return fmt.Errorf("%w: reverb %q", ErrUnknownParam, name)
	}
}

// Params returns the current parameter values.
func (r *Reverb) Params() map[string]float64 {
	return map[string]float64{
		"room_size": r.roomSize,
		"damping":   r.damping,
		"wet":       r.wet,
	}
}

// Reset clears all comb and allpass state.
func (r *Reverb) Reset() {
	for c := range r.channels {
		r.channels[c].reset()
	}
}

// Process applies the reverb in place.
func (r *Reverb) Process(block *buffer.Block) error {
	if err := checkShape(block, len(r.channels)); err != nil {
		return fmt.Errorf("reverb: %w", err)
	}

	for c := 0; c < block.Channels(); c++ {
		samples := block.Channel(c)
		ch := &r.channels[c]

		for i, in := range samples {
			wet := ch.process(in, r.feedback, r.damping)
			samples[i] = clipUnit(in*(1-r.wet) + wet*r.wet)
		}
	}

	return nil
}
