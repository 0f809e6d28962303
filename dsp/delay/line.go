// Package delay provides the fixed-capacity circular delay line underlying
// the time-based effects. Capacity is set at construction and never changes
// afterwards; runtime delay changes only move the read offset.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/livefx/dsp/interp"
)

// Line is a circular delay line. The write pointer advances monotonically
// modulo the fixed capacity.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed capacity.
func New(capacity int) (*Line, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay capacity must be > 0: %d", capacity)
	}
	return &Line{buffer: make([]float64, capacity)}, nil
}

// Len returns the line capacity in samples.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write stores one sample and advances the write pointer.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample written delay steps ago. Delays are clamped to
// the line capacity.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if delay < 0 {
		delay = 0
	}
	if delay >= size {
		delay = size - 1
	}
	readPos := d.writePos - delay
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// ReadFractional reads a non-integer delay with linear interpolation
// between the two neighboring samples.
func (d *Line) ReadFractional(delay float64) float64 {
	size := len(d.buffer)
	if delay < 0 {
		delay = 0
	}
	maxDelay := float64(size - 2)
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)

	return interp.Linear2(t, d.Read(p), d.Read(p+1))
}

// ReadWriteFeedback reads an integer delay and writes input plus the
// delayed sample scaled by feedback, advancing the write pointer. This is
// the classic echo recurrence done in one step.
func (d *Line) ReadWriteFeedback(input, feedback float64, delay int) float64 {
	delayed := d.Read(delay)
	d.Write(input + delayed*feedback)
	return delayed
}

// Reset clears line state without reallocating.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}
