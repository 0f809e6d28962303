// Package driver abstracts the audio I/O collaborator that clocks the
// engine. A driver owns the real-time context: it invokes the engine's
// process callback once per hardware period and hands the result to the
// output device.
package driver

import (
	"fmt"
	"time"

	"github.com/cwbudde/livefx/dsp/buffer"
)

// Process is the per-block callback. The driver owns both blocks; the
// callback must fill out from in before the period deadline and must
// never block or panic.
type Process func(in, out *buffer.Block)

// Source supplies input blocks for drivers without a capture device.
type Source interface {
	// Fill overwrites every channel of block with the next samples of
	// the stream.
	Fill(block *buffer.Block)
}

// Driver runs an audio stream against a Process callback.
type Driver interface {
	// Start opens the stream and begins invoking process. It fails if
	// the driver is already running.
	Start(process Process) error

	// Stop closes the stream. When Stop returns, no further process
	// invocations will begin.
	Stop() error

	// Latency returns the driver-reported output latency when known.
	Latency() (time.Duration, bool)
}

// Config describes the stream a driver runs.
type Config struct {
	SampleRate int
	BlockSize  int
	Channels   int
}

// Validate rejects configurations no stream can run with.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0: %d", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("block size must be > 0: %d", c.BlockSize)
	}
	if c.Channels < 1 || c.Channels > 2 {
		return fmt.Errorf("channel count must be 1 or 2: %d", c.Channels)
	}
	return nil
}

// BlockDuration returns the hardware period for one block.
func (c Config) BlockDuration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(c.BlockSize) / float64(c.SampleRate) * float64(time.Second))
}
