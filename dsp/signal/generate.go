// Package signal provides deterministic streaming signal generators used
// as demo input sources and test stimuli.
package signal

import (
	"math"
	"math/rand"

	"github.com/cwbudde/livefx/dsp/buffer"
	"github.com/cwbudde/livefx/dsp/core"
)

// Waveform selects what a Generator produces.
type Waveform int

const (
	WaveSilence Waveform = iota
	WaveSine
	WaveNoise
	WaveImpulse
)

// Generator produces a continuous signal block by block. All channels of a
// filled block carry the same samples. Generators are deterministic: the
// same configuration always yields the same stream.
type Generator struct {
	cfg       core.ProcessorConfig
	wave      Waveform
	freqHz    float64
	amplitude float64
	seed      int64

	phase   float64
	rng     *rand.Rand
	emitted bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithFrequency sets the sine frequency in Hz.
func WithFrequency(freqHz float64) Option {
	return func(g *Generator) {
		if freqHz > 0 {
			g.freqHz = freqHz
		}
	}
}

// WithAmplitude sets the peak amplitude.
func WithAmplitude(amplitude float64) Option {
	return func(g *Generator) {
		if amplitude >= 0 {
			g.amplitude = amplitude
		}
	}
}

// WithSeed sets the deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator for the given waveform.
func NewGenerator(wave Waveform, coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:       core.ApplyProcessorOptions(coreOpts...),
		wave:      wave,
		freqHz:    440,
		amplitude: 0.5,
		seed:      1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.Reset()
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Reset rewinds the stream to its beginning.
func (g *Generator) Reset() {
	g.phase = 0
	g.rng = rand.New(rand.NewSource(g.seed))
	g.emitted = false
}

// Fill writes the next block of the stream into every channel of block.
func (g *Generator) Fill(block *buffer.Block) {
	if block == nil || block.Channels() == 0 {
		return
	}

	first := block.Channel(0)

	switch g.wave {
	case WaveSine:
		step := 2 * math.Pi * g.freqHz / g.cfg.SampleRate
		for i := range first {
			first[i] = g.amplitude * math.Sin(g.phase)
			g.phase += step
			if g.phase >= 2*math.Pi {
				g.phase -= 2 * math.Pi
			}
		}
	case WaveNoise:
		for i := range first {
			first[i] = (g.rng.Float64()*2 - 1) * g.amplitude
		}
	case WaveImpulse:
		for i := range first {
			first[i] = 0
		}
		if !g.emitted && len(first) > 0 {
			first[0] = g.amplitude
			g.emitted = true
		}
	default:
		for i := range first {
			first[i] = 0
		}
	}

	for c := 1; c < block.Channels(); c++ {
		copy(block.Channel(c), first)
	}
}
