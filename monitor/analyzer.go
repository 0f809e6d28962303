package monitor

import (
	"context"
	"fmt"
	"math/cmplx"
	"sync"
	"time"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/livefx/dsp/spectrum"
	"github.com/cwbudde/livefx/dsp/window"
)

const (
	defaultFFTSize   = 512
	defaultSmoothing = 0.8
)

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*analyzerConfig)

type analyzerConfig struct {
	fftSize   int
	window    window.Type
	smoothing float64
}

// WithFFTSize sets the analysis FFT size. Sizes outside the supported
// power-of-two set fall back to the default.
func WithFFTSize(size int) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		switch size {
		case 256, 512, 1024, 2048, 4096:
			cfg.fftSize = size
		}
	}
}

// WithWindow selects the analysis window.
func WithWindow(t window.Type) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.window = t
	}
}

// WithSmoothing sets the exponential smoothing factor in [0, 0.95]
// applied between successive spectrum frames.
func WithSmoothing(smoothing float64) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		if smoothing >= 0 && smoothing <= 0.95 {
			cfg.smoothing = smoothing
		}
	}
}

// Analyzer is a monitor consumer that drains a Queue at its own cadence
// and maintains a smoothed power spectrum in dB plus a waveform snapshot
// of the most recent block. Absence of new data is a normal, frequent
// outcome: the previous spectrum is simply retained.
type Analyzer struct {
	queue      *Queue
	sampleRate float64
	cfg        analyzerConfig

	plan       *algofft.Plan[complex128]
	coeffs     []float64
	windowGain float64
	fftIn      []complex128
	fftOut     []complex128

	ring         []float64
	write        int
	filled       int
	samplesToHop int
	hop          int

	mu       sync.RWMutex
	db       []float64
	ready    bool
	waveform []float64
}

// NewAnalyzer creates an analyzer reading from queue.
func NewAnalyzer(queue *Queue, sampleRate float64, opts ...AnalyzerOption) (*Analyzer, error) {
	if queue == nil {
		return nil, fmt.Errorf("analyzer: nil queue")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("analyzer: sample rate must be > 0: %f", sampleRate)
	}

	cfg := analyzerConfig{
		fftSize:   defaultFFTSize,
		window:    window.TypeHann,
		smoothing: defaultSmoothing,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	plan, err := algofft.NewPlan64(cfg.fftSize)
	if err != nil {
		return nil, fmt.Errorf("analyzer: fft plan: %w", err)
	}

	coeffs := window.Generate(cfg.window, cfg.fftSize, window.WithPeriodic())

	a := &Analyzer{
		queue:      queue,
		sampleRate: sampleRate,
		cfg:        cfg,
		plan:       plan,
		coeffs:     coeffs,
		windowGain: window.CoherentGain(coeffs),
		fftIn:      make([]complex128, cfg.fftSize),
		fftOut:     make([]complex128, cfg.fftSize),
		ring:       make([]float64, cfg.fftSize),
		hop:        cfg.fftSize / 2,
		db:         make([]float64, cfg.fftSize/2+1),
	}
	for i := range a.db {
		a.db[i] = spectrum.MinDB
	}

	return a, nil
}

// Step performs one rendering cycle: it pulls at most one block from the
// queue and folds it into the spectrum. It returns false when no new block
// was available, in which case the previous state is retained.
func (a *Analyzer) Step() bool {
	block, ok := a.queue.TryPop()
	if !ok {
		return false
	}

	samples := block.Channel(0)

	a.mu.Lock()
	if cap(a.waveform) < len(samples) {
		a.waveform = make([]float64, len(samples))
	}
	a.waveform = a.waveform[:len(samples)]
	copy(a.waveform, samples)
	a.mu.Unlock()

	for _, s := range samples {
		a.feed(s)
	}

	a.queue.Release(block)

	return true
}

// Run drains the queue at the given cadence until ctx is canceled or the
// queue is closed and empty.
func (a *Analyzer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !a.Step() && a.queue.Closed() {
				return
			}
		}
	}
}

// feed pushes one sample into the analysis ring, recomputing the spectrum
// frame every hop once the ring has filled.
func (a *Analyzer) feed(s float64) {
	a.ring[a.write] = s
	a.write++
	if a.write >= a.cfg.fftSize {
		a.write = 0
	}

	if a.filled < a.cfg.fftSize {
		a.filled++
	}

	a.samplesToHop++
	if a.filled < a.cfg.fftSize || a.samplesToHop < a.hop {
		return
	}

	a.samplesToHop = 0
	a.updateFrame()
}

func (a *Analyzer) updateFrame() {
	read := a.write
	for i := 0; i < a.cfg.fftSize; i++ {
		a.fftIn[i] = complex(a.ring[read]*a.coeffs[i], 0)

		read++
		if read >= a.cfg.fftSize {
			read = 0
		}
	}

	if err := a.plan.Forward(a.fftOut, a.fftIn); err != nil {
		return
	}

	norm := float64(a.cfg.fftSize) * a.windowGain
	if norm <= 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	last := len(a.db) - 1
	for k := 0; k <= last; k++ {
		mag := cmplx.Abs(a.fftOut[k]) / norm
		if k > 0 && k < last {
			mag *= 2
		}

		valDB := spectrum.MagnitudeDB(mag)

		if !a.ready {
			a.db[k] = valDB
			continue
		}

		a.db[k] = a.cfg.smoothing*a.db[k] + (1-a.cfg.smoothing)*valDB
	}

	a.ready = true
}

// Ready reports whether at least one spectrum frame has been computed.
func (a *Analyzer) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ready
}

// SpectrumDB returns a copy of the current spectrum in dBFS, one value per
// bin from DC to Nyquist.
func (a *Analyzer) SpectrumDB() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]float64, len(a.db))
	copy(out, a.db)
	return out
}

// Waveform returns a copy of the most recently drained block's first
// channel, or nil if nothing has arrived yet.
func (a *Analyzer) Waveform() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.waveform) == 0 {
		return nil
	}
	out := make([]float64, len(a.waveform))
	copy(out, a.waveform)
	return out
}

// BinFrequency returns the center frequency of spectrum bin k in Hz.
func (a *Analyzer) BinFrequency(k int) float64 {
	return float64(k) * a.sampleRate / float64(a.cfg.fftSize)
}
