package engine

import (
	"fmt"
	"time"

	"github.com/cwbudde/livefx/dsp/effects"
)

// Control surface. Every operation here takes the chain lock and must be
// called from a non-real-time context. Critical sections are field
// assignments and slice splices only, bounding the stall imposed on the
// audio callback.

// Add appends an effect to the end of the chain.
func (e *Engine) Add(fx effects.Effect) error {
	if fx == nil {
		return ErrNilEffect
	}

	e.mu.Lock()
	e.chain = append(e.chain, fx)
	index := len(e.chain) - 1
	e.mu.Unlock()

	e.log.Info("effect added", "effect", fx.Name(), "index", index)

	return nil
}

// Remove deletes the effect at index, preserving the order of the rest.
func (e *Engine) Remove(index int) error {
	e.mu.Lock()

	if index < 0 || index >= len(e.chain) {
		e.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	name := e.chain[index].Name()
	e.chain = append(e.chain[:index], e.chain[index+1:]...)

	e.mu.Unlock()

	e.log.Info("effect removed", "effect", name, "index", index)

	return nil
}

// Move reorders the chain by moving the effect at from to position to.
func (e *Engine) Move(from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if from < 0 || from >= len(e.chain) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, from)
	}
	if to < 0 || to >= len(e.chain) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, to)
	}

	fx := e.chain[from]
	e.chain = append(e.chain[:from], e.chain[from+1:]...)

	e.chain = append(e.chain, nil)
	copy(e.chain[to+1:], e.chain[to:])
	e.chain[to] = fx

	return nil
}

// Len returns the number of effects in the chain.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.chain)
}

// SetEnabled toggles the effect at index in or out of processing.
func (e *Engine) SetEnabled(index int, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.chain) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	e.chain[index].SetEnabled(enabled)

	return nil
}

// SetParameter sets a named parameter on the effect at index. Values are
// validated by the effect before any state changes; invalid values never
// reach chain state.
func (e *Engine) SetParameter(index int, name string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.chain) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	return e.chain[index].SetParam(name, value)
}

// ResetEffects clears the DSP state of every effect in the chain.
func (e *Engine) ResetEffects() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, fx := range e.chain {
		fx.Reset()
	}
}

// EffectStatus describes one chain entry.
type EffectStatus struct {
	Name    string
	Enabled bool
	Params  map[string]float64
}

// LatencyEstimate carries the engine's latency figure. Approximate marks
// the fixed-multiplier fallback used when the driver reports nothing.
type LatencyEstimate struct {
	Value       time.Duration
	Approximate bool
}

// Status is a point-in-time snapshot of the engine.
type Status struct {
	Running      bool
	SampleRate   int
	BlockSize    int
	Channels     int
	Effects      []EffectStatus
	Frames       uint64
	Underruns    uint64
	MonitorDrops uint64
	PeakBlock    time.Duration
	Latency      LatencyEstimate
}

// Status reports active effects, parameter values, and cumulative
// counters for diagnosis.
func (e *Engine) Status() Status {
	e.mu.Lock()
	fxs := make([]EffectStatus, len(e.chain))
	for i, fx := range e.chain {
		fxs[i] = EffectStatus{
			Name:    fx.Name(),
			Enabled: fx.Enabled(),
			Params:  fx.Params(),
		}
	}
	e.mu.Unlock()

	latency := LatencyEstimate{Value: 2 * e.cfg.BlockDuration(), Approximate: true}
	if measured, ok := e.drv.Latency(); ok {
		latency = LatencyEstimate{Value: measured}
	}

	return Status{
		Running:      e.running.Load(),
		SampleRate:   e.cfg.SampleRate,
		BlockSize:    e.cfg.BlockSize,
		Channels:     e.cfg.Channels,
		Effects:      fxs,
		Frames:       e.frames.Load(),
		Underruns:    e.underruns.Load(),
		MonitorDrops: e.queue.Dropped(),
		PeakBlock:    time.Duration(e.peakProcNS.Load()),
		Latency:      latency,
	}
}
