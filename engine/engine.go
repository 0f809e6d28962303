// Package engine implements the real-time processing engine: the ordered
// effect chain, the per-block callback, the control surface, and the
// monitor hand-off.
//
// Three execution contexts meet here. The driver invokes the process
// callback on its real-time goroutine; a control context mutates chain
// structure and effect parameters; a monitor consumer drains processed
// blocks at its own cadence. One chain lock serializes the first two;
// the monitor queue decouples the third.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/livefx/dsp/buffer"
	"github.com/cwbudde/livefx/dsp/effects"
	"github.com/cwbudde/livefx/engine/driver"
	"github.com/cwbudde/livefx/monitor"
)

// Config describes the stream the engine runs.
type Config struct {
	SampleRate int
	BlockSize  int
	Channels   int

	// Device identifiers are passed through to the driver collaborator;
	// empty means the default device.
	InputDevice  string
	OutputDevice string

	// QueueCapacity bounds the monitor queue; zero means the default.
	QueueCapacity int
}

func (c Config) withDefaults() Config {
	if c.SampleRate == 0 {
		c.SampleRate = 48000
	}
	if c.BlockSize == 0 {
		c.BlockSize = 512
	}
	if c.Channels == 0 {
		c.Channels = 2
	}
	return c
}

func (c Config) validate() error {
	return driver.Config{
		SampleRate: c.SampleRate,
		BlockSize:  c.BlockSize,
		Channels:   c.Channels,
	}.Validate()
}

// BlockDuration returns the hardware period for one block.
func (c Config) BlockDuration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(c.BlockSize) / float64(c.SampleRate) * float64(time.Second))
}

// Option configures an Engine.
type Option func(*Engine)

// WithDriver replaces the default clock driver. Callers wiring their own
// driver should route its underrun reports to [Engine.NoteUnderrun].
func WithDriver(d driver.Driver) Option {
	return func(e *Engine) {
		e.drv = d
	}
}

// WithLogger sets the logger for lifecycle events and effect failures.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithSource sets the input source used by the default clock driver.
// Ignored when WithDriver is given.
func WithSource(source driver.Source) Option {
	return func(e *Engine) {
		e.source = source
	}
}

// Engine owns the effect chain and the synchronization discipline around
// it. It is created stopped; Start opens the stream and Stop closes it.
type Engine struct {
	cfg Config
	drv driver.Driver
	log *slog.Logger

	source driver.Source

	// mu is the chain lock: it guards chain structure and every
	// effect's parameter fields. The audio callback holds it across one
	// block; control operations hold it for field assignments and slice
	// splices only.
	mu    sync.Mutex
	chain []effects.Effect

	// Working storage for the callback, allocated once.
	work     *buffer.Block
	snapshot *buffer.Block

	queue *monitor.Queue

	lifecycle sync.Mutex
	running   atomic.Bool

	underruns  atomic.Uint64
	frames     atomic.Uint64
	peakProcNS atomic.Int64
}

// New creates a stopped engine. Configuration problems surface here and
// at Start as [*ConfigError].
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}

	e := &Engine{
		cfg:      cfg,
		log:      slog.Default(),
		work:     buffer.NewBlock(cfg.BlockSize, cfg.Channels),
		snapshot: buffer.NewBlock(cfg.BlockSize, cfg.Channels),
		queue:    monitor.NewQueue(cfg.QueueCapacity),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	if e.drv == nil {
		clock, err := driver.NewClock(driver.Config{
			SampleRate: cfg.SampleRate,
			BlockSize:  cfg.BlockSize,
			Channels:   cfg.Channels,
		}, driver.WithSource(e.source), driver.WithUnderrunFunc(e.NoteUnderrun))
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		e.drv = clock
	}

	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Monitor returns the queue carrying processed block copies to the
// visualization consumer.
func (e *Engine) Monitor() *monitor.Queue {
	return e.queue
}

// Running reports whether the stream is open.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Start validates the configuration and opens the stream. On failure the
// stream is never opened and the engine stays stopped.
func (e *Engine) Start() error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.running.Load() {
		return ErrAlreadyRunning
	}

	if err := e.cfg.validate(); err != nil {
		return &ConfigError{Err: err}
	}

	if err := e.drv.Start(e.process); err != nil {
		return &ConfigError{Err: fmt.Errorf("driver: %w", err)}
	}

	e.running.Store(true)
	e.log.Info("engine started",
		"sample_rate", e.cfg.SampleRate,
		"block_size", e.cfg.BlockSize,
		"channels", e.cfg.Channels,
	)

	return nil
}

// Stop closes the stream and the monitor queue. When Stop returns, no
// further process callbacks will begin and the monitor consumer observes
// a closed queue instead of spinning. Stop never takes the chain lock,
// so it cannot deadlock against a control operation in flight.
func (e *Engine) Stop() error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if !e.running.Load() {
		return ErrNotRunning
	}

	err := e.drv.Stop()
	e.running.Store(false)
	e.queue.Close()

	e.log.Info("engine stopped",
		"frames", e.frames.Load(),
		"underruns", e.underruns.Load(),
		"monitor_drops", e.queue.Dropped(),
		"peak_processing", time.Duration(e.peakProcNS.Load()),
	)

	if err != nil {
		return fmt.Errorf("driver stop: %w", err)
	}
	return nil
}

// NoteUnderrun records one missed deadline. Drivers report deadline
// misses through this hook; they are counted, surfaced via Status, and
// never fatal to the stream.
func (e *Engine) NoteUnderrun() {
	e.underruns.Add(1)
}

// process is the per-block callback, invoked by the driver on its
// real-time goroutine. Nothing may escape it: a failing effect is skipped
// for that block and the chain continues with the pre-effect signal.
func (e *Engine) process(in, out *buffer.Block) {
	start := time.Now()

	e.mu.Lock()

	if err := e.work.CopyFrom(in); err != nil {
		// Shape mismatch means the driver violated its contract;
		// emit silence rather than stale samples.
		e.work.Zero()
	}

	for i, fx := range e.chain {
		if !fx.Enabled() {
			continue
		}

		_ = e.snapshot.CopyFrom(e.work)

		if err := fx.Process(e.work); err != nil {
			_ = e.work.CopyFrom(e.snapshot)
			e.log.Error("effect failed, passing through",
				"effect", fx.Name(), "index", i, "error", err)
		}
	}

	_ = out.CopyFrom(e.work)

	e.mu.Unlock()

	// The queue copies the block itself; no lock is held here, and the
	// push never blocks.
	e.queue.TryPush(e.work)

	e.frames.Add(uint64(e.cfg.BlockSize))
	elapsed := time.Since(start).Nanoseconds()
	for {
		peak := e.peakProcNS.Load()
		if elapsed <= peak || e.peakProcNS.CompareAndSwap(peak, elapsed) {
			break
		}
	}
}
