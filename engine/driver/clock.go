package driver

import (
	"errors"
	"sync"
	"time"

	"github.com/cwbudde/livefx/dsp/buffer"
)

// Clock is a device-free driver paced by the wall clock. It invokes the
// process callback once per block duration, pulling input from a Source
// (silence when none is set) and discarding the output after measuring
// the deadline. It backs tests and headless demo runs.
type Clock struct {
	cfg        Config
	source     Source
	onUnderrun func()

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// ClockOption configures a Clock driver.
type ClockOption func(*Clock)

// WithSource sets the input source. Without one the input is silence.
func WithSource(source Source) ClockOption {
	return func(c *Clock) {
		c.source = source
	}
}

// WithUnderrunFunc installs a hook invoked whenever a callback overruns
// its period budget.
func WithUnderrunFunc(fn func()) ClockOption {
	return func(c *Clock) {
		c.onUnderrun = fn
	}
}

// NewClock creates a clock driver for the given stream configuration.
func NewClock(cfg Config, opts ...ClockOption) (*Clock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Clock{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Start begins the pacing loop.
func (c *Clock) Start(process Process) error {
	if process == nil {
		return errors.New("clock driver: nil process callback")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return errors.New("clock driver: already running")
	}

	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.running = true

	go c.run(process, c.stop, c.done)

	return nil
}

func (c *Clock) run(process Process, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	in := buffer.NewBlock(c.cfg.BlockSize, c.cfg.Channels)
	out := buffer.NewBlock(c.cfg.BlockSize, c.cfg.Channels)
	period := c.cfg.BlockDuration()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if c.source != nil {
				c.source.Fill(in)
			} else {
				in.Zero()
			}

			start := time.Now()
			process(in, out)

			if time.Since(start) > period && c.onUnderrun != nil {
				c.onUnderrun()
			}
		}
	}
}

// Stop halts the pacing loop. When Stop returns, the last callback has
// finished and no further one will begin.
func (c *Clock) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	close(c.stop)
	<-c.done
	c.running = false

	return nil
}

// Latency reports the scheduling latency of the pacing loop, which the
// clock driver knows exactly: one period between capture and delivery.
func (c *Clock) Latency() (time.Duration, bool) {
	return c.cfg.BlockDuration(), true
}
