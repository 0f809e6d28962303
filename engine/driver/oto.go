package driver

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/livefx/dsp/buffer"
)

// Playback streams processed audio to the default output device via oto.
// Input blocks come from a Source, making it a play-through rig rather
// than a capture device. The oto mixer pulls samples on its own real-time
// goroutine; Read is the hot path.
//
// oto allows one context per process, so at most one Playback driver can
// be active at a time.
type Playback struct {
	cfg    Config
	source Source

	ctx    *oto.Context
	player *oto.Player

	process atomic.Pointer[Process]
	mu      sync.Mutex
	started bool

	in      *buffer.Block
	out     *buffer.Block
	scratch []float32
	pending []byte
	unread  int
}

// NewPlayback creates a playback driver for the given stream
// configuration. The output device is opened immediately so configuration
// problems surface before Start.
func NewPlayback(cfg Config, source Source) (*Playback, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   2 * cfg.BlockDuration(),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("playback driver: %w", err)
	}
	<-ready

	return &Playback{
		cfg:     cfg,
		source:  source,
		ctx:     ctx,
		in:      buffer.NewBlock(cfg.BlockSize, cfg.Channels),
		out:     buffer.NewBlock(cfg.BlockSize, cfg.Channels),
		scratch: make([]float32, cfg.BlockSize*cfg.Channels),
		pending: make([]byte, cfg.BlockSize*cfg.Channels*4),
	}, nil
}

// Start begins playback.
func (p *Playback) Start(process Process) error {
	if process == nil {
		return errors.New("playback driver: nil process callback")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New("playback driver: already running")
	}

	p.process.Store(&process)
	p.player = p.ctx.NewPlayer(p)
	p.player.Play()
	p.started = true

	return nil
}

// Read feeds the oto mixer. It generates audio one fixed-size block at a
// time, buffering whatever the mixer did not consume.
func (p *Playback) Read(b []byte) (int, error) {
	procPtr := p.process.Load()
	if procPtr == nil {
		for i := range b {
			b[i] = 0
		}
		return len(b), nil
	}
	process := *procPtr

	n := 0
	for n < len(b) {
		if p.unread == 0 {
			if p.source != nil {
				p.source.Fill(p.in)
			} else {
				p.in.Zero()
			}

			process(p.in, p.out)

			if err := p.out.WriteInterleaved(p.scratch); err != nil {
				return n, err
			}
			floatsToBytes(p.pending, p.scratch)
			p.unread = len(p.pending)
		}

		copied := copy(b[n:], p.pending[len(p.pending)-p.unread:])
		p.unread -= copied
		n += copied
	}

	return n, nil
}

// Stop halts playback and releases the player. When Stop returns the
// mixer no longer pulls from this driver, so no further callbacks begin.
func (p *Playback) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return nil
	}

	p.process.Store(nil)
	err := p.player.Close()
	p.player = nil
	p.started = false

	if err != nil {
		return fmt.Errorf("playback driver: %w", err)
	}
	return nil
}

// Latency is not reported by oto; callers fall back to their own
// estimate.
func (p *Playback) Latency() (time.Duration, bool) {
	return 0, false
}

// floatsToBytes encodes float32 samples as little-endian bytes.
func floatsToBytes(dst []byte, src []float32) {
	for i, s := range src {
		bits := math.Float32bits(s)
		dst[4*i] = byte(bits)
		dst[4*i+1] = byte(bits >> 8)
		dst[4*i+2] = byte(bits >> 16)
		dst[4*i+3] = byte(bits >> 24)
	}
}
