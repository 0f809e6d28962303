package monitor

import (
	"sync"
	"sync/atomic"

	"github.com/cwbudde/livefx/dsp/buffer"
)

// DefaultQueueCapacity bounds how many blocks may wait for the consumer.
// Small capacities favor freshness over completeness.
const DefaultQueueCapacity = 5

// Queue is the bounded hand-off buffer between the audio path and a
// monitor consumer. The producer side never blocks and never fails: when
// the queue is full the incoming block is dropped. Blocks are copied on
// entry, so producer and consumer never share storage.
type Queue struct {
	mu      sync.RWMutex
	closed  bool
	blocks  chan *buffer.Block
	pool    *buffer.Pool
	dropped atomic.Uint64
}

// NewQueue creates a queue with the given capacity.
// Non-positive capacities fall back to [DefaultQueueCapacity].
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		blocks: make(chan *buffer.Block, capacity),
		pool:   buffer.NewPool(),
	}
}

// TryPush copies block and enqueues the copy. It returns false, without
// waiting, when the queue is full or closed; a full queue drops the new
// block and counts the drop.
func (q *Queue) TryPush(block *buffer.Block) bool {
	if block == nil {
		return false
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	cp := q.pool.Get(block.Frames(), block.Channels())
	if err := cp.CopyFrom(block); err != nil {
		q.pool.Put(cp)
		return false
	}

	select {
	case q.blocks <- cp:
		return true
	default:
		q.pool.Put(cp)
		q.dropped.Add(1)
		return false
	}
}

// TryPop returns the oldest queued block, or (nil, false) without blocking
// when nothing is available. After Close, remaining blocks drain in order
// and subsequent calls keep returning (nil, false). Callers must hand the
// block back via Release when done with it.
func (q *Queue) TryPop() (*buffer.Block, bool) {
	select {
	case b, ok := <-q.blocks:
		if !ok {
			return nil, false
		}
		return b, true
	default:
		return nil, false
	}
}

// Release returns a popped block to the internal pool.
func (q *Queue) Release(b *buffer.Block) {
	q.pool.Put(b)
}

// Close marks the queue closed. Pending blocks stay readable; pushes are
// rejected from then on. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.blocks)
}

// Closed reports whether the queue has been closed.
func (q *Queue) Closed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Len returns the number of blocks currently waiting.
func (q *Queue) Len() int {
	return len(q.blocks)
}

// Dropped returns how many blocks were discarded because the queue was
// full.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
