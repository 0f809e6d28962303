package monitor

import (
	"testing"

	"github.com/cwbudde/livefx/dsp/buffer"
)

// markedBlock returns a 4-frame mono block whose first sample is mark.
func markedBlock(mark float64) *buffer.Block {
	b := buffer.NewBlock(4, 1)
	b.Channel(0)[0] = mark
	return b
}

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue(5)

	for i := 1; i <= 3; i++ {
		if !q.TryPush(markedBlock(float64(i))) {
			t.Fatalf("push %d rejected", i)
		}
	}

	for i := 1; i <= 3; i++ {
		b, ok := q.TryPop()
		if !ok {
			t.Fatalf("pop %d returned nothing", i)
		}
		if got := b.Channel(0)[0]; got != float64(i) {
			t.Errorf("pop %d mark = %v, want %v", i, got, float64(i))
		}
		q.Release(b)
	}
}

func TestQueueDropsNewestWhenFull(t *testing.T) {
	q := NewQueue(3)

	for i := 1; i <= 3; i++ {
		if !q.TryPush(markedBlock(float64(i))) {
			t.Fatalf("push %d rejected", i)
		}
	}

	// The fourth push finds the queue full and is discarded; the three
	// oldest blocks survive untouched.
	if q.TryPush(markedBlock(4)) {
		t.Error("push into full queue reported success")
	}
	if got := q.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}
	if got := q.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}

	for i := 1; i <= 3; i++ {
		b, ok := q.TryPop()
		if !ok {
			t.Fatalf("pop %d returned nothing", i)
		}
		if got := b.Channel(0)[0]; got != float64(i) {
			t.Errorf("pop %d mark = %v, want %v", i, got, float64(i))
		}
		q.Release(b)
	}
}

func TestQueuePopEmptyDoesNotBlock(t *testing.T) {
	q := NewQueue(2)

	if b, ok := q.TryPop(); ok || b != nil {
		t.Errorf("TryPop on empty queue = (%v, %v), want (nil, false)", b, ok)
	}
}

func TestQueuePushCopiesBlock(t *testing.T) {
	q := NewQueue(2)

	src := markedBlock(1)
	if !q.TryPush(src) {
		t.Fatal("push rejected")
	}

	// Mutating the producer's block after the push must not leak through.
	src.Channel(0)[0] = 99

	b, ok := q.TryPop()
	if !ok {
		t.Fatal("pop returned nothing")
	}
	if got := b.Channel(0)[0]; got != 1 {
		t.Errorf("queued mark = %v, want 1", got)
	}
	q.Release(b)
}

func TestQueueNilPush(t *testing.T) {
	q := NewQueue(2)
	if q.TryPush(nil) {
		t.Error("nil push reported success")
	}
}

func TestQueueCloseSemantics(t *testing.T) {
	q := NewQueue(4)

	q.TryPush(markedBlock(1))
	q.TryPush(markedBlock(2))

	q.Close()
	q.Close() // idempotent

	if !q.Closed() {
		t.Fatal("Closed() = false after Close")
	}
	if q.TryPush(markedBlock(3)) {
		t.Error("push after Close reported success")
	}

	// Pending blocks drain in order, then pops keep failing cleanly.
	for i := 1; i <= 2; i++ {
		b, ok := q.TryPop()
		if !ok {
			t.Fatalf("pop %d after Close returned nothing", i)
		}
		if got := b.Channel(0)[0]; got != float64(i) {
			t.Errorf("pop %d mark = %v, want %v", i, got, float64(i))
		}
		q.Release(b)
	}
	if _, ok := q.TryPop(); ok {
		t.Error("pop from drained closed queue reported success")
	}
	if _, ok := q.TryPop(); ok {
		t.Error("repeated pop from drained closed queue reported success")
	}
}

func TestQueueDefaultCapacity(t *testing.T) {
	q := NewQueue(0)

	pushed := 0
	for i := 0; i < DefaultQueueCapacity+2; i++ {
		if q.TryPush(markedBlock(float64(i))) {
			pushed++
		}
	}
	if pushed != DefaultQueueCapacity {
		t.Errorf("accepted %d pushes, want %d", pushed, DefaultQueueCapacity)
	}
}
