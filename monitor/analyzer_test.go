package monitor

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/livefx/dsp/buffer"
	"github.com/cwbudde/livefx/internal/testutil"
)

func TestNewAnalyzerValidation(t *testing.T) {
	if _, err := NewAnalyzer(nil, 48000); err == nil {
		t.Error("accepted nil queue")
	}
	if _, err := NewAnalyzer(NewQueue(5), 0); err == nil {
		t.Error("accepted zero sample rate")
	}
}

func TestAnalyzerStepWithoutData(t *testing.T) {
	a, err := NewAnalyzer(NewQueue(5), 48000)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	if a.Step() {
		t.Error("Step on an empty queue reported new data")
	}
	if a.Ready() {
		t.Error("Ready() = true before any data")
	}
	if a.Waveform() != nil {
		t.Error("Waveform() non-nil before any data")
	}
}

func TestAnalyzerDetectsSinePeak(t *testing.T) {
	const (
		sampleRate = 48000.0
		fftSize    = 512
		bin        = 16 // 1500 Hz, exactly on a bin center
	)

	q := NewQueue(8)
	a, err := NewAnalyzer(q, sampleRate, WithFFTSize(fftSize), WithSmoothing(0))
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	freq := a.BinFrequency(bin)
	sine := testutil.DeterministicSine(freq, sampleRate, 0.5, 4*fftSize)

	for off := 0; off < len(sine); off += fftSize {
		block := testutil.MonoBlock(sine[off : off+fftSize])
		if !q.TryPush(block) {
			t.Fatalf("push at offset %d rejected", off)
		}
		if !a.Step() {
			t.Fatalf("Step at offset %d found no data", off)
		}
	}

	if !a.Ready() {
		t.Fatal("analyzer not ready after four full FFT frames")
	}

	db := a.SpectrumDB()
	if len(db) != fftSize/2+1 {
		t.Fatalf("spectrum length = %d, want %d", len(db), fftSize/2+1)
	}

	peakBin := 0
	for k, v := range db {
		if v > db[peakBin] {
			peakBin = k
		}
	}
	if peakBin != bin {
		t.Errorf("peak bin = %d (%.1f Hz), want %d (%.1f Hz)",
			peakBin, a.BinFrequency(peakBin), bin, freq)
	}

	// A bin-centered 0.5 amplitude sine reads -6 dBFS after window
	// normalization and single-sided scaling.
	if math.Abs(db[bin]-(-6.02)) > 1 {
		t.Errorf("peak level = %.2f dBFS, want about -6", db[bin])
	}
}

func TestAnalyzerWaveformSnapshot(t *testing.T) {
	q := NewQueue(4)
	a, err := NewAnalyzer(q, 48000)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	in := testutil.DeterministicSine(440, 48000, 0.8, 256)
	q.TryPush(testutil.MonoBlock(in))
	if !a.Step() {
		t.Fatal("Step found no data")
	}

	testutil.RequireSliceNearlyEqual(t, a.Waveform(), in, 0)
}

func TestAnalyzerUsesFirstChannel(t *testing.T) {
	q := NewQueue(4)
	a, err := NewAnalyzer(q, 48000)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	left := testutil.DeterministicSine(440, 48000, 0.5, 128)
	right := make([]float64, 128)
	q.TryPush(testutil.StereoBlock(left, right))
	if !a.Step() {
		t.Fatal("Step found no data")
	}

	testutil.RequireSliceNearlyEqual(t, a.Waveform(), left, 0)
}

func TestAnalyzerFFTSizeFallback(t *testing.T) {
	a, err := NewAnalyzer(NewQueue(5), 48000, WithFFTSize(500))
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	if got := len(a.SpectrumDB()); got != 512/2+1 {
		t.Errorf("spectrum length = %d, want fallback size 257", got)
	}
}

func TestAnalyzerBinFrequency(t *testing.T) {
	a, err := NewAnalyzer(NewQueue(5), 48000, WithFFTSize(512))
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	if got := a.BinFrequency(0); got != 0 {
		t.Errorf("BinFrequency(0) = %v, want 0", got)
	}
	if got := a.BinFrequency(256); got != 24000 {
		t.Errorf("BinFrequency(256) = %v, want 24000", got)
	}
}

func TestAnalyzerRunExitsOnClosedQueue(t *testing.T) {
	q := NewQueue(4)
	a, err := NewAnalyzer(q, 48000)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	q.TryPush(buffer.NewBlock(128, 1))
	q.Close()

	done := make(chan struct{})
	go func() {
		a.Run(context.Background(), time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after the queue closed and drained")
	}
}

func TestAnalyzerRunExitsOnContextCancel(t *testing.T) {
	q := NewQueue(4)
	a, err := NewAnalyzer(q, 48000)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after context cancellation")
	}
}
