package effects

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/livefx/internal/testutil"
)

func TestNewChorusValidation(t *testing.T) {
	if _, err := NewChorus(math.NaN(), 2); err == nil {
		t.Error("accepted NaN sample rate")
	}
	if _, err := NewChorus(48000, 0); err == nil {
		t.Error("accepted zero channel count")
	}
}

func TestChorusDefaults(t *testing.T) {
	c, err := NewChorus(48000, 2)
	if err != nil {
		t.Fatalf("NewChorus: %v", err)
	}

	if c.Name() != "chorus" {
		t.Errorf("Name() = %q, want %q", c.Name(), "chorus")
	}
	params := c.Params()
	if params["rate"] != 1.5 || params["depth"] != 0.3 || params["wet"] != 0.5 {
		t.Errorf("default params = %v", params)
	}
}

func TestChorusWetZeroIsDry(t *testing.T) {
	c, err := NewChorus(48000, 1)
	if err != nil {
		t.Fatalf("NewChorus: %v", err)
	}
	c.SetWet(0)

	in := testutil.DeterministicSine(440, 48000, 0.9, 2048)
	block := testutil.MonoBlock(in)
	if err := c.Process(block); err != nil {
		t.Fatalf("Process: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, block.Channel(0), in, 0)
}

func TestChorusConvergesOnConstantInput(t *testing.T) {
	c, err := NewChorus(48000, 1)
	if err != nil {
		t.Fatalf("NewChorus: %v", err)
	}
	c.SetWet(1)

	// Once the line holds only the constant, every interpolated read
	// returns it no matter where the oscillator points.
	dc := make([]float64, 4800)
	for i := range dc {
		dc[i] = 0.5
	}

	for pass := 0; pass < 2; pass++ {
		block := testutil.MonoBlock(dc)
		if err := c.Process(block); err != nil {
			t.Fatalf("Process: %v", err)
		}
		if pass == 1 {
			for i, v := range block.Channel(0) {
				if math.Abs(v-0.5) > 1e-12 {
					t.Fatalf("out[%d] = %v, want 0.5", i, v)
				}
			}
		}
	}
}

func TestChorusStereoChannelsDiverge(t *testing.T) {
	c, err := NewChorus(48000, 2)
	if err != nil {
		t.Fatalf("NewChorus: %v", err)
	}
	c.SetWet(1)

	in := testutil.DeterministicSine(440, 48000, 0.8, 9600)
	block := testutil.StereoBlock(append([]float64(nil), in...), append([]float64(nil), in...))
	if err := c.Process(block); err != nil {
		t.Fatalf("Process: %v", err)
	}

	// The quarter-cycle oscillator offset makes the channels read
	// different delays from identical input.
	diff := 0.0
	left, right := block.Channel(0), block.Channel(1)
	for i := 4800; i < 9600; i++ {
		diff += math.Abs(left[i] - right[i])
	}
	if diff == 0 {
		t.Error("stereo channels identical despite oscillator phase offset")
	}
}

func TestChorusOutputStaysInRange(t *testing.T) {
	c, err := NewChorus(48000, 1)
	if err != nil {
		t.Fatalf("NewChorus: %v", err)
	}
	c.SetDepth(1)
	c.SetWet(1)

	block := testutil.MonoBlock(testutil.DeterministicNoise(3, 1, 24000))
	if err := c.Process(block); err != nil {
		t.Fatalf("Process: %v", err)
	}

	testutil.RequireFinite(t, block.Channel(0))
	if peak := testutil.MaxAbs(block.Channel(0)); peak > 1 {
		t.Errorf("peak = %v, exceeds clip bound 1", peak)
	}
}

func TestChorusParamClamping(t *testing.T) {
	c, err := NewChorus(48000, 1)
	if err != nil {
		t.Fatalf("NewChorus: %v", err)
	}

	tests := []struct {
		param string
		in    float64
		want  float64
	}{
		{"rate", 0, 0.1},
		{"rate", 100, 10},
		{"depth", -1, 0},
		{"depth", 2, 1},
		{"wet", 1.5, 1},
	}
	for _, tt := range tests {
		if err := c.SetParam(tt.param, tt.in); err != nil {
			t.Errorf("SetParam(%q, %v): %v", tt.param, tt.in, err)
			continue
		}
		if got := c.Params()[tt.param]; got != tt.want {
			t.Errorf("SetParam(%q, %v) stored %v, want %v", tt.param, tt.in, got, tt.want)
		}
	}

	if err := c.SetParam("rate", math.Inf(1)); err == nil {
		t.Error("accepted infinite rate")
	}
	if err := c.SetParam("speed", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("unknown param error = %v, want ErrUnknownParam", err)
	}
}

func TestChorusReset(t *testing.T) {
	c, err := NewChorus(48000, 1)
	if err != nil {
		t.Fatalf("NewChorus: %v", err)
	}
	c.SetWet(1)

	block := testutil.MonoBlock(testutil.DeterministicSine(440, 48000, 0.8, 4096))
	if err := c.Process(block); err != nil {
		t.Fatalf("Process: %v", err)
	}

	c.Reset()

	silence := testutil.MonoBlock(make([]float64, 4096))
	if err := c.Process(silence); err != nil {
		t.Fatalf("Process after Reset: %v", err)
	}
	if got := testutil.MaxAbs(silence.Channel(0)); got != 0 {
		t.Errorf("tail after Reset = %v, want silence", got)
	}
}

func TestEffectToggle(t *testing.T) {
	c, err := NewChorus(48000, 1)
	if err != nil {
		t.Fatalf("NewChorus: %v", err)
	}

	if !c.Enabled() {
		t.Fatal("new effect should be enabled")
	}
	c.Toggle()
	if c.Enabled() {
		t.Error("Toggle did not disable")
	}
	c.SetEnabled(true)
	if !c.Enabled() {
		t.Error("SetEnabled(true) did not enable")
	}
}
