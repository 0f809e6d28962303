package effects

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/livefx/internal/testutil"
)

func TestNewReverbValidation(t *testing.T) {
	if _, err := NewReverb(0, 2); err == nil {
		t.Error("accepted zero sample rate")
	}
	if _, err := NewReverb(48000, 5); err == nil {
		t.Error("accepted invalid channel count")
	}
}

func TestReverbDefaults(t *testing.T) {
	r, err := NewReverb(48000, 2)
	if err != nil {
		t.Fatalf("NewReverb: %v", err)
	}

	if r.Name() != "reverb" {
		t.Errorf("Name() = %q, want %q", r.Name(), "reverb")
	}
	params := r.Params()
	if params["room_size"] != 0.5 || params["damping"] != 0.5 || params["wet"] != 0.3 {
		t.Errorf("default params = %v", params)
	}
}

func TestReverbImpulseProducesTail(t *testing.T) {
	r, err := NewReverb(48000, 1)
	if err != nil {
		t.Fatalf("NewReverb: %v", err)
	}
	r.SetWet(1)

	// Half a second of response to a unit impulse.
	block := testutil.MonoBlock(testutil.Impulse(24000, 0))
	if err := r.Process(block); err != nil {
		t.Fatalf("Process: %v", err)
	}
	out := block.Channel(0)

	testutil.RequireFinite(t, out)
	if peak := testutil.MaxAbs(out); peak > 1 {
		t.Errorf("peak = %v, exceeds clip bound 1", peak)
	}

	// The shortest comb is 1116 samples, so nothing comes back before it.
	if early := testutil.MaxAbs(out[:1116]); early != 0 {
		t.Errorf("energy before the first comb delay: %v", early)
	}

	// The tail rings well past the raw filter delays.
	if tail := testutil.Energy(out[8000:]); tail == 0 {
		t.Error("no reverb tail after 8000 samples")
	}
}

func TestReverbDampingShortensTail(t *testing.T) {
	tailEnergy := func(damping float64) float64 {
		r, err := NewReverb(48000, 1)
		if err != nil {
			t.Fatalf("NewReverb: %v", err)
		}
		r.SetWet(1)
		if err := r.SetDamping(damping); err != nil {
			t.Fatalf("SetDamping: %v", err)
		}

		block := testutil.MonoBlock(testutil.Impulse(48000, 0))
		if err := r.Process(block); err != nil {
			t.Fatalf("Process: %v", err)
		}
		return testutil.Energy(block.Channel(0)[8000:])
	}

	bright := tailEnergy(0)
	dark := tailEnergy(0.9)

	if dark >= bright {
		t.Errorf("tail energy with damping 0.9 (%v) not below damping 0 (%v)", dark, bright)
	}
}

func TestReverbWetZeroIsDry(t *testing.T) {
	r, err := NewReverb(48000, 1)
	if err != nil {
		t.Fatalf("NewReverb: %v", err)
	}
	r.SetWet(0)

	in := testutil.DeterministicSine(440, 48000, 0.8, 1024)
	block := testutil.MonoBlock(in)
	if err := r.Process(block); err != nil {
		t.Fatalf("Process: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, block.Channel(0), in, 0)
}

func TestReverbStereoChannelsIndependent(t *testing.T) {
	r, err := NewReverb(48000, 2)
	if err != nil {
		t.Fatalf("NewReverb: %v", err)
	}
	r.SetWet(1)

	left := testutil.Impulse(8192, 0)
	right := make([]float64, 8192)
	block := testutil.StereoBlock(left, right)
	if err := r.Process(block); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if testutil.Energy(block.Channel(0)) == 0 {
		t.Error("left channel produced no response")
	}
	if got := testutil.MaxAbs(block.Channel(1)); got != 0 {
		t.Errorf("silent right channel output = %v, want 0", got)
	}
}

func TestReverbParamClamping(t *testing.T) {
	r, err := NewReverb(48000, 1)
	if err != nil {
		t.Fatalf("NewReverb: %v", err)
	}

	tests := []struct {
		param string
		in    float64
		want  float64
	}{
		{"room_size", 1.5, 1},
		{"room_size", -1, 0},
		{"damping", 2, 1},
		{"wet", -0.1, 0},
	}
	for _, tt := range tests {
		if err := r.SetParam(tt.param, tt.in); err != nil {
			t.Errorf("SetParam(%q, %v): %v", tt.param, tt.in, err)
			continue
		}
		if got := r.Params()[tt.param]; got != tt.want {
			t.Errorf("SetParam(%q, %v) stored %v, want %v", tt.param, tt.in, got, tt.want)
		}
	}

	if err := r.SetParam("room_size", math.NaN()); err == nil {
		t.Error("accepted NaN room size")
	}
	if err := r.SetParam("size", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("unknown param error = %v, want ErrUnknownParam", err)
	}
}

func TestReverbReset(t *testing.T) {
	r, err := NewReverb(48000, 1)
	if err != nil {
		t.Fatalf("NewReverb: %v", err)
	}
	r.SetWet(1)

	block := testutil.MonoBlock(testutil.Impulse(4096, 0))
	if err := r.Process(block); err != nil {
		t.Fatalf("Process: %v", err)
	}

	r.Reset()

	silence := testutil.MonoBlock(make([]float64, 8192))
	if err := r.Process(silence); err != nil {
		t.Fatalf("Process after Reset: %v", err)
	}
	if got := testutil.MaxAbs(silence.Channel(0)); got != 0 {
		t.Errorf("tail after Reset = %v, want silence", got)
	}
}
