package spectrum

import (
	"math"
	"testing"
)

func TestMagnitude(t *testing.T) {
	in := []complex128{complex(3, 4), complex(0, 0), complex(-1, 0), complex(0, -2)}
	got := Magnitude(in)
	want := []float64{5, 0, 1, 2}

	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("bin %d = %v, want %v", i, got[i], want[i])
		}
	}

	if Magnitude(nil) != nil {
		t.Error("Magnitude(nil) should be nil")
	}
}

func TestMagnitudeFromParts(t *testing.T) {
	re := []float64{3, 0, -1}
	im := []float64{4, 0, 0}
	dst := make([]float64, 3)

	MagnitudeFromParts(dst, re, im)

	want := []float64{5, 0, 1}
	for i := range want {
		if math.Abs(dst[i]-want[i]) > 1e-12 {
			t.Errorf("bin %d = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestPowerFromParts(t *testing.T) {
	re := []float64{3, 1}
	im := []float64{4, 1}
	dst := make([]float64, 2)

	PowerFromParts(dst, re, im)

	want := []float64{25, 2}
	for i := range want {
		if math.Abs(dst[i]-want[i]) > 1e-12 {
			t.Errorf("bin %d = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestMagnitudeDB(t *testing.T) {
	if got := MagnitudeDB(1); math.Abs(got) > 1e-12 {
		t.Errorf("MagnitudeDB(1) = %v, want 0", got)
	}
	if got := MagnitudeDB(0.5); math.Abs(got-20*math.Log10(0.5)) > 1e-12 {
		t.Errorf("MagnitudeDB(0.5) = %v", got)
	}
	if got := MagnitudeDB(0); got != MinDB {
		t.Errorf("MagnitudeDB(0) = %v, want floor %v", got, MinDB)
	}
	if got := MagnitudeDB(-1); got != MinDB {
		t.Errorf("MagnitudeDB(-1) = %v, want floor %v", got, MinDB)
	}
}
