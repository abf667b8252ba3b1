package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	c := DeterministicNoise(43, 1.0, 64)
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic at index %d", i)
		}
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestSpike(t *testing.T) {
	s := Spike(5, 2, 1, 3)
	RequireSliceNearlyEqual(t, s, []float64{1, 1, 3, 1, 1}, 0)

	s = Spike(3, 7, 1, 3)
	RequireSliceNearlyEqual(t, s, []float64{1, 1, 1}, 0)
}

func TestRMS(t *testing.T) {
	if RMS(nil) != 0 {
		t.Fatal("RMS(nil) != 0")
	}
	RequireNearlyEqual(t, "rms", RMS([]float64{3, -3, 3, -3}), 3, 1e-15)
}

func TestRowsAreIndependent(t *testing.T) {
	rows := Rows(2, []float64{1, 2})
	rows[0][0] = 9
	if rows[1][0] != 1 {
		t.Fatal("rows share backing storage")
	}
}
