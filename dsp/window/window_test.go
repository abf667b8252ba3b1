package window

import (
	"math"
	"testing"
)

func TestGenerateFinite(t *testing.T) {
	for _, typ := range []Type{TypeTukey, TypeTriangle} {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}

			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}
			}
		})
	}
}

func TestGenerateInvalidLength(t *testing.T) {
	if w := Generate(TypeTukey, 0); w != nil {
		t.Fatalf("expected nil for zero length, got %v", w)
	}

	if w := Generate(TypeTukey, 1); len(w) != 1 || w[0] != 1 {
		t.Fatalf("single-sample window = %v, want [1]", w)
	}
}

func TestTukeyTaper(t *testing.T) {
	w, err := Tukey(100, 0.1)
	if err != nil {
		t.Fatalf("Tukey: %v", err)
	}

	if w[0] != 0 || w[99] != 0 {
		t.Fatalf("tapered ends must be zero: %v %v", w[0], w[99])
	}

	for i := 10; i < 90; i++ {
		if w[i] != 1 {
			t.Fatalf("flat section index %d = %v, want 1", i, w[i])
		}
	}

	if _, err := Tukey(100, 1.5); err == nil {
		t.Fatal("expected error for alpha > 1")
	}

	if _, err := Tukey(0, 0.1); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestTukeyLimits(t *testing.T) {
	rect := Generate(TypeTukey, 8, WithAlpha(0))
	for i, v := range rect {
		if v != 1 {
			t.Fatalf("alpha=0 index %d = %v, want 1", i, v)
		}
	}

	tukey := Generate(TypeTukey, 8, WithAlpha(1))
	for i, v := range tukey {
		hann := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/7)
		if math.Abs(v-hann) > 1e-12 {
			t.Fatalf("alpha=1 index %d = %v, want Hann %v", i, v, hann)
		}
	}
}

func TestTriangular(t *testing.T) {
	w, err := Triangular(4)
	if err != nil {
		t.Fatalf("Triangular: %v", err)
	}

	want := []float64{0, 0.25, 0.5, 0.75, 1, 0.75, 0.5, 0.25, 0}
	if len(w) != len(want) {
		t.Fatalf("len=%d want %d", len(w), len(want))
	}

	for i := range want {
		if math.Abs(w[i]-want[i]) > 1e-12 {
			t.Fatalf("index %d: got %v want %v", i, w[i], want[i])
		}
	}

	if _, err := Triangular(0); err == nil {
		t.Fatal("expected error for zero half width")
	}
}

func TestPowerGain(t *testing.T) {
	g, err := PowerGain([]float64{1, 2, 2})
	if err != nil {
		t.Fatalf("PowerGain: %v", err)
	}

	if g != 9 {
		t.Fatalf("PowerGain = %v, want 9", g)
	}

	if _, err := PowerGain(nil); err == nil {
		t.Fatal("expected error for empty coefficients")
	}

	if _, err := PowerGain([]float64{0, 0}); err == nil {
		t.Fatal("expected error for zero gain")
	}
}

func TestApplyCoefficientsInPlace(t *testing.T) {
	buf := []float64{1, 2, 3}
	if err := ApplyCoefficientsInPlace(buf, []float64{2, 0.5, 0}); err != nil {
		t.Fatalf("ApplyCoefficientsInPlace: %v", err)
	}

	if buf[0] != 2 || buf[1] != 1 || buf[2] != 0 {
		t.Fatalf("unexpected result %v", buf)
	}

	if err := ApplyCoefficientsInPlace(buf, []float64{1}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}
