package hvsr

import (
	"math"
	"testing"
)

func TestNaNMean(t *testing.T) {
	if got := nanMean([]float64{1, math.NaN(), 3}); got != 2 {
		t.Fatalf("nanMean = %v, want 2", got)
	}

	if got := nanMean([]float64{1, math.Inf(-1)}); !math.IsInf(got, -1) {
		t.Fatalf("nanMean with -Inf = %v, want -Inf", got)
	}

	if got := nanMean([]float64{math.NaN()}); !math.IsNaN(got) {
		t.Fatalf("nanMean of NaN = %v, want NaN", got)
	}
}

func TestFiniteMeanStd(t *testing.T) {
	tests := []struct {
		name     string
		in       []float64
		mean     float64
		std      float64
		wantNaNs bool
	}{
		{"skips non-finite", []float64{1, 2, 3, math.Inf(-1), math.NaN(), math.Inf(1)}, 2, math.Sqrt(2.0 / 3.0), false},
		{"equal values", []float64{-140, -140, -140}, -140, 0, false},
		{"nothing finite", []float64{math.Inf(-1), math.NaN()}, 0, 0, true},
		{"empty", nil, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std := finiteMeanStd(tt.in)

			if tt.wantNaNs {
				if !math.IsNaN(mean) || !math.IsNaN(std) {
					t.Fatalf("got (%v, %v), want NaN", mean, std)
				}

				return
			}

			if math.Abs(mean-tt.mean) > 1e-12 || math.Abs(std-tt.std) > 1e-12 {
				t.Fatalf("got (%v, %v), want (%v, %v)", mean, std, tt.mean, tt.std)
			}
		})
	}
}

func TestOutsideFlagsNonFinite(t *testing.T) {
	values := []float64{1, 1.1, 0.9, math.Inf(-1), 1, math.NaN()}

	got := outside(values, 3)
	if len(got) != 2 || got[0] != 3 || got[1] != 5 {
		t.Fatalf("outside = %v, want [3 5]", got)
	}
}

func TestOutsideEqualValues(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 0.1
	}

	if got := outside(values, 3); len(got) != 0 {
		t.Fatalf("outside = %v, want none", got)
	}
}
