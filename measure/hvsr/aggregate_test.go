package hvsr

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-hvsr/internal/testutil"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

func TestPeriodGridCommonRange(t *testing.T) {
	var c Components
	c[ChannelZ] = flatPSD(1, []float64{0.1, 1, 10}, -140)
	c[ChannelN] = flatPSD(1, []float64{0.2, 1, 20}, -140)
	c[ChannelE] = flatPSD(1, []float64{0.05, 1, 5}, -140)

	grid, err := periodGrid(c, 11)
	if err != nil {
		t.Fatalf("periodGrid: %v", err)
	}

	if len(grid) != 11 {
		t.Fatalf("len = %d, want 11", len(grid))
	}

	testutil.RequireNearlyEqual(t, "min", grid[0], 0.2, 1e-12)
	testutil.RequireNearlyEqual(t, "max", grid[10], 5, 1e-12)
	testutil.RequireNearlyEqual(t, "log step", grid[1]/grid[0], grid[10]/grid[9], 1e-9)
}

func TestPeriodGridErrors(t *testing.T) {
	var c Components
	c[ChannelZ] = flatPSD(1, []float64{0.1, 0.2}, -140)
	c[ChannelN] = flatPSD(1, []float64{1, 2}, -140)
	c[ChannelE] = flatPSD(1, []float64{0.1, 0.2}, -140)

	if _, err := periodGrid(c, 100); !errors.Is(err, ErrDataShape) {
		t.Fatalf("disjoint ranges err = %v, want ErrDataShape", err)
	}

	c[ChannelN] = flatPSD(1, []float64{0.1, 0.2, 0.3}, -140)
	if _, err := periodGrid(c, 0); !errors.Is(err, ErrDataShape) {
		t.Fatalf("bin count mismatch err = %v, want ErrDataShape", err)
	}
}

func TestSavgolForShrinks(t *testing.T) {
	cfg := DefaultConfig()

	sg, err := savgolFor(cfg, 1000)
	if err != nil || sg == nil || sg.Window() != 51 {
		t.Fatalf("savgolFor(1000) = %v, %v", sg, err)
	}

	sg, err = savgolFor(cfg, 20)
	if err != nil || sg == nil || sg.Window() != 19 {
		t.Fatalf("savgolFor(20) window = %v, %v; want 19", sg, err)
	}

	cfg.SavgolWindow = 8
	if sg, _ = savgolFor(cfg, 100); sg.Window() != 9 {
		t.Fatalf("even window = %d, want 9", sg.Window())
	}

	if sg, _ = savgolFor(cfg, 3); sg != nil {
		t.Fatal("window shorter than order must disable the filter")
	}

	cfg.SavgolWindow = 0
	if sg, _ = savgolFor(cfg, 100); sg != nil {
		t.Fatal("zero window must disable the filter")
	}
}

func TestSmoothingHalfWidth(t *testing.T) {
	tests := []struct {
		s    Smoothing
		n    int
		want int
	}{
		{Smoothing{Kind: SmoothingConstant, Width: 40}, 1000, 20},
		{Smoothing{Kind: SmoothingConstant, Width: 5}, 1000, 2},
		{Smoothing{Kind: SmoothingProportional, Width: 40}, 1000, 400},
		{Smoothing{Kind: SmoothingProportional, Width: 0.4}, 1000, 400},
		{Smoothing{Kind: SmoothingProportional, Width: 1}, 50, 50},
		{Smoothing{Kind: SmoothingProportional, Width: 1.5}, 1000, 15},
		{Smoothing{Kind: SmoothingProportional, Width: 0.001}, 500, 0},
		{Smoothing{Kind: SmoothingKonnoOhmachi, Width: 40}, 1000, 0},
	}

	for _, tt := range tests {
		if got := smoothingHalfWidth(tt.s, tt.n); got != tt.want {
			t.Fatalf("smoothingHalfWidth(%+v, %d) = %d, want %d", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	rows := [][]float64{
		{1, 2, math.NaN()},
		{3, 2, 5},
	}

	s := summarize(rows)

	testutil.RequireSliceNearlyEqual(t, s.Mean, []float64{2, 2, 5}, 1e-12)
	testutil.RequireNearlyEqual(t, "std", s.Std[0], 1, 1e-12)
	testutil.RequireNearlyEqual(t, "std", s.Std[1], 0, 1e-12)

	if !math.IsNaN(s.Std[2]) {
		t.Fatalf("std with NaN = %v, want NaN", s.Std[2])
	}

	testutil.RequireSliceNearlyEqual(t, s.Plus[:2], []float64{3, 2}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, s.Minus[:2], []float64{1, 2}, 1e-12)
}

func TestAggregateAxisAndShapes(t *testing.T) {
	periods := floats.LogSpan(make([]float64, 80), 0.02, 10)
	c := flatComponents(6, periods)

	for _, kind := range []SmoothingKind{SmoothingNone, SmoothingKonnoOhmachi, SmoothingConstant, SmoothingProportional} {
		cfg := DefaultConfig()
		cfg.ResamplePoints = 200
		cfg.Smoothing = Smoothing{Kind: kind, Width: 10}

		spectra, err := aggregate(c, cfg, zap.NewNop())
		if err != nil {
			t.Fatalf("%s: aggregate: %v", kind, err)
		}

		for _, ch := range Channels() {
			s := spectra[ch]
			if len(s.Frequencies) != 200 || len(s.Rows) != 6 || len(s.Mean) != 200 {
				t.Fatalf("%s/%s: shapes %d %d %d", kind, ch, len(s.Frequencies), len(s.Rows), len(s.Mean))
			}

			for i := 1; i < len(s.Frequencies); i++ {
				if !(s.Frequencies[i] > s.Frequencies[i-1]) {
					t.Fatalf("%s: frequency axis not ascending at %d", kind, i)
				}
			}

			testutil.RequireNearlyEqual(t, "fmin", s.Frequencies[0], 0.1, 1e-9)
			testutil.RequireNearlyEqual(t, "fmax", s.Frequencies[199], 50, 1e-9)

			// A flat spectrum survives every smoother unchanged.
			testutil.RequireSliceNearlyEqual(t, s.Rows[3], testutil.DC(-140, 200), 1e-6)
			testutil.RequireSliceNearlyEqual(t, s.Mean, testutil.DC(-140, 200), 1e-6)
		}
	}
}
