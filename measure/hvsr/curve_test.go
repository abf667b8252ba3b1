package hvsr

import (
	"testing"

	"github.com/cwbudde/algo-hvsr/internal/testutil"
)

func TestCombineReportsUpperEdge(t *testing.T) {
	freqs := []float64{1, 2, 4}
	flat := testutil.DC(-140, 3)

	curve, err := Combine(MethodQuadraticMean, freqs, flat, flat, flat)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, curve, []float64{1, 1}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, CurveAxis(freqs), []float64{2, 4}, 0)

	if CurveAxis([]float64{1}) != nil {
		t.Fatal("a single bin has no curve axis")
	}
}
