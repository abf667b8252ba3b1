package hvsr

import "math"

// FindPeaks returns the indices of strict interior local maxima of y:
// y[i] > y[i-1] and y[i] > y[i+1]. Comparisons involving NaN are false, so
// NaN samples never form or neighbor a peak.
func FindPeaks(y []float64) []int {
	var idx []int

	for i := 1; i < len(y)-1; i++ {
		if y[i] > y[i-1] && y[i] > y[i+1] {
			idx = append(idx, i)
		}
	}

	return idx
}

// WaterLevel expands a scalar level to one value per bin.
func WaterLevel(level float64, bins int) []float64 {
	wl := make([]float64, bins)
	for i := range wl {
		wl[i] = level
	}

	return wl
}

// InitPeaks turns peak indices into [Peak] records, keeping only those whose
// amplitude exceeds the water level at their bin and whose frequency lies
// inside band. freqs, curve and waterLevel are indexed by bin.
func InitPeaks(freqs, curve []float64, indices []int, band Band, waterLevel []float64) []Peak {
	peaks := make([]Peak, 0, len(indices))

	for _, i := range indices {
		if i < 0 || i >= len(curve) || i >= len(freqs) || i >= len(waterLevel) {
			continue
		}

		if !(curve[i] > waterLevel[i]) || !band.Contains(freqs[i]) {
			continue
		}

		peaks = append(peaks, Peak{Index: i, F0: freqs[i], A0: curve[i]})
	}

	return peaks
}

// FrequencyStd returns the spread Sf of a main-curve peak across windows.
// For every window with at least one peak, the peak nearest to index (by
// bin distance, earliest on ties) is taken; together with index itself
// their frequencies form the set whose population standard deviation is
// returned.
func FrequencyStd(freqs []float64, index int, windowPeaks [][]int) float64 {
	v := make([]float64, 0, len(windowPeaks)+1)

	for _, peaks := range windowPeaks {
		if len(peaks) == 0 {
			continue
		}

		best := peaks[0]
		for _, p := range peaks[1:] {
			if abs(index-p) < abs(index-best) {
				best = p
			}
		}

		v = append(v, freqs[best])
	}

	v = append(v, freqs[index])

	return popStd(v)
}

// curvePeaks finds and initializes the peaks of an envelope curve. A curve
// holding NaN yields no peaks.
func curvePeaks(freqs, curve []float64, band Band, waterLevel []float64) []Peak {
	for _, v := range curve {
		if math.IsNaN(v) {
			return nil
		}
	}

	return InitPeaks(freqs, curve, FindPeaks(curve), band, waterLevel)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
