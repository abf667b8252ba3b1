package hvsr

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
)

// PSDOutliers returns the sorted indices of windows whose mean power
// (over frequency, ignoring NaN) lies more than k standard deviations from
// the mean of all window means, in any channel. Windows whose mean is not
// finite, such as dead windows at -Inf dB, are always flagged.
func PSDOutliers(c Components, k float64) []int {
	var flagged []int

	for _, ch := range Channels() {
		means := make([]float64, len(c[ch].Values))
		for w, row := range c[ch].Values {
			means[w] = nanMean(row)
		}

		flagged = append(flagged, outside(means, k)...)
	}

	return MergeIndices(flagged)
}

// ExcludedWindows returns the sorted indices of windows whose interval
// [start, start + window length] overlaps any of ranges, in any channel.
func ExcludedWindows(c Components, ranges []TimeRange) []int {
	if len(ranges) == 0 {
		return nil
	}

	var flagged []int

	for _, ch := range Channels() {
		length := time.Duration(c[ch].WindowSeconds() * float64(time.Second))
		for w, start := range c[ch].Times {
			end := start.Add(length)
			for _, r := range ranges {
				if r.Overlaps(start, end) {
					flagged = append(flagged, w)
					break
				}
			}
		}
	}

	return MergeIndices(flagged)
}

// CurveOutliers returns the sorted indices of window curves whose standard
// deviation over frequency lies more than k standard deviations from the
// mean of those deviations.
func CurveOutliers(curves [][]float64, k float64) []int {
	stds := make([]float64, len(curves))
	for w, c := range curves {
		stds[w] = popStd(c)
	}

	return outside(stds, k)
}

// MergeIndices returns the sorted union of the given index sets.
func MergeIndices(sets ...[]int) []int {
	var all []int
	for _, s := range sets {
		all = append(all, s...)
	}

	slices.Sort(all)

	return slices.Compact(all)
}

// outside flags values beyond mean +- k*std and every non-finite value.
// The statistics use the finite values only; equal finite values are never
// flagged.
func outside(values []float64, k float64) []int {
	if len(values) == 0 {
		return nil
	}

	finite := keep(values, isFinite)
	uniform := len(finite) > 0 && floats.Min(finite) == floats.Max(finite)

	mean, std := finiteMeanStd(finite)
	lo, hi := mean-k*std, mean+k*std

	var idx []int
	for i, v := range values {
		switch {
		case !isFinite(v):
			idx = append(idx, i)
		case uniform:
		case v < lo || v > hi:
			idx = append(idx, i)
		}
	}

	return idx
}

