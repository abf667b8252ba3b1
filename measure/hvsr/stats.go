package hvsr

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// popStd returns the population standard deviation of x. It is NaN for an
// empty slice or when x holds NaN, and never negative.
func popStd(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}

	mean := stat.Mean(x, nil)

	return math.Sqrt(stat.MomentAbout(2, x, mean, nil))
}

// nanMean returns the mean of the non-NaN values, or NaN if there are none.
// Infinite values are kept, so a dead bin makes the mean infinite.
func nanMean(x []float64) float64 {
	v := keep(x, func(f float64) bool { return !math.IsNaN(f) })
	if len(v) == 0 {
		return math.NaN()
	}

	return stat.Mean(v, nil)
}

// finiteMeanStd returns the population mean and standard deviation of the
// finite values of x. Both are NaN when x has no finite value.
func finiteMeanStd(x []float64) (mean, std float64) {
	v := keep(x, isFinite)
	if len(v) == 0 {
		return math.NaN(), math.NaN()
	}

	mean, std = stat.PopMeanStdDev(v, nil)
	if math.IsNaN(std) {
		// A rounding residue below zero on equal values.
		std = 0
	}

	return mean, std
}

func keep(x []float64, ok func(float64) bool) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if ok(v) {
			out = append(out, v)
		}
	}

	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
