package hvsr

import (
	"fmt"
	"math"
)

// CurveAxis returns the frequencies at which the points of a curve built
// by [Combine] on freqs are reported.
func CurveAxis(freqs []float64) []float64 {
	if len(freqs) < 2 {
		return nil
	}

	return freqs[1:]
}

// Combine builds an H/V curve from the Z, N and E dB spectra sampled on
// freqs. Point j covers the step [freqs[j], freqs[j+1]] and is reported at
// the upper edge freqs[j+1], so the curve has len(freqs)-1 points on the
// axis returned by [CurveAxis].
func Combine(m Method, freqs, z, n, e []float64) ([]float64, error) {
	if err := checkMethod(m); err != nil {
		return nil, err
	}

	if len(freqs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 frequency bins, got %d", ErrDataShape, len(freqs))
	}

	for _, s := range [][]float64{z, n, e} {
		if len(s) != len(freqs) {
			return nil, fmt.Errorf("%w: spectrum has %d bins, axis has %d", ErrDataShape, len(s), len(freqs))
		}
	}

	curve := make([]float64, len(freqs)-1)
	for j := range curve {
		r, err := Ratio(m,
			[2]float64{z[j], z[j+1]},
			[2]float64{n[j], n[j+1]},
			[2]float64{e[j], e[j+1]},
			freqs[j], freqs[j+1])
		if err != nil {
			return nil, err
		}

		curve[j] = r
	}

	return curve, nil
}

// combineWindows builds one H/V curve per window from aggregated spectra.
func combineWindows(m Method, spectra [numChannels]ChannelSpectra) ([][]float64, error) {
	freqs := spectra[ChannelZ].Frequencies

	curves := make([][]float64, len(spectra[ChannelZ].Rows))
	for w := range curves {
		c, err := Combine(m, freqs,
			spectra[ChannelZ].Rows[w], spectra[ChannelN].Rows[w], spectra[ChannelE].Rows[w])
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", w, err)
		}

		curves[w] = c
	}

	return curves, nil
}

// curveStats holds the across-window statistics of the per-window curves.
type curveStats struct {
	std    []float64
	logStd []float64
}

// windowCurveStats computes, per bin, the population standard deviation of
// the window curves and of their base-10 logarithm. Non-positive amplitudes
// make the log statistic NaN at that bin.
func windowCurveStats(curves [][]float64, bins int) curveStats {
	cs := curveStats{
		std:    make([]float64, bins),
		logStd: make([]float64, bins),
	}

	col := make([]float64, len(curves))
	logs := make([]float64, len(curves))

	for b := range bins {
		for w, c := range curves {
			col[w] = c[b]
			if c[b] > 0 {
				logs[w] = math.Log10(c[b])
			} else {
				logs[w] = math.NaN()
			}
		}

		cs.std[b] = popStd(col)
		cs.logStd[b] = popStd(logs)
	}

	return cs
}
