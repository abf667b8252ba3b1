package hvsr

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-hvsr/dsp/spectrum"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// ChannelSpectra is one channel after aggregation. All slices share the
// ascending frequency axis in Frequencies.
type ChannelSpectra struct {
	Frequencies []float64
	// Rows holds the per-window dB spectra after resampling, time-domain
	// polynomial smoothing and frequency smoothing.
	Rows [][]float64
	// Mean and Std are taken over windows before frequency smoothing.
	Mean  []float64
	Std   []float64
	Plus  []float64
	Minus []float64
}

// periodGrid returns the shared period grid (ascending) for all channels.
func periodGrid(c Components, points int) ([]float64, error) {
	if points == 0 {
		ref := c[ChannelZ].PeriodBinCenters
		for _, ch := range Channels()[1:] {
			if len(c[ch].PeriodBinCenters) != len(ref) {
				return nil, fmt.Errorf("%w: channel %s has %d period bins, channel Z has %d",
					ErrDataShape, ch, len(c[ch].PeriodBinCenters), len(ref))
			}
		}

		return append([]float64(nil), ref...), nil
	}

	lo, hi := math.Inf(-1), math.Inf(1)
	for _, ch := range Channels() {
		p := c[ch].PeriodBinCenters
		lo = math.Max(lo, p[0])
		hi = math.Min(hi, p[len(p)-1])
	}

	if !(hi > lo) {
		return nil, fmt.Errorf("%w: channels share no period range", ErrDataShape)
	}

	return floats.LogSpan(make([]float64, points), lo, hi), nil
}

// savgolFor builds the polynomial smoother for rows of n bins, shrinking
// the window when it does not fit. It returns nil when smoothing is off or
// the shrunk window cannot hold the polynomial order.
func savgolFor(cfg Config, n int) (*spectrum.SavitzkyGolay, error) {
	if cfg.SavgolWindow == 0 {
		return nil, nil
	}

	w := oddWindow(cfg.SavgolWindow)
	if w > n {
		w = n
		if w%2 == 0 {
			w--
		}
	}

	if w <= cfg.SavgolOrder {
		return nil, nil
	}

	sg, err := spectrum.NewSavitzkyGolay(w, cfg.SavgolOrder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return sg, nil
}

// smoothingHalfWidth converts a triangular smoothing width into a half
// width in bins for an axis of n bins. A proportional width above 1 is a
// percentage of n; at or below 1 it is a fraction of n.
func smoothingHalfWidth(s Smoothing, n int) int {
	switch s.Kind {
	case SmoothingConstant:
		return int(s.Width) / 2
	case SmoothingProportional:
		if s.Width > 1 {
			return int(s.Width / 100 * float64(n))
		}
		return int(s.Width * float64(n))
	default:
		return 0
	}
}

// aggregate resamples, smooths and summarizes every channel. Channels are
// processed concurrently; each goroutine owns its output slot.
func aggregate(c Components, cfg Config, logger *zap.Logger) ([numChannels]ChannelSpectra, error) {
	var out [numChannels]ChannelSpectra

	periods, err := periodGrid(c, cfg.ResamplePoints)
	if err != nil {
		return out, err
	}

	n := len(periods)

	freqs := make([]float64, n)
	for i, p := range periods {
		freqs[n-1-i] = 1 / p
	}

	sg, err := savgolFor(cfg, n)
	if err != nil {
		return out, err
	}

	var ko *spectrum.KonnoOhmachi

	switch cfg.Smoothing.Kind {
	case SmoothingNone:
		logger.Warn("no frequency smoothing applied; results are less robust for noisy data")
	case SmoothingKonnoOhmachi:
		ko, err = spectrum.NewKonnoOhmachi(freqs, cfg.Smoothing.Width)
		if err != nil {
			return out, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
	}

	half := smoothingHalfWidth(cfg.Smoothing, n)

	logger.Debug("aggregating channels",
		zap.Int("bins", n),
		zap.Bool("resampled", cfg.ResamplePoints > 0),
		zap.Bool("savgol", sg != nil),
		zap.Stringer("smoothing", cfg.Smoothing.Kind))

	var g errgroup.Group

	for _, ch := range Channels() {
		g.Go(func() error {
			rows, err := resampleRows(c[ch], periods, cfg.ResamplePoints > 0, sg)
			if err != nil {
				return fmt.Errorf("channel %s: %w", ch, err)
			}

			cs := summarize(rows)
			cs.Frequencies = freqs

			switch {
			case ko != nil:
				rows, err = ko.SmoothRows(rows)
			case half > 0:
				rows, err = smoothTriangularRows(rows, half)
			}

			if err != nil {
				return fmt.Errorf("channel %s: %w", ch, err)
			}

			cs.Rows = rows
			out[ch] = cs

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}

	return out, nil
}

// resampleRows puts every window of psd onto the period grid, reverses it
// to ascending frequency and applies the polynomial smoother.
func resampleRows(psd ChannelPSD, periods []float64, interpolate bool, sg *spectrum.SavitzkyGolay) ([][]float64, error) {
	rows := make([][]float64, len(psd.Values))

	for w, values := range psd.Values {
		row := append([]float64(nil), values...)
		if interpolate {
			var err error

			row, err = spectrum.InterpolateLinear(psd.PeriodBinCenters, values, periods)
			if err != nil {
				return nil, fmt.Errorf("%w: window %d: %w", ErrDataShape, w, err)
			}
		}

		floats.Reverse(row)

		if sg != nil {
			var err error

			row, err = sg.Filter(row)
			if err != nil {
				return nil, err
			}
		}

		rows[w] = row
	}

	return rows, nil
}

// summarize computes the NaN-skipping time mean, the population standard
// deviation and the +-1 sigma envelopes of rows.
func summarize(rows [][]float64) ChannelSpectra {
	n := len(rows[0])
	cs := ChannelSpectra{
		Mean:  make([]float64, n),
		Std:   make([]float64, n),
		Plus:  make([]float64, n),
		Minus: make([]float64, n),
	}

	col := make([]float64, len(rows))
	for b := range n {
		for w, row := range rows {
			col[w] = row[b]
		}

		cs.Mean[b] = nanMean(col)
		cs.Std[b] = popStd(col)
		cs.Plus[b] = cs.Mean[b] + cs.Std[b]
		cs.Minus[b] = cs.Mean[b] - cs.Std[b]
	}

	return cs
}

func smoothTriangularRows(rows [][]float64, half int) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		s, err := spectrum.SmoothTriangular(row, half)
		if err != nil {
			return nil, err
		}

		out[i] = s
	}

	return out, nil
}
