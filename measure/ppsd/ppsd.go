// Package ppsd estimates per-window power spectral densities of seismic
// noise traces in the layout consumed by [hvsr.Analyzer].
//
// Each window is processed as follows:
//
//  1. split into Segments sub-segments with SegmentOverlap overlap
//  2. remove the mean and apply a Tukey taper to each segment
//  3. FFT and average the one-sided power spectra (Welch)
//  4. average over SmoothingOctaves-wide bands centered on period bins
//     spaced StepOctaves apart, and convert to dB
package ppsd

import (
	"errors"
	"fmt"
	"math"
	"time"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-hvsr/dsp/spectrum"
	"github.com/cwbudde/algo-hvsr/dsp/window"
	"github.com/cwbudde/algo-hvsr/measure/hvsr"
	"github.com/mjibson/go-dsp/dsputils"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultWindowSeconds    = 60.0
	defaultOverlap          = 0.5
	defaultSegments         = 13
	defaultSegmentOverlap   = 0.75
	defaultTaper            = 0.1
	defaultSmoothingOctaves = 1.0
	defaultStepOctaves      = 1.0 / 32
)

var (
	// ErrConfig reports invalid estimator settings.
	ErrConfig = errors.New("ppsd: invalid configuration")
	// ErrShortTrace reports a trace too short for a single window.
	ErrShortTrace = errors.New("ppsd: trace shorter than one window")
)

// Config holds the estimator settings.
type Config struct {
	WindowSeconds    float64
	Overlap          float64
	Segments         int
	SegmentOverlap   float64
	Taper            float64
	SmoothingOctaves float64
	StepOctaves      float64
	// MinPeriod and MaxPeriod bound the period bins in seconds. Zero picks
	// a range covered by the FFT resolution and the Nyquist frequency.
	MinPeriod float64
	MaxPeriod float64
}

// DefaultConfig returns 60 s windows with 50% overlap, 13 Welch segments
// at 75% overlap, a 10% taper and 1-octave averages every 1/32 octave.
func DefaultConfig() Config {
	return Config{
		WindowSeconds:    defaultWindowSeconds,
		Overlap:          defaultOverlap,
		Segments:         defaultSegments,
		SegmentOverlap:   defaultSegmentOverlap,
		Taper:            defaultTaper,
		SmoothingOctaves: defaultSmoothingOctaves,
		StepOctaves:      defaultStepOctaves,
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	switch {
	case !(c.WindowSeconds > 0):
		return fmt.Errorf("%w: window length must be > 0: %f", ErrConfig, c.WindowSeconds)
	case c.Overlap < 0 || c.Overlap >= 1:
		return fmt.Errorf("%w: overlap must be in [0, 1): %f", ErrConfig, c.Overlap)
	case c.Segments < 1:
		return fmt.Errorf("%w: segments must be >= 1: %d", ErrConfig, c.Segments)
	case c.SegmentOverlap < 0 || c.SegmentOverlap >= 1:
		return fmt.Errorf("%w: segment overlap must be in [0, 1): %f", ErrConfig, c.SegmentOverlap)
	case c.Taper < 0 || c.Taper > 1:
		return fmt.Errorf("%w: taper fraction must be in [0, 1]: %f", ErrConfig, c.Taper)
	case !(c.SmoothingOctaves > 0) || !(c.StepOctaves > 0):
		return fmt.Errorf("%w: octave widths must be > 0", ErrConfig)
	case c.MinPeriod < 0 || c.MaxPeriod < 0 || (c.MaxPeriod > 0 && c.MaxPeriod <= c.MinPeriod):
		return fmt.Errorf("%w: period limits must satisfy 0 <= min < max: [%f, %f]", ErrConfig, c.MinPeriod, c.MaxPeriod)
	}

	return nil
}

// Trace is a uniformly sampled single-channel record.
type Trace struct {
	Samples    []float64
	SampleRate float64
	Start      time.Time
}

// Estimator computes windowed PSDs for traces of one sample rate.
type Estimator struct {
	cfg        Config
	sampleRate float64
	windowLen  int
	windowStep int
	segLen     int
	segStep    int
	nfft       int
	taper      []float64
	taperGain  float64
	freqs      []float64
	periods    []float64
	plan       *algofft.Plan[complex128]
}

// NewEstimator prepares the FFT plan, taper and period bins.
func NewEstimator(sampleRate float64, cfg Config) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: sample rate must be > 0: %f", ErrConfig, sampleRate)
	}

	e := &Estimator{cfg: cfg, sampleRate: sampleRate}

	e.windowLen = int(math.Round(cfg.WindowSeconds * sampleRate))
	e.windowStep = max(1, int(float64(e.windowLen)*(1-cfg.Overlap)))

	span := 1 + float64(cfg.Segments-1)*(1-cfg.SegmentOverlap)
	e.segLen = int(float64(e.windowLen) / span)
	e.segStep = max(1, int(float64(e.segLen)*(1-cfg.SegmentOverlap)))

	if e.segLen < 4 {
		return nil, fmt.Errorf("%w: segments of %d samples are too short", ErrConfig, e.segLen)
	}

	e.nfft = dsputils.NextPowerOf2(e.segLen)

	taper, err := window.Tukey(e.segLen, cfg.Taper)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	e.taper = taper

	e.taperGain, err = window.PowerGain(taper)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	e.plan, err = algofft.NewPlan64(e.nfft)
	if err != nil {
		return nil, fmt.Errorf("ppsd: fft plan: %w", err)
	}

	e.freqs = make([]float64, e.nfft/2)
	for k := range e.freqs {
		e.freqs[k] = float64(k+1) * sampleRate / float64(e.nfft)
	}

	e.periods, err = e.periodBins()
	if err != nil {
		return nil, err
	}

	return e, nil
}

// periodBins returns the ascending period centers whose averaging band
// contains at least one FFT bin.
func (e *Estimator) periodBins() ([]float64, error) {
	minP, maxP := e.cfg.MinPeriod, e.cfg.MaxPeriod
	if minP == 0 {
		minP = 2 / e.sampleRate
	}

	if maxP == 0 {
		maxP = float64(e.segLen) / e.sampleRate / 2
	}

	if !(maxP > minP) {
		return nil, fmt.Errorf("%w: empty period range [%f, %f]", ErrConfig, minP, maxP)
	}

	step := math.Pow(2, e.cfg.StepOctaves)

	var centers []float64
	for p := minP; p <= maxP*(1+1e-12); p *= step {
		centers = append(centers, 1/p)
	}

	floats.Reverse(centers)

	coverage, err := spectrum.AverageOctaveBands(e.freqs, ones(len(e.freqs)), centers, e.cfg.SmoothingOctaves)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	// centers ascend in frequency; periods ascend in the opposite order.
	var periods []float64
	for i := len(centers) - 1; i >= 0; i-- {
		if !math.IsNaN(coverage[i]) {
			periods = append(periods, 1/centers[i])
		}
	}

	if len(periods) < 2 {
		return nil, fmt.Errorf("%w: fewer than 2 period bins in [%f, %f]", ErrConfig, minP, maxP)
	}

	return periods, nil
}

// PeriodBinCenters returns the period bins in seconds, ascending.
func (e *Estimator) PeriodBinCenters() []float64 {
	return append([]float64(nil), e.periods...)
}

// WindowLen returns the window length in samples.
func (e *Estimator) WindowLen() int {
	return e.windowLen
}

// Estimate computes the PSD of every complete window of tr.
func (e *Estimator) Estimate(tr Trace) (hvsr.ChannelPSD, error) {
	if tr.SampleRate != e.sampleRate {
		return hvsr.ChannelPSD{}, fmt.Errorf("%w: trace sample rate %f, estimator %f", ErrConfig, tr.SampleRate, e.sampleRate)
	}

	if len(tr.Samples) < e.windowLen {
		return hvsr.ChannelPSD{}, fmt.Errorf("%w: %d samples, window needs %d", ErrShortTrace, len(tr.Samples), e.windowLen)
	}

	freqCenters := make([]float64, len(e.periods))
	for i, p := range e.periods {
		freqCenters[len(e.periods)-1-i] = 1 / p
	}

	out := hvsr.ChannelPSD{
		PeriodBinCenters: e.PeriodBinCenters(),
		Delta:            1 / e.sampleRate,
		Len:              e.windowLen,
	}

	seg := make([]float64, e.segLen)
	buf := make([]complex128, e.nfft)

	for start := 0; start+e.windowLen <= len(tr.Samples); start += e.windowStep {
		psd, err := e.welch(tr.Samples[start:start+e.windowLen], seg, buf)
		if err != nil {
			return hvsr.ChannelPSD{}, err
		}

		bands, err := spectrum.AverageOctaveBands(e.freqs, psd, freqCenters, e.cfg.SmoothingOctaves)
		if err != nil {
			return hvsr.ChannelPSD{}, err
		}

		row := make([]float64, len(bands))
		for i, v := range bands {
			row[len(bands)-1-i] = 10 * math.Log10(v)
		}

		out.Values = append(out.Values, row)
		out.Times = append(out.Times, tr.Start.Add(time.Duration(float64(start)/e.sampleRate*float64(time.Second))))
	}

	return out, nil
}

// welch averages the one-sided periodograms of the tapered segments of
// x, excluding the DC bin.
func (e *Estimator) welch(x, seg []float64, buf []complex128) ([]float64, error) {
	acc := make([]float64, len(e.freqs))
	scale := 2 / (e.sampleRate * e.taperGain)
	n := 0

	for off := 0; off+e.segLen <= len(x) && n < e.cfg.Segments; off += e.segStep {
		copy(seg, x[off:off+e.segLen])

		mean := stat.Mean(seg, nil)
		for i := range seg {
			seg[i] -= mean
		}

		if err := window.ApplyCoefficientsInPlace(seg, e.taper); err != nil {
			return nil, err
		}

		in := dsputils.ToComplex(dsputils.ZeroPadF(seg, e.nfft))
		if err := e.plan.Forward(buf, in); err != nil {
			return nil, fmt.Errorf("ppsd: fft: %w", err)
		}

		power := spectrum.Power(buf[1 : e.nfft/2+1])
		for k, p := range power {
			acc[k] += p
		}

		n++
	}

	s := scale / float64(n)
	for k := range acc {
		acc[k] *= s
	}

	// The Nyquist bin has no mirror image.
	acc[len(acc)-1] /= 2

	return acc, nil
}

// Estimate is a one-shot estimate for a single trace.
func Estimate(tr Trace, cfg Config) (hvsr.ChannelPSD, error) {
	e, err := NewEstimator(tr.SampleRate, cfg)
	if err != nil {
		return hvsr.ChannelPSD{}, err
	}

	return e.Estimate(tr)
}

// EstimateComponents estimates the Z, N and E traces concurrently. All
// traces must share one sample rate.
func EstimateComponents(z, n, e Trace, cfg Config) (hvsr.Components, error) {
	var out hvsr.Components

	est, err := NewEstimator(z.SampleRate, cfg)
	if err != nil {
		return out, err
	}

	traces := [...]Trace{hvsr.ChannelZ: z, hvsr.ChannelN: n, hvsr.ChannelE: e}

	var g errgroup.Group

	for _, ch := range hvsr.Channels() {
		g.Go(func() error {
			psd, err := est.Estimate(traces[ch])
			if err != nil {
				return fmt.Errorf("channel %s: %w", ch, err)
			}

			out[ch] = psd

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return hvsr.Components{}, err
	}

	return out, nil
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}

	return out
}
