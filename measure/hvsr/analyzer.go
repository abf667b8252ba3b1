package hvsr

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Result holds the curves, statistics and graded peaks of one analysis.
type Result struct {
	Method Method

	// Frequencies is the curve axis, ascending, one entry per curve point.
	Frequencies []float64
	Curve       []float64
	CurvePlus   []float64
	CurveMinus  []float64
	// CurveStd is the per-bin standard deviation of the window curves.
	CurveStd []float64
	// LogStd is the per-bin standard deviation of log10 window curves.
	LogStd []float64

	WaterLevel      []float64
	WaterLevelPlus  []float64
	WaterLevelMinus []float64

	// WindowCurves holds one curve per surviving window.
	WindowCurves [][]float64
	WindowTimes  []time.Time
	WindowPeaks  [][]int

	// Spectra holds the aggregated spectra per channel, indexed by
	// [Channel], restricted to surviving windows.
	Spectra [numChannels]ChannelSpectra

	WindowSeconds float64
	WindowsTotal  int
	WindowsUsed   int

	Peaks      []Peak
	PlusPeaks  []Peak
	MinusPeaks []Peak
	// BestPeak is nil when no peak survived initialization.
	BestPeak *Peak
}

// Best returns the best peak or [ErrNoPeak].
func (r *Result) Best() (Peak, error) {
	if r == nil || r.BestPeak == nil {
		return Peak{}, ErrNoPeak
	}

	return *r.BestPeak, nil
}

// Analyzer runs the full HVSR pipeline. It holds no per-run state and is
// safe for concurrent use.
type Analyzer struct {
	cfg    Config
	logger *zap.Logger
}

// NewAnalyzer validates cfg after applying opts.
func NewAnalyzer(cfg Config, opts ...Option) (*Analyzer, error) {
	cfg, err := ApplyOptions(cfg, opts...)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyzer{cfg: cfg, logger: logger}, nil
}

// Analyze is a one-shot analysis with the default configuration modified
// by opts.
func Analyze(c Components, opts ...Option) (*Result, error) {
	a, err := NewAnalyzer(DefaultConfig(), opts...)
	if err != nil {
		return nil, err
	}

	return a.Analyze(c)
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze computes the HVSR curve of c and grades its peaks.
func (a *Analyzer) Analyze(c Components) (*Result, error) {
	cfg := a.cfg
	log := a.logger

	if err := c.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Method:        cfg.Method,
		WindowsTotal:  c.WindowCount(),
		WindowSeconds: c[ChannelZ].WindowSeconds(),
	}

	var drop []int
	if cfg.RemoveOutlierPSDs {
		drop = PSDOutliers(c, cfg.OutlierStd)
	}

	excluded := ExcludedWindows(c, cfg.Exclusions)
	drop = MergeIndices(drop, excluded)

	if len(drop) > 0 {
		c = c.DeleteWindows(drop)
		log.Debug("removed windows before aggregation",
			zap.Int("removed", len(drop)),
			zap.Int("excluded", len(excluded)),
			zap.Int("remaining", c.WindowCount()))
	}

	if err := c.checkWindowCounts(); err != nil {
		return nil, err
	}

	if c.WindowCount() == 0 {
		return nil, fmt.Errorf("%w: every window was removed", ErrDataShape)
	}

	spectra, err := aggregate(c, cfg, log)
	if err != nil {
		return nil, err
	}

	freqs := spectra[ChannelZ].Frequencies

	curve, err := Combine(cfg.Method, freqs,
		spectra[ChannelZ].Mean, spectra[ChannelN].Mean, spectra[ChannelE].Mean)
	if err != nil {
		return nil, fmt.Errorf("main curve: %w", err)
	}

	windowCurves, err := combineWindows(cfg.Method, spectra)
	if err != nil {
		return nil, err
	}

	times := c[ChannelZ].Times

	if cfg.RemoveOutlierCurves {
		drop := CurveOutliers(windowCurves, cfg.OutlierCurveStd)
		if len(drop) > 0 {
			windowCurves = deleteRows(windowCurves, drop)
			times = deleteRows(times, drop)

			for _, ch := range Channels() {
				spectra[ch].Rows = deleteRows(spectra[ch].Rows, drop)
			}

			log.Debug("removed outlier curves",
				zap.Int("removed", len(drop)),
				zap.Int("remaining", len(windowCurves)))
		}
	}

	for _, ch := range Channels() {
		if len(spectra[ch].Rows) != len(windowCurves) {
			return nil, fmt.Errorf("%w: channel %s has %d windows, %d curves remain",
				ErrDataShape, ch, len(spectra[ch].Rows), len(windowCurves))
		}
	}

	if len(windowCurves) == 0 {
		return nil, fmt.Errorf("%w: every window curve was removed", ErrDataShape)
	}

	axis := CurveAxis(freqs)
	cs := windowCurveStats(windowCurves, len(curve))

	res.Frequencies = axis
	res.Curve = curve
	res.CurveStd = cs.std
	res.LogStd = cs.logStd
	res.CurvePlus = make([]float64, len(curve))
	res.CurveMinus = make([]float64, len(curve))
	res.WaterLevel = WaterLevel(cfg.PeakWaterLevel, len(curve))
	res.WaterLevelPlus = make([]float64, len(curve))
	res.WaterLevelMinus = make([]float64, len(curve))

	for i := range curve {
		res.CurvePlus[i] = curve[i] + cs.std[i]
		res.CurveMinus[i] = curve[i] - cs.std[i]
		res.WaterLevelPlus[i] = res.WaterLevel[i] + cs.std[i]
		res.WaterLevelMinus[i] = res.WaterLevel[i] - cs.std[i]
	}

	res.WindowCurves = windowCurves
	res.WindowTimes = times
	res.WindowsUsed = len(windowCurves)
	res.Spectra = spectra

	res.WindowPeaks = make([][]int, len(windowCurves))
	for w, wc := range windowCurves {
		res.WindowPeaks[w] = FindPeaks(wc)
	}

	peaks := InitPeaks(axis, curve, FindPeaks(curve), cfg.Band, res.WaterLevel)
	res.PlusPeaks = curvePeaks(axis, res.CurvePlus, cfg.Band, res.WaterLevelPlus)
	res.MinusPeaks = curvePeaks(axis, res.CurveMinus, cfg.Band, res.WaterLevelMinus)

	assessor := Assessor{
		Frequencies:   axis,
		Curve:         curve,
		LogStd:        cs.logStd,
		WindowSeconds: res.WindowSeconds,
		Windows:       res.WindowsUsed,
		MinusPeaks:    res.MinusPeaks,
		PlusPeaks:     res.PlusPeaks,
		WindowPeaks:   res.WindowPeaks,
	}
	res.Peaks = assessor.Assess(peaks)

	log.Debug("peaks assessed",
		zap.Int("peaks", len(res.Peaks)),
		zap.Int("plusPeaks", len(res.PlusPeaks)),
		zap.Int("minusPeaks", len(res.MinusPeaks)))

	if best := SelectBest(res.Peaks); best >= 0 {
		res.BestPeak = &res.Peaks[best]
		log.Debug("best peak",
			zap.Float64("f0", res.BestPeak.F0),
			zap.Int("score", res.BestPeak.Score),
			zap.Bool("passes", res.BestPeak.Passes))
	} else {
		log.Info("no best peak identified", zap.Stringer("band", cfg.Band))
	}

	return res, nil
}
