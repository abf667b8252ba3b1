package hvsr

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBandLow         = 0.4
	defaultBandHigh        = 40.0
	defaultPeakWaterLevel  = 1.8
	defaultMethod          = MethodQuadraticMean
	defaultResamplePoints  = 1000
	defaultSavgolWindow    = 51
	defaultSavgolOrder     = 3
	defaultKonnoOhmachiB   = 40.0
	defaultOutlierStd      = 3.0
	defaultOutlierCurveStd = 1.75
)

// SmoothingKind selects the frequency smoothing applied to the per-window
// spectra before they are combined.
type SmoothingKind int

const (
	// SmoothingNone disables frequency smoothing.
	SmoothingNone SmoothingKind = iota
	// SmoothingKonnoOhmachi uses the Konno-Ohmachi window; Width is the
	// bandwidth coefficient b.
	SmoothingKonnoOhmachi
	// SmoothingConstant uses a triangular window; Width is its size in bins.
	SmoothingConstant
	// SmoothingProportional uses a triangular window; Width is its half
	// width as a percentage of the bin count, or a fraction when at most 1.
	SmoothingProportional
)

var smoothingAliases = map[string]SmoothingKind{
	"none":          SmoothingNone,
	"off":           SmoothingNone,
	"false":         SmoothingNone,
	"konno ohmachi": SmoothingKonnoOhmachi,
	"konnoohmachi":  SmoothingKonnoOhmachi,
	"konnohmachi":   SmoothingKonnoOhmachi,
	"ko":            SmoothingKonnoOhmachi,
	"k":             SmoothingKonnoOhmachi,
	"true":          SmoothingKonnoOhmachi,
	"constant":      SmoothingConstant,
	"const":         SmoothingConstant,
	"c":             SmoothingConstant,
	"proportional":  SmoothingProportional,
	"proportion":    SmoothingProportional,
	"prop":          SmoothingProportional,
	"p":             SmoothingProportional,
}

func (k SmoothingKind) String() string {
	switch k {
	case SmoothingNone:
		return "none"
	case SmoothingKonnoOhmachi:
		return "konno-ohmachi"
	case SmoothingConstant:
		return "constant"
	case SmoothingProportional:
		return "proportional"
	default:
		return fmt.Sprintf("SmoothingKind(%d)", int(k))
	}
}

// Valid reports whether k is a known smoothing kind.
func (k SmoothingKind) Valid() bool {
	return k >= SmoothingNone && k <= SmoothingProportional
}

// ParseSmoothingKind resolves a smoothing kind from its name or alias.
func ParseSmoothingKind(s string) (SmoothingKind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", " ")

	if k, ok := smoothingAliases[key]; ok {
		return k, nil
	}

	return 0, fmt.Errorf("%w: unknown smoothing kind %q", ErrConfiguration, s)
}

// Band is an inclusive frequency range in Hz.
type Band struct {
	Low  float64
	High float64
}

// Contains reports whether low <= f <= high.
func (b Band) Contains(f float64) bool {
	return f >= b.Low && f <= b.High
}

func (b Band) String() string {
	return fmt.Sprintf("%g-%g Hz", b.Low, b.High)
}

// TimeRange is a closed time interval.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [start, end] shares any instant with r.
func (r TimeRange) Overlaps(start, end time.Time) bool {
	return !start.After(r.End) && !end.Before(r.Start)
}

// Smoothing configures frequency smoothing.
type Smoothing struct {
	Kind  SmoothingKind
	Width float64
}

// Config holds the analysis parameters.
type Config struct {
	// Band limits which peaks are considered, in Hz.
	Band Band
	// PeakWaterLevel is the amplitude a peak must exceed.
	PeakWaterLevel float64
	Method         Method
	// ResamplePoints is the size of the shared log grid. Zero disables
	// resampling; the channels must then share identical period bins.
	ResamplePoints int
	// SavgolWindow is the Savitzky-Golay window length. Zero disables it.
	SavgolWindow int
	SavgolOrder  int
	Smoothing    Smoothing

	RemoveOutlierPSDs   bool
	OutlierStd          float64
	RemoveOutlierCurves bool
	OutlierCurveStd     float64

	// Exclusions masks windows overlapping any of the ranges.
	Exclusions []TimeRange

	logger *zap.Logger
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		Band:                Band{Low: defaultBandLow, High: defaultBandHigh},
		PeakWaterLevel:      defaultPeakWaterLevel,
		Method:              defaultMethod,
		ResamplePoints:      defaultResamplePoints,
		SavgolWindow:        defaultSavgolWindow,
		SavgolOrder:         defaultSavgolOrder,
		Smoothing:           Smoothing{Kind: SmoothingKonnoOhmachi, Width: defaultKonnoOhmachiB},
		RemoveOutlierPSDs:   true,
		OutlierStd:          defaultOutlierStd,
		RemoveOutlierCurves: true,
		OutlierCurveStd:     defaultOutlierCurveStd,
	}
}

// Option configures an [Analyzer].
type Option func(*Config) error

// ApplyOptions applies opts to cfg in order, stopping at the first error.
func ApplyOptions(cfg Config, opts ...Option) (Config, error) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// WithBand sets the frequency band peaks must fall in (default 0.4-40 Hz).
func WithBand(low, high float64) Option {
	return func(cfg *Config) error {
		cfg.Band = Band{Low: low, High: high}
		return validateBand(cfg.Band)
	}
}

// WithPeakWaterLevel sets the peak water level (default 1.8).
func WithPeakWaterLevel(level float64) Option {
	return func(cfg *Config) error {
		if math.IsNaN(level) || math.IsInf(level, 0) {
			return fmt.Errorf("%w: water level must be finite: %f", ErrConfiguration, level)
		}

		cfg.PeakWaterLevel = level

		return nil
	}
}

// WithMethod sets the horizontal combination method.
func WithMethod(m Method) Option {
	return func(cfg *Config) error {
		if err := checkMethod(m); err != nil {
			return err
		}

		cfg.Method = m

		return nil
	}
}

// WithResamplePoints sets the shared grid size; 0 disables resampling.
func WithResamplePoints(n int) Option {
	return func(cfg *Config) error {
		cfg.ResamplePoints = n
		return validateResample(n)
	}
}

// WithSavitzkyGolay sets the smoothing window and order; a window of 0
// disables the filter. Even windows are bumped to the next odd length.
func WithSavitzkyGolay(window, order int) Option {
	return func(cfg *Config) error {
		cfg.SavgolWindow = window
		cfg.SavgolOrder = order

		return validateSavgol(window, order)
	}
}

// WithSmoothing sets the frequency smoothing kind and width.
func WithSmoothing(kind SmoothingKind, width float64) Option {
	return func(cfg *Config) error {
		cfg.Smoothing = Smoothing{Kind: kind, Width: width}
		return validateSmoothing(cfg.Smoothing)
	}
}

// WithOutlierPSDs configures the raw PSD outlier filter.
func WithOutlierPSDs(enabled bool, std float64) Option {
	return func(cfg *Config) error {
		cfg.RemoveOutlierPSDs = enabled
		cfg.OutlierStd = std

		return validateOutlier("outlier std", enabled, std)
	}
}

// WithOutlierCurves configures the per-window curve outlier filter.
func WithOutlierCurves(enabled bool, std float64) Option {
	return func(cfg *Config) error {
		cfg.RemoveOutlierCurves = enabled
		cfg.OutlierCurveStd = std

		return validateOutlier("outlier curve std", enabled, std)
	}
}

// WithExclusions appends time ranges whose windows are removed.
func WithExclusions(ranges ...TimeRange) Option {
	return func(cfg *Config) error {
		cfg.Exclusions = append(cfg.Exclusions, ranges...)
		return validateExclusions(cfg.Exclusions)
	}
}

// WithLogger sets the logger used for stage diagnostics. A nil logger
// restores the no-op default.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *Config) error {
		cfg.logger = logger
		return nil
	}
}

// Validate checks every field and returns an error wrapping
// [ErrConfiguration] for the first problem found.
func (c Config) Validate() error {
	if err := validateBand(c.Band); err != nil {
		return err
	}

	if math.IsNaN(c.PeakWaterLevel) || math.IsInf(c.PeakWaterLevel, 0) {
		return fmt.Errorf("%w: water level must be finite: %f", ErrConfiguration, c.PeakWaterLevel)
	}

	if err := checkMethod(c.Method); err != nil {
		return err
	}

	if err := validateResample(c.ResamplePoints); err != nil {
		return err
	}

	if err := validateSavgol(c.SavgolWindow, c.SavgolOrder); err != nil {
		return err
	}

	if err := validateSmoothing(c.Smoothing); err != nil {
		return err
	}

	if err := validateOutlier("outlier std", c.RemoveOutlierPSDs, c.OutlierStd); err != nil {
		return err
	}

	if err := validateOutlier("outlier curve std", c.RemoveOutlierCurves, c.OutlierCurveStd); err != nil {
		return err
	}

	return validateExclusions(c.Exclusions)
}

func validateBand(b Band) error {
	if math.IsNaN(b.Low) || math.IsNaN(b.High) || math.IsInf(b.High, 0) {
		return fmt.Errorf("%w: band must be finite: [%f, %f]", ErrConfiguration, b.Low, b.High)
	}

	if b.Low < 0 || !(b.High > b.Low) {
		return fmt.Errorf("%w: band must satisfy 0 <= low < high: [%f, %f]", ErrConfiguration, b.Low, b.High)
	}

	return nil
}

func validateResample(n int) error {
	if n < 0 || n == 1 {
		return fmt.Errorf("%w: resample points must be 0 or >= 2: %d", ErrConfiguration, n)
	}

	return nil
}

func validateSavgol(window, order int) error {
	if window < 0 {
		return fmt.Errorf("%w: savitzky-golay window must be >= 0: %d", ErrConfiguration, window)
	}

	if window > 0 && (order < 0 || order >= oddWindow(window)) {
		return fmt.Errorf("%w: savitzky-golay order must be in [0, window): %d", ErrConfiguration, order)
	}

	return nil
}

func validateSmoothing(s Smoothing) error {
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: unknown smoothing kind %d", ErrConfiguration, int(s.Kind))
	}

	if s.Kind == SmoothingNone {
		return nil
	}

	if !(s.Width > 0) || math.IsInf(s.Width, 0) {
		return fmt.Errorf("%w: %s smoothing width must be > 0: %f", ErrConfiguration, s.Kind, s.Width)
	}

	if s.Kind == SmoothingProportional && s.Width > 100 {
		return fmt.Errorf("%w: proportional smoothing width is a percentage: %f", ErrConfiguration, s.Width)
	}

	return nil
}

func validateOutlier(name string, enabled bool, std float64) error {
	if enabled && (!(std > 0) || math.IsInf(std, 0)) {
		return fmt.Errorf("%w: %s must be > 0: %f", ErrConfiguration, name, std)
	}

	return nil
}

func validateExclusions(ranges []TimeRange) error {
	for i, r := range ranges {
		if r.End.Before(r.Start) {
			return fmt.Errorf("%w: exclusion %d ends before it starts", ErrConfiguration, i)
		}
	}

	return nil
}

// oddWindow bumps an even window length to the next odd one.
func oddWindow(window int) int {
	if window%2 == 0 {
		return window + 1
	}

	return window
}
