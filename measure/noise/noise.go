// Package noise finds noisy stretches of seismic noise traces and reports
// them as [hvsr.TimeRange] exclusions.
//
// Two detectors are available and may run together:
//
//   - an STA/LTA antitrigger that excludes transients where the
//     short-term to long-term energy ratio rises above TriggerOn until it
//     falls below TriggerOff
//   - an amplitude threshold that excludes samples whose magnitude exceeds
//     Percent of the trace maximum, padded by a few samples
package noise

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/cwbudde/algo-hvsr/measure/hvsr"
	"github.com/cwbudde/algo-hvsr/measure/ppsd"
	vecmath "github.com/cwbudde/algo-vecmath"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

const (
	defaultSTASeconds = 2
	defaultLTASeconds = 30
	defaultTriggerOn  = 5
	defaultTriggerOff = 0.5
	defaultPercent    = 0.995

	// thresholdGap is the sample spacing below which threshold hits join
	// one range; each range is padded by half of it on both sides.
	thresholdGap = 10
)

// ErrConfig reports invalid detector settings.
var ErrConfig = errors.New("noise: invalid configuration")

// Kind selects which detectors run.
type Kind int

const (
	// KindNone disables detection.
	KindNone Kind = iota
	// KindAuto runs the amplitude threshold and the antitrigger.
	KindAuto
	// KindAntiTrigger runs only the STA/LTA antitrigger.
	KindAntiTrigger
	// KindThreshold runs only the amplitude threshold.
	KindThreshold
)

var kindAliases = map[string]Kind{
	"none":            KindNone,
	"off":             KindNone,
	"false":           KindNone,
	"auto":            KindAuto,
	"automatic":       KindAuto,
	"all":             KindAuto,
	"a":               KindAuto,
	"stalta":          KindAntiTrigger,
	"sta/lta":         KindAntiTrigger,
	"anti":            KindAntiTrigger,
	"antitrigger":     KindAntiTrigger,
	"trigger":         KindAntiTrigger,
	"at":              KindAntiTrigger,
	"noise threshold": KindThreshold,
	"noise":           KindThreshold,
	"threshold":       KindThreshold,
	"n":               KindThreshold,
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuto:
		return "auto"
	case KindAntiTrigger:
		return "antitrigger"
	case KindThreshold:
		return "threshold"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind resolves a detector kind from its name or alias.
func ParseKind(s string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", " ")
	key = strings.ReplaceAll(key, "_", " ")

	if k, ok := kindAliases[key]; ok {
		return k, nil
	}

	return KindNone, fmt.Errorf("%w: unknown noise removal kind %q", ErrConfig, s)
}

func (k Kind) antiTrigger() bool { return k == KindAuto || k == KindAntiTrigger }
func (k Kind) threshold() bool   { return k == KindAuto || k == KindThreshold }

// Config holds the detector settings.
type Config struct {
	Kind Kind
	// STASeconds and LTASeconds are the short and long averaging windows.
	STASeconds float64
	LTASeconds float64
	// TriggerOn starts an exclusion; TriggerOff ends it.
	TriggerOn  float64
	TriggerOff float64
	// Percent is the fraction of the maximum magnitude above which samples
	// are excluded. Values above 1 are read as percentages.
	Percent float64
	// WarmupSeconds excludes the start of every trace.
	WarmupSeconds float64
}

// DefaultConfig returns the detector defaults with detection disabled.
func DefaultConfig() Config {
	return Config{
		Kind:       KindNone,
		STASeconds: defaultSTASeconds,
		LTASeconds: defaultLTASeconds,
		TriggerOn:  defaultTriggerOn,
		TriggerOff: defaultTriggerOff,
		Percent:    defaultPercent,
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	switch {
	case c.Kind < KindNone || c.Kind > KindThreshold:
		return fmt.Errorf("%w: unknown kind %d", ErrConfig, int(c.Kind))
	case !(c.STASeconds > 0) || !(c.LTASeconds > c.STASeconds):
		return fmt.Errorf("%w: need 0 < sta < lta: %f, %f", ErrConfig, c.STASeconds, c.LTASeconds)
	case !(c.TriggerOff > 0) || !(c.TriggerOn > c.TriggerOff):
		return fmt.Errorf("%w: need 0 < trigger off < trigger on: %f, %f", ErrConfig, c.TriggerOff, c.TriggerOn)
	case !(c.Percent > 0) || c.Percent > 100:
		return fmt.Errorf("%w: percent must be in (0, 100]: %f", ErrConfig, c.Percent)
	case c.WarmupSeconds < 0 || math.IsInf(c.WarmupSeconds, 0):
		return fmt.Errorf("%w: warmup must be >= 0: %f", ErrConfig, c.WarmupSeconds)
	}

	return nil
}

func (c Config) fraction() float64 {
	if c.Percent > 1 {
		return c.Percent / 100
	}

	return c.Percent
}

// ClassicSTALTA returns the ratio of the short-term to the long-term mean
// energy of x, using trailing windows of nsta and nlta samples. The first
// nlta-1 values are zero. A trace shorter than nlta yields all zeros.
func ClassicSTALTA(x []float64, nsta, nlta int) []float64 {
	n := len(x)
	out := make([]float64, n)

	if nsta < 1 || nlta < nsta || nlta > n {
		return out
	}

	energy := make([]float64, n)
	vecmath.MulBlock(energy, x, x)
	floats.CumSum(energy, energy)

	for i := nlta - 1; i < n; i++ {
		sta := energy[i]
		if i >= nsta {
			sta -= energy[i-nsta]
		}

		lta := energy[i]
		if i >= nlta {
			lta -= energy[i-nlta]
		}

		sta /= float64(nsta)
		lta /= float64(nlta)

		if lta < math.SmallestNonzeroFloat64 {
			lta = math.SmallestNonzeroFloat64
		}

		out[i] = sta / lta
	}

	return out
}

// TriggerOnset returns [on, off] sample pairs where cf rises above on and
// later drops below off. A trigger still active at the end closes on the
// last sample.
func TriggerOnset(cf []float64, on, off float64) [][2]int {
	var (
		out    [][2]int
		start  int
		active bool
	)

	for i, v := range cf {
		switch {
		case !active && v > on:
			start, active = i, true
		case active && v < off:
			out = append(out, [2]int{start, i})
			active = false
		}
	}

	if active {
		out = append(out, [2]int{start, len(cf) - 1})
	}

	return out
}

// ThresholdRanges returns padded sample ranges where |x| exceeds fraction
// times the maximum magnitude of x. Hits closer than ten samples share a
// range. Ranges are clamped to the trace.
func ThresholdRanges(x []float64, fraction float64) [][2]int {
	if len(x) == 0 {
		return nil
	}

	peak := vecmath.MaxAbs(x)
	if !(peak > 0) {
		return nil
	}

	limit := fraction * peak
	last := len(x) - 1
	half := thresholdGap / 2

	var (
		out  [][2]int
		prev = -thresholdGap
	)

	for i, v := range x {
		if math.Abs(v) <= limit {
			continue
		}

		if len(out) > 0 && i-prev < thresholdGap {
			out[len(out)-1][1] = min(last, i+half)
		} else {
			out = append(out, [2]int{max(0, i-half), min(last, i+half)})
		}

		prev = i
	}

	return out
}

// Detect runs the configured detectors on every trace and returns the
// merged exclusion ranges sorted by start time.
func Detect(cfg Config, traces ...ppsd.Trace) ([]hvsr.TimeRange, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Kind == KindNone && cfg.WarmupSeconds == 0 {
		return nil, nil
	}

	found := make([][]hvsr.TimeRange, len(traces))

	var g errgroup.Group

	for i, tr := range traces {
		g.Go(func() error {
			ranges, err := detectTrace(cfg, tr)
			if err != nil {
				return fmt.Errorf("trace %d: %w", i, err)
			}

			found[i] = ranges

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Merge(slices.Concat(found...)), nil
}

func detectTrace(cfg Config, tr ppsd.Trace) ([]hvsr.TimeRange, error) {
	if !(tr.SampleRate > 0) {
		return nil, fmt.Errorf("%w: sample rate must be > 0: %f", ErrConfig, tr.SampleRate)
	}

	at := func(sec float64) time.Time {
		return tr.Start.Add(time.Duration(sec * float64(time.Second)))
	}
	sample := func(i int) float64 { return float64(i) / tr.SampleRate }

	var out []hvsr.TimeRange

	if cfg.WarmupSeconds > 0 {
		out = append(out, hvsr.TimeRange{Start: tr.Start, End: at(cfg.WarmupSeconds)})
	}

	if cfg.Kind.threshold() {
		for _, r := range ThresholdRanges(tr.Samples, cfg.fraction()) {
			out = append(out, hvsr.TimeRange{Start: at(sample(r[0])), End: at(sample(r[1]))})
		}
	}

	if cfg.Kind.antiTrigger() {
		nsta := int(cfg.STASeconds * tr.SampleRate)
		nlta := int(cfg.LTASeconds * tr.SampleRate)
		cf := ClassicSTALTA(tr.Samples, nsta, nlta)

		// The ratio lags the event by the short window.
		shift := func(i int) float64 {
			t := sample(i)
			if t < cfg.STASeconds {
				return t
			}
			return t - cfg.STASeconds
		}

		for _, r := range TriggerOnset(cf, cfg.TriggerOn, cfg.TriggerOff) {
			start, end := shift(r[0]), shift(r[1])
			out = append(out, hvsr.TimeRange{Start: at(start), End: at(max(start, end))})
		}
	}

	return out, nil
}

// Merge sorts ranges by start and joins those that overlap.
func Merge(ranges []hvsr.TimeRange) []hvsr.TimeRange {
	if len(ranges) == 0 {
		return nil
	}

	sorted := slices.Clone(ranges)
	slices.SortFunc(sorted, func(a, b hvsr.TimeRange) int { return a.Start.Compare(b.Start) })

	out := []hvsr.TimeRange{sorted[0]}
	for _, r := range sorted[1:] {
		cur := &out[len(out)-1]
		if !r.Start.After(cur.End) {
			if r.End.After(cur.End) {
				cur.End = r.End
			}
			continue
		}

		out = append(out, r)
	}

	return out
}
