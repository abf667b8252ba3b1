// Package window generates the taper and smoothing-kernel windows used by the
// spectral estimators and smoothers in this module.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeTukey Type = iota
	TypeTriangle
)

// String returns the window name.
func (t Type) String() string {
	switch t {
	case TypeTukey:
		return "tukey"
	case TypeTriangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// Option configures window generation.
type Option func(*config)

type config struct {
	alpha float64
}

func defaultConfig() config {
	return config{
		alpha: 1,
	}
}

// WithAlpha configures the taper fraction for [TypeTukey].
func WithAlpha(v float64) Option {
	return func(c *config) {
		if v >= 0 {
			c.alpha = v
		}
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		x := samplePosition(i, length)
		out[i] = evalWindow(t, x, cfg)
	}

	if length == 1 {
		out[0] = 1
	}

	return out
}

// Tukey returns Tukey (tapered cosine) window coefficients. alpha is the
// fraction of the window covered by the cosine tapers; 0.1 gives the 10%
// taper customary for seismic noise spectra.
func Tukey(size int, alpha float64, opts ...Option) ([]float64, error) {
	if err := validateTukey(size, alpha); err != nil {
		return nil, err
	}

	return Generate(TypeTukey, size, append(opts, WithAlpha(alpha))...), nil
}

// Triangular returns the 2*halfWidth+1 point smoothing kernel with weight 1 at
// the center decreasing linearly to 0 at both edges:
//
//	w[h+d] = 1 - |d|/h,  d = -h..h
func Triangular(halfWidth int) ([]float64, error) {
	if halfWidth <= 0 {
		return nil, validateLength(halfWidth)
	}

	return Generate(TypeTriangle, 2*halfWidth+1), nil
}

// PowerGain returns the sum of squared coefficients, the normalization used
// when scaling a windowed periodogram to a power spectral density.
func PowerGain(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c * c
	}

	if sum == 0 {
		return 0, errZeroPowerGain
	}

	return sum, nil
}

// ApplyCoefficientsInPlace multiplies samples with coefficients in place.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return errMismatchedLength
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return nil
}

func evalWindow(t Type, x float64, cfg config) float64 {
	if x < 0 {
		x = 0
	}

	if x > 1 {
		x = 1
	}

	switch t {
	case TypeTukey:
		return tukeyAt(x, cfg.alpha)
	case TypeTriangle:
		return 1 - math.Abs(2*x-1)
	default:
		return 1
	}
}

func samplePosition(n, size int) float64 {
	if size <= 1 {
		return 0
	}

	return float64(n) / float64(size-1)
}

func hannAt(x float64) float64 {
	return 0.5 - 0.5*math.Cos(2*math.Pi*x)
}

func tukeyAt(x, alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}

	if alpha >= 1 {
		return hannAt(x)
	}

	a := alpha / 2
	switch {
	case x < a:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
	case x <= 1-a:
		return 1
	default:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
	}
}
