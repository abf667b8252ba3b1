// Package synth generates three-component ambient noise records with a
// horizontal site resonance, for demos and end-to-end tests.
package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cwbudde/algo-hvsr/measure/hvsr"
	"github.com/cwbudde/algo-hvsr/measure/ppsd"
)

// ErrConfig reports invalid generator settings.
var ErrConfig = errors.New("synth: invalid configuration")

// Config describes the synthetic record.
type Config struct {
	SampleRate float64
	Seconds    float64
	// F0 is the resonance frequency in Hz and Q its quality factor.
	F0 float64
	Q  float64
	// Gain scales the resonant part added to the horizontal channels. The
	// horizontal to vertical amplitude ratio at F0 is about 1 + Gain.
	Gain           float64
	NoiseAmplitude float64
	Seed           int64
	Start          time.Time
}

// DefaultConfig returns a 20 minute record at 100 Hz resonating at 2 Hz.
func DefaultConfig() Config {
	return Config{
		SampleRate:     100,
		Seconds:        1200,
		F0:             2,
		Q:              4,
		Gain:           4,
		NoiseAmplitude: 1,
		Seed:           1,
		Start:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	switch {
	case !(c.SampleRate > 0):
		return fmt.Errorf("%w: sample rate must be > 0: %g", ErrConfig, c.SampleRate)
	case !(c.Seconds > 0):
		return fmt.Errorf("%w: duration must be > 0: %g", ErrConfig, c.Seconds)
	case !(c.F0 > 0) || c.F0 >= c.SampleRate/2:
		return fmt.Errorf("%w: f0 must be in (0, %g): %g", ErrConfig, c.SampleRate/2, c.F0)
	case !(c.Q > 0):
		return fmt.Errorf("%w: q must be > 0: %g", ErrConfig, c.Q)
	case c.Gain < 0:
		return fmt.Errorf("%w: gain must be >= 0: %g", ErrConfig, c.Gain)
	case !(c.NoiseAmplitude > 0):
		return fmt.Errorf("%w: noise amplitude must be > 0: %g", ErrConfig, c.NoiseAmplitude)
	}

	return nil
}

// Record holds the generated traces.
type Record struct {
	Z, N, E ppsd.Trace
}

// Generate builds the record. Equal configs give identical records.
func Generate(cfg Config) (Record, error) {
	if err := cfg.Validate(); err != nil {
		return Record{}, err
	}

	n := int(cfg.Seconds * cfg.SampleRate)
	trace := func(samples []float64) ppsd.Trace {
		return ppsd.Trace{Samples: samples, SampleRate: cfg.SampleRate, Start: cfg.Start}
	}

	return Record{
		Z: trace(noise(cfg.Seed, cfg.NoiseAmplitude, n)),
		N: trace(cfg.horizontal(cfg.Seed+1, n)),
		E: trace(cfg.horizontal(cfg.Seed+2, n)),
	}, nil
}

// Components estimates the PSDs of all three traces.
func (r Record) Components(cfg ppsd.Config) (hvsr.Components, error) {
	return ppsd.EstimateComponents(r.Z, r.N, r.E, cfg)
}

func (c Config) horizontal(seed int64, n int) []float64 {
	x := noise(seed, c.NoiseAmplitude, n)
	res := newResonator(c.F0, c.Q, c.SampleRate)

	for i, v := range x {
		x[i] = v + c.Gain*res.process(v)
	}

	return x
}

func noise(seed int64, amplitude float64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))

	out := make([]float64, n)
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// resonator is a 0 dB peak gain bandpass biquad in transposed direct
// form II.
type resonator struct {
	b0, b2 float64
	a1, a2 float64
	d0, d1 float64
}

func newResonator(freq, q, sampleRate float64) *resonator {
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	return &resonator{
		b0: alpha / a0,
		b2: -alpha / a0,
		a1: -2 * math.Cos(w0) / a0,
		a2: (1 - alpha) / a0,
	}
}

func (r *resonator) process(x float64) float64 {
	y := r.b0*x + r.d0
	r.d0 = -r.a1*y + r.d1
	r.d1 = r.b2*x - r.a2*y

	return y
}
