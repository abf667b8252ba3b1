// Package bedrock converts a fundamental resonance frequency into an
// estimated depth to bedrock.
//
// Two approaches are supported: empirical power-law calibrations of the
// form depth = a * f0^-b, and the quarter-wavelength rule depth = Vs / (4 f0).
package bedrock

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultShearVelocity is the sediment shear-wave velocity in m/s used
	// by the quarter-wavelength rule.
	DefaultShearVelocity = 563.0
	// FeetPerMeter converts meters to feet.
	FeetPerMeter = 3.281
	// DefaultModel is the calibration used when none is named.
	DefaultModel = "ISGS_All"
	// DefaultDecimals is the rounding applied to reported depths.
	DefaultDecimals = 3
)

var (
	ErrUnknownModel = errors.New("bedrock: unknown model")
	ErrInvalidModel = errors.New("bedrock: invalid model parameters")
	ErrFrequency    = errors.New("bedrock: frequency must be finite and > 0")
	ErrUnit         = errors.New("bedrock: unknown unit")
)

// Model is a power-law calibration depth = A * f0^-B in meters.
type Model struct {
	Name string
	A    float64
	B    float64
}

// published calibrations, in the order they are listed.
var models = []Model{
	{"ISGS_All", 141.81, 1.582},
	{"ISGS_North", 142.95, 1.312},
	{"ISGS_Central", 119.17, 1.21},
	{"ISGS_Southeast", 67.973, 1.166},
	{"ISGS_Southwest", 61.238, 1.003},
	{"ISGS_North_Central", 117.44, 1.095},
	{"ISGS_SW_SE", 62.62, 1.039},
	{"Minnesota_All", 121, 1.323},
	{"Minnesota_Twin_Cities", 129, 1.295},
	{"Minnesota_South_Central", 135, 1.248},
	{"Minnesota_River_Valleys", 83, 1.232},
	{"Rhine_Graben", 96, 1.388},
	{"Ibsvon_A", 96, 1.388},
	{"Ibsvon_B", 146, 1.375},
	{"Delgado_A", 55.11, 1.256},
	{"Delgado_B", 55.64, 1.268},
	{"Parolai", 108, 1.551},
	{"Hinzen", 137, 1.19},
	{"Birgoren", 150.99, 1.153},
	{"Ozalaybey", 141, 1.270},
	{"Harutoonian", 73, 1.170},
	{"Fairchild", 90.53, 1},
	{"DelMonaco", 53.461, 1.01},
	{"Tun", 136, 1.357},
	{"Thabet_A", 117.13, 1.197},
	{"Thabet_B", 105.14, 0.899},
	{"Thabet_C", 132.67, 1.084},
	{"Thabet_D", 116.62, 1.169},
}

// names selecting the quarter-wavelength rule.
var shearWaveNames = []string{"shear", "swave", "shearwave", "rayleigh", "rayleighwave", "vs"}

// Models returns the built-in calibrations.
func Models() []Model {
	return append([]Model(nil), models...)
}

// LookupModel finds a built-in calibration by case-insensitive name.
func LookupModel(name string) (Model, error) {
	for _, m := range models {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}

	return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

// NewModel returns a custom calibration. The exponent is expected to be
// the smaller parameter; when b >= a the two are swapped.
func NewModel(a, b float64) (Model, error) {
	if a == 0 || b == 0 || math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return Model{}, fmt.Errorf("%w: a=%g b=%g", ErrInvalidModel, a, b)
	}

	if b >= a {
		a, b = b, a
	}

	return Model{Name: "custom", A: a, B: b}, nil
}

// Depth returns the calibrated depth in meters for f0 in Hz.
func (m Model) Depth(f0 float64) (float64, error) {
	if err := checkFrequency(f0); err != nil {
		return 0, err
	}

	return m.A * math.Pow(f0, -m.B), nil
}

func (m Model) String() string {
	return fmt.Sprintf("%s (%g * f0^-%g)", m.Name, m.A, m.B)
}

// QuarterWavelength returns Vs / (4 f0) in meters.
func QuarterWavelength(f0, vs float64) (float64, error) {
	if err := checkFrequency(f0); err != nil {
		return 0, err
	}

	if !(vs > 0) || math.IsInf(vs, 0) {
		return 0, fmt.Errorf("%w: shear velocity must be > 0: %g", ErrInvalidModel, vs)
	}

	return vs / (4 * f0), nil
}

// Unit is a length unit for reported depths.
type Unit int

const (
	Meters Unit = iota
	Feet
)

func (u Unit) String() string {
	if u == Feet {
		return "ft"
	}

	return "m"
}

// ParseUnit accepts "m", "meters", "ft" and "feet".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "m", "meter", "meters", "metre", "metres":
		return Meters, nil
	case "ft", "feet", "foot":
		return Feet, nil
	}

	return Meters, fmt.Errorf("%w: %q", ErrUnit, s)
}

// Round rounds half up to ndigits decimals.
func Round(v float64, ndigits int) float64 {
	if ndigits <= 0 {
		return math.Floor(v + 0.5)
	}

	scale := math.Pow(10, float64(ndigits))

	return math.Floor(v*scale+0.5) / scale
}

// Settings select how a depth is computed and reported.
type Settings struct {
	// Model is a built-in calibration name, a shear-wave alias such as
	// "vs", or two numbers "a, b" for a custom calibration.
	Model         string
	ShearVelocity float64
	Unit          Unit
	Decimals      int
}

// DefaultSettings uses the ISGS_All calibration in meters.
func DefaultSettings() Settings {
	return Settings{
		Model:         DefaultModel,
		ShearVelocity: DefaultShearVelocity,
		Unit:          Meters,
		Decimals:      DefaultDecimals,
	}
}

// Estimate is the outcome of [Depth].
type Estimate struct {
	Frequency float64
	Depth     float64
	Unit      Unit
	Method    string
}

func (e Estimate) String() string {
	return fmt.Sprintf("%g %s at f0 = %.3f Hz (%s)", e.Depth, e.Unit, e.Frequency, e.Method)
}

// Depth estimates the bedrock depth for f0 according to s.
func Depth(f0 float64, s Settings) (Estimate, error) {
	name := strings.TrimSpace(s.Model)
	if name == "" {
		name = DefaultModel
	}

	var (
		meters float64
		method string
		err    error
	)

	if isShearWave(name) {
		vs := s.ShearVelocity
		if vs == 0 {
			vs = DefaultShearVelocity
		}

		meters, err = QuarterWavelength(f0, vs)
		method = fmt.Sprintf("quarter wavelength, Vs = %g m/s", vs)
	} else {
		var m Model

		m, err = resolveModel(name)
		if err != nil {
			return Estimate{}, err
		}

		meters, err = m.Depth(f0)
		method = m.String()
	}

	if err != nil {
		return Estimate{}, err
	}

	if s.Unit == Feet {
		meters *= FeetPerMeter
	}

	return Estimate{
		Frequency: f0,
		Depth:     Round(meters, s.Decimals),
		Unit:      s.Unit,
		Method:    method,
	}, nil
}

func resolveModel(name string) (Model, error) {
	if m, err := LookupModel(name); err == nil {
		return m, nil
	}

	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '(' || r == ')'
	})
	if len(fields) != 2 {
		return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}

	a, errA := strconv.ParseFloat(fields[0], 64)
	b, errB := strconv.ParseFloat(fields[1], 64)

	if errA != nil || errB != nil {
		return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}

	return NewModel(a, b)
}

func isShearWave(name string) bool {
	for _, n := range shearWaveNames {
		if strings.EqualFold(n, name) {
			return true
		}
	}

	return false
}

func checkFrequency(f0 float64) error {
	if !(f0 > 0) || math.IsInf(f0, 0) {
		return fmt.Errorf("%w: %g", ErrFrequency, f0)
	}

	return nil
}
