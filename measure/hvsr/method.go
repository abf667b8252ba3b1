package hvsr

import (
	"fmt"
	"math"
	"strings"
)

// Method selects how the two horizontal components are combined.
//
// The numeric values follow the published method numbering (Cox et al.,
// 2020), so configuration files may refer to a method by number.
type Method int

const (
	// MethodDFA is the Diffuse Field Assumption. It is declared for
	// completeness and always rejected with [ErrUnsupportedMethod].
	MethodDFA Method = iota + 1
	// MethodArithmeticMean uses H = (h1 + h2) / 2.
	MethodArithmeticMean
	// MethodGeometricMean uses H = sqrt(h1 * h2).
	MethodGeometricMean
	// MethodVectorSummation uses H = sqrt(p1 + p2).
	MethodVectorSummation
	// MethodQuadraticMean uses H = sqrt((p1 + p2) / 2).
	MethodQuadraticMean
	// MethodMaxHorizontal uses H = max(h1, h2).
	MethodMaxHorizontal
)

var methodNames = map[Method]string{
	MethodDFA:             "Diffuse Field Assumption",
	MethodArithmeticMean:  "Arithmetic Mean",
	MethodGeometricMean:   "Geometric Mean",
	MethodVectorSummation: "Vector Summation",
	MethodQuadraticMean:   "Quadratic Mean",
	MethodMaxHorizontal:   "Maximum Horizontal Value",
}

var methodAliases = map[string]Method{
	"dfa":                      MethodDFA,
	"diffuse field assumption": MethodDFA,
	"am":                       MethodArithmeticMean,
	"arithmetic mean":          MethodArithmeticMean,
	"gm":                       MethodGeometricMean,
	"geometric mean":           MethodGeometricMean,
	"vs":                       MethodVectorSummation,
	"vector summation":         MethodVectorSummation,
	"qm":                       MethodQuadraticMean,
	"quadratic mean":           MethodQuadraticMean,
	"mh":                       MethodMaxHorizontal,
	"max":                      MethodMaxHorizontal,
	"maximum horizontal":       MethodMaxHorizontal,
	"maximum horizontal value": MethodMaxHorizontal,
}

// Methods lists every declared method in numeric order.
func Methods() []Method {
	return []Method{
		MethodDFA, MethodArithmeticMean, MethodGeometricMean,
		MethodVectorSummation, MethodQuadraticMean, MethodMaxHorizontal,
	}
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}

	return fmt.Sprintf("Method(%d)", int(m))
}

// Valid reports whether m is a declared method.
func (m Method) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

// Supported reports whether m can be computed.
func (m Method) Supported() bool {
	return m.Valid() && m != MethodDFA
}

// ParseMethod resolves a method from its name, abbreviation or number.
// Matching is case-insensitive; '-' and '_' are treated as spaces.
func ParseMethod(s string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", " ", "_", " ").Replace(key)

	if m, ok := methodAliases[key]; ok {
		return m, nil
	}

	var n int
	if _, err := fmt.Sscanf(key, "%d", &n); err == nil && Method(n).Valid() {
		return Method(n), nil
	}

	return 0, fmt.Errorf("%w: unknown method %q", ErrConfiguration, s)
}

func checkMethod(m Method) error {
	if !m.Valid() {
		return fmt.Errorf("%w: unknown method %d", ErrConfiguration, int(m))
	}

	if m == MethodDFA {
		return fmt.Errorf("%w: %w: %s", ErrConfiguration, ErrUnsupportedMethod, m)
	}

	return nil
}

// Horizontal combines the horizontal powers p1 and p2 into a single
// horizontal amplitude.
func Horizontal(m Method, p1, p2 float64) (float64, error) {
	if err := checkMethod(m); err != nil {
		return 0, err
	}

	h1, h2 := math.Sqrt(p1), math.Sqrt(p2)

	switch m {
	case MethodArithmeticMean:
		return (h1 + h2) / 2, nil
	case MethodGeometricMean:
		return math.Sqrt(h1 * h2), nil
	case MethodVectorSummation:
		return math.Sqrt(p1 + p2), nil
	case MethodQuadraticMean:
		return math.Sqrt((p1 + p2) / 2), nil
	default:
		return math.Max(h1, h2), nil
	}
}

// BinPower converts two dB samples at the ends of a frequency step to
// linear power integrated over the step:
//
//	p = (10^(db0/10) + 10^(db1/10)) / 2 * |x1 - x0|
func BinPower(db0, db1, x0, x1 float64) float64 {
	lin0 := math.Pow(10, db0/10)
	lin1 := math.Pow(10, db1/10)

	return (lin0 + lin1) / 2 * math.Abs(x1-x0)
}

// Ratio computes the H/V ratio at one frequency step from the Z, N and E
// dB values at both ends of [x0, x1].
func Ratio(m Method, z, n, e [2]float64, x0, x1 float64) (float64, error) {
	pz := BinPower(z[0], z[1], x0, x1)
	if !(pz > 0) || math.IsInf(pz, 0) {
		return 0, fmt.Errorf("%w: vertical power %v at %g Hz", ErrNumeric, pz, x0)
	}

	h, err := Horizontal(m, BinPower(n[0], n[1], x0, x1), BinPower(e[0], e[1], x0, x1))
	if err != nil {
		return 0, err
	}

	return h / math.Sqrt(pz), nil
}
