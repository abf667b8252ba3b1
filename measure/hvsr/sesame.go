package hvsr

import (
	"fmt"
	"math"
)

// Test identifies one criterion of the SESAME (2004) battery.
type Test int

const (
	// TestWindowLength checks f0 > 10 / Lw.
	TestWindowLength Test = iota
	// TestSignificantCycles checks Nc = Lw * Nw * f0 > 200.
	TestSignificantCycles
	// TestCurveStd checks the log standard deviation of the window curves
	// over [0.5 f0, 2 f0).
	TestCurveStd
	// TestClarityBelow looks for f- in [f0/4, f0) with A0 / A(f-) > 2.
	TestClarityBelow
	// TestClarityAbove looks for f+ in (f0, 4 f0] with A0 / A(f+) > 2.
	TestClarityAbove
	// TestAmplitude checks A0 > 2.
	TestAmplitude
	// TestFrequencyStability requires peaks of both +-1 sigma curves
	// within 5% of f0.
	TestFrequencyStability
	// TestFrequencyStd checks Sf < epsilon(f0) * f0.
	TestFrequencyStd
	// TestAmplitudeStd checks Sa < theta(f0).
	TestAmplitudeStd

	// NumTests is the number of tests in the battery.
	NumTests = iota
)

// MaxScore is the highest score a peak can reach, one point per test.
const MaxScore = NumTests

const (
	minCycles         = 200.0
	minWindowCycles   = 10.0
	clarityRatio      = 2.0
	minAmplitude      = 2.0
	stabilityTol      = 0.05
	curveStdLimit     = 2.0
	curveStdLimitLowF = 3.0
	lowFrequency      = 0.5
)

var testNames = [NumTests]string{
	"Window Length Freq.",
	"Significant Cycles",
	"Low Curve StDev. over time",
	"Peak Freq. Clarity Below",
	"Peak Freq. Clarity Above",
	"Peak Amp. Clarity",
	"Freq. Stability",
	"Peak Stability (freq. std)",
	"Peak Stability (amp. std)",
}

func (t Test) String() string {
	if t >= 0 && t < NumTests {
		return testNames[t]
	}

	return fmt.Sprintf("Test(%d)", int(t))
}

// CurveReliability reports whether t is one of the three curve tests that
// a passing peak must satisfy.
func (t Test) CurveReliability() bool {
	return t <= TestCurveStd
}

// Bound is a frequency found by a clarity or stability search.
type Bound struct {
	Freq  float64
	Amp   float64
	Found bool
}

// Peak is a candidate resonance on the main curve and its test results.
type Peak struct {
	// Index is the bin of the peak on the curve axis.
	Index int
	F0    float64
	A0    float64

	// FMinus and FPlus are the clarity frequencies below and above f0.
	FMinus Bound
	FPlus  Bound
	// PMinus and PPlus are the nearest peaks of the -1 and +1 sigma curves.
	PMinus Bound
	PPlus  Bound

	Sf float64
	Sa float64

	Score  int
	Pass   [NumTests]bool
	Passes bool

	// Evidence used by the report.
	WindowSeconds float64
	Windows       int
	Cycles        float64
	LogStdLimit   float64
	MaxLogStd     float64
	Epsilon       float64
	Theta         float64
}

// Epsilon returns the SESAME frequency-spread factor for f0.
func Epsilon(f0 float64) float64 {
	return stepByFrequency(f0, [5]float64{0.25, 0.20, 0.15, 0.10, 0.05})
}

// Theta returns the SESAME log-amplitude spread threshold for f0.
func Theta(f0 float64) float64 {
	return stepByFrequency(f0, [5]float64{0.48, 0.40, 0.30, 0.25, 0.20})
}

// stepByFrequency picks a value for the bands <0.2, [0.2,0.5), [0.5,1.0),
// [1.0,2.0] and >2.0 Hz.
func stepByFrequency(f0 float64, v [5]float64) float64 {
	switch {
	case f0 < 0.2:
		return v[0]
	case f0 < 0.5:
		return v[1]
	case f0 < 1.0:
		return v[2]
	case f0 <= 2.0:
		return v[3]
	default:
		return v[4]
	}
}

// Assessor runs the test battery against peaks of one curve.
type Assessor struct {
	// Frequencies is the curve axis.
	Frequencies []float64
	Curve       []float64
	// LogStd is the per-bin standard deviation of log10 window curves.
	LogStd []float64
	// WindowSeconds and Windows describe the data behind the curve.
	WindowSeconds float64
	Windows       int
	// MinusPeaks and PlusPeaks are the initialized peaks of the -1 and +1
	// sigma curves.
	MinusPeaks []Peak
	PlusPeaks  []Peak
	// WindowPeaks holds the peak indices of every window curve.
	WindowPeaks [][]int
}

// Assess runs every test on each peak and returns the scored copies in the
// same order.
func (a Assessor) Assess(peaks []Peak) []Peak {
	out := make([]Peak, len(peaks))
	for i, p := range peaks {
		out[i] = a.assess(p)
	}

	return out
}

func (a Assessor) assess(p Peak) Peak {
	p.Score = 0
	p.Pass = [NumTests]bool{}
	p.WindowSeconds = a.WindowSeconds
	p.Windows = a.Windows

	p.Pass[TestWindowLength] = a.WindowSeconds > 0 && p.F0 > minWindowCycles/a.WindowSeconds

	p.Cycles = a.WindowSeconds * float64(a.Windows) * p.F0
	p.Pass[TestSignificantCycles] = p.Cycles > minCycles

	p.Pass[TestCurveStd] = a.curveStd(&p)

	p.FMinus = a.clarityBelow(p)
	p.Pass[TestClarityBelow] = p.FMinus.Found

	p.FPlus = a.clarityAbove(p)
	p.Pass[TestClarityAbove] = p.FPlus.Found

	p.Pass[TestAmplitude] = p.A0 > minAmplitude

	p.PMinus = nearestWithin(a.MinusPeaks, p.F0)
	p.PPlus = nearestWithin(a.PlusPeaks, p.F0)
	p.Pass[TestFrequencyStability] = p.PMinus.Found && p.PPlus.Found

	p.Epsilon = Epsilon(p.F0)
	p.Sf = math.NaN()
	if p.Index >= 0 && p.Index < len(a.Frequencies) {
		p.Sf = FrequencyStd(a.Frequencies, p.Index, a.WindowPeaks)
	}
	p.Pass[TestFrequencyStd] = p.Sf < p.Epsilon*p.F0

	p.Theta = Theta(p.F0)
	p.Sa = math.NaN()
	if p.Index >= 0 && p.Index < len(a.LogStd) {
		p.Sa = a.LogStd[p.Index]
	}
	p.Pass[TestAmplitudeStd] = p.Sa < p.Theta

	curve, rest := 0, 0
	for t, ok := range p.Pass {
		if !ok {
			continue
		}

		p.Score++

		if Test(t).CurveReliability() {
			curve++
		} else {
			rest++
		}
	}

	p.Passes = curve == 3 && rest >= 5

	return p
}

// curveStd checks the log standard deviation over [0.5 f0, 2 f0). A NaN
// value inside the range fails the test.
func (a Assessor) curveStd(p *Peak) bool {
	p.LogStdLimit = curveStdLimit
	if p.F0 < lowFrequency {
		p.LogStdLimit = curveStdLimitLowF
	}

	p.MaxLogStd = math.NaN()
	ok, seen := true, false

	for i, f := range a.Frequencies {
		if i >= len(a.LogStd) {
			break
		}

		if f < 0.5*p.F0 || f >= 2*p.F0 {
			continue
		}

		s := a.LogStd[i]
		if !(s < p.LogStdLimit) {
			ok = false
		}

		if !seen || s > p.MaxLogStd || math.IsNaN(s) {
			p.MaxLogStd = s
			seen = true
		}
	}

	return ok
}

// clarityBelow scans from the top of the axis downward for the first bin in
// [f0/4, f0) where the curve is less than half of A0.
func (a Assessor) clarityBelow(p Peak) Bound {
	for j := min(len(a.Frequencies), len(a.Curve)) - 1; j >= 0; j-- {
		f := a.Frequencies[j]
		if f >= p.F0/4 && f < p.F0 && clearAt(p.A0, a.Curve[j]) {
			return Bound{Freq: f, Amp: a.Curve[j], Found: true}
		}
	}

	return Bound{}
}

// clarityAbove scans upward for the first bin in (f0, 4 f0] where the curve
// is less than half of A0.
func (a Assessor) clarityAbove(p Peak) Bound {
	for j := range min(len(a.Frequencies), len(a.Curve)) {
		f := a.Frequencies[j]
		if f > p.F0 && f <= 4*p.F0 && clearAt(p.A0, a.Curve[j]) {
			return Bound{Freq: f, Amp: a.Curve[j], Found: true}
		}
	}

	return Bound{}
}

// clearAt reports A0 / amp > 2 for a positive, finite amp.
func clearAt(a0, amp float64) bool {
	if !(amp > 0) || math.IsInf(amp, 0) {
		return false
	}

	return a0/amp > clarityRatio
}

// nearestWithin returns the peak of candidates closest to f0 and whether it
// lies within 5% of f0. Found is false when candidates is empty.
func nearestWithin(candidates []Peak, f0 float64) Bound {
	if len(candidates) == 0 {
		return Bound{}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if math.Abs(c.F0-f0) < math.Abs(best.F0-f0) {
			best = c
		}
	}

	found := best.F0 >= f0*(1-stabilityTol) && best.F0 <= f0*(1+stabilityTol)

	return Bound{Freq: best.F0, Amp: best.A0, Found: found}
}
