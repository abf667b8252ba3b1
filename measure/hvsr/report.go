package hvsr

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const (
	markPass = "ok"
	markFail = "X"
)

func mark(ok bool) string {
	if ok {
		return markPass
	}

	return markFail
}

// Describe renders the evidence for test t on p as one line.
func (p Peak) Describe(t Test) string {
	ok := t >= 0 && t < NumTests && p.Pass[t]

	switch t {
	case TestWindowLength:
		return fmt.Sprintf("%.3f > 10 / %d  %s", p.F0, int(p.WindowSeconds), mark(ok))
	case TestSignificantCycles:
		return fmt.Sprintf("%.0f > 200  %s", p.Cycles, mark(ok))
	case TestCurveStd:
		return fmt.Sprintf("sigma_A for all freqs %.3f-%.3f < %g  %s", 0.5*p.F0, 2*p.F0, p.LogStdLimit, mark(ok))
	case TestClarityBelow:
		return describeClarity(p.FMinus, p.A0, p.A0/4, p.F0, ok)
	case TestClarityAbove:
		return describeClarity(p.FPlus, p.A0, p.F0, 4*p.F0, ok)
	case TestAmplitude:
		return fmt.Sprintf("%.2f > 2.0  %s", p.A0, mark(ok))
	case TestFrequencyStability:
		return fmt.Sprintf("P-: %s, P+: %s  %s", describeStability(p.PMinus, p.F0),
			describeStability(p.PPlus, p.F0), mark(ok))
	case TestFrequencyStd:
		return fmt.Sprintf("%.4f < %.2f * %.3f  %s", p.Sf, p.Epsilon, p.F0, mark(ok))
	case TestAmplitudeStd:
		return fmt.Sprintf("%.4f < %.2f  %s", p.Sa, p.Theta, mark(ok))
	default:
		return t.String()
	}
}

func describeClarity(b Bound, a0, lo, hi float64, ok bool) string {
	if !b.Found {
		return fmt.Sprintf("no A_h/v in freqs %.3f-%.3f < %.3f  %s", lo, hi, a0/2, mark(ok))
	}

	return fmt.Sprintf("A(%.3f): %.3f < %.3f  %s", b.Freq, b.Amp, a0/2, mark(ok))
}

func describeStability(b Bound, f0 float64) string {
	if b.Freq == 0 && !b.Found {
		return "none"
	}

	return fmt.Sprintf("%.3f within 5%% of %.3f", b.Freq, f0)
}

// Summary renders a one-line verdict for p.
func (p Peak) Summary() string {
	verdict := "fails"
	if p.Passes {
		verdict = "passes"
	}

	return fmt.Sprintf("f0=%.3f Hz A0=%.3f score %d/%d, %s", p.F0, p.A0, p.Score, MaxScore, verdict)
}

// WriteReport writes a table with one row per peak and one column per test,
// followed by the best peak verdict.
func WriteReport(w io.Writer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Method:\t%s\n", r.Method)
	fmt.Fprintf(tw, "Windows:\t%d of %d used\n", r.WindowsUsed, r.WindowsTotal)
	fmt.Fprintln(tw)

	header := []string{"f0 [Hz]", "A0"}
	for t := range Test(NumTests) {
		header = append(header, t.String())
	}

	header = append(header, "Score", "Passes")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, p := range r.Peaks {
		cols := []string{fmt.Sprintf("%.3f", p.F0), fmt.Sprintf("%.3f", p.A0)}
		for _, ok := range p.Pass {
			cols = append(cols, mark(ok))
		}

		cols = append(cols, fmt.Sprintf("%d/%d", p.Score, MaxScore), fmt.Sprintf("%t", p.Passes))
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}

	fmt.Fprintln(tw)

	if r.BestPeak == nil {
		fmt.Fprintln(tw, "Best peak:\tnone")
		return tw.Flush()
	}

	fmt.Fprintf(tw, "Best peak:\t%s\n", r.BestPeak.Summary())
	for t := range Test(NumTests) {
		fmt.Fprintf(tw, "  %s:\t%s\n", t, r.BestPeak.Describe(t))
	}

	return tw.Flush()
}
