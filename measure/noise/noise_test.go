package noise

import (
	"errors"
	"testing"
	"time"

	"github.com/cwbudde/algo-hvsr/internal/testutil"
	"github.com/cwbudde/algo-hvsr/measure/hvsr"
	"github.com/cwbudde/algo-hvsr/measure/ppsd"
)

const testRate = 100.0

var testStart = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func at(sec float64) time.Time {
	return testStart.Add(time.Duration(sec * float64(time.Second)))
}

// burst returns a 7 Hz unit sine with a 50x louder stretch over [from, to).
func burst(length, from, to int) []float64 {
	x := testutil.DeterministicSine(7, testRate, 1, length)
	for i := from; i < to; i++ {
		x[i] *= 50
	}

	return x
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"auto":            KindAuto,
		"Automatic":       KindAuto,
		"a":               KindAuto,
		"stalta":          KindAntiTrigger,
		"anti-trigger":    KindAntiTrigger,
		"AT":              KindAntiTrigger,
		"noise threshold": KindThreshold,
		"noise_threshold": KindThreshold,
		"n":               KindThreshold,
		"none":            KindNone,
	}

	for in, want := range tests {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseKind("manual"); !errors.Is(err, ErrConfig) {
		t.Fatalf("ParseKind(manual) err = %v, want ErrConfig", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown kind", func(c *Config) { c.Kind = Kind(9) }},
		{"zero sta", func(c *Config) { c.STASeconds = 0 }},
		{"lta below sta", func(c *Config) { c.LTASeconds = 1 }},
		{"off above on", func(c *Config) { c.TriggerOff = 6 }},
		{"zero percent", func(c *Config) { c.Percent = 0 }},
		{"percent above 100", func(c *Config) { c.Percent = 101 }},
		{"negative warmup", func(c *Config) { c.WarmupSeconds = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
				t.Fatalf("err = %v, want ErrConfig", err)
			}
		})
	}
}

func TestClassicSTALTAConstant(t *testing.T) {
	cf := ClassicSTALTA(testutil.DC(1, 100), 5, 20)

	for i, v := range cf {
		want := 1.0
		if i < 19 {
			want = 0
		}

		if v != want {
			t.Fatalf("cf[%d] = %g, want %g", i, v, want)
		}
	}
}

func TestClassicSTALTAShortTrace(t *testing.T) {
	for i, v := range ClassicSTALTA(testutil.DC(1, 10), 5, 20) {
		if v != 0 {
			t.Fatalf("cf[%d] = %g, want 0", i, v)
		}
	}
}

func TestTriggerOnset(t *testing.T) {
	cf := []float64{0, 1, 6, 7, 2, 0.4, 1, 6, 3}

	got := TriggerOnset(cf, 5, 0.5)
	want := [][2]int{{2, 5}, {7, 8}}

	if len(got) != len(want) {
		t.Fatalf("triggers = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("triggers = %v, want %v", got, want)
		}
	}
}

func TestAntiTriggerFindsBurst(t *testing.T) {
	x := burst(12000, 5000, 5200)
	cf := ClassicSTALTA(x, 200, 3000)

	triggers := TriggerOnset(cf, 5, 0.5)
	if len(triggers) != 1 {
		t.Fatalf("triggers = %v, want one", triggers)
	}

	on, off := triggers[0][0], triggers[0][1]
	if on < 5000 || on > 5200 {
		t.Fatalf("trigger on = %d, want in [5000, 5200]", on)
	}

	if off <= 5200 || off > 5600 {
		t.Fatalf("trigger off = %d, want in (5200, 5600]", off)
	}
}

func TestThresholdRangesSingleSpike(t *testing.T) {
	got := ThresholdRanges(testutil.Spike(1000, 300, 0.1, 10), 0.995)

	if len(got) != 1 || got[0] != [2]int{295, 305} {
		t.Fatalf("ranges = %v, want [[295 305]]", got)
	}
}

func TestThresholdRangesJoinsCloseHits(t *testing.T) {
	x := testutil.Spike(1000, 300, 0.1, 10)
	x[305] = -10
	x[600] = 10
	x[998] = 10

	got := ThresholdRanges(x, 0.995)
	want := [][2]int{{295, 310}, {595, 605}, {993, 999}}

	if len(got) != len(want) {
		t.Fatalf("ranges = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranges = %v, want %v", got, want)
		}
	}
}

func TestThresholdRangesSilentTrace(t *testing.T) {
	if got := ThresholdRanges(make([]float64, 50), 0.995); got != nil {
		t.Fatalf("ranges = %v, want none", got)
	}
}

func TestMerge(t *testing.T) {
	got := Merge([]hvsr.TimeRange{
		{Start: at(50), End: at(60)},
		{Start: at(10), End: at(20)},
		{Start: at(15), End: at(30)},
		{Start: at(30), End: at(35)},
	})

	want := []hvsr.TimeRange{
		{Start: at(10), End: at(35)},
		{Start: at(50), End: at(60)},
	}

	if len(got) != len(want) {
		t.Fatalf("merged = %v, want %v", got, want)
	}

	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("merged[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDetectDisabled(t *testing.T) {
	tr := ppsd.Trace{Samples: burst(12000, 5000, 5200), SampleRate: testRate, Start: testStart}

	got, err := Detect(DefaultConfig(), tr)
	if err != nil || got != nil {
		t.Fatalf("Detect = %v, %v; want nothing", got, err)
	}
}

func TestDetectAntiTrigger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kind = KindAntiTrigger

	tr := ppsd.Trace{Samples: burst(12000, 5000, 5200), SampleRate: testRate, Start: testStart}

	got, err := Detect(cfg, tr)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("ranges = %v, want one", got)
	}

	// Both edges move back by the 2 s short window.
	if got[0].Start.Before(at(48)) || got[0].Start.After(at(50)) {
		t.Fatalf("start = %v, want within [48 s, 50 s]", got[0].Start.Sub(testStart))
	}

	if !got[0].End.After(at(50)) || got[0].End.After(at(54)) {
		t.Fatalf("end = %v, want within (50 s, 54 s]", got[0].End.Sub(testStart))
	}
}

func TestDetectMergesTracesAndWarmup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kind = KindThreshold
	cfg.Percent = 99.5
	cfg.WarmupSeconds = 5

	z := ppsd.Trace{Samples: testutil.Spike(2000, 1000, 0.1, 10), SampleRate: testRate, Start: testStart}
	n := ppsd.Trace{Samples: testutil.Spike(2000, 1008, 0.1, 10), SampleRate: testRate, Start: testStart}
	e := ppsd.Trace{Samples: testutil.Spike(2000, 1500, 0.1, 10), SampleRate: testRate, Start: testStart}

	got, err := Detect(cfg, z, n, e)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	want := []hvsr.TimeRange{
		{Start: at(0), End: at(5)},
		{Start: at(9.95), End: at(10.13)},
		{Start: at(14.95), End: at(15.05)},
	}

	if len(got) != len(want) {
		t.Fatalf("ranges = %v, want %v", got, want)
	}

	for i := range want {
		if d := got[i].Start.Sub(want[i].Start).Abs(); d > time.Microsecond {
			t.Fatalf("range %d start off by %v", i, d)
		}

		if d := got[i].End.Sub(want[i].End).Abs(); d > time.Microsecond {
			t.Fatalf("range %d end off by %v", i, d)
		}
	}
}

func TestDetectRejectsBadRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kind = KindAuto

	if _, err := Detect(cfg, ppsd.Trace{Samples: make([]float64, 10)}); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}
