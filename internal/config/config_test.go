package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/algo-hvsr/measure/bedrock"
	"github.com/cwbudde/algo-hvsr/measure/hvsr"
	"github.com/cwbudde/algo-hvsr/measure/noise"
	"github.com/cwbudde/algo-hvsr/measure/ppsd"
)

func TestDefaultMatchesPackages(t *testing.T) {
	c := Default()

	h, err := c.HVSR()
	if err != nil {
		t.Fatalf("HVSR: %v", err)
	}

	want := hvsr.DefaultConfig()
	if h.Method != want.Method || h.Band != want.Band || h.Smoothing != want.Smoothing {
		t.Fatalf("hvsr config = %+v, want %+v", h, want)
	}

	if c.PPSDConfig() != ppsd.DefaultConfig() {
		t.Fatalf("ppsd config = %+v, want defaults", c.PPSDConfig())
	}

	n, err := c.NoiseConfig()
	if err != nil {
		t.Fatalf("NoiseConfig: %v", err)
	}

	if n != noise.DefaultConfig() {
		t.Fatalf("noise config = %+v, want defaults", n)
	}

	b, err := c.BedrockSettings()
	if err != nil {
		t.Fatalf("BedrockSettings: %v", err)
	}

	if b != bedrock.DefaultSettings() {
		t.Fatalf("bedrock settings = %+v, want defaults", b)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
analysis:
  method: geometric mean
  band_low: 0.5
  band_high: 20
smoothing:
  kind: constant
  width: 5
outliers:
  curves: false
exclusions:
  - start: 2024-05-01T12:00:00Z
    end: 2024-05-01T12:05:00Z
noise:
  kind: antitrigger
  sta: 1
  warmup: 10
ppsd:
  window_seconds: 30
bedrock:
  model: vs
  unit: ft
logging:
  level: debug
`)

	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	h, err := c.HVSR()
	if err != nil {
		t.Fatalf("HVSR: %v", err)
	}

	if h.Method != hvsr.MethodGeometricMean {
		t.Fatalf("method = %v, want geometric mean", h.Method)
	}

	if h.Band != (hvsr.Band{Low: 0.5, High: 20}) {
		t.Fatalf("band = %v", h.Band)
	}

	if h.Smoothing.Kind != hvsr.SmoothingConstant || h.Smoothing.Width != 5 {
		t.Fatalf("smoothing = %+v", h.Smoothing)
	}

	if h.RemoveOutlierCurves {
		t.Fatal("curve outlier removal should be disabled")
	}

	if !h.RemoveOutlierPSDs || h.OutlierStd != hvsr.DefaultConfig().OutlierStd {
		t.Fatal("PSD outlier settings should keep their defaults")
	}

	wantStart := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if len(h.Exclusions) != 1 || !h.Exclusions[0].Start.Equal(wantStart) {
		t.Fatalf("exclusions = %+v", h.Exclusions)
	}

	if p := c.PPSDConfig(); p.WindowSeconds != 30 || p.Segments != ppsd.DefaultConfig().Segments {
		t.Fatalf("ppsd = %+v", p)
	}

	n, err := c.NoiseConfig()
	if err != nil {
		t.Fatalf("NoiseConfig: %v", err)
	}

	if n.Kind != noise.KindAntiTrigger || n.STASeconds != 1 || n.WarmupSeconds != 10 || n.LTASeconds != 30 {
		t.Fatalf("noise = %+v", n)
	}

	b, _ := c.BedrockSettings()
	if b.Unit != bedrock.Feet || b.Model != "vs" {
		t.Fatalf("bedrock = %+v", b)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "analysis: [1, 2"},
		{"unknown method", "analysis:\n  method: median\n"},
		{"dfa", "analysis:\n  method: dfa\n"},
		{"inverted band", "analysis:\n  band_low: 10\n  band_high: 1\n"},
		{"unknown smoothing", "smoothing:\n  kind: gaussian\n"},
		{"unknown noise kind", "noise:\n  kind: manual\n"},
		{"noise lta below sta", "noise:\n  sta: 40\n"},
		{"bad ppsd overlap", "ppsd:\n  overlap: 1.5\n"},
		{"bad unit", "bedrock:\n  unit: yards\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestParseUnsupportedMethod(t *testing.T) {
	_, err := Parse([]byte("analysis:\n  method: dfa\n"))
	if !errors.Is(err, hvsr.ErrUnsupportedMethod) {
		t.Fatalf("err = %v, want ErrUnsupportedMethod", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hvsr.yaml")
	if err := os.WriteFile(path, []byte("analysis:\n  peak_water_level: 2.5\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.Analysis.PeakWaterLevel != 2.5 {
		t.Fatalf("water level = %f, want 2.5", c.Analysis.PeakWaterLevel)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLogger(t *testing.T) {
	c := Default()
	c.Logging.Level = "debug"

	if l := c.Logger(); !l.Core().Enabled(-1) {
		t.Fatal("debug level should be enabled")
	}
}
