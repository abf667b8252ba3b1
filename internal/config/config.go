// Package config loads the YAML settings file shared by the hvsrinfo
// commands and converts it into the per-package configuration types.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/cwbudde/algo-hvsr/internal/logging"
	"github.com/cwbudde/algo-hvsr/measure/bedrock"
	"github.com/cwbudde/algo-hvsr/measure/hvsr"
	"github.com/cwbudde/algo-hvsr/measure/noise"
	"github.com/cwbudde/algo-hvsr/measure/ppsd"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the root of the settings file.
type Config struct {
	Analysis   AnalysisConfig    `yaml:"analysis"`
	Smoothing  SmoothingConfig   `yaml:"smoothing"`
	Outliers   OutliersConfig    `yaml:"outliers"`
	Exclusions []ExclusionConfig `yaml:"exclusions"`
	Noise      NoiseConfig       `yaml:"noise"`
	PPSD       PPSDConfig        `yaml:"ppsd"`
	Bedrock    BedrockConfig     `yaml:"bedrock"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// AnalysisConfig holds the curve and peak settings.
type AnalysisConfig struct {
	Method         string  `yaml:"method"`
	BandLow        float64 `yaml:"band_low"`
	BandHigh       float64 `yaml:"band_high"`
	PeakWaterLevel float64 `yaml:"peak_water_level"`
	ResamplePoints int     `yaml:"resample_points"`
	SavgolWindow   int     `yaml:"savgol_window"`
	SavgolOrder    int     `yaml:"savgol_order"`
}

// SmoothingConfig selects the frequency smoothing.
type SmoothingConfig struct {
	Kind  string  `yaml:"kind"`
	Width float64 `yaml:"width"`
}

// OutliersConfig controls both outlier filters.
type OutliersConfig struct {
	PSDs     bool    `yaml:"psds"`
	PSDStd   float64 `yaml:"psd_std"`
	Curves   bool    `yaml:"curves"`
	CurveStd float64 `yaml:"curve_std"`
}

// ExclusionConfig is a time range whose windows are discarded.
type ExclusionConfig struct {
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`
}

// NoiseConfig mirrors [noise.Config].
type NoiseConfig struct {
	Kind       string  `yaml:"kind"`
	STA        float64 `yaml:"sta"`
	LTA        float64 `yaml:"lta"`
	TriggerOn  float64 `yaml:"trigger_on"`
	TriggerOff float64 `yaml:"trigger_off"`
	Percent    float64 `yaml:"percent"`
	Warmup     float64 `yaml:"warmup"`
}

// PPSDConfig mirrors [ppsd.Config].
type PPSDConfig struct {
	WindowSeconds    float64 `yaml:"window_seconds"`
	Overlap          float64 `yaml:"overlap"`
	Segments         int     `yaml:"segments"`
	SegmentOverlap   float64 `yaml:"segment_overlap"`
	Taper            float64 `yaml:"taper"`
	SmoothingOctaves float64 `yaml:"smoothing_octaves"`
	StepOctaves      float64 `yaml:"step_octaves"`
	MinPeriod        float64 `yaml:"min_period"`
	MaxPeriod        float64 `yaml:"max_period"`
}

// BedrockConfig selects the depth model.
type BedrockConfig struct {
	Model         string  `yaml:"model"`
	ShearVelocity float64 `yaml:"shear_velocity"`
	Unit          string  `yaml:"unit"`
	Decimals      int     `yaml:"decimals"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the settings used when no file is given. Fields absent
// from a loaded file keep these values.
func Default() *Config {
	h := hvsr.DefaultConfig()
	p := ppsd.DefaultConfig()
	n := noise.DefaultConfig()
	b := bedrock.DefaultSettings()

	return &Config{
		Analysis: AnalysisConfig{
			Method:         h.Method.String(),
			BandLow:        h.Band.Low,
			BandHigh:       h.Band.High,
			PeakWaterLevel: h.PeakWaterLevel,
			ResamplePoints: h.ResamplePoints,
			SavgolWindow:   h.SavgolWindow,
			SavgolOrder:    h.SavgolOrder,
		},
		Smoothing: SmoothingConfig{Kind: h.Smoothing.Kind.String(), Width: h.Smoothing.Width},
		Outliers: OutliersConfig{
			PSDs:     h.RemoveOutlierPSDs,
			PSDStd:   h.OutlierStd,
			Curves:   h.RemoveOutlierCurves,
			CurveStd: h.OutlierCurveStd,
		},
		Noise: NoiseConfig{
			Kind:       n.Kind.String(),
			STA:        n.STASeconds,
			LTA:        n.LTASeconds,
			TriggerOn:  n.TriggerOn,
			TriggerOff: n.TriggerOff,
			Percent:    n.Percent,
			Warmup:     n.WarmupSeconds,
		},
		PPSD: PPSDConfig{
			WindowSeconds:    p.WindowSeconds,
			Overlap:          p.Overlap,
			Segments:         p.Segments,
			SegmentOverlap:   p.SegmentOverlap,
			Taper:            p.Taper,
			SmoothingOctaves: p.SmoothingOctaves,
			StepOctaves:      p.StepOctaves,
		},
		Bedrock: BedrockConfig{
			Model:         b.Model,
			ShearVelocity: b.ShearVelocity,
			Unit:          b.Unit.String(),
			Decimals:      b.Decimals,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads and validates a settings file.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML settings on top of [Default] and validates them.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that every section converts cleanly.
func (c *Config) Validate() error {
	if _, err := c.HVSR(); err != nil {
		return fmt.Errorf("invalid analysis settings: %w", err)
	}

	if _, err := c.NoiseConfig(); err != nil {
		return fmt.Errorf("invalid noise settings: %w", err)
	}

	if err := c.PPSDConfig().Validate(); err != nil {
		return fmt.Errorf("invalid ppsd settings: %w", err)
	}

	if _, err := c.BedrockSettings(); err != nil {
		return fmt.Errorf("invalid bedrock settings: %w", err)
	}

	return nil
}

// HVSR converts the analysis sections into options for [hvsr.NewAnalyzer].
func (c *Config) HVSR(extra ...hvsr.Option) (hvsr.Config, error) {
	method, err := hvsr.ParseMethod(c.Analysis.Method)
	if err != nil {
		return hvsr.Config{}, err
	}

	kind, err := hvsr.ParseSmoothingKind(c.Smoothing.Kind)
	if err != nil {
		return hvsr.Config{}, err
	}

	exclusions := make([]hvsr.TimeRange, len(c.Exclusions))
	for i, e := range c.Exclusions {
		exclusions[i] = hvsr.TimeRange{Start: e.Start, End: e.End}
	}

	opts := []hvsr.Option{
		hvsr.WithMethod(method),
		hvsr.WithBand(c.Analysis.BandLow, c.Analysis.BandHigh),
		hvsr.WithPeakWaterLevel(c.Analysis.PeakWaterLevel),
		hvsr.WithResamplePoints(c.Analysis.ResamplePoints),
		hvsr.WithSavitzkyGolay(c.Analysis.SavgolWindow, c.Analysis.SavgolOrder),
		hvsr.WithSmoothing(kind, c.Smoothing.Width),
		hvsr.WithOutlierPSDs(c.Outliers.PSDs, c.Outliers.PSDStd),
		hvsr.WithOutlierCurves(c.Outliers.Curves, c.Outliers.CurveStd),
		hvsr.WithExclusions(exclusions...),
	}

	return hvsr.ApplyOptions(hvsr.DefaultConfig(), append(opts, extra...)...)
}

// NoiseConfig converts the noise section.
func (c *Config) NoiseConfig() (noise.Config, error) {
	kind, err := noise.ParseKind(c.Noise.Kind)
	if err != nil {
		return noise.Config{}, err
	}

	cfg := noise.Config{
		Kind:          kind,
		STASeconds:    c.Noise.STA,
		LTASeconds:    c.Noise.LTA,
		TriggerOn:     c.Noise.TriggerOn,
		TriggerOff:    c.Noise.TriggerOff,
		Percent:       c.Noise.Percent,
		WarmupSeconds: c.Noise.Warmup,
	}

	return cfg, cfg.Validate()
}

// PPSDConfig converts the ppsd section.
func (c *Config) PPSDConfig() ppsd.Config {
	p := c.PPSD

	return ppsd.Config{
		WindowSeconds:    p.WindowSeconds,
		Overlap:          p.Overlap,
		Segments:         p.Segments,
		SegmentOverlap:   p.SegmentOverlap,
		Taper:            p.Taper,
		SmoothingOctaves: p.SmoothingOctaves,
		StepOctaves:      p.StepOctaves,
		MinPeriod:        p.MinPeriod,
		MaxPeriod:        p.MaxPeriod,
	}
}

// BedrockSettings converts the bedrock section.
func (c *Config) BedrockSettings() (bedrock.Settings, error) {
	unit, err := bedrock.ParseUnit(c.Bedrock.Unit)
	if err != nil {
		return bedrock.Settings{}, err
	}

	return bedrock.Settings{
		Model:         c.Bedrock.Model,
		ShearVelocity: c.Bedrock.ShearVelocity,
		Unit:          unit,
		Decimals:      c.Bedrock.Decimals,
	}, nil
}

// Logger builds the logger described by the logging section. Unknown
// level names log at info.
func (c *Config) Logger() *zap.Logger {
	return logging.New(
		logging.WithLevel(c.Logging.Level),
		logging.WithDevelopment(c.Logging.Development),
	)
}
