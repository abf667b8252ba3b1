// Command hvsrinfo computes horizontal-to-vertical spectral ratio curves and
// rates their peaks against the SESAME (2004) reliability criteria.
//
// Usage:
//
//	hvsrinfo [--config file.yaml] <command> [flags]
//
// Examples:
//
//	hvsrinfo synth --f0 2.5 --noise auto --dump psd.yaml
//	hvsrinfo analyze --input psd.yaml --method "geometric mean"
//	hvsrinfo depth --f0 1.2 --model ISGS_North --unit ft
//	hvsrinfo methods
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-hvsr/internal/config"
	"github.com/cwbudde/algo-hvsr/internal/synth"
	"github.com/cwbudde/algo-hvsr/measure/bedrock"
	"github.com/cwbudde/algo-hvsr/measure/hvsr"
	"github.com/cwbudde/algo-hvsr/measure/noise"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "hvsrinfo:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 "hvsrinfo",
		Usage:                "HVSR curves and SESAME peak reliability",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML settings file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override the logging level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			synthCommand(),
			analyzeCommand(),
			depthCommand(),
			methodsCommand(),
		},
	}
}

func loadConfig(cCtx *cli.Context) (*config.Config, error) {
	cfg := config.Default()

	if path := cCtx.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if level := cCtx.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}

func methodFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "method",
		Aliases: []string{"m"},
		Usage:   "horizontal combination method (overrides the config file)",
	}
}

func synthCommand() *cli.Command {
	return &cli.Command{
		Name:  "synth",
		Usage: "Synthesize a resonant noise record and analyze it",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "f0", Value: synth.DefaultConfig().F0, Usage: "resonance frequency in Hz"},
			&cli.Float64Flag{Name: "q", Value: synth.DefaultConfig().Q, Usage: "resonance quality factor"},
			&cli.Float64Flag{Name: "gain", Value: synth.DefaultConfig().Gain, Usage: "horizontal resonance gain"},
			&cli.Float64Flag{Name: "seconds", Value: synth.DefaultConfig().Seconds, Usage: "record length"},
			&cli.Float64Flag{Name: "rate", Value: synth.DefaultConfig().SampleRate, Usage: "sample rate in Hz"},
			&cli.Int64Flag{Name: "seed", Value: synth.DefaultConfig().Seed, Usage: "noise seed"},
			&cli.StringFlag{Name: "dump", Usage: "also write the estimated PSDs to this YAML file"},
			&cli.StringFlag{Name: "noise", Usage: "noise removal: none, auto, antitrigger or threshold (default from config)"},
			methodFlag(),
		},
		Action: func(cCtx *cli.Context) error {
			cfg, err := loadConfig(cCtx)
			if err != nil {
				return err
			}

			sc := synth.DefaultConfig()
			sc.F0 = cCtx.Float64("f0")
			sc.Q = cCtx.Float64("q")
			sc.Gain = cCtx.Float64("gain")
			sc.Seconds = cCtx.Float64("seconds")
			sc.SampleRate = cCtx.Float64("rate")
			sc.Seed = cCtx.Int64("seed")

			rec, err := synth.Generate(sc)
			if err != nil {
				return err
			}

			nc, err := cfg.NoiseConfig()
			if err != nil {
				return err
			}

			if name := cCtx.String("noise"); name != "" {
				if nc.Kind, err = noise.ParseKind(name); err != nil {
					return err
				}
			}

			exclusions, err := noise.Detect(nc, rec.Z, rec.N, rec.E)
			if err != nil {
				return err
			}

			components, err := rec.Components(cfg.PPSDConfig())
			if err != nil {
				return err
			}

			if path := cCtx.String("dump"); path != "" {
				if err := writeDump(path, components, exclusions); err != nil {
					return err
				}
			}

			return analyze(cCtx, cfg, components, exclusions)
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Analyze a YAML PSD dump",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "PSD dump file",
				Required: true,
			},
			methodFlag(),
		},
		Action: func(cCtx *cli.Context) error {
			cfg, err := loadConfig(cCtx)
			if err != nil {
				return err
			}

			f, err := os.Open(cCtx.String("input"))
			if err != nil {
				return fmt.Errorf("failed to open psd dump: %w", err)
			}
			defer f.Close()

			components, exclusions, err := decodeComponents(f)
			if err != nil {
				return err
			}

			return analyze(cCtx, cfg, components, exclusions)
		},
	}
}

func analyze(cCtx *cli.Context, cfg *config.Config, components hvsr.Components, exclusions []hvsr.TimeRange) error {
	logger := cfg.Logger()
	defer func() { _ = logger.Sync() }()

	if len(exclusions) > 0 {
		logger.Info("excluding noisy time ranges", zap.Int("ranges", len(exclusions)))
	}

	opts := []hvsr.Option{hvsr.WithLogger(logger), hvsr.WithExclusions(exclusions...)}

	if name := cCtx.String("method"); name != "" {
		m, err := hvsr.ParseMethod(name)
		if err != nil {
			return err
		}

		opts = append(opts, hvsr.WithMethod(m))
	}

	hc, err := cfg.HVSR(opts...)
	if err != nil {
		return err
	}

	analyzer, err := hvsr.NewAnalyzer(hc)
	if err != nil {
		return err
	}

	res, err := analyzer.Analyze(components)
	if err != nil {
		return err
	}

	logger.Info("analysis finished",
		zap.Int("peaks", len(res.Peaks)),
		zap.Int("windows_used", res.WindowsUsed),
	)

	out := cCtx.App.Writer
	if err := hvsr.WriteReport(out, res); err != nil {
		return err
	}

	if res.BestPeak == nil {
		return nil
	}

	settings, err := cfg.BedrockSettings()
	if err != nil {
		return err
	}

	est, err := bedrock.Depth(res.BestPeak.F0, settings)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "\nBedrock depth:  %s\n", est)

	return err
}

func depthCommand() *cli.Command {
	return &cli.Command{
		Name:  "depth",
		Usage: "Estimate depth to bedrock from a resonance frequency",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "f0", Usage: "resonance frequency in Hz", Required: true},
			&cli.StringFlag{Name: "model", Usage: `calibration name, "vs" or "a, b"`},
			&cli.StringFlag{Name: "unit", Usage: "m or ft"},
			&cli.Float64Flag{Name: "vs", Usage: "shear-wave velocity in m/s for the quarter-wavelength rule"},
			&cli.IntFlag{Name: "decimals", Value: bedrock.DefaultDecimals, Usage: "rounding digits"},
		},
		Action: func(cCtx *cli.Context) error {
			cfg, err := loadConfig(cCtx)
			if err != nil {
				return err
			}

			settings, err := cfg.BedrockSettings()
			if err != nil {
				return err
			}

			if cCtx.IsSet("model") {
				settings.Model = cCtx.String("model")
			}

			if cCtx.IsSet("unit") {
				if settings.Unit, err = bedrock.ParseUnit(cCtx.String("unit")); err != nil {
					return err
				}
			}

			if cCtx.IsSet("vs") {
				settings.ShearVelocity = cCtx.Float64("vs")
			}

			if cCtx.IsSet("decimals") {
				settings.Decimals = cCtx.Int("decimals")
			}

			est, err := bedrock.Depth(cCtx.Float64("f0"), settings)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cCtx.App.Writer, est)

			return err
		},
	}
}

func methodsCommand() *cli.Command {
	return &cli.Command{
		Name:  "methods",
		Usage: "List combination methods, smoothing kinds and depth models",
		Action: func(cCtx *cli.Context) error {
			return writeMethods(cCtx.App.Writer)
		},
	}
}

func writeMethods(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "#\tMETHOD\tSUPPORTED")

	for _, m := range hvsr.Methods() {
		fmt.Fprintf(tw, "%d\t%s\t%t\n", int(m), m, m.Supported())
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SMOOTHING")

	for _, k := range []hvsr.SmoothingKind{
		hvsr.SmoothingNone, hvsr.SmoothingKonnoOhmachi, hvsr.SmoothingConstant, hvsr.SmoothingProportional,
	} {
		fmt.Fprintf(tw, "%s\n", k)
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "MODEL\tA\tB")

	for _, m := range bedrock.Models() {
		fmt.Fprintf(tw, "%s\t%g\t%g\n", m.Name, m.A, m.B)
	}

	return tw.Flush()
}

func writeDump(path string, c hvsr.Components, exclusions []hvsr.TimeRange) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create psd dump: %w", err)
	}

	if err := encodeComponents(f, c, exclusions); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
