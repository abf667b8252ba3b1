// Package logging builds the zap loggers used by the command-line tools.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type settings struct {
	level       zapcore.Level
	development bool
	fields      map[string]any
	out         zapcore.WriteSyncer
}

// Option configures [New].
type Option func(*settings)

// WithLevel sets the minimum level by name. Unknown names select info.
func WithLevel(level string) Option {
	return func(s *settings) {
		s.level = ParseLevel(level)
	}
}

// WithDevelopment switches to the console encoder with colored levels.
func WithDevelopment(dev bool) Option {
	return func(s *settings) {
		s.development = dev
	}
}

// WithFields attaches fields to every log line. Empty keys are ignored.
func WithFields(fields map[string]any) Option {
	return func(s *settings) {
		if s.fields == nil {
			s.fields = map[string]any{}
		}

		for k, v := range fields {
			if k == "" {
				continue
			}

			s.fields[k] = v
		}
	}
}

// WithOutput redirects log output, which defaults to stderr.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		s.out = zapcore.AddSync(w)
	}
}

// New builds a logger. Production loggers write JSON; development loggers
// write human-readable console lines.
func New(opts ...Option) *zap.Logger {
	s := settings{
		level: zapcore.InfoLevel,
		out:   zapcore.Lock(os.Stderr),
	}

	for _, opt := range opts {
		opt(&s)
	}

	var enc zapcore.Encoder

	if s.development {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	} else {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	core := zapcore.NewCore(enc, s.out, zap.NewAtomicLevelAt(s.level))

	fields := make([]zap.Field, 0, len(s.fields))
	for k, v := range s.fields {
		fields = append(fields, zap.Any(k, v))
	}

	return zap.New(core, zap.AddCaller()).With(fields...)
}

// ParseLevel converts a level name to a zap level. Unknown names map to
// info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "dpanic":
		return zapcore.DPanicLevel
	case "panic":
		return zapcore.PanicLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
