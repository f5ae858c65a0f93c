package logger

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Format string

const (
	ConsoleFormat Format = "console"
	JSONFormat    Format = "json"
)

type Config struct {
	Level  string
	Format Format
	// File adds a file destination next to stderr when set.
	File string
}

// New builds the zap logger shared by every component.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return nil, errors.Wrapf(err, "log level %q", cfg.Level)
		}
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	zc.Sampling = nil

	switch cfg.Format {
	case "", ConsoleFormat:
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case JSONFormat:
		zc.Encoding = "json"
	default:
		return nil, errors.Errorf("unknown log format %q", cfg.Format)
	}

	zc.OutputPaths = []string{"stderr"}
	if cfg.File != "" {
		zc.OutputPaths = append(zc.OutputPaths, cfg.File)
	}
	return zc.Build()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
