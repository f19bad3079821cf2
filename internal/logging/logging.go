// Package logging builds the application's zap logger. The terminal UI
// owns stdout, so logs go to a file.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger appending to path at the given level
// ("debug", "info", "warn", "error"). An empty path discards output.
func New(path, level string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig = zap.NewProductionEncoderConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.With(zap.String("app", "musicmapping")), nil
}
