// File: utils/logger.go
package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process-wide structured logger. Every subsystem
// receives this logger as a constructor argument, never a package-level
// global, so tests can inject their own sink.
func NewLogger(debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      debug,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		// Logger construction failure is itself a startup config error (§7);
		// fall back to a no-op logger rather than crash before usage is shown.
		return zap.NewNop()
	}
	return logger
}

// NewTestLogger returns a logger suitable for use inside tests: it writes
// nowhere, keeping test output focused on assertions.
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}
