package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. format "json" selects the production encoder,
// anything else the human readable development encoder.
func New(levelStr, format string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}

// Must is New that falls back to a no-op logger on build failure
func Must(levelStr, format string) *zap.Logger {
	l, err := New(levelStr, format)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
