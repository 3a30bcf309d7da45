// internal/common/logger/logger.go
package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the structured logger handed to the engine, caches and workers.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
}

// New builds a zap logger writing to stderr.
func New(level, format string) *zap.Logger {
	return NewWithOutput(level, format, "")
}

// NewWithOutput builds a zap logger for the configured level, format
// ("json" or console) and output ("stdout", "stderr" or a file path).
// Unknown levels fall back to info.
func NewWithOutput(level, format, output string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	if format == "json" {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if output != "" {
		cfg.OutputPaths = []string{output}
	}

	zl, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return zl
}

type fieldLogger struct {
	zl *zap.Logger
}

// NewZapAdapter exposes zl as a Logger.
func NewZapAdapter(zl *zap.Logger) Logger {
	return &fieldLogger{zl: zl}
}

// NewTestLogger routes output through t.Log.
func NewTestLogger(t testing.TB) Logger {
	return &fieldLogger{zl: zaptest.NewLogger(t)}
}

func NewNoOpLogger() Logger {
	return &fieldLogger{zl: zap.NewNop()}
}

func (l *fieldLogger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug(msg, zapFields(fields)...)
}

func (l *fieldLogger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info(msg, zapFields(fields)...)
}

func (l *fieldLogger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn(msg, zapFields(fields)...)
}

func (l *fieldLogger) Error(msg string, fields map[string]interface{}) {
	l.zl.Error(msg, zapFields(fields)...)
}

func (l *fieldLogger) WithFields(fields map[string]interface{}) Logger {
	return &fieldLogger{zl: l.zl.With(zapFields(fields)...)}
}

// zapFields converts a field map. An error value under "error" keeps zap's
// error encoding.
func zapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok && k == "error" {
			out = append(out, zap.Error(err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
