// Package telemetry wraps zap (pulled in transitively by the pack's
// luxfi-precompiles/parsdao-pars via github.com/luxfi/log) behind a small
// structured-logging interface, so the rest of the tree never imports zap
// directly.
package telemetry

import "go.uber.org/zap"

// Field is a structured log field.
type Field = zap.Field

// String, Uint32, Uint64, Float64, Err construct structured fields.
func String(key, value string) Field   { return zap.String(key, value) }
func Uint32(key string, v uint32) Field { return zap.Uint32(key, v) }
func Uint64(key string, v uint64) Field { return zap.Uint64(key, v) }
func Float64(key string, v float64) Field { return zap.Float64(key, v) }
func Err(err error) Field              { return zap.Error(err) }

// Logger is the narrow structured-logging surface used across the tree.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

type zapLogger struct {
	inner *zap.Logger
}

// New builds a production-profile Logger (JSON encoding, info level).
func New() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{inner: l}, nil
}

// NewDevelopment builds a human-readable Logger for local runs.
func NewDevelopment() (Logger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapLogger{inner: l}, nil
}

func (z *zapLogger) Debug(msg string, fields ...Field) { z.inner.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...Field)  { z.inner.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...Field)  { z.inner.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...Field) { z.inner.Error(msg, fields...) }
func (z *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{inner: z.inner.With(fields...)}
}
func (z *zapLogger) Sync() error { return z.inner.Sync() }

// NopLogger discards everything; used in tests and library callers that
// don't want logging.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field)    {}
func (NopLogger) Info(string, ...Field)     {}
func (NopLogger) Warn(string, ...Field)     {}
func (NopLogger) Error(string, ...Field)    {}
func (NopLogger) With(...Field) Logger      { return NopLogger{} }
func (NopLogger) Sync() error               { return nil }
