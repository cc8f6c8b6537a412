// Package observability provides the injected logging and metrics surfaces
// the rest of the runtime depends on, so that a bug report on a dropped
// message is a structured log line and a counter, not a panic or a printf.
package observability

import "go.uber.org/zap"

// Logger is the narrow, structured-logging interface the runtime codes
// against — mirroring the teacher's own agnostic Logger indirection
// (logging.go's Println(string)) but upgraded to leveled, keyed logging.
// Nothing outside this package imports zap directly.
type Logger interface {
	Debugw(msg string, kv ...any)
	Infow(msg string, kv ...any)
	Warnw(msg string, kv ...any)
	Errorw(msg string, kv ...any)
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps a *zap.SugaredLogger as a Logger.
func NewZapLogger(s *zap.SugaredLogger) Logger {
	return zapLogger{s: s}
}

func (z zapLogger) Debugw(msg string, kv ...any) { z.s.Debugw(msg, kv...) }
func (z zapLogger) Infow(msg string, kv ...any)  { z.s.Infow(msg, kv...) }
func (z zapLogger) Warnw(msg string, kv ...any)  { z.s.Warnw(msg, kv...) }
func (z zapLogger) Errorw(msg string, kv ...any) { z.s.Errorw(msg, kv...) }

// NewDevelopmentLogger builds a Logger suitable for examples and tests: a
// zap development logger (console-friendly, colored levels).
func NewDevelopmentLogger() (Logger, error) {
	zl, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return NewZapLogger(zl.Sugar()), nil
}

// NopLogger discards everything. Used as the default when a host doesn't
// wire a Logger, matching the teacher's "logging data is discarded by
// default" behaviour.
type NopLogger struct{}

func (NopLogger) Debugw(string, ...any) {}
func (NopLogger) Infow(string, ...any)  {}
func (NopLogger) Warnw(string, ...any)  {}
func (NopLogger) Errorw(string, ...any) {}
