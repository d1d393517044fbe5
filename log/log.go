// Package log provides the structured logger used across the simulation
// core. It wraps zap the way an operator-facing service wraps it: a small
// interface, a production constructor, and a no-op implementation for
// tests. Nothing in the simulation path branches on logging output —
// logging here is strictly observational (SPEC_FULL.md, Ambient Stack).
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface every package in this module depends on.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Sync() error
}

type zapLogger struct {
	l *zap.Logger
}

// New returns a production JSON logger at the given level.
func New(level zapcore.Level) (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{l: l}, nil
}

// NewDevelopment returns a human-readable console logger for local runs.
func NewDevelopment() (Logger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapLogger{l: l}, nil
}

func (z *zapLogger) Debug(msg string, fields ...zap.Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...zap.Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...zap.Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...zap.Field) { z.l.Error(msg, fields...) }
func (z *zapLogger) Sync() error                           { return z.l.Sync() }

func (z *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}

// NoOp is a logger implementation that discards everything, for tests and
// for callers that never configured a sink.
type NoOp struct{}

// NewNoOp returns a no-op logger.
func NewNoOp() Logger { return NoOp{} }

func (NoOp) Debug(string, ...zap.Field) {}
func (NoOp) Info(string, ...zap.Field)  {}
func (NoOp) Warn(string, ...zap.Field)  {}
func (NoOp) Error(string, ...zap.Field) {}
func (n NoOp) With(...zap.Field) Logger { return n }
func (NoOp) Sync() error                { return nil }
