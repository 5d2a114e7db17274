package bptdb

import "log/slog"

// Logger receives catalog events as a message plus alternating key/value
// pairs. *slog.Logger satisfies it directly; package logger adapts zap and
// logrus.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

var _ Logger = (*slog.Logger)(nil)

// DiscardLogger drops every event. It is the default.
type DiscardLogger struct{}

func (DiscardLogger) Error(string, ...any) {}
func (DiscardLogger) Warn(string, ...any)  {}
func (DiscardLogger) Info(string, ...any)  {}
func (DiscardLogger) Debug(string, ...any) {}
