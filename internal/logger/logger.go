// Package logger provides slog helpers for the app.
package logger

import (
	"log/slog"
	"os"
)

// New builds the process-wide JSON logger.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}))
}

// Error wraps an error as a slog attribute.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "nil")
	}
	return slog.String("err", err.Error())
}
