// Package logging builds the loggers injected into the engine.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvProduction is the APP_ENV value that silences engine debug output.
const EnvProduction = "production"

// New returns a debug-level text logger writing to w, or a discard logger in production.
func New(env string, w io.Writer) *slog.Logger {
	if strings.EqualFold(strings.TrimSpace(env), EnvProduction) {
		return Discard()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// FromEnv builds the engine logger from APP_ENV, writing to stderr.
func FromEnv() *slog.Logger {
	return New(os.Getenv("APP_ENV"), os.Stderr)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discard logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
