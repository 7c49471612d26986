// Package applog provides the structured logger every mutation uses to
// report what it read, wrote, and renamed. It replaces the source tool's
// scattered print() calls (zip_handler.py, tar_handler.py) with a single
// slog.Logger the CLI configures once from -v.
package applog

import (
	"log/slog"
	"os"
)

// New builds a text-handler slog.Logger writing to stderr. verbose selects
// Debug level; otherwise only Info and above are emitted.
func New(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// Discard is a logger that drops everything, used by library code invoked
// without a CLI-configured logger (e.g. in tests).
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
