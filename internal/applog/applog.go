// Package applog wraps log/slog with the -v flag controlling verbosity,
// mirroring the verbose print() calls scattered through
// zip_handler.py/tar_handler.py but structured into one logger.
package applog

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// SetVerbose switches the ambient logger to Debug level when v is true,
// Info otherwise — called once at the start of cmd/alchemist/app.go's
// dispatch action.
func SetVerbose(v bool) {
	level := slog.LevelInfo
	if v {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Debug logs at -v verbosity; the archive handlers use it to record each
// operation with its archive and entry path.
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs a normal-verbosity step.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Error logs a failure before the command surfaces it to stderr as the
// final error return.
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}
