// Package logging builds the application logger. Log output goes to stderr
// so it never interleaves with the monitored serial stream on stdout.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates the configured application logger.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
