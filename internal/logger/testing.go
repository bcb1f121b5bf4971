package logger

import (
	"io"
	"log/slog"
	"os"
)

// NewTestLogger creates a quiet logger for tests. GOSPECTRA_TEST_LOG_LEVEL
// takes the same names as ParseLevel; the default is WARN.
func NewTestLogger() *slog.Logger {
	level, ok := ParseLevel(os.Getenv("GOSPECTRA_TEST_LOG_LEVEL"))
	if !ok {
		level = slog.LevelWarn
	}
	return NewWriterLogger(os.Stdout, level)
}

// NewWriterLogger creates a text logger writing to w.
func NewWriterLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
