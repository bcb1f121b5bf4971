// Package logger provides structured logging configuration using log/slog.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"
}

// ParseLevel maps a level name to a slog level. ok is false for unknown names.
func ParseLevel(name string) (level slog.Level, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// NewLogger creates a configured slog.Logger.
func NewLogger(cfg Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		// Add a source location for debug and error levels
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// DefaultConfig returns the default logger configuration.
// Parses GOSPECTRA_LOG_LEVEL (DEBUG, INFO, WARN, WARNING, ERROR; default INFO)
// and GOSPECTRA_LOG_FORMAT ("text" or "json"; default text).
func DefaultConfig() Config {
	cfg := Config{Level: slog.LevelInfo, Format: "text"}

	if level, ok := ParseLevel(os.Getenv("GOSPECTRA_LOG_LEVEL")); ok {
		cfg.Level = level
	}
	if strings.EqualFold(os.Getenv("GOSPECTRA_LOG_FORMAT"), "json") {
		cfg.Format = "json"
	}
	return cfg
}
