package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"WARN":    slog.LevelWarn,
		"Error":   slog.LevelError,
	}
	for name, want := range cases {
		got, ok := ParseLevel(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := ParseLevel("verbose")
	assert.False(t, ok)
}

func TestDefaultConfig_FromEnvironment(t *testing.T) {
	t.Setenv("GOSPECTRA_LOG_LEVEL", "debug")
	t.Setenv("GOSPECTRA_LOG_FORMAT", "JSON")

	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.Equal(t, "json", cfg.Format)
}

func TestDefaultConfig_Defaults(t *testing.T) {
	t.Setenv("GOSPECTRA_LOG_LEVEL", "")
	t.Setenv("GOSPECTRA_LOG_FORMAT", "")

	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.Equal(t, "text", cfg.Format)
	assert.NotNil(t, NewLogger(cfg))
}

func TestNewWriterLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterLogger(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Warn("shown", slog.String("component", "ring"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "component=ring")
}

func TestNewTestLogger_Level(t *testing.T) {
	t.Setenv("GOSPECTRA_TEST_LOG_LEVEL", "")
	assert.False(t, NewTestLogger().Enabled(context.Background(), slog.LevelInfo))

	t.Setenv("GOSPECTRA_TEST_LOG_LEVEL", "debug")
	assert.True(t, NewTestLogger().Enabled(context.Background(), slog.LevelDebug))
}
