package gonum

import (
	"io"
	"log/slog"
	"testing"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/transform/transformtest"
	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

func TestBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	transformtest.Run(t, func(size int, kind domain.WindowKind) (ports.TransformBackend, error) {
		return New(size, kind, logger)
	})
}
