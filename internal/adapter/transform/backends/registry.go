// Package backends looks up transform backends by name.
package backends

import (
	"log/slog"
	"sort"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/transform/godsp"
	"github.com/tejashwikalptaru/gospectra/internal/adapter/transform/gonum"
	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// Default is the backend used when none is named.
const Default = godsp.Name

type constructor func(size int, window domain.WindowKind, logger *slog.Logger) (ports.TransformBackend, error)

var registry = map[string]constructor{
	godsp.Name: func(size int, window domain.WindowKind, logger *slog.Logger) (ports.TransformBackend, error) {
		return godsp.New(size, window, logger)
	},
	gonum.Name: func(size int, window domain.WindowKind, logger *slog.Logger) (ports.TransformBackend, error) {
		return gonum.New(size, window, logger)
	},
}

// Names lists the registered backends in order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the named backend. An empty name selects Default.
func New(name string, size int, window domain.WindowKind, logger *slog.Logger) (ports.TransformBackend, error) {
	if name == "" {
		name = Default
	}
	create, ok := registry[name]
	if !ok {
		return nil, domain.NewServiceError("backends", "New", "no backend named "+name, domain.ErrUnknownBackend)
	}
	return create(size, window, logger)
}

// Factory binds a backend name for callers that only vary the size and window.
func Factory(name string, logger *slog.Logger) func(size int, window domain.WindowKind) (ports.TransformBackend, error) {
	return func(size int, window domain.WindowKind) (ports.TransformBackend, error) {
		return New(name, size, window, logger)
	}
}
