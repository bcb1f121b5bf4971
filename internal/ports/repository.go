// Package ports define repository interfaces for data persistence abstraction.
package ports

import (
	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// SettingsRepository handles the persistence of analyzer settings.
//
// Thread-safety: Implementations must be thread-safe.
type SettingsRepository interface {
	// Save persists the settings, replacing anything stored before.
	Save(settings domain.Settings) error

	// Load retrieves the stored settings.
	// Returns domain.DefaultSettings() when nothing was saved yet.
	Load() (domain.Settings, error)

	// Clear removes the stored settings.
	Clear() error
}

// RecentFilesRepository remembers recently analysed audio files.
//
// Thread-safety: Implementations must be thread-safe.
type RecentFilesRepository interface {
	// Add records path as the most recent file.
	Add(path string) error

	// List returns the recorded paths, newest first.
	List() ([]string, error)

	// Clear forgets all recorded paths.
	Clear() error
}
