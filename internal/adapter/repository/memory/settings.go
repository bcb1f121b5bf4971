// Package memory provides repository implementations backed by Fyne preferences.
//
// Fyne stores preferences in OS-specific app data directories:
// - macOS: ~/Library/Preferences/com.gospectra.app.plist
// - Linux: ~/.config/fyne/com.gospectra.app/
// - Windows: %APPDATA%\fyne\com.gospectra.app\
package memory

import (
	"encoding/json"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

const settingsKey = "spectrum.settings"

// SettingsRepository implements ports.SettingsRepository using Fyne preferences.
// Settings are stored as one JSON document so fields added later fall back to
// their defaults when an older document is loaded.
//
// Thread-safe: All operations protected by sync.RWMutex.
type SettingsRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewSettingsRepository creates a new settings repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewSettingsRepository(prefs fyne.Preferences) *SettingsRepository {
	return &SettingsRepository{
		prefs: prefs,
	}
}

// Save persists the settings.
func (r *SettingsRepository) Save(settings domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(settings)
	if err != nil {
		return domain.NewRepositoryError("save", "settings", "failed to marshal settings", err)
	}

	r.prefs.SetString(settingsKey, string(data))
	return nil
}

// Load retrieves the stored settings, or the defaults when nothing was saved.
// A stored document that does not validate yields the defaults together with
// an error describing the rejected field.
func (r *SettingsRepository) Load() (domain.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settings := domain.DefaultSettings()
	data := r.prefs.String(settingsKey)
	if data == "" {
		return settings, nil
	}

	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return domain.DefaultSettings(), domain.NewRepositoryError("load", "settings", "failed to unmarshal settings", err)
	}
	if err := settings.Validate(); err != nil {
		return domain.DefaultSettings(), domain.NewRepositoryError("load", "settings", "stored settings are invalid", err)
	}
	return settings, nil
}

// Clear removes the stored settings.
func (r *SettingsRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(settingsKey)
	return nil
}

// Verify interface implementation
var _ ports.SettingsRepository = (*SettingsRepository)(nil)
