// Package service provides the business logic of the gospectra analyzer.
package service

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// SettingsService owns the analyzer configuration.
//
// The UI edits settings through Update; the analysis tick reads them through
// Snapshot, which only takes the lock when the version moved since the caller's
// last read.
//
// All operations are thread-safe via sync.RWMutex.
type SettingsService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.SettingsRepository
	bus        ports.EventBus

	settings domain.Settings
	version  atomic.Uint64
	mu       sync.RWMutex
}

// NewSettingsService creates a settings service seeded from the repository.
// A repository error is logged and the defaults are used.
func NewSettingsService(
	logger *slog.Logger,
	repository ports.SettingsRepository,
	bus ports.EventBus,
) *SettingsService {
	s := &SettingsService{
		logger:     logger.With(slog.String("service", "settings")),
		repository: repository,
		bus:        bus,
		settings:   domain.DefaultSettings(),
	}

	if repository != nil {
		loaded, err := repository.Load()
		switch {
		case err != nil:
			s.logger.Warn("failed to load settings, using defaults", slog.Any("error", err))
		case loaded.Validate() != nil:
			s.logger.Warn("stored settings are invalid, using defaults", slog.Any("error", loaded.Validate()))
		default:
			s.settings = loaded
		}
	}
	s.version.Store(1)

	s.logger.Debug("settings service initialized",
		slog.String("channel", s.settings.Channel.String()),
		slog.Int("window_size", s.settings.WindowSize))
	return s
}

// Current returns a copy of the settings.
func (s *SettingsService) Current() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Version increases on every accepted change.
func (s *SettingsService) Version() uint64 {
	return s.version.Load()
}

// Snapshot returns the settings and their version when the version differs
// from seen. changed is false, and settings zero, when nothing moved.
func (s *SettingsService) Snapshot(seen uint64) (settings domain.Settings, version uint64, changed bool) {
	if v := s.version.Load(); v == seen {
		return domain.Settings{}, v, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, s.version.Load(), true
}

// Update applies fn to a copy of the settings. The result is validated,
// persisted and announced; an invalid result leaves the settings unchanged.
func (s *SettingsService) Update(fn func(*domain.Settings)) error {
	s.mu.Lock()
	previous := s.settings
	next := previous
	fn(&next)

	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	if next == previous {
		s.mu.Unlock()
		return nil
	}
	s.settings = next
	s.version.Add(1)
	s.mu.Unlock()

	if s.repository != nil {
		if err := s.repository.Save(next); err != nil {
			s.logger.Error("failed to persist settings", slog.Any("error", err))
			return domain.NewServiceError("SettingsService", "Update", "failed to persist settings", err)
		}
	}

	s.publish(previous, next)
	return nil
}

func (s *SettingsService) publish(previous, next domain.Settings) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(domain.NewSettingsChangedEvent(previous, next))
	if previous.Frozen != next.Frozen {
		s.bus.Publish(domain.NewFreezeToggledEvent(next.Frozen))
	}
}

// SetFrozen pauses or resumes the display.
func (s *SettingsService) SetFrozen(frozen bool) error {
	return s.Update(func(st *domain.Settings) { st.Frozen = frozen })
}

// ToggleFrozen flips the frozen flag and returns the new state.
func (s *SettingsService) ToggleFrozen() (bool, error) {
	var frozen bool
	err := s.Update(func(st *domain.Settings) {
		st.Frozen = !st.Frozen
		frozen = st.Frozen
	})
	if err != nil {
		return s.Current().Frozen, err
	}
	return frozen, nil
}

// Reset restores the factory settings.
func (s *SettingsService) Reset() error {
	return s.Update(func(st *domain.Settings) { *st = domain.DefaultSettings() })
}
