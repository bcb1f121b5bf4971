package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/logger"
)

// Mock settings repository for testing
type mockSettingsRepository struct {
	mu      sync.Mutex
	stored  *domain.Settings
	saves   int
	loadErr error
	saveErr error
}

func (m *mockSettingsRepository) Save(s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.stored = &s
	return nil
}

func (m *mockSettingsRepository) Load() (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.DefaultSettings(), m.loadErr
	}
	if m.stored != nil {
		return *m.stored, nil
	}
	return domain.DefaultSettings(), nil
}

func (m *mockSettingsRepository) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	return nil
}

func newTestSettingsService(repo *mockSettingsRepository) (*SettingsService, *eventbus.SyncEventBus) {
	bus := eventbus.NewSyncEventBus()
	return NewSettingsService(logger.NewTestLogger(), repo, bus), bus
}

func TestSettingsService_LoadsFromRepository(t *testing.T) {
	stored := domain.DefaultSettings()
	stored.WindowSize = 1024
	repo := &mockSettingsRepository{stored: &stored}

	svc, bus := newTestSettingsService(repo)
	defer bus.Close()

	assert.Equal(t, 1024, svc.Current().WindowSize)
	assert.Equal(t, uint64(1), svc.Version())
}

func TestSettingsService_LoadErrorFallsBackToDefaults(t *testing.T) {
	repo := &mockSettingsRepository{loadErr: errors.New("disk on fire")}

	svc, bus := newTestSettingsService(repo)
	defer bus.Close()

	assert.Equal(t, domain.DefaultSettings(), svc.Current())
}

func TestSettingsService_Update_PersistsAndPublishes(t *testing.T) {
	repo := &mockSettingsRepository{}
	svc, bus := newTestSettingsService(repo)
	defer bus.Close()

	var events []domain.SettingsChangedEvent
	bus.Subscribe(domain.EventSettingsChanged, func(e domain.Event) {
		events = append(events, e.(domain.SettingsChangedEvent))
	})

	err := svc.Update(func(s *domain.Settings) { s.Channel = domain.ChannelSide })
	require.NoError(t, err)

	assert.Equal(t, domain.ChannelSide, svc.Current().Channel)
	assert.Equal(t, uint64(2), svc.Version())
	assert.Equal(t, 1, repo.saves)
	require.Len(t, events, 1)
	assert.Equal(t, domain.ChannelMerge, events[0].Previous.Channel)
	assert.Equal(t, domain.ChannelSide, events[0].Current.Channel)
}

func TestSettingsService_Update_RejectsInvalid(t *testing.T) {
	repo := &mockSettingsRepository{}
	svc, bus := newTestSettingsService(repo)
	defer bus.Close()

	err := svc.Update(func(s *domain.Settings) { s.LowDb, s.HighDb = 0, -10 })

	var validation *domain.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "db_range", validation.Field)
	assert.Equal(t, domain.DefaultSettings(), svc.Current())
	assert.Equal(t, uint64(1), svc.Version())
	assert.Zero(t, repo.saves)
}

func TestSettingsService_Update_NoChangeIsSilent(t *testing.T) {
	repo := &mockSettingsRepository{}
	svc, bus := newTestSettingsService(repo)
	defer bus.Close()

	require.NoError(t, svc.Update(func(*domain.Settings) {}))
	assert.Equal(t, uint64(1), svc.Version())
	assert.Zero(t, repo.saves)
}

func TestSettingsService_Update_SaveFailure(t *testing.T) {
	repo := &mockSettingsRepository{saveErr: errors.New("read-only")}
	svc, bus := newTestSettingsService(repo)
	defer bus.Close()

	err := svc.Update(func(s *domain.Settings) { s.Diagnostics = true })

	var serviceErr *domain.ServiceError
	require.True(t, errors.As(err, &serviceErr))
	// the in-memory settings still apply
	assert.True(t, svc.Current().Diagnostics)
}

func TestSettingsService_ToggleFrozen_PublishesFreeze(t *testing.T) {
	svc, bus := newTestSettingsService(&mockSettingsRepository{})
	defer bus.Close()

	var frozen []bool
	bus.Subscribe(domain.EventFreezeToggled, func(e domain.Event) {
		frozen = append(frozen, e.(domain.FreezeToggledEvent).Frozen)
	})

	state, err := svc.ToggleFrozen()
	require.NoError(t, err)
	assert.True(t, state)

	state, err = svc.ToggleFrozen()
	require.NoError(t, err)
	assert.False(t, state)

	assert.Equal(t, []bool{true, false}, frozen)
}

func TestSettingsService_Snapshot(t *testing.T) {
	svc, bus := newTestSettingsService(&mockSettingsRepository{})
	defer bus.Close()

	s, v, changed := svc.Snapshot(0)
	require.True(t, changed)
	assert.Equal(t, domain.DefaultSettings(), s)

	_, v2, changed := svc.Snapshot(v)
	assert.False(t, changed)
	assert.Equal(t, v, v2)

	require.NoError(t, svc.SetFrozen(true))
	s, _, changed = svc.Snapshot(v)
	assert.True(t, changed)
	assert.True(t, s.Frozen)
}

func TestSettingsService_Reset(t *testing.T) {
	svc, bus := newTestSettingsService(&mockSettingsRepository{})
	defer bus.Close()

	require.NoError(t, svc.Update(func(s *domain.Settings) { s.ReferenceTuning = 415 }))
	require.NoError(t, svc.Reset())
	assert.Equal(t, domain.DefaultSettings(), svc.Current())
}

func TestSettingsService_ConcurrentAccess(t *testing.T) {
	svc, bus := newTestSettingsService(&mockSettingsRepository{})
	defer bus.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = svc.Update(func(s *domain.Settings) { s.ReferenceTuning = 430 + float64(i) })
		}(i)
		go func() {
			defer wg.Done()
			_ = svc.Current()
			_, _, _ = svc.Snapshot(0)
		}()
	}
	wg.Wait()

	tuning := svc.Current().ReferenceTuning
	assert.GreaterOrEqual(t, tuning, 430.0)
	assert.Less(t, tuning, 440.0)
}
