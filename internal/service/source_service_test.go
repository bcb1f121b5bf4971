package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/gospectra/internal/adapter/audio/ring"
	"github.com/tejashwikalptaru/gospectra/internal/adapter/audio/wavfile"
	"github.com/tejashwikalptaru/gospectra/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/logger"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
	"github.com/tejashwikalptaru/gospectra/internal/testutil"
)

// Mock recent files repository for testing
type mockRecentFiles struct {
	mu    sync.Mutex
	paths []string
}

func (m *mockRecentFiles) Add(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append([]string{path}, m.paths...)
	return nil
}

func (m *mockRecentFiles) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...), nil
}

func (m *mockRecentFiles) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = nil
	return nil
}

type sourceFixture struct {
	svc    *SourceService
	stream *ring.Buffer
	engine *mock.Engine
	recent *mockRecentFiles
	bus    *eventbus.SyncEventBus
}

func newSourceFixture(t *testing.T) *sourceFixture {
	t.Helper()
	log := logger.NewTestLogger()
	stream := ring.New(1<<14, domain.StreamInfo{})
	engine := mock.NewEngine(stream, 48000, 256)
	engine.SetTones(mock.Tone{Frequency: 1000, Amplitude: 0.5})
	recent := &mockRecentFiles{}
	bus := eventbus.NewSyncEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	svc := NewSourceService(log, stream, engine, func(path string) (ports.StreamingFile, error) {
		return wavfile.Open(path, log)
	}, recent, bus, 256)
	return &sourceFixture{svc: svc, stream: stream, engine: engine, recent: recent, bus: bus}
}

func TestSourceService_UseGenerator(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)
	f := newSourceFixture(t)

	var changed []domain.SourceChangedEvent
	f.bus.Subscribe(domain.EventSourceChanged, func(e domain.Event) {
		changed = append(changed, e.(domain.SourceChangedEvent))
	})

	require.NoError(t, f.svc.UseGenerator(context.Background()))
	assert.True(t, f.engine.IsRunning())
	require.NoError(t, f.svc.UseGenerator(context.Background()), "already running is fine")

	kind, title, path := f.svc.Current()
	assert.Equal(t, domain.SourceGenerator, kind)
	assert.Equal(t, generatorTitle, title)
	assert.Empty(t, path)
	require.Len(t, changed, 1)
	assert.Equal(t, domain.SourceGenerator, changed[0].Kind)

	f.svc.Stop()
	assert.False(t, f.engine.IsRunning())
	kind, _, _ = f.svc.Current()
	assert.Equal(t, domain.SourceNone, kind)
}

func TestSourceService_OpenFile_PlaysToTheEnd(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)
	f := newSourceFixture(t)
	path := testutil.WriteTempFile(t, "short.wav", testutil.SineWAV16(16000, 800, 440, 0.5))

	ended := make(chan domain.SourceEndedEvent, 1)
	f.bus.Subscribe(domain.EventSourceEnded, func(e domain.Event) {
		ended <- e.(domain.SourceEndedEvent)
	})

	title, err := f.svc.OpenFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "short.wav", title)

	select {
	case e := <-ended:
		assert.Equal(t, path, e.Path)
		assert.NoError(t, e.Error)
	case <-time.After(5 * time.Second):
		t.Fatal("file never finished")
	}

	assert.Equal(t, 16000.0, f.stream.Info().SampleRate)
	assert.Equal(t, uint64(800), f.stream.Counters().Written)
	assert.Equal(t, []string{path}, f.svc.Recent())
	require.NoError(t, f.svc.ClearRecent())
	assert.Empty(t, f.svc.Recent())
	f.svc.Stop()
}

func TestSourceService_OpenFile_Switching(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)
	f := newSourceFixture(t)
	long := testutil.WriteTempFile(t, "long.wav", testutil.SineWAV16(16000, 16000*10, 440, 0.5))

	ended := 0
	f.bus.Subscribe(domain.EventSourceEnded, func(domain.Event) { ended++ })

	_, err := f.svc.OpenFile(context.Background(), long)
	require.NoError(t, err)
	require.NoError(t, f.svc.UseGenerator(context.Background()))

	kind, _, _ := f.svc.Current()
	assert.Equal(t, domain.SourceGenerator, kind)
	assert.Equal(t, 48000.0, f.stream.Info().SampleRate)
	assert.Zero(t, ended, "a cancelled file does not report an end")

	_, err = f.svc.OpenFile(context.Background(), long)
	require.NoError(t, err)
	assert.False(t, f.engine.IsRunning(), "opening a file stops the generator")
	f.svc.Stop()
}

func TestSourceService_OpenFile_Missing(t *testing.T) {
	f := newSourceFixture(t)

	_, err := f.svc.OpenFile(context.Background(), "missing.wav")
	assert.ErrorIs(t, err, domain.ErrFileNotFound)

	kind, _, _ := f.svc.Current()
	assert.Equal(t, domain.SourceNone, kind)
	assert.Empty(t, f.svc.Recent())
}

func TestSourceService_WithoutGenerator(t *testing.T) {
	svc := NewSourceService(logger.NewTestLogger(), ring.New(16, domain.StreamInfo{}), nil, nil, nil, nil, 0)

	assert.ErrorIs(t, svc.UseGenerator(context.Background()), domain.ErrNotInitialized)
	_, err := svc.OpenFile(context.Background(), "x.wav")
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
	assert.Nil(t, svc.Recent())
}
