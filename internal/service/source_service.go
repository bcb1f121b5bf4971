package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// generatorTitle is shown while the tone generator feeds the stream.
const generatorTitle = "Tone generator"

// SourceService decides what feeds the live stream: the tone generator or a
// WAV file pumped in real time. Starting one source stops the other.
//
// All operations are thread-safe via sync.Mutex.
type SourceService struct {
	// Dependencies (injected)
	logger    *slog.Logger
	writer    ports.FrameWriter
	generator ports.Generator
	open      func(path string) (ports.StreamingFile, error)
	recent    ports.RecentFilesRepository
	bus       ports.EventBus
	blockSize int

	// State
	kind   domain.SourceKind
	title  string
	path   string
	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
}

// NewSourceService creates a source service writing into writer. generator,
// recent and bus may be nil.
func NewSourceService(
	logger *slog.Logger,
	writer ports.FrameWriter,
	generator ports.Generator,
	open func(path string) (ports.StreamingFile, error),
	recent ports.RecentFilesRepository,
	bus ports.EventBus,
	blockSize int,
) *SourceService {
	s := &SourceService{
		logger:    logger.With(slog.String("service", "source")),
		writer:    writer,
		generator: generator,
		open:      open,
		recent:    recent,
		bus:       bus,
		blockSize: blockSize,
	}
	s.logger.Debug("source service initialized")
	return s
}

// UseGenerator stops any file and starts the tone generator.
func (s *SourceService) UseGenerator(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generator == nil {
		return domain.NewServiceError("SourceService", "UseGenerator", "no generator configured", domain.ErrNotInitialized)
	}
	if s.kind == domain.SourceGenerator && s.generator.IsRunning() {
		return nil
	}
	s.stopLocked()

	if err := s.generator.Start(ctx); err != nil {
		s.logger.Error("failed to start generator", slog.Any("error", err))
		return err
	}
	s.setLocked(domain.SourceGenerator, generatorTitle, "")
	return nil
}

// OpenFile stops the current source and pumps the file at path into the
// stream at its own pace. It returns the file's title.
func (s *SourceService) OpenFile(ctx context.Context, path string) (string, error) {
	if s.open == nil {
		return "", domain.NewServiceError("SourceService", "OpenFile", "no file decoder configured", domain.ErrNotInitialized)
	}
	file, err := s.open(path)
	if err != nil {
		s.logger.Warn("failed to open audio file", slog.String("path", path), slog.Any("error", err))
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	pumpCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	go s.pump(pumpCtx, file, path, done)

	title := file.Title()
	s.setLocked(domain.SourceFile, title, path)

	if s.recent != nil {
		if err := s.recent.Add(path); err != nil {
			s.logger.Warn("failed to remember recent file", slog.String("path", path), slog.Any("error", err))
		}
	}
	return title, nil
}

func (s *SourceService) pump(ctx context.Context, file ports.StreamingFile, path string, done chan struct{}) {
	defer close(done)
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Warn("failed to close audio file", slog.String("path", path), slog.Any("error", err))
		}
	}()

	err := file.Pump(ctx, s.writer, s.blockSize, true)
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		s.logger.Error("audio file failed", slog.String("path", path), slog.Any("error", err))
	} else {
		s.logger.Info("audio file finished", slog.String("path", path))
	}
	if s.bus != nil {
		s.bus.Publish(domain.NewSourceEndedEvent(path, err))
	}
}

// Stop halts whatever feeds the stream and waits for it.
func (s *SourceService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.kind, s.title, s.path = domain.SourceNone, "", ""
}

// stopLocked halts the running producer. Caller holds mu.
func (s *SourceService) stopLocked() {
	if s.generator != nil && s.generator.IsRunning() {
		if err := s.generator.Stop(); err != nil {
			s.logger.Warn("failed to stop generator", slog.Any("error", err))
		}
	}
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel, s.done = nil, nil
	}
}

// setLocked records the new source and announces it. Caller holds mu.
func (s *SourceService) setLocked(kind domain.SourceKind, title, path string) {
	s.kind, s.title, s.path = kind, title, path
	s.logger.Info("source changed", slog.String("kind", kind.String()), slog.String("title", title))
	if s.bus != nil {
		s.bus.Publish(domain.NewSourceChangedEvent(kind, title, path))
	}
}

// Current returns the active source.
func (s *SourceService) Current() (kind domain.SourceKind, title, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind, s.title, s.path
}

// Recent lists the recently opened files, newest first.
func (s *SourceService) Recent() []string {
	if s.recent == nil {
		return nil
	}
	paths, err := s.recent.List()
	if err != nil {
		s.logger.Warn("failed to list recent files", slog.Any("error", err))
		return nil
	}
	return paths
}

// ClearRecent forgets the recently opened files.
func (s *SourceService) ClearRecent() error {
	if s.recent == nil {
		return nil
	}
	if err := s.recent.Clear(); err != nil {
		return domain.NewServiceError("SourceService", "ClearRecent", "failed to clear recent files", err)
	}
	return nil
}
