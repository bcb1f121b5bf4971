package service

import (
	"context"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"math"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
	"github.com/tejashwikalptaru/gospectra/internal/render"
)

// offlineChunk is how many frames are decoded per offline tick.
const offlineChunk = 4096

// BackendFactory creates a transform backend of the given size and window.
type BackendFactory func(size int, window domain.WindowKind) (ports.TransformBackend, error)

// ExportDependencies are the adapters an offline run is built from.
type ExportDependencies struct {
	Open     func(path string) (ports.AudioFile, error)
	Stream   func(capacity int, info domain.StreamInfo) ports.BufferedStream
	Backend  BackendFactory
	Surface  func(width, height int) ports.ImageSurface
	Exporter ports.SnapshotExporter
}

// ExportService analyses whole audio files off-screen and writes the result
// as a spectrogram image or a line graph snapshot.
//
// Each call builds its own analyzer, so calls may run concurrently.
type ExportService struct {
	logger   *slog.Logger
	settings *SettingsService
	deps     ExportDependencies
}

// NewExportService creates an export service. settings provides the colours,
// range and transform options; nil uses the defaults.
func NewExportService(logger *slog.Logger, settings *SettingsService, deps ExportDependencies) *ExportService {
	return &ExportService{
		logger:   logger.With(slog.String("service", "export")),
		settings: settings,
		deps:     deps,
	}
}

// fixedSettings serves one configuration to an offline analyzer.
type fixedSettings struct {
	settings domain.Settings
}

func (f *fixedSettings) Save(s domain.Settings) error {
	f.settings = s
	return nil
}

func (f *fixedSettings) Load() (domain.Settings, error) { return f.settings, nil }

func (f *fixedSettings) Clear() error { return nil }

func (s *ExportService) base() domain.Settings {
	if s.settings == nil {
		return domain.DefaultSettings()
	}
	cfg := s.settings.Current()
	cfg.Frozen = false
	return cfg
}

// RenderSpectrogram writes a PNG of the whole file as a colour spectrum of
// width by height pixels. Time runs left to right, one column per blob, with
// the blob size chosen so the file fills the width.
func (s *ExportService) RenderSpectrogram(ctx context.Context, path string, width, height int, w io.Writer) error {
	if width <= 0 || height <= 0 {
		return domain.NewValidationError("size", [2]int{width, height}, "must be positive")
	}
	if s.deps.Surface == nil {
		return domain.NewServiceError("ExportService", "RenderSpectrogram", "no render surface configured", domain.ErrNotInitialized)
	}

	run, err := s.analyze(ctx, path, width, height, domain.Cursor{}, func(cfg *domain.Settings, info domain.StreamInfo, frames int) {
		cfg.Display = domain.DisplayColourSpectrum
		cfg.UpdateSmoothing = 0
		if frames > 0 {
			ms := float64(frames) / float64(width) / info.SampleRate * 1000
			cfg.BlobSizeMs = math.Min(math.Max(ms, domain.MinBlobSizeMs), domain.MaxBlobSizeMs)
		}
	})
	if err != nil {
		return err
	}

	var frame domain.Frame
	run.analyzer.Snapshot(&frame)
	surface := s.deps.Surface(width, height)
	render.NewComposer(s.logger).Render(&frame, surface)

	if err := png.Encode(w, surface.Image()); err != nil {
		return domain.NewServiceError("ExportService", "RenderSpectrogram", "failed to encode png", err)
	}
	s.logger.Info("spectrogram rendered",
		slog.String("file", run.title),
		slog.Int("columns", frame.Scroll.WriteIndex),
		slog.Int("width", width),
		slog.Int("height", height))
	return nil
}

// Snapshot analyses the file as a line graph of width points and exports the
// final state of the main graph, with the peak nearest to cursor (a fraction
// of the axis) marked.
func (s *ExportService) Snapshot(ctx context.Context, path string, cursor float64, width int, w io.Writer) error {
	if s.deps.Exporter == nil {
		return domain.NewServiceError("ExportService", "Snapshot", "no snapshot exporter configured", domain.ErrNotInitialized)
	}
	if width <= 1 {
		return domain.NewValidationError("width", width, "must be at least 2")
	}

	c := domain.Cursor{X: cursor, Y: 0.5, Inside: cursor >= 0 && cursor <= 1}
	run, err := s.analyze(ctx, path, width, width/2, c, func(cfg *domain.Settings, _ domain.StreamInfo, _ int) {
		cfg.Display = domain.DisplayLineGraph
	})
	if err != nil {
		return err
	}

	var frame domain.Frame
	run.analyzer.Snapshot(&frame)
	freqs := run.analyzer.Frequencies(nil)
	main := frame.Lines[domain.GraphMain]
	if len(freqs) != len(main) {
		return domain.NewServiceError("ExportService", "Snapshot", "line graph is not configured", domain.ErrEmptyStream)
	}

	cfg := run.cfg
	levels := make([]float64, len(main))
	for i, r := range main {
		if r.LeftMagnitude <= 0 {
			levels[i] = math.Inf(-1)
			continue
		}
		levels[i] = cfg.LowDb + float64(r.LeftMagnitude)*(cfg.HighDb-cfg.LowDb)
	}

	if err := s.deps.Exporter.Export(w, run.title, freqs, levels, frame.Peak); err != nil {
		return err
	}
	s.logger.Info("snapshot exported",
		slog.String("file", run.title),
		slog.Bool("peak", frame.Peak.Available()))
	return nil
}

type offlineRun struct {
	analyzer *AnalyzerService
	cfg      domain.Settings
	title    string
}

// analyze streams the whole file through a private analyzer, ticking once per
// decoded chunk.
func (s *ExportService) analyze(
	ctx context.Context,
	path string,
	width, height int,
	cursor domain.Cursor,
	edit func(cfg *domain.Settings, info domain.StreamInfo, frames int),
) (*offlineRun, error) {
	if s.deps.Open == nil || s.deps.Stream == nil || s.deps.Backend == nil {
		return nil, domain.NewServiceError("ExportService", "analyze", "missing dependencies", domain.ErrNotInitialized)
	}

	file, err := s.deps.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			s.logger.Warn("failed to close audio file", slog.String("path", path), slog.Any("error", cerr))
		}
	}()

	info := file.Info()
	cfg := s.base()
	edit(&cfg, info, file.Frames())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := s.deps.Backend(cfg.WindowSize, cfg.Window)
	if err != nil {
		return nil, err
	}

	maxHop := int(math.Ceil(cfg.BlobSizeMs / 1000 * info.SampleRate))
	stream := s.deps.Stream(offlineChunk+maxHop+cfg.WindowSize, info)
	settings := NewSettingsService(s.logger, &fixedSettings{settings: cfg}, nil)
	analyzer := NewAnalyzerService(s.logger, nil, settings, stream, backend)
	analyzer.SetSurfaceSize(width, height)
	analyzer.SetCursor(cursor)

	left := make([]float32, offlineChunk)
	right := make([]float32, offlineChunk)
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := file.ReadFrames(left, right)
		if n > 0 {
			stream.Write(left[:n], right[:n])
			analyzer.Tick(float64(n) / info.SampleRate)
			total += n
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewStreamError("decode", path, "failed to read frames", err)
		}
	}
	if total == 0 {
		return nil, domain.NewStreamError("decode", path, "no audio frames", domain.ErrEmptyStream)
	}

	s.logger.Debug("offline analysis finished",
		slog.String("file", file.Title()),
		slog.Int("frames", total),
		slog.String("display", cfg.Display.String()))
	return &offlineRun{analyzer: analyzer, cfg: cfg, title: file.Title()}, nil
}
