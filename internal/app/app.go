// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/gospectra/internal/adapter/audio/ring"
	"github.com/tejashwikalptaru/gospectra/internal/adapter/audio/wavfile"
	"github.com/tejashwikalptaru/gospectra/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/gospectra/internal/adapter/export/echarts"
	"github.com/tejashwikalptaru/gospectra/internal/adapter/render/raster"
	"github.com/tejashwikalptaru/gospectra/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/gospectra/internal/adapter/transform/backends"
	fyneui "github.com/tejashwikalptaru/gospectra/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/logger"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
	"github.com/tejashwikalptaru/gospectra/internal/service"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App
	config  Config

	// Infrastructure
	eventBus  ports.EventBus
	stream    *ring.Buffer
	generator *mock.Engine
	backend   ports.TransformBackend

	// Repositories
	settingsRepo ports.SettingsRepository
	recentRepo   ports.RecentFilesRepository

	// Services
	settingsService *service.SettingsService
	analyzerService *service.AnalyzerService
	sourceService   *service.SourceService
	exportService   *service.ExportService

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// SampleRate is the tone generator sample rate
	SampleRate float64

	// Backend names the transform backend
	Backend string

	// FPS is how many times per second the analyzer ticks
	FPS int

	// StreamCapacity is the ring buffer size in frames
	StreamCapacity int

	// File is played on start instead of the tone generator when set
	File string

	// Tones are generated when no file is given
	Tones []mock.Tone

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// LogFormat is "text" or "json"
	LogFormat string

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:          "com.gospectra.app",
		AppName:        "GoSpectra",
		SampleRate:     48000,
		Backend:        backends.Default,
		FPS:            60,
		StreamCapacity: 1 << 17,
		Tones: []mock.Tone{
			{Frequency: 440, Amplitude: 0.5},
			{Frequency: 1250, Amplitude: 0.1, Pan: -0.5},
		},
		LogLevel:  loggerCfg.Level,
		LogFormat: loggerCfg.Format,
	}
}

// sourceBlock is how many frames a source writes per block.
const sourceBlock = 512

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	app := &Application{config: config}

	// Step 1: Create Fyne application
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	// Step 1.5: Create logger
	app.logger = logger.NewLogger(logger.Config{
		Level:  config.LogLevel,
		Format: config.LogFormat,
	})
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 2: Create an event bus
	syncBus := eventbus.NewSyncEventBus()
	syncBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	app.eventBus = syncBus

	// Step 3: Create repositories
	prefs := app.fyneApp.Preferences()
	app.settingsRepo = memory.NewSettingsRepository(prefs)
	app.recentRepo = memory.NewRecentFilesRepository(prefs)

	// Step 4: Settings come first, the analyzer sizes its backend from them
	app.settingsService = service.NewSettingsService(app.logger, app.settingsRepo, app.eventBus)
	cfg := app.settingsService.Current()

	// Step 5: Create the stream, its sources and the transform backend
	capacity := config.StreamCapacity
	if capacity < 2*domain.MaxWindowSize {
		capacity = 2 * domain.MaxWindowSize
	}
	app.stream = ring.New(capacity, domain.StreamInfo{SampleRate: config.SampleRate, Channels: 2})

	app.generator = mock.NewEngine(app.stream, config.SampleRate, sourceBlock)
	app.generator.SetLogger(app.logger.With(slog.String("engine", "generator")))
	app.generator.SetTones(config.Tones...)

	backend, err := backends.New(config.Backend, cfg.WindowSize, cfg.Window, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create transform backend: %w", err)
	}
	app.backend = backend

	// Step 6: Create services (with dependency injection)
	app.analyzerService = service.NewAnalyzerService(app.logger, app.eventBus, app.settingsService, app.stream, app.backend)

	app.sourceService = service.NewSourceService(
		app.logger,
		app.stream,
		app.generator,
		func(path string) (ports.StreamingFile, error) {
			return wavfile.Open(path, app.logger)
		},
		app.recentRepo,
		app.eventBus,
		sourceBlock,
	)

	app.exportService = NewExportService(app.logger, app.settingsService, config.Backend)

	// Step 7: Create UI
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, app.analyzerService, app.logger)

	// Step 8: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger,
		app.analyzerService,
		app.settingsService,
		app.sourceService,
		app.exportService,
		app.eventBus,
		app.mainWindow,
		config.FPS,
	)

	// Connect presenter to the main window
	app.mainWindow.SetPresenter(app.presenter)

	return app, nil
}

// NewExportService builds an export service over the WAV reader, a ring
// buffer, the named backend and the raster and echarts adapters. settings may
// be nil for the defaults.
func NewExportService(log *slog.Logger, settings *service.SettingsService, backend string) *service.ExportService {
	return service.NewExportService(log, settings, service.ExportDependencies{
		Open: func(path string) (ports.AudioFile, error) {
			return wavfile.Open(path, log)
		},
		Stream: func(capacity int, info domain.StreamInfo) ports.BufferedStream {
			return ring.New(capacity, info)
		},
		Backend: backends.Factory(backend, log),
		Surface: func(width, height int) ports.ImageSurface {
			return raster.New(width, height)
		},
		Exporter: echarts.NewExporter(log),
	})
}

// Start begins feeding the analyzer, from the configured file or else from
// the tone generator.
func (a *Application) Start(ctx context.Context) error {
	if a.config.File != "" {
		title, err := a.sourceService.OpenFile(ctx, a.config.File)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", a.config.File, err)
		}
		a.logger.Info("playing file", slog.String("title", title))
		return nil
	}
	return a.sourceService.UseGenerator(ctx)
}

// Run starts the sources and shows the main window.
// This is called from main after the application is created.
func (a *Application) Run() error {
	if err := a.Start(context.Background()); err != nil {
		return err
	}
	a.logger.Info("GoSpectra started", slog.String("backend", a.backend.Name()))

	// Show and run UI (blocks until the window is closed)
	a.mainWindow.ShowAndRun()
	return nil
}

// Services exposes the services, mainly for tests.
func (a *Application) Services() (*service.SettingsService, *service.AnalyzerService, *service.SourceService, *service.ExportService) {
	return a.settingsService, a.analyzerService, a.sourceService, a.exportService
}

// EventBus returns the application event bus.
func (a *Application) EventBus() ports.EventBus {
	return a.eventBus
}

// FyneApp returns the Fyne application.
func (a *Application) FyneApp() fyne.App {
	return a.fyneApp
}

// Backend returns the transform backend in use.
func (a *Application) Backend() ports.TransformBackend {
	return a.backend
}

// Shutdown gracefully shuts down the application. It is safe to call more than once.
func (a *Application) Shutdown() error {
	var err error
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		// Stop the ticker before the sources so no tick reads a half-stopped stream
		if a.presenter != nil {
			a.presenter.Shutdown()
		}
		if a.sourceService != nil {
			a.sourceService.Stop()
		}
		if a.eventBus != nil {
			if cerr := a.eventBus.Close(); cerr != nil {
				a.logger.Warn("failed to close event bus", slog.Any("error", cerr))
				err = cerr
			}
		}

		a.logger.Info("application shutdown complete")
	})
	return err
}
