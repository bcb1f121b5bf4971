// Package fyne provides Fyne UI adapter implementations.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
	"github.com/tejashwikalptaru/gospectra/internal/service"
	"github.com/tejashwikalptaru/gospectra/internal/spectrum"
)

// Export sizes used by the window.
const (
	spectrogramExportWidth  = 1600
	spectrogramExportHeight = 600
	snapshotExportPoints    = 1024
)

// UIView defines the interface for UI updates.
// The actual UI implementation (MainWindow) must implement this interface.
type UIView interface {
	// Analyzer state
	SetSettings(settings domain.Settings)
	SetFrozen(frozen bool)
	Redraw()

	// Source information
	SetSourceTitle(title string)
	SetRecentFiles(paths []string)
	SetStatus(text string)
	SetPeak(text string)

	// Notifications
	ShowNotification(title, message string)
}

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between services and the UI, handling all event-driven updates.
//
// Responsibilities:
// - Drive the analysis tick at the display rate
// - Map domain events to UI updates
// - Translate UI commands to service method calls
//
// Thread-safety: All operations are thread-safe.
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	analyzer *service.AnalyzerService
	settings *service.SettingsService
	sources  *service.SourceService
	exports  *service.ExportService

	// Event bus for subscriptions
	EventBus ports.EventBus

	// UI view
	view UIView

	// Presentation state
	frameInterval time.Duration
	info          domain.StreamInfo
	dropped       uint64
	subscriptions []domain.SubscriptionID

	// Lifecycle
	ctx          context.Context
	cancel       context.CancelFunc
	tickTicker   *time.Ticker
	stopTickChan chan struct{}
	tickDone     chan struct{}
	exportWg     sync.WaitGroup

	// Concurrency control
	mu           sync.Mutex
	shutdownOnce sync.Once
}

// NewPresenter creates a presenter ticking the analyzer fps times per second.
// exports may be nil.
func NewPresenter(
	logger *slog.Logger,
	analyzer *service.AnalyzerService,
	settings *service.SettingsService,
	sources *service.SourceService,
	exports *service.ExportService,
	eventBus ports.EventBus,
	view UIView,
	fps int,
) *Presenter {
	if fps <= 0 {
		fps = 60
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		logger:        logger.With(slog.String("component", "presenter")),
		analyzer:      analyzer,
		settings:      settings,
		sources:       sources,
		exports:       exports,
		EventBus:      eventBus,
		view:          view,
		frameInterval: time.Second / time.Duration(fps),
		ctx:           ctx,
		cancel:        cancel,
		stopTickChan:  make(chan struct{}),
		tickDone:      make(chan struct{}),
	}

	// Subscribe to events
	p.subscribeToEvents()

	// Sync UI with current state
	p.syncInitialState()

	// Start the analysis ticker
	p.startTicking()

	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Settings events
		domain.EventSettingsChanged: p.onSettingsChanged,
		domain.EventFreezeToggled:   p.onFreezeToggled,

		// Analyzer events
		domain.EventStreamReset: p.onStreamReset,
		domain.EventPeakMoved:   p.onPeakMoved,
		domain.EventOverrun:     p.onOverrun,

		// Source events
		domain.EventSourceChanged: p.onSourceChanged,
		domain.EventSourceEnded:   p.onSourceEnded,
	}

	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.EventBus.Subscribe(eventType, handler))
	}
}

// syncInitialState synchronizes the UI with the current application state.
func (p *Presenter) syncInitialState() {
	cfg := p.settings.Current()
	p.view.SetSettings(cfg)
	p.view.SetFrozen(cfg.Frozen)

	_, title, _ := p.sources.Current()
	if title == "" {
		title = "No source"
	}
	p.view.SetSourceTitle(title)
	p.view.SetRecentFiles(p.sources.Recent())
}

// Event handlers

func (p *Presenter) onSettingsChanged(event domain.Event) {
	e, ok := event.(domain.SettingsChangedEvent)
	if !ok {
		return
	}
	p.view.SetSettings(e.Current)
}

func (p *Presenter) onFreezeToggled(event domain.Event) {
	e, ok := event.(domain.FreezeToggledEvent)
	if !ok {
		return
	}
	p.view.SetFrozen(e.Frozen)
}

func (p *Presenter) onStreamReset(event domain.Event) {
	e, ok := event.(domain.StreamResetEvent)
	if !ok {
		return
	}
	p.mu.Lock()
	p.info = e.Info
	p.dropped = 0
	p.mu.Unlock()
	p.view.SetStatus(streamStatus(e.Info, 0))
}

func (p *Presenter) onPeakMoved(event domain.Event) {
	e, ok := event.(domain.PeakMovedEvent)
	if !ok {
		return
	}
	p.view.SetPeak(PeakSummary(e.Peak, p.settings.Current().ReferenceTuning))
}

func (p *Presenter) onOverrun(event domain.Event) {
	e, ok := event.(domain.OverrunEvent)
	if !ok {
		return
	}
	p.mu.Lock()
	p.dropped += e.Dropped
	info, dropped := p.info, p.dropped
	p.mu.Unlock()
	p.view.SetStatus(streamStatus(info, dropped))
}

func (p *Presenter) onSourceChanged(event domain.Event) {
	e, ok := event.(domain.SourceChangedEvent)
	if !ok {
		return
	}
	p.view.SetSourceTitle(e.Title)
	p.view.SetPeak("")
	if e.Kind == domain.SourceFile {
		p.view.SetRecentFiles(p.sources.Recent())
	}
}

func (p *Presenter) onSourceEnded(event domain.Event) {
	e, ok := event.(domain.SourceEndedEvent)
	if !ok {
		return
	}
	if e.Error != nil {
		p.view.ShowNotification("Playback Error", fmt.Sprintf("Failed to read file: %v", e.Error))
		return
	}
	p.view.SetStatus("finished")
}

// startTicking runs the analysis tick on its own goroutine.
func (p *Presenter) startTicking() {
	p.tickTicker = time.NewTicker(p.frameInterval)
	go func() {
		defer close(p.tickDone)
		last := time.Now()
		for {
			select {
			case now := <-p.tickTicker.C:
				dt := now.Sub(last).Seconds()
				last = now
				if p.analyzer.Tick(dt) {
					p.view.Redraw()
				}
			case <-p.stopTickChan:
				return
			}
		}
	}()
}

// UI command handlers

// OnToggleFreeze freezes or resumes the display.
func (p *Presenter) OnToggleFreeze() {
	if _, err := p.settings.ToggleFrozen(); err != nil {
		p.notifyError("Settings Error", err)
	}
}

// OnDisplayModeChanged switches between the line graph and the colour spectrum.
func (p *Presenter) OnDisplayModeChanged(mode domain.DisplayMode) {
	p.update(func(s *domain.Settings) { s.Display = mode })
}

// OnChannelChanged selects the channel configuration.
func (p *Presenter) OnChannelChanged(channel domain.ChannelConfiguration) {
	p.update(func(s *domain.Settings) { s.Channel = channel })
}

// OnScalingChanged selects linear or logarithmic frequency scaling.
func (p *Presenter) OnScalingChanged(scaling domain.ViewScaling) {
	p.update(func(s *domain.Settings) { s.Scaling = scaling })
}

// OnTrackingGraphChanged selects which line graph the peak tracker follows.
func (p *Presenter) OnTrackingGraphChanged(graph domain.LineGraphID) {
	p.update(func(s *domain.Settings) { s.TrackingGraph = graph })
}

// OnWindowSizeChanged sets the transform size.
func (p *Presenter) OnWindowSizeChanged(size int) {
	p.update(func(s *domain.Settings) { s.WindowSize = size })
}

// OnDiagnosticsToggled shows or hides the diagnostics overlay.
func (p *Presenter) OnDiagnosticsToggled(show bool) {
	p.update(func(s *domain.Settings) { s.Diagnostics = show })
}

// OnResetSettings restores the factory configuration.
func (p *Presenter) OnResetSettings() {
	if err := p.settings.Reset(); err != nil {
		p.notifyError("Settings Error", err)
	}
}

func (p *Presenter) update(fn func(*domain.Settings)) {
	if err := p.settings.Update(fn); err != nil {
		p.notifyError("Settings Error", err)
	}
}

// OnFileOpened starts analysing the WAV file at path.
func (p *Presenter) OnFileOpened(path string) error {
	_, err := p.sources.OpenFile(p.ctx, path)
	return err
}

// OnGeneratorSelected switches to the tone generator.
func (p *Presenter) OnGeneratorSelected() error {
	return p.sources.UseGenerator(p.ctx)
}

// OnClearRecent forgets the recently opened files.
func (p *Presenter) OnClearRecent() {
	if err := p.sources.ClearRecent(); err != nil {
		p.notifyError("Recent Files", err)
		return
	}
	p.view.SetRecentFiles(nil)
}

// RecentFiles lists the recently opened files, newest first.
func (p *Presenter) RecentFiles() []string {
	return p.sources.Recent()
}

// OnExportSpectrogram renders the current file as a PNG into w in the background.
func (p *Presenter) OnExportSpectrogram(w io.WriteCloser) {
	p.export(w, "spectrogram", func(ctx context.Context, path string) error {
		return p.exports.RenderSpectrogram(ctx, path, spectrogramExportWidth, spectrogramExportHeight, w)
	})
}

// OnExportSnapshot writes the line graph of the current file as an HTML chart,
// with the peak under the current pointer position marked.
func (p *Presenter) OnExportSnapshot(w io.WriteCloser) {
	cursor := p.analyzer.Cursor()
	x := -1.0
	if cursor.Inside {
		x = cursor.X
	}
	p.export(w, "snapshot", func(ctx context.Context, path string) error {
		return p.exports.Snapshot(ctx, path, x, snapshotExportPoints, w)
	})
}

func (p *Presenter) export(w io.WriteCloser, what string, run func(ctx context.Context, path string) error) {
	kind, _, path := p.sources.Current()
	if p.exports == nil || kind != domain.SourceFile {
		_ = w.Close()
		p.view.ShowNotification("Export", "Open a WAV file before exporting")
		return
	}

	p.exportWg.Add(1)
	go func() {
		defer p.exportWg.Done()
		err := run(p.ctx, path)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			p.logger.Error("export failed", slog.String("kind", what), slog.Any("error", err))
			p.notifyError("Export Error", err)
			return
		}
		p.view.ShowNotification("Export", fmt.Sprintf("The %s was written", what))
	}()
}

func (p *Presenter) notifyError(title string, err error) {
	p.logger.Warn(strings.ToLower(title), slog.Any("error", err))
	p.view.ShowNotification(title, err.Error())
}

// Shutdown cleans up resources.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		// Stop the ticker first to prevent new iterations
		if p.tickTicker != nil {
			p.tickTicker.Stop()
		}

		// Close channel to signal goroutine to exit
		close(p.stopTickChan)
		<-p.tickDone

		// Abort running exports
		p.cancel()
		p.exportWg.Wait()

		for _, id := range p.subscriptions {
			p.EventBus.Unsubscribe(id)
		}
		p.subscriptions = nil
	})
}

// PeakSummary formats a tracked peak for the status bar.
func PeakSummary(peak domain.PeakEstimate, referenceA4 float64) string {
	if !peak.Available() {
		return ""
	}
	text := fmt.Sprintf("peak %.2f Hz  %.1f dB", peak.FrequencyHz, peak.AmplitudeDb)
	if peak.IsMirrored {
		text = "peak -i*" + text[len("peak "):]
	}
	if note, ok := spectrum.NearestNote(peak.FrequencyHz, referenceA4); ok {
		text += "  " + note.String()
	}
	return text
}

func streamStatus(info domain.StreamInfo, dropped uint64) string {
	var parts []string
	if info.SampleRate > 0 {
		parts = append(parts, fmt.Sprintf("%.0f Hz, %d ch", info.SampleRate, info.Channels))
	}
	if dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d frames dropped", dropped))
	}
	return strings.Join(parts, "  ")
}
