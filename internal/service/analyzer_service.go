package service

import (
	"image"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
	"github.com/tejashwikalptaru/gospectra/internal/spectrogram"
	"github.com/tejashwikalptaru/gospectra/internal/spectrum"
)

// AnalyzerService turns the audio stream into display state, once per render tick.
//
// Tick and Snapshot are meant for the render goroutine. The pointer position and
// the surface size are written by UI callbacks on other goroutines and are read
// by Tick with atomic loads, so those setters never block on a running tick.
type AnalyzerService struct {
	// Dependencies (injected)
	logger   *slog.Logger
	bus      ports.EventBus
	settings *SettingsService
	stream   ports.AudioStream
	backend  ports.TransformBackend

	// Cross-goroutine inputs
	cursorX, cursorY atomic.Uint64 // math.Float64bits
	cursorInside     atomic.Bool
	width, height    atomic.Int32

	// Render goroutine state, guarded by mu
	mu          sync.Mutex
	seen        uint64
	cfg         domain.Settings
	info        domain.StreamInfo
	mapper      spectrum.Mapper
	channels    *spectrum.ChannelAnalyzer
	lines       *spectrum.LineBuffer
	grid        spectrum.Grid
	tracker     *spectrum.PeakTracker
	scroller    *spectrogram.Scroller
	frames      blobSource
	left, right []float64
	hop         int
	spec        *spectrum.Spectrum
	peak        domain.PeakEstimate
	readout     domain.CursorReadout
	dropped     uint64
	diag        domain.Diagnostics
}

// NewAnalyzerService creates an analyzer reading stream through backend.
func NewAnalyzerService(
	logger *slog.Logger,
	bus ports.EventBus,
	settings *SettingsService,
	stream ports.AudioStream,
	backend ports.TransformBackend,
) *AnalyzerService {
	cfg := settings.Current()
	a := &AnalyzerService{
		logger:   logger.With(slog.String("service", "analyzer")),
		bus:      bus,
		settings: settings,
		stream:   stream,
		backend:  backend,
		channels: spectrum.NewChannelAnalyzer(backend),
		lines:    spectrum.NewLineBuffer(int(domain.LineGraphCount)),
		tracker:  spectrum.NewPeakTracker(),
		scroller: spectrogram.NewScroller(0, 0, spectrogram.RampFromSettings(cfg)),
		peak:     domain.UnavailablePeak(),
	}
	a.frames.a = a
	a.logger.Debug("analyzer service initialized", slog.String("backend", backend.Name()))
	return a
}

// SetSurfaceSize records the size in pixels of the drawing surface.
func (a *AnalyzerService) SetSurfaceSize(width, height int) {
	a.width.Store(int32(max(width, 0)))
	a.height.Store(int32(max(height, 0)))
}

// SetCursor records the pointer position as fractions of the surface, Y from the top.
func (a *AnalyzerService) SetCursor(c domain.Cursor) {
	a.cursorX.Store(math.Float64bits(c.X))
	a.cursorY.Store(math.Float64bits(c.Y))
	a.cursorInside.Store(c.Inside)
}

// Cursor returns the last pointer position.
func (a *AnalyzerService) Cursor() domain.Cursor {
	return a.loadCursor()
}

func (a *AnalyzerService) loadCursor() domain.Cursor {
	return domain.Cursor{
		X:      math.Float64frombits(a.cursorX.Load()),
		Y:      math.Float64frombits(a.cursorY.Load()),
		Inside: a.cursorInside.Load(),
	}
}

// Tick runs one analysis step dt seconds after the previous one. The whole step
// is skipped when the surface has no area or the stream has no format yet; it
// reports whether the step ran.
func (a *AnalyzerService) Tick(dt float64) bool {
	width, height := int(a.width.Load()), int(a.height.Load())
	if width <= 0 || height <= 0 {
		return false
	}
	info := a.stream.Info()
	if !(info.SampleRate > 0) {
		return false
	}
	cursor := a.loadCursor()
	if !(dt >= 0) || math.IsInf(dt, 0) {
		dt = 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	start := time.Now()

	a.reconfigure(info, width, height)

	switch a.cfg.Display {
	case domain.DisplayColourSpectrum:
		a.scroller.Advance(dt, &a.frames)
	default:
		if !a.cfg.Frozen {
			a.analyzeLatest(dt)
		}
	}

	a.track(cursor, width, height)
	a.checkOverrun()

	a.diag.Ticks++
	a.diag.TickDuration = time.Since(start)
	a.diag.FramesPerUpdate = a.scroller.State().FramesPerUpdate
	return true
}

// reconfigure re-derives everything that depends on the settings, the stream
// format or the surface size. Caller holds mu.
func (a *AnalyzerService) reconfigure(info domain.StreamInfo, width, height int) {
	cfg, version, changed := a.settings.Snapshot(a.seen)
	if changed {
		a.seen = version
		a.applySettings(cfg)
	}

	if info != a.info {
		a.logger.Info("stream format changed",
			slog.Float64("sample_rate", info.SampleRate),
			slog.Int("channels", info.Channels))
		a.info = info
		a.lines.Reset()
		a.scroller.Clear()
		a.publish(domain.EventStreamReset, func() domain.Event { return domain.NewStreamResetEvent(info) })
	}

	a.mapper = spectrum.NewMapper(a.cfg, a.info)
	a.hop = max(1, int(math.Round(a.cfg.BlobSizeMs/1000*a.info.SampleRate)))

	points := width
	if a.cfg.Display == domain.DisplayColourSpectrum {
		points = height
		if w, h := a.scroller.Size(); w != width || h != height {
			a.scroller.Resize(width, height)
		}
	}
	a.lines.Configure(a.mapper, points)
}

// applySettings pushes a new settings snapshot into the backend and the
// stateful components. Caller holds mu.
func (a *AnalyzerService) applySettings(cfg domain.Settings) {
	previous := a.cfg
	a.cfg = cfg

	if err := a.backend.Resize(cfg.WindowSize); err != nil {
		a.logger.Error("failed to resize transform", slog.Int("size", cfg.WindowSize), slog.Any("error", err))
	}
	if err := a.backend.SetWindow(cfg.Window); err != nil {
		a.logger.Error("failed to set window", slog.String("window", string(cfg.Window)), slog.Any("error", err))
	}
	n := a.backend.Size()
	if len(a.left) != n {
		a.left = make([]float64, n)
		a.right = make([]float64, n)
	}

	a.scroller.SetRamp(spectrogram.RampFromSettings(cfg))
	a.scroller.SetSmoothing(cfg.UpdateSmoothing)
	a.scroller.SetFrozen(cfg.Frozen)

	if previous.Channel != cfg.Channel || previous.Display != cfg.Display || previous.WindowSize != cfg.WindowSize {
		a.lines.Reset()
		a.spec = nil
	}
}

// analyzeLatest transforms the newest window of the stream into every line
// graph. Caller holds mu.
func (a *AnalyzerService) analyzeLatest(dt float64) {
	a.stream.Latest(a.left, a.right)
	a.spec = a.channels.Analyze(a.cfg.Channel, a.left, a.right, a.info.SampleRate)
	for g := domain.GraphMain; g < domain.LineGraphCount; g++ {
		a.lines.Update(g, a.spec, a.lineUpdate(g, dt))
	}
}

func (a *AnalyzerService) lineUpdate(g domain.LineGraphID, dt float64) spectrum.LineUpdate {
	return spectrum.LineUpdate{
		DecayDbPerSec: a.cfg.Lines[g].DecayDbPerSec,
		Dt:            dt,
		LowDb:         a.cfg.LowDb,
		HighDb:        a.cfg.HighDb,
		Interpolation: a.cfg.Interpolation,
	}
}

// track runs the peak search and the cursor readout after the line graphs
// were updated for this tick. Caller holds mu.
func (a *AnalyzerService) track(cursor domain.Cursor, width, height int) {
	colour := a.cfg.Display == domain.DisplayColourSpectrum

	// in colour spectrum mode frequency runs up the vertical axis
	axis := cursor.X
	span := width
	if colour {
		axis = 1 - cursor.Y
		span = height
	}

	a.readout = spectrum.CursorAt(a.mapper, domain.Cursor{X: axis, Y: cursor.Y, Inside: cursor.Inside}, a.cfg.LowDb, a.cfg.HighDb)
	if colour {
		a.readout.Decibels = math.NaN()
	}

	if !cursor.Inside {
		a.peak = domain.UnavailablePeak()
		return
	}

	q := spectrum.PeakQuery{
		Cursor:        axis,
		Graph:         a.cfg.TrackingGraph,
		Width:         span,
		Height:        height,
		LowDb:         a.cfg.LowDb,
		HighDb:        a.cfg.HighDb,
		Interpolation: a.cfg.Interpolation,
	}
	if colour {
		q.Height = width
	}
	a.peak = a.tracker.FindPeak(q, a.lines, a.spec, a.backend)

	if a.tracker.Moved() && a.peak.Available() {
		graph, peak := a.cfg.TrackingGraph, a.peak
		a.publish(domain.EventPeakMoved, func() domain.Event { return domain.NewPeakMovedEvent(graph, peak) })
	}
}

func (a *AnalyzerService) checkOverrun() {
	counters := a.stream.Counters()
	a.diag.FramesWritten = counters.Written
	a.diag.FramesDropped = counters.Dropped
	if counters.Dropped <= a.dropped {
		return
	}
	lost := counters.Dropped - a.dropped
	a.dropped = counters.Dropped
	a.logger.Warn("audio stream overrun", slog.Uint64("dropped", lost))
	a.publish(domain.EventOverrun, func() domain.Event { return domain.NewOverrunEvent(lost) })
}

// publish builds the event only when someone listens.
func (a *AnalyzerService) publish(t domain.EventType, build func() domain.Event) {
	if a.bus != nil && a.bus.HasSubscribers(t) {
		a.bus.Publish(build())
	}
}

// Peak returns the latest peak estimate.
func (a *AnalyzerService) Peak() domain.PeakEstimate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.peak
}

// Snapshot copies the display state into dst, reusing its buffers.
func (a *AnalyzerService) Snapshot(dst *domain.Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()

	width, height := int(a.width.Load()), int(a.height.Load())
	dst.Width, dst.Height = width, height
	dst.Display = a.cfg.Display
	dst.Channel = a.cfg.Channel
	dst.Frozen = a.cfg.Frozen
	dst.LineStyles = a.cfg.Lines
	for g := domain.GraphMain; g < domain.LineGraphCount; g++ {
		dst.Lines[g] = append(dst.Lines[g][:0], a.lines.Results(g)...)
	}

	axisLength := width
	if a.cfg.Display == domain.DisplayColourSpectrum {
		axisLength = height
	}
	normal, mirrored := a.grid.Divisions(a.mapper, axisLength, a.cfg.PctForDivision)
	dst.Divisions = append(dst.Divisions[:0], normal...)
	dst.MirroredDivisions = append(dst.MirroredDivisions[:0], mirrored...)
	dst.DecibelDivisions = dst.DecibelDivisions[:0]
	if a.cfg.Display == domain.DisplayLineGraph {
		dst.DecibelDivisions = append(dst.DecibelDivisions, spectrum.DecibelDivisions(a.cfg.LowDb, a.cfg.HighDb, height)...)
	}

	dst.Spectrogram = copyImage(dst.Spectrogram, a.scroller.Image())
	dst.Scroll = a.scroller.State()

	dst.Cursor = a.loadCursor()
	dst.Readout = a.readout
	dst.Peak = a.peak
	dst.ReferenceTuning = a.cfg.ReferenceTuning

	dst.Background = a.cfg.Background
	dst.Grid = a.cfg.Grid
	dst.FloodFillAlpha = a.cfg.FloodFillAlpha
	dst.PrimitiveSize = a.cfg.PrimitiveSize
	dst.ShowDiagnostics = a.cfg.Diagnostics
	dst.Diagnostics = a.diag
}

// Frequencies copies the frequency of every display point into dst.
func (a *AnalyzerService) Frequencies(dst []float64) []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append(dst[:0], a.lines.Frequencies()...)
}

// Spectrogram returns a copy of the history image with the oldest column on the left.
func (a *AnalyzerService) Spectrogram() *image.RGBA {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scroller.Unrolled()
}

func copyImage(dst, src *image.RGBA) *image.RGBA {
	if src == nil {
		return dst
	}
	if dst == nil || dst.Bounds() != src.Bounds() {
		dst = image.NewRGBA(src.Bounds())
	}
	copy(dst.Pix, src.Pix)
	return dst
}

// blobSource hands the scroller one analysis frame per BlobSizeMs of audio.
// Each frame slides the analysis window by one hop, transforms it and folds it
// into the main line graph, whose magnitudes become the column.
type blobSource struct {
	a     *AnalyzerService
	block []float64
	blkR  []float64
	frame []float32
}

func (s *blobSource) Available() int {
	a := s.a
	if a.hop <= 0 {
		return 0
	}
	return a.stream.Available() / a.hop
}

func (s *blobSource) NextFrame() ([]float32, bool) {
	a := s.a
	hop := a.hop
	if hop <= 0 || a.stream.Available() < hop {
		return nil, false
	}
	if len(s.block) != hop {
		s.block = make([]float64, hop)
		s.blkR = make([]float64, hop)
	}
	a.stream.Read(s.block, s.blkR)

	n := len(a.left)
	if hop >= n {
		copy(a.left, s.block[hop-n:])
		copy(a.right, s.blkR[hop-n:])
	} else {
		copy(a.left, a.left[hop:])
		copy(a.right, a.right[hop:])
		copy(a.left[n-hop:], s.block)
		copy(a.right[n-hop:], s.blkR)
	}

	a.spec = a.channels.Analyze(a.cfg.Channel, a.left, a.right, a.info.SampleRate)
	blobDt := float64(hop) / a.info.SampleRate
	a.lines.Update(domain.GraphMain, a.spec, a.lineUpdate(domain.GraphMain, blobDt))

	results := a.lines.Results(domain.GraphMain)
	if cap(s.frame) < len(results) {
		s.frame = make([]float32, len(results))
	}
	s.frame = s.frame[:len(results)]
	for i, r := range results {
		s.frame[i] = r.LeftMagnitude
	}
	return s.frame, true
}
