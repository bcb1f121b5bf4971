// Package widgets provides custom Fyne widgets for the gospectra analyzer.
package widgets

import (
	"image"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/render/raster"
	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/render"
)

// FrameSource is the analyzer state the view draws.
type FrameSource interface {
	SetSurfaceSize(width, height int)
	SetCursor(c domain.Cursor)
	Snapshot(dst *domain.Frame)
}

// AnalyzerView draws the line graph or the colour spectrum and feeds the
// pointer position back to the analyzer.
//
// A primary tap toggles freezing through OnTapped; a secondary tap opens the
// context menu through OnSecondaryTapped.
type AnalyzerView struct {
	widget.BaseWidget

	raster   *canvas.Raster
	source   FrameSource
	logger   *slog.Logger
	composer *render.Composer

	// the driver may still upload the previous image while the next is drawn
	surfaces [2]*raster.Surface
	next     int
	frame    domain.Frame
	mu       sync.Mutex

	OnTapped          func()
	OnSecondaryTapped func(*fyne.PointEvent)
}

// NewAnalyzerView creates a view drawing frames from source.
func NewAnalyzerView(source FrameSource, logger *slog.Logger) *AnalyzerView {
	v := &AnalyzerView{
		source:   source,
		logger:   logger.With(slog.String("component", "analyzer_view")),
		composer: render.NewComposer(logger),
		surfaces: [2]*raster.Surface{raster.New(0, 0), raster.New(0, 0)},
	}

	v.raster = canvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)

	return v
}

// CreateRenderer implements fyne.Widget.
func (v *AnalyzerView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize returns a minimal size so the view expands to fill available space.
func (v *AnalyzerView) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

// Redraw requests a new frame. Call it on the UI goroutine.
func (v *AnalyzerView) Redraw() {
	v.raster.Refresh()
}

// draw is the raster generator. w and h are in device pixels.
func (v *AnalyzerView) draw(w, h int) image.Image {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.source.SetSurfaceSize(w, h)
	surface := v.surfaces[v.next]
	v.next = 1 - v.next
	surface.Resize(w, h)
	if w <= 0 || h <= 0 {
		return surface.Image()
	}

	v.source.Snapshot(&v.frame)
	v.composer.Render(&v.frame, surface)
	return surface.Image()
}

// Frames returns how many frames were drawn.
func (v *AnalyzerView) Frames() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.composer.Frames()
}

func (v *AnalyzerView) pointer(pos fyne.Position, inside bool) {
	size := v.Size()
	if size.Width <= 0 || size.Height <= 0 {
		inside = false
	}
	c := domain.Cursor{Inside: inside}
	if size.Width > 0 && size.Height > 0 {
		c.X = float64(pos.X / size.Width)
		c.Y = float64(pos.Y / size.Height)
	}
	v.source.SetCursor(c)
}

// Tapped implements fyne.Tappable.
func (v *AnalyzerView) Tapped(*fyne.PointEvent) {
	if v.OnTapped != nil {
		v.OnTapped()
	}
}

// TappedSecondary implements fyne.SecondaryTappable.
func (v *AnalyzerView) TappedSecondary(pe *fyne.PointEvent) {
	if v.OnSecondaryTapped != nil {
		v.OnSecondaryTapped(pe)
	}
}

// MouseIn implements desktop.Hoverable.
func (v *AnalyzerView) MouseIn(e *desktop.MouseEvent) {
	v.pointer(e.Position, true)
}

// MouseMoved implements desktop.Hoverable.
func (v *AnalyzerView) MouseMoved(e *desktop.MouseEvent) {
	v.pointer(e.Position, true)
}

// MouseOut implements desktop.Hoverable.
func (v *AnalyzerView) MouseOut() {
	v.pointer(fyne.Position{}, false)
}

// Ensure AnalyzerView implements the required interfaces
var _ fyne.Tappable = (*AnalyzerView)(nil)
var _ fyne.SecondaryTappable = (*AnalyzerView)(nil)
var _ desktop.Hoverable = (*AnalyzerView)(nil)
