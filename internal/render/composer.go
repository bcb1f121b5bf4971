// Package render turns an analyzer frame into drawing calls on a render surface.
package render

import (
	"image/color"
	"log/slog"
	"math"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// Marker geometry in multiples of the primitive size.
const (
	peakMarkerSize  = 5
	peakMarkerWidth = 1.5
	labelPad        = 2
)

// Text overlay layout in pixels.
const (
	overlayLeft   = 48
	overlayTop    = 16
	overlayLeader = 14
)

var overlayText = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xe0}

// Composer draws frames. It keeps vertex scratch buffers between calls, so one
// composer must not be shared between goroutines.
type Composer struct {
	logger *slog.Logger

	segments []ports.Vertex
	strip    []ports.Vertex
	marker   []ports.Vertex

	lastDisplay domain.DisplayMode
	drawn       uint64
}

// NewComposer creates a composer.
func NewComposer(logger *slog.Logger) *Composer {
	return &Composer{
		logger:      logger.With(slog.String("component", "composer")),
		lastDisplay: -1,
	}
}

// Frames returns how many frames were drawn.
func (c *Composer) Frames() uint64 {
	return c.drawn
}

// Render draws f onto s. A surface or a frame without area draws nothing.
func (c *Composer) Render(f *domain.Frame, s ports.RenderSurface) {
	width, height := s.Size()
	if f == nil || width <= 0 || height <= 0 {
		return
	}
	if f.Display != c.lastDisplay {
		c.logger.Debug("display mode changed", slog.String("display", f.Display.String()))
		c.lastDisplay = f.Display
	}

	if f.Display == domain.DisplayColourSpectrum {
		c.renderColourSpectrum(f, s, width, height)
	} else {
		c.renderLineGraph(f, s, width, height)
	}
	c.drawn++
}

func (c *Composer) renderLineGraph(f *domain.Frame, s ports.RenderSurface, width, height int) {
	s.Clear(f.Background)
	lineWidth := float32(max(f.PrimitiveSize, 1))

	// frequency divisions run vertically, dB divisions horizontally
	c.segments = c.segments[:0]
	for _, d := range f.Divisions {
		c.segments = vertical(c.segments, float32(d.Coordinate), float32(height))
	}
	for _, d := range f.MirroredDivisions {
		c.segments = vertical(c.segments, float32(d.Coordinate), float32(height))
	}
	for _, d := range f.DecibelDivisions {
		c.segments = horizontal(c.segments, float32(d.Coordinate), float32(width))
	}
	if len(c.segments) > 0 {
		s.DrawLines(c.segments, f.Grid, 1)
	}
	label := labelColour(f.Grid)
	for _, d := range f.Divisions {
		s.DrawText(float32(d.Coordinate)+labelPad, float32(height)-labelPad, d.Label, label)
	}
	for _, d := range f.MirroredDivisions {
		s.DrawText(float32(d.Coordinate)+labelPad, float32(height)-labelPad, "-"+d.Label, label)
	}
	for _, d := range f.DecibelDivisions {
		s.DrawText(labelPad, float32(d.Coordinate)-labelPad, d.Label, label)
	}

	main := f.Lines[domain.GraphMain]
	if f.FloodFillAlpha > 0 && len(main) > 0 {
		c.strip = plot(c.strip[:0], main, height, false)
		fill := f.LineStyles[domain.GraphMain].Left
		fill.A = uint8(math.Round(clamp01(f.FloodFillAlpha) * 255))
		s.FillBelow(c.strip, fill)
	}

	// auxiliary graphs sit underneath the main graph
	twoLines := f.Channel.TwoLines()
	for g := domain.LineGraphID(domain.LineGraphCount - 1); g >= domain.GraphMain; g-- {
		results := f.Lines[g]
		if len(results) == 0 {
			continue
		}
		style := f.LineStyles[g]
		if twoLines {
			c.strip = plot(c.strip[:0], results, height, true)
			s.DrawLineStrip(c.strip, style.Right, lineWidth)
		}
		c.strip = plot(c.strip[:0], results, height, false)
		s.DrawLineStrip(c.strip, style.Left, lineWidth)
	}

	if f.Peak.Available() {
		px, py := float32(f.Peak.ScreenX), float32(f.Peak.ScreenY)
		if f.Cursor.Inside {
			mouse := ports.Vertex{X: float32(f.Cursor.X * float64(width)), Y: float32(f.Cursor.Y * float64(height))}
			c.marker = append(c.marker[:0], mouse, ports.Vertex{X: px, Y: py})
			s.DrawLines(c.marker, overlayText, float32(max(f.PrimitiveSize, 1)*peakMarkerWidth))
		}
		c.drawMarker(s, px, py, peakColour(f), f.PrimitiveSize)
	}
	c.drawOverlay(f, s, height)
}

func (c *Composer) renderColourSpectrum(f *domain.Frame, s ports.RenderSurface, width, height int) {
	s.Clear(f.Background)
	if f.Spectrogram != nil {
		s.BlitScrolling(f.Spectrogram, f.Scroll.WriteIndex)
	}

	// frequency runs up the vertical axis, coordinates count from the bottom
	c.segments = c.segments[:0]
	for _, d := range f.Divisions {
		c.segments = horizontal(c.segments, float32(height)-float32(d.Coordinate), float32(width))
	}
	if len(c.segments) > 0 {
		grid := f.Grid
		grid.A /= 2
		s.DrawLines(c.segments, grid, 1)
	}
	label := labelColour(f.Grid)
	for _, d := range f.Divisions {
		s.DrawText(labelPad, float32(height)-float32(d.Coordinate)-labelPad, d.Label, label)
	}

	if f.Peak.Available() {
		y := float32(height-1) - float32(f.Peak.ScreenX)
		c.segments = horizontal(c.segments[:0], y, float32(width))
		s.DrawLines(c.segments, peakColour(f), float32(max(f.PrimitiveSize, 1)))
	}
	c.drawOverlay(f, s, height)
}

// drawOverlay prints the cursor readout at the top and the diagnostics at the bottom.
func (c *Composer) drawOverlay(f *domain.Frame, s ports.RenderSurface, height int) {
	if f.Cursor.Inside {
		for i, line := range ReadoutLines(f.Readout, f.Peak, f.ReferenceTuning) {
			s.DrawText(overlayLeft, float32(overlayTop+i*overlayLeader), line, overlayText)
		}
	}
	if f.ShowDiagnostics {
		lines := DiagnosticLines(f.Diagnostics)
		for i, line := range lines {
			y := height - labelPad - overlayLeader*(len(lines)-i)
			s.DrawText(overlayLeft, float32(y), line, overlayText)
		}
	}
}

// drawMarker draws a small cross with a dot at the tracked peak.
func (c *Composer) drawMarker(s ports.RenderSurface, x, y float32, col color.RGBA, primitive float64) {
	size := float32(max(primitive, 1) * peakMarkerSize)
	c.marker = append(c.marker[:0],
		ports.Vertex{X: x - size, Y: y}, ports.Vertex{X: x + size, Y: y},
		ports.Vertex{X: x, Y: y - size}, ports.Vertex{X: x, Y: y + size},
	)
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	s.DrawLines(c.marker, white, float32(max(primitive, 1)*peakMarkerWidth))
	s.DrawPoints([]ports.Vertex{{X: x, Y: y}}, col, size/2)
}

// plot converts one line of results into screen vertices, one per pixel column.
func plot(dst []ports.Vertex, results []domain.LineGraphResult, height int, right bool) []ports.Vertex {
	h := float32(height - 1)
	for i, r := range results {
		m := r.LeftMagnitude
		if right {
			m = r.RightMagnitude
		}
		dst = append(dst, ports.Vertex{X: float32(i), Y: h - m*h})
	}
	return dst
}

func vertical(dst []ports.Vertex, x, height float32) []ports.Vertex {
	return append(dst, ports.Vertex{X: x, Y: 0}, ports.Vertex{X: x, Y: height})
}

func horizontal(dst []ports.Vertex, y, width float32) []ports.Vertex {
	return append(dst, ports.Vertex{X: 0, Y: y}, ports.Vertex{X: width, Y: y})
}

func peakColour(f *domain.Frame) color.RGBA {
	c := f.LineStyles[domain.GraphMain].Left
	c.A = 0xff
	return c
}

// labelColour brightens the grid colour so labels stay readable on top of it.
func labelColour(grid color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(min(int(grid.R)*2, 0xff)),
		G: uint8(min(int(grid.G)*2, 0xff)),
		B: uint8(min(int(grid.B)*2, 0xff)),
		A: 0xff,
	}
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
