package ports

import (
	"image"
	"image/color"
	"io"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// Vertex is a point in surface pixel coordinates, origin at the top left.
type Vertex struct {
	X, Y float32
}

// RenderSurface is the drawing backend used by the render adapter.
//
// Implementations accept vertex lists with a colour state and a persistent
// column image for the spectrogram. Calls happen on the render goroutine only.
type RenderSurface interface {
	// Size returns the drawable area in pixels.
	Size() (width, height int)

	// Clear fills the whole surface.
	Clear(c color.RGBA)

	// DrawLines draws independent segments from consecutive vertex pairs.
	DrawLines(segments []Vertex, c color.RGBA, width float32)

	// DrawLineStrip draws a connected polyline.
	DrawLineStrip(points []Vertex, c color.RGBA, width float32)

	// DrawPoints draws square points of the given size.
	DrawPoints(points []Vertex, c color.RGBA, size float32)

	// FillBelow fills from each vertex down to the bottom edge, alpha blended.
	FillBelow(points []Vertex, c color.RGBA)

	// BlitScrolling draws img stretched over the surface, starting with column
	// writeIndex (the oldest) at the left edge and wrapping around.
	BlitScrolling(img *image.RGBA, writeIndex int)

	// DrawText draws a single line of text with its baseline at y.
	DrawText(x, y float32, text string, c color.RGBA)
}

// ImageSurface is a render surface drawing into an in-memory image.
type ImageSurface interface {
	RenderSurface

	// Image returns the drawn pixels.
	Image() *image.RGBA
}

// SnapshotExporter writes a static rendition of a line graph.
type SnapshotExporter interface {
	// Export writes the snapshot for the given points. frequencies and levels
	// have the same length; peak may be unavailable.
	Export(w io.Writer, title string, frequencies, levels []float64, peak domain.PeakEstimate) error
}
