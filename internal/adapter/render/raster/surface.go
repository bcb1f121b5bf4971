// Package raster provides an in-memory render surface backed by an RGBA image.
// The fyne analyzer widget paints it through a canvas.Raster and the export
// service encodes it to PNG.
package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// Surface draws anti-aliased primitives into an RGBA image.
//
// Thread-safety: not safe for concurrent use. The owner serializes drawing and
// reading the image.
type Surface struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

var _ ports.RenderSurface = (*Surface)(nil)

// New creates a surface of the given size.
func New(width, height int) *Surface {
	s := &Surface{z: vector.NewRasterizer(0, 0)}
	s.Resize(width, height)
	return s
}

// Resize reallocates the image when the size changed. The content is lost.
func (s *Surface) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if s.img != nil && s.img.Rect.Dx() == width && s.img.Rect.Dy() == height {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Image returns the backing image. It is reused across frames.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Size implements ports.RenderSurface.
func (s *Surface) Size() (int, int) {
	return s.img.Rect.Dx(), s.img.Rect.Dy()
}

// Clear implements ports.RenderSurface.
func (s *Surface) Clear(c color.RGBA) {
	draw.Draw(s.img, s.img.Rect, image.NewUniform(color.NRGBA(c)), image.Point{}, draw.Src)
}

// DrawLines implements ports.RenderSurface.
func (s *Surface) DrawLines(segments []ports.Vertex, c color.RGBA, width float32) {
	if !s.begin() {
		return
	}
	for i := 0; i+1 < len(segments); i += 2 {
		s.segment(segments[i], segments[i+1], width)
	}
	s.paint(c)
}

// DrawLineStrip implements ports.RenderSurface.
func (s *Surface) DrawLineStrip(points []ports.Vertex, c color.RGBA, width float32) {
	if len(points) < 2 || !s.begin() {
		return
	}
	for i := 1; i < len(points); i++ {
		s.segment(points[i-1], points[i], width)
	}
	s.paint(c)
}

// DrawPoints implements ports.RenderSurface.
func (s *Surface) DrawPoints(points []ports.Vertex, c color.RGBA, size float32) {
	if len(points) == 0 || !s.begin() {
		return
	}
	h := max(size, 1) / 2
	for _, p := range points {
		s.rect(p.X-h, p.Y-h, p.X+h, p.Y+h)
	}
	s.paint(c)
}

// FillBelow implements ports.RenderSurface.
func (s *Surface) FillBelow(points []ports.Vertex, c color.RGBA) {
	if len(points) < 2 || !s.begin() {
		return
	}
	_, height := s.Size()
	bottom := float32(height)
	s.z.MoveTo(points[0].X, bottom)
	for _, p := range points {
		s.z.LineTo(p.X, clampf(p.Y, 0, bottom))
	}
	s.z.LineTo(points[len(points)-1].X, bottom)
	s.z.ClosePath()
	s.paint(c)
}

// BlitScrolling implements ports.RenderSurface.
func (s *Surface) BlitScrolling(img *image.RGBA, writeIndex int) {
	width, height := s.Size()
	srcW := img.Rect.Dx()
	if srcW == 0 || img.Rect.Dy() == 0 || width == 0 || height == 0 {
		return
	}
	writeIndex = ((writeIndex % srcW) + srcW) % srcW

	// the oldest columns [writeIndex, srcW) go left, the newest [0, writeIndex) right
	split := int(math.Round(float64(srcW-writeIndex) / float64(srcW) * float64(width)))
	oldest := image.Rect(img.Rect.Min.X+writeIndex, img.Rect.Min.Y, img.Rect.Max.X, img.Rect.Max.Y)
	newest := image.Rect(img.Rect.Min.X, img.Rect.Min.Y, img.Rect.Min.X+writeIndex, img.Rect.Max.Y)

	if split > 0 {
		draw.NearestNeighbor.Scale(s.img, image.Rect(0, 0, split, height), img, oldest, draw.Src, nil)
	}
	if split < width && !newest.Empty() {
		draw.NearestNeighbor.Scale(s.img, image.Rect(split, 0, width, height), img, newest, draw.Src, nil)
	}
}

// DrawText implements ports.RenderSurface.
func (s *Surface) DrawText(x, y float32, text string, c color.RGBA) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(color.NRGBA(c)),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(x), int(y)),
	}
	d.DrawString(text)
}

// begin resets the rasterizer and reports whether there is anything to draw on.
func (s *Surface) begin() bool {
	width, height := s.Size()
	if width == 0 || height == 0 {
		return false
	}
	s.z.Reset(width, height)
	return true
}

// paint composites the accumulated path with c. Colours are straight alpha.
func (s *Surface) paint(c color.RGBA) {
	s.z.Draw(s.img, s.img.Rect, image.NewUniform(color.NRGBA(c)), image.Point{})
}

// segment adds a quad of the given width around a -> b.
func (s *Surface) segment(a, b ports.Vertex, width float32) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := float32(math.Hypot(float64(dx), float64(dy)))
	half := max(width, 1) / 2
	if length < 1e-6 {
		s.rect(a.X-half, a.Y-half, a.X+half, a.Y+half)
		return
	}
	nx, ny := -dy/length*half, dx/length*half
	s.z.MoveTo(a.X+nx, a.Y+ny)
	s.z.LineTo(b.X+nx, b.Y+ny)
	s.z.LineTo(b.X-nx, b.Y-ny)
	s.z.LineTo(a.X-nx, a.Y-ny)
	s.z.ClosePath()
}

func (s *Surface) rect(x0, y0, x1, y1 float32) {
	s.z.MoveTo(x0, y0)
	s.z.LineTo(x1, y0)
	s.z.LineTo(x1, y1)
	s.z.LineTo(x0, y1)
	s.z.ClosePath()
}

func clampf(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
