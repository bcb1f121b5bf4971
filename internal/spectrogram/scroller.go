package spectrogram

import (
	"image"
	"image/color"
	"math"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// FrameSource provides analysis frames for the scroller.
type FrameSource interface {
	// Available returns how many frames are ready.
	Available() int
	// NextFrame produces the next frame as normalized magnitudes, lowest
	// frequency first. ok is false when the source ran dry.
	NextFrame() (magnitudes []float32, ok bool)
}

// Scroller is a circular image of spectrogram columns. Column x of the image
// holds one analysis frame; row 0 is the highest frequency.
type Scroller struct {
	img   *image.RGBA
	state domain.ScrollState

	ramp      *Ramp
	column    domain.Column
	frozen    bool
	smoothing float64
}

// NewScroller creates a scroller of the given size painted with the ramp's first colour.
func NewScroller(width, height int, ramp *Ramp) *Scroller {
	s := &Scroller{ramp: ramp}
	s.Resize(width, height)
	return s
}

// Resize reallocates the image. History is discarded.
func (s *Scroller) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	s.column = make(domain.Column, height)
	s.state.WriteIndex = 0
	s.Clear()
}

// Clear paints the image with the lowest gradient colour.
func (s *Scroller) Clear() {
	bg := s.ramp.ColourFor(0)
	pix := s.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
}

// SetRamp replaces the gradient used for new columns.
func (s *Scroller) SetRamp(r *Ramp) {
	s.ramp = r
}

// SetFrozen pauses or resumes scrolling.
func (s *Scroller) SetFrozen(frozen bool) {
	s.frozen = frozen
}

// Frozen reports whether scrolling is paused.
func (s *Scroller) Frozen() bool {
	return s.frozen
}

// Image returns the column image. Column WriteIndex is the oldest.
func (s *Scroller) Image() *image.RGBA {
	return s.img
}

// State returns the write position and the smoothed frames-per-update estimate.
func (s *Scroller) State() domain.ScrollState {
	return s.state
}

// Size returns the image dimensions.
func (s *Scroller) Size() (width, height int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// SetSmoothing sets the drain-rate filter coefficient in [0, 1). Zero drains
// every available frame on each tick.
func (s *Scroller) SetSmoothing(smoothing float64) {
	s.smoothing = math.Min(math.Max(smoothing, 0), domain.MaxUpdateSmoothing)
}

// Advance drains frames from src into new columns and returns how many columns
// were written. dt is the time since the previous tick; frames carry their own
// duration, so it only gates negative or non-finite steps.
func (s *Scroller) Advance(dt float64, src FrameSource) int {
	width, _ := s.Size()
	if s.frozen || width == 0 || src == nil || !(dt >= 0) || math.IsInf(dt, 0) {
		return 0
	}
	smoothing := s.smoothing

	available := src.Available()
	s.state.FramesPerUpdate = float64(available) + smoothing*(s.state.FramesPerUpdate-float64(available))

	budget := available
	if smoothing != 0 {
		if limit := int(math.Round(s.state.FramesPerUpdate)); limit < budget {
			budget = limit
		}
	}

	written := 0
	for ; written < budget; written++ {
		frame, ok := src.NextFrame()
		if !ok {
			break
		}
		s.writeColumn(frame)
	}
	return written
}

func (s *Scroller) writeColumn(frame []float32) {
	height := len(s.column)
	for y := 0; y < height; y++ {
		var v float64
		if len(frame) > 0 {
			// row 0 is the top of the image
			idx := (height - 1 - y) * len(frame) / height
			v = float64(frame[idx])
		}
		s.column[y] = s.ramp.ColourFor(v)
	}

	x := s.state.WriteIndex
	stride := s.img.Stride
	for y, c := range s.column {
		o := y*stride + x*4
		s.img.Pix[o], s.img.Pix[o+1], s.img.Pix[o+2], s.img.Pix[o+3] = c.R, c.G, c.B, c.A
	}

	width, _ := s.Size()
	s.state.WriteIndex = (x + 1) % width
}

// Column returns a copy of column x of the image, top row first.
func (s *Scroller) Column(x int) domain.Column {
	_, height := s.Size()
	out := make(domain.Column, height)
	for y := 0; y < height; y++ {
		out[y] = s.img.RGBAAt(x, y)
	}
	return out
}

// Unrolled returns a copy of the image with the oldest column on the left.
func (s *Scroller) Unrolled() *image.RGBA {
	width, height := s.Size()
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := s.img.Pix[y*s.img.Stride : y*s.img.Stride+width*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+width*4]
		split := s.state.WriteIndex * 4
		n := copy(dst, row[split:])
		copy(dst[n:], row[:split])
	}
	return out
}

// Background returns the colour a cleared image is painted with.
func (s *Scroller) Background() color.RGBA {
	return s.ramp.ColourFor(0)
}
