// Package spectrogram implements the scrolling colour spectrum: a gradient that
// maps magnitudes to colours and a circular column buffer fed at a smoothed rate.
package spectrogram

import (
	"image/color"

	"gonum.org/v1/gonum/floats"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// Ramp is a piecewise gradient: len(colours) == len(ratios)+1.
type Ramp struct {
	colours []color.RGBA
	ratios  []float64
}

// NewRamp builds a gradient from the stop colours and segment ratios. Ratios
// are normalized to sum to one; an all-zero set becomes equal segments.
func NewRamp(colours []color.RGBA, ratios []float64) *Ramp {
	r := &Ramp{}
	r.Set(colours, ratios)
	return r
}

// RampFromSettings builds the gradient [background, spectrum colours...].
func RampFromSettings(s domain.Settings) *Ramp {
	colours := make([]color.RGBA, 0, domain.SpectrumColourStops+1)
	colours = append(colours, s.Background)
	colours = append(colours, s.SpectrumColours[:]...)
	return NewRamp(colours, s.SpectrumRatios[:])
}

// Set replaces the stops. Missing ratios are treated as zero and extra ones dropped.
func (r *Ramp) Set(colours []color.RGBA, ratios []float64) {
	r.colours = append(r.colours[:0], colours...)
	if len(r.colours) == 0 {
		r.colours = append(r.colours, color.RGBA{A: 0xff})
	}

	n := len(r.colours) - 1
	r.ratios = r.ratios[:0]
	for i := 0; i < n; i++ {
		v := 0.0
		if i < len(ratios) && ratios[i] > 0 {
			v = ratios[i]
		}
		r.ratios = append(r.ratios, v)
	}
	if n == 0 {
		return
	}

	sum := floats.Sum(r.ratios)
	if sum <= 0 {
		for i := range r.ratios {
			r.ratios[i] = 1
		}
		sum = float64(n)
	}
	floats.Scale(1/sum, r.ratios)
}

// Stops returns the number of colour stops.
func (r *Ramp) Stops() int {
	return len(r.colours)
}

// ColourFor maps an intensity in [0, 1] to a colour.
func (r *Ramp) ColourFor(intensity float64) color.RGBA {
	last := len(r.colours) - 1
	if intensity <= 0 || last == 0 {
		return r.colours[0]
	}
	if intensity >= 1 {
		return r.colours[last]
	}

	var start float64
	for i, ratio := range r.ratios {
		end := start + ratio
		if ratio > 0 && intensity <= end {
			pos := (intensity - start) / ratio
			return blend(r.colours[i], r.colours[i+1], pos)
		}
		start = end
	}
	return r.colours[last]
}

// blend mixes two colours with 8-bit fixed-point weights, rounding each term half up.
func blend(a, b color.RGBA, pos float64) color.RGBA {
	f := uint32(pos*255 + 0.5)
	if f > 255 {
		f = 255
	}
	mix := func(x, y uint8) uint8 {
		return uint8(((uint32(x)*(255-f))+0x80)>>8 + ((uint32(y)*f)+0x80)>>8)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
