package spectrum

import (
	"math"
	"math/cmplx"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// Spectrum is one analysed block, ready for the line buffers and the peak tracker.
type Spectrum struct {
	// Raw holds the bins of the primary line: Size/2+1 one-sided bins, or Size
	// two-sided bins in complex mode.
	Raw []complex128

	// Left and Right are per-bin linear magnitudes. Right is nil for one-line
	// configurations. RightNormalized marks a right line that is already in [0, 1].
	Left            []float64
	Right           []float64
	RightNormalized bool

	FFTSize    int
	SampleRate float64
	TwoSided   bool
}

// BinWidth returns the spacing of bins in Hz.
func (s *Spectrum) BinWidth() float64 {
	if s.FFTSize == 0 {
		return 0
	}
	return s.SampleRate / float64(s.FFTSize)
}

// ChannelAnalyzer combines stereo blocks according to the channel configuration
// and runs them through the transform backend. Buffers are reused between calls.
type ChannelAnalyzer struct {
	backend ports.TransformBackend

	a, b         []float64
	rawA, rawB   []complex128
	rawC         []complex128
	spec         Spectrum
	magA, magB   []float64
	phaseScratch []float64
}

// NewChannelAnalyzer creates an analyzer over the given backend.
func NewChannelAnalyzer(backend ports.TransformBackend) *ChannelAnalyzer {
	return &ChannelAnalyzer{backend: backend}
}

// Backend returns the transform backend in use.
func (c *ChannelAnalyzer) Backend() ports.TransformBackend {
	return c.backend
}

// Analyze transforms one block. left and right must hold backend.Size() frames.
// The returned spectrum aliases internal buffers and is valid until the next call.
func (c *ChannelAnalyzer) Analyze(cfg domain.ChannelConfiguration, left, right []float64, sampleRate float64) *Spectrum {
	n := c.backend.Size()
	c.a = grow(c.a, n)
	c.b = grow(c.b, n)

	s := &c.spec
	*s = Spectrum{FFTSize: n, SampleRate: sampleRate}

	switch cfg {
	case domain.ChannelComplex:
		c.rawA = c.backend.ForwardComplex(c.rawA, left[:n], right[:n])
		s.Raw = c.rawA
		s.TwoSided = true
		c.magA = magnitudes(c.magA, c.rawA)
		s.Left = c.magA
		return s

	case domain.ChannelLeft:
		copy(c.a, left[:n])
	case domain.ChannelRight:
		copy(c.a, right[:n])
	case domain.ChannelSide:
		for i := 0; i < n; i++ {
			c.a[i] = 0.5 * (left[i] - right[i])
		}
	case domain.ChannelSeparate:
		copy(c.a, left[:n])
		copy(c.b, right[:n])
	case domain.ChannelMidSide:
		for i := 0; i < n; i++ {
			c.a[i] = 0.5 * (left[i] + right[i])
			c.b[i] = 0.5 * (left[i] - right[i])
		}
	case domain.ChannelPhase:
		for i := 0; i < n; i++ {
			c.a[i] = 0.5 * (left[i] + right[i])
		}
	default:
		for i := 0; i < n; i++ {
			c.a[i] = 0.5 * (left[i] + right[i])
		}
	}

	c.rawA = c.backend.Forward(c.rawA, c.a)
	s.Raw = c.rawA
	c.magA = magnitudes(c.magA, c.rawA)
	s.Left = c.magA

	switch cfg {
	case domain.ChannelSeparate, domain.ChannelMidSide:
		c.rawB = c.backend.Forward(c.rawB, c.b)
		c.magB = magnitudes(c.magB, c.rawB)
		s.Right = c.magB
	case domain.ChannelPhase:
		s.Right = c.phase(left[:n], right[:n])
		s.RightNormalized = true
	}
	return s
}

// phase returns |arg(L·conj R)|/π per bin: 0 for in-phase content, 1 for opposite phase.
func (c *ChannelAnalyzer) phase(left, right []float64) []float64 {
	copy(c.a, left)
	c.rawC = c.backend.Forward(c.rawC, c.a)
	copy(c.b, right)
	c.rawB = c.backend.Forward(c.rawB, c.b)

	c.phaseScratch = grow(c.phaseScratch, len(c.rawC))
	for k := range c.rawC {
		c.phaseScratch[k] = math.Abs(cmplx.Phase(c.rawC[k]*cmplx.Conj(c.rawB[k]))) / math.Pi
	}
	return c.phaseScratch
}

func magnitudes(dst []float64, bins []complex128) []float64 {
	dst = grow(dst, len(bins))
	for i, b := range bins {
		dst[i] = cmplx.Abs(b)
	}
	return dst
}

func grow(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}
