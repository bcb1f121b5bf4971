// Package gonum implements the transform backend on gonum's fourier package.
package gonum

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/transform"
	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// Name is the registry name of this backend.
const Name = "gonum"

// gonum windows scale a sequence in place.
var windows = map[domain.WindowKind]func([]float64) []float64{
	domain.WindowRectangular: window.Rectangular,
	domain.WindowHann:        window.Hann,
	domain.WindowHamming:     window.Hamming,
	domain.WindowBlackman:    window.Blackman,
	domain.WindowFlatTop:     window.FlatTop,
}

// Backend is a discrete Fourier transform over gonum.
type Backend struct {
	logger *slog.Logger
	size   int
	coeffs transform.Coefficients

	real *fourier.FFT
	cmpl *fourier.CmplxFFT

	windowed []float64
	cbuf     []complex128
}

// New creates a backend of the given size and window.
func New(size int, kind domain.WindowKind, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Backend{
		logger: logger.With(slog.String("adapter", Name)),
		coeffs: transform.Coefficients{Kind: kind},
	}
	if err := b.Resize(size); err != nil {
		return nil, err
	}
	if err := b.SetWindow(kind); err != nil {
		return nil, err
	}
	return b, nil
}

// Name returns the backend name.
func (b *Backend) Name() string { return Name }

// Kind returns TransformDiscrete.
func (b *Backend) Kind() domain.TransformKind { return domain.TransformDiscrete }

// Size returns the transform length.
func (b *Backend) Size() int { return b.size }

// Resize changes the transform length, rebuilding the plans and the window.
func (b *Backend) Resize(n int) error {
	if err := transform.CheckSize(n); err != nil {
		return err
	}
	if n == b.size {
		return nil
	}
	b.size = n
	b.real = fourier.NewFFT(n)
	b.cmpl = fourier.NewCmplxFFT(n)
	b.windowed = make([]float64, n)
	b.cbuf = make([]complex128, n)
	if b.coeffs.Kind != "" {
		return b.SetWindow(b.coeffs.Kind)
	}
	return nil
}

// SetWindow selects the analysis window.
func (b *Backend) SetWindow(kind domain.WindowKind) error {
	fn, ok := windows[kind]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownWindow, kind)
	}
	ones := make([]float64, b.size)
	for i := range ones {
		ones[i] = 1
	}
	b.coeffs = transform.NewCoefficients(kind, fn(ones))
	b.logger.Debug("window configured",
		slog.String("window", string(kind)),
		slog.Int("size", b.size),
		slog.Float64("scalloping", b.coeffs.Scalloping))
	return nil
}

// Forward transforms Size() real samples into Size()/2+1 bins.
func (b *Backend) Forward(dst []complex128, samples []float64) []complex128 {
	copy(b.windowed, samples[:b.size])
	for i, w := range b.coeffs.Values {
		b.windowed[i] *= w
	}

	half := b.size/2 + 1
	dst = transform.Grow(dst, half)
	dst = b.real.Coefficients(dst, b.windowed)

	gain := complex(b.coeffs.Gain, 0)
	for k := range dst {
		dst[k] *= gain
	}
	dst[0] /= 2
	dst[half-1] /= 2
	return dst
}

// ForwardComplex transforms re + i·im into Size() bins.
func (b *Backend) ForwardComplex(dst []complex128, re, im []float64) []complex128 {
	for i, w := range b.coeffs.Values {
		b.cbuf[i] = complex(re[i]*w, im[i]*w)
	}
	dst = transform.Grow(dst, b.size)
	dst = b.cmpl.Coefficients(dst, b.cbuf)

	gain := complex(b.coeffs.Gain, 0)
	for k := range dst {
		dst[k] *= gain
	}
	return dst
}

// ScallopingLoss returns the amplitude ratio of a sinusoid at the fractional bin pos.
func (b *Backend) ScallopingLoss(pos float64) float64 {
	return b.coeffs.ScallopingLoss(pos)
}

var _ ports.TransformBackend = (*Backend)(nil)
