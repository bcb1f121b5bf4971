// Package godsp implements the transform backend on github.com/mjibson/go-dsp.
package godsp

import (
	"fmt"
	"log/slog"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/transform"
	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// Name is the registry name of this backend.
const Name = "godsp"

var windows = map[domain.WindowKind]func(int) []float64{
	domain.WindowRectangular: window.Rectangular,
	domain.WindowHann:        window.Hann,
	domain.WindowHamming:     window.Hamming,
	domain.WindowBlackman:    window.Blackman,
	domain.WindowFlatTop:     window.FlatTop,
}

// Backend is a discrete Fourier transform over go-dsp.
type Backend struct {
	logger *slog.Logger
	size   int
	coeffs transform.Coefficients

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

// Resize changes the transform length and recomputes the window.
func (b *Backend) Resize(n int) error {
	if err := transform.CheckSize(n); err != nil {
		return err
	}
	if n == b.size {
		return nil
	}
	b.size = n
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
	b.coeffs = transform.NewCoefficients(kind, fn(b.size))
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
	full := fft.FFTReal(b.windowed)

	half := b.size/2 + 1
	dst = transform.Grow(dst, half)
	gain := complex(b.coeffs.Gain, 0)
	for k := 0; k < half; k++ {
		dst[k] = full[k] * gain
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
	full := fft.FFT(b.cbuf)

	dst = transform.Grow(dst, b.size)
	gain := complex(b.coeffs.Gain, 0)
	for k := range full {
		dst[k] = full[k] * gain
	}
	return dst
}

// ScallopingLoss returns the amplitude ratio of a sinusoid at the fractional bin pos.
func (b *Backend) ScallopingLoss(pos float64) float64 {
	return b.coeffs.ScallopingLoss(pos)
}

var _ ports.TransformBackend = (*Backend)(nil)
