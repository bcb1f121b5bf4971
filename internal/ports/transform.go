package ports

import (
	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// TransformBackend turns windowed blocks of samples into complex spectra.
//
// Spectra are amplitude normalized: a full-scale sinusoid centred on a bin reads
// magnitude 1.0 in that bin. Implementations are not safe for concurrent use; the
// analyzer owns one backend per analysis goroutine.
type TransformBackend interface {
	// Name identifies the backend (e.g., "godsp", "gonum").
	Name() string

	// Kind reports whether the spectrum is discrete-bin or resonator based.
	Kind() domain.TransformKind

	// Size returns the transform length in samples.
	Size() int

	// Resize changes the transform length. n must be a power of two.
	Resize(n int) error

	// SetWindow selects the analysis window.
	SetWindow(kind domain.WindowKind) error

	// Forward transforms Size() real samples into Size()/2+1 bins written to dst.
	// dst is grown when too short and returned.
	Forward(dst []complex128, samples []float64) []complex128

	// ForwardComplex transforms the complex signal re + i·im into Size() bins.
	ForwardComplex(dst []complex128, re, im []float64) []complex128

	// ScallopingLoss returns the linear amplitude ratio (0, 1] a sinusoid at the
	// fractional bin position pos keeps under the current window. A sinusoid on a
	// bin centre keeps 1; half way between two bins suffers the most.
	ScallopingLoss(pos float64) float64
}
