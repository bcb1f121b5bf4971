// Package spectrum holds the signal-to-screen core: frequency axis mapping,
// decayed line graphs and peak tracking. Everything here runs on the render
// goroutine and never returns errors; bad input is clamped.
package spectrum

import (
	"math"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// DefaultMinLogFrequency is the left edge of a fully zoomed-out logarithmic axis.
const DefaultMinLogFrequency = 10.0

// Mapper converts between horizontal screen fractions and frequencies.
// It is a value type; copying it is cheap and comparing two mappers tells
// whether derived state (grids, mapped frequency tables) must be rebuilt.
type Mapper struct {
	ViewLeft        float64
	ViewRight       float64
	Scaling         domain.ViewScaling
	Complex         bool
	SampleRate      float64
	MinLogFrequency float64
}

// NewMapper builds a mapper from the current settings and stream format.
func NewMapper(s domain.Settings, info domain.StreamInfo) Mapper {
	return Mapper{
		ViewLeft:        s.ViewLeft,
		ViewRight:       s.ViewRight,
		Scaling:         s.Scaling,
		Complex:         s.Channel == domain.ChannelComplex,
		SampleRate:      info.SampleRate,
		MinLogFrequency: DefaultMinLogFrequency,
	}
}

func (m Mapper) nyquist() float64 {
	return m.SampleRate * 0.5
}

func (m Mapper) minLog() float64 {
	if m.MinLogFrequency > 0 {
		return m.MinLogFrequency
	}
	return DefaultMinLogFrequency
}

// FractionToFrequency maps a fraction of the visible width to a frequency.
// In complex mode the right half of the screen shows the mirrored spectrum; the
// returned frequency is then the folded value and mirrored is true.
func (m Mapper) FractionToFrequency(fraction float64) (hz float64, mirrored bool) {
	arg := m.ViewLeft + (m.ViewRight-m.ViewLeft)*fraction
	if m.Complex {
		if arg < 0.5 {
			arg *= 2
		} else {
			arg = 1 - 2*(arg-0.5)
			mirrored = true
		}
	}

	nyq := m.nyquist()
	if m.Scaling == domain.ScalingLogarithmic {
		lo := m.minLog()
		return lo * math.Pow(nyq/lo, arg), mirrored
	}
	return arg * nyq, mirrored
}

// FrequencyToFraction is the inverse of FractionToFrequency. The result lies
// outside [0, 1] for frequencies outside the visible view.
func (m Mapper) FrequencyToFraction(hz float64, mirrored bool) float64 {
	nyq := m.nyquist()
	var arg float64
	if m.Scaling == domain.ScalingLogarithmic {
		lo := m.minLog()
		arg = math.Log(hz/lo) / math.Log(nyq/lo)
	} else {
		arg = hz / nyq
	}

	if m.Complex {
		if mirrored {
			arg = 1 - arg*0.5
		} else {
			arg *= 0.5
		}
	}
	return (arg - m.ViewLeft) / (m.ViewRight - m.ViewLeft)
}

// TwoSided maps a screen fraction to a frequency on the full [0, sampleRate)
// axis: mirrored frequencies f are reported as sampleRate - f.
func (m Mapper) TwoSided(fraction float64) float64 {
	hz, mirrored := m.FractionToFrequency(fraction)
	if mirrored {
		return m.SampleRate - hz
	}
	return hz
}

// Valid reports whether the mapper can produce finite frequencies.
func (m Mapper) Valid() bool {
	return m.SampleRate > 0 && !math.IsInf(m.SampleRate, 0) && m.ViewRight > m.ViewLeft
}
