package domain

import (
	"image/color"
	"math"
)

// Settings limits.
const (
	MinBlobSizeMs        = 0.5
	MaxBlobSizeMs        = 1000.0
	MaxUpdateSmoothing   = 0.996
	MinReferenceTuning   = 220.0
	MaxReferenceTuning   = 880.0
	MinWindowSize        = 16
	MaxWindowSize        = 1 << 15
	SpectrumColourStops  = 5
	MaxLineDecayDbPerSec = 10000.0
)

// LineStyle holds the colours of one line graph.
type LineStyle struct {
	Left  color.RGBA `json:"left"`
	Right color.RGBA `json:"right"`
	// DecayDbPerSec is how fast a held peak falls. Zero holds forever.
	DecayDbPerSec float64 `json:"decay_db_per_sec"`
}

// Settings is the configuration surface read by the analyzer on every tick.
type Settings struct {
	// ViewLeft and ViewRight select the visible slice of the frequency axis, 0 <= left < right <= 1.
	ViewLeft  float64 `json:"view_left"`
	ViewRight float64 `json:"view_right"`

	Scaling       ViewScaling          `json:"scaling"`
	Channel       ChannelConfiguration `json:"channel"`
	Display       DisplayMode          `json:"display"`
	Interpolation BinInterpolation     `json:"interpolation"`
	TrackingGraph LineGraphID          `json:"tracking_graph"`

	LowDb  float64 `json:"low_db"`
	HighDb float64 `json:"high_db"`

	WindowSize int        `json:"window_size"`
	Window     WindowKind `json:"window"`

	// BlobSizeMs is the hop between spectrogram frames.
	BlobSizeMs float64 `json:"blob_size_ms"`
	// UpdateSmoothing low-pass filters the spectrogram frames drained per tick.
	UpdateSmoothing float64 `json:"update_smoothing"`

	Lines [LineGraphCount]LineStyle `json:"lines"`

	Background      color.RGBA                      `json:"background"`
	Grid            color.RGBA                      `json:"grid"`
	SpectrumColours [SpectrumColourStops]color.RGBA `json:"spectrum_colours"`
	SpectrumRatios  [SpectrumColourStops]float64    `json:"spectrum_ratios"`

	// PctForDivision is the minimum gap between frequency grid lines as a fraction of the width.
	PctForDivision float64 `json:"pct_for_division"`
	// FloodFillAlpha fills the area below the main line when greater than zero.
	FloodFillAlpha float64 `json:"flood_fill_alpha"`
	PrimitiveSize  float64 `json:"primitive_size"`

	ReferenceTuning float64 `json:"reference_tuning"`
	Diagnostics     bool    `json:"diagnostics"`
	Frozen          bool    `json:"frozen"`
}

// DefaultSettings returns the factory configuration.
func DefaultSettings() Settings {
	return Settings{
		ViewLeft:        0,
		ViewRight:       1,
		Scaling:         ScalingLogarithmic,
		Channel:         ChannelMerge,
		Display:         DisplayLineGraph,
		Interpolation:   InterpolationLanczos,
		TrackingGraph:   GraphTransform,
		LowDb:           -120,
		HighDb:          6,
		WindowSize:      4096,
		Window:          WindowHann,
		BlobSizeMs:      20,
		UpdateSmoothing: 0.8,
		Lines: [LineGraphCount]LineStyle{
			{Left: color.RGBA{R: 0xff, G: 0xd8, B: 0x3d, A: 0xff}, Right: color.RGBA{R: 0x3d, G: 0xd8, B: 0xff, A: 0xff}, DecayDbPerSec: 60},
			{Left: color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xc0}, Right: color.RGBA{R: 0x60, G: 0x60, B: 0x90, A: 0xc0}, DecayDbPerSec: 6},
		},
		Background: color.RGBA{A: 0xff},
		Grid:       color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff},
		SpectrumColours: [SpectrumColourStops]color.RGBA{
			{R: 0x00, G: 0x00, B: 0x60, A: 0xff},
			{R: 0x60, G: 0x00, B: 0x90, A: 0xff},
			{R: 0xd0, G: 0x20, B: 0x20, A: 0xff},
			{R: 0xff, G: 0xa0, B: 0x00, A: 0xff},
			{R: 0xff, G: 0xff, B: 0xe0, A: 0xff},
		},
		SpectrumRatios:  [SpectrumColourStops]float64{0.1, 0.2, 0.2, 0.25, 0.25},
		PctForDivision:  0.1,
		FloodFillAlpha:  0.15,
		PrimitiveSize:   1,
		ReferenceTuning: 440,
	}
}

// Validate checks every field and returns the first violation.
func (s Settings) Validate() error {
	if !(s.ViewLeft >= 0 && s.ViewLeft < s.ViewRight && s.ViewRight <= 1) {
		return NewValidationError("view", [2]float64{s.ViewLeft, s.ViewRight}, ErrInvalidViewRect.Error())
	}
	if !(s.LowDb >= MinDecibels && s.HighDb <= MaxDecibels && s.LowDb < s.HighDb) {
		return NewValidationError("db_range", [2]float64{s.LowDb, s.HighDb}, ErrInvalidDbRange.Error())
	}
	if s.WindowSize < MinWindowSize || s.WindowSize > MaxWindowSize || s.WindowSize&(s.WindowSize-1) != 0 {
		return NewValidationError("window_size", s.WindowSize, ErrInvalidWindowSize.Error())
	}
	switch s.Window {
	case WindowRectangular, WindowHann, WindowHamming, WindowBlackman, WindowFlatTop:
	default:
		return NewValidationError("window", s.Window, "unknown window function")
	}
	if s.Channel < ChannelLeft || s.Channel > ChannelComplex {
		return NewValidationError("channel", s.Channel, "unknown channel configuration")
	}
	if s.Interpolation < InterpolationNone || s.Interpolation > InterpolationLanczos {
		return NewValidationError("interpolation", s.Interpolation, "unknown interpolation")
	}
	if s.TrackingGraph < GraphNone || s.TrackingGraph >= LineGraphCount {
		return NewValidationError("tracking_graph", s.TrackingGraph, "unknown line graph")
	}
	if s.BlobSizeMs < MinBlobSizeMs || s.BlobSizeMs > MaxBlobSizeMs {
		return NewValidationError("blob_size_ms", s.BlobSizeMs, "must be between 0.5 and 1000")
	}
	if s.UpdateSmoothing < 0 || s.UpdateSmoothing > MaxUpdateSmoothing {
		return NewValidationError("update_smoothing", s.UpdateSmoothing, "must be between 0 and 0.996")
	}
	for i, l := range s.Lines {
		if l.DecayDbPerSec < 0 || l.DecayDbPerSec > MaxLineDecayDbPerSec || math.IsNaN(l.DecayDbPerSec) {
			return NewValidationError("lines.decay", i, "decay out of range")
		}
	}
	for _, r := range s.SpectrumRatios {
		if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return NewValidationError("spectrum_ratios", s.SpectrumRatios, "ratios must be finite and non-negative")
		}
	}
	if s.PctForDivision <= 0 || s.PctForDivision > 1 {
		return NewValidationError("pct_for_division", s.PctForDivision, "must be in (0, 1]")
	}
	if s.FloodFillAlpha < 0 || s.FloodFillAlpha > 1 {
		return NewValidationError("flood_fill_alpha", s.FloodFillAlpha, "must be in [0, 1]")
	}
	if s.ReferenceTuning < MinReferenceTuning || s.ReferenceTuning > MaxReferenceTuning {
		return NewValidationError("reference_tuning", s.ReferenceTuning, "must be between 220 and 880")
	}
	return nil
}
