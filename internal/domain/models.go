// Package domain contains the core value types of the analyzer.
// These types are independent of any infrastructure (UI toolkit, transform kernel, audio source).
package domain

import (
	"fmt"
	"image/color"
	"math"
)

// Decibel bounds accepted for the display floor and ceiling.
const (
	MinDecibels = -384.0
	MaxDecibels = 96.0
)

// LineGraphID identifies a line graph. None and Transform are sentinel values;
// Main and the auxiliary graphs index concrete line buffers.
type LineGraphID int

const (
	GraphNone      LineGraphID = -2
	GraphTransform LineGraphID = -1
	GraphMain      LineGraphID = 0
	GraphAux1      LineGraphID = 1

	// LineGraphCount is the number of concrete line graphs (Main plus auxiliaries).
	LineGraphCount = 2
)

// String returns the graph name.
func (g LineGraphID) String() string {
	switch g {
	case GraphNone:
		return "none"
	case GraphTransform:
		return "transform"
	case GraphMain:
		return "main"
	case GraphAux1:
		return "aux1"
	default:
		return fmt.Sprintf("aux%d", int(g))
	}
}

// Concrete reports whether g indexes a line buffer.
func (g LineGraphID) Concrete() bool {
	return g >= GraphMain && g < LineGraphCount
}

// ParseLineGraphID parses the textual form produced by String.
func ParseLineGraphID(s string) (LineGraphID, error) {
	switch s {
	case "none":
		return GraphNone, nil
	case "transform":
		return GraphTransform, nil
	case "main":
		return GraphMain, nil
	case "aux1":
		return GraphAux1, nil
	}
	return GraphNone, NewValidationError("tracking_graph", s, "unknown line graph")
}

// ViewScaling selects the horizontal frequency axis.
type ViewScaling int

const (
	ScalingLinear ViewScaling = iota
	ScalingLogarithmic
)

func (s ViewScaling) String() string {
	if s == ScalingLogarithmic {
		return "log"
	}
	return "linear"
}

// TransformKind describes how a transform backend produces its spectrum.
type TransformKind int

const (
	// TransformDiscrete is a bin-based discrete Fourier transform.
	TransformDiscrete TransformKind = iota
	// TransformResonator is a continuous resonator bank evaluated at the display frequencies.
	TransformResonator
)

func (k TransformKind) String() string {
	if k == TransformResonator {
		return "resonator"
	}
	return "fft"
}

// BinInterpolation is the policy used to resample transform bins onto display points.
type BinInterpolation int

const (
	InterpolationNone BinInterpolation = iota
	InterpolationLinear
	InterpolationLanczos
)

func (b BinInterpolation) String() string {
	switch b {
	case InterpolationLinear:
		return "linear"
	case InterpolationLanczos:
		return "lanczos"
	default:
		return "none"
	}
}

// DisplayMode selects between the line graph and the scrolling colour spectrum.
type DisplayMode int

const (
	DisplayLineGraph DisplayMode = iota
	DisplayColourSpectrum
)

func (m DisplayMode) String() string {
	if m == DisplayColourSpectrum {
		return "spectrogram"
	}
	return "line"
}

// ChannelConfiguration controls how the stereo input is combined before analysis.
type ChannelConfiguration int

const (
	ChannelLeft ChannelConfiguration = iota
	ChannelRight
	ChannelMerge
	ChannelSide
	ChannelPhase
	ChannelSeparate
	ChannelMidSide
	ChannelComplex
)

var channelNames = [...]string{"left", "right", "merge", "side", "phase", "separate", "midside", "complex"}

func (c ChannelConfiguration) String() string {
	if c < 0 || int(c) >= len(channelNames) {
		return "unknown"
	}
	return channelNames[c]
}

// ParseChannelConfiguration parses the textual form produced by String.
func ParseChannelConfiguration(s string) (ChannelConfiguration, error) {
	for i, name := range channelNames {
		if name == s {
			return ChannelConfiguration(i), nil
		}
	}
	return ChannelMerge, NewValidationError("channel", s, "unknown channel configuration")
}

// TwoLines reports whether the configuration fills both line magnitudes.
func (c ChannelConfiguration) TwoLines() bool {
	return c == ChannelSeparate || c == ChannelMidSide || c == ChannelPhase
}

// WindowKind names the analysis window applied before the transform.
type WindowKind string

const (
	WindowRectangular WindowKind = "rectangular"
	WindowHann        WindowKind = "hann"
	WindowHamming     WindowKind = "hamming"
	WindowBlackman    WindowKind = "blackman"
	WindowFlatTop     WindowKind = "flattop"
)

// FrequencyGraphDivision is a labelled grid line on the frequency axis.
type FrequencyGraphDivision struct {
	Frequency  float64
	Coordinate float64 // horizontal pixel position
	Label      string
}

// DecibelDivision is a labelled grid line on the amplitude axis.
type DecibelDivision struct {
	Decibels   float64
	Coordinate float64 // vertical pixel position, 0 at the top
	Label      string
}

// LineGraphResult is one display point of a line graph.
// Magnitudes are normalized to [0, 1] against the display dB floor and ceiling.
type LineGraphResult struct {
	LeftMagnitude  float32
	RightMagnitude float32
}

// ScrollState is the persistent state of the scrolling spectrogram.
type ScrollState struct {
	WriteIndex      int
	FramesPerUpdate float64
}

// StreamInfo describes the audio stream feeding the analyzer.
type StreamInfo struct {
	SampleRate float64
	Channels   int
}

// Nyquist returns half the sample rate.
func (s StreamInfo) Nyquist() float64 {
	return s.SampleRate * 0.5
}

// PeakEstimate is the result of peak tracking. All numeric fields are NaN
// when no peak could be resolved.
type PeakEstimate struct {
	FrequencyHz      float64
	IsMirrored       bool
	AmplitudeDb      float64
	DeviationHz      float64
	ScallopingLossDb float64
	ScreenX          float64
	ScreenY          float64
}

// UnavailablePeak returns an estimate that carries no information.
func UnavailablePeak() PeakEstimate {
	nan := math.NaN()
	return PeakEstimate{
		FrequencyHz:      nan,
		AmplitudeDb:      nan,
		DeviationHz:      nan,
		ScallopingLossDb: nan,
		ScreenX:          nan,
		ScreenY:          nan,
	}
}

// Available reports whether the estimate resolved a peak.
func (p PeakEstimate) Available() bool {
	return !math.IsNaN(p.FrequencyHz)
}

// Cursor is the pointer position over the graph, as fractions of width and height.
// Y is 0 at the top edge.
type Cursor struct {
	X, Y   float64
	Inside bool
}

// CursorReadout is the frequency and level under the pointer.
type CursorReadout struct {
	FrequencyHz float64
	IsMirrored  bool
	Decibels    float64
}

// Column is one vertical slice of the spectrogram, top row first.
type Column []color.RGBA
