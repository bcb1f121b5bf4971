package domain

import (
	"image"
	"image/color"
	"time"
)

// Diagnostics are stream and timing counters shown when Settings.Diagnostics is on.
type Diagnostics struct {
	FramesWritten   uint64
	FramesDropped   uint64
	FramesPerUpdate float64
	TickDuration    time.Duration
	Ticks           uint64
}

// Frame is everything the render layer needs to draw one tick. It is a copy;
// the analyzer keeps mutating its own state after handing it out.
type Frame struct {
	Width, Height int
	Display       DisplayMode
	Channel       ChannelConfiguration
	Frozen        bool

	// Lines holds the normalized magnitudes of every line graph, one entry per
	// display point.
	Lines      [LineGraphCount][]LineGraphResult
	LineStyles [LineGraphCount]LineStyle

	// Divisions lie along the frequency axis: horizontal in line graph mode,
	// vertical (from the bottom) in colour spectrum mode.
	Divisions         []FrequencyGraphDivision
	MirroredDivisions []FrequencyGraphDivision
	DecibelDivisions  []DecibelDivision

	// Spectrogram is the circular column image; Scroll.WriteIndex is its oldest column.
	Spectrogram *image.RGBA
	Scroll      ScrollState

	Cursor          Cursor
	Readout         CursorReadout
	Peak            PeakEstimate
	ReferenceTuning float64

	Background     color.RGBA
	Grid           color.RGBA
	FloodFillAlpha float64
	PrimitiveSize  float64

	ShowDiagnostics bool
	Diagnostics     Diagnostics
}
