// Package echarts writes line graph snapshots as standalone HTML charts.
package echarts

import (
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
	"github.com/tejashwikalptaru/gospectra/internal/spectrum"
)

// Exporter renders a snapshot with go-echarts.
type Exporter struct {
	logger *slog.Logger
	width  string
	height string
}

var _ ports.SnapshotExporter = (*Exporter)(nil)

// NewExporter creates an exporter producing charts of the given CSS size.
func NewExporter(logger *slog.Logger) *Exporter {
	return &Exporter{
		logger: logger.With(slog.String("adapter", "echarts")),
		width:  "1200px",
		height: "600px",
	}
}

// Export implements ports.SnapshotExporter.
func (e *Exporter) Export(w io.Writer, title string, frequencies, levels []float64, peak domain.PeakEstimate) error {
	if len(frequencies) != len(levels) {
		return domain.NewValidationError("levels", len(levels), "must match the number of frequencies")
	}
	if len(frequencies) == 0 {
		return domain.ErrEmptyStream
	}

	axis := make([]string, len(frequencies))
	data := make([]opts.LineData, len(levels))
	for i, hz := range frequencies {
		axis[i] = formatHz(hz)
		data[i] = opts.LineData{Value: finite(levels[i])}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     e.width,
			Height:    e.height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle(peak),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hz"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "dB"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	series := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	}
	if peak.Available() {
		i := nearest(frequencies, peak.FrequencyHz)
		series = append(series, charts.WithMarkPointNameCoordItemOpts(opts.MarkPointNameCoordItem{
			Name:       "peak " + spectrum.FormatFrequency(math.Round(peak.FrequencyHz)) + " Hz",
			Coordinate: []interface{}{axis[i], finite(peak.AmplitudeDb)},
		}))
	}
	line.SetXAxis(axis).AddSeries("main", data, series...)

	if err := line.Render(w); err != nil {
		return domain.NewServiceError("SnapshotExporter", "export", "failed to render chart", err)
	}
	e.logger.Debug("snapshot exported", slog.String("title", title), slog.Int("points", len(frequencies)))
	return nil
}

func subtitle(peak domain.PeakEstimate) string {
	if !peak.Available() {
		return "no peak under the cursor"
	}
	s := "peak " + strconv.FormatFloat(peak.FrequencyHz, 'f', 2, 64) + " Hz, " +
		strconv.FormatFloat(peak.AmplitudeDb, 'f', 2, 64) + " dB"
	if peak.IsMirrored {
		s += " (mirrored)"
	}
	return s
}

func formatHz(hz float64) string {
	return strconv.FormatFloat(hz, 'f', 1, 64)
}

// finite keeps the chart JSON valid; echarts draws nothing for "-".
func finite(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return v
}

func nearest(freqs []float64, hz float64) int {
	best := 0
	for i, f := range freqs {
		if math.Abs(f-hz) < math.Abs(freqs[best]-hz) {
			best = i
		}
	}
	return best
}
