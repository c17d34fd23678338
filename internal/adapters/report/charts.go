package report

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"traffic-signal-sim/internal/domain"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Metric names one of the per-experiment values that gets a chart.
type Metric string

const (
	MetricWaitTimes      Metric = "wait_times"
	MetricThroughput     Metric = "throughput"
	MetricVehiclesServed Metric = "vehicles_served"
)

// Metrics lists every chart in the order they are written.
var Metrics = []Metric{MetricWaitTimes, MetricThroughput, MetricVehiclesServed}

// Format is the image encoding of a chart; its value is the file extension.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ContentType is the HTTP media type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// ParseFormat accepts "svg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("unknown chart format %q (want svg or png)", s)
}

type chartSpec struct {
	title  string
	yLabel string
	value  func(domain.ExperimentResult) float64
}

var chartSpecs = map[Metric]chartSpec{
	MetricWaitTimes: {
		title:  "Average Wait Time per Experiment",
		yLabel: "Average Wait Time (s)",
		value:  func(r domain.ExperimentResult) float64 { return round2(r.AvgWait) },
	},
	MetricThroughput: {
		title:  "Throughput per Experiment",
		yLabel: "Throughput (vehicles/sec)",
		value:  func(r domain.ExperimentResult) float64 { return round2(r.Throughput) },
	},
	MetricVehiclesServed: {
		title:  "Vehicles Served per Experiment",
		yLabel: "Vehicles Served (per hour)",
		value:  func(r domain.ExperimentResult) float64 { return float64(r.VehiclesServed) },
	},
}

// ParseMetric accepts the chart names used in file names and URLs.
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if _, ok := chartSpecs[m]; !ok {
		return "", fmt.Errorf("unknown chart metric %q", s)
	}
	return m, nil
}

// FileName is the file the chart for m is saved under.
func (m Metric) FileName(f Format) string {
	return string(m) + "_comparison." + string(f)
}

// An 8x5 inch figure, as the comparison charts have always been drawn.
const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 5 * vg.Inch
)

var barColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}

// barWidth shrinks bars so a full batch still fits the plot area.
func barWidth(n int) vg.Length {
	w := 6 * vg.Inch / vg.Length(n) * 0.8
	if w > 40 {
		return 40
	}
	return w
}

// newChart builds the bar chart of m, one bar per experiment labelled "Exp N".
func newChart(m Metric, results []domain.ExperimentResult) (*plot.Plot, error) {
	spec, ok := chartSpecs[m]
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", m)
	}

	p := plot.New()
	p.Title.Text = spec.title
	p.Y.Label.Text = spec.yLabel
	p.Y.Min = 0

	if len(results) == 0 {
		return p, nil
	}

	values := make(plotter.Values, len(results))
	names := make([]string, len(results))
	for i, r := range results {
		values[i] = spec.value(r)
		names[i] = fmt.Sprintf("Exp %d", i+1)
	}

	bars, err := plotter.NewBarChart(values, barWidth(len(results)))
	if err != nil {
		return nil, fmt.Errorf("bars: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

// RenderChart encodes the chart of m in format f.
func RenderChart(w io.Writer, m Metric, f Format, results []domain.ExperimentResult) error {
	if _, err := ParseFormat(string(f)); err != nil {
		return fmt.Errorf("render chart %s: %w", m, err)
	}

	p, err := newChart(m, results)
	if err != nil {
		return fmt.Errorf("render chart %s: %w", m, err)
	}

	wt, err := p.WriterTo(chartWidth, chartHeight, string(f))
	if err != nil {
		return fmt.Errorf("render chart %s: %w", m, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("render chart %s: %w", m, err)
	}
	return nil
}

// WriteCharts renders every metric into dir, creating it if needed,
// and returns the written paths.
func WriteCharts(dir string, f Format, results []domain.ExperimentResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("write charts: create %q: %w", dir, err)
	}

	paths := make([]string, 0, len(Metrics))
	for _, m := range Metrics {
		path := filepath.Join(dir, m.FileName(f))
		if err := writeChartFile(path, m, f, results); err != nil {
			return nil, fmt.Errorf("write charts: %w", err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func writeChartFile(path string, m Metric, f Format, results []domain.ExperimentResult) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %q: %w", path, cerr)
		}
	}()

	return RenderChart(file, m, f, results)
}
