// Package render draws the stacked frame-time bar chart and writes it as a PNG.
package render

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Turnsole/cookie-butter/src/analysis"
	"github.com/Turnsole/cookie-butter/src/types"
)

// ImageExt is the extension of the chart file.
const ImageExt = ".png"

var stageColors = map[string]drawing.Color{
	types.StageDraw:    drawing.ColorFromHex("7C4DFF"), // purple
	types.StagePrepare: drawing.ColorFromHex("00796B"), // green
	types.StageProcess: drawing.ColorFromHex("727272"), // grey
	types.StageExecute: drawing.ColorFromHex("FFA000"), // orange
}

// Options controls chart output.
type Options struct {
	Title string
	// OutDir defaults to the working directory.
	OutDir string
	// Footnote is stamped under the plot when non-empty (package, device).
	Footnote string
	// Width and Height override ComputeChartDimensions when both are set.
	Width, Height int
}

// FileName derives the chart file name from its title.
func FileName(title string) string { return title + ImageExt }

// BuildChart lays out one unit-wide bar per frame with stages stacked Draw, Prepare, Process, Execute.
func BuildChart(s analysis.StageSeries, sum analysis.Summary, opts Options) (chart.Chart, error) {
	n := s.Len()
	if n == 0 {
		return chart.Chart{}, analysis.ErrNoFrames
	}
	bottoms := make([]float64, n)
	var series []chart.Series
	for _, stage := range types.Stages {
		values := s.Stage(stage)
		col := stageColors[stage]
		series = append(series, stackedBars{
			Name:    stage,
			Style:   chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
			Bottoms: append([]float64(nil), bottoms...),
			Values:  values,
		})
		for i, v := range values {
			bottoms[i] += v
		}
	}

	maxTotal := 0.0
	for _, v := range bottoms {
		if v > maxTotal {
			maxTotal = v
		}
	}
	yMax := NiceAxisMax(maxTotal)
	var yTicks []chart.Tick
	for _, v := range BuildNumericTicks(0, yMax, 6) {
		if v > yMax {
			break
		}
		yTicks = append(yTicks, chart.Tick{Value: v, Label: FormatNumericTick(v)})
	}

	series = append(series, chart.AnnotationSeries{
		Annotations: []chart.Value2{{
			XValue: float64(n) * 0.1,
			YValue: maxTotal * 0.9,
			Label:  sum.Annotation(),
		}},
	})

	w, h := ComputeChartDimensions(n)
	if opts.Width > 0 && opts.Height > 0 {
		w, h = opts.Width, opts.Height
	}
	padBottom := 28
	if opts.Footnote != "" {
		padBottom += 18
	}
	ch := chart.Chart{
		Title:      opts.Title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: padBottom}},
		XAxis: chart.XAxis{
			Name:           "frame",
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(n)},
			ValueFormatter: intFormatter,
		},
		YAxis: chart.YAxis{
			Name:  "ms",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			Ticks: yTicks,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch, nil
}

func intFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprint(v)
}

// Render writes the chart as PNG to w.
func Render(w io.Writer, s analysis.StageSeries, sum analysis.Summary, opts Options) error {
	ch, err := BuildChart(s, sum, opts)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return errors.Wrap(err, "render chart")
	}
	if opts.Footnote == "" {
		_, err := w.Write(buf.Bytes())
		return errors.Wrap(err, "write chart")
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return errors.Wrap(err, "decode chart")
	}
	if err := png.Encode(w, drawFootnote(img, opts.Footnote)); err != nil {
		return errors.Wrap(err, "encode chart")
	}
	return nil
}

// SavePNG renders the chart to <OutDir>/<Title>.png, replacing any existing file, and returns the path.
func SavePNG(s analysis.StageSeries, sum analysis.Summary, opts Options) (string, error) {
	path := filepath.Join(opts.OutDir, FileName(opts.Title))
	var buf bytes.Buffer
	if err := Render(&buf, s, sum, opts); err != nil {
		return "", err
	}
	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return "", errors.Wrap(err, "create out dir")
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}
