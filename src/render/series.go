package render

import (
	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
)

// stackedBars is one layer of a stacked bar chart: bar i spans [i, i+1) on the x axis
// and [Bottoms[i], Bottoms[i]+Values[i]] on the y axis.
type stackedBars struct {
	Name    string
	Style   chart.Style
	Bottoms []float64
	Values  []float64
}

func (b stackedBars) GetName() string           { return b.Name }
func (b stackedBars) GetStyle() chart.Style     { return b.Style }
func (b stackedBars) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

// Len and GetValues let go-chart size the axes from the bar tops.
func (b stackedBars) Len() int { return len(b.Values) }

func (b stackedBars) GetValues(i int) (float64, float64) {
	return float64(i), b.Bottoms[i] + b.Values[i]
}

func (b stackedBars) Validate() error {
	if len(b.Values) == 0 {
		return errors.Errorf("%s: no values", b.Name)
	}
	if len(b.Bottoms) != len(b.Values) {
		return errors.Errorf("%s: %d bottoms for %d values", b.Name, len(b.Bottoms), len(b.Values))
	}
	return nil
}

func (b stackedBars) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := b.Style.InheritFrom(defaults)
	for i, v := range b.Values {
		if v <= 0 {
			continue
		}
		left := canvasBox.Left + xrange.Translate(float64(i))
		right := canvasBox.Left + xrange.Translate(float64(i+1))
		if right <= left {
			right = left + 1
		}
		bottom := canvasBox.Bottom - yrange.Translate(b.Bottoms[i])
		top := canvasBox.Bottom - yrange.Translate(b.Bottoms[i]+v)
		if top >= bottom {
			top = bottom - 1
		}
		chart.Draw.Box(r, chart.Box{Top: top, Left: left, Right: right, Bottom: bottom}, style)
	}
}
