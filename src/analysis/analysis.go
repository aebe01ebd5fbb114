// Package analysis turns collected gfxinfo rows into per-stage series and frame-time statistics.
//
// Stage selection mirrors how the profile table evolved across platform releases:
//   - 3 columns (Draw Process Execute): Prepare did not exist yet and is reported as zeros.
//   - 4+ columns: Draw is the first column, Prepare the second, Process and Execute the last two.
//     Columns between Prepare and Process are ignored and do not count toward the frame total.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/Turnsole/cookie-butter/src/types"
)

// ErrNoFrames is returned when statistics are requested for an empty collection.
var ErrNoFrames = errors.New("no frames")

// StageSeries holds one slice per rendering stage, indexed by frame.
type StageSeries struct {
	Draw    []float64
	Prepare []float64
	Process []float64
	Execute []float64
}

// Len returns the number of frames in the series.
func (s StageSeries) Len() int { return len(s.Draw) }

// Stage returns the series for a stage name from types.Stages.
func (s StageSeries) Stage(name string) []float64 {
	switch name {
	case types.StageDraw:
		return s.Draw
	case types.StagePrepare:
		return s.Prepare
	case types.StageProcess:
		return s.Process
	case types.StageExecute:
		return s.Execute
	}
	return nil
}

// ExtractStages splits a collection into stage series using the column policy above.
func ExtractStages(frames types.FrameCollection) (StageSeries, error) {
	n := len(frames)
	s := StageSeries{
		Draw:    make([]float64, n),
		Prepare: make([]float64, n),
		Process: make([]float64, n),
		Execute: make([]float64, n),
	}
	width := frames.Width()
	for i, f := range frames {
		if len(f) != width {
			return StageSeries{}, errors.Errorf("frame %d has %d columns, expected %d", i, len(f), width)
		}
		switch {
		case width == 3:
			s.Draw[i], s.Process[i], s.Execute[i] = f[0], f[1], f[2]
		case width >= 4:
			s.Draw[i], s.Prepare[i], s.Process[i], s.Execute[i] = f[0], f[1], f[width-2], f[width-1]
		default:
			return StageSeries{}, errors.Errorf("frame %d has %d columns, need at least 3", i, width)
		}
	}
	return s, nil
}

// Totals returns Draw+Prepare+Process+Execute per frame.
func Totals(s StageSeries) []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = s.Draw[i] + s.Prepare[i] + s.Process[i] + s.Execute[i]
	}
	return out
}

// Median returns the middle value; for even counts the midpoint of the two middle values.
func Median(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	cp := append([]float64(nil), a...)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 0 {
		return (cp[mid-1] + cp[mid]) / 2
	}
	return cp[mid]
}

// Average returns the arithmetic mean (0 for empty input).
func Average(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range a {
		sum += v
	}
	return sum / float64(len(a))
}

// Percentile uses the nearest-rank method on a sorted copy.
func Percentile(a []float64, p float64) float64 {
	if len(a) == 0 {
		return 0
	}
	cp := append([]float64(nil), a...)
	sort.Float64s(cp)
	if p <= 0 {
		return cp[0]
	}
	if p >= 100 {
		return cp[len(cp)-1]
	}
	idx := int(math.Ceil(p/100*float64(len(cp)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(cp) {
		idx = len(cp) - 1
	}
	return cp[idx]
}

// FrameBudget is the time available to one frame at fps, in ms.
func FrameBudget(fps float64) float64 { return 1000.0 / fps }

// DroppedFrames counts frames whose total strictly exceeds the frame budget at fps.
func DroppedFrames(totals []float64, fps float64) int {
	budget := FrameBudget(fps)
	n := 0
	for _, v := range totals {
		if v > budget {
			n++
		}
	}
	return n
}

// Summary is the set of statistics shown on the chart and console.
type Summary struct {
	Frames        int     `json:"frames"`
	MedianMs      float64 `json:"median_ms"`
	AverageMs     float64 `json:"average_ms"`
	P90Ms         float64 `json:"p90_ms"`
	P95Ms         float64 `json:"p95_ms"`
	P99Ms         float64 `json:"p99_ms"`
	MaxMs         float64 `json:"max_ms"`
	RefreshRate   string  `json:"refresh_rate"`
	FPS           float64 `json:"fps"`
	FrameBudgetMs float64 `json:"frame_budget_ms"`
	DroppedFrames int     `json:"estimated_dropped_frames"`
	DroppedPct    float64 `json:"estimated_dropped_pct"`
}

// Summarize computes the statistics for a stage series at the given refresh rate token.
func Summarize(s StageSeries, refreshRate string) (Summary, error) {
	if s.Len() == 0 {
		return Summary{}, ErrNoFrames
	}
	fps, err := types.ParseRefreshRate(refreshRate)
	if err != nil {
		return Summary{}, err
	}
	totals := Totals(s)
	sum := Summary{
		Frames:        len(totals),
		MedianMs:      Median(totals),
		AverageMs:     Average(totals),
		P90Ms:         Percentile(totals, 90),
		P95Ms:         Percentile(totals, 95),
		P99Ms:         Percentile(totals, 99),
		MaxMs:         Percentile(totals, 100),
		RefreshRate:   refreshRate,
		FPS:           fps,
		FrameBudgetMs: FrameBudget(fps),
		DroppedFrames: DroppedFrames(totals, fps),
	}
	sum.DroppedPct = float64(sum.DroppedFrames) / float64(sum.Frames) * 100
	return sum, nil
}

// RoundedMedian is the median rounded to the nearest whole millisecond.
func (s Summary) RoundedMedian() int64 { return int64(math.Round(s.MedianMs)) }

// RoundedAverage is the average rounded to the nearest whole millisecond.
func (s Summary) RoundedAverage() int64 { return int64(math.Round(s.AverageMs)) }

// Annotation is the text drawn inside the chart.
func (s Summary) Annotation() string {
	return fmt.Sprintf("Median: %dms  Average: %dms  Refresh: %s fps  Est. dropped: %d",
		s.RoundedMedian(), s.RoundedAverage(), s.RefreshRate, s.DroppedFrames)
}

// Line is the one-line console summary.
func (s Summary) Line() string {
	return fmt.Sprintf("frames=%d median=%dms average=%dms p90=%.1fms p99=%.1fms max=%.1fms refresh=%sfps budget=%.2fms dropped=%d (%.1f%%)",
		s.Frames, s.RoundedMedian(), s.RoundedAverage(), s.P90Ms, s.P99Ms, s.MaxMs, s.RefreshRate, s.FrameBudgetMs, s.DroppedFrames, s.DroppedPct)
}
