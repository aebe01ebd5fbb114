package render

import (
	"math"
	"strconv"
)

// Pixels per frame before clamping; keeps individual bars visible for short captures.
const pixelsPerFrame = 4

// ComputeChartDimensions sizes the chart from the number of frames.
// Width grows with the frame count inside [900, 4000]; height keeps a ~3:1 ratio clamped to [400, 720].
func ComputeChartDimensions(frames int) (int, int) {
	w := frames*pixelsPerFrame + 160
	if w < 900 {
		w = 900
	}
	if w > 4000 {
		w = 4000
	}
	h := int(float32(w) * 0.33)
	if h < 400 {
		h = 400
	}
	if h > 720 {
		h = 720
	}
	return w, h
}

// NiceAxisMax rounds max up to a readable bound with ~5% headroom.
func NiceAxisMax(max float64) float64 {
	if math.IsNaN(max) || max <= 0 {
		return 1
	}
	b := max * 1.05
	mag := pow10Floor(max)
	return math.Ceil(b/mag) * mag
}

// BuildNumericTicks generates up to n tick marks spanning [min,max] using a 1,2,2.5,5 pattern.
func BuildNumericTicks(min, max float64, n int) []float64 {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil(span/step) + 1
		if count < 2 {
			count = 2
		}
		diff := math.Abs(count - float64(n))
		if diff < bestScore {
			bestScore = diff
			bestStep = step
		}
	}
	start := math.Floor(min/bestStep) * bestStep
	end := math.Ceil(max/bestStep) * bestStep
	var out []float64
	for v := start; v <= end+bestStep*0.5; v += bestStep {
		out = append(out, round6(v))
	}
	if len(out) < 2 {
		out = []float64{min, max}
	}
	return out
}

// FormatNumericTick renders a compact millisecond label.
func FormatNumericTick(v float64) string {
	av := math.Abs(v)
	switch {
	case av == 0:
		return "0"
	case av >= 100:
		return strconv.FormatInt(int64(math.Round(v)), 10)
	case av >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

// pow10Floor returns 10^floor(log10(x)) safeguarding tiny values.
func pow10Floor(x float64) float64 {
	if x <= 0 {
		return 1
	}
	return math.Pow(10, math.Floor(math.Log10(x)))
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
