package render

import (
	"bytes"
	"image"
	_ "image/png" // register PNG decoder
	"math"
	"os"
	"path/filepath"
	"testing"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/Turnsole/cookie-butter/src/analysis"
	"github.com/Turnsole/cookie-butter/src/types"
)

func sample(t *testing.T, frames types.FrameCollection) (analysis.StageSeries, analysis.Summary) {
	t.Helper()
	s, err := analysis.ExtractStages(frames)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	sum, err := analysis.Summarize(s, "60")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	return s, sum
}

func syntheticFrames(n int) types.FrameCollection {
	out := make(types.FrameCollection, n)
	for i := range out {
		out[i] = types.FrameRecord{1 + float64(i%5), 0.5, 4 + float64(i%7), 2}
	}
	return out
}

func TestBuildChart_StacksStagesInOrder(t *testing.T) {
	s, sum := sample(t, types.FrameCollection{{1, 2, 3, 4}, {5, 5, 5, 5}, {0, 0, 0, 10}})
	ch, err := BuildChart(s, sum, Options{Title: "ms_per_frame"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// four stages plus the annotation
	if len(ch.Series) != 5 {
		t.Fatalf("series = %d, want 5", len(ch.Series))
	}
	wantNames := []string{"Draw", "Prepare", "Process", "Execute"}
	for i, name := range wantNames {
		bars, ok := ch.Series[i].(stackedBars)
		if !ok {
			t.Fatalf("series %d is %T", i, ch.Series[i])
		}
		if bars.Name != name {
			t.Fatalf("series %d name = %s, want %s", i, bars.Name, name)
		}
	}
	execute := ch.Series[3].(stackedBars)
	// Execute sits on Draw+Prepare+Process, its top is the frame total.
	for i, want := range []float64{10, 20, 10} {
		if _, top := execute.GetValues(i); top != want {
			t.Fatalf("frame %d top = %v, want %v", i, top, want)
		}
	}
	if _, ok := ch.Series[4].(chart.AnnotationSeries); !ok {
		t.Fatalf("last series should be the annotation, got %T", ch.Series[4])
	}
	if ann := ch.Series[4].(chart.AnnotationSeries).Annotations[0]; math.Abs(ann.XValue-0.3) > 1e-9 || math.Abs(ann.YValue-18) > 1e-9 {
		t.Fatalf("annotation position = (%v,%v), want (0.3,18)", ann.XValue, ann.YValue)
	}
}

func TestBuildChart_EmptySeries(t *testing.T) {
	if _, err := BuildChart(analysis.StageSeries{}, analysis.Summary{}, Options{}); err == nil {
		t.Fatalf("expected error for empty series")
	}
}

func TestStackedBars_Validate(t *testing.T) {
	if err := (stackedBars{Name: "Draw", Bottoms: []float64{0}, Values: []float64{1, 2}}).Validate(); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	if err := (stackedBars{Name: "Draw", Bottoms: []float64{0}, Values: []float64{1}}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRender_ProducesPNG(t *testing.T) {
	s, sum := sample(t, syntheticFrames(120))
	var buf bytes.Buffer
	if err := Render(&buf, s, sum, Options{Title: "ms_per_frame", Footnote: "com.example.app @ emulator-5554"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	img, _, err := image.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantW, wantH := ComputeChartDimensions(120)
	if b := img.Bounds(); b.Dx() != wantW || b.Dy() != wantH {
		t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), wantW, wantH)
	}
}

func TestSavePNG_OverwritesByTitle(t *testing.T) {
	dir := t.TempDir()
	s, sum := sample(t, syntheticFrames(10))
	path := filepath.Join(dir, "jank run.png")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := SavePNG(s, sum, Options{Title: "jank run", OutDir: dir, Width: 640, Height: 320})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if got != path {
		t.Fatalf("path = %s, want %s", got, path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("existing file was not replaced with a PNG: %v", err)
	}
	if format != "png" || cfg.Width != 640 || cfg.Height != 320 {
		t.Fatalf("unexpected image %s %dx%d", format, cfg.Width, cfg.Height)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("ms_per_frame"); got != "ms_per_frame.png" {
		t.Fatalf("FileName = %q", got)
	}
}
