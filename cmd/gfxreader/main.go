// gfxreader summarizes saved "dumpsys gfxinfo" output without a device attached,
// e.g. the per-round files written by frametime -dump-dir.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/Turnsole/cookie-butter/src/analysis"
	"github.com/Turnsole/cookie-butter/src/monitor"
	"github.com/Turnsole/cookie-butter/src/render"
	"github.com/Turnsole/cookie-butter/src/types"
)

func main() {
	var fps string
	var title string
	var outDir string
	flag.StringVar(&fps, "fps", "60", "Refresh rate used for the dropped-frame estimate")
	flag.StringVar(&title, "title", "", "If set, also render the chart to <title>.png")
	flag.StringVar(&outDir, "out-dir", "", "Directory for the chart")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: gfxreader [flags] <dump.txt>...")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	frames, err := readDumps(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(frames) <= 1 {
		fmt.Println("Got no frames. Is collection enabled & the app drawing?")
		return
	}
	series, err := analysis.ExtractStages(frames)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	sum, err := analysis.Summarize(series, fps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Total frames: %d (%d columns)\n", len(frames), frames.Width())
	fmt.Println(sum.Line())
	if title != "" {
		path, err := render.SavePNG(series, sum, render.Options{Title: title, OutDir: outDir})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved %d frames to graph as %s.\n", sum.Frames, path)
	}
}

// readDumps parses each file in order and concatenates frames of matching width.
func readDumps(paths []string) (types.FrameCollection, error) {
	var frames types.FrameCollection
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, errors.Wrap(err, "open dump")
		}
		res := monitor.ParseReader(f)
		f.Close()
		if !res.OK() {
			return nil, errors.Wrapf(res.Err, "%s", p)
		}
		if len(res.Rows) > 0 && len(frames) > 0 && res.Rows.Width() != frames.Width() {
			return nil, errors.Errorf("%s: %d columns, earlier files have %d", p, res.Rows.Width(), frames.Width())
		}
		fmt.Printf("%s: format=%s sections=%d frames=%d\n", p, res.Format, res.Sections, len(res.Rows))
		frames = append(frames, res.Rows...)
	}
	return frames, nil
}
