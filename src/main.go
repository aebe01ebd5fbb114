// frametime main entrypoint.
//
// Flow: poll "dumpsys gfxinfo <package>" once per second for N rounds, probe the display
// refresh rate, then render a stacked bar chart of per-frame stage times to <title>.png.
//
// Usage:
//
//	frametime [flags] <package> [seconds] [title] [device]
//
// Design notes:
//   - Settings resolve as defaults -> -config YAML -> environment -> flags -> positional args.
//   - Any adb failure is terminal: no retry, no refresh-rate probe, no chart.
//   - Zero or one collected frame is reported as "no data" and exits cleanly without a chart.
//   - Dependency direction: main -> monitor (device I/O, parsing) -> analysis (stats) -> render (PNG).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Turnsole/cookie-butter/src/analysis"
	"github.com/Turnsole/cookie-butter/src/config"
	"github.com/Turnsole/cookie-butter/src/monitor"
	"github.com/Turnsole/cookie-butter/src/render"
)

const noFramesMsg = "Got no frames. Is collection enabled & the app drawing?"

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, os.Getenv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "frametime: %v\n", err)
		return exitUsage
	}
	monitor.SetLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, cfg, monitor.NewADB(cfg.ADBPath, cfg.Device), stdout)
}

// parseArgs resolves the run configuration. Flags must precede positional arguments.
func parseArgs(args []string, getenv func(string) string, stderr io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("frametime", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: frametime [flags] <package> [seconds] [title] [device]")
		fmt.Fprintln(fs.Output(), "Generate a frame time graph for a connected adb device.")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Optional YAML config file")
	seconds := fs.Int("seconds", 1, "Number of seconds (rounds) to collect data")
	title := fs.String("title", config.DefaultTitle, "Chart title; the chart is written to <title>.png")
	device := fs.String("device", "", "adb serial of the target device (default $ANDROID_SERIAL)")
	adbPath := fs.String("adb", "adb", "Path to the adb binary")
	outDir := fs.String("out-dir", "", "Directory for the chart (default current directory)")
	interval := fs.Duration("interval", monitor.DefaultRoundInterval, "Pause between collection rounds")
	logLevel := fs.String("log-level", "info", "Log level (debug|info|warn|error)")
	summaryJSON := fs.String("summary-json", "", "Path to write a JSON run summary (optional)")
	metricsFile := fs.String("metrics-file", "", "Path to write Prometheus textfile metrics (optional)")
	dumpDir := fs.String("dump-dir", "", "Directory to keep each round's raw gfxinfo output (optional)")
	footnote := fs.Bool("footnote", true, "Stamp package and device under the chart")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Defaults()
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			return config.Config{}, err
		}
	}
	cfg.ApplyEnv(getenv)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seconds":
			cfg.Seconds = *seconds
		case "title":
			cfg.Title = *title
		case "device":
			cfg.Device = *device
		case "adb":
			cfg.ADBPath = *adbPath
		case "out-dir":
			cfg.OutDir = *outDir
		case "interval":
			cfg.Interval = *interval
		case "log-level":
			cfg.LogLevel = *logLevel
		case "summary-json":
			cfg.SummaryJSON = *summaryJSON
		case "metrics-file":
			cfg.MetricsFile = *metricsFile
		case "dump-dir":
			cfg.DumpDir = *dumpDir
		case "footnote":
			cfg.Footnote = *footnote
		}
	})

	pos := fs.Args()
	if len(pos) > 4 {
		return config.Config{}, errors.Errorf("too many arguments: %s", strings.Join(pos[4:], " "))
	}
	if len(pos) > 0 {
		cfg.Package = pos[0]
	}
	if len(pos) > 1 {
		n, err := strconv.Atoi(pos[1])
		if err != nil {
			return config.Config{}, errors.Errorf("seconds must be an integer, got %q", pos[1])
		}
		cfg.Seconds = n
	}
	if len(pos) > 2 {
		cfg.Title = pos[2]
	}
	if len(pos) > 3 {
		cfg.Device = pos[3]
	}
	if !monitor.ValidLogLevel(cfg.LogLevel) {
		return config.Config{}, errors.Errorf("unknown log level %q", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// run executes collect -> probe -> render against bridge and returns the process exit code.
func run(ctx context.Context, cfg config.Config, bridge monitor.Bridge, out io.Writer) int {
	monitor.Infof("collecting %s for %d second(s) device=%q", cfg.Package, cfg.Seconds, cfg.Device)
	col := &monitor.Collector{Bridge: bridge, Interval: cfg.Interval, Out: out, DumpDir: cfg.DumpDir}
	frames, err := col.Collect(ctx, cfg.Package, cfg.Seconds)
	if err != nil {
		return fail(ctx, out, err)
	}
	if len(frames) <= 1 {
		fmt.Fprintln(out, noFramesMsg)
		return exitOK
	}

	rate, err := monitor.ProbeRefreshRate(ctx, bridge)
	if err != nil {
		return fail(ctx, out, err)
	}
	series, err := analysis.ExtractStages(frames)
	if err != nil {
		return fail(ctx, out, err)
	}
	sum, err := analysis.Summarize(series, rate)
	if err != nil {
		return fail(ctx, out, err)
	}

	opts := render.Options{Title: cfg.Title, OutDir: cfg.OutDir}
	if cfg.Footnote {
		opts.Footnote = footnoteText(cfg, frames.Width())
	}
	chartPath, err := render.SavePNG(series, sum, opts)
	if err != nil {
		return fail(ctx, out, err)
	}
	fmt.Fprintf(out, "Saved %d frames to graph as %s.\n", sum.Frames, chartPath)
	fmt.Fprintf(out, "[summary] %s\n", sum.Line())

	if cfg.SummaryJSON != "" {
		rep := analysis.NewReport(cfg.Package, cfg.Device, cfg.Title, chartPath, frames.Width(), sum)
		if err := analysis.WriteReportJSON(cfg.SummaryJSON, rep); err != nil {
			return fail(ctx, out, err)
		}
		fmt.Fprintf(out, "[summary] wrote JSON report: %s\n", cfg.SummaryJSON)
	}
	if cfg.MetricsFile != "" {
		if err := analysis.WriteMetricsTextfile(cfg.MetricsFile, cfg.Package, sum, analysis.Totals(series)); err != nil {
			return fail(ctx, out, err)
		}
		fmt.Fprintf(out, "[summary] wrote metrics: %s\n", cfg.MetricsFile)
	}
	return exitOK
}

func footnoteText(cfg config.Config, columns int) string {
	device := cfg.Device
	if device == "" {
		device = "(default device)"
	}
	return fmt.Sprintf("%s  %s  %d columns  %s", cfg.Package, device, columns, time.Now().Format("2006-01-02 15:04"))
}

func fail(ctx context.Context, out io.Writer, err error) int {
	switch {
	case ctx.Err() != nil:
		fmt.Fprintln(out, "Interrupted.")
	case monitor.IsCommandError(err):
		fmt.Fprintln(out, "Unable to execute ADB command.")
		fmt.Fprintln(out, "If there is more than one device, specify which.")
	}
	monitor.Errorf("%v", err)
	return exitFail
}
