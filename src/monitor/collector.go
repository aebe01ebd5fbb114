package monitor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/Turnsole/cookie-butter/src/types"
)

// DefaultRoundInterval matches the refresh period of the device's profile ring buffer.
const DefaultRoundInterval = time.Second

// Collector polls the frame timing report once per round and accumulates rows.
type Collector struct {
	Bridge Bridge
	// Interval between rounds; zero means DefaultRoundInterval.
	Interval time.Duration
	// Out receives one progress line per round; nil means os.Stdout.
	Out io.Writer
	// DumpDir, when set, receives each round's raw report as gfxinfo_round_<i>.txt.
	DumpDir string
	// Sleep waits between rounds; nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Collect runs `seconds` rounds against pkg and returns the frames gathered.
// A bridge failure ends collection immediately and is returned as is.
// An empty collection is not an error.
func (c *Collector) Collect(ctx context.Context, pkg string, seconds int) (types.FrameCollection, error) {
	if c.Bridge == nil {
		return nil, errors.New("collector has no bridge")
	}
	if seconds < 1 {
		return nil, errors.Errorf("seconds must be positive, got %d", seconds)
	}
	defer TimeTrack(time.Now(), "collect")
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultRoundInterval
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	if c.DumpDir != "" {
		if err := os.MkdirAll(c.DumpDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create dump dir")
		}
	}

	var frames types.FrameCollection
	for round := 0; round < seconds; round++ {
		text, err := c.Bridge.Report(ctx, pkg)
		if err != nil {
			return frames, err
		}
		c.dump(round, text)
		res := ParseReport(text)
		switch {
		case !res.OK():
			Warnf("round %d: skipping malformed gfxinfo output: %v", round, res.Err)
		case len(res.Rows) > 0 && len(frames) > 0 && res.Rows.Width() != frames.Width():
			Warnf("round %d: column count changed from %d to %d, skipping round", round, frames.Width(), res.Rows.Width())
		default:
			Debugf("round %d: format=%s sections=%d rows=%d", round, res.Format, res.Sections, len(res.Rows))
			frames = append(frames, res.Rows...)
		}
		fmt.Fprintf(out, "\tRound %d done, now have %d frames.\n", round, len(frames))
		if round < seconds-1 {
			if err := sleep(ctx, interval); err != nil {
				return frames, err
			}
		}
	}
	return frames, nil
}

func (c *Collector) dump(round int, text string) {
	if c.DumpDir == "" {
		return
	}
	path := filepath.Join(c.DumpDir, fmt.Sprintf("gfxinfo_round_%d.txt", round))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		Warnf("write %s: %v", path, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
