package monitor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
)

// fakeBridge replays canned dumps; once reports run out the last one repeats.
type fakeBridge struct {
	reports      []string
	reportErrAt  int // 1-based call that fails; 0 never
	display      string
	displayErr   error
	reportCalls  int
	displayCalls int
}

func (f *fakeBridge) Report(ctx context.Context, pkg string) (string, error) {
	f.reportCalls++
	if f.reportErrAt > 0 && f.reportCalls == f.reportErrAt {
		return "", &CommandError{Args: []string{"adb", "shell", "dumpsys", "gfxinfo", pkg}, Err: errors.New("exit status 1"),
			Output: "error: more than one device/emulator"}
	}
	if len(f.reports) == 0 {
		return "", nil
	}
	i := f.reportCalls - 1
	if i >= len(f.reports) {
		i = len(f.reports) - 1
	}
	return f.reports[i], nil
}

func (f *fakeBridge) DisplayInfo(ctx context.Context) (string, error) {
	f.displayCalls++
	return f.display, f.displayErr
}

type sleepRecorder struct{ calls []time.Duration }

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

func TestCollect_AccumulatesRoundsAndSleepsBetween(t *testing.T) {
	fb := &fakeBridge{reports: []string{legacyDump, modernDump}}
	var out bytes.Buffer
	sr := &sleepRecorder{}
	c := &Collector{Bridge: fb, Out: &out, Sleep: sr.sleep}

	frames, err := c.Collect(context.Background(), "com.example.app", 3)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	// 3 legacy + 3 modern + 3 modern (repeat)
	if len(frames) != 9 {
		t.Fatalf("frames = %d, want 9", len(frames))
	}
	if fb.reportCalls != 3 {
		t.Fatalf("report calls = %d, want 3", fb.reportCalls)
	}
	if len(sr.calls) != 2 || sr.calls[0] != DefaultRoundInterval {
		t.Fatalf("expected 2 sleeps of %v, got %v", DefaultRoundInterval, sr.calls)
	}
	wantLines := []string{
		"\tRound 0 done, now have 3 frames.",
		"\tRound 1 done, now have 6 frames.",
		"\tRound 2 done, now have 9 frames.",
	}
	if got := strings.TrimRight(out.String(), "\n"); got != strings.Join(wantLines, "\n") {
		t.Fatalf("progress output mismatch:\n%s", got)
	}
}

func TestCollect_CommandErrorIsTerminal(t *testing.T) {
	fb := &fakeBridge{reports: []string{legacyDump}, reportErrAt: 2}
	sr := &sleepRecorder{}
	c := &Collector{Bridge: fb, Out: &bytes.Buffer{}, Sleep: sr.sleep}

	_, err := c.Collect(context.Background(), "com.example.app", 5)
	if !IsCommandError(err) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if fb.reportCalls != 2 {
		t.Fatalf("collection must stop at the failing call, got %d calls", fb.reportCalls)
	}
}

func TestCollect_NoSectionYieldsEmpty(t *testing.T) {
	fb := &fakeBridge{reports: []string{"No process found for: com.example.app\n"}}
	c := &Collector{Bridge: fb, Out: &bytes.Buffer{}, Sleep: (&sleepRecorder{}).sleep}
	frames, err := c.Collect(context.Background(), "com.example.app", 2)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(frames) != 0 {
		t.Fatalf("expected no frames, got %d", len(frames))
	}
}

func TestCollect_SkipsMalformedAndWidthChangingRounds(t *testing.T) {
	bad := "Draw Prepare Process Execute\n1 2 x 4\n\n"
	three := "Draw Process Execute\n1 2 3\n\n"
	fb := &fakeBridge{reports: []string{modernDump, bad, three, modernDump}}
	c := &Collector{Bridge: fb, Out: &bytes.Buffer{}, Sleep: (&sleepRecorder{}).sleep}
	captureLogs(t)

	frames, err := c.Collect(context.Background(), "com.example.app", 4)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(frames) != 6 || frames.Width() != 4 {
		t.Fatalf("expected 6 four-column frames, got %d x %d", len(frames), frames.Width())
	}
}

func TestCollect_RejectsNonPositiveSeconds(t *testing.T) {
	c := &Collector{Bridge: &fakeBridge{}}
	if _, err := c.Collect(context.Background(), "pkg", 0); err == nil {
		t.Fatalf("expected error for zero seconds")
	}
}

func TestCollect_DumpDirWritesRawRounds(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "raw")
	fb := &fakeBridge{reports: []string{legacyDump}}
	c := &Collector{Bridge: fb, Out: &bytes.Buffer{}, DumpDir: dir, Sleep: (&sleepRecorder{}).sleep}
	if _, err := c.Collect(context.Background(), "com.example.app", 2); err != nil {
		t.Fatalf("collect: %v", err)
	}
	for _, name := range []string{"gfxinfo_round_0.txt", "gfxinfo_round_1.txt"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(b) != legacyDump {
			t.Fatalf("%s content mismatch", name)
		}
	}
}

func TestCollect_ContextCancelDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fb := &fakeBridge{reports: []string{legacyDump}}
	c := &Collector{Bridge: fb, Out: &bytes.Buffer{}, Interval: time.Hour}
	frames, err := c.Collect(ctx, "com.example.app", 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("frames from completed round should be returned, got %d", len(frames))
	}
}
