package monitor

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/Turnsole/cookie-butter/src/types"
)

const physicalDisplayMarker = "PhysicalDisplayInfo{"

// Looking for, on newer releases without PhysicalDisplayInfo:
//
//	DisplayModeRecord{mMode={id=1, width=1080, height=2400, fps=90.0, ...}}
//	mRefreshRate=60.0
var fallbackRateRE = regexp.MustCompile(`(?i)(?:\bfps=|refreshRate[= ])([0-9]+(?:\.[0-9]+)?)`)

// ProbeRefreshRate returns the device's nominal refresh rate token (e.g. "60.000004").
// Bridge failures are returned untouched so callers can detect *CommandError.
func ProbeRefreshRate(ctx context.Context, b Bridge) (string, error) {
	text, err := b.DisplayInfo(ctx)
	if err != nil {
		return "", err
	}
	rate, err := ParseDisplayInfo(text)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse 'dumpsys display'")
	}
	return rate, nil
}

// ParseDisplayInfo extracts the refresh rate token from "dumpsys display" output.
//
// Looking for:
//
//	PhysicalDisplayInfo{1080 x 1920, 60.000004 fps, density 3.0, ...}
func ParseDisplayInfo(text string) (string, error) {
	for _, line := range strings.Split(text, "\n") {
		idx := strings.Index(line, physicalDisplayMarker)
		if idx < 0 {
			continue
		}
		fields := strings.Split(line[idx+len(physicalDisplayMarker):], ",")
		if len(fields) < 2 {
			return "", errors.Errorf("unexpected display line %q", strings.TrimSpace(line))
		}
		tok := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(fields[1]), "fps"))
		if _, err := types.ParseRefreshRate(tok); err != nil {
			return "", err
		}
		return tok, nil
	}
	if m := fallbackRateRE.FindStringSubmatch(text); m != nil {
		if _, err := types.ParseRefreshRate(m[1]); err == nil {
			return m[1], nil
		}
	}
	return "", errors.New("no refresh rate found")
}
