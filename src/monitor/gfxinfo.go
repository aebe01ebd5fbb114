package monitor

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Turnsole/cookie-butter/src/types"
)

// ReportFormat identifies which gfxinfo section convention a dump follows.
type ReportFormat int

const (
	// FormatNone means no profile section header was found.
	FormatNone ReportFormat = iota
	// FormatLegacy: header exactly "Draw\tPrepare\tProcess\tExecute", section closed by "View hierarchy:".
	FormatLegacy
	// FormatModern: header ends with "Process Execute", section closed by the first blank line.
	FormatModern
)

func (f ReportFormat) String() string {
	switch f {
	case FormatLegacy:
		return "legacy"
	case FormatModern:
		return "modern"
	}
	return "none"
}

const (
	legacyHeader     = "Draw\tPrepare\tProcess\tExecute"
	legacyTerminator = "View hierarchy:"
	// minStageColumns is the narrowest table seen in the wild (Draw Process Execute).
	minStageColumns = 3
)

// ParseResult is the outcome of parsing one gfxinfo dump. Rows is nil when Err is set.
type ParseResult struct {
	Format   ReportFormat
	Sections int
	Rows     types.FrameCollection
	Err      error
}

// OK reports whether the dump parsed cleanly (possibly with zero rows).
func (r ParseResult) OK() bool { return r.Err == nil }

// ParseReader reads a whole dump from rd and parses it.
func ParseReader(rd io.Reader) ParseResult {
	var lines []string
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return ParseResult{Err: errors.Wrap(err, "read gfxinfo dump")}
	}
	return parseLines(lines)
}

// ParseReport parses the text of one "dumpsys gfxinfo <pkg>" invocation.
func ParseReport(text string) ParseResult {
	return parseLines(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}

// DetectFormat picks the section convention used by the dump.
// Legacy dumps carry the exact tab-separated header and a "View hierarchy:" trailer;
// anything else with a "... Process Execute" header is treated as modern.
func DetectFormat(lines []string) ReportFormat {
	sawLegacyHeader, sawTerminator, sawHeader := false, false, false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == legacyHeader:
			sawLegacyHeader = true
			sawHeader = true
		case line == legacyTerminator:
			if sawLegacyHeader {
				sawTerminator = true
			}
		case isModernHeader(line):
			sawHeader = true
		}
	}
	switch {
	case sawLegacyHeader && sawTerminator:
		return FormatLegacy
	case sawHeader:
		return FormatModern
	}
	return FormatNone
}

func isModernHeader(line string) bool {
	fields := strings.Fields(line)
	n := len(fields)
	if n < 2 || fields[n-2] != types.StageProcess || fields[n-1] != types.StageExecute {
		return false
	}
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f, 64); err == nil {
			return false
		}
	}
	return true
}

func parseLines(lines []string) ParseResult {
	res := ParseResult{Format: DetectFormat(lines)}
	if res.Format == FormatNone {
		return res
	}
	width := 0
	inSection := false
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if !inSection {
			if (res.Format == FormatLegacy && line == legacyHeader) ||
				(res.Format == FormatModern && isModernHeader(line)) {
				inSection = true
				res.Sections++
			}
			continue
		}
		if res.Format == FormatLegacy {
			if line == legacyTerminator {
				break
			}
			if line == "" {
				continue
			}
			if line == legacyHeader {
				res.Sections++
				continue
			}
			// A window name line closes the section; the next header re-opens it.
			if !startsNumeric(line) {
				inSection = false
				continue
			}
		} else if line == "" {
			inSection = false
			continue
		}
		row, err := parseRow(line)
		if err != nil {
			return ParseResult{Format: res.Format, Sections: res.Sections, Err: errors.Wrapf(err, "line %d", i+1)}
		}
		if width == 0 {
			width = len(row)
		} else if len(row) != width {
			return ParseResult{Format: res.Format, Sections: res.Sections,
				Err: errors.Errorf("line %d: %d columns, expected %d", i+1, len(row), width)}
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

func startsNumeric(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(fields[0], 64)
	return err == nil
}

func parseRow(line string) (types.FrameRecord, error) {
	fields := strings.Fields(line)
	if len(fields) < minStageColumns {
		return nil, errors.Errorf("%d columns, need at least %d", len(fields), minStageColumns)
	}
	row := make(types.FrameRecord, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Errorf("column %d: %q is not a number", i+1, f)
		}
		row[i] = v
	}
	return row, nil
}
