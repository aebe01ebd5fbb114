package analysis

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// ReportSchemaVersion is bumped on breaking changes to the JSON report fields.
const ReportSchemaVersion = 1

// Report is the structured run summary written next to the chart.
type Report struct {
	GeneratedAt   string  `json:"generated_at"`
	SchemaVersion int     `json:"schema_version"`
	Package       string  `json:"package"`
	Device        string  `json:"device,omitempty"`
	Title         string  `json:"title"`
	Chart         string  `json:"chart,omitempty"`
	Columns       int     `json:"columns"`
	Summary       Summary `json:"summary"`
}

// NewReport stamps a report with the current UTC time.
func NewReport(pkg, device, title, chart string, columns int, s Summary) Report {
	return Report{
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339Nano),
		SchemaVersion: ReportSchemaVersion,
		Package:       pkg,
		Device:        device,
		Title:         title,
		Chart:         chart,
		Columns:       columns,
		Summary:       s,
	}
}

// WriteReportJSON writes rep as indented JSON, replacing any existing file.
func WriteReportJSON(path string, rep Report) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
