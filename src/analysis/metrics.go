package analysis

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "frametime"

// NewRegistry builds a registry describing one run, labelled by package.
// Histogram buckets are multiples of the frame budget so dropped frames land above 1x.
func NewRegistry(pkg string, s Summary, totals []float64) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"package": pkg}

	gauge := func(name, help string, v float64) error {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
		g.Set(v)
		return reg.Register(g)
	}
	for _, m := range []struct {
		name, help string
		v          float64
	}{
		{"frames", "Frames collected in the run.", float64(s.Frames)},
		{"median_ms", "Median total frame time in milliseconds.", s.MedianMs},
		{"average_ms", "Average total frame time in milliseconds.", s.AverageMs},
		{"p90_ms", "90th percentile total frame time in milliseconds.", s.P90Ms},
		{"p99_ms", "99th percentile total frame time in milliseconds.", s.P99Ms},
		{"refresh_rate_hz", "Nominal display refresh rate.", s.FPS},
		{"dropped_frames", "Estimated frames exceeding the frame budget.", float64(s.DroppedFrames)},
	} {
		if err := gauge(m.name, m.help, m.v); err != nil {
			return nil, errors.Wrapf(err, "register %s", m.name)
		}
	}

	budget := s.FrameBudgetMs
	if budget <= 0 {
		budget = FrameBudget(60)
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   metricsNamespace,
		Name:        "frame_total_ms",
		Help:        "Distribution of total frame time in milliseconds.",
		ConstLabels: labels,
		Buckets:     prometheus.LinearBuckets(budget/2, budget/2, 8),
	})
	for _, v := range totals {
		h.Observe(v)
	}
	if err := reg.Register(h); err != nil {
		return nil, errors.Wrap(err, "register frame_total_ms")
	}
	return reg, nil
}

// WriteMetricsTextfile writes the run metrics in Prometheus text format (node_exporter textfile collector).
func WriteMetricsTextfile(path, pkg string, s Summary, totals []float64) error {
	reg, err := NewRegistry(pkg, s, totals)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
