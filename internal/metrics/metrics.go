package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels analyses that produced a report.
	OutcomeSuccess = "success"
	// OutcomeError labels analyses that failed to load or decode their input.
	OutcomeError = "error"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datadash",
			Name:      "analyses_total",
			Help:      "Total number of dataset analyses, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "datadash",
			Name:      "analysis_seconds",
			Help:      "Load plus analysis latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	rowsAnalyzedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "datadash",
			Name:      "rows_analyzed_total",
			Help:      "Total number of records analyzed.",
		},
	)

	columnsAnalyzedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datadash",
			Name:      "columns_analyzed_total",
			Help:      "Total number of columns analyzed, partitioned by inferred type.",
		},
		[]string{"type"},
	)
)

// Register attaches datadash collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		rowsAnalyzedTotal,
		columnsAnalyzedTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// NewRegistry returns a fresh registry with the datadash collectors attached.
func NewRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// ObserveAnalysis records one analysis. Row and column counts are only
// added for successful runs.
func ObserveAnalysis(duration time.Duration, outcome string, rows, numeric, categorical int) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
	if label == OutcomeError {
		return
	}
	rowsAnalyzedTotal.Add(float64(max(rows, 0)))
	columnsAnalyzedTotal.WithLabelValues("numeric").Add(float64(max(numeric, 0)))
	columnsAnalyzedTotal.WithLabelValues("categorical").Add(float64(max(categorical, 0)))
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func WriteTextfile(path string, reg prometheus.Gatherer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
