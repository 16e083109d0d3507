// Package metrics defines the Prometheus instruments recorded while preparing datasets.
//
// The dataprep command is a batch job, so metrics are not served over HTTP. Instead the
// registry is written once per run in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dataprep"

// Outcome labels for PreparationsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeCached  = "cached"
	OutcomeError   = "error"
)

// Metrics holds the preparation instruments. A nil *Metrics records nothing.
type Metrics struct {
	PreparationsTotal *prometheus.CounterVec
	CacheHitsTotal    *prometheus.CounterVec
	BytesWrittenTotal *prometheus.CounterVec
	SplitsWritten     *prometheus.CounterVec
	DurationSeconds   *prometheus.HistogramVec
}

// New registers the instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PreparationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "preparations_total",
				Help:      "Dataset preparations by dataset and outcome",
			},
			[]string{"dataset", "outcome"},
		),
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Preparations answered from a cached descriptor",
			},
			[]string{"dataset"},
		),
		BytesWrittenTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_written_total",
				Help:      "Payload bytes written by dataset",
			},
			[]string{"dataset"},
		),
		SplitsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "splits_written_total",
				Help:      "Payload files written by dataset and split",
			},
			[]string{"dataset", "split"},
		),
		DurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "preparation_duration_seconds",
				Help:      "Wall time of non-cached preparations",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"dataset"},
		),
	}
}

// RecordPreparation counts one finished preparation. Duration is observed for
// non-cached outcomes only.
func (m *Metrics) RecordPreparation(dataset, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PreparationsTotal.WithLabelValues(dataset, outcome).Inc()
	switch outcome {
	case OutcomeCached:
		m.CacheHitsTotal.WithLabelValues(dataset).Inc()
	default:
		m.DurationSeconds.WithLabelValues(dataset).Observe(elapsed.Seconds())
	}
}

// RecordSplit counts one payload file.
func (m *Metrics) RecordSplit(dataset, split string, bytes int64) {
	if m == nil {
		return
	}
	m.SplitsWritten.WithLabelValues(dataset, split).Inc()
	m.BytesWrittenTotal.WithLabelValues(dataset).Add(float64(bytes))
}

// WriteTextfile writes everything gathered from g to path in the Prometheus text format.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
