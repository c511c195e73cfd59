// Package metrics provides Prometheus instrumentation for reads. A
// Collector counts rows and cells, observes read latency, and counts
// typed columns and inference failures; its large-cell counter is
// registered but no Record method updates it. The CLI registers one
// against the default registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector wraps the Prometheus metrics recorded for one reader.
type Collector struct {
	rowsTotal      *prometheus.CounterVec
	cellsTotal     *prometheus.CounterVec
	largeCells     *prometheus.CounterVec
	readDuration   *prometheus.HistogramVec
	columnsTyped   *prometheus.CounterVec
	inferenceFails *prometheus.CounterVec
}

// NewCollector creates a collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		rowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulsar_rows_total",
			Help: "Total data rows produced",
		}, []string{"mode"}),
		cellsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulsar_cells_total",
			Help: "Total cells tokenized",
		}, []string{"mode"}),
		largeCells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulsar_large_cells_total",
			Help: "Cells at or above the large-cell threshold",
		}, []string{"mode"}),
		readDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pulsar_read_duration_seconds",
			Help:    "Wall time of whole-file reads",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		}, []string{"mode"}),
		columnsTyped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulsar_columns_typed_total",
			Help: "Columns that completed type inference",
		}, []string{"type"}),
		inferenceFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulsar_inference_failures_total",
			Help: "Columns whose parser ladder was exhausted",
		}, []string{"mode"}),
	}
	for _, m := range []prometheus.Collector{
		c.rowsTotal, c.cellsTotal, c.largeCells, c.readDuration, c.columnsTyped, c.inferenceFails,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordRead records the outcome of one whole-file read.
func (c *Collector) RecordRead(mode string, rows, cells int64, duration time.Duration) {
	if c == nil {
		return
	}
	c.rowsTotal.WithLabelValues(mode).Add(float64(rows))
	c.cellsTotal.WithLabelValues(mode).Add(float64(cells))
	c.readDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordColumnType counts one column resolved to the given type.
func (c *Collector) RecordColumnType(dataType string) {
	if c == nil {
		return
	}
	c.columnsTyped.WithLabelValues(dataType).Inc()
}

// RecordInferenceFailure counts one column whose ladder was exhausted.
func (c *Collector) RecordInferenceFailure(mode string) {
	if c == nil {
		return
	}
	c.inferenceFails.WithLabelValues(mode).Inc()
}
