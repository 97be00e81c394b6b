// Package prometheus records run and record outcomes as Prometheus
// metrics on a dedicated registry.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
)

// Ensure Observer implements the interface.
var _ driven.RunObserver = (*Observer)(nil)

const namespace = "stocksync"

// Run results used as the "result" label.
const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Observer counts handled records and finished runs.
type Observer struct {
	registry *prometheus.Registry

	records  *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.GaugeVec
}

// NewObserver creates an observer with its own registry, which also
// carries the Go runtime and process collectors.
func NewObserver() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Feed records handled, by run mode and outcome.",
		}, []string{"mode", "outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Reconciliation runs finished, by run mode and result.",
		}, []string{"mode", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of finished runs.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}, []string{"mode"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_rows",
			Help:      "Records processed by the last finished run.",
		}, []string{"mode"}),
	}

	o.registry.MustRegister(
		o.records,
		o.runs,
		o.duration,
		o.rows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return o
}

// RecordHandled counts one record.
func (o *Observer) RecordHandled(mode domain.RunMode, outcome domain.RecordOutcome) {
	o.records.WithLabelValues(string(mode), string(outcome)).Inc()
}

// RunFinished counts a finished run and observes its duration.
func (o *Observer) RunFinished(run *domain.RunResult) {
	if run == nil {
		return
	}

	result := resultSuccess
	if run.State == domain.RunStateFailed {
		result = resultFailure
	}
	mode := string(run.Mode)

	o.runs.WithLabelValues(mode, result).Inc()
	o.duration.WithLabelValues(mode).Observe(run.Duration().Seconds())
	o.rows.WithLabelValues(mode).Set(float64(run.TotalRows()))
}

// Registry returns the registry holding the metrics.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}
