// Package metrics exposes Prometheus collectors for ingestion runs.
//
// A nil *Metrics is valid and records nothing, so callers never need to check.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spotingest"

// Metrics holds the collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	recordsCreated *prometheus.CounterVec
	recordsSkipped *prometheus.CounterVec
	failures       *prometheus.CounterVec
	runDuration    prometheus.Histogram
	lastSuccess    prometheus.Gauge
}

// New registers the ingestion collectors, plus Go and process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Ingestion runs by outcome",
		}, []string{"outcome"}),
		recordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_created_total",
			Help:      "Records created by kind",
		}, []string{"kind"}),
		recordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Records skipped because they already existed, by kind",
		}, []string{"kind"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Contained failures by phase and error kind",
		}, []string{"phase", "kind"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of ingestion runs",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RunFinished records one run's outcome ("success", "failed", "busy") and duration.
func (m *Metrics) RunFinished(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	if outcome == "busy" {
		return
	}
	m.runDuration.Observe(d.Seconds())
	if outcome == "success" {
		m.lastSuccess.SetToCurrentTime()
	}
}

func (m *Metrics) Created(kind string) {
	if m == nil {
		return
	}
	m.recordsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) Skipped(kind string) {
	if m == nil {
		return
	}
	m.recordsSkipped.WithLabelValues(kind).Inc()
}

// Failure records a contained failure. kind is usually shared.ErrorKind(err).
func (m *Metrics) Failure(phase, kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(phase, kind).Inc()
}
