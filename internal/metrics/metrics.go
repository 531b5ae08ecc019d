package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/halim/toolbridge/pkg/gateway"
)

// Metrics holds all Prometheus metrics for the gateway
type Metrics struct {
	registry *prometheus.Registry

	// Dispatch metrics
	DispatchesTotal  *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	DispatchFailures *prometheus.CounterVec

	// HTTP surface metrics
	RequestsTotal    *prometheus.CounterVec
	RateLimitedTotal prometheus.Counter

	// Registry metrics
	ToolsRegistered prometheus.Gauge
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		DispatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_dispatches_total",
				Help: "Total number of tool dispatches",
			},
			[]string{"tool_name", "outcome"},
		),
		DispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_dispatch_duration_seconds",
				Help:    "Duration of tool dispatches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool_name"},
		),
		DispatchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_dispatch_failures_total",
				Help: "Total number of failed tool dispatches",
			},
			[]string{"tool_name", "outcome"},
		),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_http_requests_total",
				Help: "Total number of HTTP requests by path and status",
			},
			[]string{"path", "status"},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_http_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),

		ToolsRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gateway_tools_registered",
				Help: "Number of tools currently registered",
			},
		),
	}

	registry.MustRegister(
		m.DispatchesTotal,
		m.DispatchDuration,
		m.DispatchFailures,
		m.RequestsTotal,
		m.RateLimitedTotal,
		m.ToolsRegistered,
	)

	return m
}

// Record implements gateway.AuditRecorder so the metrics collector can sit
// in the dispatch audit fanout.
func (m *Metrics) Record(rec gateway.AuditRecord) {
	m.DispatchesTotal.WithLabelValues(rec.ToolName, string(rec.Outcome)).Inc()
	m.DispatchDuration.WithLabelValues(rec.ToolName).Observe(rec.Duration.Seconds())
	if rec.Outcome != gateway.OutcomeSuccess {
		m.DispatchFailures.WithLabelValues(rec.ToolName, string(rec.Outcome)).Inc()
	}
}

// Handler returns an HTTP handler serving the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
