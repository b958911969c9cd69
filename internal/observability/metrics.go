package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exported by the service.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrorsTotal     *prometheus.CounterVec

	IssuesReportedTotal    prometheus.Counter
	StatusTransitionsTotal *prometheus.CounterVec
	NearbyQueryDuration    prometheus.Histogram
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_errors_total",
				Help:      "Total requests rejected with a domain error",
			},
			[]string{"method", "path", "code"},
		),
		IssuesReportedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "issues_reported_total",
				Help:      "Issues created since process start",
			},
		),
		StatusTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "issue_status_transitions_total",
				Help:      "Administrator status transitions applied",
			},
			[]string{"from", "to"},
		),
		NearbyQueryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "nearby_query_duration_seconds",
				Help:      "Duration of proximity queries",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPErrorsTotal,
		m.IssuesReportedTotal,
		m.StatusTransitionsTotal,
		m.NearbyQueryDuration,
	)
	return m
}

// RecordRequest increments request counters.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments the domain-error counter.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.HTTPErrorsTotal.WithLabelValues(method, path, code).Inc()
}

// RecordIssueReported counts a successful issue creation.
func (m *Metrics) RecordIssueReported() {
	if m == nil {
		return
	}
	m.IssuesReportedTotal.Inc()
}

// RecordStatusTransition counts an applied status change.
func (m *Metrics) RecordStatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.StatusTransitionsTotal.WithLabelValues(from, to).Inc()
}

// ObserveNearbyQuery records proximity query latency.
func (m *Metrics) ObserveNearbyQuery(duration time.Duration) {
	if m == nil {
		return
	}
	m.NearbyQueryDuration.Observe(duration.Seconds())
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
