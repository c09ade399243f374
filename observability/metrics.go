package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stock_viewer"

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Page render metrics
	PageRendersTotal      *prometheus.CounterVec
	PageRenderDuration    *prometheus.HistogramVec
	PageRenderErrorsTotal *prometheus.CounterVec
	PageRowsDisplayed     *prometheus.HistogramVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// rowBuckets cover one trading day up to ten years of sessions
var rowBuckets = []float64{1, 5, 25, 65, 130, 260, 520, 1300, 2600}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		// Page render metrics
		PageRendersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "page",
				Name:      "renders_total",
				Help:      "Total number of dashboard page renders",
			},
			[]string{"page", "variant", "status"},
		),
		PageRenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "page",
				Name:      "render_duration_seconds",
				Help:      "Duration of dashboard page renders in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"page", "variant", "status"},
		),
		PageRenderErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "page",
				Name:      "render_errors_total",
				Help:      "Total number of failed page renders by error kind",
			},
			[]string{"page", "error_kind"},
		),
		PageRowsDisplayed: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "page",
				Name:      "rows_displayed",
				Help:      "Number of daily rows shown per render",
				Buckets:   rowBuckets,
			},
			[]string{"page"},
		),

		// External API metrics
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of market data provider requests",
			},
			[]string{"provider", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of market data provider errors",
			},
			[]string{"provider", "operation", "error_kind"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of market data provider calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"provider", "operation"},
		),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		// Circuit breaker metrics
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// SetMetrics replaces the global metrics instance (useful for testing)
func SetMetrics(m *Metrics) {
	globalMetrics = m
}

// RecordPageRender records a finished page render
func (m *Metrics) RecordPageRender(page, variant, status string, duration time.Duration) {
	m.PageRendersTotal.WithLabelValues(page, variant, status).Inc()
	m.PageRenderDuration.WithLabelValues(page, variant, status).Observe(duration.Seconds())
}

// RecordPageRenderError records a failed page render by error kind
func (m *Metrics) RecordPageRenderError(page, errorKind string) {
	m.PageRenderErrorsTotal.WithLabelValues(page, errorKind).Inc()
}

// RecordRowsDisplayed records the number of rows a page shows
func (m *Metrics) RecordRowsDisplayed(page string, rows int) {
	m.PageRowsDisplayed.WithLabelValues(page).Observe(float64(rows))
}

// RecordExternalAPIRequest records a provider request
func (m *Metrics) RecordExternalAPIRequest(provider, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(provider, operation).Inc()
}

// RecordExternalAPIError records a provider error
func (m *Metrics) RecordExternalAPIError(provider, operation, errorKind string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(provider, operation, errorKind).Inc()
}

// RecordExternalAPIDuration records the duration of a provider call
func (m *Metrics) RecordExternalAPIDuration(provider, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObservePage records the page render duration and status
func (t *Timer) ObservePage(page, variant, status string) {
	t.metrics.RecordPageRender(page, variant, status, time.Since(t.start))
}

// ObserveExternalAPI records the provider call duration
func (t *Timer) ObserveExternalAPI(provider, operation string) {
	t.metrics.RecordExternalAPIDuration(provider, operation, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
