package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics exposed by the service.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	importRunsTotal      *prometheus.CounterVec
	importedPostsTotal   *prometheus.CounterVec
	extractionConfidence prometheus.Histogram
	importRunDuration    prometheus.Histogram
}

// NewCollector creates and registers all service metrics on a private registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popmap_http_requests_total",
				Help: "Total number of HTTP requests by path, method, and status code.",
			},
			[]string{"path", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "popmap_http_request_duration_seconds",
				Help:    "HTTP request latency by path and method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		importRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popmap_import_runs_total",
				Help: "Total number of Instagram import runs by outcome.",
			},
			[]string{"outcome"},
		),
		importedPostsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popmap_import_posts_total",
				Help: "Total number of processed Instagram posts by disposition.",
			},
			[]string{"disposition"},
		),
		extractionConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "popmap_extraction_confidence",
				Help:    "Confidence scores reported by the event extractor.",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		importRunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "popmap_import_run_duration_seconds",
				Help:    "Wall-clock duration of import runs.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
	}

	registry.MustRegister(
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.importRunsTotal,
		c.importedPostsTotal,
		c.extractionConfidence,
		c.importRunDuration,
	)

	return c
}

// Handler returns the /metrics endpoint handler for this registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveImportRun records the outcome and duration of an import run.
func (c *Collector) ObserveImportRun(outcome string, duration time.Duration) {
	c.importRunsTotal.WithLabelValues(outcome).Inc()
	c.importRunDuration.Observe(duration.Seconds())
}

// CountPost records the disposition of a single processed post.
func (c *Collector) CountPost(disposition string) {
	c.importedPostsTotal.WithLabelValues(disposition).Inc()
}

// ObserveConfidence records an extractor confidence score.
func (c *Collector) ObserveConfidence(confidence float64) {
	c.extractionConfidence.Observe(confidence)
}

// InstrumentHandler wraps an HTTP handler with request counting and latency
// observation.
func (c *Collector) InstrumentHandler(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		c.httpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(recorder.status)).Inc()
		c.httpRequestDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Import run outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Post dispositions.
const (
	DispositionImported         = "imported"
	DispositionSkippedDuplicate = "skipped_duplicate"
	DispositionSkippedNotEvent  = "skipped_not_event"
	DispositionSkippedError     = "skipped_error"
)
