// Package metrics exposes Prometheus metrics for the REST API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Inspection results.
const (
	ResultSuccess     = "success"
	ResultMalformed   = "malformed"
	ResultUnsupported = "unsupported"
	ResultError       = "error"
)

// Metrics holds the collectors of one server instance on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts HTTP requests by route, method and status code
	RequestsTotal *prometheus.CounterVec

	// RequestDuration tracks HTTP request duration in seconds
	RequestDuration *prometheus.HistogramVec

	// InspectionsTotal counts interpreted objects by content type and result
	InspectionsTotal *prometheus.CounterVec

	// InputBytes tracks the size of interpreted objects
	InputBytes prometheus.Histogram
}

// New creates a Metrics with its own registry, including Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cmsinfo_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status_code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cmsinfo_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to 4s
			},
			[]string{"route", "method"},
		),
		InspectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cmsinfo_inspections_total",
				Help: "Total number of CMS objects interpreted by content type and result",
			},
			[]string{"content_type", "result"},
		),
		InputBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cmsinfo_input_bytes",
				Help:    "Size of interpreted CMS objects in bytes",
				Buckets: prometheus.ExponentialBuckets(64, 4, 10), // 64B to 16MiB
			},
		),
	}
}

// ObserveInspection records one interpretation attempt.
func (m *Metrics) ObserveInspection(contentType, result string, size int) {
	if contentType == "" {
		contentType = "unknown"
	}
	m.InspectionsTotal.WithLabelValues(contentType, result).Inc()
	m.InputBytes.Observe(float64(size))
}

// Middleware records request counts and durations. The route label is the
// chi route pattern so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
		m.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler returns an HTTP handler for the Prometheus metrics of this instance.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
