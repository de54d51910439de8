package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	generationTotal    *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	lineItemsGenerated *prometheus.HistogramVec
	demoRequestsTotal  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scopegen",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scopegen",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "scopegen",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	generationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scopegen",
			Subsystem: "scope",
			Name:      "generation_total",
			Help:      "Total scope generation attempts by terminal status.",
		},
		[]string{"service", "status"},
	)
	generationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scopegen",
			Subsystem: "scope",
			Name:      "generation_duration_seconds",
			Help:      "Scope generation duration in seconds, model call included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	lineItemsGenerated := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scopegen",
			Subsystem: "scope",
			Name:      "line_items_generated",
			Help:      "Distribution of line items per completed scope.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)
	demoRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scopegen",
			Subsystem: "demo",
			Name:      "requests_total",
			Help:      "Total demo parse requests by outcome.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		generationTotal,
		generationDuration,
		lineItemsGenerated,
		demoRequestsTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		generationTotal:    generationTotal,
		generationDuration: generationDuration,
		lineItemsGenerated: lineItemsGenerated,
		demoRequestsTotal:  demoRequestsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasSuffix(path, "/export") && strings.HasPrefix(path, "/v1/scopes/"):
		return "/v1/scopes/{scope_id}/export"
	case strings.HasPrefix(path, "/v1/scopes/"):
		return "/v1/scopes/{scope_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordGeneration(service, status string, lineItems int, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.generationTotal.WithLabelValues(service, status).Inc()
	m.generationDuration.WithLabelValues(service).Observe(duration.Seconds())
	if status == "COMPLETED" {
		m.lineItemsGenerated.WithLabelValues(service).Observe(float64(lineItems))
	}
}

func (m *HTTPServerMetrics) RecordDemoRequest(service, status string) {
	if status == "" {
		status = "unknown"
	}
	m.demoRequestsTotal.WithLabelValues(service, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
