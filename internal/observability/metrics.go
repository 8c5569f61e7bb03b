// Package observability exposes the Prometheus metrics of the admin server.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the application's Prometheus metrics.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	approvalsTotal   *prometheus.CounterVec
}

// NewMetrics initialises the registry and its collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_admin_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_admin_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	upstream := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_admin_upstream_requests_total",
		Help: "Backend API calls by endpoint and status code; code 0 is a transport failure.",
	}, []string{"endpoint", "code"})
	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_admin_upstream_request_duration_seconds",
		Help:    "Backend API call duration per endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	approvals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_admin_approval_actions_total",
		Help: "Approval workflow runs by module, action and result.",
	}, []string{"module", "action", "result"})
	registry.MustRegister(
		requests, duration, upstream, upstreamDuration, approvals,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		upstreamTotal:    upstream,
		upstreamDuration: upstreamDuration,
		approvalsTotal:   approvals,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveUpstream records one backend API call.
func (m *Metrics) ObserveUpstream(endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.upstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ApprovalOutcome counts one approval workflow run.
func (m *Metrics) ApprovalOutcome(module, action, result string) {
	if m == nil {
		return
	}
	m.approvalsTotal.WithLabelValues(module, action, result).Inc()
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
