package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the API, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
	CatalogRequests *prometheus.CounterVec
	TokenExchanges  *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors, plus the Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "favtunes_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "favtunes_http_request_duration_seconds",
			Help:    "Latency of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CatalogRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "favtunes_catalog_requests_total",
			Help: "Total number of catalog lookups by operation and outcome",
		}, []string{"operation", "outcome"}),
		TokenExchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "favtunes_token_exchanges_total",
			Help: "Total number of client credentials exchanges by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveCatalog has the shape of services.Observer.
func (m *Metrics) ObserveCatalog(operation, outcome string) {
	m.CatalogRequests.WithLabelValues(operation, outcome).Inc()
}

// ObserveToken has the shape of services.Observer; the operation is always "token".
func (m *Metrics) ObserveToken(_, outcome string) {
	m.TokenExchanges.WithLabelValues(outcome).Inc()
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MetricsHandler serves the Prometheus exposition format. It implements [Handler].
type MetricsHandler struct {
	h http.Handler
}

func NewMetricsHandler(m *Metrics) *MetricsHandler {
	return &MetricsHandler{h: promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})}
}

func (h *MetricsHandler) Routes() []string { return []string{"/metrics"} }

func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.h.ServeHTTP(w, r)
}

// HealthHandler reports liveness. It implements [Handler].
type HealthHandler struct{}

func (HealthHandler) Routes() []string { return []string{"/healthz"} }

func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
