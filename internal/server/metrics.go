// Package server exposes the Fibonacci engine over HTTP: calculation,
// sequence, and convergence endpoints plus health and Prometheus metrics.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server-level instruments. Calculation metrics (count, duration) live in
// the fibonacci package, next to the code they measure.
var (
	inflightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fibengine_active_requests",
		Help: "Number of HTTP requests currently being served",
	})
	requestCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fibengine_requests_total",
		Help: "Total HTTP requests received since startup",
	})
)

// Metrics holds the Prometheus exposition handler serving /metrics.
type Metrics struct {
	exposition http.Handler
}

// NewMetrics returns a Metrics backed by the default Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{exposition: promhttp.Handler()}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.metrics.exposition.ServeHTTP(w, r)
}

// metricsMiddleware counts each request and tracks how many are in flight.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestCount.Inc()
		inflightRequests.Inc()
		defer inflightRequests.Dec()
		next(w, r)
	}
}
