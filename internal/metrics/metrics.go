package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

const namespace = "ambikamber"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	GateResolutions *prometheus.CounterVec
	APIRequests     *prometheus.CounterVec
	APILatencyMS    *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	HTTPLatencyMS   *prometheus.HistogramVec
}

func New(reg prometheus.Registerer, subsystem string) *Metrics {
	m := &Metrics{
		GateResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gate_resolutions_total",
			Help:      "Transition requests resolved, by entity kind and outcome.",
		}, []string{"kind", "outcome"}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "api_requests_total",
			Help:      "Calls made to the storefront backend.",
		}, []string{"method", "route", "status"}),
		APILatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "api_request_duration_ms",
			Help:      "Storefront backend latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method", "route"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served.",
		}, []string{"handler", "status"}),
		HTTPLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
	}
	reg.MustRegister(m.GateResolutions, m.APIRequests, m.APILatencyMS, m.HTTPRequests, m.HTTPLatencyMS)
	return m
}

func (m *Metrics) ObserveResolution(kind domain.EntityKind, outcome domain.Outcome) {
	if m == nil {
		return
	}
	m.GateResolutions.WithLabelValues(string(kind), string(outcome)).Inc()
}

// ObserveAPICall records one backend call; status 0 means a transport error.
func (m *Metrics) ObserveAPICall(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.APILatencyMS.WithLabelValues(method, route).Observe(float64(took.Milliseconds()))
}

func (m *Metrics) ObserveHTTP(handler string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.HTTPLatencyMS.WithLabelValues(handler).Observe(float64(took.Milliseconds()))
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
