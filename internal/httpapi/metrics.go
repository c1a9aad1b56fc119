package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	inFlight        prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	AuditFailures   prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics registers the HTTP and audit collectors on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "resource", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "resource", "status"},
		),
		AuditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Audit records that could not be written.",
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.inFlight, m.requestsTotal, m.requestDuration, m.AuditFailures)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		resource := resourceLabel(r.URL.Path)
		status := strconv.Itoa(sw.code)
		m.requestDuration.WithLabelValues(r.Method, resource, status).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(r.Method, resource, status).Inc()
	})
}

var knownResources = func() map[string]struct{} {
	known := map[string]struct{}{"healthcheck": {}, "metrics": {}}
	for _, resource := range Resources {
		known[resource] = struct{}{}
	}
	return known
}()

// resourceLabel keeps only the first path segment of known routes. Ids and
// unknown paths collapse so label cardinality stays bounded.
func resourceLabel(path string) string {
	segment, _, _ := strings.Cut(strings.Trim(path, "/"), "/")
	if segment == "" {
		return "/"
	}
	if _, ok := knownResources[segment]; !ok {
		return "other"
	}
	return "/" + segment
}
