package obs

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	violationsTotal   *prometheus.CounterVec
	schedulesTotal    *prometheus.CounterVec
	opDuration        *prometheus.HistogramVec
}

var installed atomic.Pointer[Metrics]

// NewMetrics registers the collectors on a fresh registry and installs
// them for Time.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hos",
			Name:      "http_requests_total",
			Help:      "HTTP requests processed, by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hos",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request durations, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		violationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hos",
			Name:      "violations_detected_total",
			Help:      "Violations reported by compliance queries, by rule and severity.",
		}, []string{"rule", "severity"}),
		schedulesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hos",
			Name:      "schedules_total",
			Help:      "Break schedules produced, by status.",
		}, []string{"status"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hos",
			Name:      "operation_duration_seconds",
			Help:      "Storage and provider operation durations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "outcome"}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.violationsTotal,
		m.schedulesTotal,
		m.opDuration,
		collectors.NewGoCollector(),
	)
	installed.Store(m)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// The recording methods are no-ops on a nil *Metrics.

func (m *Metrics) ObserveHTTP(route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(dur.Seconds())
}

func (m *Metrics) CountViolation(rule, severity string) {
	if m == nil {
		return
	}
	m.violationsTotal.WithLabelValues(rule, severity).Inc()
}

func (m *Metrics) CountSchedule(status string) {
	if m == nil {
		return
	}
	m.schedulesTotal.WithLabelValues(status).Inc()
}

func observeOp(op string, failed bool, dur time.Duration) {
	m := installed.Load()
	if m == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.opDuration.WithLabelValues(op, outcome).Observe(dur.Seconds())
}
