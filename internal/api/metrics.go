package api

import (
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records the calls made to the case service.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct // defaults are fine
			Namespace: "casedesk",
			Subsystem: "case_service",
			Name:      "requests_total",
			Help:      "Requests sent to the case service by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{ //nolint:exhaustruct // defaults are fine
			Namespace: "casedesk",
			Subsystem: "case_service",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests sent to the case service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

var idSegment = regexp.MustCompile(`/\d+/`)

// route replaces numeric ids so that every case or match shares one label value.
func route(path string) string {
	return idSegment.ReplaceAllString(path, "/{id}/")
}

func (m *Metrics) observe(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	r := route(path)
	code := "error"
	if status != 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, r, code).Inc()
	m.duration.WithLabelValues(method, r).Observe(elapsed.Seconds())
}
