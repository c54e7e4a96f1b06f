// Package metrics exposes prometheus collectors for the API client and the
// local dashboard proxy.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// APIMetrics tracks outbound API calls made by the client.
type APIMetrics struct {
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	timeoutTotal   prometheus.Counter
}

// NewAPIMetrics registers the client collectors, reusing collectors that are
// already registered so repeated construction stays safe.
func NewAPIMetrics() *APIMetrics {
	m := &APIMetrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "idverify",
			Subsystem: "client",
			Name:      "api_requests_total",
			Help:      "Count of outbound API calls",
		}, []string{"method", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "idverify",
			Subsystem: "client",
			Name:      "api_request_duration_seconds",
			Help:      "Latency distribution of outbound API calls",
			Buckets:   histogramBuckets,
		}, []string{"method", "status"}),
		timeoutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "idverify",
			Subsystem: "client",
			Name:      "api_request_timeouts_total",
			Help:      "Number of calls aborted by the per-request timeout",
		}),
	}
	m.requestTotal = registerCounterVec(m.requestTotal)
	m.requestLatency = registerHistogramVec(m.requestLatency)
	m.timeoutTotal = registerCounter(m.timeoutTotal)
	return m
}

// Record observes one completed call. Transport failures carry status 0.
func (m *APIMetrics) Record(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "status": strconv.Itoa(status)}
	m.requestTotal.With(labels).Inc()
	m.requestLatency.With(labels).Observe(duration.Seconds())
}

// RecordTimeout counts a call aborted by its timeout.
func (m *APIMetrics) RecordTimeout() {
	if m == nil {
		return
	}
	m.timeoutTotal.Inc()
}

// ProxyMetrics tracks requests handled by the local dashboard proxy.
type ProxyMetrics struct {
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewProxyMetrics registers the proxy collectors.
func NewProxyMetrics() *ProxyMetrics {
	m := &ProxyMetrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "idverify",
			Subsystem: "proxy",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "idverify",
			Subsystem: "proxy",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.requestTotal = registerCounterVec(m.requestTotal)
	m.requestLatency = registerHistogramVec(m.requestLatency)
	return m
}

// Record observes one proxied request.
func (m *ProxyMetrics) Record(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "route": route, "status": strconv.Itoa(status)}
	m.requestTotal.With(labels).Inc()
	m.requestLatency.With(labels).Observe(duration.Seconds())
}

func registerCounterVec(c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

func registerHistogramVec(h *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
	}
	return h
}

func registerCounter(c prometheus.Counter) prometheus.Counter {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
	}
	return c
}
