// Package metrics provides Prometheus metrics for the dashboard service:
//   - http_request_total / http_request_duration_seconds / http_request_in_flight
//   - http_response_size_bytes
//   - upstream_fetch_total / upstream_fetch_duration_seconds
//   - dashboard_render_total
//   - upstream_probe_up
//   - rate_limiter_buckets_total
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response body size",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	UpstreamFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_fetch_total",
			Help: "Patient list fetches by outcome",
		},
		[]string{"outcome"},
	)

	UpstreamFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_fetch_duration_seconds",
			Help:    "Patient list fetch latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"},
	)

	DashboardRenderTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_render_total",
			Help: "Dashboard builds by result kind",
		},
		[]string{"result"},
	)

	UpstreamProbeUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "upstream_probe_up",
			Help: "1 when the last upstream probe succeeded and found the target patient",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPResponseSize)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(UpstreamFetchTotal)
	prometheus.MustRegister(UpstreamFetchDuration)
	prometheus.MustRegister(DashboardRenderTotal)
	prometheus.MustRegister(UpstreamProbeUp)
	prometheus.MustRegister(RateLimiterBucketsTotal)
}

// RecordUpstreamFetch counts one fetch and observes its latency
func RecordUpstreamFetch(outcome string, d time.Duration) {
	UpstreamFetchTotal.WithLabelValues(outcome).Inc()
	UpstreamFetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordRender counts one dashboard build. result is "success" or an error kind.
func RecordRender(result string) {
	DashboardRenderTotal.WithLabelValues(result).Inc()
}

// SetProbeUp records the outcome of the latest upstream probe
func SetProbeUp(up bool) {
	if up {
		UpstreamProbeUp.Set(1)
		return
	}
	UpstreamProbeUp.Set(0)
}
