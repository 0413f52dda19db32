// Package metrics provides Prometheus metrics for upstream calls and the HTTP API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UpstreamRequestsTotal counts upstream calls by outcome (ok, timeout, network, status, parse).
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of upstream HTTP requests by outcome",
		},
		[]string{"upstream", "outcome"},
	)

	// UpstreamRequestDuration is a histogram of upstream call latencies.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of upstream HTTP requests",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 8, 12, 25},
		},
		[]string{"upstream"},
	)

	// ResolvedAssetsTotal counts resolved assets by the source that priced them.
	ResolvedAssetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolved_assets_total",
			Help: "Total number of resolved assets by winning source",
		},
		[]string{"source"},
	)

	// HTTPRequestsTotal counts API responses.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	// HTTPRequestDuration is a histogram of API latencies.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		ResolvedAssetsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// RecordUpstream records one upstream call.
func RecordUpstream(upstream, outcome string, d time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(upstream, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(upstream).Observe(d.Seconds())
}

// RecordResolved records the winning source of one resolved asset.
func RecordResolved(source string) {
	ResolvedAssetsTotal.WithLabelValues(source).Inc()
}

// RecordHTTP records one API response.
func RecordHTTP(endpoint, status string, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
