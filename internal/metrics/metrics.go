// Package metrics holds the Prometheus collectors for the storefront core:
// remote API calls, in-flight operation categories, local fallbacks and the
// view bridge HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight view bridge requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of view bridge requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of view bridge requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	remoteCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "remote",
			Name:      "calls_total",
			Help:      "Total number of storefront API calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	remoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "remote",
			Name:      "call_duration_seconds",
			Help:      "Duration of storefront API calls.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"operation"},
	)

	operationsInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "session",
			Name:      "operation_in_flight",
			Help:      "1 while an operation category flag is set, 0 otherwise.",
		},
		[]string{"category"},
	)

	fallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "session",
			Name:      "fallbacks_total",
			Help:      "Local substitutes used after a failed remote read.",
		},
		[]string{"kind"},
	)
)

// Fallback kinds.
const (
	FallbackDefaultCatalog = "default_catalog"
	FallbackDetailCache    = "detail_cache"
	FallbackDetailAbsent   = "detail_absent"
	FallbackEmptyCart      = "empty_cart"
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		remoteCalls,
		remoteDuration,
		operationsInFlight,
		fallbacks,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncrementInFlight marks one more view bridge request in flight.
func IncrementInFlight() { httpInFlight.Inc() }

// DecrementInFlight marks one view bridge request done.
func DecrementInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records a completed view bridge request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRemoteCall records one storefront API call.
func RecordRemoteCall(operation string, duration time.Duration, err error) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	remoteCalls.WithLabelValues(operation, outcome).Inc()
	remoteDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetOperationInFlight mirrors an operation flag.
func SetOperationInFlight(category string, active bool) {
	v := 0.0
	if active {
		v = 1
	}
	operationsInFlight.WithLabelValues(category).Set(v)
}

// RecordFallback counts a local substitute used after a failed read.
func RecordFallback(kind string) {
	fallbacks.WithLabelValues(kind).Inc()
}
