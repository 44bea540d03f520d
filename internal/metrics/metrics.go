// SPDX-License-Identifier: MIT

// Package metrics defines occam's Prometheus instrumentation. All metrics
// are registered on the default registry and exposed via the dedicated
// metrics listener.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "occam_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "occam_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "occam_http_requests_in_flight",
		Help: "HTTP requests currently being served",
	})

	// Cache
	cacheOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "occam_cache_operations_total",
		Help: "Cache operations by type and outcome",
	}, []string{"operation", "outcome"}) // operation=get|set|incr, outcome=hit|miss|local_hit|ok|error

	cacheWriteQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "occam_cache_write_queue_depth",
		Help: "Writes buffered for the background cache writer",
	})

	cacheWritesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occam_cache_writes_dropped_total",
		Help: "Background cache writes dropped because the queue was full",
	})

	// Upstream providers
	providerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "occam_provider_requests_total",
		Help: "Upstream provider calls by provider, operation and outcome",
	}, []string{"provider", "operation", "outcome"}) // outcome=ok|error

	providerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "occam_provider_request_duration_seconds",
		Help:    "Upstream provider call latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "operation"})

	quotaMonthlyUsed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "occam_api_quota_monthly_used",
		Help: "Metered upstream calls consumed in the current month",
	})

	// Optimizer
	optimizerRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "occam_optimizer_runs_total",
		Help: "Optimization runs by outcome",
	}, []string{"outcome"}) // outcome=ok|no_availability|error

	optimizerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "occam_optimizer_duration_seconds",
		Help:    "End-to-end optimization latency including availability fetch",
		Buckets: prometheus.DefBuckets,
	})

	optimizerConfigurations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "occam_optimizer_configurations",
		Help:    "Distinct configurations returned per successful run",
		Buckets: prometheus.LinearBuckets(0, 1, 6),
	})
)

func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func IncHTTPInFlight() { httpRequestsInFlight.Inc() }
func DecHTTPInFlight() { httpRequestsInFlight.Dec() }

func IncCacheOperation(operation, outcome string) {
	cacheOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func SetCacheQueueDepth(n int)  { cacheWriteQueueDepth.Set(float64(n)) }
func IncCacheWriteDropped()     { cacheWritesDroppedTotal.Inc() }
func SetQuotaMonthlyUsed(n int) { quotaMonthlyUsed.Set(float64(n)) }

func RecordProviderRequest(provider, operation, outcome string, d time.Duration) {
	providerRequestsTotal.WithLabelValues(provider, operation, outcome).Inc()
	providerRequestDuration.WithLabelValues(provider, operation).Observe(d.Seconds())
}

func RecordOptimizerRun(outcome string, d time.Duration, configurations int) {
	optimizerRunsTotal.WithLabelValues(outcome).Inc()
	optimizerDuration.Observe(d.Seconds())
	if outcome == "ok" {
		optimizerConfigurations.Observe(float64(configurations))
	}
}
