//go:build !nometrics

package obs

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

var (
	setupOnce sync.Once
	shutdown  = func(context.Context) error { return nil }
)

var (
	engineRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "answer_engine_requests_total",
		Help: "Total answer engine requests by endpoint and return code.",
	}, []string{"endpoint", "code"})
	engineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "answer_engine_request_duration_ms",
		Help:    "Histogram of answer engine request latency in ms.",
		Buckets: prometheus.ExponentialBuckets(5, 2, 8),
	}, []string{"endpoint"})
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "answer_engine_cache_lookups_total",
		Help: "Cache lookups grouped by cache name and hit/miss status.",
	}, []string{"cache", "status"})
	cacheSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "answer_engine_cache_entries",
		Help: "Current number of entries per cache.",
	}, []string{"cache"})
	cacheHitRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "answer_engine_cache_hit_rate",
		Help: "Lifetime hit rate per cache.",
	}, []string{"cache"})
	logFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "answer_engine_log_failures_total",
		Help: "Event log writes that failed or were dropped, by reason.",
	}, []string{"reason"})
)

// ObserveRequest records endpoint-level metrics.
func ObserveRequest(endpoint, code string, duration time.Duration, traceID string) {
	engineRequests.WithLabelValues(endpoint, code).Inc()
	observer := engineDuration.WithLabelValues(endpoint)
	if eo, ok := observer.(prometheus.ExemplarObserver); ok && traceID != "" {
		eo.ObserveWithExemplar(
			float64(duration.Milliseconds()),
			prometheus.Labels{"trace_id": traceID},
		)
		return
	}
	observer.Observe(float64(duration.Milliseconds()))
}

// RecordCacheLookup increments the lookup counter for a cache.
func RecordCacheLookup(cache string, hit bool) {
	status := "miss"
	if hit {
		status = "hit"
	}
	cacheLookups.WithLabelValues(cache, status).Inc()
}

// SetCacheStats updates the size and hit-rate gauges for a cache.
func SetCacheStats(cache string, size int, hitRate float64) {
	cacheSize.WithLabelValues(cache).Set(float64(size))
	cacheHitRate.WithLabelValues(cache).Set(hitRate)
}

// RecordLogFailure counts a failed or dropped event log write.
func RecordLogFailure(reason string) {
	logFailures.WithLabelValues(reason).Inc()
}

// InitTracer sets up a minimal OpenTelemetry tracer provider.
func InitTracer(serviceName string) (func(context.Context) error, error) {
	var initErr error
	setupOnce.Do(func() {
		res, err := resource.New(context.Background(),
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
			),
		)
		if err != nil {
			initErr = err
			return
		}

		provider := sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.3))),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(provider)
		shutdown = provider.Shutdown
	})
	return shutdown, initErr
}
