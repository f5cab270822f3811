//go:build !nometrics

package policy

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps policy specific Prometheus metrics.
type Metrics struct {
	upstreamLatency *prometheus.HistogramVec
	upstreamErrRate *prometheus.GaugeVec
	breakerState    *prometheus.GaugeVec
	budgetHit       prometheus.Counter

	requestsMu sync.Mutex
	requests   map[string]*upstreamRequestStats
}

type upstreamRequestStats struct {
	success int
	fail    int
}

// MetricsOption allows customizing the metrics registry.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	registerer prometheus.Registerer
	buckets    []float64
}

// WithRegisterer overrides the default Prometheus registerer.
func WithRegisterer(r prometheus.Registerer) MetricsOption {
	return func(cfg *metricsConfig) {
		cfg.registerer = r
	}
}

// WithLatencyBuckets overrides the default latency histogram buckets (in ms).
func WithLatencyBuckets(buckets []float64) MetricsOption {
	return func(cfg *metricsConfig) {
		cfg.buckets = buckets
	}
}

// NewMetrics constructs Metrics and registers Prometheus collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := metricsConfig{
		registerer: prometheus.DefaultRegisterer,
		buckets: []float64{
			5, 10, 20, 50, 100, 200, 500, 1000, 2000,
		},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	upstreamLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "answer_engine_upstream_latency_ms",
		Help:    "Latency in milliseconds for each upstream dependency call.",
		Buckets: cfg.buckets,
	}, []string{"upstream"})

	upstreamErrRate := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "answer_engine_upstream_error_rate",
		Help: "Rolling error rate for each upstream dependency.",
	}, []string{"upstream"})

	breakerState := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "answer_engine_breaker_state",
		Help: "Circuit breaker state for each upstream dependency. 0=closed, 1=half-open, 2=open.",
	}, []string{"upstream"})

	budgetHit := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "answer_engine_budget_hit_total",
		Help: "Total number of requests that hit the configured time budget.",
	})

	return &Metrics{
		upstreamLatency: registerHistogramVec(cfg.registerer, upstreamLatency),
		upstreamErrRate: registerGaugeVec(cfg.registerer, upstreamErrRate),
		breakerState:    registerGaugeVec(cfg.registerer, breakerState),
		budgetHit:       registerCounter(cfg.registerer, budgetHit),
		requests:        make(map[string]*upstreamRequestStats),
	}
}

// ObserveUpstream records the latency and error status for an upstream call.
func (m *Metrics) ObserveUpstream(upstream string, latency time.Duration, err error) {
	if m == nil {
		return
	}

	ms := float64(latency.Milliseconds())
	if ms < 0 {
		ms = 0
	}
	m.upstreamLatency.WithLabelValues(upstream).Observe(ms)

	m.requestsMu.Lock()
	stats, ok := m.requests[upstream]
	if !ok {
		stats = &upstreamRequestStats{}
		m.requests[upstream] = stats
	}
	if err != nil {
		stats.fail++
	} else {
		stats.success++
	}
	total := stats.fail + stats.success
	var rate float64
	if total > 0 {
		rate = float64(stats.fail) / float64(total)
	}
	m.requestsMu.Unlock()

	m.upstreamErrRate.WithLabelValues(upstream).Set(rate)
}

// IncBudgetHit increments the budget hit counter.
func (m *Metrics) IncBudgetHit() {
	if m == nil {
		return
	}
	m.budgetHit.Inc()
}

// SetBreakerState records the circuit breaker state for an upstream.
func (m *Metrics) SetBreakerState(upstream string, state BreakerState) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(upstream).Set(float64(state))
}

func registerHistogramVec(registerer prometheus.Registerer, collector *prometheus.HistogramVec) *prometheus.HistogramVec {
	if registerer == nil {
		return collector
	}
	if err := registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
			return collector
		}
		panic(err)
	}
	return collector
}

func registerGaugeVec(registerer prometheus.Registerer, collector *prometheus.GaugeVec) *prometheus.GaugeVec {
	if registerer == nil {
		return collector
	}
	if err := registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing
			}
			return collector
		}
		panic(err)
	}
	return collector
}

func registerCounter(registerer prometheus.Registerer, collector prometheus.Counter) prometheus.Counter {
	if registerer == nil {
		return collector
	}
	if err := registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
			return collector
		}
		panic(err)
	}
	return collector
}
