//go:build nometrics

package policy

import "time"

type Metrics struct{}

type MetricsOption func(*metricsConfig)

type metricsConfig struct{}

func NewMetrics(...MetricsOption) *Metrics {
	return nil
}

func WithRegisterer(_ any) MetricsOption {
	return func(*metricsConfig) {}
}

func WithLatencyBuckets(_ []float64) MetricsOption {
	return func(*metricsConfig) {}
}

func (m *Metrics) ObserveUpstream(string, time.Duration, error) {}

func (m *Metrics) IncBudgetHit() {}

func (m *Metrics) SetBreakerState(string, BreakerState) {}
