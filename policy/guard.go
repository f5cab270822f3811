package policy

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RateLimitConfig configures the token bucket limiter.
type RateLimitConfig struct {
	Capacity     int
	RefillTokens int
	RefillEvery  time.Duration
}

// GuardConfig configures the per-upstream policy controls.
type GuardConfig struct {
	Name    string
	Timeout time.Duration
	Rate    RateLimitConfig
	Breaker BreakerConfig
}

// Guard applies timeout, rate limiting, and circuit breaking around calls to
// a single upstream dependency.
type Guard struct {
	name    string
	timeout time.Duration
	rate    *TokenBucket
	breaker *Breaker
	metrics *Metrics
}

// NewGuard constructs a Guard with the provided configuration.
func NewGuard(cfg GuardConfig, metrics *Metrics) (*Guard, error) {
	if cfg.Name == "" {
		return nil, errors.New("upstream name required")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("upstream timeout must be positive")
	}

	var bucket *TokenBucket
	if cfg.Rate.Capacity > 0 && cfg.Rate.RefillTokens > 0 && cfg.Rate.RefillEvery > 0 {
		bucket = NewTokenBucket(cfg.Rate.Capacity, cfg.Rate.RefillTokens, cfg.Rate.RefillEvery)
	}

	return &Guard{
		name:    cfg.Name,
		timeout: cfg.Timeout,
		rate:    bucket,
		breaker: NewBreaker(cfg.Name, normalizeBreakerConfig(cfg.Breaker), metrics),
		metrics: metrics,
	}, nil
}

// Execute wraps an upstream call applying timeout, rate limiting, and circuit
// breaker checks.
func (g *Guard) Execute(parent context.Context, fn func(context.Context) error) error {
	if parent == nil {
		parent = context.Background()
	}

	now := time.Now()

	if !g.breaker.Allow(now) {
		g.metrics.ObserveUpstream(g.name, 0, ErrCircuitOpen)
		return ErrCircuitOpen
	}

	if g.rate != nil && !g.rate.Allow(now) {
		return ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(parent, g.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	latency := time.Since(start)
	g.metrics.ObserveUpstream(g.name, latency, err)

	g.breaker.Record(time.Now(), err == nil)
	return err
}

// State returns the current breaker state for the guarded upstream.
func (g *Guard) State() BreakerState {
	return g.breaker.State()
}

func normalizeBreakerConfig(cfg BreakerConfig) BreakerConfig {
	if cfg.Window <= 0 {
		cfg.Window = 10 * time.Second
	}
	if cfg.FailureRateThreshold <= 0 {
		cfg.FailureRateThreshold = 0.5
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}
	return cfg
}

// Registry holds the configured guards keyed by upstream name.
type Registry struct {
	guards  map[string]*Guard
	metrics *Metrics
}

// NewRegistry builds guards for each upstream configuration.
func NewRegistry(configs []GuardConfig, metrics *Metrics) (*Registry, error) {
	if metrics == nil {
		metrics = NewMetrics()
	}

	guards := make(map[string]*Guard, len(configs))
	for _, gc := range configs {
		guard, err := NewGuard(gc, metrics)
		if err != nil {
			return nil, fmt.Errorf("upstream %q: %w", gc.Name, err)
		}
		guards[gc.Name] = guard
	}

	return &Registry{guards: guards, metrics: metrics}, nil
}

// Guard returns the guard for the requested upstream.
func (r *Registry) Guard(name string) (*Guard, bool) {
	guard, ok := r.guards[name]
	return guard, ok
}

// Metrics returns the metrics collector shared by the guards.
func (r *Registry) Metrics() *Metrics {
	return r.metrics
}
