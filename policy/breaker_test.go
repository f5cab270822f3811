package policy

import (
	"testing"
	"time"
)

func TestBreakerTransitions(t *testing.T) {
	cfg := BreakerConfig{
		Window:               200 * time.Millisecond,
		FailureRateThreshold: 0.5,
		MinSamples:           2,
		Cooldown:             100 * time.Millisecond,
		HalfOpenMaxCalls:     1,
	}

	br := NewBreaker("catalog", cfg, nil)

	now := time.Now()
	if !br.Allow(now) {
		t.Fatal("expected allow in closed state")
	}
	br.Record(now, false)
	br.Record(now.Add(10*time.Millisecond), false)

	if br.State() != BreakerOpen {
		t.Fatalf("expected breaker open, got %v", br.State())
	}

	if br.Allow(now.Add(20 * time.Millisecond)) {
		t.Fatal("expected allow to be denied while breaker open")
	}

	halfOpenTime := now.Add(cfg.Cooldown + 20*time.Millisecond)
	if !br.Allow(halfOpenTime) {
		t.Fatal("expected allow in half-open state")
	}

	br.Record(halfOpenTime, true)

	if br.State() != BreakerClosed {
		t.Fatalf("expected breaker closed after successful probe, got %v", br.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cfg := BreakerConfig{
		Window:               200 * time.Millisecond,
		FailureRateThreshold: 0.5,
		MinSamples:           2,
		Cooldown:             50 * time.Millisecond,
		HalfOpenMaxCalls:     1,
	}

	br := NewBreaker("embedder", cfg, nil)

	now := time.Now()
	br.Record(now, false)
	br.Record(now.Add(5*time.Millisecond), false)
	if br.State() != BreakerOpen {
		t.Fatalf("expected breaker open, got %v", br.State())
	}

	probeTime := now.Add(cfg.Cooldown + 10*time.Millisecond)
	if !br.Allow(probeTime) {
		t.Fatal("expected probe allowed in half-open state")
	}

	br.Record(probeTime, false)
	if br.State() != BreakerOpen {
		t.Fatalf("expected breaker to reopen after failed probe, got %v", br.State())
	}
}

func TestBreakerPrunesOldEvents(t *testing.T) {
	cfg := BreakerConfig{
		Window:               100 * time.Millisecond,
		FailureRateThreshold: 0.5,
		MinSamples:           2,
		Cooldown:             time.Second,
		HalfOpenMaxCalls:     1,
	}

	br := NewBreaker("catalog", cfg, nil)

	now := time.Now()
	br.Record(now, false)

	// The old failure falls out of the window before the threshold is hit.
	later := now.Add(200 * time.Millisecond)
	br.Record(later, true)
	br.Record(later.Add(time.Millisecond), true)

	if br.State() != BreakerClosed {
		t.Fatalf("expected breaker to stay closed, got %v", br.State())
	}
}
