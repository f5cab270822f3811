package policy

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGuardTimeoutTriggersError(t *testing.T) {
	guard, err := NewGuard(GuardConfig{
		Name:    "catalog",
		Timeout: 50 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	callErr := guard.Execute(context.Background(), func(ctx context.Context) error {
		select {
		case <-time.After(150 * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if !errors.Is(callErr, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", callErr)
	}
}

func TestGuardCircuitOpensAfterFailures(t *testing.T) {
	guard, err := NewGuard(GuardConfig{
		Name:    "catalog",
		Timeout: 200 * time.Millisecond,
		Breaker: BreakerConfig{
			Window:               500 * time.Millisecond,
			FailureRateThreshold: 0.5,
			MinSamples:           2,
			Cooldown:             100 * time.Millisecond,
			HalfOpenMaxCalls:     1,
		},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	boom := errors.New("upstream down")
	fail := func(context.Context) error { return boom }

	for i := 0; i < 2; i++ {
		if err := guard.Execute(context.Background(), fail); !errors.Is(err, boom) {
			t.Fatalf("expected upstream error, got %v", err)
		}
	}

	if err := guard.Execute(context.Background(), fail); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestGuardRateLimitRejects(t *testing.T) {
	guard, err := NewGuard(GuardConfig{
		Name:    "embedder",
		Timeout: 100 * time.Millisecond,
		Rate: RateLimitConfig{
			Capacity:     1,
			RefillTokens: 1,
			RefillEvery:  time.Hour,
		},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok := func(context.Context) error { return nil }

	if err := guard.Execute(context.Background(), ok); err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}
	if err := guard.Execute(context.Background(), ok); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestGuardRejectsInvalidConfig(t *testing.T) {
	if _, err := NewGuard(GuardConfig{Timeout: time.Second}, nil); err == nil {
		t.Fatal("expected error for missing name")
	}
	if _, err := NewGuard(GuardConfig{Name: "catalog"}, nil); err == nil {
		t.Fatal("expected error for missing timeout")
	}
}

func TestRegistryLookup(t *testing.T) {
	reg, err := NewRegistry([]GuardConfig{
		{Name: "catalog", Timeout: time.Second},
		{Name: "embedder", Timeout: time.Second},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := reg.Guard("catalog"); !ok {
		t.Fatal("expected catalog guard")
	}
	if _, ok := reg.Guard("unknown"); ok {
		t.Fatal("expected lookup miss for unknown upstream")
	}
}

func TestBudgetArbiterRejectsNegativeBudget(t *testing.T) {
	if _, err := NewBudgetArbiter(context.Background(), -1, nil); err != ErrInvalidBudget {
		t.Fatalf("expected ErrInvalidBudget, got %v", err)
	}
}

func TestBudgetArbiterCancelsWithinBudget(t *testing.T) {
	arbiter, err := NewBudgetArbiter(context.Background(), 50, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer arbiter.Cancel()

	ctx := arbiter.Context()
	select {
	case <-ctx.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected context to cancel within budget window")
	}

	if ctx.Err() != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", ctx.Err())
	}
}
