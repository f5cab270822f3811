package policy

import (
	"context"
	"sync/atomic"
	"time"
)

// BudgetArbiter derives a deadline-bound context for an entire retrieval
// request and records whether the budget was reached.
type BudgetArbiter struct {
	ctx    context.Context
	cancel context.CancelFunc
	hit    atomic.Bool
}

// NewBudgetArbiter creates an arbiter from parent with the given budget in
// milliseconds. A zero budget disables the deadline; negative budgets are
// rejected.
func NewBudgetArbiter(parent context.Context, budgetMS int, metrics *Metrics) (*BudgetArbiter, error) {
	if parent == nil {
		parent = context.Background()
	}
	if budgetMS < 0 {
		return nil, ErrInvalidBudget
	}

	arbiter := &BudgetArbiter{}
	if budgetMS == 0 {
		arbiter.ctx, arbiter.cancel = context.WithCancel(parent)
		return arbiter, nil
	}

	arbiter.ctx, arbiter.cancel = context.WithTimeout(parent, time.Duration(budgetMS)*time.Millisecond)
	go func() {
		<-arbiter.ctx.Done()
		if arbiter.ctx.Err() == context.DeadlineExceeded {
			arbiter.hit.Store(true)
			metrics.IncBudgetHit()
		}
	}()
	return arbiter, nil
}

// Context returns the budget-bound context.
func (a *BudgetArbiter) Context() context.Context {
	return a.ctx
}

// Cancel releases the arbiter's resources.
func (a *BudgetArbiter) Cancel() {
	a.cancel()
}

// Hit reports whether the allotted budget was consumed.
func (a *BudgetArbiter) Hit() bool {
	if a == nil {
		return false
	}
	return a.hit.Load()
}
