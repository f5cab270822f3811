// Package policy applies timeout, rate limiting, and circuit breaking around
// the engine's upstream dependencies (content catalog, embedding service).
package policy

import "errors"

var (
	// ErrCircuitOpen indicates the circuit breaker is currently open.
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrRateLimited indicates the upstream requests are rate limited.
	ErrRateLimited = errors.New("rate limited")
	// ErrBudgetExceeded indicates the overall request budget has been exhausted.
	ErrBudgetExceeded = errors.New("budget exceeded")
	// ErrInvalidBudget indicates the provided budget is invalid.
	ErrInvalidBudget = errors.New("invalid budget")
)
