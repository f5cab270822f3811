//go:build nometrics

package obs

import (
	"context"
	"time"
)

func ObserveRequest(string, string, time.Duration, string) {}

func RecordCacheLookup(string, bool) {}

func SetCacheStats(string, int, float64) {}

func RecordLogFailure(string) {}

func InitTracer(string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
