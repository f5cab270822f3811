// Package health serves the readiness probe.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ypacademy/answer_engine/cache"
)

// Pinger checks the content store connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Readyz returns an http.Handler that reports store readiness plus the
// current cache counters. cacheStats may be nil.
func Readyz(store Pinger, cacheStats func() map[string]cache.Stats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		err := store.Ping(r.Context())
		latency := time.Since(start)

		ok := err == nil && latency <= 200*time.Millisecond
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}

		payload := map[string]any{
			"store_ok":     err == nil,
			"last_ping_ms": latency.Milliseconds(),
		}
		if cacheStats != nil {
			payload["caches"] = cacheStats()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}
}
