// Package api wires the public HTTP surface of the answer engine: the
// answer, drills, experts, qna, and analytics endpoints plus liveness
// probes. Handlers translate retrieval and analytics results into the
// stable JSON envelopes third parties consume.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ypacademy/answer_engine/internal/analytics"
	"github.com/ypacademy/answer_engine/internal/retrieval"
	"github.com/ypacademy/answer_engine/internal/schema"
	"github.com/ypacademy/answer_engine/obs"
	"github.com/ypacademy/answer_engine/policy"
)

const traceHeader = "X-Trace-Id"

// Config carries the router's collaborators. Service, Projector, and
// Analyzer are required; Events and Ready are optional.
type Config struct {
	Service   *retrieval.Service
	Projector *schema.Projector
	Analyzer  *analytics.Analyzer
	// Events receives asynchronous retrieval log records; nil disables
	// logging.
	Events *analytics.Logger
	// Ready serves GET /readyz when set.
	Ready http.HandlerFunc
	// Metrics receives budget-hit counts; nil disables them.
	Metrics *policy.Metrics
	// DocsURL is advertised in response metadata.
	DocsURL string
	Log     *slog.Logger
}

// Router holds the handler state behind the chi mux.
type Router struct {
	svc       *retrieval.Service
	projector *schema.Projector
	analyzer  *analytics.Analyzer
	events    *analytics.Logger
	metrics   *policy.Metrics
	docsURL   string
	log       *slog.Logger
	now       func() time.Time
}

// NewRouter constructs the HTTP router.
func NewRouter(cfg Config) (*chi.Mux, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("retrieval service is required")
	}
	if cfg.Projector == nil {
		return nil, fmt.Errorf("schema projector is required")
	}
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("analytics analyzer is required")
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	rt := &Router{
		svc:       cfg.Service,
		projector: cfg.Projector,
		analyzer:  cfg.Analyzer,
		events:    cfg.Events,
		metrics:   cfg.Metrics,
		docsURL:   cfg.DocsURL,
		log:       cfg.Log,
		now:       time.Now,
	}

	mux := chi.NewRouter()
	mux.Use(traceMiddleware)

	mux.Get("/healthz", rt.handleHealthz)
	if cfg.Ready != nil {
		mux.Get("/readyz", cfg.Ready)
	}

	mux.Route("/answer-engine", func(r chi.Router) {
		r.Get("/answer", rt.handleAnswer)
		r.Get("/drills", rt.handleDrills)
		r.Get("/experts", rt.handleExperts)
		r.Get("/qna", rt.handleQnA)
		r.Get("/analytics", rt.handleAnalytics)
	})

	return mux, nil
}

func (rt *Router) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// traceMiddleware assigns each request a trace identifier and records the
// request observation once the handler completes.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set(traceHeader, traceID)
		ctx := ContextWithTraceID(r.Context(), traceID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		obs.ObserveRequest(r.URL.Path, strconv.Itoa(status), time.Since(start), traceID)
	})
}

// cacheHeaders sets the CDN caching policy on content responses. Hits may
// be cached longer than misses.
func cacheHeaders(w http.ResponseWriter, hit bool) {
	maxAge := 60
	if hit {
		maxAge = 120
	}
	w.Header().Set("Cache-Control",
		fmt.Sprintf("public, max-age=%d, s-maxage=%d, stale-while-revalidate=300", maxAge, maxAge))
	w.Header().Set("CDN-Cache-Control", fmt.Sprintf("max-age=%d", maxAge))
	status := retrieval.CacheMiss
	if hit {
		status = retrieval.CacheHit
	}
	w.Header().Set("X-Cache-Status", status)
}

// noCacheHeaders marks a response as never cacheable.
func noCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	writeJSON(w, status, body)
}

func parseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	num, err := strconv.Atoi(value)
	if err != nil || num <= 0 {
		return fallback
	}
	return num
}
