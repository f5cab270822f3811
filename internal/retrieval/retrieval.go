// Package retrieval implements the query path of the answer engine: cache
// probe, catalog fetch, ranking, author enrichment, and cache fill. All
// upstream access goes through resilience guards; upstream failures surface
// as ErrUnavailable and are never cached.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ypacademy/answer_engine/cache"
	"github.com/ypacademy/answer_engine/embed"
	"github.com/ypacademy/answer_engine/internal/content"
	"github.com/ypacademy/answer_engine/obs"
	"github.com/ypacademy/answer_engine/policy"
)

// ErrUnavailable indicates the content repository or the ranking upstream
// failed or timed out. The original cause is attached for diagnostics.
var ErrUnavailable = errors.New("retrieval upstream unavailable")

// Repository is the narrow read-only view of the content catalog the
// service needs. The query path never writes content.
type Repository interface {
	SearchDrills(ctx context.Context, f content.DrillFilters, limit, offset int) ([]content.Drill, error)
	SearchQnA(ctx context.Context, category string, limit, offset int) ([]content.QnA, error)
	ExpertBySlug(ctx context.Context, slug string) (*content.Expert, error)
	ListExperts(ctx context.Context) ([]content.Expert, error)
	AuthorsByID(ctx context.Context, ids []string) (map[string]*content.Expert, error)
	AuthorContentCount(ctx context.Context, authorID string) (content.ContentCount, error)
	AuthorTopics(ctx context.Context, authorID string) ([]string, error)
}

// Cache status values reported back to the HTTP layer.
const (
	CacheHit  = "HIT"
	CacheMiss = "MISS"
)

// Search method labels reported in response metadata.
const (
	MethodVector       = "vector"
	MethodVectorCached = "vector_cached"
	MethodLexical      = "lexical"
	MethodLexicalFall  = "lexical_fallback"
)

// Config bounds the service. Zero values fall back to defaults.
type Config struct {
	// AnswerMaxLimit caps the answer endpoint page size.
	AnswerMaxLimit int
	// BrowseMaxLimit caps the drills/qna page sizes.
	BrowseMaxLimit int
	// Overscan multiplies the requested limit when fetching ranking
	// candidates from the catalog.
	Overscan int
}

func (c Config) withDefaults() Config {
	if c.AnswerMaxLimit <= 0 {
		c.AnswerMaxLimit = 20
	}
	if c.BrowseMaxLimit <= 0 {
		c.BrowseMaxLimit = 100
	}
	if c.Overscan <= 0 {
		c.Overscan = 3
	}
	return c
}

// CachedResponse is one response-cache entry: the enriched results plus the
// metadata that described the fill, so a later hit reports how the cached
// entry was actually produced.
type CachedResponse struct {
	Results []content.EnrichedResult
	Method  string
	Total   int
}

// Service is the retrieval pipeline. Both caches are owned by the caller
// and injected; the service never constructs ambient global state.
type Service struct {
	cfg          Config
	repo         Repository
	embedder     embed.Embedder
	respCache    *cache.Cache[CachedResponse]
	embedCache   *cache.Cache[[]float32]
	catalogGuard *policy.Guard
	embedGuard   *policy.Guard
	log          *slog.Logger

	now func() time.Time
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithEmbedder enables the vector ranking path. Without it the service
// ranks lexically.
func WithEmbedder(e embed.Embedder, guard *policy.Guard, vectors *cache.Cache[[]float32]) Option {
	return func(s *Service) {
		s.embedder = e
		s.embedGuard = guard
		s.embedCache = vectors
	}
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// NewService wires the retrieval pipeline.
func NewService(cfg Config, repo Repository, responses *cache.Cache[CachedResponse], catalogGuard *policy.Guard, opts ...Option) *Service {
	s := &Service{
		cfg:          cfg.withDefaults(),
		repo:         repo,
		respCache:    responses,
		catalogGuard: catalogGuard,
		log:          slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// guarded runs fn through the guard when one is configured.
func guarded(ctx context.Context, guard *policy.Guard, fn func(context.Context) error) error {
	if guard == nil {
		return fn(ctx)
	}
	return guard.Execute(ctx, fn)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, content.ErrNotFound)
}

// probeResponses checks the response cache and records the lookup.
func (s *Service) probeResponses(key string) (CachedResponse, bool) {
	if s.respCache == nil {
		return CachedResponse{}, false
	}
	cached, ok := s.respCache.Get(key)
	obs.RecordCacheLookup("responses", ok)
	return cached, ok
}

func (s *Service) storeResponses(key string, resp CachedResponse) {
	if s.respCache == nil {
		return
	}
	s.respCache.Set(key, resp)
}

// enrich zips entities with their author records in one batch lookup. A
// missing author leaves the result with a nil Author rather than failing.
func (s *Service) enrich(ctx context.Context, entities []content.Entity) ([]content.EnrichedResult, error) {
	seen := map[string]bool{}
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		id := e.AuthorID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	var authors map[string]*content.Expert
	err := guarded(ctx, s.catalogGuard, func(ctx context.Context) error {
		var err error
		authors, err = s.repo.AuthorsByID(ctx, ids)
		return err
	})
	if err != nil {
		return nil, unavailable(err)
	}

	results := make([]content.EnrichedResult, len(entities))
	for i, e := range entities {
		results[i] = content.EnrichedResult{
			Entity: e,
			Author: authors[e.AuthorID()],
		}
	}
	return results, nil
}
