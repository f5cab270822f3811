package retrieval

import (
	"context"
	"sort"
	"strconv"

	"github.com/ypacademy/answer_engine/cache"
	"github.com/ypacademy/answer_engine/embed"
	"github.com/ypacademy/answer_engine/internal/content"
	"github.com/ypacademy/answer_engine/obs"
	"github.com/ypacademy/answer_engine/rank"
)

// AnswerRequest is one ranked retrieval query.
type AnswerRequest struct {
	Query string
	// Kind narrows results to one content kind; empty means all kinds.
	Kind content.Kind
	// Limit caps returned results; zero means the default page size.
	Limit int
	// SkipCache bypasses the response cache probe and fill.
	SkipCache bool
}

// AnswerResult carries ranked, author-enriched results plus the metadata
// the HTTP layer reports.
type AnswerResult struct {
	Results         []content.EnrichedResult
	CacheStatus     string
	SearchMethod    string
	EmbeddingCached bool
	TotalCandidates int
}

const defaultAnswerLimit = 5

// Answer runs the full retrieval pipeline for a query.
func (s *Service) Answer(ctx context.Context, req AnswerRequest) (AnswerResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultAnswerLimit
	}
	if limit > s.cfg.AnswerMaxLimit {
		limit = s.cfg.AnswerMaxLimit
	}

	kindDim := "all"
	if req.Kind != "" {
		kindDim = string(req.Kind)
	}
	key := cache.Key(req.Query, "answer", kindDim, strconv.Itoa(limit))

	if !req.SkipCache {
		if cached, ok := s.probeResponses(key); ok {
			return AnswerResult{
				Results:         cached.Results,
				CacheStatus:     CacheHit,
				SearchMethod:    cached.Method,
				TotalCandidates: cached.Total,
			}, nil
		}
	}

	queryVec, method, embedCached := s.queryVector(ctx, req.Query)

	lists, total, err := s.rankedLists(ctx, req, queryVec, limit)
	if err != nil {
		return AnswerResult{}, err
	}

	fused := rank.Combine(lists, rank.CombineConfig{Limit: limit})
	entities := make([]content.Entity, len(fused))
	for i, sc := range fused {
		entities[i] = sc.Result.Entity
	}

	results, err := s.enrich(ctx, entities)
	if err != nil {
		return AnswerResult{}, err
	}

	if !req.SkipCache {
		s.storeResponses(key, CachedResponse{Results: results, Method: method, Total: total})
	}

	return AnswerResult{
		Results:         results,
		CacheStatus:     CacheMiss,
		SearchMethod:    method,
		EmbeddingCached: embedCached,
		TotalCandidates: total,
	}, nil
}

// queryVector resolves the query embedding through the vector cache and the
// embedding upstream. Failures degrade to lexical ranking, never to a
// request error.
func (s *Service) queryVector(ctx context.Context, query string) ([]float32, string, bool) {
	if s.embedder == nil {
		return nil, MethodLexical, false
	}

	key := cache.Normalize(query)
	if s.embedCache != nil {
		if vec, ok := s.embedCache.Get(key); ok {
			obs.RecordCacheLookup("embeddings", true)
			return vec, MethodVectorCached, true
		}
		obs.RecordCacheLookup("embeddings", false)
	}

	var vec []float32
	err := guarded(ctx, s.embedGuard, func(ctx context.Context) error {
		var err error
		vec, err = s.embedder.Embed(ctx, query)
		return err
	})
	if err != nil {
		s.log.Warn("embedding upstream failed, ranking lexically", "error", err)
		return nil, MethodLexicalFall, false
	}

	if s.embedCache != nil {
		s.embedCache.Set(key, vec)
	}
	return vec, MethodVector, false
}

// rankedLists fetches candidates per kind and scores them. The catalog is
// overscanned so ranking has enough candidates to reorder.
func (s *Service) rankedLists(ctx context.Context, req AnswerRequest, queryVec []float32, limit int) ([]rank.List, int, error) {
	fetch := limit * s.cfg.Overscan
	var (
		lists []rank.List
		total int
	)

	if req.Kind == "" || req.Kind == content.KindDrill {
		var drills []content.Drill
		err := guarded(ctx, s.catalogGuard, func(ctx context.Context) error {
			var err error
			drills, err = s.repo.SearchDrills(ctx, content.DrillFilters{}, fetch, 0)
			return err
		})
		if err != nil {
			return nil, 0, unavailable(err)
		}
		total += len(drills)
		lists = append(lists, scoreDrills(req.Query, queryVec, drills))
	}

	if req.Kind == "" || req.Kind == content.KindQnA {
		var entries []content.QnA
		err := guarded(ctx, s.catalogGuard, func(ctx context.Context) error {
			var err error
			entries, err = s.repo.SearchQnA(ctx, "", fetch, 0)
			return err
		})
		if err != nil {
			return nil, 0, unavailable(err)
		}
		total += len(entries)
		lists = append(lists, scoreQnA(req.Query, queryVec, entries))
	}

	if req.Kind == content.KindExpert {
		var experts []content.Expert
		err := guarded(ctx, s.catalogGuard, func(ctx context.Context) error {
			var err error
			experts, err = s.repo.ListExperts(ctx)
			return err
		})
		if err != nil {
			return nil, 0, unavailable(err)
		}
		total += len(experts)
		lists = append(lists, scoreExperts(req.Query, experts))
	}

	return lists, total, nil
}

func scoreDrills(query string, queryVec []float32, drills []content.Drill) rank.List {
	items := make([]rank.Scored, 0, len(drills))
	for i := range drills {
		d := &drills[i]
		score := rank.ScoreDrill(query, d)
		if queryVec != nil && len(d.Embedding) > 0 {
			score = embed.CosineSimilarity(queryVec, d.Embedding)
		}
		if score <= 0 {
			continue
		}
		items = append(items, rank.Scored{
			Result: content.EnrichedResult{Entity: content.Entity{Kind: content.KindDrill, Drill: d}},
			Score:  score,
		})
	}
	sortScored(items)
	return rank.List{Kind: content.KindDrill, Items: items}
}

func scoreQnA(query string, queryVec []float32, entries []content.QnA) rank.List {
	items := make([]rank.Scored, 0, len(entries))
	for i := range entries {
		q := &entries[i]
		score := rank.ScoreQnA(query, q)
		if queryVec != nil && len(q.Embedding) > 0 {
			score = embed.CosineSimilarity(queryVec, q.Embedding)
		}
		if score <= 0 {
			continue
		}
		items = append(items, rank.Scored{
			Result: content.EnrichedResult{Entity: content.Entity{Kind: content.KindQnA, QnA: q}},
			Score:  score,
		})
	}
	sortScored(items)
	return rank.List{Kind: content.KindQnA, Items: items}
}

func scoreExperts(query string, experts []content.Expert) rank.List {
	items := make([]rank.Scored, 0, len(experts))
	for i := range experts {
		e := &experts[i]
		score := rank.ScoreExpert(query, e)
		if score <= 0 {
			continue
		}
		items = append(items, rank.Scored{
			Result: content.EnrichedResult{Entity: content.Entity{Kind: content.KindExpert, Expert: e}},
			Score:  score,
		})
	}
	sortScored(items)
	return rank.List{Kind: content.KindExpert, Items: items}
}

func sortScored(items []rank.Scored) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Result.Entity.ID() < items[j].Result.Entity.ID()
	})
}
