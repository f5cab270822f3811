package retrieval

import (
	"context"
	"strconv"

	"github.com/ypacademy/answer_engine/cache"
	"github.com/ypacademy/answer_engine/internal/content"
)

// DrillsPage is one page of filtered drills.
type DrillsPage struct {
	Drills      []content.EnrichedResult
	HasMore     bool
	NextCursor  string
	Total       int
	CacheStatus string
}

const defaultBrowseLimit = 20

// Drills returns a filtered drill page. Pages are cached per filter
// combination and offset.
func (s *Service) Drills(ctx context.Context, f content.DrillFilters, limit int, cursor string) (DrillsPage, error) {
	if limit <= 0 {
		limit = defaultBrowseLimit
	}
	if limit > s.cfg.BrowseMaxLimit {
		limit = s.cfg.BrowseMaxLimit
	}

	offset, err := DecodeCursor(cursor)
	if err != nil {
		return DrillsPage{}, err
	}

	key := cache.Key("", "drills",
		f.Sport, f.Category, strconv.Itoa(f.AgeYears), f.Difficulty, f.Constraint,
		strconv.Itoa(limit), strconv.Itoa(offset))

	if cached, ok := s.probeResponses(key); ok {
		return drillsPage(cached.Results, limit, offset, CacheHit), nil
	}

	var drills []content.Drill
	err = guarded(ctx, s.catalogGuard, func(ctx context.Context) error {
		var err error
		drills, err = s.repo.SearchDrills(ctx, f, limit, offset)
		return err
	})
	if err != nil {
		return DrillsPage{}, unavailable(err)
	}

	entities := make([]content.Entity, len(drills))
	for i := range drills {
		entities[i] = content.Entity{Kind: content.KindDrill, Drill: &drills[i]}
	}
	results, err := s.enrich(ctx, entities)
	if err != nil {
		return DrillsPage{}, err
	}

	s.storeResponses(key, CachedResponse{Results: results})
	return drillsPage(results, limit, offset, CacheMiss), nil
}

func drillsPage(results []content.EnrichedResult, limit, offset int, status string) DrillsPage {
	page := DrillsPage{
		Drills:      results,
		Total:       len(results),
		HasMore:     len(results) == limit,
		CacheStatus: status,
	}
	if page.HasMore {
		page.NextCursor = EncodeCursor(offset + limit)
	}
	return page
}

// QnAPage is one page of Q&A entries.
type QnAPage struct {
	Entries     []content.EnrichedResult
	CacheStatus string
}

// QnA returns Q&A entries, optionally narrowed to a category.
func (s *Service) QnA(ctx context.Context, category string, limit int) (QnAPage, error) {
	if limit <= 0 {
		limit = defaultBrowseLimit
	}
	if limit > s.cfg.BrowseMaxLimit {
		limit = s.cfg.BrowseMaxLimit
	}

	key := cache.Key("", "qna", category, strconv.Itoa(limit))
	if cached, ok := s.probeResponses(key); ok {
		return QnAPage{Entries: cached.Results, CacheStatus: CacheHit}, nil
	}

	var entries []content.QnA
	err := guarded(ctx, s.catalogGuard, func(ctx context.Context) error {
		var err error
		entries, err = s.repo.SearchQnA(ctx, category, limit, 0)
		return err
	})
	if err != nil {
		return QnAPage{}, unavailable(err)
	}

	entities := make([]content.Entity, len(entries))
	for i := range entries {
		entities[i] = content.Entity{Kind: content.KindQnA, QnA: &entries[i]}
	}
	results, err := s.enrich(ctx, entities)
	if err != nil {
		return QnAPage{}, err
	}

	s.storeResponses(key, CachedResponse{Results: results})
	return QnAPage{Entries: results, CacheStatus: CacheMiss}, nil
}

// ExpertProfile is an expert plus the published-content aggregates the
// public profile shows.
type ExpertProfile struct {
	Expert content.Expert
	Count  content.ContentCount
	Topics []string
}

// Expert returns one expert profile by slug. Unknown slugs return
// content.ErrNotFound unchanged; upstream failures become ErrUnavailable.
func (s *Service) Expert(ctx context.Context, slug string) (ExpertProfile, error) {
	var profile ExpertProfile
	err := guarded(ctx, s.catalogGuard, func(ctx context.Context) error {
		expert, err := s.repo.ExpertBySlug(ctx, slug)
		if err != nil {
			return err
		}
		profile.Expert = *expert
		if profile.Count, err = s.repo.AuthorContentCount(ctx, expert.ID); err != nil {
			return err
		}
		profile.Topics, err = s.repo.AuthorTopics(ctx, expert.ID)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return ExpertProfile{}, content.ErrNotFound
		}
		return ExpertProfile{}, unavailable(err)
	}
	return profile, nil
}

// Experts returns all active expert profiles.
func (s *Service) Experts(ctx context.Context) ([]ExpertProfile, error) {
	var profiles []ExpertProfile
	err := guarded(ctx, s.catalogGuard, func(ctx context.Context) error {
		experts, err := s.repo.ListExperts(ctx)
		if err != nil {
			return err
		}
		profiles = make([]ExpertProfile, len(experts))
		for i, expert := range experts {
			profiles[i].Expert = expert
			if profiles[i].Count, err = s.repo.AuthorContentCount(ctx, expert.ID); err != nil {
				return err
			}
			if profiles[i].Topics, err = s.repo.AuthorTopics(ctx, expert.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, unavailable(err)
	}
	return profiles, nil
}
