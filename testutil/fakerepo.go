// Package testutil provides in-memory fakes for the content repository and
// the embedding upstream.
package testutil

import (
	"context"
	"sync"

	"github.com/ypacademy/answer_engine/internal/content"
)

// FakeRepo is an in-memory content repository with injectable failures and
// call counting.
type FakeRepo struct {
	mu      sync.Mutex
	Drills  []content.Drill
	QnA     []content.QnA
	Experts []content.Expert

	// Err, when set, is returned by every call.
	Err   error
	calls map[string]int
}

// NewFakeRepo returns an empty repository.
func NewFakeRepo() *FakeRepo {
	return &FakeRepo{calls: map[string]int{}}
}

// Calls reports how many times the named method ran.
func (r *FakeRepo) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

func (r *FakeRepo) record(method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[method]++
	return r.Err
}

func (r *FakeRepo) SearchDrills(_ context.Context, f content.DrillFilters, limit, offset int) ([]content.Drill, error) {
	if err := r.record("SearchDrills"); err != nil {
		return nil, err
	}

	var matched []content.Drill
	for _, d := range r.Drills {
		if f.Sport != "" && d.Sport != f.Sport {
			continue
		}
		if f.Category != "" && d.Category != f.Category {
			continue
		}
		if f.AgeYears > 0 && (d.AgeMin > f.AgeYears || d.AgeMax < f.AgeYears) {
			continue
		}
		if f.Difficulty != "" && d.Difficulty != f.Difficulty {
			continue
		}
		if f.Constraint != "" && !containsString(d.Constraints, f.Constraint) {
			continue
		}
		matched = append(matched, d)
	}
	return page(matched, limit, offset), nil
}

func (r *FakeRepo) SearchQnA(_ context.Context, category string, limit, offset int) ([]content.QnA, error) {
	if err := r.record("SearchQnA"); err != nil {
		return nil, err
	}

	var matched []content.QnA
	for _, q := range r.QnA {
		if category != "" && q.Category != category {
			continue
		}
		matched = append(matched, q)
	}
	return page(matched, limit, offset), nil
}

func (r *FakeRepo) ExpertBySlug(_ context.Context, slug string) (*content.Expert, error) {
	if err := r.record("ExpertBySlug"); err != nil {
		return nil, err
	}
	for i := range r.Experts {
		if r.Experts[i].Slug == slug && r.Experts[i].Active {
			e := r.Experts[i]
			return &e, nil
		}
	}
	return nil, content.ErrNotFound
}

func (r *FakeRepo) ListExperts(_ context.Context) ([]content.Expert, error) {
	if err := r.record("ListExperts"); err != nil {
		return nil, err
	}
	var active []content.Expert
	for _, e := range r.Experts {
		if e.Active {
			active = append(active, e)
		}
	}
	return active, nil
}

func (r *FakeRepo) AuthorsByID(_ context.Context, ids []string) (map[string]*content.Expert, error) {
	if err := r.record("AuthorsByID"); err != nil {
		return nil, err
	}
	authors := make(map[string]*content.Expert, len(ids))
	for _, id := range ids {
		for i := range r.Experts {
			if r.Experts[i].ID == id {
				e := r.Experts[i]
				authors[id] = &e
				break
			}
		}
	}
	return authors, nil
}

func (r *FakeRepo) AuthorContentCount(_ context.Context, authorID string) (content.ContentCount, error) {
	if err := r.record("AuthorContentCount"); err != nil {
		return content.ContentCount{}, err
	}
	var count content.ContentCount
	for _, d := range r.Drills {
		if d.AuthorID == authorID {
			count.Drills++
		}
	}
	for _, q := range r.QnA {
		if q.AuthorID == authorID {
			count.Articles++
		}
	}
	return count, nil
}

func (r *FakeRepo) AuthorTopics(_ context.Context, authorID string) ([]string, error) {
	if err := r.record("AuthorTopics"); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var topics []string
	for _, d := range r.Drills {
		if d.AuthorID == authorID && d.Category != "" && !seen[d.Category] {
			seen[d.Category] = true
			topics = append(topics, d.Category)
		}
	}
	for _, q := range r.QnA {
		if q.AuthorID == authorID && q.Category != "" && !seen[q.Category] {
			seen[q.Category] = true
			topics = append(topics, q.Category)
		}
	}
	return topics, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
