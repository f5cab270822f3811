// Package rank scores and merges content candidates for a query. Per-kind
// ranked lists are fused with reciprocal rank fusion so mixed-type answers
// interleave drills and articles instead of concatenating them.
package rank

import (
	"sort"
	"strings"

	"github.com/ypacademy/answer_engine/internal/content"
)

// Scored pairs an enriched result with its relevance score in [0,1] for
// lexical scoring, or an RRF weight after fusion.
type Scored struct {
	Result content.EnrichedResult
	Score  float64
}

// List is the ordered output of one ranker, analogous to one retrieval
// source in a fusion step.
type List struct {
	Kind  content.Kind
	Items []Scored
}

// CombineConfig controls the fusion step.
type CombineConfig struct {
	// RRFK dampens the rank contribution: weight = 1/(RRFK+rank).
	RRFK int
	// Limit truncates the fused list; 0 means no truncation.
	Limit int
}

// DefaultCombineConfig returns the fusion defaults.
func DefaultCombineConfig() CombineConfig {
	return CombineConfig{RRFK: 60}
}

// Combine merges per-kind ranked lists with reciprocal rank fusion. Entity
// IDs are unique across kinds, so fusion never needs to merge payloads; it
// only interleaves. Output order is deterministic: fused score descending,
// then first rank ascending, then entity ID.
func Combine(lists []List, cfg CombineConfig) []Scored {
	if cfg.RRFK <= 0 {
		cfg.RRFK = DefaultCombineConfig().RRFK
	}

	type fused struct {
		item      Scored
		firstRank int
	}

	byID := make(map[string]*fused)
	order := make([]string, 0)

	for _, list := range lists {
		for idx, it := range list.Items {
			rank := idx + 1
			weight := 1.0 / float64(cfg.RRFK+rank)

			id := it.Result.Entity.ID()
			agg, ok := byID[id]
			if !ok {
				agg = &fused{
					item:      Scored{Result: it.Result},
					firstRank: rank,
				}
				byID[id] = agg
				order = append(order, id)
			}
			agg.item.Score += weight
		}
	}

	out := make([]Scored, 0, len(order))
	ranks := make(map[string]int, len(order))
	for _, id := range order {
		out = append(out, byID[id].item)
		ranks[id] = byID[id].firstRank
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i], out[j]
		if si.Score != sj.Score {
			return si.Score > sj.Score
		}
		ri, rj := ranks[si.Result.Entity.ID()], ranks[sj.Result.Entity.ID()]
		if ri != rj {
			return ri < rj
		}
		return si.Result.Entity.ID() < sj.Result.Entity.ID()
	})

	if cfg.Limit > 0 && len(out) > cfg.Limit {
		out = out[:cfg.Limit]
	}
	return out
}

// ScoreDrill computes a lexical relevance score for a drill against a query.
// Field weights follow the answer API's text matching: title carries the
// most, exact tag matches beat partial ones, description least.
func ScoreDrill(query string, d *content.Drill) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	var score float64
	if strings.Contains(strings.ToLower(d.Title), q) {
		score += 0.5
	}
	if containsFold(d.Tags, q, true) {
		score += 0.3
	}
	if containsFold(d.Tags, q, false) {
		score += 0.1
	}
	if strings.Contains(strings.ToLower(d.Category), q) {
		score += 0.2
	}
	if strings.Contains(strings.ToLower(d.Sport), q) {
		score += 0.15
	}
	if strings.Contains(strings.ToLower(d.Description), q) {
		score += 0.05
	}
	return clamp1(score)
}

// ScoreQnA computes a lexical relevance score for a Q&A entry.
func ScoreQnA(query string, a *content.QnA) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	var score float64
	if strings.Contains(strings.ToLower(a.Question), q) {
		score += 0.5
	}
	if containsFold(a.Keywords, q, true) {
		score += 0.3
	}
	if containsFold(a.Keywords, q, false) {
		score += 0.1
	}
	if strings.Contains(strings.ToLower(a.Category), q) {
		score += 0.2
	}
	if strings.Contains(strings.ToLower(a.DirectAnswer), q) {
		score += 0.1
	}
	return clamp1(score)
}

// ScoreExpert computes a lexical relevance score for an expert profile.
func ScoreExpert(query string, e *content.Expert) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	var score float64
	if strings.Contains(strings.ToLower(e.Name), q) {
		score += 0.5
	}
	if strings.Contains(strings.ToLower(e.Title), q) {
		score += 0.2
	}
	if containsFold(e.Credentials, q, false) {
		score += 0.2
	}
	if strings.Contains(strings.ToLower(e.Bio), q) {
		score += 0.1
	}
	return clamp1(score)
}

func containsFold(values []string, q string, exact bool) bool {
	for _, v := range values {
		v = strings.ToLower(v)
		if exact && v == q {
			return true
		}
		if !exact && strings.Contains(v, q) {
			return true
		}
	}
	return false
}

func clamp1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
