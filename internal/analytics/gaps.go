package analytics

import (
	"sort"

	"github.com/ypacademy/answer_engine/store"
)

// Gap is a query that repeatedly yielded too few results, indicating
// missing content. Derived on demand, never persisted.
type Gap struct {
	Query       string  `json:"query"`
	Occurrences int     `json:"occurrences"`
	AvgResults  float64 `json:"avgResults"`
}

// Fixed threshold policy: fewer than poorResultsThreshold results marks a
// retrieval as poor, and a query needs at least minOccurrences poor
// retrievals to count as a gap.
const (
	poorResultsThreshold = 3
	minOccurrences       = 2
)

// FindGaps buckets poor retrievals by exact query string and returns the
// most frequent gaps, capped at limit. Records outside the caller's window
// must already be filtered out.
func FindGaps(records []store.RetrievalRecord, limit int) []Gap {
	type bucket struct {
		occurrences int
		sumResults  int
	}
	buckets := map[string]*bucket{}

	for _, rec := range records {
		if rec.ResultsReturned >= poorResultsThreshold {
			continue
		}
		b, ok := buckets[rec.Query]
		if !ok {
			b = &bucket{}
			buckets[rec.Query] = b
		}
		b.occurrences++
		b.sumResults += rec.ResultsReturned
	}

	gaps := []Gap{}
	for query, b := range buckets {
		if b.occurrences < minOccurrences {
			continue
		}
		gaps = append(gaps, Gap{
			Query:       query,
			Occurrences: b.occurrences,
			AvgResults:  round2(float64(b.sumResults) / float64(b.occurrences)),
		})
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Occurrences != gaps[j].Occurrences {
			return gaps[i].Occurrences > gaps[j].Occurrences
		}
		return gaps[i].Query < gaps[j].Query
	})

	if limit > 0 && len(gaps) > limit {
		gaps = gaps[:limit]
	}
	return gaps
}
