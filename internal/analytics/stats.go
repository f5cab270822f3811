package analytics

import (
	"math"
	"sort"

	"github.com/ypacademy/answer_engine/store"
)

// QueryCount pairs a query with how often it was seen in the window.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// RecentQuery is one recent retrieval summarized for the analytics view.
type RecentQuery struct {
	Query           string `json:"query"`
	Source          string `json:"source,omitempty"`
	ResultsReturned int    `json:"resultsReturned"`
	Timestamp       int64  `json:"timestamp"`
}

// Stats aggregates a window of retrieval records.
type Stats struct {
	TotalQueries  int            `json:"totalQueries"`
	AvgResults    float64        `json:"avgResults"`
	AvgResponseMs float64        `json:"avgResponseMs"`
	CacheHitRate  float64        `json:"cacheHitRate"`
	BySource      map[string]int `json:"bySource"`
	TopQueries    []QueryCount   `json:"topQueries"`
	RecentQueries []RecentQuery  `json:"recentQueries"`
}

const (
	topQueriesLimit    = 10
	recentQueriesLimit = 20
)

// ComputeStats aggregates the given records. Records are expected oldest
// first, as the event log returns them.
func ComputeStats(records []store.RetrievalRecord) Stats {
	stats := Stats{
		BySource:      map[string]int{},
		TopQueries:    []QueryCount{},
		RecentQueries: []RecentQuery{},
	}
	if len(records) == 0 {
		return stats
	}

	stats.TotalQueries = len(records)

	var sumResults, sumResponse, hits int
	counts := map[string]int{}
	for _, rec := range records {
		sumResults += rec.ResultsReturned
		sumResponse += rec.ResponseMs
		if rec.CacheHit {
			hits++
		}
		counts[rec.Query]++

		source := rec.Source
		if source == "" {
			source = "direct"
		}
		stats.BySource[source]++
	}

	total := float64(len(records))
	stats.AvgResults = round2(float64(sumResults) / total)
	stats.AvgResponseMs = round2(float64(sumResponse) / total)
	stats.CacheHitRate = round2(float64(hits) / total)

	for query, count := range counts {
		stats.TopQueries = append(stats.TopQueries, QueryCount{Query: query, Count: count})
	}
	sort.Slice(stats.TopQueries, func(i, j int) bool {
		if stats.TopQueries[i].Count != stats.TopQueries[j].Count {
			return stats.TopQueries[i].Count > stats.TopQueries[j].Count
		}
		return stats.TopQueries[i].Query < stats.TopQueries[j].Query
	})
	if len(stats.TopQueries) > topQueriesLimit {
		stats.TopQueries = stats.TopQueries[:topQueriesLimit]
	}

	for i := len(records) - 1; i >= 0 && len(stats.RecentQueries) < recentQueriesLimit; i-- {
		rec := records[i]
		stats.RecentQueries = append(stats.RecentQueries, RecentQuery{
			Query:           rec.Query,
			Source:          rec.Source,
			ResultsReturned: rec.ResultsReturned,
			Timestamp:       rec.CreatedAt.UnixMilli(),
		})
	}

	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
