package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/ypacademy/answer_engine/store"
)

// EventReader is the read-only half of the event log.
type EventReader interface {
	RetrievalsSince(ctx context.Context, since time.Time) ([]store.RetrievalRecord, error)
}

// Period describes the trailing window a report covers.
type Period struct {
	Days  int    `json:"days"`
	Since string `json:"since"`
}

// Summary is the headline numbers for the overview report.
type Summary struct {
	TotalQueries  int     `json:"totalQueries"`
	AvgResults    float64 `json:"avgResultsPerQuery"`
	AvgResponseMs float64 `json:"avgResponseTimeMs"`
	CacheHitRate  float64 `json:"cacheHitRate"`
}

// OverviewReport answers the analytics overview view.
type OverviewReport struct {
	View       string         `json:"view"`
	Period     Period         `json:"period"`
	Summary    Summary        `json:"summary"`
	BySource   map[string]int `json:"bySource"`
	TopQueries []QueryCount   `json:"topQueries"`
	TopGaps    []Gap          `json:"topGaps"`
	Health     HealthScore    `json:"health"`
}

// GapsReport answers the gaps view.
type GapsReport struct {
	View     string   `json:"view"`
	Period   Period   `json:"period"`
	Gaps     []Gap    `json:"gaps"`
	Insights []string `json:"insights"`
}

// QueriesReport answers the queries view.
type QueriesReport struct {
	View          string         `json:"view"`
	Period        Period         `json:"period"`
	TopQueries    []QueryCount   `json:"topQueries"`
	RecentQueries []RecentQuery  `json:"recentQueries"`
	BySource      map[string]int `json:"bySource"`
}

const (
	overviewGapLimit = 10
	gapsViewLimit    = 50
)

// Analyzer derives gap and health reports from the durable event log. It
// only reads; ongoing writes are fine since the aggregates are statistical.
type Analyzer struct {
	reader EventReader
	now    func() time.Time
}

// NewAnalyzer constructs an Analyzer over the given event log reader.
func NewAnalyzer(reader EventReader) *Analyzer {
	return &Analyzer{reader: reader, now: time.Now}
}

func (a *Analyzer) window(days int) (time.Time, Period) {
	if days <= 0 {
		days = 7
	}
	since := a.now().Add(-time.Duration(days) * 24 * time.Hour)
	return since, Period{Days: days, Since: since.UTC().Format(time.RFC3339)}
}

// Overview computes the full overview report for the trailing window.
func (a *Analyzer) Overview(ctx context.Context, days int) (OverviewReport, error) {
	since, period := a.window(days)
	records, err := a.reader.RetrievalsSince(ctx, since)
	if err != nil {
		return OverviewReport{}, fmt.Errorf("scan retrieval log: %w", err)
	}

	stats := ComputeStats(records)
	gaps := FindGaps(records, overviewGapLimit)

	return OverviewReport{
		View:   "overview",
		Period: period,
		Summary: Summary{
			TotalQueries:  stats.TotalQueries,
			AvgResults:    stats.AvgResults,
			AvgResponseMs: stats.AvgResponseMs,
			CacheHitRate:  stats.CacheHitRate,
		},
		BySource:   stats.BySource,
		TopQueries: stats.TopQueries,
		TopGaps:    gaps,
		Health:     ScoreHealth(stats, len(gaps)),
	}, nil
}

// Gaps computes the gaps report for the trailing window.
func (a *Analyzer) Gaps(ctx context.Context, days int) (GapsReport, error) {
	since, period := a.window(days)
	records, err := a.reader.RetrievalsSince(ctx, since)
	if err != nil {
		return GapsReport{}, fmt.Errorf("scan retrieval log: %w", err)
	}

	gaps := FindGaps(records, gapsViewLimit)
	return GapsReport{
		View:     "gaps",
		Period:   period,
		Gaps:     gaps,
		Insights: GapInsights(gaps),
	}, nil
}

// Queries computes the query activity report for the trailing window.
func (a *Analyzer) Queries(ctx context.Context, days int) (QueriesReport, error) {
	since, period := a.window(days)
	records, err := a.reader.RetrievalsSince(ctx, since)
	if err != nil {
		return QueriesReport{}, fmt.Errorf("scan retrieval log: %w", err)
	}

	stats := ComputeStats(records)
	return QueriesReport{
		View:          "queries",
		Period:        period,
		TopQueries:    stats.TopQueries,
		RecentQueries: stats.RecentQueries,
		BySource:      stats.BySource,
	}, nil
}
