package analytics

import "math"

// HealthFactor is one weighted component of the health score.
type HealthFactor struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// HealthScore is the composite content health signal, recomputed on every
// analytics request from the current log window.
type HealthScore struct {
	Score   int            `json:"score"`
	Status  string         `json:"status"`
	Factors []HealthFactor `json:"factors"`
}

const (
	coverageWeight    = 0.4
	performanceWeight = 0.3
	gapRatioWeight    = 0.3
)

// ScoreHealth combines coverage, performance, and gap prevalence into a
// single 0-100 score. A window with no queries scores a vacuous 100.
func ScoreHealth(stats Stats, gapCount int) HealthScore {
	coverage := math.Min(100, stats.AvgResults*20)
	performance := math.Max(0, 100-stats.AvgResponseMs/10)

	gapRatio := 100.0
	if stats.TotalQueries > 0 {
		gapRatio = math.Max(0, 100-float64(gapCount)/float64(stats.TotalQueries)*500)
	} else {
		// No traffic means nothing is failing.
		coverage = 100
		performance = 100
	}

	weighted := coverage*coverageWeight + performance*performanceWeight + gapRatio*gapRatioWeight
	score := int(math.Round(weighted))

	return HealthScore{
		Score:  score,
		Status: healthStatus(score),
		Factors: []HealthFactor{
			{Name: "coverage", Score: round2(coverage), Weight: coverageWeight},
			{Name: "performance", Score: round2(performance), Weight: performanceWeight},
			{Name: "gapRatio", Score: round2(gapRatio), Weight: gapRatioWeight},
		},
	}
}

func healthStatus(score int) string {
	switch {
	case score >= 85:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "poor"
	}
}
