package analytics

import "testing"

func TestScoreHealthVacuousWindow(t *testing.T) {
	health := ScoreHealth(Stats{}, 0)
	if health.Score != 100 {
		t.Errorf("score = %d, want 100", health.Score)
	}
	if health.Status != "excellent" {
		t.Errorf("status = %q, want excellent", health.Status)
	}
}

func TestScoreHealthCoverageMonotonic(t *testing.T) {
	base := Stats{TotalQueries: 10, AvgResults: 2, AvgResponseMs: 100}
	better := Stats{TotalQueries: 10, AvgResults: 5, AvgResponseMs: 100}

	low := ScoreHealth(base, 0)
	high := ScoreHealth(better, 0)

	if high.Factors[0].Score <= low.Factors[0].Score {
		t.Errorf("coverage did not increase: %v -> %v", low.Factors[0].Score, high.Factors[0].Score)
	}
	if high.Score <= low.Score {
		t.Errorf("overall score did not increase: %d -> %d", low.Score, high.Score)
	}
}

func TestScoreHealthFactors(t *testing.T) {
	// Coverage 40, performance 90, gap ratio 50: weighted sum 58, "fair".
	stats := Stats{TotalQueries: 10, AvgResults: 2, AvgResponseMs: 100}
	health := ScoreHealth(stats, 1)

	if len(health.Factors) != 3 {
		t.Fatalf("expected 3 factors, got %d", len(health.Factors))
	}
	if health.Factors[0].Score != 40 {
		t.Errorf("coverage = %v, want 40", health.Factors[0].Score)
	}
	if health.Factors[1].Score != 90 {
		t.Errorf("performance = %v, want 90", health.Factors[1].Score)
	}
	if health.Factors[2].Score != 50 {
		t.Errorf("gap ratio = %v, want 50", health.Factors[2].Score)
	}
	if health.Score != 58 {
		t.Errorf("score = %d, want 58", health.Score)
	}
	if health.Status != "fair" {
		t.Errorf("status = %q, want fair", health.Status)
	}
}

func TestScoreHealthSaturation(t *testing.T) {
	// Very slow responses floor performance at 0.
	slow := ScoreHealth(Stats{TotalQueries: 5, AvgResults: 6, AvgResponseMs: 2000}, 0)
	if slow.Factors[1].Score != 0 {
		t.Errorf("performance = %v, want 0", slow.Factors[1].Score)
	}
	// High average results cap coverage at 100.
	if slow.Factors[0].Score != 100 {
		t.Errorf("coverage = %v, want 100", slow.Factors[0].Score)
	}
}

func TestHealthStatusBuckets(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, "excellent"},
		{85, "excellent"},
		{84, "good"},
		{70, "good"},
		{69, "fair"},
		{50, "fair"},
		{49, "poor"},
		{0, "poor"},
	}
	for _, tc := range cases {
		if got := healthStatus(tc.score); got != tc.want {
			t.Errorf("healthStatus(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
