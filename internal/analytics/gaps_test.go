package analytics

import (
	"testing"

	"github.com/ypacademy/answer_engine/store"
)

func retrievals(query string, results ...int) []store.RetrievalRecord {
	records := make([]store.RetrievalRecord, 0, len(results))
	for _, r := range results {
		records = append(records, store.RetrievalRecord{Query: query, ResultsReturned: r})
	}
	return records
}

func TestFindGapsThreshold(t *testing.T) {
	// Only the two poor retrievals (0 and 2 results) count toward the gap.
	gaps := FindGaps(retrievals("ankle pops", 0, 2, 5), 10)

	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	gap := gaps[0]
	if gap.Occurrences != 2 {
		t.Errorf("occurrences = %d, want 2", gap.Occurrences)
	}
	if gap.AvgResults != 1.0 {
		t.Errorf("avgResults = %v, want 1.0", gap.AvgResults)
	}
}

func TestFindGapsSingleOccurrenceExcluded(t *testing.T) {
	gaps := FindGaps(retrievals("one-off query", 0), 10)
	if len(gaps) != 0 {
		t.Fatalf("expected no gaps, got %v", gaps)
	}
}

func TestFindGapsSortAndLimit(t *testing.T) {
	records := retrievals("frequent", 0, 0, 0)
	records = append(records, retrievals("less frequent", 1, 1)...)
	records = append(records, retrievals("also less frequent", 2, 2)...)

	gaps := FindGaps(records, 2)
	if len(gaps) != 2 {
		t.Fatalf("expected 2 gaps, got %d", len(gaps))
	}
	if gaps[0].Query != "frequent" {
		t.Errorf("expected most frequent gap first, got %q", gaps[0].Query)
	}
	// Ties break alphabetically for deterministic output.
	if gaps[1].Query != "also less frequent" {
		t.Errorf("expected alphabetical tie-break, got %q", gaps[1].Query)
	}
}

func TestFindGapsCasePreserved(t *testing.T) {
	records := append(retrievals("Ankle Pops", 0, 0), retrievals("ankle pops", 0, 0)...)
	gaps := FindGaps(records, 10)
	if len(gaps) != 2 {
		t.Fatalf("expected distinct buckets per exact query, got %d", len(gaps))
	}
}

func TestGapInsights(t *testing.T) {
	empty := GapInsights(nil)
	if len(empty) != 1 || empty[0] != "No significant content gaps detected. Great coverage!" {
		t.Fatalf("empty insights = %v", empty)
	}

	gaps := []Gap{
		{Query: "barefoot ankle strength", Occurrences: 6, AvgResults: 0},
		{Query: "volleyball warmup", Occurrences: 2, AvgResults: 1.5},
	}
	insights := GapInsights(gaps)
	if len(insights) != 3 {
		t.Fatalf("expected 3 insights, got %v", insights)
	}
	if insights[0] != "1 queries appear 5+ times with poor results. Priority content opportunities." {
		t.Errorf("high-frequency insight = %q", insights[0])
	}
	if insights[1] != `1 queries return zero results. Consider creating content for: "barefoot ankle strength"` {
		t.Errorf("zero-results insight = %q", insights[1])
	}
}
