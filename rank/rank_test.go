package rank

import (
	"math"
	"reflect"
	"testing"

	"github.com/ypacademy/answer_engine/internal/content"
)

func drillResult(id string) content.EnrichedResult {
	return content.EnrichedResult{Entity: content.Entity{
		Kind:  content.KindDrill,
		Drill: &content.Drill{ID: id},
	}}
}

func qnaResult(id string) content.EnrichedResult {
	return content.EnrichedResult{Entity: content.Entity{
		Kind: content.KindQnA,
		QnA:  &content.QnA{ID: id},
	}}
}

func ids(items []Scored) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Result.Entity.ID()
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestScoreDrillWeights(t *testing.T) {
	d := &content.Drill{
		Title:       "Form Shooting Progression",
		Description: "Close range mechanics work.",
		Sport:       "basketball",
		Category:    "shooting",
		Tags:        []string{"shooting", "fundamentals"},
	}

	cases := []struct {
		query string
		want  float64
	}{
		// title + exact tag + partial tag + category
		{"shooting", 0.5 + 0.3 + 0.1 + 0.2},
		{"basketball", 0.15},
		{"mechanics", 0.05},
		{"fundamentals", 0.3 + 0.1},
		{"hockey", 0},
		{"", 0},
		{"   ", 0},
	}
	for _, tc := range cases {
		got := ScoreDrill(tc.query, d)
		want := tc.want
		if want > 1 {
			want = 1
		}
		if !almostEqual(got, want) {
			t.Errorf("ScoreDrill(%q) = %v, want %v", tc.query, got, want)
		}
	}
}

func TestScoreDrillCaseInsensitive(t *testing.T) {
	d := &content.Drill{Title: "Mikan Drill", Sport: "Basketball"}
	if got, want := ScoreDrill("MIKAN", d), 0.5; !almostEqual(got, want) {
		t.Fatalf("score = %v, want %v", got, want)
	}
}

func TestScoreQnAWeights(t *testing.T) {
	q := &content.QnA{
		Question:     "How often should kids train?",
		DirectAnswer: "Three sessions a week.",
		Category:     "training",
		Keywords:     []string{"frequency", "training load"},
	}

	if got, want := ScoreQnA("train", q), 0.5+0.1+0.2; !almostEqual(got, want) {
		t.Fatalf("score = %v, want %v", got, want)
	}
	if got := ScoreQnA("nutrition", q); got != 0 {
		t.Fatalf("score = %v, want 0", got)
	}
}

func TestScoreExpertWeights(t *testing.T) {
	e := &content.Expert{
		Name:        "James Scott",
		Title:       "Shooting Coach",
		Credentials: []string{"NSCA-CPT"},
		Bio:         "Former pro guard.",
	}
	if got, want := ScoreExpert("scott", e), 0.5; !almostEqual(got, want) {
		t.Fatalf("score = %v, want %v", got, want)
	}
	if got, want := ScoreExpert("coach", e), 0.2; !almostEqual(got, want) {
		t.Fatalf("score = %v, want %v", got, want)
	}
}

func TestCombineInterleaves(t *testing.T) {
	lists := []List{
		{Kind: content.KindDrill, Items: []Scored{
			{Result: drillResult("d1"), Score: 0.9},
			{Result: drillResult("d2"), Score: 0.4},
		}},
		{Kind: content.KindQnA, Items: []Scored{
			{Result: qnaResult("q1"), Score: 0.8},
		}},
	}

	out := Combine(lists, CombineConfig{RRFK: 60})
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}

	// Rank-1 entries share the same RRF weight; the tie breaks by ID.
	if got, want := ids(out), []string{"d1", "q1", "d2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if !almostEqual(out[0].Score, 1.0/61.0) {
		t.Fatalf("rank-1 weight = %v, want %v", out[0].Score, 1.0/61.0)
	}
}

func TestCombineDeterministic(t *testing.T) {
	lists := []List{
		{Kind: content.KindDrill, Items: []Scored{
			{Result: drillResult("b")},
			{Result: drillResult("a")},
		}},
		{Kind: content.KindQnA, Items: []Scored{
			{Result: qnaResult("c")},
			{Result: qnaResult("d")},
		}},
	}

	first := ids(Combine(lists, CombineConfig{}))
	for i := 0; i < 20; i++ {
		if got := ids(Combine(lists, CombineConfig{})); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d order %v differs from %v", i, got, first)
		}
	}
}

func TestCombineLimit(t *testing.T) {
	lists := []List{
		{Kind: content.KindDrill, Items: []Scored{
			{Result: drillResult("d1")},
			{Result: drillResult("d2")},
			{Result: drillResult("d3")},
		}},
	}
	out := Combine(lists, CombineConfig{Limit: 2})
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
}

func TestCombineDefaultsRRFK(t *testing.T) {
	lists := []List{
		{Kind: content.KindDrill, Items: []Scored{{Result: drillResult("d1")}}},
	}
	out := Combine(lists, CombineConfig{})
	if !almostEqual(out[0].Score, 1.0/61.0) {
		t.Fatalf("score = %v, want default RRFK weighting", out[0].Score)
	}
}
