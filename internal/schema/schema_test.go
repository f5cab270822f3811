package schema

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ypacademy/answer_engine/internal/content"
)

var testProjector = NewProjector("https://academy.example.com")

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10 min", "PT10M"},
		{"5-10 min", "PT5M"},
		{"15min", "PT15M"},
		{"10 MIN", "PT10M"},
		{"about 20 min total", "PT20M"},
		{"an hour", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ParseDuration(tc.in); got != tc.want {
			t.Errorf("ParseDuration(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHowToRenumbersSteps(t *testing.T) {
	drill := content.Drill{
		Title:       "Wall Dribble Ladder",
		Description: "Progressive dribbling against a wall.",
		Sport:       "basketball",
		Category:    "ball-handling",
		Slug:        "wall-dribble-ladder",
		Duration:    "10-15 min",
		Steps: []content.Step{
			{Position: 1, Instruction: "first"},
			{Position: 3, Instruction: "second"},
			{Position: 4, Instruction: "third"},
		},
	}

	doc := testProjector.HowTo(drill)
	if len(doc.Step) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(doc.Step))
	}
	for i, step := range doc.Step {
		if step.Position != i+1 {
			t.Errorf("step %d position = %d, want %d", i, step.Position, i+1)
		}
	}
	if doc.Step[1].Text != "second" {
		t.Errorf("step order not preserved: %+v", doc.Step)
	}
	if doc.TotalTime != "PT10M" {
		t.Errorf("totalTime = %q, want PT10M", doc.TotalTime)
	}
	if doc.Tool != nil {
		t.Errorf("tool should be absent without equipment, got %v", doc.Tool)
	}
}

func TestHowToDeterministic(t *testing.T) {
	drill := content.Drill{
		Title:       "Cone Weave",
		Description: "Weave through cones at speed.",
		Sport:       "soccer",
		Category:    "footwork",
		Slug:        "cone-weave",
		Duration:    "8 min",
		Equipment:   []string{"cones"},
		Steps: []content.Step{
			{Position: 2, Instruction: "weave back"},
			{Position: 1, Instruction: "weave out"},
		},
	}

	first, err := json.Marshal(testProjector.HowTo(drill))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(testProjector.HowTo(drill))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("projection not byte-identical:\n%s\n%s", first, second)
	}
}

func TestPersonSameAsCanonicalization(t *testing.T) {
	expert := content.Expert{
		Slug:  "coach-dana",
		Name:  "Dana Reyes",
		Title: "Youth Performance Coach",
		Bio:   "bio",
		Social: content.SocialLinks{
			Instagram: "@coachdana",
			Twitter:   "https://twitter.com/coachdana",
			YouTube:   "coachdana",
			Wikipedia: "https://en.wikipedia.org/wiki/Dana_Reyes",
		},
	}

	doc := testProjector.Person(expert)
	want := []string{
		"https://instagram.com/coachdana",
		"https://twitter.com/coachdana",
		"https://youtube.com/coachdana",
		"https://en.wikipedia.org/wiki/Dana_Reyes",
	}
	if len(doc.SameAs) != len(want) {
		t.Fatalf("sameAs = %v", doc.SameAs)
	}
	for i, url := range want {
		if doc.SameAs[i] != url {
			t.Errorf("sameAs[%d] = %q, want %q", i, doc.SameAs[i], url)
		}
	}
	if doc.URL != "https://academy.example.com/experts/coach-dana" {
		t.Errorf("url = %q", doc.URL)
	}
}

func TestPersonOmitsEmptySameAs(t *testing.T) {
	doc := testProjector.Person(content.Expert{Slug: "coach-sam", Name: "Sam Ueda"})
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if bytes.Contains(raw, []byte("sameAs")) {
		t.Fatalf("sameAs must be omitted when empty: %s", raw)
	}
}

func TestFAQProjection(t *testing.T) {
	qna := content.QnA{
		Slug:         "how-high-is-a-rim",
		Question:     "How high should a basketball rim be for an 8 year old?",
		DirectAnswer: "Eight feet is the standard recommendation.",
	}
	author := &content.Expert{Name: "Dana Reyes", Title: "Coach", Credentials: []string{"CSCS"}}

	doc := testProjector.FAQ(qna, author)
	if doc.Type != "FAQPage" || len(doc.MainEntity) != 1 {
		t.Fatalf("doc = %+v", doc)
	}
	q := doc.MainEntity[0]
	if q.Name != qna.Question || q.AcceptedAnswer.Text != qna.DirectAnswer {
		t.Errorf("question = %+v", q)
	}
	if doc.Author == nil || doc.Author.Name != "Dana Reyes" {
		t.Errorf("author = %+v", doc.Author)
	}

	anon := testProjector.FAQ(qna, nil)
	if anon.Author != nil {
		t.Error("author must be nil when no expert is attached")
	}
}

func TestAnswerListMixedKinds(t *testing.T) {
	drill := content.Drill{Slug: "d", Title: "Drill", Description: "desc", Sport: "basketball", Category: "shooting"}
	qna := content.QnA{Slug: "q", Question: "Q?", DirectAnswer: "A."}

	list := testProjector.AnswerList("shooting drills", []content.EnrichedResult{
		{Entity: content.Entity{Kind: content.KindDrill, Drill: &drill}},
		{Entity: content.Entity{Kind: content.KindQnA, QnA: &qna}},
	})

	if list.NumberOfItems != 2 || len(list.ItemListElement) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if list.ItemListElement[0].Position != 1 || list.ItemListElement[1].Position != 2 {
		t.Errorf("positions = %+v", list.ItemListElement)
	}
	if list.Name != "Search results for: shooting drills" {
		t.Errorf("name = %q", list.Name)
	}
}
