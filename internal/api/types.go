package api

import (
	"context"
	"fmt"
	"time"

	"github.com/ypacademy/answer_engine/internal/content"
	"github.com/ypacademy/answer_engine/internal/retrieval"
	"github.com/ypacademy/answer_engine/internal/schema"
)

const sourceName = "YouthPerformance Academy"

type contextKey string

const traceIDKey contextKey = "answer_engine_trace_id"

// ContextWithTraceID stores the trace identifier in context.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext extracts the trace identifier.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value := ctx.Value(traceIDKey)
	if value == nil {
		return "", false
	}
	traceID, ok := value.(string)
	return traceID, ok
}

// AuthorRef is the author attribution attached to a result.
type AuthorRef struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Credentials []string `json:"credentials"`
	URL         string   `json:"url,omitempty"`
}

// AnswerItem is one ranked result on the answer endpoint.
type AnswerItem struct {
	Type        string         `json:"type"`
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	URL         string         `json:"url"`
	Author      *AuthorRef     `json:"author"`
	Metadata    map[string]any `json:"metadata"`
}

// AnswerMeta reports how an answer was produced.
type AnswerMeta struct {
	TotalResults    int    `json:"totalResults"`
	ReturnedResults int    `json:"returnedResults"`
	QueryTime       int64  `json:"queryTime"`
	SearchMethod    string `json:"searchMethod"`
	CacheStatus     string `json:"cacheStatus"`
	EmbeddingCached bool   `json:"embeddingCached"`
	Source          string `json:"source"`
	LastUpdated     string `json:"lastUpdated"`
}

// AnswerResponse is the body of GET /answer-engine/answer.
type AnswerResponse struct {
	Query          string           `json:"query"`
	Results        []AnswerItem     `json:"results"`
	Meta           AnswerMeta       `json:"meta"`
	StructuredData *schema.ItemList `json:"structuredData,omitempty"`
}

// AgeRange is the inclusive age band a drill targets.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DrillPayload is one drill on the drills endpoint, with its structured
// data block and canonical URL.
type DrillPayload struct {
	ID            string         `json:"id"`
	Slug          string         `json:"slug"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	URL           string         `json:"url"`
	Sport         string         `json:"sport"`
	Category      string         `json:"category"`
	AgeRange      AgeRange       `json:"ageRange"`
	Difficulty    string         `json:"difficulty"`
	Duration      string         `json:"duration"`
	Reps          string         `json:"reps,omitempty"`
	Equipment     []string       `json:"equipment"`
	Tags          []string       `json:"tags"`
	Constraints   []string       `json:"constraints"`
	Steps         []content.Step `json:"steps"`
	CoachingCues  []string       `json:"coachingCues"`
	CommonMistake string         `json:"commonMistake,omitempty"`
	MistakeFix    string         `json:"mistakeFix,omitempty"`
	Author        *AuthorRef     `json:"author"`
	Schema        schema.HowTo   `json:"schema"`
	LastUpdated   string         `json:"lastUpdated"`
}

// DrillFiltersEcho reflects the applied filters back to the caller.
type DrillFiltersEcho struct {
	Sport      string `json:"sport,omitempty"`
	Category   string `json:"category,omitempty"`
	Age        int    `json:"age,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Constraint string `json:"constraint,omitempty"`
}

// Pagination reports cursor state for the drills endpoint.
type Pagination struct {
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"hasMore"`
	Total   int    `json:"total"`
}

// SourceMeta names the content source and its API docs.
type SourceMeta struct {
	Source        string `json:"source"`
	Documentation string `json:"documentation,omitempty"`
	Total         int    `json:"total,omitempty"`
}

// DrillsResponse is the body of GET /answer-engine/drills.
type DrillsResponse struct {
	Drills     []DrillPayload   `json:"drills"`
	Filters    DrillFiltersEcho `json:"filters"`
	Pagination Pagination       `json:"pagination"`
	Meta       SourceMeta       `json:"meta"`
}

// QnAPayload is one Q&A entry with expert attribution and structured data.
type QnAPayload struct {
	ID           string         `json:"id"`
	Slug         string         `json:"slug"`
	Question     string         `json:"question"`
	DirectAnswer string         `json:"directAnswer"`
	Category     string         `json:"category"`
	Keywords     []string       `json:"keywords"`
	KeyTakeaways []string       `json:"keyTakeaways"`
	SafetyNote   string         `json:"safetyNote,omitempty"`
	URL          string         `json:"url"`
	Author       *AuthorRef     `json:"author"`
	Schema       schema.FAQItem `json:"schema"`
}

// QnAResponse is the body of GET /answer-engine/qna.
type QnAResponse struct {
	QnA  []QnAPayload `json:"qna"`
	Meta SourceMeta   `json:"meta"`
}

// ExpertPayload is an expert profile with content aggregates and
// structured data.
type ExpertPayload struct {
	Slug         string               `json:"slug"`
	Name         string               `json:"name"`
	Title        string               `json:"title"`
	Icon         string               `json:"icon,omitempty"`
	Credentials  []string             `json:"credentials"`
	Bio          string               `json:"bio"`
	AvatarURL    string               `json:"avatarUrl,omitempty"`
	URL          string               `json:"url"`
	ContentCount content.ContentCount `json:"contentCount"`
	SocialLinks  content.SocialLinks  `json:"socialLinks"`
	Topics       []string             `json:"topics"`
	Schema       schema.Person        `json:"schema"`
}

// ExpertResponse wraps a single expert lookup.
type ExpertResponse struct {
	Expert ExpertPayload `json:"expert"`
}

// ExpertsResponse is the body of the list form of the experts endpoint.
type ExpertsResponse struct {
	Experts []ExpertPayload `json:"experts"`
	Meta    SourceMeta      `json:"meta"`
}

func (rt *Router) answerItem(r content.EnrichedResult) AnswerItem {
	item := AnswerItem{
		ID:     r.Entity.ID(),
		URL:    rt.projector.EntityURL(r.Entity),
		Author: authorRef(r.Author, ""),
	}
	switch r.Entity.Kind {
	case content.KindDrill:
		d := r.Entity.Drill
		item.Type = "drill"
		item.Title = d.Title
		item.Description = d.Description
		item.Metadata = map[string]any{
			"ageRange":   fmt.Sprintf("%d-%d", d.AgeMin, d.AgeMax),
			"difficulty": d.Difficulty,
			"duration":   d.Duration,
			"sport":      d.Sport,
			"category":   d.Category,
			"tags":       d.Tags,
		}
	case content.KindQnA:
		q := r.Entity.QnA
		item.Type = "article"
		item.Title = q.Question
		item.Description = q.DirectAnswer
		item.Metadata = map[string]any{
			"category":     q.Category,
			"keyTakeaways": q.KeyTakeaways,
			"safetyNote":   q.SafetyNote,
			"keywords":     q.Keywords,
		}
	case content.KindExpert:
		e := r.Entity.Expert
		item.Type = "expert"
		item.Title = e.Name
		item.Description = e.Bio
		item.Metadata = map[string]any{
			"title":       e.Title,
			"credentials": e.Credentials,
		}
	}
	return item
}

func (rt *Router) drillPayload(r content.EnrichedResult, now time.Time) DrillPayload {
	d := r.Entity.Drill
	cues, mistake, fix := extractCoaching(d.Steps)

	updated := d.UpdatedAt
	if updated.IsZero() {
		updated = now
	}

	var authorURL string
	if r.Author != nil {
		authorURL = rt.projector.ExpertURL(*r.Author)
	}

	return DrillPayload{
		ID:            d.ID,
		Slug:          d.Slug,
		Title:         d.Title,
		Description:   d.Description,
		URL:           rt.projector.DrillURL(*d),
		Sport:         d.Sport,
		Category:      d.Category,
		AgeRange:      AgeRange{Min: d.AgeMin, Max: d.AgeMax},
		Difficulty:    d.Difficulty,
		Duration:      d.Duration,
		Reps:          d.Reps,
		Equipment:     emptyIfNil(d.Equipment),
		Tags:          emptyIfNil(d.Tags),
		Constraints:   emptyIfNil(d.Constraints),
		Steps:         d.Steps,
		CoachingCues:  cues,
		CommonMistake: mistake,
		MistakeFix:    fix,
		Author:        authorRef(r.Author, authorURL),
		Schema:        rt.projector.HowTo(*d),
		LastUpdated:   updated.UTC().Format(time.RFC3339),
	}
}

func (rt *Router) qnaPayload(r content.EnrichedResult) QnAPayload {
	q := r.Entity.QnA
	return QnAPayload{
		ID:           q.ID,
		Slug:         q.Slug,
		Question:     q.Question,
		DirectAnswer: q.DirectAnswer,
		Category:     q.Category,
		Keywords:     emptyIfNil(q.Keywords),
		KeyTakeaways: emptyIfNil(q.KeyTakeaways),
		SafetyNote:   q.SafetyNote,
		URL:          rt.projector.QnAURL(*q),
		Author:       authorRef(r.Author, ""),
		Schema:       rt.projector.FAQ(*q, r.Author),
	}
}

func (rt *Router) expertPayload(p retrieval.ExpertProfile) ExpertPayload {
	e := p.Expert
	return ExpertPayload{
		Slug:         e.Slug,
		Name:         e.Name,
		Title:        e.Title,
		Icon:         e.Icon,
		Credentials:  emptyIfNil(e.Credentials),
		Bio:          e.Bio,
		AvatarURL:    e.AvatarURL,
		URL:          rt.projector.ExpertURL(e),
		ContentCount: p.Count,
		SocialLinks:  e.Social,
		Topics:       emptyIfNil(p.Topics),
		Schema:       rt.projector.Person(e),
	}
}

func authorRef(author *content.Expert, url string) *AuthorRef {
	if author == nil {
		return nil
	}
	return &AuthorRef{
		Name:        author.Name,
		Title:       author.Title,
		Credentials: emptyIfNil(author.Credentials),
		URL:         url,
	}
}

// extractCoaching aggregates per-step coaching annotations; the first
// mistake/fix pair found wins.
func extractCoaching(steps []content.Step) (cues []string, mistake, fix string) {
	cues = []string{}
	for _, s := range steps {
		if s.CoachingCue != "" {
			cues = append(cues, s.CoachingCue)
		}
		if mistake == "" && s.CommonMistake != "" {
			mistake = s.CommonMistake
			fix = s.MistakeFix
		}
	}
	return cues, mistake, fix
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
