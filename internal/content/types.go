// Package content defines the entity model served by the answer engine:
// drills, Q&A entries, and the experts who author them. The engine only
// reads these records; the authoring pipeline that produces them lives
// outside this repository.
package content

import (
	"errors"
	"time"
)

// ErrNotFound indicates a lookup matched no record. Shared by the storage
// layer and the retrieval service so callers match one sentinel.
var ErrNotFound = errors.New("not found")

// Kind discriminates the closed set of entity types.
type Kind string

const (
	KindDrill  Kind = "drill"
	KindQnA    Kind = "qna"
	KindExpert Kind = "expert"
)

// ParseKind maps external type parameters onto a Kind. The public API
// historically used "article" for Q&A entries, so that alias is accepted.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "drill":
		return KindDrill, true
	case "qna", "article":
		return KindQnA, true
	case "expert":
		return KindExpert, true
	}
	return "", false
}

// Step is one instruction inside a drill. Position is 1-indexed and expected
// to be contiguous; the schema projector renumbers when it is not.
type Step struct {
	Position        int    `json:"order"`
	Title           string `json:"title,omitempty"`
	Instruction     string `json:"instruction"`
	Duration        string `json:"duration,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	CoachingCue     string `json:"coachingCue,omitempty"`
	CommonMistake   string `json:"commonMistake,omitempty"`
	MistakeFix      string `json:"mistakeFix,omitempty"`
}

// Drill is a published training drill.
type Drill struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Sport       string    `json:"sport"`
	Category    string    `json:"category"`
	AgeMin      int       `json:"ageMin"`
	AgeMax      int       `json:"ageMax"`
	Difficulty  string    `json:"difficulty"`
	Duration    string    `json:"duration"`
	Reps        string    `json:"reps,omitempty"`
	Equipment   []string  `json:"equipment"`
	Tags        []string  `json:"tags"`
	Constraints []string  `json:"constraints"`
	Steps       []Step    `json:"steps"`
	AuthorID    string    `json:"-"`
	Embedding   []float32 `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// QnA is a short question/answer entry published as an article.
type QnA struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Question     string    `json:"question"`
	DirectAnswer string    `json:"directAnswer"`
	Category     string    `json:"category"`
	Keywords     []string  `json:"keywords"`
	KeyTakeaways []string  `json:"keyTakeaways"`
	SafetyNote   string    `json:"safetyNote,omitempty"`
	AuthorID     string    `json:"-"`
	Embedding    []float32 `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// SocialLinks holds the optional profile handles recorded for an expert.
// Values may be bare handles or full URLs; canonicalization happens at
// projection time.
type SocialLinks struct {
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Wikipedia string `json:"wikipedia,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
}

// Expert is a content author. The same record backs both the author join on
// drills/Q&A and the public experts endpoint.
type Expert struct {
	ID          string      `json:"id"`
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Icon        string      `json:"icon,omitempty"`
	Credentials []string    `json:"credentials"`
	Bio         string      `json:"bio"`
	AvatarURL   string      `json:"avatarUrl,omitempty"`
	Social      SocialLinks `json:"socialLinks,omitempty"`
	Active      bool        `json:"-"`
}

// Entity is the closed tagged union over the three content kinds. Exactly
// one of the pointers is non-nil, matching Kind.
type Entity struct {
	Kind   Kind
	Drill  *Drill
	QnA    *QnA
	Expert *Expert
}

// ID returns the stable identifier of the underlying record.
func (e Entity) ID() string {
	switch e.Kind {
	case KindDrill:
		return e.Drill.ID
	case KindQnA:
		return e.QnA.ID
	case KindExpert:
		return e.Expert.ID
	}
	return ""
}

// Slug returns the URL slug of the underlying record.
func (e Entity) Slug() string {
	switch e.Kind {
	case KindDrill:
		return e.Drill.Slug
	case KindQnA:
		return e.QnA.Slug
	case KindExpert:
		return e.Expert.Slug
	}
	return ""
}

// AuthorID returns the referenced author, empty for experts (an expert is
// its own author).
func (e Entity) AuthorID() string {
	switch e.Kind {
	case KindDrill:
		return e.Drill.AuthorID
	case KindQnA:
		return e.QnA.AuthorID
	}
	return ""
}

// EnrichedResult is an entity zipped with its author record, ready for
// projection. Author is nil when the referenced author no longer exists.
type EnrichedResult struct {
	Entity Entity
	Author *Expert
}

// ContentCount holds per-kind published counts for an author.
type ContentCount struct {
	Drills   int `json:"drills"`
	Articles int `json:"articles"`
}

// DrillFilters narrows a drill search. Zero values mean "no constraint";
// AgeYears selects drills whose age band covers the given age.
type DrillFilters struct {
	Sport      string
	Category   string
	AgeYears   int
	Difficulty string
	Constraint string
}
