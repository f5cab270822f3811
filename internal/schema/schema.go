// Package schema projects content entities into schema.org structured-data
// documents. Projections are pure: identical input always yields
// byte-identical output, since consumers cache and diff the result.
package schema

import "github.com/ypacademy/answer_engine/internal/content"

const context = "https://schema.org"

// Projector builds structured-data documents and canonical URLs rooted at
// the public site URL.
type Projector struct {
	baseURL string
}

// NewProjector constructs a Projector. baseURL must not end with a slash.
func NewProjector(baseURL string) *Projector {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Projector{baseURL: baseURL}
}

// DrillURL returns the canonical page URL for a drill.
func (p *Projector) DrillURL(d content.Drill) string {
	return p.baseURL + "/drills/" + d.Sport + "/" + d.Category + "/" + d.Slug
}

// QnAURL returns the canonical page URL for a Q&A entry.
func (p *Projector) QnAURL(q content.QnA) string {
	return p.baseURL + "/guides/" + q.Slug
}

// ExpertURL returns the canonical page URL for an expert profile.
func (p *Projector) ExpertURL(e content.Expert) string {
	return p.baseURL + "/experts/" + e.Slug
}

// EntityURL returns the canonical URL for any entity kind.
func (p *Projector) EntityURL(e content.Entity) string {
	switch e.Kind {
	case content.KindDrill:
		return p.DrillURL(*e.Drill)
	case content.KindQnA:
		return p.QnAURL(*e.QnA)
	case content.KindExpert:
		return p.ExpertURL(*e.Expert)
	}
	return p.baseURL
}
