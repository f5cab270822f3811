package schema

import (
	"strings"

	"github.com/ypacademy/answer_engine/internal/content"
)

// Person is the schema.org Person document projected from an expert.
type Person struct {
	Context     string   `json:"@context"`
	Type        string   `json:"@type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	JobTitle    string   `json:"jobTitle"`
	URL         string   `json:"url"`
	Image       string   `json:"image,omitempty"`
	SameAs      []string `json:"sameAs,omitempty"`
}

// Person projects an expert profile. Social handles are canonicalized to
// full profile URLs; sameAs is omitted entirely when no links exist.
func (p *Projector) Person(e content.Expert) Person {
	doc := Person{
		Context:     context,
		Type:        "Person",
		Name:        e.Name,
		Description: e.Bio,
		JobTitle:    e.Title,
		URL:         p.ExpertURL(e),
		SameAs:      canonicalLinks(e.Social),
	}
	if e.AvatarURL != "" {
		doc.Image = p.baseURL + e.AvatarURL
	}
	return doc
}

func canonicalLinks(s content.SocialLinks) []string {
	var links []string
	if s.Instagram != "" {
		links = append(links, profileURL("https://instagram.com/", s.Instagram))
	}
	if s.Twitter != "" {
		links = append(links, profileURL("https://twitter.com/", s.Twitter))
	}
	if s.YouTube != "" {
		links = append(links, profileURL("https://youtube.com/", s.YouTube))
	}
	if s.Wikipedia != "" {
		links = append(links, s.Wikipedia)
	}
	return links
}

func profileURL(base, handle string) string {
	if strings.HasPrefix(handle, "http") {
		return handle
	}
	return base + strings.ReplaceAll(handle, "@", "")
}
