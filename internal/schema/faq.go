package schema

import "github.com/ypacademy/answer_engine/internal/content"

// Answer is a schema.org Answer node.
type Answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

// Question is a schema.org Question node.
type Question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer Answer `json:"acceptedAnswer"`
}

// PersonRef is the inline author attribution used inside list items.
type PersonRef struct {
	Type       string   `json:"@type"`
	Name       string   `json:"name"`
	JobTitle   string   `json:"jobTitle"`
	KnowsAbout []string `json:"knowsAbout,omitempty"`
}

// FAQItem is a schema.org FAQPage document for a single Q&A entry.
type FAQItem struct {
	Type       string     `json:"@type"`
	MainEntity []Question `json:"mainEntity"`
	URL        string     `json:"url"`
	Author     *PersonRef `json:"author,omitempty"`
}

// ListItem is one element of an ItemList.
type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Item     any    `json:"item"`
}

// ItemList is the structured-data block for a ranked answer response.
type ItemList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	Name            string     `json:"name"`
	NumberOfItems   int        `json:"numberOfItems"`
	ItemListElement []ListItem `json:"itemListElement"`
}

// FAQ projects one Q&A entry into a FAQPage document.
func (p *Projector) FAQ(q content.QnA, author *content.Expert) FAQItem {
	return FAQItem{
		Type: "FAQPage",
		MainEntity: []Question{{
			Type: "Question",
			Name: q.Question,
			AcceptedAnswer: Answer{
				Type: "Answer",
				Text: q.DirectAnswer,
			},
		}},
		URL:    p.QnAURL(q),
		Author: personRef(author),
	}
}

type howToRef struct {
	Type        string     `json:"@type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Author      *PersonRef `json:"author,omitempty"`
}

// AnswerList projects ranked answer results into a schema.org ItemList.
// Drills become HowTo items, Q&A entries become FAQPage items.
func (p *Projector) AnswerList(query string, results []content.EnrichedResult) ItemList {
	elements := make([]ListItem, 0, len(results))
	for i, res := range results {
		var item any
		switch res.Entity.Kind {
		case content.KindDrill:
			item = howToRef{
				Type:        "HowTo",
				Name:        res.Entity.Drill.Title,
				Description: res.Entity.Drill.Description,
				URL:         p.DrillURL(*res.Entity.Drill),
				Author:      personRef(res.Author),
			}
		case content.KindQnA:
			item = p.FAQ(*res.Entity.QnA, res.Author)
		default:
			continue
		}
		elements = append(elements, ListItem{
			Type:     "ListItem",
			Position: i + 1,
			Item:     item,
		})
	}

	return ItemList{
		Context:         context,
		Type:            "ItemList",
		Name:            "Search results for: " + query,
		NumberOfItems:   len(elements),
		ItemListElement: elements,
	}
}

func personRef(author *content.Expert) *PersonRef {
	if author == nil {
		return nil
	}
	return &PersonRef{
		Type:       "Person",
		Name:       author.Name,
		JobTitle:   author.Title,
		KnowsAbout: author.Credentials,
	}
}
