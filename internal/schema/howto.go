package schema

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/ypacademy/answer_engine/internal/content"
)

// HowToStep is one schema.org HowToStep node.
type HowToStep struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name,omitempty"`
	Text     string `json:"text"`
}

// HowTo is the schema.org HowTo document projected from a drill.
type HowTo struct {
	Context     string      `json:"@context"`
	Type        string      `json:"@type"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	TotalTime   string      `json:"totalTime,omitempty"`
	Tool        []string    `json:"tool,omitempty"`
	Step        []HowToStep `json:"step"`
}

// Duration strings look like "10 min" or "5-10 min"; ranges use the first
// number.
var durationPattern = regexp.MustCompile(`(?i)(\d+)(?:-\d+)?\s*min`)

// ParseDuration converts a free-text duration into an ISO-8601 duration.
// Unparsable strings return "" rather than an error.
func ParseDuration(raw string) string {
	m := durationPattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("PT%sM", m[1])
}

// HowTo projects a drill. Step positions are sorted and renumbered so the
// output is always contiguous and 1-indexed regardless of input gaps.
func (p *Projector) HowTo(d content.Drill) HowTo {
	steps := make([]content.Step, len(d.Steps))
	copy(steps, d.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Position < steps[j].Position
	})

	projected := make([]HowToStep, len(steps))
	for i, step := range steps {
		projected[i] = HowToStep{
			Type:     "HowToStep",
			Position: i + 1,
			Name:     step.Title,
			Text:     step.Instruction,
		}
	}

	doc := HowTo{
		Context:     context,
		Type:        "HowTo",
		Name:        d.Title,
		Description: d.Description,
		TotalTime:   ParseDuration(d.Duration),
		Step:        projected,
	}
	if len(d.Equipment) > 0 {
		doc.Tool = d.Equipment
	}
	return doc
}
