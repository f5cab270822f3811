package analytics

import (
	"fmt"
	"sort"
	"strings"
)

var themeKeywords = []string{
	"basketball", "soccer", "football", "volleyball", "tennis", "lacrosse",
	"shooting", "dribbling", "passing", "defense", "footwork",
	"speed", "agility", "strength",
	"injury", "prevention", "barefoot", "ankle", "knee",
	"warmup", "cooldown",
}

// GapInsights turns a gap list into human-readable guidance for the
// analytics gaps view.
func GapInsights(gaps []Gap) []string {
	if len(gaps) == 0 {
		return []string{"No significant content gaps detected. Great coverage!"}
	}

	insights := []string{}

	highFreq := 0
	for _, g := range gaps {
		if g.Occurrences >= 5 {
			highFreq++
		}
	}
	if highFreq > 0 {
		insights = append(insights, fmt.Sprintf(
			"%d queries appear 5+ times with poor results. Priority content opportunities.", highFreq))
	}

	var firstZero string
	zeroResults := 0
	for _, g := range gaps {
		if g.AvgResults == 0 {
			if zeroResults == 0 {
				firstZero = g.Query
			}
			zeroResults++
		}
	}
	if zeroResults > 0 {
		insights = append(insights, fmt.Sprintf(
			"%d queries return zero results. Consider creating content for: %q", zeroResults, firstZero))
	}

	if themes := detectThemes(gaps); len(themes) > 0 {
		insights = append(insights, "Common themes in gaps: "+strings.Join(themes, ", "))
	}

	return insights
}

func detectThemes(gaps []Gap) []string {
	weights := map[string]int{}
	for _, g := range gaps {
		queryLower := strings.ToLower(g.Query)
		for _, keyword := range themeKeywords {
			if strings.Contains(queryLower, keyword) {
				weights[keyword] += g.Occurrences
			}
		}
	}

	themes := make([]string, 0, len(weights))
	for keyword := range weights {
		themes = append(themes, keyword)
	}
	sort.Slice(themes, func(i, j int) bool {
		if weights[themes[i]] != weights[themes[j]] {
			return weights[themes[i]] > weights[themes[j]]
		}
		return themes[i] < themes[j]
	})

	if len(themes) > 3 {
		themes = themes[:3]
	}
	return themes
}
