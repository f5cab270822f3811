package api

import "strings"

// DetectSource classifies the caller from its User-Agent so retrieval logs
// can attribute traffic to the AI systems crawling the engine.
func DetectSource(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "perplexity"):
		return "perplexity"
	case strings.Contains(ua, "chatgpt"), strings.Contains(ua, "openai"):
		return "chatgpt"
	case strings.Contains(ua, "claude"), strings.Contains(ua, "anthropic"):
		return "claude"
	case strings.Contains(ua, "gptbot"):
		return "gptbot"
	case strings.Contains(ua, "bingbot"):
		return "bing"
	case strings.Contains(ua, "googlebot"):
		return "google"
	case strings.Contains(ua, "ccbot"):
		return "commoncrawl"
	case strings.Contains(ua, "bot"), strings.Contains(ua, "crawler"), strings.Contains(ua, "spider"):
		return "bot"
	}
	return "direct"
}
