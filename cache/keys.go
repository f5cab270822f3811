package cache

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// keySep joins the normalized query with any extra key dimensions. The
// normalizer replaces the separator inside queries with a space, so filter
// combinations can never collide with query text.
const keySep = "\x1f"

// Normalize canonicalizes a free-text query for cache addressing: NFKC fold,
// lowercase, trim, and collapse of internal whitespace. It is idempotent, so
// semantically equal inputs always produce the same key.
func Normalize(query string) string {
	q := norm.NFKC.String(query)
	q = strings.ToLower(q)
	q = strings.ReplaceAll(q, keySep, " ")
	return strings.Join(strings.Fields(q), " ")
}

// Key builds a cache key from a query plus the dimensions that influence the
// cached value (result type, limit, filter values). Dimensions keep their
// case but are stripped of the separator, so distinct filter combinations
// map to distinct keys.
func Key(query string, dims ...string) string {
	parts := make([]string, 0, len(dims)+1)
	parts = append(parts, Normalize(query))
	for _, d := range dims {
		parts = append(parts, strings.ReplaceAll(d, keySep, " "))
	}
	return strings.Join(parts, keySep)
}
