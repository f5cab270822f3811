// Package embed defines the query feature-representation boundary. The
// embedding model itself is an external service; this package only carries
// vectors to and from it.
package embed

import (
	"context"
	"math"
)

// Embedder turns query text into a feature vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CosineSimilarity computes similarity between two vectors: 1 for identical
// direction, 0 for orthogonal, mismatched or zero vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
