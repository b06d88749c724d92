package search

import "math"

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 and false when either vector has zero magnitude or the
// lengths differ.
func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, false
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

// semanticScore maps cosine similarity into [0, 1] so it can be blended
// with the keyword score: opposite vectors score 0, identical vectors 1.
// Degenerate pairs (zero magnitude, mismatched dimension) score 0.
func semanticScore(query, vector []float32) float64 {
	sim, ok := cosineSimilarity(query, vector)
	if !ok {
		return 0
	}
	return (sim + 1) / 2
}
