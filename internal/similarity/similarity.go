package similarity

import (
	"math"
	"sort"

	"counsel/internal/entry"
)

// Cosine returns the cosine similarity of two vectors in [-1, 1]. Degenerate
// input (nil, mismatched lengths, zero norm) scores 0.0 instead of failing:
// entries with unusable embeddings simply rank nowhere.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Match is one ranked neighbor of a target entry.
type Match struct {
	ID    uint    `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"similarity"`
}

// DefaultTopK caps how many neighbors a ranking returns.
const DefaultTopK = 5

// Rank scores candidates against the target and returns at most k matches,
// best first. The target itself, candidates of other owners and candidates
// without an embedding are skipped. A target without an embedding ranks
// nothing. Ties keep input order (stable sort).
func Rank(target *entry.Entry, candidates []entry.Entry, k int) []Match {
	if k <= 0 {
		k = DefaultTopK
	}
	targetVec := target.EmbeddingVector()
	if targetVec == nil {
		return []Match{}
	}

	matches := make([]Match, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.ID == target.ID || c.UserID != target.UserID {
			continue
		}
		vec := c.EmbeddingVector()
		if vec == nil {
			continue
		}
		matches = append(matches, Match{
			ID:    c.ID,
			Title: c.Title,
			Score: Cosine(targetVec, vec),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
