// Package vector holds the exact similarity ranking shared by the stores.
package vector

import (
	"math"
	"sort"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// CosineSimilarity returns the cosine similarity of a and b.
// Vectors of different length, empty vectors and zero-magnitude vectors
// score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2))
}

// Rank scores every candidate against query and returns the best k,
// by descending similarity with ties broken by ascending chunk ID.
// k <= 0 returns every candidate.
func Rank(candidates []domain.Chunk, query []float32, k int) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, domain.ScoredChunk{
			Chunk:      c,
			Similarity: CosineSimilarity(query, c.Embedding),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})

	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
