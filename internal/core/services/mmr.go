package services

import (
	"math"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// MaxMarginalRelevance greedily picks k candidates, each time taking the one
// with the best trade-off between similarity to the query and dissimilarity
// to what has already been picked:
//
//	lambda*sim(query, c) - (1-lambda)*max sim(c, picked)
//
// lambda=1 reduces to plain relevance ranking. Candidates without an
// embedding keep their store score and count as dissimilar to everything.
func MaxMarginalRelevance(query []float32, candidates []domain.ScoredChunk, k int, lambda float64) []domain.ScoredChunk {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	k = min(k, len(candidates))
	lambda = math.Max(0, math.Min(1, lambda))

	relevance := make([]float64, len(candidates))
	for i, c := range candidates {
		if len(c.Chunk.Embedding) > 0 {
			relevance[i] = domain.CosineSimilarity(query, c.Chunk.Embedding)
		} else {
			relevance[i] = c.Score
		}
	}

	// redundancy[i] is the highest similarity of candidate i to any pick.
	redundancy := make([]float64, len(candidates))
	for i := range redundancy {
		redundancy[i] = math.Inf(-1)
	}
	used := make([]bool, len(candidates))
	picked := make([]domain.ScoredChunk, 0, k)

	for len(picked) < k {
		best, bestScore := -1, math.Inf(-1)
		for i := range candidates {
			if used[i] {
				continue
			}
			score := lambda * relevance[i]
			if !math.IsInf(redundancy[i], -1) {
				score -= (1 - lambda) * redundancy[i]
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}

		used[best] = true
		picked = append(picked, candidates[best])

		chosen := candidates[best].Chunk.Embedding
		for i := range candidates {
			if used[i] || len(chosen) == 0 || len(candidates[i].Chunk.Embedding) == 0 {
				continue
			}
			if sim := domain.CosineSimilarity(chosen, candidates[i].Chunk.Embedding); sim > redundancy[i] {
				redundancy[i] = sim
			}
		}
	}
	return picked
}
