package services

import (
	"context"
	"fmt"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driving"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// Ensure the retrievers implement the interface.
var (
	_ driving.Retriever = (*SemanticRetriever)(nil)
	_ driving.Retriever = (*SelfQueryRetriever)(nil)
)

// NewRetriever returns the retriever selected by settings.Strategy.
// llm and prompts are only required for self-query retrieval.
func NewRetriever(
	settings domain.RetrieverSettings,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
) (driving.Retriever, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}

	semantic := NewSemanticRetriever(embedder, store, settings)
	switch settings.Strategy {
	case domain.StrategySemantic:
		return semantic, nil
	case domain.StrategySelfQuery:
		if llm == nil {
			return nil, fmt.Errorf("%s retriever: %w", settings.Strategy, domain.ErrLLMUnavailable)
		}
		return NewSelfQueryRetriever(semantic, llm, prompts), nil
	default:
		return nil, fmt.Errorf("%w: retrieval strategy %q", domain.ErrUnsupportedType, settings.Strategy)
	}
}

// SemanticRetriever ranks chunks by embedding similarity to the question,
// optionally re-ranked with maximal marginal relevance.
type SemanticRetriever struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	k        int
	fetchK   int
	mmr      bool
	lambda   float64
}

// NewSemanticRetriever creates a semantic retriever. Non-positive K and
// FetchK fall back to the defaults.
func NewSemanticRetriever(
	embedder driven.EmbeddingService, store driven.VectorStore, settings domain.RetrieverSettings,
) *SemanticRetriever {
	r := &SemanticRetriever{
		embedder: embedder,
		store:    store,
		k:        settings.K,
		fetchK:   settings.FetchK,
		mmr:      settings.MMR,
		lambda:   settings.MMRLambda,
	}
	if r.k <= 0 {
		r.k = domain.DefaultK
	}
	if r.fetchK < r.k {
		r.fetchK = max(domain.DefaultFetchK, r.k)
	}
	return r
}

// Strategy returns domain.StrategySemantic.
func (r *SemanticRetriever) Strategy() domain.RetrievalStrategy {
	return domain.StrategySemantic
}

// Retrieve returns the chunks closest to the question.
func (r *SemanticRetriever) Retrieve(ctx context.Context, question string) ([]domain.Chunk, error) {
	return r.search(ctx, question, domain.Filter{})
}

// search embeds query and ranks the chunks that pass filter.
func (r *SemanticRetriever) search(ctx context.Context, query string, filter domain.Filter) ([]domain.Chunk, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %w", domain.ErrRetrievalFailed, err)
	}

	fetch := r.k
	if r.mmr {
		fetch = r.fetchK
	}
	logger.Debug("Vector query: k=%d fetch=%d mmr=%t filter=%s", r.k, fetch, r.mmr, filter)

	hits, err := r.store.Query(ctx, domain.VectorQuery{Embedding: embedding, K: fetch, Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("%w: query store: %w", domain.ErrRetrievalFailed, err)
	}
	if r.mmr {
		hits = MaxMarginalRelevance(embedding, hits, r.k, r.lambda)
	} else if len(hits) > r.k {
		hits = hits[:r.k]
	}

	chunks := make([]domain.Chunk, 0, len(hits))
	for _, h := range hits {
		chunks = append(chunks, h.Chunk)
	}
	logger.Debug("Retrieved %d chunks", len(chunks))
	return chunks, nil
}
