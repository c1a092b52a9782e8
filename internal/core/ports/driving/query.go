package driving

import (
	"context"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// Retriever selects passages relevant to a question.
type Retriever interface {
	// Retrieve returns chunks ordered by relevance. An empty result is not an error.
	Retrieve(ctx context.Context, question string) ([]domain.Chunk, error)

	// Strategy identifies the retriever variant.
	Strategy() domain.RetrievalStrategy
}

// Synthesizer turns retrieved passages into an answer.
type Synthesizer interface {
	// Synthesize calls the language model once and reports distinct sources.
	Synthesize(ctx context.Context, question string, chunks []domain.Chunk) (*domain.Answer, error)
}

// QueryService answers natural-language questions about ingested legislation.
type QueryService interface {
	// Ask retrieves passages and synthesizes an answer.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// Retrieve returns the passages Ask would ground its answer on.
	Retrieve(ctx context.Context, question string) ([]domain.Chunk, error)
}
