package driven

import (
	"context"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// ProviderChecker verifies that configured AI providers answer.
type ProviderChecker interface {
	// CheckEmbedding fails with domain.ErrEmbeddingUnavailable when the
	// embedding provider is not configured or does not respond.
	CheckEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error

	// CheckLLM fails with domain.ErrLLMUnavailable when the language model is
	// not configured or does not respond.
	CheckLLM(ctx context.Context, settings *domain.LLMSettings) error
}
