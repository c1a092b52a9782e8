package ai

import (
	"context"
	"fmt"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

var _ driven.ProviderChecker = (*Checker)(nil)

// Checker creates each service, pings it and closes it again.
type Checker struct{}

// NewChecker creates a provider checker.
func NewChecker() *Checker {
	return &Checker{}
}

// CheckEmbedding pings the embedding provider.
func (Checker) CheckEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return fmt.Errorf("%w: %s", domain.ErrEmbeddingUnavailable, notConfigured(settings.Provider, settings.APIKey))
	}
	return svc.Close()
}

// CheckLLM pings the language model.
func (Checker) CheckLLM(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateAndValidateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return fmt.Errorf("%w: %s", domain.ErrLLMUnavailable, notConfigured(settings.Provider, settings.APIKey))
	}
	return svc.Close()
}

func notConfigured(p domain.AIProvider, apiKey string) string {
	switch {
	case !p.IsValid():
		return fmt.Sprintf("unknown provider %q", p)
	case p.RequiresAPIKey() && apiKey == "":
		return fmt.Sprintf("%s requires an API key", p)
	default:
		return "provider not configured"
	}
}
