package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driving"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// Ensure Synthesizer implements the interface.
var _ driving.Synthesizer = (*Synthesizer)(nil)

// ContextSeparator joins passages in the answer prompt.
const ContextSeparator = "\n\n"

// Synthesizer answers a question from retrieved passages with one LLM call.
type Synthesizer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewSynthesizer creates an answer synthesizer.
func NewSynthesizer(llm driven.LLMService, prompts driven.PromptStore) *Synthesizer {
	return &Synthesizer{llm: llm, prompts: prompts}
}

// Synthesize renders the answer prompt and calls the model at temperature 0.
// No passages is not an error: the prompt tells the model to answer only
// from context, so it reports that nothing relevant was found.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, chunks []domain.Chunk) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	prompt, err := s.renderPrompt(question, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSynthesisFailed, err)
	}
	logger.Debug("Answer prompt: %d chars from %d chunks", len(prompt), len(chunks))

	out, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSynthesisFailed, err)
	}
	text := strings.TrimSpace(out)
	if text == "" {
		return nil, fmt.Errorf("%w: empty model response", domain.ErrSynthesisFailed)
	}

	return &domain.Answer{
		Text:    text,
		Sources: Sources(chunks),
		Chunks:  chunks,
	}, nil
}

func (s *Synthesizer) renderPrompt(question string, chunks []domain.Chunk) (string, error) {
	if s.prompts == nil {
		return "", fmt.Errorf("%w: no prompt store", domain.ErrTemplatePlaceholder)
	}
	text, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("load prompt: %w", err)
	}

	passages := make([]string, 0, len(chunks))
	for _, c := range chunks {
		passages = append(passages, c.Content)
	}
	return domain.NewPromptTemplate(driven.PromptAnswer, text).Render(map[string]string{
		"context":  strings.Join(passages, ContextSeparator),
		"question": question,
	})
}

// Sources returns the distinct chunk sources in first-seen order.
func Sources(chunks []domain.Chunk) []string {
	seen := make(map[string]bool, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, c := range chunks {
		src := c.Source()
		if !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	return sources
}
