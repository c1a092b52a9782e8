// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService answers questions and rewrites them into structured queries.
type LLMService interface {
	// Generate produces text completion from a prompt.
	// When opts.JSON is set the model is asked to reply with a single JSON
	// document; callers must still validate the output.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	ModelName() string

	// Ping makes the cheapest request the provider offers.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate, 0 for provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string

	// System is an optional system instruction.
	System string

	// JSON requests schema-constrained JSON output.
	JSON bool
}
