package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, strategy or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Self-query retrieval and answer synthesis are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Neither ingestion nor retrieval can run without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not configured or closed.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrRateLimited indicates the remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Ingestion Errors.

	// ErrLoadFailed indicates a PDF could not be read or parsed.
	ErrLoadFailed = errors.New("document load failed")

	// ErrEmptyDocument indicates a PDF yielded no extractable text.
	ErrEmptyDocument = errors.New("document has no text")

	// Query Errors.

	// ErrInvalidFilter indicates a metadata filter expression is malformed
	// or references a field outside the filterable schema.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrTemplatePlaceholder indicates a prompt template was rendered with a
	// missing or unknown placeholder value.
	ErrTemplatePlaceholder = errors.New("template placeholder mismatch")

	// ErrRetrievalFailed indicates passages could not be fetched for a question.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrSynthesisFailed indicates the LLM call failed or returned no answer.
	ErrSynthesisFailed = errors.New("answer synthesis failed")
)
