package domain

// RetrievalStrategy selects how passages are pulled from the vector store.
type RetrievalStrategy string

// Available retrieval strategies.
const (
	// StrategySemantic ranks chunks by embedding similarity, optionally with MMR.
	StrategySemantic RetrievalStrategy = "semantic"

	// StrategySelfQuery lets the LLM derive a metadata filter and residual query.
	StrategySelfQuery RetrievalStrategy = "self_query"
)

// IsValid returns true if the strategy is recognised.
func (s RetrievalStrategy) IsValid() bool {
	return s == StrategySemantic || s == StrategySelfQuery
}

// RequiresLLM returns true if retrieval itself calls the LLM.
func (s RetrievalStrategy) RequiresLLM() bool {
	return s == StrategySelfQuery
}

// String returns the string representation.
func (s RetrievalStrategy) String() string {
	return string(s)
}

// Description returns a human-readable description of the strategy.
func (s RetrievalStrategy) Description() string {
	switch s {
	case StrategySemantic:
		return "Semantic (vector similarity)"
	case StrategySelfQuery:
		return "Self-query (LLM metadata filter + semantic)"
	default:
		return unknownDescription
	}
}

// AllRetrievalStrategies returns every strategy.
func AllRetrievalStrategies() []RetrievalStrategy {
	return []RetrievalStrategy{StrategySemantic, StrategySelfQuery}
}

// ScoredChunk is a chunk returned by the vector store with its similarity.
type ScoredChunk struct {
	// Chunk carries content, embedding and metadata.
	Chunk Chunk

	// Score is the cosine similarity to the query embedding.
	Score float64
}

// VectorQuery describes a similarity search against the vector store.
type VectorQuery struct {
	// Embedding is the query vector.
	Embedding []float32

	// K is the number of results to return.
	K int

	// Filter restricts candidates by metadata. Empty means no filter.
	Filter Filter
}

// StructuredQuery is the self-query translation of a question.
type StructuredQuery struct {
	// Query is the residual text used for semantic ranking.
	Query string `json:"query"`

	// Filter is the metadata predicate, nil when the question names none.
	Filter *Filter `json:"filter"`
}

// Answer is the synthesized reply to a question.
type Answer struct {
	// Text is the model's answer.
	Text string

	// Sources lists the distinct source filenames in first-seen order.
	Sources []string

	// Chunks are the passages the answer was grounded on.
	Chunks []Chunk

	// Strategy is the retrieval strategy that produced Chunks.
	Strategy RetrievalStrategy
}
