package driven

import (
	"context"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// VectorStore persists embedded chunks and answers similarity queries.
// Implementations must support concurrent readers and independent writers.
type VectorStore interface {
	// Add appends chunks with their embeddings. Chunks already stored for the
	// same source are kept; there is no replace path.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Query returns up to q.K chunks matching q.Filter, ordered by
	// descending cosine similarity. Returned chunks carry their embeddings.
	Query(ctx context.Context, q domain.VectorQuery) ([]domain.ScoredChunk, error)

	// Count returns the number of chunks matching the filter.
	Count(ctx context.Context, filter domain.Filter) (int, error)

	// Sources returns the distinct source filenames in the store.
	Sources(ctx context.Context) ([]string, error)

	// Persist flushes pending writes to durable storage.
	Persist(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CollectionLister is implemented by databases that hold several collections.
type CollectionLister interface {
	// Collections lists the collections holding at least one chunk, sorted.
	Collections(ctx context.Context) ([]string, error)
}
