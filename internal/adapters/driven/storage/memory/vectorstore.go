package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Queries scan every chunk.
type VectorStore struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
	closed bool
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{}
}

// Add appends copies of the chunks.
func (s *VectorStore) Add(_ context.Context, chunks []domain.Chunk) error {
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %d has no embedding", domain.ErrInvalidInput, i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrVectorStoreUnavailable
	}
	for _, c := range chunks {
		s.chunks = append(s.chunks, cloneChunk(c))
	}
	return nil
}

// Query ranks matching chunks by cosine similarity.
func (s *VectorStore) Query(_ context.Context, q domain.VectorQuery) ([]domain.ScoredChunk, error) {
	if q.K <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrVectorStoreUnavailable
	}

	var hits []domain.ScoredChunk
	for _, c := range s.chunks {
		if !q.Filter.Match(c.Metadata) {
			continue
		}
		hits = append(hits, domain.ScoredChunk{
			Chunk: cloneChunk(c),
			Score: domain.CosineSimilarity(q.Embedding, c.Embedding),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > q.K {
		hits = hits[:q.K]
	}
	return hits, nil
}

// Count returns the number of chunks matching filter.
func (s *VectorStore) Count(_ context.Context, filter domain.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, domain.ErrVectorStoreUnavailable
	}
	n := 0
	for _, c := range s.chunks {
		if filter.Match(c.Metadata) {
			n++
		}
	}
	return n, nil
}

// Sources returns the distinct sources, sorted.
func (s *VectorStore) Sources(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrVectorStoreUnavailable
	}
	seen := make(map[string]bool)
	var sources []string
	for _, c := range s.chunks {
		if src, ok := c.Metadata[domain.MetaSource]; ok && !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	sort.Strings(sources)
	return sources, nil
}

// Persist is a no-op.
func (s *VectorStore) Persist(_ context.Context) error {
	return nil
}

// Close discards all chunks.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.chunks = nil
	return nil
}

func cloneChunk(c domain.Chunk) domain.Chunk {
	c.Metadata = c.Metadata.Clone()
	c.Embedding = append([]float32(nil), c.Embedding...)
	return c
}
