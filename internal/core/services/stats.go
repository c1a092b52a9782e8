package services

import (
	"context"
	"fmt"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driving"
)

// Ensure StatsService implements the interface.
var _ driving.StatsService = (*StatsService)(nil)

// StatsService reads collection statistics from the vector store.
type StatsService struct {
	collection string
	store      driven.VectorStore
	lister     driven.CollectionLister
}

// NewStatsService creates a stats service for one collection.
func NewStatsService(collection string, store driven.VectorStore) *StatsService {
	return &StatsService{collection: collection, store: store}
}

// SetCollectionLister reports the sibling collections of a shared database.
func (s *StatsService) SetCollectionLister(l driven.CollectionLister) {
	s.lister = l
}

// Stats returns chunk and source counts.
func (s *StatsService) Stats(ctx context.Context) (*domain.CollectionStats, error) {
	if s.store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}
	n, err := s.store.Count(ctx, domain.Filter{})
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	sources, err := s.store.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	if sources == nil {
		sources = []string{}
	}
	stats := &domain.CollectionStats{
		Collection: s.collection,
		Chunks:     n,
		Sources:    sources,
	}
	if s.lister != nil {
		stats.Collections, err = s.lister.Collections(ctx)
		if err != nil {
			return nil, fmt.Errorf("list collections: %w", err)
		}
	}
	return stats, nil
}
