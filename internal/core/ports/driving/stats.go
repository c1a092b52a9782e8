package driving

import (
	"context"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// StatsService reports what has been ingested.
type StatsService interface {
	// Stats returns chunk and source counts for the active collection.
	Stats(ctx context.Context) (*domain.CollectionStats, error)
}
