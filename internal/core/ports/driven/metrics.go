package driven

import (
	"time"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// Metrics records pipeline outcomes for monitoring.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// IngestDone records one ingestion run.
	IngestDone(status string, chunks int, elapsed time.Duration)

	// QueryDone records one answered (or failed) question.
	QueryDone(strategy domain.RetrievalStrategy, status string, elapsed time.Duration)

	// SelfQueryFallback records a self-query translation that fell back to
	// plain semantic retrieval.
	SelfQueryFallback()
}
