package driving

import (
	"context"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// IngestService loads legal PDFs into the vector store.
type IngestService interface {
	// Ingest processes one PDF. The result is always non-nil; a failed run
	// carries domain.IngestStatusError and the error is also returned.
	Ingest(ctx context.Context, path string) (*domain.IngestResult, error)

	// IngestBatch processes several PDFs sequentially. A failing file does
	// not stop the batch or mark other files as failed.
	IngestBatch(ctx context.Context, paths []string, progress func(done, total int, r *domain.IngestResult)) []domain.IngestResult
}
