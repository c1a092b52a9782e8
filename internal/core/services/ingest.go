package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driving"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultEmbedBatchSize is the number of chunks embedded and stored per round trip.
const DefaultEmbedBatchSize = 32

// IngestService loads PDFs, splits them into tagged chunks, embeds the
// chunks and appends them to the vector store.
type IngestService struct {
	loader    driven.PDFLoader
	extractor driven.MetadataExtractor
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	metrics   driven.Metrics
	batchSize int
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	loader driven.PDFLoader,
	extractor driven.MetadataExtractor,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
) *IngestService {
	return &IngestService{
		loader:    loader,
		extractor: extractor,
		pipeline:  pipeline,
		embedder:  embedder,
		store:     store,
		metrics:   nopMetrics{},
		batchSize: DefaultEmbedBatchSize,
	}
}

// SetMetrics sets the metrics recorder.
func (s *IngestService) SetMetrics(m driven.Metrics) {
	s.metrics = metricsOrNop(m)
}

// SetBatchSize sets how many chunks are embedded per request.
func (s *IngestService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// Ingest processes one PDF. Chunks stored before a failure stay stored.
func (s *IngestService) Ingest(ctx context.Context, path string) (*domain.IngestResult, error) {
	logger.Section("Ingest")
	start := time.Now()
	source := filepath.Base(path)

	n, err := s.ingest(ctx, path, source)
	result := &domain.IngestResult{Source: source, Chunks: n}
	if err != nil {
		result.Status = domain.IngestStatusError
		result.Message = fmt.Sprintf("Erro ao processar o arquivo %s: %v", source, err)
		s.metrics.IngestDone(result.Status, n, time.Since(start))
		logger.Warn("ingest %s failed after %d chunks: %v", source, n, err)
		return result, fmt.Errorf("ingest %s: %w", source, err)
	}

	result.Status = domain.IngestStatusSuccess
	result.Message = fmt.Sprintf("Arquivo %s processado.", source)
	s.metrics.IngestDone(result.Status, n, time.Since(start))
	logger.Info("ingested %s: %d chunks in %s", source, n, time.Since(start).Round(time.Millisecond))
	return result, nil
}

// ingest runs the pipeline and returns the number of chunks stored.
func (s *IngestService) ingest(ctx context.Context, path, source string) (int, error) {
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return 0, domain.ErrVectorStoreUnavailable
	}

	// 1. Load
	pages, err := s.loader.Load(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("load: %w", err)
	}
	logger.Debug("Loaded %d pages from %s", len(pages), path)

	doc := &domain.Document{
		ID:        uuid.New().String(),
		Filename:  source,
		Path:      path,
		Pages:     pages,
		CreatedAt: time.Now(),
	}
	text := doc.FullText()
	if strings.TrimSpace(text) == "" {
		return 0, domain.ErrEmptyDocument
	}

	// 2. Document-level metadata
	doc.Metadata = s.extractor.Extract(text).Merge(domain.Metadata{domain.MetaSource: source})
	logger.Debug("Document metadata: %v", doc.Metadata)

	// 3. Chunk and tag articles
	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		return 0, domain.ErrEmptyDocument
	}
	logger.Debug("Produced %d chunks", len(chunks))

	// 4. Embed and store batch by batch
	stored := 0
	for lo := 0; lo < len(chunks); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(chunks))
		batch := chunks[lo:hi]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return stored, fmt.Errorf("embed: %w", err)
		}
		if len(vectors) != len(batch) {
			return stored, fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(batch))
		}

		now := time.Now()
		for i := range batch {
			batch[i].Embedding = vectors[i]
			batch[i].CreatedAt = now
		}
		if err := s.store.Add(ctx, batch); err != nil {
			return stored, fmt.Errorf("store: %w", err)
		}
		stored += len(batch)
	}

	// 5. Persist
	if err := s.store.Persist(ctx); err != nil {
		return stored, fmt.Errorf("persist: %w", err)
	}
	return stored, nil
}

// IngestBatch ingests files one after another. A failing file is recorded
// and the batch moves on.
func (s *IngestService) IngestBatch(
	ctx context.Context, paths []string, progress func(done, total int, r *domain.IngestResult),
) []domain.IngestResult {
	results := make([]domain.IngestResult, 0, len(paths))
	for i, path := range paths {
		if ctx.Err() != nil {
			r := domain.IngestResult{
				Source:  filepath.Base(path),
				Status:  domain.IngestStatusError,
				Message: fmt.Sprintf("Erro ao processar o arquivo %s: %v", filepath.Base(path), ctx.Err()),
			}
			results = append(results, r)
			if progress != nil {
				progress(i+1, len(paths), &r)
			}
			continue
		}

		r, _ := s.Ingest(ctx, path)
		results = append(results, *r)
		if progress != nil {
			progress(i+1, len(paths), r)
		}
	}
	return results
}
