package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driven/storage/memory"
	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/extractors/legal"
	"github.com/yurisalesc/poc-legal-llm/internal/normalisers/pdf"
	"github.com/yurisalesc/poc-legal-llm/internal/postprocessors"
)

func newPipeline(t *testing.T, size, overlap int) driven.PostProcessorPipeline {
	t.Helper()
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry, legal.New())
	pipeline, err := postprocessors.BuildPipeline(registry, domain.NewPipelineConfig(domain.ChunkerSettings{Size: size, Overlap: overlap}))
	require.NoError(t, err)
	return pipeline
}

func newIngest(t *testing.T, loader driven.PDFLoader, store driven.VectorStore) *IngestService {
	t.Helper()
	return NewIngestService(loader, legal.New(), newPipeline(t, 1000, 150), newHashEmbedder(), store)
}

func longStatute(articles int) string {
	var b strings.Builder
	b.WriteString("LEI Nº 14.133, DE 1º DE ABRIL DE 2021\n\n")
	for i := 1; i <= articles; i++ {
		fmt.Fprintf(&b, "Art. %d Esta Lei estabelece normas gerais de licitação e contratação para as Administrações Públicas diretas, autárquicas e fundacionais.\n", i)
	}
	return b.String()
}

func countChunks(t *testing.T, store driven.VectorStore, filter domain.Filter) int {
	t.Helper()
	n, err := store.Count(context.Background(), filter)
	require.NoError(t, err)
	return n
}

func TestIngest_DecreeEndToEnd(t *testing.T) {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.CellFormat(0, 8, tr("DECRETO Nº 10.000 DE 1 DE JANEIRO DE 2020"), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 8, tr("Art. 5 estabelece..."), "", 1, "L", false, 0, "")
	path := filepath.Join(t.TempDir(), "decreto_10000_2020.pdf")
	require.NoError(t, doc.OutputFileAndClose(path))

	store := memory.NewVectorStore()
	svc := newIngest(t, pdf.NativeOnly(), store)

	result, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestStatusSuccess, result.Status)
	assert.Equal(t, "Arquivo decreto_10000_2020.pdf processado.", result.Message)
	assert.Equal(t, 1, result.Chunks)

	hits, err := store.Query(context.Background(), domain.VectorQuery{Embedding: embedText("decreto", 64), K: 10})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, domain.Metadata{
		domain.MetaSource:          "decreto_10000_2020.pdf",
		domain.MetaLawNumber:       "10000",
		domain.MetaPublicationDate: "1 DE JANEIRO DE 2020",
		domain.MetaArticle:         "5",
	}, hits[0].Chunk.Metadata)
	assert.Contains(t, hits[0].Chunk.Content, "Art. 5 estabelece...")
}

func TestIngest_ArticleSentinelAndOmittedFields(t *testing.T) {
	loader := &mockLoader{pages: map[string][]domain.Page{
		"/in/portaria.pdf": pagesOf("Portaria sem número ou data reconhecível."),
	}}
	store := memory.NewVectorStore()

	_, err := newIngest(t, loader, store).Ingest(context.Background(), "/in/portaria.pdf")
	require.NoError(t, err)

	hits, err := store.Query(context.Background(), domain.VectorQuery{Embedding: embedText("portaria", 64), K: 1})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	meta := hits[0].Chunk.Metadata
	assert.Equal(t, domain.ArticleNotFound, meta[domain.MetaArticle])
	assert.Equal(t, "portaria.pdf", meta[domain.MetaSource])
	assert.NotContains(t, meta, domain.MetaLawNumber)
	assert.NotContains(t, meta, domain.MetaPublicationDate)
}

func TestIngest_MultiPageChunksCarryDocumentMetadata(t *testing.T) {
	loader := &mockLoader{pages: map[string][]domain.Page{
		"/in/lei_14133_2021.pdf": pagesOf(longStatute(10), longStatute(10)),
	}}
	store := memory.NewVectorStore()

	result, err := newIngest(t, loader, store).Ingest(context.Background(), "/in/lei_14133_2021.pdf")
	require.NoError(t, err)
	require.Greater(t, result.Chunks, 2)

	assert.Equal(t, result.Chunks, countChunks(t, store, domain.And(
		domain.Eq(domain.MetaSource, "lei_14133_2021.pdf"),
		domain.Eq(domain.MetaLawNumber, "14133"),
		domain.Eq(domain.MetaPublicationDate, "1º DE ABRIL DE 2021"),
	)))
}

// Re-ingesting a file appends a second copy of its chunks. This is a known
// limitation: there is no replace-by-source path yet.
func TestIngest_ReingestionDoublesChunks(t *testing.T) {
	loader := &mockLoader{pages: map[string][]domain.Page{
		"/in/lei_8666_1993.pdf": pagesOf(longStatute(12)),
	}}
	store := memory.NewVectorStore()
	svc := newIngest(t, loader, store)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, "/in/lei_8666_1993.pdf")
	require.NoError(t, err)
	once := countChunks(t, store, domain.Filter{})
	assert.Equal(t, first.Chunks, once)

	_, err = svc.Ingest(ctx, "/in/lei_8666_1993.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2*once, countChunks(t, store, domain.Filter{}))
}

func TestIngest_LoadFailure(t *testing.T) {
	store := memory.NewVectorStore()
	svc := newIngest(t, &mockLoader{}, store)

	result, err := svc.Ingest(context.Background(), "/in/corrompido.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLoadFailed)
	require.NotNil(t, result)
	assert.Equal(t, domain.IngestStatusError, result.Status)
	assert.Equal(t, "corrompido.pdf", result.Source)
	assert.Contains(t, result.Message, "corrompido.pdf")
	assert.Zero(t, countChunks(t, store, domain.Filter{}))
}

func TestIngest_EmptyDocument(t *testing.T) {
	loader := &mockLoader{pages: map[string][]domain.Page{"/in/vazio.pdf": pagesOf("", "  ")}}
	_, err := newIngest(t, loader, memory.NewVectorStore()).Ingest(context.Background(), "/in/vazio.pdf")
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestIngest_EmbeddingFailure(t *testing.T) {
	loader := &mockLoader{pages: map[string][]domain.Page{"/in/a.pdf": pagesOf(longStatute(2))}}
	embedder := newHashEmbedder()
	embedder.batchErr = domain.ErrRateLimited
	store := memory.NewVectorStore()
	svc := NewIngestService(loader, legal.New(), newPipeline(t, 1000, 150), embedder, store)

	result, err := svc.Ingest(context.Background(), "/in/a.pdf")
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, domain.IngestStatusError, result.Status)
	assert.Zero(t, countChunks(t, store, domain.Filter{}))
}

func TestIngest_PartialSuccessIsKept(t *testing.T) {
	loader := &mockLoader{pages: map[string][]domain.Page{"/in/a.pdf": pagesOf(longStatute(20))}}
	store := &flakyStore{VectorStore: memory.NewVectorStore(), failAfter: 1}
	svc := NewIngestService(loader, legal.New(), newPipeline(t, 300, 50), newHashEmbedder(), store)
	svc.SetBatchSize(2)

	result, err := svc.Ingest(context.Background(), "/in/a.pdf")
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, domain.IngestStatusError, result.Status)
	assert.Equal(t, 2, result.Chunks)
	assert.Equal(t, 2, countChunks(t, store, domain.Filter{}))
}

func TestIngest_PersistFailure(t *testing.T) {
	loader := &mockLoader{pages: map[string][]domain.Page{"/in/a.pdf": pagesOf(longStatute(2))}}
	store := &flakyStore{VectorStore: memory.NewVectorStore(), persistErr: errStoreDown}

	_, err := newIngest(t, loader, store).Ingest(context.Background(), "/in/a.pdf")
	assert.ErrorIs(t, err, errStoreDown)
	assert.Contains(t, err.Error(), "persist")
}

func TestIngest_MissingDependencies(t *testing.T) {
	loader := &mockLoader{}
	pipeline := newPipeline(t, 1000, 150)

	_, err := NewIngestService(loader, legal.New(), pipeline, nil, memory.NewVectorStore()).Ingest(context.Background(), "a.pdf")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	_, err = NewIngestService(loader, legal.New(), pipeline, newHashEmbedder(), nil).Ingest(context.Background(), "a.pdf")
	assert.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)
}

func TestIngest_Metrics(t *testing.T) {
	loader := &mockLoader{pages: map[string][]domain.Page{"/in/a.pdf": pagesOf(longStatute(2))}}
	metrics := &recordingMetrics{}
	svc := newIngest(t, loader, memory.NewVectorStore())
	svc.SetMetrics(metrics)

	r, err := svc.Ingest(context.Background(), "/in/a.pdf")
	require.NoError(t, err)
	_, _ = svc.Ingest(context.Background(), "/in/missing.pdf")

	assert.Equal(t, []string{domain.IngestStatusSuccess, domain.IngestStatusError}, metrics.ingests)
	assert.Equal(t, r.Chunks, metrics.chunks)
}

func TestIngestBatch_ContinuesOnError(t *testing.T) {
	loader := &mockLoader{pages: map[string][]domain.Page{
		"/in/a.pdf": pagesOf("LEI Nº 1.000, DE 2 DE MAIO DE 1950\nArt. 1 Texto."),
		"/in/c.pdf": pagesOf("DECRETO Nº 3.000, DE 3 DE MARÇO DE 1999\nArt. 2 Texto."),
	}}
	store := memory.NewVectorStore()
	svc := newIngest(t, loader, store)

	var progress []int
	results := svc.IngestBatch(context.Background(), []string{"/in/a.pdf", "/in/b.pdf", "/in/c.pdf"},
		func(done, total int, r *domain.IngestResult) {
			assert.Equal(t, 3, total)
			progress = append(progress, done)
		})

	require.Len(t, results, 3)
	assert.True(t, results[0].Succeeded())
	assert.False(t, results[1].Succeeded())
	assert.Equal(t, "b.pdf", results[1].Source)
	assert.True(t, results[2].Succeeded())
	assert.Equal(t, []int{1, 2, 3}, progress)

	sources, err := store.Sources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, sources)
}

func TestIngestBatch_CancelledContext(t *testing.T) {
	loader := &mockLoader{pages: map[string][]domain.Page{"/in/a.pdf": pagesOf("texto")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newIngest(t, loader, memory.NewVectorStore()).IngestBatch(ctx, []string{"/in/a.pdf"}, nil)
	require.Len(t, results, 1)
	assert.Equal(t, domain.IngestStatusError, results[0].Status)
}
