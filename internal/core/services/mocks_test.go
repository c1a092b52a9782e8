package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driven/storage/memory"
	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLoader implements driven.PDFLoader with canned pages per path.
type mockLoader struct {
	pages map[string][]domain.Page
}

func (m *mockLoader) Load(_ context.Context, path string) ([]domain.Page, error) {
	pages, ok := m.pages[path]
	if !ok {
		return nil, domain.ErrLoadFailed
	}
	return pages, nil
}

func pagesOf(texts ...string) []domain.Page {
	pages := make([]domain.Page, len(texts))
	for i, t := range texts {
		pages[i] = domain.Page{Number: i + 1, Text: t}
	}
	return pages
}

// hashEmbedder implements driven.EmbeddingService with a deterministic
// bag-of-words vector, so texts sharing words are similar.
type hashEmbedder struct {
	mu       sync.Mutex
	dims     int
	embedErr error
	batchErr error
	calls    int
}

func newHashEmbedder() *hashEmbedder {
	return &hashEmbedder{dims: 64}
}

func embedText(text string, dims int) []float32 {
	v := make([]float32, dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%uint32(dims)]++
	}
	return v
}

func (m *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return embedText(text, m.dims), nil
}

func (m *hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedText(t, m.dims)
	}
	return out, nil
}

func (m *hashEmbedder) Dimensions() int              { return m.dims }
func (m *hashEmbedder) ModelName() string            { return "hash-embed" }
func (m *hashEmbedder) Ping(_ context.Context) error { return nil }
func (m *hashEmbedder) Close() error                 { return nil }

// mockLLM implements driven.LLMService. JSON requests are answered by
// selfQuery, everything else by answer.
type mockLLM struct {
	mu        sync.Mutex
	selfQuery string
	answer    func(prompt string) string
	err       error
	prompts   []string
	options   []driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.options = append(m.options, opts)
	if m.err != nil {
		return "", m.err
	}
	if opts.JSON {
		return m.selfQuery, nil
	}
	if m.answer != nil {
		return m.answer(prompt), nil
	}
	return "resposta", nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPrompts implements driven.PromptStore with minimal templates.
type mockPrompts struct {
	missing bool
}

func (m *mockPrompts) Load(name string) (string, error) {
	if m.missing {
		return "", domain.ErrNotFound
	}
	switch name {
	case driven.PromptAnswer:
		return "Contexto:\n{{context}}\n\nPergunta:\n{{question}}\n\nResposta:", nil
	case driven.PromptSelfQuery:
		return "{{content_description}}\n{{attributes}}\nPergunta: {{question}}", nil
	default:
		return "", domain.ErrNotFound
	}
}

func (m *mockPrompts) Reload() {}

// flakyStore wraps the memory store and fails Add after a number of calls.
type flakyStore struct {
	*memory.VectorStore
	failAfter  int
	adds       int
	persistErr error
	queryErr   error
}

var errStoreDown = errors.New("store unreachable")

func (s *flakyStore) Add(ctx context.Context, chunks []domain.Chunk) error {
	s.adds++
	if s.failAfter > 0 && s.adds > s.failAfter {
		return errStoreDown
	}
	return s.VectorStore.Add(ctx, chunks)
}

func (s *flakyStore) Persist(ctx context.Context) error {
	if s.persistErr != nil {
		return s.persistErr
	}
	return s.VectorStore.Persist(ctx)
}

func (s *flakyStore) Query(ctx context.Context, q domain.VectorQuery) ([]domain.ScoredChunk, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.VectorStore.Query(ctx, q)
}

// recordingMetrics implements driven.Metrics.
type recordingMetrics struct {
	mu        sync.Mutex
	ingests   []string
	chunks    int
	queries   []string
	fallbacks int
}

func (m *recordingMetrics) IngestDone(status string, chunks int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingests = append(m.ingests, status)
	m.chunks += chunks
}

func (m *recordingMetrics) QueryDone(strategy domain.RetrievalStrategy, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, string(strategy)+":"+status)
}

func (m *recordingMetrics) SelfQueryFallback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}
