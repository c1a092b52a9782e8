// Package articles tags each chunk with the article number it cites.
package articles

import (
	"context"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor sets domain.MetaArticle on every chunk from the chunk's own text.
// Chunks without an article marker get domain.ArticleNotFound so the key is
// always present.
type Processor struct {
	extractor driven.MetadataExtractor
}

// New creates an article tagger backed by extractor.
func New(extractor driven.MetadataExtractor) *Processor {
	return &Processor{extractor: extractor}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "articles"
}

// Process annotates the chunks in place and returns them.
func (p *Processor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = domain.Metadata{}
		}
		chunks[i].Metadata[domain.MetaArticle] = p.extractor.Article(chunks[i].Content)
	}
	return chunks, nil
}
