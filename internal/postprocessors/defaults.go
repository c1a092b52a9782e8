package postprocessors

import (
	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/postprocessors/articles"
	"github.com/yurisalesc/poc-legal-llm/internal/postprocessors/chunker"
)

// RegisterDefaults registers the chunker and the article tagger. The
// extractor backs the article tagger.
func RegisterDefaults(r *Registry, extractor driven.MetadataExtractor) {
	r.Register(domain.StageChunker, func(cfg domain.PipelineConfig) (driven.PostProcessor, error) {
		return chunker.New(
			chunker.WithChunkSize(cfg.Chunker.Size),
			chunker.WithOverlap(cfg.Chunker.Overlap),
		), nil
	})
	r.Register(domain.StageArticles, func(domain.PipelineConfig) (driven.PostProcessor, error) {
		return articles.New(extractor), nil
	})
}
