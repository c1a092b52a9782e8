package driven

import "github.com/yurisalesc/poc-legal-llm/internal/core/domain"

// MetadataExtractor derives legal metadata from text.
// Extraction is best-effort: absent matches degrade to missing fields
// and never fail ingestion.
type MetadataExtractor interface {
	// Extract returns document-level fields (law number, publication date).
	// Fields that cannot be found are omitted.
	Extract(text string) domain.Metadata

	// Article returns the first article number in a chunk's text,
	// or domain.ArticleNotFound.
	Article(text string) string
}
