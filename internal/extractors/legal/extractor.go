// Package legal extracts structured metadata from Brazilian legislation text.
//
// The extractor is a heuristic over common drafting conventions
// ("LEI Nº 8.666, DE 21 DE JUNHO DE 1993", "Art. 5º"), not a parser.
// Missing matches degrade to absent fields and never fail ingestion.
package legal

import (
	"regexp"
	"strings"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

var (
	// LEI/DECRETO, optional "N", "N.", "Nº", "N.º", then a number with dot separators.
	lawNumberPattern = regexp.MustCompile(`(?i)(LEI|DECRETO)\s*(?:N[.\s]*[º°]?\.?)?\s*(\d[\d.]*)`)

	// "DE 21 DE JUNHO DE 1993"; the captured date excludes the leading DE.
	publicationDatePattern = regexp.MustCompile(`(?i)DE\s*(\d{1,2}[º°]?\s*DE\s*\p{L}+\s*DE\s*\d{4})`)

	articlePattern = regexp.MustCompile(`(?i)Art\.\s*(\d+)`)
)

// Ensure Extractor implements the interface.
var _ driven.MetadataExtractor = (*Extractor)(nil)

// Extractor implements driven.MetadataExtractor with regular expressions.
// It is stateless and safe for concurrent use.
type Extractor struct{}

// New creates a legal metadata extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the law number and publication date found in text.
func (e *Extractor) Extract(text string) domain.Metadata {
	meta := domain.Metadata{}
	if n := LawNumber(text); n != "" {
		meta[domain.MetaLawNumber] = n
	}
	if d := PublicationDate(text); d != "" {
		meta[domain.MetaPublicationDate] = d
	}
	return meta
}

// Article returns the first article number in text or domain.ArticleNotFound.
func (e *Extractor) Article(text string) string {
	m := articlePattern.FindStringSubmatch(text)
	if m == nil {
		return domain.ArticleNotFound
	}
	return m[1]
}

// LawNumber returns the first law or decree number with separators removed,
// or "" when none is present.
func LawNumber(text string) string {
	m := lawNumberPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[2], ".", "")
}

// PublicationDate returns the first "D DE MÊS DE AAAA" date verbatim,
// or "" when none is present.
func PublicationDate(text string) string {
	m := publicationDatePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
