package domain

import (
	"strings"
	"time"
)

// Metadata keys stored on every chunk. The names are persisted in the
// vector store and referenced by self-query filters, so they must not change.
const (
	MetaSource          = "source"
	MetaLawNumber       = "lei_numero"
	MetaPublicationDate = "data_publicacao"
	MetaArticle         = "artigo"
)

// NotAvailable marks a metadata value that could not be determined.
const NotAvailable = "N/A"

// ArticleNotFound is stored under MetaArticle when a chunk has no "Art." marker.
// Document-level fields are omitted instead; the article key is always present.
const ArticleNotFound = NotAvailable

// PageSeparator joins page texts into the document text.
const PageSeparator = "\n\n"

// Metadata holds string key-value pairs attached to documents and chunks.
type Metadata map[string]string

// Clone returns a copy of the metadata. A nil receiver yields an empty map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge returns a new map with other's entries layered over m.
func (m Metadata) Merge(other Metadata) Metadata {
	out := m.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Page is the text of one PDF page.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted page text.
	Text string
}

// Document represents one uploaded law or decree.
// It lives only for the duration of an ingestion run.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the base name of the PDF and the source identifier.
	Filename string

	// Path is the location the PDF was loaded from.
	Path string

	// Pages holds the text of each page in order.
	Pages []Page

	// Metadata holds document-level fields (source, law number, date).
	Metadata Metadata

	// CreatedAt is when the document was loaded.
	CreatedAt time.Time
}

// FullText returns the page texts joined with PageSeparator.
func (d *Document) FullText() string {
	texts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, PageSeparator)
}

// Chunk represents a contiguous, overlapping slice of a document's text.
// Chunks are immutable once stored; re-ingestion appends new chunks.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Start is the rune offset of Content within the document text.
	Start int

	// Embedding is the vector representation for semantic search.
	Embedding []float32

	// Metadata is the document metadata plus the chunk-local article.
	Metadata Metadata

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time
}

// Source returns the chunk's source filename, or NotAvailable when missing.
func (c Chunk) Source() string {
	if s := c.Metadata[MetaSource]; s != "" {
		return s
	}
	return NotAvailable
}
