package driven

import (
	"context"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// PDFLoader reads the text of each page of a PDF file.
type PDFLoader interface {
	// Load returns the pages in document order.
	// Unreadable or corrupt files fail with an error wrapping domain.ErrLoadFailed.
	Load(ctx context.Context, path string) ([]domain.Page, error)
}
