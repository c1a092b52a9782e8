package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.PDFLoader = (*Loader)(nil)

var disableConfig sync.Once

// Loader extracts page text from PDF files.
type Loader struct {
	runner   CommandRunner
	fallback bool
}

// New creates a loader that falls back to pdftotext when it is installed.
func New() *Loader {
	return &Loader{runner: execRunner{}, fallback: CheckAvailable() == nil}
}

// NewWithRunner creates a loader whose fallback uses the given runner.
// Useful for testing.
func NewWithRunner(runner CommandRunner) *Loader {
	return &Loader{runner: runner, fallback: true}
}

// NativeOnly creates a loader that never shells out.
func NativeOnly() *Loader {
	return &Loader{runner: execRunner{}}
}

// Load returns the text of every page in order.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrLoadFailed, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrLoadFailed, path)
	}

	pages, nativeErr := readPages(path)
	if nativeErr == nil && hasText(pages) {
		return pages, nil
	}
	if !l.fallback {
		if nativeErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrLoadFailed, path, nativeErr)
		}
		return pages, nil
	}

	logger.Debug("pdf: no native text in %s, trying pdftotext", path)
	texts, err := pdftotextPages(ctx, l.runner, path)
	if err != nil {
		if nativeErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrLoadFailed, path, errors.Join(nativeErr, err))
		}
		logger.Warn("pdf: %s has no extractable text: %v", path, err)
		return pages, nil
	}

	pages = make([]domain.Page, 0, len(texts))
	for i, text := range texts {
		pages = append(pages, domain.Page{Number: i + 1, Text: strings.TrimRight(text, " \n")})
	}
	return pages, nil
}

// readPages parses the file with pdfcpu and extracts the text of each page.
func readPages(path string) (pages []domain.Page, err error) {
	disableConfig.Do(api.DisableConfigDir)

	// pdfcpu panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}

	pages = make([]domain.Page, 0, pdfCtx.PageCount)
	for nr := 1; nr <= pdfCtx.PageCount; nr++ {
		text, err := pageText(pdfCtx, nr)
		if err != nil {
			logger.Debug("pdf: page %d of %s: %v", nr, path, err)
		}
		pages = append(pages, domain.Page{Number: nr, Text: text})
	}
	return pages, nil
}

func pageText(pdfCtx *model.Context, nr int) (string, error) {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, nr)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", nil
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return textFromContent(content), nil
}

func hasText(pages []domain.Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
