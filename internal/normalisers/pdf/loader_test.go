package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	calls  int
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	m.calls++
	return m.output, m.err
}

// writePDF renders one page per entry, one line per string.
func writePDF(t *testing.T, pages ...[]string) string {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, lines := range pages {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 12)
		for _, line := range lines {
			pdf.CellFormat(0, 8, tr(line), "", 1, "L", false, 0, "")
		}
	}
	path := filepath.Join(t.TempDir(), "decreto.pdf")
	require.NoError(t, pdf.OutputFileAndClose(path))
	return path
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.PDFLoader = (*Loader)(nil)
}

func TestLoad_Pages(t *testing.T) {
	path := writePDF(t,
		[]string{"DECRETO Nº 10.000 DE 1 DE JANEIRO DE 2020", "Art. 5 estabelece as regras de contratação."},
		[]string{"Art. 6 Revoga-se a Lei nº 8.666."},
	)

	pages, err := NativeOnly().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, 2, pages[1].Number)
	assert.Equal(t, "DECRETO Nº 10.000 DE 1 DE JANEIRO DE 2020\nArt. 5 estabelece as regras de contratação.", pages[0].Text)
	assert.Equal(t, "Art. 6 Revoga-se a Lei nº 8.666.", pages[1].Text)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, domain.ErrLoadFailed)
}

func TestLoad_Directory(t *testing.T) {
	_, err := New().Load(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrLoadFailed)
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 not really a pdf"), 0600))

	_, err := NativeOnly().Load(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrLoadFailed)
}

func TestLoad_CorruptFileFallbackFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

	runner := &mockRunner{err: errors.New("pdftotext crashed")}
	_, err := NewWithRunner(runner).Load(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrLoadFailed)
	assert.Contains(t, err.Error(), "pdftotext failed")
	assert.Equal(t, 1, runner.calls)
}

func TestLoad_FallbackWhenNoNativeText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

	runner := &mockRunner{output: []byte("LEI Nº 8.666\n\fArt. 1 Esta Lei\n\f")}
	pages, err := NewWithRunner(runner).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, domain.Page{Number: 1, Text: "LEI Nº 8.666"}, pages[0])
	assert.Equal(t, domain.Page{Number: 2, Text: "Art. 1 Esta Lei"}, pages[1])
}

func TestLoad_NativeTextSkipsFallback(t *testing.T) {
	path := writePDF(t, []string{"LEI Nº 8.666, DE 21 DE JUNHO DE 1993"})

	runner := &mockRunner{output: []byte("unused")}
	pages, err := NewWithRunner(runner).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "LEI Nº 8.666, DE 21 DE JUNHO DE 1993", pages[0].Text)
	assert.Zero(t, runner.calls)
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Load(ctx, "whatever.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}
