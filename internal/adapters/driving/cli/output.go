package cli

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

var (
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	success = color.New(color.FgGreen).SprintFunc()
	failure = color.New(color.FgRed).SprintFunc()
	muted   = color.New(color.Faint).SprintFunc()
)

// maxPreview is the number of characters of a passage shown in listings.
const maxPreview = 240

// answerJSON mirrors the HTTP query response.
type answerJSON struct {
	Result   string   `json:"result"`
	Sources  []string `json:"sources"`
	Strategy string   `json:"strategy,omitempty"`
}

// passageJSON is one retrieved passage.
type passageJSON struct {
	Source      string `json:"source"`
	LawNumber   string `json:"lei_numero,omitempty"`
	PublishedOn string `json:"data_publicacao,omitempty"`
	Article     string `json:"artigo,omitempty"`
	Position    int    `json:"position"`
	Content     string `json:"content"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func toPassages(chunks []domain.Chunk) []passageJSON {
	out := make([]passageJSON, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, passageJSON{
			Source:      c.Source(),
			LawNumber:   c.Metadata[domain.MetaLawNumber],
			PublishedOn: c.Metadata[domain.MetaPublicationDate],
			Article:     c.Metadata[domain.MetaArticle],
			Position:    c.Position,
			Content:     c.Content,
		})
	}
	return out
}

// preview flattens whitespace and truncates s to n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
