package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

func passages() []domain.Chunk {
	return []domain.Chunk{
		{Content: "Art. 1º Esta Lei estabelece normas gerais", Metadata: domain.Metadata{
			domain.MetaSource: "lei_8666.pdf", domain.MetaLawNumber: "8666",
		}},
		{Content: "Art. 2º As obras", Metadata: domain.Metadata{domain.MetaSource: "lei_8666.pdf"}},
		{Content: "sem metadados"},
	}
}

func TestPassageList_Empty(t *testing.T) {
	p := NewPassageList(nil)

	assert.Equal(t, 0, p.Count())
	assert.Nil(t, p.SelectedChunk())
	assert.Contains(t, p.View(), "Nenhum trecho")
	assert.Nil(t, p.Init())
}

func TestPassageList_Navigation(t *testing.T) {
	p := NewPassageList(nil)
	p.SetChunks(passages())

	p.MoveUp()
	assert.Equal(t, 0, p.Selected())

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, p.Selected())
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, p.Selected())
	p.MoveDown()
	assert.Equal(t, 2, p.Selected())

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, p.Selected())

	require.NotNil(t, p.SelectedChunk())
	assert.Equal(t, "Art. 2º As obras", p.SelectedChunk().Content)

	p.SetChunks(passages())
	assert.Equal(t, 0, p.Selected())
}

func TestPassageList_View(t *testing.T) {
	p := NewPassageList(nil)
	p.SetDimensions(120, 20)
	p.SetChunks(passages())

	view := p.View()
	assert.Contains(t, view, "Trechos (3)")
	assert.Contains(t, view, "lei_8666.pdf · Lei 8666")
	assert.Contains(t, view, domain.NotAvailable)
	assert.Contains(t, view, "Art. 1º Esta Lei")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"curto", 10, "curto"},
		{"licitação pública", 10, "licitaç..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.n))
	}
}
