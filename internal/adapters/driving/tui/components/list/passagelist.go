// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/styles"
	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// PassageList displays retrieved chunks in a navigable list.
type PassageList struct {
	chunks   []domain.Chunk
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewPassageList creates an empty passage list.
func NewPassageList(s *styles.Styles) *PassageList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &PassageList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (p *PassageList) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys.
func (p *PassageList) Update(msg tea.Msg) (*PassageList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			p.MoveUp()
		case "down", "j":
			p.MoveDown()
		}
	}
	return p, nil
}

// View renders the visible window of passages.
func (p *PassageList) View() string {
	if len(p.chunks) == 0 {
		return p.styles.Muted.Render("Nenhum trecho recuperado")
	}

	lines := make([]string, 0, len(p.chunks)+2)
	lines = append(lines, p.styles.Subtitle.Render(fmt.Sprintf("Trechos (%d)", len(p.chunks))), "")

	// Each passage takes two lines.
	visible := max((p.height-2)/2, 1)
	start := 0
	if p.selected >= visible {
		start = p.selected - visible + 1
	}
	end := min(start+visible, len(p.chunks))

	for i := start; i < end; i++ {
		lines = append(lines, p.renderPassage(i, &p.chunks[i]))
	}
	return strings.Join(lines, "\n")
}

func (p *PassageList) renderPassage(index int, c *domain.Chunk) string {
	header := c.Source()
	if law := c.Metadata[domain.MetaLawNumber]; law != "" {
		header += " · Lei " + law
	}
	header = truncate(header, max(p.width-4, 10))

	var title string
	if index == p.selected {
		title = p.styles.Selected.Render("> " + header)
	} else {
		title = "  " + p.styles.Source.Render(header)
	}

	preview := strings.Join(strings.Fields(c.Content), " ")
	preview = truncate(preview, max(p.width-6, 20))
	return title + "\n" + p.styles.Muted.Render("    "+preview)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// SetChunks replaces the passages and resets the selection.
func (p *PassageList) SetChunks(chunks []domain.Chunk) {
	p.chunks = chunks
	p.selected = 0
}

// Chunks returns the current passages.
func (p *PassageList) Chunks() []domain.Chunk {
	return p.chunks
}

// Selected returns the index of the selected passage.
func (p *PassageList) Selected() int {
	return p.selected
}

// SelectedChunk returns the selected passage, or nil when the list is empty.
func (p *PassageList) SelectedChunk() *domain.Chunk {
	if p.selected < 0 || p.selected >= len(p.chunks) {
		return nil
	}
	return &p.chunks[p.selected]
}

// MoveUp moves selection up.
func (p *PassageList) MoveUp() {
	if p.selected > 0 {
		p.selected--
	}
}

// MoveDown moves selection down.
func (p *PassageList) MoveDown() {
	if p.selected < len(p.chunks)-1 {
		p.selected++
	}
}

// SetDimensions sets the component dimensions.
func (p *PassageList) SetDimensions(width, height int) {
	p.width = width
	p.height = height
}

// Count returns the number of passages.
func (p *PassageList) Count() int {
	return len(p.chunks)
}
