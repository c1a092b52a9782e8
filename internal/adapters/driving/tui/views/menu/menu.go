// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/keymap"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/messages"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/styles"
)

// Item is a menu entry. Entries with Quit set end the program.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

// View is the start screen.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	items    []Item
	selected int
	ready    bool
}

// NewView creates the menu. Nil arguments fall back to the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keymap: km,
		items: []Item{
			{Label: "Consultar legislação", Description: "perguntar e ver as fontes", View: messages.ViewAsk},
			{Label: "Acervo", Description: "documentos e trechos indexados", View: messages.ViewStats},
			{Label: "Ajuda", Description: "atalhos de teclado", View: messages.ViewHelp},
			{Label: "Sair", Quit: true},
		},
	}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and opens entries. Digits 1-9 open the entry at
// that position directly.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.ready = true
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Up):
			v.selected = (v.selected - 1 + len(v.items)) % len(v.items)
		case key.Matches(msg, v.keymap.Down):
			v.selected = (v.selected + 1) % len(v.items)
		case key.Matches(msg, v.keymap.Select):
			return v, v.open(v.selected)
		case key.Matches(msg, v.keymap.Quit):
			return v, tea.Quit
		default:
			if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
				if i := int(s[0] - '1'); i < len(v.items) {
					v.selected = i
					return v, v.open(i)
				}
			}
		}
	}
	return v, nil
}

func (v *View) open(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("legal-llm"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Consulta a leis e decretos brasileiros"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i == v.selected {
			b.WriteString("> " + v.styles.Subtitle.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		if item.Description != "" {
			b.WriteString("  " + v.styles.Muted.Render(item.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	var hints []string
	for _, k := range v.keymap.MenuHelp() {
		h := k.Help()
		hints = append(hints, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	b.WriteString(v.styles.Muted.Render(strings.Join(hints, "  ")))
	return b.String()
}

// SetDimensions marks the view ready. The layout does not depend on size.
func (v *View) SetDimensions(_, _ int) {
	v.ready = true
}

// Selected returns the highlighted index.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}
