// Package stats provides the collection overview view for the TUI.
package stats

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/messages"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/styles"
	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driving"
)

// View lists the ingested source files and the chunk count.
type View struct {
	styles  *styles.Styles
	service driving.StatsService
	ctx     context.Context

	stats   *domain.CollectionStats
	err     error
	loading bool
	width   int
	height  int
	ready   bool
}

// NewView creates a stats view. A nil service shows an empty collection.
func NewView(s *styles.Styles, service driving.StatsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		service: service,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context used to load stats.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Load returns a command that fetches fresh stats.
func (v *View) Load() tea.Cmd {
	v.loading = true
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.StatsLoaded{Stats: &domain.CollectionStats{}}
		}
		s, err := service.Stats(ctx)
		return messages.StatsLoaded{Stats: s, Err: err}
	}
}

// Update handles messages for the stats view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case messages.StatsLoaded:
		v.loading = false
		v.stats, v.err = msg.Stats, msg.Err
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		case "r":
			return v, v.Load()
		}
	}
	return v, nil
}

// View renders the stats view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Acervo"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Carregando..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Erro: " + v.err.Error()))
	case v.stats != nil:
		if v.stats.Collection != "" {
			b.WriteString(v.styles.Muted.Render("Coleção: ") + v.stats.Collection + "\n")
		}
		b.WriteString(v.styles.Muted.Render("Trechos: ") + fmt.Sprint(v.stats.Chunks) + "\n\n")
		if len(v.stats.Sources) == 0 {
			b.WriteString(v.styles.Muted.Render("Nenhum documento ingerido"))
		} else {
			b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Documentos (%d)", len(v.stats.Sources))))
			for _, src := range v.stats.Sources {
				b.WriteString("\n  " + v.styles.Source.Render(src))
			}
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("[r] Atualizar  [esc] Voltar"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Stats returns the last loaded stats.
func (v *View) Stats() *domain.CollectionStats {
	return v.stats
}
