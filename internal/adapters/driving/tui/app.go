package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/keymap"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/messages"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/styles"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/views/ask"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/views/menu"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/views/stats"
)

// App is the root bubbletea model. It routes messages to the active view.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView  *menu.View
	askView   *ask.View
	statsView *stats.View

	currentView messages.ViewType
	width       int
	height      int
	ready       bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		menuView:    menu.NewView(s, km),
		askView:     ask.NewView(s, km, ports.Query),
		statsView:   stats.NewView(s, ports.Stats),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context passed to the services.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	a.statsView.WithContext(ctx)
	return a
}

// WithView sets the view shown first.
func (a *App) WithView(view messages.ViewType) *App {
	a.currentView = view
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("legal-llm"), a.askView.Init()}
	if a.currentView == messages.ViewStats {
		cmds = append(cmds, a.statsView.Load())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewStats {
			return a, a.statsView.Load()
		}
		return a, nil

	case messages.AnswerCompleted:
		a.askView, cmd = a.askView.Update(msg)
		return a, cmd

	case messages.StatsLoaded:
		a.statsView, cmd = a.statsView.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.routeKey(msg)
	}

	// Spinner ticks and cursor blinks belong to the ask view.
	a.askView, cmd = a.askView.Update(msg)
	return a, cmd
}

func (a *App) routeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewStats:
		a.statsView, cmd = a.statsView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			a.currentView = messages.ViewMenu
		}
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewStats:
		return a.statsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Ajuda") + `

Navegação:
  esc         Voltar ao menu
  ctrl+c      Sair

Consulta:
  (digite)    Escreva a pergunta
  enter       Enviar pergunta
  n           Nova pergunta
  tab         Mostrar/ocultar trechos
  j/k, ↑/↓    Navegar pelos trechos

Acervo:
  r           Atualizar

[esc] voltar ao menu`
}

// Run starts the program on the alternate screen and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.statsView.SetDimensions(width, height)
}

// AskView exposes the ask view.
func (a *App) AskView() *ask.View {
	return a.askView
}
