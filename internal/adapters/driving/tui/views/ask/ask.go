// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/components/input"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/components/list"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/components/status"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/keymap"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/messages"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/styles"
	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driving"
)

// ErrNoQueryService indicates that no query service was provided.
var ErrNoQueryService = errors.New("query service is required")

// View shows a question input, the latest answer and its passages.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	passages  *list.PassageList
	statusbar *status.Bar
	spinner   spinner.Model

	query driving.QueryService
	ctx   context.Context

	width        int
	height       int
	ready        bool
	thinking     bool
	showPassages bool
	question     string
	answer       *domain.Answer
	err          error
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, query driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewQuestionInput(s),
		passages:  list.NewPassageList(s),
		statusbar: status.NewBar(s, km),
		spinner:   sp,
		query:     query,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used for queries.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	if v.thinking {
		return v, nil
	}

	if v.input.Focused() {
		if msg.Type == tea.KeyEnter {
			return v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewQuestion):
		v.Reset()
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Passages):
		v.showPassages = !v.showPassages
	case v.showPassages:
		v.passages, _ = v.passages.Update(msg)
	}
	return v, nil
}

func (v *View) submit() (*View, tea.Cmd) {
	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		return v, nil
	}

	v.question = question
	v.thinking = true
	v.err = nil
	v.input.Blur()
	v.statusbar.SetState(status.StateThinking)
	return v, tea.Batch(v.spinner.Tick, v.ask(question))
}

func (v *View) ask(question string) tea.Cmd {
	query, ctx := v.query, v.ctx
	return func() tea.Msg {
		if query == nil {
			return messages.AnswerCompleted{Question: question, Err: ErrNoQueryService}
		}
		answer, err := query.Ask(ctx, question)
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.thinking = false
	if msg.Err != nil {
		v.setError(msg.Err)
		v.input.Focus()
		return
	}

	v.err = nil
	v.answer = msg.Answer
	v.passages.SetChunks(msg.Answer.Chunks)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetMessage("")
	v.statusbar.SetAnswer(len(msg.Answer.Sources), string(msg.Answer.Strategy))
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("Consulta à legislação"), "",
		v.input.View(), "",
	}

	switch {
	case v.thinking:
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("Consultando os documentos..."), "")
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Erro: "+v.err.Error()), "")
	case v.answer != nil:
		sections = append(sections, v.renderAnswer(), "")
		if v.showPassages {
			sections = append(sections, v.passages.View(), "")
		}
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderAnswer() string {
	body := v.styles.Answer.Width(max(v.width-4, 20)).Render(v.answer.Text)

	sources := make([]string, 0, len(v.answer.Sources))
	for _, src := range v.answer.Sources {
		sources = append(sources, v.styles.Source.Render(src))
	}
	footer := v.styles.Muted.Render("Fontes: ")
	if len(sources) == 0 {
		footer += v.styles.Muted.Render("nenhuma")
	} else {
		footer += strings.Join(sources, ", ")
	}
	return body + "\n\n" + footer
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.passages.SetDimensions(width, max(height/2, 4))
	v.statusbar.SetWidth(width)
}

// Reset clears the answer and returns to input mode.
func (v *View) Reset() {
	v.input.Reset()
	v.input.Focus()
	v.passages.SetChunks(nil)
	v.answer = nil
	v.question = ""
	v.err = nil
	v.showPassages = false
	v.thinking = false
	v.statusbar.Clear()
}

// Question returns the last submitted question.
func (v *View) Question() string {
	return v.question
}

// Answer returns the last answer, if any.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Thinking reports whether a question is being answered.
func (v *View) Thinking() bool {
	return v.thinking
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.input.Focused()
}

// PassagesVisible reports whether the passage list is shown.
func (v *View) PassagesVisible() bool {
	return v.showPassages
}

// SelectedPassage returns the highlighted passage, if any.
func (v *View) SelectedPassage() *domain.Chunk {
	return v.passages.SelectedChunk()
}
