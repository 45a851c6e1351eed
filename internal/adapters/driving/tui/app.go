// Package tui provides the interactive question-answering screen.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Styles holds the lipgloss styles used by the app.
type Styles struct {
	Title    lipgloss.Style
	Question lipgloss.Style
	Answer   lipgloss.Style
	Refusal  lipgloss.Style
	Citation lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the default colour scheme.
func DefaultStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		Question: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CDD6F4")),
		Answer:   lipgloss.NewStyle().Foreground(lipgloss.Color("#CDD6F4")),
		Refusal:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Citation: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

// exchange is one asked question and its outcome.
type exchange struct {
	question string
	answer   *domain.Answer
	err      error
}

// answerMsg delivers an Ask result back into the update loop.
type answerMsg struct {
	question string
	answer   *domain.Answer
	err      error
}

// App is the bubbletea model for the interactive session.
type App struct {
	qa     driving.QAService
	opts   driving.AskOptions
	ctx    context.Context
	styles *Styles

	input    textinput.Model
	spin     spinner.Model
	view     viewport.Model
	history  []exchange
	waiting  bool
	ready    bool
	width    int
	height   int
}

// NewApp creates the interactive app over a QA service.
func NewApp(qa driving.QAService, opts driving.AskOptions) *App {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about your documents..."
	ti.Focus()
	ti.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		qa:     qa,
		opts:   opts,
		ctx:    context.Background(),
		styles: DefaultStyles(),
		input:  ti,
		spin:   sp,
		width:  80,
		height: 24,
	}
}

// WithContext sets the context used for Ask calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.view = viewport.New(msg.Width, msg.Height-4)
		a.view.SetContent(a.historyView())
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return a, tea.Quit
		case tea.KeyEnter:
			if a.waiting {
				return a, nil
			}
			question := strings.TrimSpace(a.input.Value())
			if question == "" {
				return a, nil
			}
			a.input.Reset()
			a.waiting = true
			return a, tea.Batch(a.spin.Tick, a.ask(question))
		}

	case answerMsg:
		a.waiting = false
		a.history = append(a.history, exchange{
			question: msg.question,
			answer:   msg.answer,
			err:      msg.err,
		})
		if a.ready {
			a.view.SetContent(a.historyView())
			a.view.GotoBottom()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.waiting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)
	if a.ready {
		a.view, cmd = a.view.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// View implements tea.Model.
func (a *App) View() string {
	var sb strings.Builder

	sb.WriteString(a.styles.Title.Render("docqa"))
	sb.WriteString("\n")

	if a.ready {
		sb.WriteString(a.view.View())
		sb.WriteString("\n")
	}

	if a.waiting {
		sb.WriteString(a.spin.View())
		sb.WriteString(a.styles.Muted.Render(" thinking..."))
	} else {
		sb.WriteString(a.input.View())
	}
	sb.WriteString("\n")
	sb.WriteString(a.styles.Muted.Render("enter: ask  esc: quit"))

	return sb.String()
}

// ask runs one question off the update loop.
func (a *App) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := a.qa.Ask(a.ctx, question, a.opts)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// historyView renders all exchanges so far.
func (a *App) historyView() string {
	var sb strings.Builder
	for i, ex := range a.history {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(a.styles.Question.Render("> " + ex.question))
		sb.WriteString("\n")

		switch {
		case ex.err != nil:
			sb.WriteString(a.styles.Error.Render(fmt.Sprintf("error: %v", ex.err)))
		case ex.answer.Refused:
			sb.WriteString(a.styles.Refusal.Render(ex.answer.Text))
		default:
			sb.WriteString(a.styles.Answer.Render(ex.answer.Text))
			for _, cit := range ex.answer.Citations {
				sb.WriteString("\n")
				sb.WriteString(a.styles.Citation.Render(
					fmt.Sprintf("  %s, page %d", cit.Document, cit.Page)))
			}
			sb.WriteString("\n")
			sb.WriteString(a.styles.Muted.Render(
				fmt.Sprintf("  confidence %.2f", ex.answer.Confidence)))
		}
	}
	return sb.String()
}
