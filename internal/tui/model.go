// Package tui runs the chat widget in a terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brainovision/campus-assistant/backend/internal/model/chat"
	"github.com/brainovision/campus-assistant/backend/internal/widget"
)

const (
	title      = "Brainovision AI Assistant"
	typingText = "Brainovision AI is typing..."

	// title, typing line, input and help
	chromeHeight = 4
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

var quickKeys = map[tea.KeyType]int{
	tea.KeyF1: 0,
	tea.KeyF2: 1,
	tea.KeyF3: 2,
	tea.KeyF4: 3,
}

type turnDoneMsg struct {
	text  string
	state widget.State
	err   error
}

// Model is the terminal chat panel.
type Model struct {
	ctx      context.Context
	widget   *widget.Widget
	field    *widget.Field
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	messages []chat.Message
	typing   bool
	pending  bool
	status   string
	width    int
	ready    bool
}

// New builds a model around w. field must be the input w reads from.
func New(ctx context.Context, w *widget.Widget, field *widget.Field) Model {
	ti := textinput.New()
	ti.Placeholder = "Type your message... (Enter to send, Esc to quit)"
	ti.Prompt = "│ "
	ti.CharLimit = 1024
	ti.Width = 80
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = typingStyle

	return Model{
		ctx:      ctx,
		widget:   w,
		field:    field,
		viewport: viewport.New(80, 20),
		input:    ti,
		spinner:  sp,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.pending {
				m.status = widget.ErrTurnInFlight.Error()
				return m, nil
			}
			text := m.input.Value()
			m.field.SetValue(text)
			m.input.Reset()
			cmd := m.runTurn(text, m.widget.SendMessage)
			return m, cmd
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		if idx, ok := quickKeys[msg.Type]; ok && idx < len(widget.QuickQuestions) {
			if m.pending {
				m.status = widget.ErrTurnInFlight.Error()
				return m, nil
			}
			question := widget.QuickQuestions[idx]
			w := m.widget
			cmd := m.runTurn("", func(ctx context.Context) (widget.State, error) {
				return w.SendQuickQuestion(ctx, question)
			})
			return m, cmd
		}

	case appendMsg:
		m.messages = append(m.messages, msg.message)
		m.refresh()
		return m, nil

	case typingMsg:
		m.typing = msg.visible
		return m, nil

	case scrollMsg:
		m.viewport.GotoBottom()
		return m, nil

	case turnDoneMsg:
		m.pending = false
		m.status = ""
		if errors.Is(msg.err, widget.ErrTurnInFlight) {
			m.status = msg.err.Error()
			if m.input.Value() == "" {
				m.input.SetValue(msg.text)
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// runTurn marks a turn pending until its turnDoneMsg arrives. text is the
// typed input, handed back if the widget turns the send down.
func (m *Model) runTurn(text string, send func(context.Context) (widget.State, error)) tea.Cmd {
	m.pending = true
	ctx := m.ctx
	return func() tea.Msg {
		state, err := send(ctx)
		return turnDoneMsg{text: text, state: state, err: err}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
}

func (m Model) renderTranscript() string {
	bodyStyle := lipgloss.NewStyle().Width(max(m.width-2, 10)).PaddingLeft(2)

	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := botLabelStyle.Render("Brainovision AI")
		if msg.IsUser() {
			label = userLabelStyle.Render("You")
		}
		b.WriteString(label + " " + timeStyle.Render(msg.Timestamp) + "\n")
		b.WriteString(bodyStyle.Render(renderBody(msg.Text)))
	}
	return b.String()
}

func renderBody(text string) string {
	return boldPattern.ReplaceAllStringFunc(text, func(s string) string {
		return strongStyle.Render(boldPattern.FindStringSubmatch(s)[1])
	})
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	typing := ""
	if m.typing {
		typing = m.spinner.View() + typingStyle.Render(typingText)
	} else if m.status != "" {
		typing = statusStyle.Render(m.status)
	}

	help := make([]string, 0, len(widget.QuickQuestions))
	for i, q := range widget.QuickQuestions {
		help = append(help, fmt.Sprintf("F%d %s", i+1, q))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		m.viewport.View(),
		typing,
		m.input.View(),
		helpStyle.Render(strings.Join(help, " · ")),
	)
}

// Run starts the terminal widget against replier and blocks until the user quits.
func Run(ctx context.Context, replier widget.Replier, opts ...widget.Option) error {
	sink := NewSink()
	field := widget.NewField()
	w := widget.New(sink, field, replier, opts...)

	p := tea.NewProgram(New(ctx, w, field), tea.WithAltScreen(), tea.WithContext(ctx))
	sink.Attach(p.Send)

	_, err := p.Run()
	return err
}
