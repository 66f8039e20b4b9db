package tui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// exchange is one question with its outcome.
type exchange struct {
	question string
	answer   *domain.Answer
	err      error
}

// ChatModel is an interactive question and answer session with one assistant.
type ChatModel struct {
	ctx       context.Context
	ports     *Ports
	assistant *domain.Assistant

	input   textinput.Model
	spinner spinner.Model
	styles  *styles.Styles
	keys    *keymap.KeyMap

	history []exchange
	waiting bool
}

// Ensure ChatModel implements tea.Model.
var _ tea.Model = (*ChatModel)(nil)

// NewChatModel resolves assistantID for the caller and returns a chat view.
func NewChatModel(ctx context.Context, ports *Ports, assistantID int64) (*ChatModel, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating chat: %w", err)
	}
	assistant, err := ports.Assistants.Get(ctx, ports.Caller, assistantID)
	if err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Placeholder = "Ask a question about " + assistant.FileName
	ti.Focus()
	ti.CharLimit = 1000
	ti.Width = 60

	return &ChatModel{
		ctx:       ctx,
		ports:     ports,
		assistant: assistant,
		input:     ti,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:    styles.DefaultStyles(),
		keys:      keymap.DefaultKeyMap(),
	}, nil
}

// Init implements tea.Model.
func (m *ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

// ask runs one question through the responder.
func (m *ChatModel) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.ports.Responder.Answer(m.ctx, m.ports.Caller, m.assistant.ID, question)
		return messages.AnswerReceived{Answer: answer, Err: err}
	}
}

// Update implements tea.Model.
func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = max(20, msg.Width-8)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Cancel):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.history = append(m.history, exchange{question: question})
			m.waiting = true
			m.input.Reset()
			return m, tea.Batch(m.ask(question), m.spinner.Tick)
		}

	case messages.AnswerReceived:
		if n := len(m.history); n > 0 {
			m.history[n-1].answer = msg.Answer
			m.history[n-1].err = msg.Err
		}
		m.waiting = false
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *ChatModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.assistant.Name))
	b.WriteString(m.styles.Muted.Render("  " + m.assistant.FileName))
	b.WriteString("\n\n")

	for _, ex := range m.history {
		b.WriteString(m.styles.Question.Render("> " + ex.question))
		b.WriteString("\n")
		switch {
		case ex.err != nil:
			b.WriteString(m.styles.Error.Render("  " + ex.err.Error()))
			b.WriteString("\n")
		case ex.answer != nil:
			b.WriteString(m.styles.Answer.Render(ex.answer.Response))
			b.WriteString("\n")
			if len(ex.answer.Sources) > 0 {
				b.WriteString(m.styles.Muted.Render("  Sources: " + FormatSources(ex.answer.Sources)))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	if m.waiting {
		b.WriteString(m.spinner.View() + " Thinking...")
	} else {
		b.WriteString(m.styles.InputField.Render(m.input.View()))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(keymap.HelpLine(m.keys.ChatHelp())))
	b.WriteString("\n")
	return b.String()
}

// Waiting reports whether a question is in flight.
func (m *ChatModel) Waiting() bool {
	return m.waiting
}

// RunChat starts an interactive session with assistantID.
func RunChat(ctx context.Context, ports *Ports, assistantID int64, in io.Reader, out io.Writer) error {
	model, err := NewChatModel(ctx, ports, assistantID)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out)).Run()
	return err
}

// FormatSources renders page numbers as "page 3" or "pages 1, 4, 9".
func FormatSources(pages []int) string {
	if len(pages) == 0 {
		return "none"
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	if len(pages) == 1 {
		return "page " + parts[0]
	}
	return "pages " + strings.Join(parts, ", ")
}
