package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
)

const maxBarWidth = 60

// errStreamEnded is reported when the progress channel closes without a terminal event.
var errStreamEnded = errors.New("progress stream ended unexpectedly")

// IngestModel renders an ingestion progress stream as a live progress bar.
// It keeps reading until the stream closes, so the producer never blocks.
type IngestModel struct {
	events <-chan domain.ProgressEvent
	cancel func()
	name   string

	bar    progress.Model
	styles *styles.Styles
	keys   *keymap.KeyMap

	last       domain.ProgressEvent
	percent    int
	cancelling bool
	done       bool
}

// Ensure IngestModel implements tea.Model.
var _ tea.Model = (*IngestModel)(nil)

// NewIngestModel creates a progress view for the assistant called name.
// cancel is invoked when the user presses ctrl+c; it may be nil.
func NewIngestModel(name string, events <-chan domain.ProgressEvent, cancel func()) *IngestModel {
	s := styles.DefaultStyles()
	start, end := s.Gradient()
	return &IngestModel{
		events: events,
		cancel: cancel,
		name:   name,
		bar:    progress.New(progress.WithGradient(start, end), progress.WithWidth(maxBarWidth)),
		styles: s,
		keys:   keymap.DefaultKeyMap(),
	}
}

// waitForEvent reads the next event off the stream.
func waitForEvent(events <-chan domain.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return messages.StreamClosed{}
		}
		return messages.ProgressReceived{Event: event}
	}
}

// Init implements tea.Model.
func (m *IngestModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update implements tea.Model.
func (m *IngestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(maxBarWidth, max(10, msg.Width-4))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) && !m.cancelling {
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case messages.ProgressReceived:
		m.last = msg.Event
		if msg.Event.Progress != nil {
			m.percent = *msg.Event.Progress
		}
		if msg.Event.Status == domain.StatusComplete {
			m.percent = 100
		}
		return m, waitForEvent(m.events)

	case messages.StreamClosed:
		if !m.last.Status.IsTerminal() {
			m.last = domain.ErrorEvent(errStreamEnded)
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *IngestModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Creating " + m.name))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
	b.WriteString("\n")

	switch {
	case m.last.Status == domain.StatusComplete:
		b.WriteString(m.styles.Success.Render(fmt.Sprintf("%s (id %d)", m.last.Message, m.last.AssistantID)))
	case m.last.Status == domain.StatusError:
		b.WriteString(m.styles.Error.Render("Error: " + m.last.Message))
	case m.cancelling:
		b.WriteString(m.styles.Muted.Render("Cancelling..."))
	default:
		b.WriteString(m.styles.Muted.Render(m.last.Message))
	}
	b.WriteString("\n")
	return b.String()
}

// Result returns the terminal event, or the last event seen if the stream
// has not finished.
func (m *IngestModel) Result() domain.ProgressEvent {
	return m.last
}

// Done reports whether the stream has closed.
func (m *IngestModel) Done() bool {
	return m.done
}

// RunIngest shows the progress of events until the stream closes and
// returns the terminal event. A nil in disables keyboard input.
func RunIngest(name string, events <-chan domain.ProgressEvent, cancel func(), in io.Reader, out io.Writer) (domain.ProgressEvent, error) {
	model := NewIngestModel(name, events, cancel)
	final, err := tea.NewProgram(model, tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		if cancel != nil {
			cancel()
		}
		for range events {
		}
		return domain.ProgressEvent{}, fmt.Errorf("progress view: %w", err)
	}
	result, ok := final.(*IngestModel)
	if !ok {
		return domain.ProgressEvent{}, errors.New("progress view: unexpected model")
	}
	if !result.Done() {
		for range events {
		}
	}
	return result.Result(), nil
}
