// Package styles holds the palette and lipgloss styles shared by the
// chat and ingestion views.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is a palette of hex colours.
type Theme struct {
	Accent    lipgloss.Color // titles, gradient start
	Highlight lipgloss.Color // questions, gradient end
	Text      lipgloss.Color
	Subtle    lipgloss.Color // page references, hints
	Good      lipgloss.Color
	Bad       lipgloss.Color
	Frame     lipgloss.Color
}

// DefaultTheme is an amber-on-slate palette readable on dark terminals.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    "#F59E0B",
		Highlight: "#2DD4BF",
		Text:      "#E2E8F0",
		Subtle:    "#94A3B8",
		Good:      "#4ADE80",
		Bad:       "#F87171",
		Frame:     "#475569",
	}
}

// Styles are the rendered styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Question   lipgloss.Style
	Answer     lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	InputField lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles derives styles from t, or from DefaultTheme when t is nil.
func NewStyles(t *Theme) *Styles {
	if t == nil {
		t = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		theme:    t,
		Title:    fg(t.Accent).Bold(true),
		Question: fg(t.Highlight).Bold(true),
		Answer:   fg(t.Text).PaddingLeft(2),
		Muted:    fg(t.Subtle),
		Error:    fg(t.Bad),
		Success:  fg(t.Good),
		InputField: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Frame).
			Padding(0, 1),
		Help: fg(t.Subtle).Italic(true),
	}
}

// DefaultStyles is NewStyles(DefaultTheme()).
func DefaultStyles() *Styles { return NewStyles(nil) }

// Theme returns the palette behind s.
func (s *Styles) Theme() *Theme { return s.theme }

// Gradient returns the progress bar's start and end colours.
func (s *Styles) Gradient() (start, end string) {
	return string(s.theme.Accent), string(s.theme.Highlight)
}
