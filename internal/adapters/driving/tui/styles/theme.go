// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the palette every style is derived from.
type Theme struct {
	Accent  lipgloss.Color // titles, selection background
	Label   lipgloss.Color // tags, source keys, subtitles
	Surface lipgloss.Color // status bar and tag text
	Text    lipgloss.Color
	Dim     lipgloss.Color
	Good    lipgloss.Color
	Bad     lipgloss.Color
	Score   lipgloss.Color
	Frame   lipgloss.Color
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.Color("#7AA2F7"),
		Label:   lipgloss.Color("#E0AF68"),
		Surface: lipgloss.Color("#16161E"),
		Text:    lipgloss.Color("#C0CAF5"),
		Dim:     lipgloss.Color("#565F89"),
		Good:    lipgloss.Color("#9ECE6A"),
		Bad:     lipgloss.Color("#F7768E"),
		Score:   lipgloss.Color("#7DCFFF"),
		Frame:   lipgloss.Color("#3B4261"),
	}
}

// Styles are the rendered styles shared by all views.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	// Tag labels a chunk's tag; Source its source key.
	Tag    lipgloss.Style
	Source lipgloss.Style

	// Score shows a search hit's similarity.
	Score lipgloss.Style

	// Confirm frames the delete prompt.
	Confirm lipgloss.Style
}

// NewStyles builds the styles for theme, or for DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	framed := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder())

	return &Styles{
		theme:      theme,
		Title:      fg(theme.Accent).Bold(true),
		Subtitle:   fg(theme.Label).Bold(true),
		Normal:     fg(theme.Text),
		Muted:      fg(theme.Dim),
		Selected:   fg(theme.Surface).Background(theme.Accent).Bold(true),
		Error:      fg(theme.Bad),
		Success:    fg(theme.Good),
		InputField: framed.BorderForeground(theme.Frame).Padding(0, 1),
		StatusBar:  fg(theme.Dim).Background(theme.Surface).Padding(0, 1),
		Help:       fg(theme.Dim),
		Border:     framed.BorderForeground(theme.Frame),
		Tag:        fg(theme.Surface).Background(theme.Label).Padding(0, 1),
		Source:     fg(theme.Label),
		Score:      fg(theme.Score),
		Confirm:    framed.BorderForeground(theme.Bad).Foreground(theme.Bad).Bold(true).Padding(0, 1),
	}
}

// DefaultStyles returns NewStyles(DefaultTheme()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
