package tui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the views.
type Styles struct {
	PaneTitle    lipgloss.Style
	Pane         lipgloss.Style
	FocusedPane  lipgloss.Style
	Selected     lipgloss.Style
	Dim          lipgloss.Style
	StatusBar    lipgloss.Style
	ErrorStatus  lipgloss.Style
	NotifyMarker lipgloss.Style
}

func DefaultStyles() Styles {
	border := lipgloss.RoundedBorder()
	return Styles{
		PaneTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")),
		Pane: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		FocusedPane: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1),
		ErrorStatus: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Background(lipgloss.Color("236")).
			Padding(0, 1),
		NotifyMarker: lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")),
	}
}
