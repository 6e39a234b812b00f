package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles table header rows.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// TitleStyle styles prompt titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))

	// CurrentStyle marks the version that would run in the current directory.
	CurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))

	// HintStyle is used for key hints and secondary annotations.
	HintStyle = lipgloss.NewStyle().Faint(true)

	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)

	statusStyles = map[string]lipgloss.Style{
		"installed": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"removed":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		"downloading": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"installing":  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		"exists": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		"error": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		"pending": lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
