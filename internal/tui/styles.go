package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	statusStyles = map[string]lipgloss.Style{
		// Terminal states
		"resolved":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"succeeded": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		// Active states
		"resolving":  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"installing": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		// Skipped / warning
		"cancelled": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"skipped":   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		// Error
		"failed":            lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"resolution-failed": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"error":             lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		// Idle
		"selected":     lipgloss.NewStyle(),
		"not-selected": lipgloss.NewStyle().Faint(true),
		"pending":      lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
