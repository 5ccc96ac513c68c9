package tui

import "github.com/charmbracelet/lipgloss"

const cardWidth = 44

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8ecae6")).
			Padding(1, 2).
			Width(cardWidth)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffb703"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8d99ae"))

	acceptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52b788")).
			Bold(true)

	rejectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e63946")).
			Bold(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#023047")).
			Background(lipgloss.Color("#8ecae6")).
			Padding(0, 1)
)
