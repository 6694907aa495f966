package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4F46E5")).
			Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4F46E5"))
	botLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#059669"))
	timeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	strongStyle    = lipgloss.NewStyle().Bold(true)
	typingStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#64748B"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
)
