package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the tab bar, status line and overlays.
var (
	accent = lipgloss.Color("205")
	subtle = lipgloss.Color("240")
	alarm  = lipgloss.Color("196")
	amber  = lipgloss.Color("214")
)

var (
	tabStyle         = lipgloss.NewStyle().Padding(0, 1)
	activeTabStyle   = tabStyle.Foreground(accent).Background(lipgloss.Color("236")).Bold(true)
	inactiveTabStyle = tabStyle.Foreground(subtle)

	dangerStyle = lipgloss.NewStyle().Foreground(alarm).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(subtle).Italic(true)
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(amber).Bold(true).Padding(0, 1)

	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(alarm).
			Padding(1, 3)

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)
