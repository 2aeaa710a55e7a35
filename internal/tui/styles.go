package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent    = lipgloss.Color("#F2C14E")
	success   = lipgloss.Color("#10B981")
	danger    = lipgloss.Color("#EF4444")
	textMuted = lipgloss.Color("#9CA3AF")
	border    = lipgloss.Color("#4B5563")
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(accent)

	labelStyle = lipgloss.NewStyle().
		Foreground(textMuted).
		Width(12)

	activeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(success)

	alarmStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(danger)

	errorStyle = lipgloss.NewStyle().
		Foreground(danger).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(danger).
		Padding(0, 1)

	errorTextStyle = lipgloss.NewStyle().
		Foreground(danger)

	helpStyle = lipgloss.NewStyle().
		Foreground(textMuted)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
)
