package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary = lipgloss.Color("#a78bfa")
	fgBase  = lipgloss.Color("#c0c0c0")
	fgMuted = lipgloss.Color("#808080")
	border  = lipgloss.Color("#585858")
	errorFg = lipgloss.Color("#e06c75")
)

var (
	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(fgBase)

	metaStyle = lipgloss.NewStyle().
			Foreground(fgMuted)

	timeStyle = lipgloss.NewStyle().
			Foreground(fgBase)

	barFilledStyle = lipgloss.NewStyle().
			Foreground(primary)

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(border)

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	noticeStyle = lipgloss.NewStyle().
			Foreground(fgMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorFg)
)
