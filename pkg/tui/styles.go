package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by every editor view.
var (
	salmonPink  = lipgloss.Color("#FFB3BA")
	coralPink   = lipgloss.Color("#FFCCCB")
	mintGreen   = lipgloss.Color("#A8E6CF")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")
)

var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(salmonPink)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	labelStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Bold(true)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(coralPink).
				Bold(true)

	errorPopupStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(salmonPink).
			Foreground(salmonPink).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	pendingStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)
)
