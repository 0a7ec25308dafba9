package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Construction site palette
	Primary   = lipgloss.Color("#F5A623") // Safety orange
	Secondary = lipgloss.Color("#F8C471")
	Accent    = lipgloss.Color("#2E86C1") // Blueprint blue
	Success   = lipgloss.Color("#27AE60")
	Warning   = lipgloss.Color("#F1C40F")
	Error     = lipgloss.Color("#E74C3C")
	Muted     = lipgloss.Color("#7F8C8D")
	Text      = lipgloss.Color("#ECF0F1")
	BgDark    = lipgloss.Color("#1C2833")

	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Padding(0, 1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2).
			MarginTop(1)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(Accent).
				Bold(true).
				PaddingLeft(2)

	ItemStyle = lipgloss.NewStyle().
			Foreground(Text).
			PaddingLeft(2)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	InputStyle = lipgloss.NewStyle().
			Foreground(Text).
			Border(lipgloss.NormalBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Foreground(Text).
				Border(lipgloss.NormalBorder()).
				BorderForeground(Accent).
				Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Width(15)

	PriceStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Width(80).
			Background(BgDark).
			Padding(0, 2)
)

func centered(s string) string {
	return lipgloss.NewStyle().Width(80).Align(lipgloss.Center).Render(s)
}
