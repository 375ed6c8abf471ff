package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	warnTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))

	// Terminal pane
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	evidenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	foundStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))

	// Chat pane
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	systemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238"))

	focusedPaneStyle = paneStyle.
				BorderForeground(lipgloss.Color("62"))

	difficultyColors = map[string]lipgloss.Color{
		"Beginner":     lipgloss.Color("82"),
		"Intermediate": lipgloss.Color("178"),
		"Advanced":     lipgloss.Color("208"),
		"Expert":       lipgloss.Color("196"),
	}
)

func difficultyStyle(d string) lipgloss.Style {
	c, ok := difficultyColors[d]
	if !ok {
		c = lipgloss.Color("245")
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
