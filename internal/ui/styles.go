package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	noteStyle    = lipgloss.NewStyle().Faint(true)
	doneRowStyle = lipgloss.NewStyle().Faint(true)
	statusStyle  = lipgloss.NewStyle().Italic(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	alertBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
	alertTitleStyle  = lipgloss.NewStyle().Bold(true)
	buttonStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	destructiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	// Swipe action colours: green done, orange edit, red delete.
	toggleActionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#579F2B"))
	editActionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	deleteActionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func actionStyle(a rowAction) lipgloss.Style {
	switch a {
	case actionToggle:
		return toggleActionStyle
	case actionEdit:
		return editActionStyle
	default:
		return deleteActionStyle
	}
}
