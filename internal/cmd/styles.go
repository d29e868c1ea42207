package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mealwise/mealwise/internal/mealplan"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	pendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	processingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	completedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// renderState returns the state name colored by lifecycle phase.
func renderState(s mealplan.State) string {
	switch s {
	case mealplan.StatePending:
		return pendingStyle.Render(string(s))
	case mealplan.StateProcessing:
		return processingStyle.Render(string(s))
	case mealplan.StateCompleted:
		return completedStyle.Render(string(s))
	case mealplan.StateFailed:
		return failedStyle.Render(string(s))
	default:
		return string(s)
	}
}
