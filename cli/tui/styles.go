// Package tui provides the Bubble Tea chat interface for the atelier CLI.
//
// The chat view is a viewport transcript over a textarea input. The input
// is disabled while a request is streaming; there is never more than one
// request in flight.
package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color palette.
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
)

// Styles for chat components.
var (
	// TitleStyle for the header line.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// UserStyle for user-authored transcript labels.
	UserStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)

	// AgentStyle for agent-authored transcript labels.
	AgentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// StageStyle for the stage indicator.
	StageStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// ErrorStyle for inline failure messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// HintStyle for gate prompts and help text.
	HintStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// DisableColors forces plain ASCII output for every style. Used when
// no_color is set in the config.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
