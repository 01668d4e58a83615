// Package common provides configuration, logging and terminal display helpers
package common

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Default colors for display styles
	PrimaryColor    = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor  = lipgloss.Color("#6B97F7") // Light Blue
	SuccessColor    = lipgloss.Color("#28A745") // Green
	WarningColor    = lipgloss.Color("#FFC107") // Yellow
	ErrorColor      = lipgloss.Color("#DC3545") // Red
	MutedColor      = lipgloss.Color("#6C757D") // Gray
	NormalTextColor = lipgloss.Color("#FFFFFF") // White
)

// DisplayBox creates a nice looking box around content
func DisplayBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 1).
		Width(80)

	output := NewTitleStyle().Render(title) + "\n\n" + content

	return boxStyle.Render(output)
}

// ListItem formats a label/value line with a bullet point. value is
// rendered as given so callers can color it.
func ListItem(label string, value string) string {
	contentStyle := lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(2)

	labelStyle := lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	line := fmt.Sprintf("•  %s  %s", labelStyle.Render(fmt.Sprintf("%-10s", label)), value)

	return contentStyle.Render(line)
}

// NewTitleStyle returns a style for titles
func NewTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true).
		PaddingLeft(2)
}
