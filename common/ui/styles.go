// Package ui provides common UI components for terminal-based interfaces.
// It uses the charmbracelet/lipgloss library for styling terminal output.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/monobilisim/logdesk/common"
)

var (
	// Colors - reuse existing color definitions from common package
	HeaderColor       = common.PrimaryColor
	SectionTitleColor = common.SecondaryColor
	InfoColor         = lipgloss.Color("#17A2B8") // Teal
	SuccessColor      = common.SuccessColor
	WarningColor      = common.WarningColor
	ErrorColor        = common.ErrorColor
	MutedColor        = common.MutedColor
	NormalTextColor   = common.NormalTextColor

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(HeaderColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			PaddingLeft(2)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SectionTitleColor).
			PaddingTop(1)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SuccessColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ErrorColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	KeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(NormalTextColor)

	ValueStyle = lipgloss.NewStyle().
			Foreground(NormalTextColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(HeaderColor).
			Padding(0, 1)

	ErrorBoxStyle = BoxStyle.
			BorderForeground(ErrorColor)
)

// FormatKeyValue formats a key-value pair with consistent styling
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s",
		KeyStyle.Render(key),
		ValueStyle.Render(value))
}

// RenderTitle renders a title with the TitleStyle
func RenderTitle(title string) string {
	return TitleStyle.Render(title)
}

// RenderSection renders a section header with the SectionStyle
func RenderSection(title string) string {
	return SectionStyle.Render(title)
}

// RenderBox renders content within a box with the BoxStyle
func RenderBox(content string) string {
	return BoxStyle.Render(content)
}

// RenderSuccess renders a one-line success notice.
func RenderSuccess(msg string) string {
	return SuccessStyle.Render("✓ " + msg)
}

// RenderWarning renders a one-line warning notice.
func RenderWarning(msg string) string {
	return WarningStyle.Render("! " + msg)
}

// RenderInfo renders a one-line informational notice.
func RenderInfo(msg string) string {
	return InfoStyle.Render(msg)
}
