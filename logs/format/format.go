// Package format holds the display helpers shared by the CLI and the browser.
package format

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/monobilisim/logdesk/common/api/models"
)

// ISODateLayout is the wire format for dates.
const ISODateLayout = "2006-01-02"

// DefaultTruncate is the length Truncate uses when maxLength is not positive.
const DefaultTruncate = 50

var severityColors = map[string]string{
	models.SeverityDebug:    "#17a2b8",
	models.SeverityInfo:     "#28a745",
	models.SeverityWarning:  "#ffc107",
	models.SeverityError:    "#dc3545",
	models.SeverityCritical: "#6f42c1",
}

const unknownSeverityColor = "#6c757d"

// Date formats t like "Jan 2, 2006".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// DateTime formats t like "Jan 2, 2006, 03:04:05 PM".
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006, 03:04:05 PM")
}

// DateString reformats a YYYY-MM-DD string with Date. Unparseable input is
// returned unchanged.
func DateString(s string) string {
	t, err := time.Parse(ISODateLayout, s)
	if err != nil {
		return s
	}
	return Date(t)
}

// ISODate returns t as YYYY-MM-DD in UTC.
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(ISODateLayout)
}

// SeverityColor returns the hex color for a severity level, gray for unknown levels.
func SeverityColor(severity string) string {
	if c, ok := severityColors[severity]; ok {
		return c
	}
	return unknownSeverityColor
}

// Severity renders a severity label in its color.
func Severity(severity string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(SeverityColor(severity))).
		Render(severity)
}

// Truncate shortens text to maxLength runes and appends "...".
func Truncate(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultTruncate
	}
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLength]) + "..."
}

// SingleLine collapses newlines so a message fits one table row.
func SingleLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
