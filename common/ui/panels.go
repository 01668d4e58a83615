package ui

import (
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// StatsPanel represents a box containing a collection of key-value statistics
// rendered in insertion order.
type StatsPanel struct {
	Title string
	keys  []string
	vals  map[string]string
}

// NewStatsPanel creates a new StatsPanel with the given title
func NewStatsPanel(title string) *StatsPanel {
	return &StatsPanel{
		Title: title,
		vals:  make(map[string]string),
	}
}

// AddStat adds a statistic to the panel
func (p *StatsPanel) AddStat(key, value string) {
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = value
}

// Render renders the panel as a styled string
func (p *StatsPanel) Render() string {
	var sb strings.Builder

	sb.WriteString(RenderSection(p.Title))
	sb.WriteString("\n")

	pairs := make([]string, 0, len(p.keys))
	for _, key := range p.keys {
		pairs = append(pairs, FormatKeyValue(key, p.vals[key]))
	}
	sb.WriteString(RenderBox(strings.Join(pairs, "\n")))

	return sb.String()
}

// ProblemPanel shows an error message with its itemized causes.
type ProblemPanel struct {
	Message        string
	FieldErrors    map[string]string
	Fields         []string
	NonFieldErrors []string
}

// Render renders the message and any field or non-field errors. Fields
// orders the field errors; keys missing from it follow alphabetically.
func (p ProblemPanel) Render() string {
	var lines []string
	if p.Message != "" {
		lines = append(lines, ErrorStyle.Render(p.Message))
	}

	for _, field := range orderedKeys(p.FieldErrors, p.Fields) {
		lines = append(lines, "  • "+KeyStyle.Render(field)+": "+p.FieldErrors[field])
	}
	for _, msg := range p.NonFieldErrors {
		if strings.Contains(p.Message, msg) {
			continue
		}
		lines = append(lines, "  • "+msg)
	}

	return ErrorBoxStyle.Render(strings.Join(lines, "\n"))
}

func orderedKeys(m map[string]string, order []string) []string {
	seen := make(map[string]bool, len(m))
	out := make([]string, 0, len(m))
	for _, k := range order {
		if _, ok := m[k]; ok && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// TablePanel represents a titled table
type TablePanel struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// NewTablePanel creates a new TablePanel
func NewTablePanel(title string, headers []string) *TablePanel {
	return &TablePanel{
		Title:   title,
		Headers: headers,
		Rows:    make([][]string, 0),
	}
}

// AddRow adds a row to the table
func (p *TablePanel) AddRow(row []string) {
	p.Rows = append(p.Rows, row)
}

// Render renders the table as a styled string
func (p *TablePanel) Render() string {
	var sb strings.Builder

	if p.Title != "" {
		sb.WriteString(RenderSection(p.Title))
		sb.WriteString("\n")
	}

	var tb strings.Builder
	table := tablewriter.NewWriter(&tb)
	header := make([]any, len(p.Headers))
	for i, h := range p.Headers {
		header[i] = h
	}
	table.Header(header...)
	_ = table.Bulk(p.Rows)
	_ = table.Render()
	sb.WriteString(strings.TrimRight(tb.String(), "\n"))

	return sb.String()
}
