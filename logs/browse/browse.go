// Package browse is an interactive pager over the log list.
package browse

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/monobilisim/logdesk/common/api/apierr"
	"github.com/monobilisim/logdesk/common/ui"
	"github.com/monobilisim/logdesk/logs/format"
	"github.com/monobilisim/logdesk/logs/workflow"
)

// Pager is the part of the list workflow the browser drives.
type Pager interface {
	Fetch(ctx context.Context, page int) workflow.ListState
	Refresh(ctx context.Context) workflow.ListState
	Dismiss()
	State() workflow.ListState
}

type fetchedMsg struct {
	state workflow.ListState
}

// Model pages through logs with n/p, reloads with r and quits with q.
type Model struct {
	ctx       context.Context
	pager     Pager
	state     workflow.ListState
	loading   bool
	termWidth int
}

// New returns a browser that starts on page 1.
func New(ctx context.Context, pager Pager) Model {
	return Model{ctx: ctx, pager: pager, state: pager.State(), loading: true}
}

func (m Model) fetch(page int) tea.Cmd {
	return func() tea.Msg {
		return fetchedMsg{state: m.pager.Fetch(m.ctx, page)}
	}
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		return fetchedMsg{state: m.pager.Refresh(m.ctx)}
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.fetch(1)
}

// Update handles keys and fetch results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		p := m.state.Pagination
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "n", "right", "l":
			if p.HasNext() {
				m.loading = true
				return m, m.fetch(p.CurrentPage + 1)
			}
		case "p", "left", "h":
			if p.HasPrev() {
				m.loading = true
				return m, m.fetch(p.CurrentPage - 1)
			}
		case "g":
			m.loading = true
			return m, m.fetch(1)
		case "G":
			m.loading = true
			return m, m.fetch(p.TotalPages)
		case "r":
			m.loading = true
			return m, m.refresh()
		case "x":
			m.pager.Dismiss()
			m.state = m.pager.State()
		}

	case fetchedMsg:
		m.state = msg.state
		m.loading = false

	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
	}

	return m, nil
}

// View renders the current page.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(ui.RenderTitle("Logs"))
	sb.WriteString("\n")

	if !m.state.Problem.Empty() {
		p := m.state.Problem
		sb.WriteString(ui.ProblemPanel{
			Message:        p.Message,
			FieldErrors:    p.FieldErrors,
			Fields:         p.Fields,
			NonFieldErrors: p.NonFieldErrors,
		}.Render())
		sb.WriteString("\n")
	}

	switch {
	case m.state.Status == workflow.StatusEmpty:
		sb.WriteString(ui.RenderInfo(apierr.MsgNoResults))
		sb.WriteString("\n")
	case len(m.state.Logs) > 0:
		sb.WriteString(m.table())
		sb.WriteString("\n")
	}

	p := m.state.Pagination
	status := fmt.Sprintf("Page %d of %d · %d logs", p.CurrentPage, p.TotalPages, p.Count)
	if m.loading {
		status += " · loading..."
	}
	sb.WriteString(ui.MutedStyle.Render(status))
	sb.WriteString("\n")
	sb.WriteString(ui.MutedStyle.Render("n/p page · g/G first/last · r reload · x dismiss · q quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) table() string {
	width := format.DefaultTruncate
	if m.termWidth > 80 {
		width = m.termWidth - 60
	}

	t := ui.NewTablePanel("", []string{"ID", "Time", "Severity", "Source", "Message"})
	for _, r := range m.state.Logs {
		t.AddRow([]string{
			strconv.Itoa(r.ID),
			format.DateTime(r.Timestamp),
			format.Severity(r.Severity),
			r.Source,
			format.Truncate(format.SingleLine(r.Message), width),
		})
	}
	return t.Render()
}
