package browse

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/monobilisim/logdesk/common"
	"github.com/monobilisim/logdesk/common/api/client"
	"github.com/monobilisim/logdesk/common/api/fakeapi"
	"github.com/monobilisim/logdesk/common/api/models"
	"github.com/monobilisim/logdesk/logs/filter"
	"github.com/monobilisim/logdesk/logs/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T, n int) Model {
	t.Helper()
	common.RemoveColors()

	base := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)
	var seed []models.LogRecord
	for i := 1; i <= n; i++ {
		seed = append(seed, models.LogRecord{
			ID: i, Message: "entry", Severity: models.SeverityInfo, Source: "application",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
	srv := fakeapi.Start(t, seed...)
	c := client.New(srv.URL, 2*time.Second)
	return New(context.Background(), workflow.NewList(c, filter.NewStore(), workflow.DefaultPageSize))
}

// step runs cmd and feeds its message back into the model.
func step(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func press(m Model, key string) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return next.(Model), cmd
}

func TestBrowse_Paging(t *testing.T) {
	m := newModel(t, 12)

	m = step(t, m, m.Init())
	assert.Equal(t, 1, m.state.Pagination.CurrentPage)
	assert.Contains(t, m.View(), "Page 1 of 3")

	m, cmd := press(m, "n")
	assert.True(t, m.loading)
	m = step(t, m, cmd)
	assert.Equal(t, 2, m.state.Pagination.CurrentPage)
	assert.False(t, m.loading)

	m, cmd = press(m, "G")
	m = step(t, m, cmd)
	assert.Equal(t, 3, m.state.Pagination.CurrentPage)
	assert.Len(t, m.state.Logs, 2)

	_, cmd = press(m, "n")
	assert.Nil(t, cmd)

	m, cmd = press(m, "p")
	m = step(t, m, cmd)
	assert.Equal(t, 2, m.state.Pagination.CurrentPage)
}

func TestBrowse_EmptyView(t *testing.T) {
	m := newModel(t, 0)
	m = step(t, m, m.Init())

	assert.Contains(t, m.View(), "No logs found for the selected criteria.")
}

func TestBrowse_Quit(t *testing.T) {
	m := newModel(t, 1)

	_, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
