package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/monobilisim/logdesk/common/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(n int) []models.LogRecord {
	base := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
	out := make([]models.LogRecord, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.LogRecord{
			ID:        i,
			Message:   "message",
			Severity:  models.SeverityInfo,
			Source:    "application",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		_ = json.Unmarshal(body, out)
	}
	return resp.StatusCode
}

func TestPagination(t *testing.T) {
	srv := Start(t, seed(7)...)

	var page models.LogPage
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/logs/query/?page=2", &page))
	assert.Equal(t, 7, page.Count)
	assert.Len(t, page.Results, 2)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/logs/?page=3", nil))
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/logs/query/"))
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/logs/"))
}

func TestQueryEmptyIs404(t *testing.T) {
	srv := Start(t, seed(2)...)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/logs/query/?source=database", nil))

	var page models.LogPage
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/logs/?source=database", &page))
	assert.Equal(t, 0, page.Count)
}

func TestValidationShape(t *testing.T) {
	srv := Start(t)

	var body map[string]map[string][]string
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/logs/query/?severity=info&source=DB", &body))
	assert.Equal(t, []string{"Severity should be in uppercase!"}, body["error"]["severity"])
	assert.Equal(t, []string{"Source should be in lowercase!"}, body["error"]["source"])
}

func TestOverride(t *testing.T) {
	srv := Start(t, seed(1)...)
	srv.Fail(http.MethodGet, "/logs/", Override{Status: http.StatusTeapot, Body: `"short and stout"`})

	assert.Equal(t, http.StatusTeapot, getJSON(t, srv.URL+"/logs/", nil))
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/logs/"))

	srv.Clear()
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/logs/", nil))
}

func TestAggregate(t *testing.T) {
	srv := Start(t, seed(3)...)

	var agg models.AggregateResponse
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/logs/aggregate/", &agg))
	assert.Equal(t, 3, agg.Data.TotalLogs)
	require.Len(t, agg.Data.BySeverity, 1)
	assert.Equal(t, 3, agg.Data.BySeverity[0].Count)
	require.Len(t, agg.Data.ByDate, 1)
	assert.Equal(t, "2024-05-01", agg.Data.ByDate[0].Date)
}
