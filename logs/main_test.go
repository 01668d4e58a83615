package logs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/monobilisim/logdesk/common"
	"github.com/monobilisim/logdesk/common/api/client"
	"github.com/monobilisim/logdesk/common/api/fakeapi"
	"github.com/monobilisim/logdesk/common/api/models"
	"github.com/monobilisim/logdesk/logs/form"
	"github.com/monobilisim/logdesk/logs/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleRecords() []models.LogRecord {
	base := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	return []models.LogRecord{
		{ID: 1, Message: "connection reset", Severity: models.SeverityWarning, Source: "network", Timestamp: base},
		{ID: 2, Message: "query timeout", Severity: models.SeverityError, Source: "database", Timestamp: base.Add(time.Hour)},
		{ID: 3, Message: "user login", Severity: models.SeverityInfo, Source: "security", Timestamp: base.Add(25 * time.Hour)},
	}
}

// setupCLI points the commands at a fresh fake API.
func setupCLI(t *testing.T, seed ...models.LogRecord) *fakeapi.Server {
	t.Helper()
	common.RemoveColors()

	srv := fakeapi.Start(t, seed...)
	origClient, origConfig := clientFn, common.Config
	t.Cleanup(func() {
		clientFn = origClient
		common.Config = origConfig
	})
	clientFn = func() *client.Client {
		c := client.New(srv.URL, 2*time.Second)
		c.HTTPClient = srv.HTTPClient()
		return c
	}
	common.Config.Output.Format = "table"
	return srv
}

func runCmd(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewLogsCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestList_Table(t *testing.T) {
	setupCLI(t, sampleRecords()...)

	out, _, err := runCmd(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "connection reset")
	assert.Contains(t, out, "Page 1 of 1 (3 logs)")
}

func TestList_JSONWithJQ(t *testing.T) {
	setupCLI(t, sampleRecords()...)

	out, _, err := runCmd(t, "", "list", "--severity", "error", "--jq", ".logs[].message")
	require.NoError(t, err)
	assert.Equal(t, "query timeout\n", out)
}

func TestList_PagesFollowServerPageSize(t *testing.T) {
	base := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	var records []models.LogRecord
	for i := 1; i <= 12; i++ {
		records = append(records, models.LogRecord{
			ID:        i,
			Message:   "worker heartbeat " + strconv.Itoa(i),
			Severity:  models.SeverityInfo,
			Source:    "system",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
	setupCLI(t, records...)

	out, _, err := runCmd(t, "", "list", "--page", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 3 of 3 (12 logs)")
}

func TestList_FallbackNotice(t *testing.T) {
	srv := setupCLI(t, sampleRecords()...)
	srv.Fail(http.MethodGet, "/logs/query/", fakeapi.Override{Status: http.StatusInternalServerError, Body: `{"detail":"Internal server error"}`})

	out, _, err := runCmd(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "connection reset")
	assert.Contains(t, out, "! "+msgFallbackNotice)
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/logs/"))
}

func TestList_YAML(t *testing.T) {
	setupCLI(t, sampleRecords()...)

	out, _, err := runCmd(t, "", "list", "-o", "yaml")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "success", doc["status"])
}

func TestList_EmptyIsNotAnError(t *testing.T) {
	setupCLI(t, sampleRecords()...)

	out, errOut, err := runCmd(t, "", "list", "--source", "system")
	require.NoError(t, err)
	assert.Contains(t, out, "No logs found for the selected criteria.")
	assert.Empty(t, errOut)
}

func TestList_FilterErrorsBlockRequest(t *testing.T) {
	srv := setupCLI(t, sampleRecords()...)

	_, errOut, err := runCmd(t, "", "list", "--start-date", "2024-05-10", "--end-date", "2024-05-01", "--source", "db1")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, errOut, workflow.MsgFixFiltersList)
	assert.Contains(t, errOut, "--end-date")
	assert.Contains(t, errOut, "--source")
	assert.Equal(t, 0, srv.Calls(http.MethodGet, "/logs/query/"))
}

func TestGet_Missing(t *testing.T) {
	setupCLI(t)

	_, errOut, err := runCmd(t, "", "get", "12")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, errOut, "The requested log does not exist or has been deleted.")
}

func TestGet_JSON(t *testing.T) {
	setupCLI(t, sampleRecords()...)

	out, _, err := runCmd(t, "", "get", "2", "-o", "json")
	require.NoError(t, err)

	var rec models.LogRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "database", rec.Source)
}

func TestCreate_LocalValidation(t *testing.T) {
	srv := setupCLI(t)

	_, errOut, err := runCmd(t, "", "create", "--severity", "info", "--source", "DB1")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, errOut, form.MsgFixBeforeSubmit)
	assert.Contains(t, errOut, form.MsgMessageRequired)
	assert.Contains(t, errOut, form.MsgSourceLower)
	assert.Equal(t, 0, srv.Calls(http.MethodPost, "/logs/"))
}

func TestCreate_Success(t *testing.T) {
	srv := setupCLI(t)

	out, errOut, err := runCmd(t, "", "create", "-m", "disk almost full", "-s", "warning", "-S", "System")
	require.NoError(t, err)
	assert.Contains(t, errOut, form.MsgCreated)
	assert.Contains(t, out, "disk almost full")

	recs := srv.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "WARNING", recs[0].Severity)
	assert.Equal(t, "system", recs[0].Source)
}

func TestEdit_OnlyChangedFields(t *testing.T) {
	srv := setupCLI(t, sampleRecords()...)

	_, errOut, err := runCmd(t, "", "edit", "1", "--severity", "critical")
	require.NoError(t, err)
	assert.Contains(t, errOut, form.MsgUpdated)

	for _, r := range srv.Records() {
		if r.ID == 1 {
			assert.Equal(t, "CRITICAL", r.Severity)
			assert.Equal(t, "connection reset", r.Message)
			assert.Equal(t, "network", r.Source)
		}
	}
}

func TestDelete_ConfirmAndFailure(t *testing.T) {
	srv := setupCLI(t, sampleRecords()...)

	_, errOut, err := runCmd(t, "n\n", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, errOut, "! "+msgAborted)
	assert.Equal(t, 0, srv.Calls(http.MethodDelete, "/logs/1/"))

	out, _, err := runCmd(t, "y\n", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, msgDeleted)
	assert.Len(t, srv.Records(), 2)

	_, errOut, err = runCmd(t, "", "delete", "1", "--yes")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, errOut, msgDeleteFailed)
}

func TestDashboard_Table(t *testing.T) {
	setupCLI(t, sampleRecords()...)

	out, _, err := runCmd(t, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Logs")
	assert.Contains(t, out, "Severity Distribution")
	assert.Contains(t, out, "database")
}

func TestDashboard_EmptyJSON(t *testing.T) {
	setupCLI(t, sampleRecords()...)

	out, _, err := runCmd(t, "", "dashboard", "--source", "system", "-o", "json")
	require.NoError(t, err)

	var agg models.AggregateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &agg))
	assert.Equal(t, 0, agg.Data.TotalLogs)
	assert.NotNil(t, agg.Data.BySource)
}

func TestExport_FilterErrors(t *testing.T) {
	srv := setupCLI(t)

	_, errOut, err := runCmd(t, "", "export", "--severity", "err0r", "--out", t.TempDir()+"/x.csv")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, errOut, workflow.MsgFixFiltersExport)
	assert.Equal(t, 0, srv.Calls(http.MethodGet, "/logs/download_csv/"))
}

func TestBuildStore_LastWeek(t *testing.T) {
	orig := nowFn
	t.Cleanup(func() { nowFn = orig })
	nowFn = func() time.Time { return time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC) }

	store := buildStore(filterFlags{lastWeek: true, endDate: "2024-05-09"})
	params := store.QueryParams()
	assert.Equal(t, "2024-05-03", params["start_date"])
	assert.Equal(t, "2024-05-09", params["end_date"])
}

func TestRender_UnknownFormat(t *testing.T) {
	err := render(&bytes.Buffer{}, 1, OutputOptions{Format: "xml"}, nil)
	assert.Error(t, err)
}

func TestWriteJQ_Invalid(t *testing.T) {
	err := writeJQ(&bytes.Buffer{}, ".[", map[string]interface{}{})
	assert.Error(t, err)
}
