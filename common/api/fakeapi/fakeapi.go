// Package fakeapi is an in-memory stand-in for the log REST API, used by
// tests. It records calls per endpoint and can be told to fail any of them.
package fakeapi

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monobilisim/logdesk/common/api/models"
)

// PageSize matches the server's fixed page size.
const PageSize = 5

// Override replaces the response of one endpoint. With Drop set the
// connection is closed without a response.
type Override struct {
	Status int
	Body   string
	Drop   bool
}

// Server is a running fake API. URL points at the /api root.
type Server struct {
	*httptest.Server
	URL string

	mu        sync.Mutex
	records   []models.LogRecord
	nextID    int
	calls     map[string]int
	overrides map[string]Override
	now       func() time.Time
}

// Start launches a fake seeded with records and closes it when the test ends.
func Start(t testing.TB, seed ...models.LogRecord) *Server {
	s := New(seed...)
	t.Cleanup(s.Close)
	return s
}

// New launches a fake seeded with records. The caller closes it.
func New(seed ...models.LogRecord) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		calls:     map[string]int{},
		overrides: map[string]Override{},
		now:       time.Now,
		nextID:    1,
	}
	for _, r := range seed {
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
		s.records = append(s.records, r)
	}

	r := gin.New()
	r.Use(s.intercept)

	api := r.Group("/api")
	api.GET("/logs/", s.handleList)
	api.POST("/logs/", s.handleCreate)
	api.GET("/logs/query/", s.handleQuery)
	api.GET("/logs/aggregate/", s.handleAggregate)
	api.GET("/logs/download_csv/", s.handleCSV)
	api.GET("/logs/:id/", s.handleGet)
	api.PUT("/logs/:id/", s.handleUpdate)
	api.DELETE("/logs/:id/", s.handleDelete)

	s.Server = httptest.NewServer(r)
	s.URL = s.Server.URL + "/api"
	return s
}

// HTTPClient returns a client that never reuses connections, so a dropped
// connection is not retried by the transport.
func (s *Server) HTTPClient() *http.Client {
	return &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
}

// Fail makes method+path (path relative to /api, e.g. "/logs/query/") answer with o.
func (s *Server) Fail(method, path string, o Override) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" /api"+path] = o
}

// Clear removes every override.
func (s *Server) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = map[string]Override{}
}

// Calls returns how many requests hit method+path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" /api"+path]
}

// Records returns a copy of the stored records, newest first.
func (s *Server) Records() []models.LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

func (s *Server) intercept(c *gin.Context) {
	key := c.Request.Method + " " + c.Request.URL.Path

	s.mu.Lock()
	s.calls[key]++
	o, ok := s.overrides[key]
	s.mu.Unlock()

	if !ok {
		c.Next()
		return
	}
	if o.Drop {
		if conn, _, err := c.Writer.Hijack(); err == nil {
			conn.Close()
		}
		c.Abort()
		return
	}
	c.Data(o.Status, "application/json", []byte(o.Body))
	c.Abort()
}

func (s *Server) handleList(c *gin.Context) {
	matched, ok := s.filtered(c)
	if !ok {
		return
	}
	s.paginate(c, matched)
}

func (s *Server) handleQuery(c *gin.Context) {
	matched, ok := s.filtered(c)
	if !ok {
		return
	}
	if len(matched) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No logs found with the specified criteria"})
		return
	}
	s.paginate(c, matched)
}

func (s *Server) handleAggregate(c *gin.Context) {
	matched, ok := s.filtered(c)
	if !ok {
		return
	}
	if len(matched) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No logs found with the specified criteria"})
		return
	}

	bySeverity := map[string]int{}
	bySource := map[string]int{}
	byDate := map[string]int{}
	for _, r := range matched {
		bySeverity[r.Severity]++
		bySource[r.Source]++
		byDate[r.Timestamp.UTC().Format("2006-01-02")]++
	}

	data := models.AggregateData{TotalLogs: len(matched)}
	for _, k := range sortedKeys(bySeverity) {
		data.BySeverity = append(data.BySeverity, models.SeverityCount{Severity: k, Count: bySeverity[k]})
	}
	for _, k := range sortedKeys(bySource) {
		data.BySource = append(data.BySource, models.SourceCount{Source: k, Count: bySource[k]})
	}
	dates := sortedKeys(byDate)
	for i := len(dates) - 1; i >= 0; i-- {
		data.ByDate = append(data.ByDate, models.DateCount{Date: dates[i], Count: byDate[dates[i]]})
	}

	filters := map[string]*string{}
	for _, k := range []string{"start_date", "end_date", "severity", "source"} {
		if v := c.Query(k); v != "" {
			v := v
			filters[k] = &v
		} else {
			filters[k] = nil
		}
	}

	c.JSON(http.StatusOK, models.AggregateResponse{Data: data, Filters: filters})
}

func (s *Server) handleCSV(c *gin.Context) {
	matched, ok := s.filtered(c)
	if !ok {
		return
	}
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write([]string{"id", "timestamp", "message", "severity", "source"})
	for _, r := range matched {
		_ = w.Write([]string{strconv.Itoa(r.ID), r.Timestamp.Format(time.RFC3339), r.Message, r.Severity, r.Source})
	}
	w.Flush()

	c.Header("Content-Disposition", `attachment; filename="logs.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(sb.String()))
}

func (s *Server) handleGet(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(c.Param("id"))
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, s.records[idx])
}

func (s *Server) handleCreate(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	s.mu.Lock()
	rec := models.LogRecord{
		ID:        s.nextID,
		Message:   in.Message,
		Severity:  in.Severity,
		Source:    in.Source,
		Timestamp: s.now().UTC(),
	}
	s.nextID++
	s.records = append(s.records, rec)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleUpdate(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(c.Param("id"))
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	s.records[idx].Message = in.Message
	s.records[idx].Severity = in.Severity
	s.records[idx].Source = in.Source
	c.JSON(http.StatusOK, s.records[idx])
}

func (s *Server) handleDelete(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(c.Param("id"))
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	c.Status(http.StatusNoContent)
}

// filtered validates the query parameters and returns matching records,
// newest first. On invalid parameters it writes a 400 and returns false.
func (s *Server) filtered(c *gin.Context) ([]models.LogRecord, bool) {
	errs := map[string][]string{}

	var start, end time.Time
	var err error
	if v := c.Query("start_date"); v != "" {
		if start, err = time.Parse("2006-01-02", v); err != nil {
			errs["start_date"] = []string{"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}
		}
	}
	if v := c.Query("end_date"); v != "" {
		if end, err = time.Parse("2006-01-02", v); err != nil {
			errs["end_date"] = []string{"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}
		}
	}
	severity := c.Query("severity")
	if severity != "" {
		if severity != strings.ToUpper(severity) {
			errs["severity"] = []string{"Severity should be in uppercase!"}
		} else if !models.IsValidSeverity(severity) {
			errs["severity"] = []string{"Invalid severity! Valid values are: " + strings.Join(models.Severities, ", ")}
		}
	}
	source := c.Query("source")
	if source != "" && source != strings.ToLower(source) {
		errs["source"] = []string{"Source should be in lowercase!"}
	}
	if len(errs) == 0 && !start.IsZero() && !end.IsZero() && start.After(end) {
		errs["end_date"] = []string{"End date cannot be earlier than start date!"}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs})
		return nil, false
	}

	s.mu.Lock()
	all := s.sortedLocked()
	s.mu.Unlock()

	var out []models.LogRecord
	for _, r := range all {
		day, _ := time.Parse("2006-01-02", r.Timestamp.UTC().Format("2006-01-02"))
		if !start.IsZero() && day.Before(start) {
			continue
		}
		if !end.IsZero() && day.After(end) {
			continue
		}
		if severity != "" && r.Severity != severity {
			continue
		}
		if source != "" && r.Source != source {
			continue
		}
		out = append(out, r)
	}
	return out, true
}

func (s *Server) paginate(c *gin.Context, matched []models.LogRecord) {
	page := 1
	if v := c.Query("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
			return
		}
		page = p
	}

	from := (page - 1) * PageSize
	if from > 0 && from >= len(matched) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
		return
	}
	to := from + PageSize
	if to > len(matched) {
		to = len(matched)
	}

	results := matched[from:to]
	if results == nil {
		results = []models.LogRecord{}
	}
	c.JSON(http.StatusOK, models.LogPage{Count: len(matched), Results: results})
}

func bindInput(c *gin.Context) (models.LogInput, bool) {
	var in models.LogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Invalid data. Expected a dictionary."}})
		return in, false
	}

	errs := map[string][]string{}
	if strings.TrimSpace(in.Message) == "" {
		errs["message"] = []string{"This field may not be blank."}
	}
	if in.Severity == "" {
		errs["severity"] = []string{"This field may not be blank."}
	} else if !models.IsValidSeverity(in.Severity) {
		errs["severity"] = []string{`"` + in.Severity + `" is not a valid choice.`}
	}
	if in.Source == "" {
		errs["source"] = []string{"This field may not be blank."}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return in, false
	}
	return in, true
}

func (s *Server) indexLocked(raw string) int {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) sortedLocked() []models.LogRecord {
	out := make([]models.LogRecord, len(s.records))
	copy(out, s.records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
