package workflow

import (
	"context"
	"sync"

	"github.com/monobilisim/logdesk/common/api/apierr"
	"github.com/monobilisim/logdesk/common/api/models"
	"github.com/rs/zerolog/log"
)

// ListState is a snapshot of the log list view.
type ListState struct {
	Status       Status             `json:"status" yaml:"status"`
	Logs         []models.LogRecord `json:"logs" yaml:"logs"`
	Pagination   Pagination         `json:"pagination" yaml:"pagination"`
	Problem      Problem            `json:"problem" yaml:"problem,omitempty"`
	UsedFallback bool               `json:"used_fallback,omitempty" yaml:"used_fallback,omitempty"`
}

func (s ListState) clone() ListState {
	out := s
	out.Logs = append([]models.LogRecord(nil), s.Logs...)
	out.Problem = s.Problem.clone()
	return out
}

// List runs the log list fetch: primary query, one fallback for
// unclassified failures, and pagination from the server's count.
type List struct {
	api      LogAPI
	filters  Filters
	pageSize int

	mu    sync.Mutex
	seq   uint64
	state ListState
}

// NewList returns an idle list workflow.
func NewList(api LogAPI, filters Filters, pageSize int) *List {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &List{
		api:      api,
		filters:  filters,
		pageSize: pageSize,
		state:    ListState{Status: StatusIdle, Pagination: emptyPagination()},
	}
}

// State returns a copy of the current state.
func (l *List) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

// Dismiss clears the displayed problem.
func (l *List) Dismiss() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Problem = Problem{}
}

// ChangePage fetches page n. The current page only moves once the answer
// for n arrives.
func (l *List) ChangePage(ctx context.Context, n int) ListState {
	return l.Fetch(ctx, n)
}

// Refresh fetches the current page again.
func (l *List) Refresh(ctx context.Context) ListState {
	l.mu.Lock()
	page := l.state.Pagination.CurrentPage
	l.mu.Unlock()
	return l.Fetch(ctx, page)
}

// Fetch loads page for the current filters and returns the resulting state.
// If a newer fetch started meanwhile, this one's answer is dropped and the
// state as it stands is returned.
func (l *List) Fetch(ctx context.Context, page int) ListState {
	if page < 1 {
		page = 1
	}

	l.mu.Lock()
	l.seq++
	seq := l.seq
	if l.filters.HasErrors() {
		log.Warn().
			Str("component", "workflow").
			Str("action", "fetch_blocked").
			Msg("Not fetching logs due to filter validation errors")
		l.state.Status = StatusError
		l.state.Problem = Problem{Message: MsgFixFiltersList}
		l.state.UsedFallback = false
		out := l.state.clone()
		l.mu.Unlock()
		return out
	}
	l.state.Status = StatusLoading
	l.state.Problem = Problem{}
	l.mu.Unlock()

	params := withPage(l.filters.QueryParams(), page)
	next := l.run(ctx, params, page)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		log.Debug().
			Str("component", "workflow").
			Uint64("seq", seq).
			Uint64("latest", l.seq).
			Msg("Discarding stale list response")
		return l.state.clone()
	}
	if next.Status == StatusError {
		// Keep the rows from the last good answer on screen.
		next.Logs = l.state.Logs
		next.Pagination = l.state.Pagination
	}
	l.state = next
	return l.state.clone()
}

func (l *List) run(ctx context.Context, params map[string]string, page int) ListState {
	resp, err := l.api.QueryLogs(ctx, params)
	if err == nil {
		return l.loaded(resp, page, false)
	}

	apiErr, ok := apierr.As(err)
	if ok && apiErr.Kind == apierr.KindNotFoundEmpty {
		return ListState{Status: StatusEmpty, Logs: []models.LogRecord{}, Pagination: emptyPagination()}
	}

	problem := problemFrom(err, MsgListFailed)
	if ok && apiErr.Kind == apierr.KindValidation && apiErr.Payload.HasErrors() {
		log.Debug().
			Str("component", "workflow").
			Str("action", "fallback_skipped").
			Msg("Validation errors from server, not trying fallback")
		return ListState{Status: StatusError, Problem: problem}
	}

	log.Debug().
		Str("component", "workflow").
		Str("kind", apierr.KindOf(err).String()).
		Msg("Primary query failed, trying fallback endpoint")

	resp, fbErr := l.api.ListLogs(ctx, params)
	if fbErr != nil {
		log.Warn().
			Err(fbErr).
			Str("component", "workflow").
			Str("action", "fallback_failed").
			Msg("Fallback also failed, keeping original error")
		return ListState{Status: StatusError, Problem: problem}
	}
	return l.loaded(resp, page, true)
}

func (l *List) loaded(resp *models.LogPage, page int, fallback bool) ListState {
	logs := resp.Results
	if logs == nil {
		logs = []models.LogRecord{}
	}
	status := StatusSuccess
	if resp.Count == 0 {
		status = StatusEmpty
	}
	return ListState{
		Status:       status,
		Logs:         logs,
		Pagination:   NewPagination(page, resp.Count, l.pageSize),
		UsedFallback: fallback,
	}
}

// problemFrom turns err into a displayable problem. def is used when err
// carries no user message.
func problemFrom(err error, def string) Problem {
	apiErr, ok := apierr.As(err)
	if !ok {
		return Problem{Message: def}
	}
	p := Problem{
		Message:        apiErr.Message,
		FieldErrors:    apiErr.Payload.FieldErrors,
		Fields:         apiErr.Payload.Fields,
		NonFieldErrors: apiErr.Payload.NonFieldErrors,
	}
	if p.Message == "" {
		p.Message = def
	}
	return p.clone()
}
