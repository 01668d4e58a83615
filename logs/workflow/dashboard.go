package workflow

import (
	"context"
	"sync"

	"github.com/monobilisim/logdesk/common/api/apierr"
	"github.com/monobilisim/logdesk/common/api/models"
	"github.com/rs/zerolog/log"
)

// DashboardState is a snapshot of the dashboard view.
type DashboardState struct {
	Status  Status                    `json:"status" yaml:"status"`
	Data    *models.AggregateResponse `json:"data" yaml:"data"`
	Problem Problem                   `json:"problem" yaml:"problem,omitempty"`
}

// Dashboard fetches aggregates. It has no fallback endpoint, and a 404 is a
// zero-filled aggregate rather than an error.
type Dashboard struct {
	api     AggregateAPI
	filters Filters

	mu    sync.Mutex
	seq   uint64
	state DashboardState
}

// NewDashboard returns an idle dashboard workflow.
func NewDashboard(api AggregateAPI, filters Filters) *Dashboard {
	return &Dashboard{api: api, filters: filters}
}

// State returns the current state. Data is shared, not copied; treat it as read-only.
func (d *Dashboard) State() DashboardState {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.state
	out.Problem = d.state.Problem.clone()
	return out
}

// Fetch loads aggregates for the current filters.
func (d *Dashboard) Fetch(ctx context.Context) DashboardState {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	if d.filters.HasErrors() {
		log.Warn().
			Str("component", "workflow").
			Str("action", "fetch_blocked").
			Msg("Not fetching dashboard data due to filter validation errors")
		d.state.Status = StatusError
		d.state.Problem = Problem{Message: MsgFixFiltersDashboard}
		out := d.state
		d.mu.Unlock()
		return out
	}
	d.state.Status = StatusLoading
	d.state.Problem = Problem{}
	d.mu.Unlock()

	params := d.filters.QueryParams()
	next := d.run(ctx, params)

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq {
		log.Debug().
			Str("component", "workflow").
			Uint64("seq", seq).
			Uint64("latest", d.seq).
			Msg("Discarding stale dashboard response")
		return d.state
	}
	if next.Status == StatusError {
		next.Data = d.state.Data
	}
	d.state = next
	return d.state
}

func (d *Dashboard) run(ctx context.Context, params map[string]string) DashboardState {
	resp, err := d.api.AggregateLogs(ctx, params)
	if err == nil {
		status := StatusSuccess
		if resp.Data.TotalLogs == 0 {
			status = StatusEmpty
		}
		return DashboardState{Status: status, Data: resp}
	}

	if apierr.KindOf(err) == apierr.KindNotFoundEmpty {
		return DashboardState{Status: StatusEmpty, Data: models.EmptyAggregate(params)}
	}
	return DashboardState{Status: StatusError, Problem: problemFrom(err, MsgDashboardFailed)}
}
