// Package workflow fetches log pages and dashboard aggregates for the
// current filters. Each fetch is tagged with a sequence number and only the
// latest one may update state.
package workflow

import (
	"context"
	"strconv"

	"github.com/monobilisim/logdesk/common/api/models"
)

// Status is where a fetch stands.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusEmpty
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// MarshalText prints the status by name in JSON and YAML output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	MsgFixFiltersList      = "Please correct the filter validation errors before fetching logs."
	MsgFixFiltersDashboard = "Please correct the filter validation errors before fetching data."
	MsgFixFiltersExport    = "Please correct the filter validation errors before downloading CSV."
	MsgListFailed          = "Failed to fetch logs. Please try again later."
	MsgDashboardFailed     = "Failed to fetch dashboard data. Please try again later."
)

// LogAPI is the subset of the API client the list workflow needs. ListLogs
// is the less-filtered fallback endpoint.
type LogAPI interface {
	QueryLogs(ctx context.Context, params map[string]string) (*models.LogPage, error)
	ListLogs(ctx context.Context, params map[string]string) (*models.LogPage, error)
}

// AggregateAPI is what the dashboard needs.
type AggregateAPI interface {
	AggregateLogs(ctx context.Context, params map[string]string) (*models.AggregateResponse, error)
}

// Filters is the read side of the filter store.
type Filters interface {
	HasErrors() bool
	QueryParams() map[string]string
}

// Problem is what an Error state shows: a message plus itemized causes.
type Problem struct {
	Message        string            `json:"message,omitempty" yaml:"message,omitempty"`
	FieldErrors    map[string]string `json:"field_errors,omitempty" yaml:"field_errors,omitempty"`
	Fields         []string          `json:"-" yaml:"-"`
	NonFieldErrors []string          `json:"non_field_errors,omitempty" yaml:"non_field_errors,omitempty"`
}

// Empty reports whether there is nothing to show.
func (p Problem) Empty() bool {
	return p.Message == "" && len(p.FieldErrors) == 0 && len(p.NonFieldErrors) == 0
}

func (p Problem) clone() Problem {
	out := Problem{Message: p.Message}
	if p.FieldErrors != nil {
		out.FieldErrors = make(map[string]string, len(p.FieldErrors))
		for k, v := range p.FieldErrors {
			out.FieldErrors[k] = v
		}
	}
	out.Fields = append([]string(nil), p.Fields...)
	out.NonFieldErrors = append([]string(nil), p.NonFieldErrors...)
	return out
}

func withPage(params map[string]string, page int) map[string]string {
	out := make(map[string]string, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out["page"] = strconv.Itoa(page)
	return out
}
