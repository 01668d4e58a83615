package models

// LogPage is one page of a paginated list response
type LogPage struct {
	Count    int         `json:"count" yaml:"count"`
	Next     *string     `json:"next,omitempty" yaml:"next,omitempty"`
	Previous *string     `json:"previous,omitempty" yaml:"previous,omitempty"`
	Results  []LogRecord `json:"results" yaml:"results"`
}

// SeverityCount is one row of the severity breakdown
type SeverityCount struct {
	Severity string `json:"severity" yaml:"severity"`
	Count    int    `json:"count" yaml:"count"`
}

// SourceCount is one row of the source breakdown
type SourceCount struct {
	Source string `json:"source" yaml:"source"`
	Count  int    `json:"count" yaml:"count"`
}

// DateCount is one row of the per-day breakdown. Date is YYYY-MM-DD.
type DateCount struct {
	Date  string `json:"timestamp__date" yaml:"date"`
	Count int    `json:"count" yaml:"count"`
}

// AggregateData holds the dashboard counts
type AggregateData struct {
	TotalLogs  int             `json:"total_logs" yaml:"total_logs"`
	BySeverity []SeverityCount `json:"by_severity" yaml:"by_severity"`
	BySource   []SourceCount   `json:"by_source" yaml:"by_source"`
	ByDate     []DateCount     `json:"by_date" yaml:"by_date"`
}

// AggregateResponse is the body returned by the aggregate endpoint
type AggregateResponse struct {
	Data    AggregateData      `json:"data" yaml:"data"`
	Filters map[string]*string `json:"filters" yaml:"filters"`
}

// EmptyAggregate returns a zero-filled aggregate echoing the given filters.
func EmptyAggregate(params map[string]string) *AggregateResponse {
	filters := make(map[string]*string, len(params))
	for k, v := range params {
		v := v
		filters[k] = &v
	}
	return &AggregateResponse{
		Data: AggregateData{
			BySeverity: []SeverityCount{},
			BySource:   []SourceCount{},
			ByDate:     []DateCount{},
		},
		Filters: filters,
	}
}
