package logs

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/monobilisim/logdesk/common/ui"
	"github.com/monobilisim/logdesk/logs/filter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ErrReported means the failure was already printed for the user.
var ErrReported = errors.New("error already reported")

var nowFn = time.Now

func addFilterFlags(cmd *cobra.Command, flags *filterFlags) {
	cmd.Flags().StringVarP(&flags.startDate, "start-date", "f", "", "Only logs on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&flags.endDate, "end-date", "t", "", "Only logs on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&flags.severity, "severity", "s", "", "Filter by severity (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	cmd.Flags().StringVarP(&flags.source, "source", "S", "", "Filter by source (lowercase, e.g. application, database)")
	cmd.Flags().BoolVar(&flags.lastWeek, "last-7-days", false, "Shortcut for the last seven days; explicit dates win")
}

// buildStore feeds the flags through the filter store the same way the
// interactive views do, so canonicalization and validation match.
func buildStore(flags filterFlags) *filter.Store {
	store := filter.NewStore()

	start, end := flags.startDate, flags.endDate
	if flags.lastWeek {
		defStart, defEnd := filter.DefaultDates(nowFn())
		if start == "" {
			start = defStart
		}
		if end == "" {
			end = defEnd
		}
	}

	inputs := []struct {
		field filter.Field
		value string
	}{
		{filter.StartDate, start},
		{filter.EndDate, end},
		{filter.Severity, flags.severity},
		{filter.Source, flags.source},
	}
	for _, in := range inputs {
		if in.value != "" {
			store.UpdateFilter(in.field, in.value)
		}
	}

	log.Debug().
		Str("component", "filter").
		Interface("params", store.QueryParams()).
		Bool("has_errors", store.HasErrors()).
		Msg("Filters built from flags")
	return store
}

// reportFilterErrors prints the store's errors under msg.
func reportFilterErrors(w io.Writer, store *filter.Store, msg string) error {
	errs := store.Errors()
	fields := make(map[string]string, len(errs))
	order := make([]string, 0, len(errs))
	for _, f := range filter.Fields {
		if e, ok := errs[f]; ok {
			name := "--" + flagName(f)
			fields[name] = e
			order = append(order, name)
		}
	}
	fmt.Fprintln(w, ui.ProblemPanel{Message: msg, FieldErrors: fields, Fields: order}.Render())
	return ErrReported
}

func flagName(f filter.Field) string {
	switch f {
	case filter.StartDate:
		return "start-date"
	case filter.EndDate:
		return "end-date"
	}
	return string(f)
}
