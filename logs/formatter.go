package logs

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/monobilisim/logdesk/common"
	"github.com/monobilisim/logdesk/common/api/apierr"
	"github.com/monobilisim/logdesk/common/api/models"
	"github.com/monobilisim/logdesk/common/ui"
	"github.com/monobilisim/logdesk/logs/format"
	"github.com/monobilisim/logdesk/logs/workflow"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// render writes v as JSON or YAML, or calls table for the default format.
func render(w io.Writer, v interface{}, opts OutputOptions, table func(io.Writer) error) error {
	if opts.Query != "" && opts.Format == "table" {
		opts.Format = "json"
	}

	switch opts.Format {
	case "json":
		if opts.Query != "" {
			return writeJQ(w, opts.Query, v)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		return table(w)
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", opts.Format)
	}
}

// writeJQ runs query over the JSON form of v and prints each result on its
// own line. Strings are printed raw.
func writeJQ(w io.Writer, query string, v interface{}) error {
	code, err := gojq.Parse(query)
	if err != nil {
		return fmt.Errorf("invalid jq expression: %w", err)
	}
	compiled, err := gojq.Compile(code)
	if err != nil {
		return fmt.Errorf("invalid jq expression: %w", err)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var input interface{}
	if err := json.Unmarshal(raw, &input); err != nil {
		return err
	}

	iter := compiled.Run(input)
	for {
		result, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := result.(error); ok {
			return fmt.Errorf("jq: %w", err)
		}
		if s, ok := result.(string); ok {
			fmt.Fprintln(w, s)
			continue
		}
		line, err := json.Marshal(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(line))
	}
	return nil
}

func logTable(w io.Writer, records []models.LogRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			format.DateTime(r.Timestamp),
			format.Severity(r.Severity),
			r.Source,
			format.Truncate(format.SingleLine(r.Message), format.DefaultTruncate),
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Timestamp", "Severity", "Source", "Message")
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func renderList(w io.Writer, st workflow.ListState, opts OutputOptions) error {
	return render(w, st, opts, func(w io.Writer) error {
		if st.Status == workflow.StatusEmpty {
			fmt.Fprintln(w, ui.RenderInfo(apierr.MsgNoResults))
			return nil
		}
		if err := logTable(w, st.Logs); err != nil {
			return err
		}
		p := st.Pagination
		fmt.Fprintln(w, ui.MutedStyle.Render(fmt.Sprintf("Page %d of %d (%d logs)", p.CurrentPage, p.TotalPages, p.Count)))
		if st.UsedFallback {
			fmt.Fprintln(w, ui.RenderWarning(msgFallbackNotice))
		}
		return nil
	})
}

func detailContent(r models.LogRecord) string {
	lines := []string{
		common.ListItem("ID", strconv.Itoa(r.ID)),
		common.ListItem("Time", format.DateTime(r.Timestamp)),
		common.ListItem("Severity", format.Severity(r.Severity)),
		common.ListItem("Source", r.Source),
		"",
		r.Message,
	}
	return strings.Join(lines, "\n")
}

func renderDetail(w io.Writer, r models.LogRecord, opts OutputOptions) error {
	return render(w, r, opts, func(w io.Writer) error {
		fmt.Fprintln(w, common.DisplayBox(fmt.Sprintf("Log #%d", r.ID), detailContent(r)))
		return nil
	})
}

func renderDashboard(w io.Writer, agg *models.AggregateResponse, opts OutputOptions) error {
	return render(w, agg, opts, func(w io.Writer) error {
		data := agg.Data

		stats := ui.NewStatsPanel("Overview")
		stats.AddStat("Total Logs", strconv.Itoa(data.TotalLogs))
		stats.AddStat("Severity Levels", strconv.Itoa(len(data.BySeverity)))
		stats.AddStat("Sources", strconv.Itoa(len(data.BySource)))
		fmt.Fprintln(w, stats.Render())

		if data.TotalLogs == 0 {
			fmt.Fprintln(w, ui.RenderInfo(apierr.MsgNoResults))
		}

		sev := ui.NewTablePanel("Severity Distribution", []string{"Severity", "Count", "Share"})
		for _, s := range data.BySeverity {
			sev.AddRow([]string{format.Severity(s.Severity), strconv.Itoa(s.Count), share(s.Count, data.TotalLogs)})
		}
		fmt.Fprintln(w, sev.Render())

		src := ui.NewTablePanel("Source Distribution", []string{"Source", "Count", "Share"})
		for _, s := range data.BySource {
			src.AddRow([]string{s.Source, strconv.Itoa(s.Count), share(s.Count, data.TotalLogs)})
		}
		fmt.Fprintln(w, src.Render())

		dates := ui.NewTablePanel("Logs per Day", []string{"Date", "Count"})
		for _, d := range data.ByDate {
			dates.AddRow([]string{format.DateString(d.Date), strconv.Itoa(d.Count)})
		}
		fmt.Fprintln(w, dates.Render())

		if applied := appliedFilters(agg.Filters); applied != "" {
			fmt.Fprintln(w, ui.MutedStyle.Render("Filters: "+applied))
		}
		return nil
	})
}

func share(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}

func appliedFilters(filters map[string]*string) string {
	keys := make([]string, 0, len(filters))
	for k, v := range filters {
		if v != nil && *v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+*filters[k])
	}
	return strings.Join(parts, ", ")
}

// renderProblem prints a workflow problem in the error style.
func renderProblem(w io.Writer, p workflow.Problem) {
	fmt.Fprintln(w, ui.ProblemPanel{
		Message:        p.Message,
		FieldErrors:    p.FieldErrors,
		Fields:         p.Fields,
		NonFieldErrors: p.NonFieldErrors,
	}.Render())
}
