package logs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/monobilisim/logdesk/common"
	"github.com/monobilisim/logdesk/common/api/apierr"
	"github.com/monobilisim/logdesk/common/api/client"
	"github.com/monobilisim/logdesk/common/ui"
	"github.com/monobilisim/logdesk/logs/browse"
	"github.com/monobilisim/logdesk/logs/form"
	"github.com/monobilisim/logdesk/logs/workflow"
	"github.com/spf13/cobra"
)

// clientFn builds the API client; tests replace it.
var clientFn = client.ClientInit

const (
	msgDeleted       = "Log deleted successfully!"
	msgDeleteFailed  = "Failed to delete log: "
	msgDetailFailed  = "Failed to fetch log details: "
	msgDeleteConfirm = "Are you sure you want to delete this log?"
	msgAborted       = "Aborted."

	msgFallbackNotice = "Query endpoint unavailable, showing the basic log listing."
)

func NewLogsCmd() *cobra.Command {
	var logsCmd = &cobra.Command{
		Use:   "logs",
		Short: "List, filter, edit and export log records",
		Long: `Work with the log records served by the log API.

Filters are validated before any request is sent: severity is sent
uppercase, source lowercase, and dates must be YYYY-MM-DD with the
start no later than the end.

Examples:
  logdesk logs list --severity error --source database
  logdesk logs list --start-date 2025-01-01 --end-date 2025-01-31 --page 2
  logdesk logs list -o json --jq '.logs[].message'
  logdesk logs get 42
  logdesk logs create --message "Disk almost full" --severity warning --source system
  logdesk logs edit 42 --severity critical
  logdesk logs delete 42 --yes
  logdesk logs export --last-7-days --zstd
  logdesk logs dashboard --source network
  logdesk logs browse --severity error`,
	}

	logsCmd.AddCommand(newListCmd())
	logsCmd.AddCommand(newGetCmd())
	logsCmd.AddCommand(newCreateCmd())
	logsCmd.AddCommand(newEditCmd())
	logsCmd.AddCommand(newDeleteCmd())
	logsCmd.AddCommand(newExportCmd())
	logsCmd.AddCommand(newDashboardCmd())
	logsCmd.AddCommand(newBrowseCmd())
	return logsCmd
}

func addOutputFlags(cmd *cobra.Command, flags *outputFlags) {
	cmd.Flags().StringVarP(&flags.format, "output", "o", "", "Output format: table, json or yaml (default from config)")
	cmd.Flags().StringVar(&flags.jq, "jq", "", "jq expression applied to the JSON output")
}

func outputOptions(flags outputFlags) OutputOptions {
	opts := OutputOptions{
		Format: flags.format,
		Query:  flags.jq,
	}
	if opts.Format == "" {
		opts.Format = common.Config.Output.Format
	}
	if opts.Format == "" {
		opts.Format = "table"
	}
	return opts
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid log id %q", arg)
	}
	return id, nil
}

func newListCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logs matching the filters, one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := buildStore(flags.filterFlags)
			list := workflow.NewList(clientFn(), store, workflow.DefaultPageSize)

			st := list.Fetch(cmd.Context(), flags.page)
			if st.Status == workflow.StatusError {
				if store.HasErrors() {
					return reportFilterErrors(cmd.ErrOrStderr(), store, st.Problem.Message)
				}
				renderProblem(cmd.ErrOrStderr(), st.Problem)
				return ErrReported
			}
			return renderList(cmd.OutOrStdout(), st, outputOptions(flags.outputFlags))
		},
	}

	addFilterFlags(cmd, &flags.filterFlags)
	addOutputFlags(cmd, &flags.outputFlags)
	cmd.Flags().IntVarP(&flags.page, "page", "p", 1, "Page number")
	return cmd
}

func newGetCmd() *cobra.Command {
	var flags outputFlags

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show one log record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			rec, err := clientFn().GetLog(cmd.Context(), id)
			if err != nil {
				msg := apierr.UserMessage(err, "")
				if apierr.KindOf(err) != apierr.KindNotFoundMissing {
					msg = msgDetailFailed + msg
				}
				fmt.Fprintln(cmd.ErrOrStderr(), ui.ProblemPanel{Message: msg}.Render())
				return ErrReported
			}
			return renderDetail(cmd.OutOrStdout(), *rec, outputOptions(flags))
		},
	}

	addOutputFlags(cmd, &flags)
	return cmd
}

func addRecordFlags(cmd *cobra.Command, flags *recordFlags, severityDefault string) {
	cmd.Flags().StringVarP(&flags.message, "message", "m", "", "Log message")
	cmd.Flags().StringVarP(&flags.severity, "severity", "s", severityDefault, "Severity (converted to uppercase)")
	cmd.Flags().StringVarP(&flags.source, "source", "S", "", "Source (converted to lowercase)")
	addOutputFlags(cmd, &flags.outputFlags)
}

// submitForm applies the changed flags to f and submits it.
func submitForm(cmd *cobra.Command, f *form.Form, flags recordFlags) error {
	changes := []struct {
		flag  string
		field form.Field
		value string
	}{
		{"message", form.Message, flags.message},
		{"severity", form.Severity, flags.severity},
		{"source", form.Source, flags.source},
	}
	for _, c := range changes {
		if !f.IsEdit() || cmd.Flags().Changed(c.flag) {
			f.Set(c.field, c.value)
		}
	}

	rec, err := f.Submit(cmd.Context(), clientFn())
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.ProblemPanel{
			Message:        f.Message(),
			FieldErrors:    f.VisibleErrors(),
			Fields:         []string{string(form.Message), string(form.Severity), string(form.Source)},
			NonFieldErrors: f.NonFieldErrors(),
		}.Render())
		return ErrReported
	}

	fmt.Fprintln(cmd.ErrOrStderr(), ui.RenderSuccess(f.Notice()))
	return renderDetail(cmd.OutOrStdout(), *rec, outputOptions(flags.outputFlags))
}

func newCreateCmd() *cobra.Command {
	var flags recordFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a log record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitForm(cmd, form.New(), flags)
		},
	}

	addRecordFlags(cmd, &flags, "INFO")
	return cmd
}

func newEditCmd() *cobra.Command {
	var flags recordFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a log record; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			f, err := form.Load(cmd.Context(), clientFn(), id)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.ProblemPanel{Message: f.Message()}.Render())
				return ErrReported
			}
			return submitForm(cmd, f, flags)
		},
	}

	addRecordFlags(cmd, &flags, "")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a log record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if !yes && !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), msgDeleteConfirm) {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.RenderWarning(msgAborted))
				return nil
			}

			if err := clientFn().DeleteLog(cmd.Context(), id); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.ProblemPanel{Message: msgDeleteFailed + apierr.UserMessage(err, "")}.Render())
				return ErrReported
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess(msgDeleted))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the logs matching the filters as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := buildStore(flags.filterFlags)
			if store.HasErrors() {
				return reportFilterErrors(cmd.ErrOrStderr(), store, workflow.MsgFixFiltersExport)
			}

			path, n, err := exportCSV(cmd.Context(), clientFn(), store.QueryParams(), flags.out, flags.zstd)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.ProblemPanel{Message: exportMessage(err)}.Render())
				return ErrReported
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess(fmt.Sprintf("Saved %d bytes to %s", n, path)))
			return nil
		},
	}

	addFilterFlags(cmd, &flags.filterFlags)
	cmd.Flags().StringVar(&flags.out, "out", defaultExportFile, "File to write")
	cmd.Flags().BoolVar(&flags.zstd, "zstd", false, "Compress the file with zstd (adds .zst)")
	return cmd
}

func newDashboardCmd() *cobra.Command {
	var flags struct {
		filterFlags
		outputFlags
	}

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals and breakdowns by severity, source and day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := buildStore(flags.filterFlags)
			dash := workflow.NewDashboard(clientFn(), store)

			st := dash.Fetch(cmd.Context())
			if st.Status == workflow.StatusError {
				if store.HasErrors() {
					return reportFilterErrors(cmd.ErrOrStderr(), store, st.Problem.Message)
				}
				renderProblem(cmd.ErrOrStderr(), st.Problem)
				return ErrReported
			}
			return renderDashboard(cmd.OutOrStdout(), st.Data, outputOptions(flags.outputFlags))
		},
	}

	addFilterFlags(cmd, &flags.filterFlags)
	addOutputFlags(cmd, &flags.outputFlags)
	return cmd
}

func newBrowseCmd() *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through logs interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := buildStore(flags)
			if store.HasErrors() {
				return reportFilterErrors(cmd.ErrOrStderr(), store, workflow.MsgFixFiltersList)
			}
			list := workflow.NewList(clientFn(), store, workflow.DefaultPageSize)
			return ui.RunApp(browse.New(cmd.Context(), list), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		},
	}

	addFilterFlags(cmd, &flags)
	return cmd
}
