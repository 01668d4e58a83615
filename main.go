package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/monobilisim/logdesk/common"
	"github.com/monobilisim/logdesk/common/ui"
	"github.com/monobilisim/logdesk/logs"
	"github.com/spf13/cobra"
)

var opts common.Options

var RootCmd = &cobra.Command{
	Use:           "logdesk",
	Short:         "Terminal client for the log management API",
	Version:       common.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return common.Init(opts)
	},
}

func main() {
	RootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "Config file (default: logdesk.yaml in /etc/logdesk, $XDG_CONFIG_HOME/logdesk or .)")
	RootCmd.PersistentFlags().StringVar(&opts.URL, "url", "", "API base URL, e.g. http://localhost:8000/api")
	RootCmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	RootCmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")

	RootCmd.AddCommand(logs.NewLogsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, logs.ErrReported) {
			fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("Error: "+err.Error()))
		}
		stop()
		os.Exit(1)
	}
}
