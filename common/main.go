package common

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
)

var Config Common
var Version = "devel"

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigFile string
	URL        string
	Debug      bool
	NoColor    bool
}

// Init loads the configuration and sets up logging. Flags given in opts
// override the file and the environment.
func Init(opts Options) error {
	if err := ConfInit("logdesk", opts.ConfigFile, &Config); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if opts.URL != "" {
		Config.API.URL = opts.URL
	}
	if opts.Debug {
		Config.Debug = true
	}
	if opts.NoColor || noColorEnv() {
		Config.Output.NoColor = true
	}

	if Config.Output.NoColor {
		RemoveColors()
	}

	LogInit(Config.Debug, Config.Output.NoColor)

	log.Debug().
		Str("component", "init").
		Str("api_url", Config.API.URL).
		Dur("timeout", Config.API.Timeout).
		Str("output", Config.Output.Format).
		Msg("logdesk initialization completed")
	return nil
}

// RemoveColors drops all ANSI styling from lipgloss output.
func RemoveColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func noColorEnv() bool {
	v := os.Getenv("LOGDESK_NOCOLOR")
	return v == "true" || v == "1" || os.Getenv("NO_COLOR") != ""
}
