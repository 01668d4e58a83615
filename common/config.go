package common

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Common is the client configuration, read from logdesk.yaml
type Common struct {
	API struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"api"`

	Output struct {
		Format  string `mapstructure:"format"`
		NoColor bool   `mapstructure:"no_color"`
	} `mapstructure:"output"`

	Log struct {
		RetentionDays int `mapstructure:"retention_days"`
	} `mapstructure:"log"`

	Debug bool `mapstructure:"debug"`
}

const (
	DefaultAPIURL = "http://localhost:8000/api"

	DefaultRetentionDays = 20
)

// ConfigPaths are searched in order when no explicit file is given.
func ConfigPaths() []string {
	paths := []string{"/etc/logdesk"}
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		xdgConfigHome = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return append(paths, filepath.Join(xdgConfigHome, "logdesk"), ".")
}

// ConfInit reads configName (or the explicit configFile when set) into config.
// A missing file is not an error; defaults and LOGDESK_* environment
// variables still apply.
func ConfInit(configName string, configFile string, config interface{}) error {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		for _, p := range ConfigPaths() {
			v.AddConfigPath(p)
		}
	}
	v.SetConfigType("yaml")

	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("output.format", "table")
	v.SetDefault("output.no_color", false)
	v.SetDefault("log.retention_days", DefaultRetentionDays)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("LOGDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		log.Debug().Str("component", "config").Str("name", configName).Msg("No config file found, using defaults")
	} else {
		log.Debug().Str("component", "config").Str("file", v.ConfigFileUsed()).Msg("Loaded config file")
	}

	return v.Unmarshal(config)
}
