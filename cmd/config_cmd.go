/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/josephgoksu/tasklist/internal/config"
	"github.com/josephgoksu/tasklist/internal/kv"
	"github.com/josephgoksu/tasklist/internal/logger"
	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/josephgoksu/tasklist/internal/todo"
	"github.com/josephgoksu/tasklist/internal/ui"
	"github.com/josephgoksu/tasklist/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configCmd is the parent config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect tasklist configuration",
	Long: `Inspect the effective configuration.

Settings come from .tasklist.yaml (./.tasklist/, the working directory or
$HOME), a .env file and TASKLIST_* environment variables, e.g.
TASKLIST_STORAGE_DRIVER=sqlite.`,
}

// configShowCmd shows current configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view := newConfigView(GetConfig())
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), view)
		}
		out, err := yaml.Marshal(view)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where configuration and data live",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := configPaths(GetConfig())
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), paths)
		}
		var sb strings.Builder
		for _, p := range paths {
			fmt.Fprintf(&sb, "%-10s %s\n", p.Name+":", p.Path)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderPanel("Paths", strings.TrimRight(sb.String(), "\n")))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Write a value to the loaded config file, or to ./.tasklist/.tasklist.yaml
(when ./.tasklist exists) or ~/.tasklist.yaml. The change is rolled back if the
resulting configuration is invalid.

Keys: ` + strings.Join(config.SettableKeys, ", "),
	Example: `  tasklist config set storage.driver sqlite
  tasklist config set ui.defaultFilter pending`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if !config.IsSettable(key) {
		return &todo.ValidationError{Field: "key", Reason: fmt.Sprintf("unknown config key %q (want one of %s)", key, strings.Join(config.SettableKeys, ", "))}
	}

	path := viper.ConfigFileUsed()
	if path == "" {
		var err error
		if path, err = config.WritableConfigPath(); err != nil {
			return fmt.Errorf("locate config file: %w", err)
		}
	}

	previous, err := config.SetValue(path, key, value)
	if err != nil {
		return &todo.ValidationError{Field: key, Reason: err.Error()}
	}
	if err := checkConfigFile(path); err != nil {
		if rerr := config.RestoreFile(path, previous); rerr != nil {
			LogError("restore config file", rerr)
		}
		return err
	}

	if !isQuiet() {
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", key, path)
	}
	return nil
}

// checkConfigFile overlays the file at path on the running configuration
// and validates the result.
func checkConfigFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	cfg := *GetConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return validateAppConfig(&cfg)
}

// configView is AppConfig with display names and secrets masked.
type configView struct {
	Storage struct {
		Driver              string `yaml:"driver" json:"driver"`
		Dir                 string `yaml:"dir" json:"dir"`
		DSN                 string `yaml:"dsn,omitempty" json:"dsn,omitempty"`
		Key                 string `yaml:"key" json:"key"`
		WriteTimeoutSeconds int    `yaml:"writeTimeoutSeconds" json:"writeTimeoutSeconds"`
	} `yaml:"storage" json:"storage"`
	Log struct {
		Level string `yaml:"level" json:"level"`
		File  string `yaml:"file,omitempty" json:"file,omitempty"`
	} `yaml:"log" json:"log"`
	Telemetry struct {
		APIKey   string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
		Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	} `yaml:"telemetry" json:"telemetry"`
	UI struct {
		DefaultFilter string `yaml:"defaultFilter" json:"defaultFilter"`
	} `yaml:"ui" json:"ui"`
}

func newConfigView(cfg *types.AppConfig) configView {
	var v configView
	v.Storage.Driver = cfg.Storage.Driver
	v.Storage.Dir = cfg.Storage.Dir
	v.Storage.DSN = maskSecret(cfg.Storage.DSN)
	v.Storage.Key = cfg.Storage.Key
	v.Storage.WriteTimeoutSeconds = cfg.Storage.WriteTimeoutSeconds
	v.Log.Level = cfg.Log.Level
	v.Log.File = cfg.Log.File
	v.Telemetry.APIKey = maskSecret(cfg.Telemetry.APIKey)
	v.Telemetry.Endpoint = cfg.Telemetry.Endpoint
	v.UI.DefaultFilter = cfg.UI.DefaultFilter
	return v
}

// maskSecret keeps the first four characters of s.
func maskSecret(s string) string {
	if len(s) <= 4 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return s[:4] + strings.Repeat("*", 8)
}

type namedPath struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func configPaths(cfg *types.AppConfig) []namedPath {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "(none)"
	}
	var data string
	switch cfg.Storage.Driver {
	case kv.DriverFile:
		data = filepath.Join(cfg.Storage.Dir, cfg.Storage.Key+".json")
	case kv.DriverSQLite:
		data = kv.SQLitePath(cfg.Storage.Dir)
		if cfg.Storage.DSN != "" {
			data = cfg.Storage.DSN
		}
	default:
		data = cfg.Storage.Driver + " (" + maskSecret(cfg.Storage.DSN) + ")"
	}
	telemetryPath, err := telemetry.GetConfigPath()
	if err != nil {
		telemetryPath = "(unavailable)"
	}
	return []namedPath{
		{Name: "config", Path: configFile},
		{Name: "data", Path: data},
		{Name: "telemetry", Path: telemetryPath},
		{Name: "crashes", Path: filepath.Join(config.CrashLogBase(), logger.CrashLogDir)},
	}
}
