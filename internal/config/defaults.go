// Package config provides centralized configuration constants and path
// resolution for tasklist. All default values live here.
package config

import (
	"github.com/spf13/viper"
)

const (
	// AppName is used for directory and file names.
	AppName = "tasklist"

	// ConfigName is the config file base name (.tasklist.yaml).
	ConfigName = ".tasklist"

	// EnvPrefix prefixes environment overrides, e.g. TASKLIST_STORAGE_DRIVER.
	EnvPrefix = "TASKLIST"

	// LocalDir is the per-project directory checked before global paths.
	LocalDir = ".tasklist"
)

// Storage defaults
const (
	DefaultStorageDriver       = "file"
	DefaultStorageKey          = "tasks"
	DefaultWriteTimeoutSeconds = 10
)

// DefaultLogLevel is the level used without --verbose.
const DefaultLogLevel = "warn"

// DefaultFilter is the filter mode the list starts in.
const DefaultFilter = "all"

// EnvKeys are config keys without defaults that can still be set from
// the environment (TASKLIST_STORAGE_DSN etc.).
var EnvKeys = []string{
	"storage.dir",
	"storage.dsn",
	"log.file",
	"telemetry.apiKey",
	"telemetry.endpoint",
}

// SetDefaults registers default values on the global viper instance.
// storage.dir is resolved lazily by DataDir so it is not set here.
func SetDefaults() {
	viper.SetDefault("storage.driver", DefaultStorageDriver)
	viper.SetDefault("storage.key", DefaultStorageKey)
	viper.SetDefault("storage.writeTimeoutSeconds", DefaultWriteTimeoutSeconds)
	viper.SetDefault("log.level", DefaultLogLevel)
	viper.SetDefault("ui.defaultFilter", DefaultFilter)
	for _, key := range EnvKeys {
		_ = viper.BindEnv(key)
	}
}
