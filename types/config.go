/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/josephgoksu/tasklist/internal/kv"
)

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose   bool            `mapstructure:"verbose"`
	Config    string          `mapstructure:"config"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	UI        UIConfig        `mapstructure:"ui"`
}

// StorageConfig selects the persistent store the task list is mirrored into.
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=file sqlite postgres mysql"`
	// Dir holds data files for the file and sqlite drivers.
	Dir string `mapstructure:"dir" validate:"required"`
	// DSN is required for postgres and mysql; optional override for sqlite.
	DSN string `mapstructure:"dsn"`
	// Key is the slot holding the serialized task list.
	Key string `mapstructure:"key" validate:"required,max=64,kvkey"`
	// WriteTimeoutSeconds bounds a single background write.
	WriteTimeoutSeconds int `mapstructure:"writeTimeoutSeconds" validate:"omitempty,min=1,max=300"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	// File, when set, receives logs in addition to stderr.
	File string `mapstructure:"file"`
}

// TelemetryConfig holds the PostHog project settings. Telemetry stays off
// until the user opts in, whatever is configured here.
type TelemetryConfig struct {
	APIKey   string `mapstructure:"apiKey"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

// UIConfig holds presentation defaults
type UIConfig struct {
	DefaultFilter string `mapstructure:"defaultFilter" validate:"omitempty,oneof=all pending completed important dueDate"`
}

// NewValidator returns a validator with the custom tags AppConfig uses.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("kvkey", func(fl validator.FieldLevel) bool {
		return kv.ValidKey(fl.Field().String())
	})
	return v
}
