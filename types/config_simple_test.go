package types

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func validConfig() AppConfig {
	return AppConfig{
		Storage: StorageConfig{
			Driver: "file",
			Dir:    "/home/user/.tasklist/data",
			Key:    "tasks",
		},
	}
}

func TestAppConfig_Valid(t *testing.T) {
	cfg := validConfig()
	if err := NewValidator().Struct(cfg); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestAppConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"unknown driver", func(c *AppConfig) { c.Storage.Driver = "redis" }, "Driver"},
		{"missing dir", func(c *AppConfig) { c.Storage.Dir = "" }, "Dir"},
		{"key with space", func(c *AppConfig) { c.Storage.Key = "my tasks" }, "Key"},
		{"key with slash", func(c *AppConfig) { c.Storage.Key = "../tasks" }, "Key"},
		{"timeout too large", func(c *AppConfig) { c.Storage.WriteTimeoutSeconds = 301 }, "WriteTimeoutSeconds"},
		{"unknown log level", func(c *AppConfig) { c.Log.Level = "trace" }, "Level"},
		{"bad endpoint", func(c *AppConfig) { c.Telemetry.Endpoint = "not a url" }, "Endpoint"},
		{"unknown filter", func(c *AppConfig) { c.UI.DefaultFilter = "urgent" }, "DefaultFilter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := NewValidator().Struct(cfg)
			verrs, ok := err.(validator.ValidationErrors)
			if !ok || len(verrs) == 0 {
				t.Fatalf("expected validation errors, got %v", err)
			}
			if verrs[0].Field() != tt.field {
				t.Errorf("failing field = %q, want %q", verrs[0].Field(), tt.field)
			}
		})
	}
}
