// Package telemetry manages opt-in anonymous usage telemetry for tasklist.
// Task text, due dates and storage locations are never sent.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ConfigFileName is the name of the telemetry configuration file.
const ConfigFileName = "telemetry.json"

// Config holds the telemetry state and user preferences.
// Stored at ~/.tasklist/telemetry.json, separate from the main config.
type Config struct {
	Enabled bool `json:"enabled"`

	// ConsentAsked is set once the user has answered the prompt (either way).
	ConsentAsked bool `json:"consent_asked"`

	// AnonymousID is a random UUID generated on first load.
	AnonymousID string `json:"anonymous_id"`
}

var (
	fsys        afero.Fs = afero.NewOsFs()
	configDir   string
	configDirMu sync.RWMutex
)

// SetConfigDir overrides the directory telemetry.json lives in.
// Pass an empty string to restore the default.
func SetConfigDir(dir string) {
	configDirMu.Lock()
	defer configDirMu.Unlock()
	configDir = dir
}

// SetFs swaps the filesystem used for Load and Save. Tests use afero.MemMapFs.
func SetFs(f afero.Fs) {
	configDirMu.Lock()
	defer configDirMu.Unlock()
	if f == nil {
		f = afero.NewOsFs()
	}
	fsys = f
}

func current() (afero.Fs, string, error) {
	configDirMu.RLock()
	f, dir := fsys, configDir
	configDirMu.RUnlock()

	if dir != "" {
		return f, dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("get home directory: %w", err)
	}
	return f, filepath.Join(home, ".tasklist"), nil
}

// GetConfigPath returns the full path to the telemetry config file.
func GetConfigPath() (string, error) {
	_, dir, err := current()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load reads the telemetry configuration. A missing file yields a
// disabled config with a freshly generated anonymous ID.
func Load() (*Config, error) {
	f, dir, err := current()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	cfg := &Config{}
	data, err := afero.ReadFile(f, filepath.Join(dir, ConfigFileName))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if cfg.AnonymousID == "" {
		cfg.AnonymousID = uuid.New().String()
	}
	return cfg, nil
}

// Save writes the configuration with owner-only permissions.
func (c *Config) Save() error {
	f, dir, err := current()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}
	if err := f.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := afero.WriteFile(f, filepath.Join(dir, ConfigFileName), data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Enable turns on telemetry and records that consent was asked.
func (c *Config) Enable() {
	c.Enabled = true
	c.ConsentAsked = true
}

// Disable turns off telemetry and records that consent was asked.
func (c *Config) Disable() {
	c.Enabled = false
	c.ConsentAsked = true
}

func (c *Config) NeedsConsent() bool { return !c.ConsentAsked }

func (c *Config) IsEnabled() bool { return c.Enabled }
