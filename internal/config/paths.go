package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GetGlobalConfigDir returns the path to the global configuration directory (~/.tasklist).
// It's a variable to allow overriding in tests.
var GetGlobalConfigDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, LocalDir), nil
}

// DataDir returns the directory holding the task data.
// Resolution order (first match wins):
// 1. Explicit config via "storage.dir" (Viper/env/flag)
// 2. Local project directory: .tasklist/data (if .tasklist exists)
// 3. XDG_DATA_HOME/tasklist (if XDG_DATA_HOME is set)
// 4. Global fallback: ~/.tasklist/data
func DataDir() string {
	if dir := viper.GetString("storage.dir"); dir != "" {
		return dir
	}

	if info, err := os.Stat(LocalDir); err == nil && info.IsDir() {
		return filepath.Join(LocalDir, "data")
	}

	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, AppName)
	}

	dir, err := GetGlobalConfigDir()
	if err != nil {
		return filepath.Join(".", "data")
	}
	return filepath.Join(dir, "data")
}

// CrashLogBase returns the directory crash logs are written under.
func CrashLogBase() string {
	if info, err := os.Stat(LocalDir); err == nil && info.IsDir() {
		return LocalDir
	}
	dir, err := GetGlobalConfigDir()
	if err != nil {
		return LocalDir
	}
	return dir
}
