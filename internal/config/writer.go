package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SettableKeys lists the keys `tasklist config set` writes.
var SettableKeys = []string{
	"storage.driver",
	"storage.dir",
	"storage.dsn",
	"storage.key",
	"storage.writeTimeoutSeconds",
	"log.level",
	"log.file",
	"telemetry.apiKey",
	"telemetry.endpoint",
	"ui.defaultFilter",
}

// intKeys hold numbers rather than strings.
var intKeys = []string{"storage.writeTimeoutSeconds"}

// IsSettable reports whether key can be written with SetValue.
func IsSettable(key string) bool {
	return slices.Contains(SettableKeys, key)
}

// WritableConfigPath returns the file `config set` writes when no config
// file was loaded: the project file if ./.tasklist exists, otherwise
// ~/.tasklist.yaml.
func WritableConfigPath() (string, error) {
	if info, err := os.Stat(LocalDir); err == nil && info.IsDir() {
		return filepath.Join(LocalDir, ConfigName+".yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigName+".yaml"), nil
}

// SetValue sets the dotted key in the YAML file at path, creating the file
// if needed. It returns the file's previous content (nil when it did not
// exist) so a caller can restore it with RestoreFile.
func SetValue(path, key, value string) ([]byte, error) {
	if !IsSettable(key) {
		return nil, fmt.Errorf("unknown config key %q", key)
	}

	previous, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	doc := map[string]any{}
	if len(previous) > 0 {
		if err := yaml.Unmarshal(previous, &doc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	}

	var typed any = value
	if slices.Contains(intKeys, key) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number, got %q", key, value)
		}
		typed = n
	}
	if err := setNested(doc, strings.Split(key, "."), typed); err != nil {
		return nil, err
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	// May hold a DSN or API key.
	if err := os.WriteFile(path, out, 0600); err != nil {
		return nil, fmt.Errorf("write config file: %w", err)
	}
	return previous, nil
}

// RestoreFile puts back content returned by SetValue.
func RestoreFile(path string, previous []byte) error {
	if previous == nil {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return os.WriteFile(path, previous, 0600)
}

func setNested(doc map[string]any, parts []string, value any) error {
	for i, part := range parts[:len(parts)-1] {
		next, ok := doc[part]
		if !ok || next == nil {
			child := map[string]any{}
			doc[part] = child
			doc = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("config key %s is not a section", strings.Join(parts[:i+1], "."))
		}
		doc = child
	}
	doc[parts[len(parts)-1]] = value
	return nil
}
