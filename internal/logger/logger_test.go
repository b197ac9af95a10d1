package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":  slog.LevelDebug,
		" INFO ": slog.LevelInfo,
		"warn":   slog.LevelWarn,
		"error":  slog.LevelError,
		"":       slog.LevelWarn,
		"chatty": slog.LevelWarn,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestSetup_Levels(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	var buf bytes.Buffer
	log, closeFn, err := Setup(Options{Level: "warn", Stderr: &buf})
	require.NoError(t, err)
	defer closeFn()

	log.Info("hidden")
	log.Warn("shown", "key", "tasks")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "key=tasks")

	buf.Reset()
	log, closeFn2, err := Setup(Options{Level: "error", Verbose: true, Stderr: &buf})
	require.NoError(t, err)
	defer closeFn2()
	log.Debug("debug on")
	assert.Contains(t, buf.String(), "debug on")
}

func TestSetup_File(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	path := filepath.Join(t.TempDir(), "logs", "tasklist.log")
	var buf bytes.Buffer
	log, closeFn, err := Setup(Options{Level: "info", File: path, Stderr: &buf})
	require.NoError(t, err)

	log.Info("persisted")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "persisted")
	assert.Contains(t, buf.String(), "persisted")
}
