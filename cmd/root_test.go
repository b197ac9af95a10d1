package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "", "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "tasklist keeps a single list of tasks")
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "Commands:")
	for _, name := range []string{"add", "list", "done", "star", "delete", "clear", "export", "config", "telemetry", "tui"} {
		assert.Contains(t, out, name)
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "--version")
	assert.Contains(t, out, "tasklist version "+GetVersion())
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("TASKLIST_STORAGE_DRIVER", "redis")

	_, _, err := env.run(t, "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
}
