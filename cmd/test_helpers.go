package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// testEnv isolates a command run: data, telemetry config and $HOME all
// live under one temp directory.
type testEnv struct {
	dir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	viper.Reset()
	bindPersistentFlags()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("TASKLIST_STORAGE_DIR", filepath.Join(dir, "data"))
	t.Setenv("TASKLIST_STORAGE_DRIVER", "file")
	t.Setenv("TASKLIST_TELEMETRY_APIKEY", "")
	telemetry.SetConfigDir(filepath.Join(dir, "telemetry"))
	t.Cleanup(func() { telemetry.SetConfigDir("") })
	return &testEnv{dir: dir}
}

// run executes rootCmd with args and stdin, returning stdout and stderr.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	prevErrOut := errOut
	errOut = &stderr
	defer func() {
		errOut = prevErrOut
		resetFlags(rootCmd)
		shutdown()
	}()

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// mustRun is run that fails the test on error.
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := e.run(t, "", args...)
	require.NoError(t, err, "stderr: %s", stderr)
	return out
}

// addTask adds text and returns the new id.
func (e *testEnv) addTask(t *testing.T, text string, extra ...string) string {
	t.Helper()
	args := append([]string{"add", text, "--quiet"}, extra...)
	return strings.TrimSpace(e.mustRun(t, args...))
}

// resetFlags restores every flag to its default so runs do not leak
// into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
