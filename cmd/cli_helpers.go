package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/josephgoksu/tasklist/internal/config"
	"github.com/josephgoksu/tasklist/internal/kv"
	"github.com/josephgoksu/tasklist/internal/logger"
	"github.com/josephgoksu/tasklist/internal/todo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// closeTimeout bounds the final flush when a command exits.
const closeTimeout = 15 * time.Second

// appFs is the filesystem exports and backups are written to.
var appFs = afero.NewOsFs()

func isJSON() bool {
	return viper.GetBool("json")
}

func isQuiet() bool {
	return viper.GetBool("quiet")
}

func isVerbose() bool {
	return viper.GetBool("verbose")
}

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// confirmOrAbort asks a y/N question on the command's streams. Anything
// but y/yes, including EOF, declines.
func confirmOrAbort(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt+" [y/N] ")
	response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	if response != "y" && response != "yes" {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return false
	}
	return true
}

// session is an open task store plus the backend behind it.
type session struct {
	store   *todo.Store
	backend kv.Store
}

// openSession opens the configured backend and loads the task list.
func openSession(ctx context.Context) (*session, error) {
	cfg := GetConfig()
	logger.SetStorage(cfg.Storage.Driver)

	backend, err := kv.Open(ctx, kv.Config{
		Driver: cfg.Storage.Driver,
		Dir:    cfg.Storage.Dir,
		DSN:    cfg.Storage.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}

	timeout := time.Duration(cfg.Storage.WriteTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultWriteTimeoutSeconds * time.Second
	}
	store := todo.NewStore(backend, todo.Options{
		Key:          cfg.Storage.Key,
		WriteTimeout: timeout,
	})
	store.Initialize(ctx)
	if perr := store.LastPersistError(); perr != nil {
		LogError("loading tasks failed, starting empty", perr)
	}
	return &session{store: store, backend: backend}, nil
}

// close drains pending writes and releases the backend. A failed final
// write is reported as a warning; the command itself still succeeds.
func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if err := s.store.Close(ctx); err != nil {
		LogError("flush interrupted", err)
	}
	if perr := s.store.LastPersistError(); perr != nil && perr.Op == todo.OpWrite {
		PrintError("Warning: changes could not be saved.", perr)
	}
	if err := s.backend.Close(); err != nil {
		LogError("close storage", err)
	}
}

// withSession runs fn against an open session and closes it afterwards.
func withSession(cmd *cobra.Command, fn func(*session) error) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}

// resolveTask maps an id prefix argument to a task.
func (s *session) resolveTask(arg string) (todo.Task, error) {
	id, err := s.store.ResolveID(arg)
	if err != nil {
		return todo.Task{}, err
	}
	t, _ := s.store.Get(id)
	return t, nil
}

// filterFlag resolves --filter, falling back to ui.defaultFilter.
func filterFlag(value string) (todo.FilterMode, error) {
	if value == "" {
		value = GetConfig().UI.DefaultFilter
	}
	mode, ok := todo.ParseFilterMode(value)
	if !ok {
		return todo.FilterAll, &todo.ValidationError{Field: "filter", Reason: fmt.Sprintf("unknown mode %q (want all, pending, completed, important or dueDate)", value)}
	}
	return mode, nil
}
