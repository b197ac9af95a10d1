/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/josephgoksu/tasklist/internal/kv"
	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/josephgoksu/tasklist/internal/todo"
	"github.com/josephgoksu/tasklist/internal/ui"
	"github.com/josephgoksu/tasklist/internal/watch"
	"github.com/josephgoksu/tasklist/types"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks in the order they were added.

Filters: all, pending, completed, important, dueDate.`,
	Example: `  tasklist list
  tasklist list --filter important
  tasklist list --watch`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listFilter string
	listWatch  bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "filter mode (all, pending, completed, important, dueDate)")
	listCmd.Flags().BoolVarP(&listWatch, "watch", "w", false, "re-render when the stored list changes")
}

func runList(cmd *cobra.Command, args []string) error {
	mode, err := filterFlag(listFilter)
	if err != nil {
		return err
	}
	if mode != todo.FilterAll {
		tracker.Track(telemetry.EventFilterApplied, telemetry.Properties{"filter": string(mode)})
	}

	out := cmd.OutOrStdout()
	if !listWatch {
		return renderList(cmd, out, mode)
	}

	dir, files, err := watchTarget(GetConfig())
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchList(ctx, cmd, out, mode, dir, files)
}

// watchList renders once and again after every settled change until ctx
// is done.
func watchList(ctx context.Context, cmd *cobra.Command, out io.Writer, mode todo.FilterMode, dir string, files []string) error {
	redraw := func() {
		if ui.IsInteractive() {
			fmt.Fprint(out, "\033[H\033[2J")
		}
		if err := renderList(cmd, out, mode); err != nil {
			LogError("re-render list", err)
		}
	}
	redraw()

	return watch.Run(ctx, watch.Config{
		Dir:      dir,
		Files:    files,
		OnChange: redraw,
	})
}

// renderList loads the stored list and prints the tasks visible under mode.
func renderList(cmd *cobra.Command, out io.Writer, mode todo.FilterMode) error {
	return withSession(cmd, func(s *session) error {
		tasks := s.store.View(mode)
		switch {
		case isJSON():
			if tasks == nil {
				tasks = []todo.Task{}
			}
			return printJSON(out, tasks)
		case isQuiet():
			for _, t := range tasks {
				fmt.Fprintln(out, t.ID)
			}
			return nil
		}

		fmt.Fprintln(out, ui.StyleHeader.Render(ui.FilterTitle(mode)))
		fmt.Fprint(out, ui.RenderTaskList(tasks, mode))
		if n := len(tasks); n > 0 {
			fmt.Fprintf(out, "\n%d of %d tasks\n", n, s.store.Len())
		}
		return nil
	})
}

// watchTarget returns the directory and file names that change when the
// configured backend is written. Server databases cannot be watched.
func watchTarget(cfg *types.AppConfig) (string, []string, error) {
	switch cfg.Storage.Driver {
	case kv.DriverFile:
		return cfg.Storage.Dir, []string{cfg.Storage.Key + ".json"}, nil
	case kv.DriverSQLite:
		path := kv.SQLitePath(cfg.Storage.Dir)
		if cfg.Storage.DSN != "" {
			p, ok := kv.SQLiteFilePath(cfg.Storage.DSN)
			if !ok {
				return "", nil, fmt.Errorf("--watch needs a file-backed sqlite database")
			}
			path = p
		}
		base := filepath.Base(path)
		return filepath.Dir(path), []string{base, base + "-wal"}, nil
	}
	return "", nil, fmt.Errorf("--watch is not supported for the %s driver", cfg.Storage.Driver)
}
