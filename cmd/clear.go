/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/josephgoksu/tasklist/internal/export"
	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/josephgoksu/tasklist/internal/todo"
	"github.com/josephgoksu/tasklist/internal/ui"
	"github.com/spf13/cobra"
)

var (
	clearForce  bool
	clearBackup bool
)

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all completed tasks",
	Long: `Delete every completed task. Pending tasks keep their order.

Safety features:
- Shows the tasks that will be removed
- Asks for confirmation unless --force is used
- Optionally writes a JSON backup of the whole list first (--backup)`,
	Example: `  tasklist clear
  tasklist clear --backup
  tasklist clear --force`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "skip the confirmation prompt")
	clearCmd.Flags().BoolVar(&clearBackup, "backup", false, "write a JSON backup of the list before clearing")
}

func runClear(cmd *cobra.Command, args []string) error {
	if isJSON() && !clearForce {
		return &todo.ValidationError{Field: "flags", Reason: "--json needs --force because it cannot prompt"}
	}
	out := cmd.OutOrStdout()

	return withSession(cmd, func(s *session) error {
		completed := s.store.View(todo.FilterCompleted)
		if len(completed) == 0 {
			if isJSON() {
				return printJSON(out, map[string]int{"removed": 0})
			}
			if !isQuiet() {
				fmt.Fprintln(out, "No completed tasks to clear.")
			}
			return nil
		}
		if !isQuiet() && !isJSON() {
			showClearPreview(out, completed)
		}

		confirm := todo.ConfirmFunc(func(prompt string) bool {
			if !clearForce && !confirmOrAbort(cmd, prompt) {
				return false
			}
			if !clearBackup {
				return true
			}
			path, err := export.Backup(appFs, GetConfig().Storage.Dir, s.store.Tasks(), s.store.Now())
			if err != nil {
				PrintError("Warning: failed to create backup.", err)
				if !clearForce {
					fmt.Fprintln(out, "Clear cancelled for safety.")
					return false
				}
				return true
			}
			if !isJSON() {
				fmt.Fprintf(out, "Backup written to %s\n", path)
			}
			return true
		})

		removed, err := s.store.DeleteAllCompleted(confirm)
		if errors.Is(err, todo.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		tracker.Track(telemetry.EventTasksCleared, telemetry.CountProps(removed))

		switch {
		case isJSON():
			return printJSON(out, map[string]int{"removed": removed})
		case isQuiet():
			fmt.Fprintln(out, removed)
			return nil
		}
		fmt.Fprintf(out, "Cleared %d completed %s.\n", removed, plural(removed, "task", "tasks"))
		return nil
	})
}

func showClearPreview(w io.Writer, tasks []todo.Task) {
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = taskLine(t)
	}
	title := fmt.Sprintf("Tasks to be cleared (%d)", len(tasks))
	fmt.Fprintln(w, ui.RenderWarningPanel(title, strings.Join(lines, "\n")))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
