/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/josephgoksu/tasklist/internal/todo"
	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:     "delete <task_id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long:    `Delete a task by its id or a unique id prefix. Deleting an id that does not exist is not an error.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		return withSession(cmd, func(s *session) error {
			t, err := s.resolveTask(args[0])
			if errors.Is(err, todo.ErrNotFound) {
				if !isQuiet() && !isJSON() {
					fmt.Fprintf(out, "No task with id %q; nothing deleted.\n", args[0])
				}
				if isJSON() {
					return printJSON(out, map[string]any{"deleted": false, "id": args[0]})
				}
				return nil
			}
			if err != nil {
				return err
			}

			removed := s.store.DeleteTask(t.ID)
			if removed {
				tracker.Track(telemetry.EventTaskDeleted, nil)
			}
			switch {
			case isJSON():
				return printJSON(out, map[string]any{"deleted": removed, "id": t.ID})
			case isQuiet():
				fmt.Fprintln(out, t.ID)
				return nil
			}
			return printTask(out, "Deleted", t)
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
