/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"strings"

	"github.com/josephgoksu/tasklist/internal/logger"
	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/josephgoksu/tasklist/internal/todo"
	"github.com/spf13/cobra"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a task",
	Long: `Add a task to the end of the list. Words are joined with spaces.

Due dates accept YYYY-MM-DD, MM/DD/YYYY, today and tomorrow.`,
	Example: `  tasklist add Buy milk
  tasklist add "Submit report" --due tomorrow --priority 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDue      string
	addPriority int
)

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD, MM/DD/YYYY, today, tomorrow)")
	addCmd.Flags().IntVarP(&addPriority, "priority", "p", todo.DefaultPriority, "task priority")
}

func runAdd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	logger.SetLastInput(text)

	return withSession(cmd, func(s *session) error {
		due, err := todo.ParseDueDate(addDue, s.store.Now())
		if err != nil {
			return err
		}
		t, err := s.store.AddTask(text, due, addPriority)
		if err != nil {
			return err
		}
		tracker.Track(telemetry.EventTaskAdded, telemetry.TaskAddedProps(t.HasDueDate(), t.Priority))
		return printTask(cmd.OutOrStdout(), "Added", t)
	})
}
