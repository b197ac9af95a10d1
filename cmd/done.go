package cmd

import (
	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/spf13/cobra"
)

// doneCmd represents the done command
var doneCmd = &cobra.Command{
	Use:     "done <task_id>",
	Aliases: []string{"complete", "d"},
	Short:   "Toggle a task between completed and pending",
	Long:    `Mark a pending task as completed, or a completed task as pending again. The id may be any unique prefix.`,
	Example: `  tasklist done 0b6c2f1e
  tasklist d 0b6`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			t, err := toggleTask(s, args[0], s.store.ToggleCompleted)
			if err != nil {
				return err
			}
			verb := "Reopened"
			if t.Completed {
				verb = "Completed"
				tracker.Track(telemetry.EventTaskCompleted, nil)
			}
			return printTask(cmd.OutOrStdout(), verb, t)
		})
	},
}

func init() {
	rootCmd.AddCommand(doneCmd)
}
