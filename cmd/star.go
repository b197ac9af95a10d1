package cmd

import (
	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/spf13/cobra"
)

// starCmd represents the star command
var starCmd = &cobra.Command{
	Use:     "star <task_id>",
	Aliases: []string{"important"},
	Short:   "Toggle a task's important mark",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			t, err := toggleTask(s, args[0], s.store.ToggleImportant)
			if err != nil {
				return err
			}
			verb := "Unstarred"
			if t.IsImportant {
				verb = "Starred"
				tracker.Track(telemetry.EventTaskStarred, nil)
			}
			return printTask(cmd.OutOrStdout(), verb, t)
		})
	},
}

func init() {
	rootCmd.AddCommand(starCmd)
}
