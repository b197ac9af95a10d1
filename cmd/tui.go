package cmd

import (
	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/josephgoksu/tasklist/internal/ui"
	"github.com/spf13/cobra"
)

var tuiFilter string

// tuiCmd opens the interactive task list
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive task list",
	Long: `Open the full-screen task list.

Keys: a add, enter options, space complete, f filter, D clear completed,
esc close a sheet, ? help, q quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, tuiFilter)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVarP(&tuiFilter, "filter", "f", "", "initial filter mode")
}

func runTUI(cmd *cobra.Command, filter string) error {
	mode, err := filterFlag(filter)
	if err != nil {
		return err
	}
	return withSession(cmd, func(s *session) error {
		tracker.Track(telemetry.EventSessionStart, telemetry.CountProps(s.store.Len()))
		return ui.RunTaskList(s.store, ui.TaskListOptions{
			Filter:    mode,
			Telemetry: tracker,
		})
	})
}
