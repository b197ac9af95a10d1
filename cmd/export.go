/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/josephgoksu/tasklist/internal/export"
	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/josephgoksu/tasklist/internal/todo"
	"github.com/josephgoksu/tasklist/internal/ui"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportFilter string
	exportOutput string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks as JSON, YAML, CSV or PDF",
	Long: `Render the (optionally filtered) task list to a file or stdout.

Without --format the format follows the extension of --output, and
defaults to JSON.`,
	Example: `  tasklist export
  tasklist export --format csv --filter pending
  tasklist export -o tasks.pdf`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format (json, yaml, csv, pdf)")
	exportCmd.Flags().StringVarP(&exportFilter, "filter", "f", "", "filter mode (all, pending, completed, important, dueDate)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := exportFormatFor(exportFormat, exportOutput)
	if err != nil {
		return &todo.ValidationError{Field: "format", Reason: err.Error()}
	}
	if format == export.FormatPDF && exportOutput == "" {
		return &todo.ValidationError{Field: "output", Reason: "pdf export needs --output"}
	}
	mode, err := filterFlag(exportFilter)
	if err != nil {
		return err
	}

	return withSession(cmd, func(s *session) error {
		report := export.Report{
			Title:       ui.FilterTitle(mode),
			Filter:      mode,
			GeneratedAt: s.store.Now(),
			Tasks:       s.store.View(mode),
		}
		props := telemetry.CountProps(len(report.Tasks))
		props["format"] = string(format)

		if exportOutput == "" {
			if err := export.Render(cmd.OutOrStdout(), report, format); err != nil {
				return err
			}
			tracker.Track(telemetry.EventTasksExported, props)
			return nil
		}

		if err := export.WriteFile(appFs, exportOutput, report, format); err != nil {
			return err
		}
		tracker.Track(telemetry.EventTasksExported, props)
		if !isQuiet() {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d %s to %s\n", len(report.Tasks), plural(len(report.Tasks), "task", "tasks"), exportOutput)
		}
		return nil
	})
}

// exportFormatFor picks the explicit format, else the output extension,
// else JSON.
func exportFormatFor(format, output string) (export.Format, error) {
	if format == "" && output != "" {
		if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
			if f, err := export.ParseFormat(ext); err == nil {
				return f, nil
			}
		}
	}
	return export.ParseFormat(format)
}
