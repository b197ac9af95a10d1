/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/spf13/cobra"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Manage telemetry settings",
	Long: `View and manage tasklist's anonymous telemetry settings.

Telemetry is off unless you opt in. When on, tasklist sends command names,
durations and error kinds. Task text, dates and file paths are never sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTelemetryStatus(cmd)
	},
}

var telemetryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current telemetry status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTelemetryStatus(cmd)
	},
}

var telemetryEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable anonymous telemetry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTelemetry(cmd, true)
	},
}

var telemetryDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable anonymous telemetry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTelemetry(cmd, false)
	},
}

func init() {
	rootCmd.AddCommand(telemetryCmd)

	telemetryCmd.AddCommand(telemetryStatusCmd)
	telemetryCmd.AddCommand(telemetryEnableCmd)
	telemetryCmd.AddCommand(telemetryDisableCmd)
}

func runTelemetryStatus(cmd *cobra.Command) error {
	cfg, err := telemetry.Load()
	if err != nil {
		return fmt.Errorf("failed to read telemetry status: %w", err)
	}
	out := cmd.OutOrStdout()

	if isJSON() {
		return printJSON(out, map[string]any{
			"enabled":      cfg.IsEnabled(),
			"consentAsked": !cfg.NeedsConsent(),
			"configured":   GetConfig().Telemetry.APIKey != "",
		})
	}

	switch {
	case cfg.NeedsConsent():
		fmt.Fprintln(out, "Telemetry: not configured yet (off)")
	case cfg.IsEnabled():
		fmt.Fprintln(out, "Telemetry: enabled")
		fmt.Fprintf(out, "   Anonymous ID: %s\n", cfg.AnonymousID)
		fmt.Fprintln(out, "   To disable: tasklist telemetry disable")
	default:
		fmt.Fprintln(out, "Telemetry: disabled")
		fmt.Fprintln(out, "   To enable: tasklist telemetry enable")
	}
	if GetConfig().Telemetry.APIKey == "" {
		fmt.Fprintln(out, "   No telemetry.apiKey is configured, so nothing is sent.")
	}
	return nil
}

func setTelemetry(cmd *cobra.Command, enabled bool) error {
	cfg, err := telemetry.Load()
	if err != nil {
		return fmt.Errorf("failed to read telemetry config: %w", err)
	}
	if enabled {
		cfg.Enable()
	} else {
		cfg.Disable()
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save telemetry config: %w", err)
	}

	if isQuiet() {
		return nil
	}
	if enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Telemetry enabled. Thank you for helping improve tasklist!")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Telemetry disabled.")
	}
	return nil
}
