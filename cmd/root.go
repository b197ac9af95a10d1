/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"io"
	"os"
	"time"

	"github.com/josephgoksu/tasklist/internal/config"
	"github.com/josephgoksu/tasklist/internal/logger"
	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/josephgoksu/tasklist/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.3.0"

	// tracker is the telemetry client for this run. It stays a no-op
	// unless the user opted in.
	tracker telemetry.Client = telemetry.NoopClient{}
	// closeLog releases the log file opened by logger.Setup.
	closeLog = func() error { return nil }
	// started marks when the running command began.
	started time.Time
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tasklist",
	Short: "A small to-do list for the terminal",
	Long: `tasklist keeps a single list of tasks. Add tasks with an optional due date,
mark them completed or important, filter the list and clear what is done.

Run without arguments in a terminal to open the interactive list.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		tracker.Track(telemetry.EventCommandExecuted, telemetry.CommandProps(
			cmd.CommandPath(), time.Since(started).Milliseconds(), GetConfig().Storage.Driver))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.IsInteractive() {
			return cmd.Help()
		}
		return runTUI(cmd, "")
	},
}

// GetVersion returns the application version.
func GetVersion() string {
	return version
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		tracker.Track(telemetry.EventCommandError, telemetry.ErrorProps(cmd.CommandPath(), errorKind(err)))
		PrintError(userMessage(err), err)
	}
	shutdown()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = setupRun
	rootCmd.Version = GetVersion()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.tasklist/.tasklist.yaml or $HOME/.tasklist.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("json", false, "print machine-readable JSON")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "print only ids and errors")

	bindPersistentFlags()
}

// bindPersistentFlags binds the global flags to Viper.
func bindPersistentFlags() {
	for _, name := range []string{"config", "verbose", "json", "quiet"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// setupRun loads configuration, configures logging and crash context, and
// starts telemetry for the command about to run.
func setupRun(cmd *cobra.Command, args []string) error {
	started = time.Now()
	if err := InitConfig(); err != nil {
		return err
	}
	cfg := GetConfig()

	// The interactive screen owns the terminal, so logs only go to the file.
	var stderr io.Writer = cmd.ErrOrStderr()
	if ownsTerminal(cmd) {
		stderr = io.Discard
	}
	_, closer, err := logger.Setup(logger.Options{
		Level:   cfg.Log.Level,
		Verbose: isVerbose(),
		File:    cfg.Log.File,
		Stderr:  stderr,
	})
	if err != nil {
		return err
	}
	closeLog = closer

	logger.SetBasePath(config.CrashLogBase())
	logger.SetVersion(version)
	logger.SetCommand(cmd.CommandPath())
	logger.SetStorage(cfg.Storage.Driver)

	startTelemetry(cmd)
	return nil
}

// startTelemetry asks for consent on first use and opens the client. It
// does nothing unless a PostHog key is configured.
func startTelemetry(cmd *cobra.Command) {
	cfg := GetConfig()
	if cfg.Telemetry.APIKey == "" {
		return
	}
	tcfg, err := telemetry.Load()
	if err != nil {
		LogError("load telemetry config", err)
		return
	}
	if tcfg.NeedsConsent() && !isJSON() && !isQuiet() && cmd.Parent() != telemetryCmd {
		if _, err := telemetry.PromptConsent(tcfg, cmd.InOrStdin(), cmd.ErrOrStderr(), ui.IsInteractive()); err != nil {
			LogError("save telemetry consent", err)
		}
	}
	tracker = telemetry.New(telemetry.ClientConfig{
		APIKey:   cfg.Telemetry.APIKey,
		Endpoint: cfg.Telemetry.Endpoint,
		Version:  version,
		Config:   tcfg,
	})
}

func ownsTerminal(cmd *cobra.Command) bool {
	return cmd == tuiCmd || (!cmd.HasParent() && ui.IsInteractive())
}

// shutdown flushes telemetry and closes the log file.
func shutdown() {
	if err := tracker.Close(); err != nil {
		LogError("close telemetry", err)
	}
	tracker = telemetry.NoopClient{}
	if err := closeLog(); err != nil {
		LogError("close log file", err)
	}
	closeLog = func() error { return nil }
}
