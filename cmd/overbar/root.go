// Package main provides the CLI entrypoint for overbar.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/overbar/internal/config"
	"github.com/jmylchreest/overbar/internal/store"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose     bool
		historyFile string
		configPath  string
	}
	logger *slog.Logger

	historyStore *store.Store
	historyPath  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "overbar",
	Short: "Terminal toolbar with a ruleset selector and notification counter",
	Long: `overbar draws a one-row toolbar over a scrollable notification list.

The toolbar shows the selected ruleset and a counter of unread
notifications. Rulesets switch with ctrl+1..9 or alt+1..9 whether or not the
toolbar is visible. ctrl+N needs a terminal that supports xterm's
modifyOtherKeys (xterm, foot, WezTerm, iTerm2); alt+N works everywhere.

Running overbar without a subcommand launches the interactive TUI.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		historyPath = globalOpts.historyFile
		if historyPath == "" {
			if err := config.EnsureDataDir(); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			historyPath = config.HistoryPath()
		}

		persistence, err := store.NewJSONLPersistence(historyPath)
		if err != nil {
			return fmt.Errorf("failed to initialize persistence: %w", err)
		}

		historyStore = store.NewStore(persistence)
		if err := historyStore.Hydrate(); err != nil {
			logger.Warn("failed to hydrate store from disk", "error", err)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if historyStore != nil {
			return historyStore.Close()
		}
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.historyFile, "history-file", "",
		"Path to history file (default: ~/.local/share/overbar/history.jsonl)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/overbar/config.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
