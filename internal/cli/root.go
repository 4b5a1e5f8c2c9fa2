// Package cli provides the command-line interface for abyss.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abysslabs/abyss/internal/config"
	"github.com/abysslabs/abyss/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global config, logger, and store, initialized in PersistentPreRunE.
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	st         *store.Store
)

// rootCmd represents the base command. Running abyss without a subcommand
// opens the interactive chat.
var rootCmd = &cobra.Command{
	Use:   "abyss",
	Short: "Therapeutic conversation client",
	Long: `Abyss is an AI-powered therapeutic companion: a private, judgment-free
conversation client. Conversations are exchanged with a remote dialogue agent
and stored locally on this device only.

For immediate crisis support, please contact emergency services or:
  National Suicide Prevention Lifeline: 988
  Crisis Text Line: text HOME to 741741
  International: https://findahelpline.com`,
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		// The chat TUI owns the terminal; keep log lines out of it.
		quiet := cmd.Name() == "chat" || cmd == cmd.Root()
		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel, quiet)

		st, err = store.Open(cfg.DBPath, logger)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			if err := st.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
			}
		}
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(settingsCmd)
}
