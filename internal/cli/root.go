// Package cli implements the LogicalX command-line interface using Cobra.
// Each subcommand maps to one session event (login, play, subscribe, etc.)
// and runs against the local progress store.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/logicalx/logicalx/internal/daemon"
)

var (
	verbose bool
	config  daemon.Config
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "logicalx",
	Short: "LogicalX: daily logic puzzles for developers",
	Long: `LogicalX serves daily logic puzzles for developers.
Solve one puzzle per difficulty tier each day to keep your streak,
earn XP, level up and collect badges.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := daemon.LoadConfig()
		if err != nil {
			return err
		}
		config = cfg

		l, err := daemon.NewLogger(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		os.Exit(1)
	}
}
