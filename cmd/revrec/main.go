// Package main provides the revrec CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/revrec/revrec/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool

	logLevel  string
	logFormat string

	// logger is replaced in PersistentPreRunE once flags are parsed.
	logger = zap.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "revrec",
	Short: "Recommend peer reviewers for a manuscript",
	Long: `revrec recommends peer reviewers for a manuscript by comparing its text
with the prior papers of a fixed set of candidate authors.

Each candidate paper is stored as two embeddings: one of its abstract and
introduction, one of its full text without references. A manuscript is
scored against both, and the larger similarity wins.

All commands output JSON by default; pass --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logFormat, logLevel)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatConsole, "Log format (console, json)")
	rootCmd.Version = Version
}
