// Package cmd provides the CLI commands for the githound demo binary.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/githound-engine/internal/logging"
)

var (
	repoDir        string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd builds the root command: a thin wiring surface over the
// orchestration engine, not a production CLI façade.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "githound",
		Short: "Demo CLI exercising the githound search engine",
		Long: `githound wires together the search orchestration engine, the
incremental indexer, and the ranking pipeline against a small in-memory
demo repository, since the engine itself treats the Git accessor as an
external collaborator rather than bundling one.`,
		PersistentPreRunE:  setupLogging,
		PersistentPostRunE: teardownLogging,
	}

	root.PersistentFlags().StringVar(&repoDir, "repo-dir", ".", "repository root used for config/index cache discovery")
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	root.AddCommand(newSearchCmd())
	root.AddCommand(newIndexCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}
	cfg.WriteToStderr = false

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}
