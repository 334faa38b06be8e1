package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/githound-engine/cmd/githound/fixture"
	"github.com/Aman-CERP/githound-engine/internal/config"
	"github.com/Aman-CERP/githound-engine/pkg/index"
)

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the incremental index over the demo repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(repoDir)
			if err != nil {
				cfg = config.NewEngineConfig(repoDir)
			}

			repo := fixture.New()
			ix := index.NewIncrementalIndexer(cfg.CacheDir, repo.RealPath())

			branch, _ := repo.ActiveBranchName()
			stats, err := ix.Build(repo, branch, nil, 0)
			if err != nil {
				return fmt.Errorf("build index: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status: %s\n", stats.Status)
			fmt.Fprintf(out, "commits indexed this run: %d\n", stats.CommitsIndexed)
			fmt.Fprintf(out, "total commits indexed: %d\n", stats.TotalCommits)
			fmt.Fprintf(out, "index files under: %s\n", cfg.CacheDir)
			return nil
		},
	}
}
