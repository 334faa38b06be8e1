package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/githound-engine/cmd/githound/fixture"
	"github.com/Aman-CERP/githound-engine/internal/config"
	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/orchestrator"
)

type searchFlags struct {
	content       string
	author        string
	message       string
	commitHash    string
	filePath      string
	extensions    []string
	caseSensitive bool
	fuzzy         bool
	limit         int
	statistical   bool
	patterns      bool
}

func newSearchCmd() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a search against the demo repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.content, "content", "", "content pattern (regex or substring)")
	cmd.Flags().StringVar(&flags.author, "author", "", "author name/email pattern")
	cmd.Flags().StringVar(&flags.message, "message", "", "commit message pattern")
	cmd.Flags().StringVar(&flags.commitHash, "commit", "", "full commit hash (exact match)")
	cmd.Flags().StringVar(&flags.filePath, "file-path", "", "file path glob")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "file extensions, e.g. go,py")
	cmd.Flags().BoolVar(&flags.caseSensitive, "case-sensitive", false, "case-sensitive matching")
	cmd.Flags().BoolVar(&flags.fuzzy, "fuzzy", false, "enable fuzzy matching")
	cmd.Flags().IntVar(&flags.limit, "limit", 20, "maximum results")
	cmd.Flags().BoolVar(&flags.statistical, "stats", false, "run the statistical analytics searcher")
	cmd.Flags().BoolVar(&flags.patterns, "patterns", false, "run the code/security pattern searcher")

	return cmd
}

func runSearch(cmd *cobra.Command, flags searchFlags) error {
	cfg, err := config.Load(repoDir)
	if err != nil {
		cfg = config.NewEngineConfig(repoDir)
	}

	base, err := orchestrator.NewDefault(cfg, nil)
	if err != nil {
		return fmt.Errorf("build orchestrator: %w", err)
	}
	enhanced := orchestrator.NewEnhanced(base)

	query := model.SearchQuery{
		ContentPattern:      flags.content,
		AuthorPattern:       flags.author,
		MessagePattern:      flags.message,
		CommitHash:          flags.commitHash,
		FilePathPattern:     flags.filePath,
		FileExtensions:      flags.extensions,
		CaseSensitive:       flags.caseSensitive,
		FuzzySearch:         flags.fuzzy,
		StatisticalAnalysis: flags.statistical,
		PatternAnalysis:     flags.patterns,
	}
	if query.IsEmpty() {
		return fmt.Errorf("at least one of --content, --author, --message, --commit, --file-path, --ext, --stats, --patterns must be set")
	}

	repo := fixture.New()
	branch, _ := repo.ActiveBranchName()

	result, err := enhanced.Search(context.Background(), orchestrator.Invocation{
		Repo:       repo,
		Query:      query,
		Branch:     branch,
		MaxResults: flags.limit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printResults(cmd, result)
	return nil
}

func printResults(cmd *cobra.Command, result *orchestrator.EnhancedResult) {
	out := cmd.OutOrStdout()
	if len(result.Results) == 0 {
		fmt.Fprintln(out, "no results")
	} else {
		w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tTYPE\tCOMMIT\tFILE\tLINE\tMATCH")
		for _, r := range result.Results {
			hash := r.CommitHash
			if len(hash) > 8 {
				hash = hash[:8]
			}
			line := ""
			if r.LineNumber != nil {
				line = fmt.Sprintf("%d", *r.LineNumber)
			}
			fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\t%s\t%s\n",
				r.RelevanceScore, r.SearchType, hash, r.FilePath, line, truncate(r.MatchingLine, 60))
		}
		_ = w.Flush()
	}

	fmt.Fprintf(out, "\n%d result(s) in %dms\n", len(result.Results), result.Metrics.DurationMs)
	for _, b := range result.Bottlenecks {
		fmt.Fprintf(out, "bottleneck[%s]: %s — %s\n", b.Severity, b.Message, b.Recommendation)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
