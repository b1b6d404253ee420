package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Update the user-agent corpus from its public source",
	Long: "Downloads the latest most-common desktop user-agent statistics and rewrites the\n" +
		"corpus file. Run this between mining sessions; the reload must not race active draws.",
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().Bool("force", false, "Refresh even if the corpus is not stale")
	refreshCmd.Flags().Bool("headless", false, "Allow a headless-browser fallback for extraction")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	headless, _ := cmd.Flags().GetBool("headless")

	c := newCollector(headless)
	refreshed, err := c.RefreshIfStale(context.Background(), cfg.CorpusMaxAge, force)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	if !refreshed {
		fmt.Fprintf(os.Stdout, "Corpus %s is fresh (younger than %s); nothing to do.\n", cfg.CorpusFile, cfg.CorpusMaxAge)
		return nil
	}
	fmt.Fprintf(os.Stdout, "Corpus refreshed: %d user-agents written to %s\n", catalog.Len(), cfg.CorpusFile)
	return nil
}
