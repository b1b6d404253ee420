package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dk9977/maskedminers/internal/miner"
	"github.com/dk9977/maskedminers/internal/ui"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch URL [URL...]",
	Short: "Fetch pages under one masked browser identity",
	Long: "Fetches the given URLs concurrently. All requests of one invocation share a\n" +
		"single persona so they present one internally consistent identity.",
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("format", "json", "Output format: json, table")
	fetchCmd.Flags().Bool("links", false, "Include outbound links in the output")
	fetchCmd.Flags().Bool("refresh", false, "Refresh the user-agent corpus first if it is stale")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	withLinks, _ := cmd.Flags().GetBool("links")
	refresh, _ := cmd.Flags().GetBool("refresh")

	ctx := context.Background()

	// Refresh happens before the mining session starts; a corpus reload
	// must never race in-flight draws.
	if refresh {
		if _, err := newCollector(false).RefreshIfStale(ctx, cfg.CorpusMaxAge, false); err != nil {
			return fmt.Errorf("refresh corpus: %w", err)
		}
	}

	m, err := newMaskedMiner()
	if err != nil {
		return err
	}

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Mining %d page(s) as %s...", len(args), m.Persona().Browser.Family))
	ctx = miner.WithProgress(ctx, spin.Update)
	pages, err := m.MineAll(ctx, args)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if !withLinks {
		for i := range pages {
			pages[i].Links = nil
		}
	}

	switch format {
	case "table":
		printPagesTable(pages)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(pages)
	}

	return nil
}
