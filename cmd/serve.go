package cmd

import (
	"fmt"

	mcpserver "github.com/dk9977/maskedminers/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "Starting maskedminers MCP server on stdio...")
	return newMCPServer().Serve()
}

// newMCPServer wires the MCP tools to the shared catalog and config.
func newMCPServer() *mcpserver.Server {
	return mcpserver.NewServer(catalog, cfg.CorpusMaxAge, newMaskedMiner, newCollector)
}
