// Package mcp exposes the masked miner as an MCP tool server, over stdio
// or streamable HTTP.
package mcp

import (
	"time"

	"github.com/dk9977/maskedminers/internal/collector"
	"github.com/dk9977/maskedminers/internal/identity"
	"github.com/dk9977/maskedminers/internal/miner"
	"github.com/mark3labs/mcp-go/server"
)

// Server wires the MCP tools to the identity catalog and the miner
// factory. Every fetch tool call builds a fresh miner, i.e. one persona
// per tool invocation; the corpus refresh tool runs between invocations,
// which is exactly the quiet point a reload needs.
type Server struct {
	catalog      *identity.Catalog
	corpusMaxAge time.Duration
	newMiner     func() (*miner.Miner, error)
	newCollector func(headless bool) *collector.Collector
}

// NewServer creates the MCP tool server. newMiner must return a miner
// bound to a freshly drawn persona; newCollector must return a collector
// refreshing the same catalog.
func NewServer(
	catalog *identity.Catalog,
	corpusMaxAge time.Duration,
	newMiner func() (*miner.Miner, error),
	newCollector func(headless bool) *collector.Collector,
) *Server {
	return &Server{
		catalog:      catalog,
		corpusMaxAge: corpusMaxAge,
		newMiner:     newMiner,
		newCollector: newCollector,
	}
}

// Serve starts the MCP stdio server with all tools registered.
func (s *Server) Serve() error {
	return server.ServeStdio(s.build())
}

func (s *Server) build() *server.MCPServer {
	srv := server.NewMCPServer(
		"maskedminers",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools(srv)
	return srv
}
