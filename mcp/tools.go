package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dk9977/maskedminers/internal/identity"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (s *Server) registerTools(srv *server.MCPServer) {
	// fetch_page
	fetchTool := mcp.NewTool("fetch_page",
		mcp.WithDescription("Fetch a web page under a masked browser identity and return its summary"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Page URL to fetch"),
		),
		mcp.WithBoolean("links",
			mcp.Description("Include the page's outbound links (default: false)"),
		),
	)
	srv.AddTool(fetchTool, s.handleFetchPage)

	// fetch_json
	jsonTool := mcp.NewTool("fetch_json",
		mcp.WithDescription("Fetch a JSON endpoint under a masked browser identity"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("JSON endpoint URL"),
		),
	)
	srv.AddTool(jsonTool, s.handleFetchJSON)

	// draw_identity
	identityTool := mcp.NewTool("draw_identity",
		mcp.WithDescription("Draw a browser persona from the user-agent corpus (or parse a given user-agent) and show the headers it would send"),
		mcp.WithString("user_agent",
			mcp.Description("Parse this user-agent string instead of drawing from the corpus"),
		),
	)
	srv.AddTool(identityTool, s.handleDrawIdentity)

	// refresh_corpus
	refreshTool := mcp.NewTool("refresh_corpus",
		mcp.WithDescription("Refresh the user-agent corpus from its public source when stale"),
		mcp.WithBoolean("force",
			mcp.Description("Refresh even if the corpus is not stale (default: false)"),
		),
		mcp.WithBoolean("headless",
			mcp.Description("Allow a headless-browser fallback for extraction (default: false)"),
		),
	)
	srv.AddTool(refreshTool, s.handleRefreshCorpus)
}

func (s *Server) handleFetchPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageURL := request.GetString("url", "")
	if pageURL == "" {
		return mcp.NewToolResultError("url is required"), nil
	}
	withLinks := request.GetBool("links", false)

	m, err := s.newMiner()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("miner error: %v", err)), nil
	}

	page, _, err := m.FetchPage(ctx, pageURL)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch error: %v", err)), nil
	}
	if !withLinks {
		page.Links = nil
	}

	data, _ := json.MarshalIndent(page, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleFetchJSON(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	endpoint := request.GetString("url", "")
	if endpoint == "" {
		return mcp.NewToolResultError("url is required"), nil
	}

	m, err := s.newMiner()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("miner error: %v", err)), nil
	}

	var payload any
	if err := m.FetchJSON(ctx, endpoint, &payload); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch error: %v", err)), nil
	}

	data, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleDrawIdentity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rng := identity.NewRand()

	var persona *identity.Persona
	if ua := request.GetString("user_agent", ""); ua != "" {
		persona = identity.FromUserAgent(ua, rng)
	} else {
		var err error
		persona, err = identity.NewPersona(s.catalog, rng)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("draw error: %v", err)), nil
		}
	}

	headers := http.Header{}
	persona.ApplyHeaders(headers)

	out := struct {
		*identity.Persona
		Headers http.Header `json:"headers"`
	}{persona, headers}

	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleRefreshCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	force := request.GetBool("force", false)
	headless := request.GetBool("headless", false)

	c := s.newCollector(headless)
	refreshed, err := c.RefreshIfStale(ctx, s.corpusMaxAge, force)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh error: %v", err)), nil
	}

	out := map[string]any{
		"refreshed": refreshed,
		"entries":   s.catalog.Len(),
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}
