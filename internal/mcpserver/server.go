// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the documentation site to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/redirects"
	"github.com/starford/raido/internal/storage"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    index.PageIndex
	table redirects.Table
}

// New creates a new MCP server with all Raido tools registered.
func New(store storage.Provider, db index.PageIndex, table redirects.Table) *Server {
	s := &Server{store: store, db: db, table: table}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_docs",
		mcp.WithDescription("Full-text search through documentation pages."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocs)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read the raw content of a documentation page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the page (e.g. guides/intro.md)")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages or pages in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("resolve_redirect",
		mcp.WithDescription("Resolve a retired page path to its current replacement. "+
			"Retired paths follow the redirect document contract; read it via the "+
			"raido://redirect-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Retired page path to resolve")),
	), s.resolveRedirect)

	s.mcp.AddTool(mcp.NewTool("list_broken_links",
		mcp.WithDescription("List external links whose last check failed."),
	), s.listBrokenLinks)

	// Resource: redirect document contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://redirect-format", "Redirect Document Contract",
			mcp.WithResourceDescription("Canonical format of the persisted redirect table."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRedirectFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	metas, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) resolveRedirect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, ok := s.table.Resolve(path)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("no redirect for: %s", path)), nil
	}
	return mcp.NewToolResultText(target), nil
}

func (s *Server) listBrokenLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.db.BrokenChecks()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no broken links recorded"), nil
	}
	var lines []string
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s (status %d): %s", row.URL, row.Status, row.Error))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readRedirectFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://redirect-format",
			MIMEType: "text/markdown",
			Text:     RedirectFormatContract,
		},
	}, nil
}
