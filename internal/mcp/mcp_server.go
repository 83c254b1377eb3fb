// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Entrain MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Entrain Assessment Server",
		schema.Version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: analyze_corpus ---
	s.AddTool(mcp.NewTool("analyze_corpus",
		mcp.WithDescription("Analyze a conversation export for entrainment and dependency signals across the measurement dimensions."),
		mcp.WithString("input_path", mcp.Description("Path to the conversation export file (JSON, JSONL, CSV or ZIP)."), mcp.Required()),
		mcp.WithString("source", mcp.Description("Export platform. Defaults to 'auto' detection."), mcp.Enum("auto", "chatgpt", "claude", "characterai", "generic")),
		mcp.WithString("scope", mcp.Description("Analysis scope. Defaults to the server's configured scope."), mcp.Enum("conversation", "corpus")),
		mcp.WithString("dimensions", mcp.Description("Comma-separated dimension codes (SR, LC, AE, RCD, DF, PE) or 'all'.")),
		mcp.WithBoolean("cross_dimensional", mcp.Description("Include correlation, risk and pattern analysis across dimensions.")),
	), h.handleAnalyzeCorpus)

	// --- 2. Tool: list_dimensions ---
	s.AddTool(mcp.NewTool("list_dimensions",
		mcp.WithDescription("List the measurement dimensions with their indicators, modalities and risk weights."),
	), h.handleListDimensions)

	// --- 3. Tool: assessment_history ---
	s.AddTool(mcp.NewTool("assessment_history",
		mcp.WithDescription("List recent assessment runs recorded in the assessment store."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to return (newest first).")),
	), h.handleAssessmentHistory)

	return s
}

// StartMCPServer starts the Entrain MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
