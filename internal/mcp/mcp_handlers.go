package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrain-io/entrain/core"
	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/internal/outwriter"
	"github.com/entrain-io/entrain/internal/parse"
	"github.com/entrain-io/entrain/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleAnalyzeCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("input_path", ""); p != "" {
		cfg.InputPath = p
	}
	if s := request.GetString("source", ""); s != "" {
		cfg.Source = schema.SourceFormat(s)
	}
	if sc := request.GetString("scope", ""); sc != "" {
		cfg.Scope = schema.AnalysisScope(sc)
	}
	cfg.CrossDimensional = request.GetBool("cross_dimensional", cfg.CrossDimensional)

	if err := contract.RevalidateAssessment(cfg, request.GetString("dimensions", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid assessment parameters: %v", err)), nil
	}

	output, _, err := core.GetAssessmentResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListDimensions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := parse.NewRegistry().SourceNames()
	platforms := make([]string, len(names))
	for i, name := range names {
		platforms[i] = string(name)
	}

	model := outwriter.BuildDimensionRenderModel(h.baseCfg.Weights, platforms)
	jsonData, _ := json.MarshalIndent(model, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAssessmentHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.HistoryLimit = l
	}

	runs, err := core.GetHistoryRuns(cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history lookup failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(runs, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
