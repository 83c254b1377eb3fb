package mcp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/internal/iocache"
	mcp_internal "github.com/entrain-io/entrain/internal/mcp"
	"github.com/entrain-io/entrain/schema"
)

func baseConfig() *contract.Config {
	return &contract.Config{
		Source:           schema.AutoSource,
		UserID:           contract.DefaultUserID,
		Dimensions:       append([]schema.Dimension{}, schema.TextDimensions...),
		Scope:            schema.ConversationScope,
		CrossDimensional: true,
		Workers:          2,
		Weights:          schema.GetDefaultWeights(),
		RiskThresholds:   schema.GetDefaultRiskThresholds(),
		Output:           schema.TableOut,
		HistoryLimit:     contract.DefaultHistoryLimit,
	}
}

// writeExport drops a small generic JSON export into a temp dir.
func writeExport(t *testing.T) string {
	t.Helper()
	payload := `[
  {"conversation_id": "m1", "role": "user", "content": "Does the onboarding doc read clearly now?", "timestamp": "2026-02-10 09:00:00"},
  {"conversation_id": "m1", "role": "assistant", "content": "You're absolutely right to restructure it, the flow is much clearer.", "timestamp": "2026-02-10 09:01:00"},
  {"conversation_id": "m2", "role": "user", "content": "Should I merge the config change before the release?", "timestamp": "2026-02-11 09:00:00"},
  {"conversation_id": "m2", "role": "assistant", "content": "Holding it until after the release avoids surprises.", "timestamp": "2026-02-11 09:01:00"}
]`
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	return path
}

// callRequest builds a CallToolRequest with the given arguments.
func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPServerToolsRegistered(t *testing.T) {
	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(baseConfig(), mgr)

	for _, name := range []string{"analyze_corpus", "list_dimensions", "assessment_history"} {
		assert.NotNil(t, s.GetTool(name), "Tool %s should exist", name)
	}
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	// No manager needed because validation errors never reach analysis
	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(baseConfig(), mgr)

	ctx := context.Background()

	t.Run("analyze_corpus missing input_path", func(t *testing.T) {
		tool := s.GetTool("analyze_corpus")
		require.NotNil(t, tool, "Tool analyze_corpus should exist")

		res, err := tool.Handler(ctx, callRequest("analyze_corpus", map[string]any{}))
		require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "input_path is required")
	})

	t.Run("analyze_corpus invalid dimension", func(t *testing.T) {
		tool := s.GetTool("analyze_corpus")
		require.NotNil(t, tool)

		res, err := tool.Handler(ctx, callRequest("analyze_corpus", map[string]any{
			"input_path": "export.json",
			"dimensions": "XX",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid dimension")
	})

	t.Run("analyze_corpus invalid scope", func(t *testing.T) {
		tool := s.GetTool("analyze_corpus")
		require.NotNil(t, tool)

		res, err := tool.Handler(ctx, callRequest("analyze_corpus", map[string]any{
			"input_path": "export.json",
			"scope":      "weekly",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid scope")
	})
}

func TestAnalyzeCorpusTool(t *testing.T) {
	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(baseConfig(), mgr)
	tool := s.GetTool("analyze_corpus")
	require.NotNil(t, tool)

	res, err := tool.Handler(context.Background(), callRequest("analyze_corpus", map[string]any{
		"input_path": writeExport(t),
		"dimensions": "SR,AE",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := res.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, `"report"`)
	assert.Contains(t, text, "entrain_version")
	assert.Contains(t, text, `"trend"`)
}

func TestListDimensionsTool(t *testing.T) {
	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(baseConfig(), mgr)
	tool := s.GetTool("list_dimensions")
	require.NotNil(t, tool)

	res, err := tool.Handler(context.Background(), callRequest("list_dimensions", nil))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := res.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, "Sycophantic Reinforcement")
	assert.Contains(t, text, "chatgpt")
}

func TestAssessmentHistoryToolDisabled(t *testing.T) {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetAssessmentStore").Return(nil)

	s := mcp_internal.NewMCPServer(baseConfig(), mgr)
	tool := s.GetTool("assessment_history")
	require.NotNil(t, tool)

	res, err := tool.Handler(context.Background(), callRequest("assessment_history", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "assessment tracking is disabled")
}

func TestAssessmentHistoryTool(t *testing.T) {
	runs := []schema.AssessmentRunRecord{
		{
			AssessmentID:      4,
			RunUUID:           "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
			Source:            "chatgpt",
			Scope:             schema.ConversationScope,
			ConversationCount: 2,
			EventCount:        48,
		},
	}

	store := &iocache.MockAssessmentStore{}
	store.On("ListRuns", 5).Return(runs, nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetAssessmentStore").Return(store)

	s := mcp_internal.NewMCPServer(baseConfig(), mgr)
	tool := s.GetTool("assessment_history")
	require.NotNil(t, tool)

	res, err := tool.Handler(context.Background(), callRequest("assessment_history", map[string]any{
		"limit": 5.0,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := res.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	store.AssertExpectations(t)
}
