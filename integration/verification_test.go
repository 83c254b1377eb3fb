//go:build basic

// Package integration contains integration tests for entrain.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reportFile mirrors the report fields the verification needs.
type reportFile struct {
	Version      string         `json:"entrain_version"`
	InputSummary map[string]any `json:"input_summary"`
	Dimensions   map[string]struct {
		Indicators map[string]struct {
			Value float64 `json:"value"`
		} `json:"indicators"`
		Summary string `json:"summary"`
	} `json:"dimensions"`
}

// TestParseVerification runs entrain parse and verifies the reported counts
// against the known fixture contents.
func TestParseVerification(t *testing.T) {
	dir := t.TempDir()
	exportPath, convCount, eventCount := writeSampleExport(t, dir, 4, 6)

	output, err := runEntrainCommand(t, "parse", exportPath, "--emoji", "no")
	require.NoError(t, err)

	assert.Contains(t, output, fmt.Sprintf("Parsed %d conversation(s)", convCount))
	assert.Contains(t, output, fmt.Sprintf("Total events: %d", eventCount))
	assert.Contains(t, output, "Date range: 2026-03-02 to 2026-03-05")
}

// TestAnalyzeJSONVerification runs a full analysis with JSON output and
// verifies the report against the fixture ground truth.
func TestAnalyzeJSONVerification(t *testing.T) {
	dir := t.TempDir()
	exportPath, convCount, eventCount := writeSampleExport(t, dir, 4, 6)
	reportPath := filepath.Join(dir, "report.json")

	_, err := runEntrainCommand(t, "analyze", exportPath,
		"--cache-backend", "none",
		"--dim", "SR,AE",
		"-o", "json",
		"-f", reportPath,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var report reportFile
	require.NoError(t, json.Unmarshal(data, &report))

	assert.NotEmpty(t, report.Version, "report should carry the library version")

	// Input summary must match the fixture exactly
	assert.EqualValues(t, convCount, report.InputSummary["conversations"])
	assert.EqualValues(t, eventCount, report.InputSummary["total_events"])
	assert.Equal(t, "generic", report.InputSummary["source"])

	// Both requested dimensions must be present with populated indicators
	require.Contains(t, report.Dimensions, "SR")
	require.Contains(t, report.Dimensions, "AE")
	for code, dim := range report.Dimensions {
		assert.NotEmpty(t, dim.Indicators, "dimension %s should have indicators", code)
		assert.NotEmpty(t, dim.Summary, "dimension %s should have a summary", code)
	}
}

// TestDimensionsVerification checks that the dimensions command lists every
// measurement dimension with its weight.
func TestDimensionsVerification(t *testing.T) {
	output, err := runEntrainCommand(t, "dimensions", "--color", "no", "--emoji", "no")
	require.NoError(t, err)

	for _, code := range []string{"SR", "LC", "AE", "RCD", "DF", "PE"} {
		assert.Contains(t, output, code, "dimensions output should list %s", code)
	}
	assert.Contains(t, output, "Sycophantic Reinforcement")
}

// TestCacheRoundTrip verifies that a second identical run is served from cache
// and still produces the same report.
func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	exportPath, _, _ := writeSampleExport(t, dir, 3, 6)

	firstPath := filepath.Join(dir, "first.json")
	secondPath := filepath.Join(dir, "second.json")

	// Point the SQLite cache at a scratch file so runs are isolated
	cacheDB := filepath.Join(dir, "cache.db")
	t.Setenv("ENTRAIN_CACHE_DB_CONNECT", cacheDB)

	_, err := runEntrainCommand(t, "analyze", exportPath, "--dim", "SR", "-o", "json", "-f", firstPath)
	require.NoError(t, err)

	_, err = runEntrainCommand(t, "analyze", exportPath, "--dim", "SR", "-o", "json", "-f", secondPath)
	require.NoError(t, err)

	first, err := os.ReadFile(firstPath)
	require.NoError(t, err)
	second, err := os.ReadFile(secondPath)
	require.NoError(t, err)

	// The cached report is replayed verbatim, so report IDs must match
	var ids [2]struct {
		ReportID string `json:"report_id"`
	}
	require.NoError(t, json.Unmarshal(first, &ids[0]))
	require.NoError(t, json.Unmarshal(second, &ids[1]))
	assert.Equal(t, ids[0].ReportID, ids[1].ReportID, "second run should be served from cache")
}

// TestSourceMismatch verifies that forcing the wrong platform parser fails
// with a parse error instead of producing a bogus report.
func TestSourceMismatch(t *testing.T) {
	dir := t.TempDir()
	exportPath, _, _ := writeSampleExport(t, dir, 2, 4)

	output, err := runEntrainCommand(t, "parse", exportPath, "--source", "chatgpt")
	require.Error(t, err)
	assert.True(t, strings.Contains(output, "parse failed") || strings.Contains(output, "❌"),
		"mismatched source should surface a parse error, got: %s", output)
}
