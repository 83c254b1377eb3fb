package outwriter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
)

func TestNewOutWriter(t *testing.T) {
	ow := NewOutWriter()
	assert.NotNil(t, ow)
}

func TestGetMaxTableTextWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		expected int
	}{
		{
			name:     "narrow terminal clamps to minimum",
			width:    80,
			expected: 15,
		},
		{
			name:     "wide terminal leaves room for text",
			width:    120,
			expected: 40,
		},
		{
			name:     "very wide terminal clamps to maximum",
			width:    200,
			expected: 70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			assert.Equal(t, tt.expected, GetMaxTableTextWidth(cfg))
		})
	}
}

func TestOutWriterWriteReport(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "report.json")
	cfg := &contract.Config{
		Output:     schema.JSONOut,
		OutputFile: tmpFile,
	}

	ow := NewOutWriter()
	out := &schema.AssessmentOutput{Report: newTestReport(t)}
	err := ow.WriteReport(out, cfg, 250*time.Millisecond)
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, schema.Version, decoded["entrain_version"])
	assert.Contains(t, decoded, "dimensions")
}

func TestOutWriterWriteHistory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "history.json")
	cfg := &contract.Config{
		Output:     schema.JSONOut,
		OutputFile: tmpFile,
	}

	ow := NewOutWriter()
	err := ow.WriteHistory(newTestRuns(), cfg)
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Len(t, decoded, 2)
}

func TestOutWriterWriteRunDetail(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "run.txt")
	cfg := &contract.Config{
		Output:     schema.TableOut,
		OutputFile: tmpFile,
	}

	runs := newTestRuns()
	ow := NewOutWriter()
	err := ow.WriteRunDetail(&runs[0], cfg)
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Run UUID: "+runs[0].RunUUID)
}

func TestOutWriterWriteDimensions(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "dimensions.txt")
	cfg := &contract.Config{
		Output:     schema.TableOut,
		OutputFile: tmpFile,
	}

	ow := NewOutWriter()
	err := ow.WriteDimensions(nil, []string{"chatgpt", "claude"}, cfg)
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Entrain Measurement Dimensions")
	assert.Contains(t, string(content), "Supported platforms: chatgpt, claude")
}
