package outwriter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrain-io/entrain/schema"
)

// newTestTrend builds a three-conversation score series for the chart tests.
func newTestTrend() []schema.ConversationTrendPoint {
	return []schema.ConversationTrendPoint{
		{Index: 0, ConversationID: "conv-1", Scores: map[schema.Dimension]float64{schema.SR: 0.21, schema.AE: 0.10}},
		{Index: 1, ConversationID: "conv-2", Scores: map[schema.Dimension]float64{schema.SR: 0.34, schema.AE: 0.18}},
		{Index: 2, ConversationID: "conv-3", Scores: map[schema.Dimension]float64{schema.SR: 0.55, schema.AE: 0.29}},
	}
}

func TestWriteHTMLReport(t *testing.T) {
	out := &schema.AssessmentOutput{
		Report: newTestReport(t),
		Trend:  newTestTrend(),
	}

	var buf bytes.Buffer
	err := writeHTMLReport(&buf, out)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Dimension Scores")
	assert.Contains(t, html, "Dimension Trend")
}

func TestWriteHTMLReportWithoutTrend(t *testing.T) {
	out := &schema.AssessmentOutput{Report: newTestReport(t)}

	var buf bytes.Buffer
	err := writeHTMLReport(&buf, out)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "Dimension Scores")
	assert.NotContains(t, html, "Dimension Trend")
}

func TestBuildScoreBarChart(t *testing.T) {
	bar := buildScoreBarChart(newTestReport(t))
	require.NotNil(t, bar)

	var buf bytes.Buffer
	require.NoError(t, bar.Render(&buf))

	html := buf.String()
	assert.Contains(t, html, "Dimension Scores")
	assert.Contains(t, html, "Overall risk MODERATE (42%)")
	assert.Contains(t, html, `"SR"`)
	assert.Contains(t, html, `"AE"`)
}

func TestBuildTrendLineChart(t *testing.T) {
	line := buildTrendLineChart(newTestTrend())
	require.NotNil(t, line)

	var buf bytes.Buffer
	require.NoError(t, line.Render(&buf))

	html := buf.String()
	assert.Contains(t, html, "Dimension Trend")
	assert.Contains(t, html, `"SR"`)
	assert.Contains(t, html, `"AE"`)
}

func TestBuildTrendLineChartTooFewPoints(t *testing.T) {
	assert.Nil(t, buildTrendLineChart(nil))
	assert.Nil(t, buildTrendLineChart(newTestTrend()[:1]))
}
