package dimension

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrain-io/entrain/core/feature"
	"github.com/entrain-io/entrain/schema"
)

var baseTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// dialogFrom builds a conversation from alternating user/assistant
// turns, one minute apart, starting at the given time.
func dialogFrom(id string, start time.Time, turns ...string) schema.Conversation {
	conv := schema.Conversation{ID: id}
	for i, text := range turns {
		role := schema.UserRole
		if i%2 == 1 {
			role = schema.AssistantRole
		}
		conv.Events = append(conv.Events, schema.InteractionEvent{
			ID:          fmt.Sprintf("%s_e%d", id, i),
			Timestamp:   start.Add(time.Duration(i) * time.Minute),
			Role:        role,
			TextContent: text,
		})
	}
	return conv
}

// dialog builds a conversation starting at baseTime.
func dialog(id string, turns ...string) schema.Conversation {
	return dialogFrom(id, baseTime, turns...)
}

// stubAnalyzer returns canned reports keyed by conversation ID, for
// exercising the aggregation path in isolation.
type stubAnalyzer struct {
	reports map[string]*schema.DimensionReport
}

func (s *stubAnalyzer) Code() schema.Dimension            { return schema.SR }
func (s *stubAnalyzer) Name() string                      { return "Stub" }
func (s *stubAnalyzer) RequiredModality() schema.Modality { return schema.TextModality }

func (s *stubAnalyzer) AnalyzeConversation(conv *schema.Conversation) (*schema.DimensionReport, error) {
	report, ok := s.reports[conv.ID]
	if !ok {
		return nil, errors.New("unexpected conversation")
	}
	return report, nil
}

func (s *stubAnalyzer) AnalyzeCorpus(corpus *schema.Corpus) (*schema.DimensionReport, error) {
	return analyzeCorpusByAggregation(s, corpus)
}

// stubReport builds a single-indicator report for aggregation tests.
func stubReport(name string, value float64) *schema.DimensionReport {
	return &schema.DimensionReport{
		Dimension: schema.SR,
		Version:   schema.Version,
		Indicators: map[string]schema.IndicatorResult{
			name: {
				Name:       name,
				Value:      value,
				Baseline:   schema.Float64Ptr(0.42),
				Unit:       "proportion",
				Confidence: schema.Float64Ptr(0.85),
			},
		},
		Citations: []string{"Cheng et al. (2025)"},
	}
}

// TestValidateConversation tests modality checks before analysis.
func TestValidateConversation(t *testing.T) {
	textOnly := dialog("text", "Hello", "Hi there")
	audioOnly := schema.Conversation{
		ID: "audio",
		Events: []schema.InteractionEvent{
			{ID: "a1", Timestamp: baseTime, Role: schema.UserRole, AudioFeatures: &schema.AudioFeatures{PitchMean: 200}},
		},
	}

	for _, tc := range []struct {
		name     string
		modality schema.Modality
		conv     *schema.Conversation
		wantErr  string
	}{
		{name: "text satisfied", modality: schema.TextModality, conv: &textOnly},
		{name: "text missing", modality: schema.TextModality, conv: &audioOnly, wantErr: "requires text content"},
		{name: "audio satisfied", modality: schema.AudioModality, conv: &audioOnly},
		{name: "audio missing", modality: schema.AudioModality, conv: &textOnly, wantErr: "requires audio features"},
		{name: "both missing audio", modality: schema.BothModality, conv: &textOnly, wantErr: "missing one or both"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := validateConversation(schema.SR, tc.modality, tc.conv)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

// TestAnalyzeCorpusByAggregationEmpty tests the empty corpus error.
func TestAnalyzeCorpusByAggregationEmpty(t *testing.T) {
	stub := &stubAnalyzer{}
	_, err := analyzeCorpusByAggregation(stub, schema.NewCorpus(nil, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot analyze empty corpus")
}

// TestAnalyzeCorpusByAggregationAllFail tests that a corpus where every
// conversation fails yields an error instead of an empty report.
func TestAnalyzeCorpusByAggregationAllFail(t *testing.T) {
	stub := &stubAnalyzer{reports: map[string]*schema.DimensionReport{}}
	corpus := schema.NewCorpus([]schema.Conversation{dialog("c1", "Hi", "Hello")}, "")

	_, err := analyzeCorpusByAggregation(stub, corpus)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conversations could be analyzed")
}

// TestAnalyzeCorpusByAggregation tests mean aggregation across reports,
// skipping conversations that fail to analyze.
func TestAnalyzeCorpusByAggregation(t *testing.T) {
	stub := &stubAnalyzer{reports: map[string]*schema.DimensionReport{
		"c1": stubReport("action_endorsement_rate", 0.2),
		"c3": stubReport("action_endorsement_rate", 0.6),
	}}
	corpus := schema.NewCorpus([]schema.Conversation{
		dialog("c1", "Hi", "Hello"),
		dialog("c2", "Hi", "Hello"), // no canned report, skipped with a warning
		dialog("c3", "Hi", "Hello"),
	}, "")

	report, err := analyzeCorpusByAggregation(stub, corpus)

	require.NoError(t, err)
	assert.Equal(t, schema.SR, report.Dimension)
	assert.Equal(t, schema.Version, report.Version)
	assert.Equal(t, "Aggregated Stub analysis across 2 conversations", report.Summary)
	assert.Equal(t, []string{"Cheng et al. (2025)"}, report.Citations)

	ind, ok := report.Indicator("action_endorsement_rate")
	require.True(t, ok)
	assert.InDelta(t, 0.4, ind.Value, 1e-9)
	assert.Equal(t, "Mean across 2 conversations: 0.400", ind.Interpretation)
	require.NotNil(t, ind.Baseline)
	assert.InDelta(t, 0.42, *ind.Baseline, 1e-9)
	assert.Equal(t, "proportion", ind.Unit)
}

// TestAggregateReportsPartialIndicator tests averaging over only the
// reports that measured an indicator.
func TestAggregateReportsPartialIndicator(t *testing.T) {
	withExtra := stubReport("action_endorsement_rate", 1.0)
	withExtra.Indicators["challenge_frequency"] = schema.IndicatorResult{
		Name: "challenge_frequency", Value: 0.3, Unit: "proportion",
	}
	reports := []*schema.DimensionReport{withExtra, stubReport("action_endorsement_rate", 0.0)}

	report := aggregateReports(&stubAnalyzer{}, reports)

	aer, ok := report.Indicator("action_endorsement_rate")
	require.True(t, ok)
	assert.InDelta(t, 0.5, aer.Value, 1e-9)

	// challenge_frequency exists only in the first report, so its mean
	// covers one value.
	challenge, ok := report.Indicator("challenge_frequency")
	require.True(t, ok)
	assert.InDelta(t, 0.3, challenge.Value, 1e-9)
}

// TestMeanHelpers tests the small slice helpers.
func TestMeanHelpers(t *testing.T) {
	assert.Zero(t, meanOf(nil))
	assert.InDelta(t, 2.0, meanOf([]float64{1, 2, 3}), 1e-9)
	assert.Zero(t, lastOf(nil))
	assert.InDelta(t, 3.0, lastOf([]float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 2.5, meanOfInts([]int{2, 3}), 1e-9)
}

// TestMatchesAny tests the shared regex helper.
func TestMatchesAny(t *testing.T) {
	res := compileAll(`\bfoo\b`, `bar+`)
	assert.True(t, matchesAny(res, "some foo here"))
	assert.True(t, matchesAny(res, "barrr"))
	assert.False(t, matchesAny(res, "nothing"))
}

// sharedExtractor is reused across analyzer tests; building it parses
// the embedded lexicons once.
var sharedExtractor = feature.NewTextExtractor()
