package dimension

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrain-io/entrain/schema"
)

// TestDependencyAnalyzeConversation tests the static DF indicators on a
// conversation mixing one emotional and one functional user message.
func TestDependencyAnalyzeConversation(t *testing.T) {
	analyzer := NewDependencyAnalyzer()
	conv := schema.Conversation{
		ID: "df1",
		Events: []schema.InteractionEvent{
			{ID: "u1", Timestamp: baseTime, Role: schema.UserRole, TextContent: "I feel lonely and sad today"},
			{ID: "a1", Timestamp: baseTime.Add(10 * time.Minute), Role: schema.AssistantRole, TextContent: "I'm here to listen."},
			{ID: "u2", Timestamp: baseTime.Add(20 * time.Minute), Role: schema.UserRole, TextContent: "Help me write code to analyze data"},
			{ID: "a2", Timestamp: baseTime.Add(30 * time.Minute), Role: schema.AssistantRole, TextContent: "Sure."},
		},
	}

	report, err := analyzer.AnalyzeConversation(&conv)

	require.NoError(t, err)
	assert.Equal(t, schema.DF, report.Dimension)

	// First message fully emotional, second fully functional.
	emotional, ok := report.Indicator("emotional_content_ratio")
	require.True(t, ok)
	assert.InDelta(t, 0.5, emotional.Value, 1e-9)
	require.NotNil(t, emotional.Baseline)
	assert.InDelta(t, 0.20, *emotional.Baseline, 1e-9)

	// 2 pronouns / 13 words, mean emotional 0.5, mean length 6.5 words.
	disclosure, ok := report.Indicator("self_disclosure_depth")
	require.True(t, ok)
	assert.InDelta(t, 0.2657, disclosure.Value, 1e-3)

	duration, ok := report.Indicator("session_duration")
	require.True(t, ok)
	assert.InDelta(t, 30.0, duration.Value, 1e-9)
	assert.Equal(t, "minutes", duration.Unit)

	assert.Contains(t, report.Summary, "single conversation")
	assert.Contains(t, report.Summary, "longitudinal dimension")
}

// TestDependencyAnalyzeConversationErrors tests validation paths.
func TestDependencyAnalyzeConversationErrors(t *testing.T) {
	analyzer := NewDependencyAnalyzer()

	assistantOnly := schema.Conversation{
		ID: "assistantonly",
		Events: []schema.InteractionEvent{
			{ID: "e1", Timestamp: baseTime, Role: schema.AssistantRole, TextContent: "Hello"},
		},
	}
	_, err := analyzer.AnalyzeConversation(&assistantOnly)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user events")
}

// TestSelfDisclosureDepth tests the weighted composite directly.
func TestSelfDisclosureDepth(t *testing.T) {
	users := []schema.InteractionEvent{
		{ID: "u1", Role: schema.UserRole, TextContent: "I feel lonely and sad today"},
		{ID: "u2", Role: schema.UserRole, TextContent: "Help me write code to analyze data"},
	}

	// pronounRatio 2/13, avgEmotional 0.5, normalizedLength 0.065.
	want := (2.0/13.0)*0.3 + 0.5*0.4 + 0.065*0.3
	assert.InDelta(t, want, selfDisclosureDepth(users), 1e-9)
	assert.Zero(t, selfDisclosureDepth(nil))
}

// TestLonelinessTimeScore tests the night plus late-evening share.
func TestLonelinessTimeScore(t *testing.T) {
	dist := schema.Distribution{
		Bins:        []string{"Night (00-06)", "Morning (06-12)", "Afternoon (12-18)", "Evening (18-24)"},
		Counts:      []int{1, 1, 1, 1},
		Proportions: []float64{0.25, 0.25, 0.25, 0.25},
	}
	assert.InDelta(t, 0.5, lonelinessTimeScore(dist), 1e-9)
	assert.Zero(t, lonelinessTimeScore(schema.Distribution{}))
}

// dfConvAt builds a two-event conversation with a given user text, start
// time and duration.
func dfConvAt(id string, start time.Time, length time.Duration, userText string) schema.Conversation {
	return schema.Conversation{
		ID: id,
		Events: []schema.InteractionEvent{
			{ID: id + "_u", Timestamp: start, Role: schema.UserRole, TextContent: userText},
			{ID: id + "_a", Timestamp: start.Add(length), Role: schema.AssistantRole, TextContent: "I see."},
		},
	}
}

// TestDependencyAnalyzeCorpus tests the five longitudinal DF indicators
// over three conversations drifting toward emotional nighttime use.
func TestDependencyAnalyzeCorpus(t *testing.T) {
	analyzer := NewDependencyAnalyzer()
	day1 := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 2, 2, 0, 0, 0, time.UTC)
	day3 := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	corpus := schema.NewCorpus([]schema.Conversation{
		dfConvAt("c1", day1, 10*time.Minute, "help me write code"),
		dfConvAt("c2", day2, 20*time.Minute, "i feel sad"),
		dfConvAt("c3", day3, 30*time.Minute, "i feel lonely and alone"),
	}, "user1")

	report, err := analyzer.AnalyzeCorpus(corpus)

	require.NoError(t, err)
	assert.Equal(t, schema.DF, report.Dimension)
	require.Len(t, report.Indicators, 5)

	// All three conversations fall into a single weekly bin, too few
	// points for a regression.
	freq, ok := report.Indicator("interaction_frequency_trend")
	require.True(t, ok)
	assert.Zero(t, freq.Value)
	assert.Contains(t, freq.Interpretation, string(schema.InsufficientDataTrend))
	assert.Equal(t, "slope_per_week", freq.Unit)

	// Durations 10, 20, 30 minutes fit a slope of 10 per conversation.
	durTrend, ok := report.Indicator("session_duration_trend")
	require.True(t, ok)
	assert.InDelta(t, 10.0, durTrend.Value, 1e-9)
	assert.Contains(t, durTrend.Interpretation, "final duration: 30.0 min")

	// Emotional ratios 0, 1, 1 end at fully emotional use.
	emotional, ok := report.Indicator("emotional_content_ratio")
	require.True(t, ok)
	assert.InDelta(t, 1.0, emotional.Value, 1e-9)
	assert.Contains(t, emotional.Interpretation, "Final ratio: 100.0%")
	assert.Contains(t, emotional.Interpretation, string(schema.IncreasingTrend))

	// Two of three user events fall into night or late-evening bins.
	timeOfDay, ok := report.Indicator("time_of_day_distribution")
	require.True(t, ok)
	assert.InDelta(t, 2.0/3.0, timeOfDay.Value, 1e-9)

	disclosure, ok := report.Indicator("self_disclosure_depth_trajectory")
	require.True(t, ok)
	assert.Equal(t, "slope_per_conversation", disclosure.Unit)

	assert.Contains(t, report.Summary, "five longitudinal indicators")
	assert.Len(t, report.Citations, 4)
}

// TestDependencyAnalyzeCorpusEmpty tests the empty corpus error.
func TestDependencyAnalyzeCorpusEmpty(t *testing.T) {
	analyzer := NewDependencyAnalyzer()
	_, err := analyzer.AnalyzeCorpus(schema.NewCorpus(nil, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot analyze empty corpus")
}
