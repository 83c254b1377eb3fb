package feature

import (
	"testing"
	"time"

	"github.com/entrain-io/entrain/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// convAt builds a two-event conversation starting at the given offset.
func convAt(id string, offset time.Duration, length time.Duration) schema.Conversation {
	return schema.Conversation{
		ID: id,
		Events: []schema.InteractionEvent{
			{ID: id + "_u", Timestamp: baseTime.Add(offset), Role: schema.UserRole, TextContent: "Hello"},
			{ID: id + "_a", Timestamp: baseTime.Add(offset + length), Role: schema.AssistantRole, TextContent: "Hi"},
		},
	}
}

// TestInteractionFrequency tests conversation binning into weekly windows.
func TestInteractionFrequency(t *testing.T) {
	corpus := schema.NewCorpus([]schema.Conversation{
		convAt("c1", 0, 10*time.Minute),
		convAt("c2", 24*time.Hour, 10*time.Minute),
		convAt("c3", 8*24*time.Hour, 10*time.Minute),
	}, "")

	series, err := InteractionFrequency(corpus, WeekWindow)

	require.NoError(t, err)
	assert.Equal(t, "conversations per week", series.Unit)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, []float64{2, 1}, series.Values)
}

// TestInteractionFrequencyEmpty tests the empty corpus path.
func TestInteractionFrequencyEmpty(t *testing.T) {
	series, err := InteractionFrequency(schema.NewCorpus(nil, ""), DayWindow)

	require.NoError(t, err)
	assert.Zero(t, series.Len())
	assert.Equal(t, "conversations per day", series.Unit)
}

// TestInteractionFrequencyUnknownWindow tests the invalid window error.
func TestInteractionFrequencyUnknownWindow(t *testing.T) {
	_, err := InteractionFrequency(schema.NewCorpus(nil, ""), FrequencyWindow("fortnight"))
	assert.Error(t, err)
}

// TestSessionDurationTrend tests per-conversation duration extraction.
func TestSessionDurationTrend(t *testing.T) {
	single := schema.Conversation{
		ID: "single",
		Events: []schema.InteractionEvent{
			{ID: "e1", Timestamp: baseTime, Role: schema.UserRole, TextContent: "Hi"},
		},
	}
	corpus := schema.NewCorpus([]schema.Conversation{
		convAt("c1", 0, 30*time.Minute),
		single,
		convAt("c2", 24*time.Hour, 45*time.Minute),
	}, "")

	series := SessionDurationTrend(corpus)

	assert.Equal(t, "minutes", series.Unit)
	require.Equal(t, 2, series.Len())
	assert.InDelta(t, 30.0, series.Values[0], 1e-9)
	assert.InDelta(t, 45.0, series.Values[1], 1e-9)
}

// TestTimeOfDayDistribution tests user event binning by hour.
func TestTimeOfDayDistribution(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []schema.InteractionEvent{
		{ID: "e1", Timestamp: day.Add(2 * time.Hour), Role: schema.UserRole},
		{ID: "e2", Timestamp: day.Add(8 * time.Hour), Role: schema.UserRole},
		{ID: "e3", Timestamp: day.Add(14 * time.Hour), Role: schema.UserRole},
		{ID: "e4", Timestamp: day.Add(20 * time.Hour), Role: schema.UserRole},
		{ID: "e5", Timestamp: day.Add(21 * time.Hour), Role: schema.AssistantRole},
	}
	corpus := schema.NewCorpus([]schema.Conversation{{ID: "c1", Events: events}}, "")

	dist := TimeOfDayDistribution(corpus)

	assert.Equal(t, []int{1, 1, 1, 1}, dist.Counts)
	for _, p := range dist.Proportions {
		assert.InDelta(t, 0.25, p, 1e-9)
	}
}

// TestTimeOfDayDistributionEmpty tests zero proportions without events.
func TestTimeOfDayDistributionEmpty(t *testing.T) {
	dist := TimeOfDayDistribution(schema.NewCorpus(nil, ""))

	assert.Equal(t, []int{0, 0, 0, 0}, dist.Counts)
	assert.Equal(t, []float64{0, 0, 0, 0}, dist.Proportions)
}

// TestIndicatorTrajectory tests trend classification from fitted slopes.
func TestIndicatorTrajectory(t *testing.T) {
	stamps := func(n int) []time.Time {
		out := make([]time.Time, n)
		for i := range out {
			out[i] = baseTime.Add(time.Duration(i) * 24 * time.Hour)
		}
		return out
	}

	tests := []struct {
		name     string
		values   []float64
		expected schema.Trend
		slope    *float64
	}{
		{"Too Few Points", []float64{1, 2}, schema.InsufficientDataTrend, nil},
		{"Increasing", []float64{1, 2, 3, 4, 5}, schema.IncreasingTrend, schema.Float64Ptr(1.0)},
		{"Decreasing", []float64{5, 4, 3, 2, 1}, schema.DecreasingTrend, schema.Float64Ptr(-1.0)},
		{"Flat", []float64{2, 2, 2}, schema.StableTrend, schema.Float64Ptr(0.0)},
		{"Small Slope Is Stable", []float64{1.0, 1.02, 1.01}, schema.StableTrend, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			traj := IndicatorTrajectory(tt.values, stamps(len(tt.values)))
			assert.Equal(t, tt.expected, traj.Trend)
			if tt.slope != nil {
				require.NotNil(t, traj.Slope)
				assert.InDelta(t, *tt.slope, *traj.Slope, 1e-9)
			}
			if tt.expected == schema.InsufficientDataTrend {
				assert.Nil(t, traj.Slope)
			}
		})
	}
}

// TestEmotionalFunctionalTrajectory tests the per-conversation ratio trend.
func TestEmotionalFunctionalTrajectory(t *testing.T) {
	mkConv := func(id string, offset time.Duration, text string) schema.Conversation {
		return schema.Conversation{
			ID: id,
			Events: []schema.InteractionEvent{
				{ID: id + "_u", Timestamp: baseTime.Add(offset), Role: schema.UserRole, TextContent: text},
			},
		}
	}
	corpus := schema.NewCorpus([]schema.Conversation{
		mkConv("c1", 0, "Please write code to analyze this"),
		mkConv("c2", 24*time.Hour, "I feel tired but please write code"),
		mkConv("c3", 48*time.Hour, "I feel sad and lonely"),
	}, "")

	traj := EmotionalFunctionalTrajectory(corpus)

	require.Len(t, traj.Values, 3)
	assert.Equal(t, schema.IncreasingTrend, traj.Trend)
	assert.InDelta(t, 0.0, traj.Values[0], 1e-9)
	assert.InDelta(t, 0.5, traj.Values[1], 1e-9)
	assert.InDelta(t, 1.0, traj.Values[2], 1e-9)
}
