package feature

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/entrain-io/entrain/schema"
	"gonum.org/v1/gonum/stat"
)

// FrequencyWindow selects the bin size for interaction frequency.
type FrequencyWindow string

// All frequency windows supported.
const (
	DayWindow   FrequencyWindow = "day"
	WeekWindow  FrequencyWindow = "week"
	MonthWindow FrequencyWindow = "month"
)

// windowDelta returns the bin duration for a frequency window.
func windowDelta(window FrequencyWindow) (time.Duration, error) {
	switch window {
	case DayWindow:
		return 24 * time.Hour, nil
	case WeekWindow:
		return 7 * 24 * time.Hour, nil
	case MonthWindow:
		return 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown frequency window: %s", window)
	}
}

// InteractionFrequency bins conversation start times into fixed windows
// and returns the count per window. The series is empty for a corpus
// without events.
func InteractionFrequency(corpus *schema.Corpus, window FrequencyWindow) (schema.TimeSeries, error) {
	unit := fmt.Sprintf("conversations per %s", window)
	delta, err := windowDelta(window)
	if err != nil {
		return schema.TimeSeries{}, err
	}

	var convTimes []time.Time
	for _, conv := range corpus.Conversations {
		if start, ok := conv.StartTime(); ok {
			convTimes = append(convTimes, start)
		}
	}
	if len(convTimes) == 0 {
		return schema.TimeSeries{Unit: unit}, nil
	}

	sort.Slice(convTimes, func(i, j int) bool { return convTimes[i].Before(convTimes[j]) })
	start := convTimes[0]
	end := convTimes[len(convTimes)-1]

	var timestamps []time.Time
	var values []float64
	for current := start; !current.After(end); current = current.Add(delta) {
		windowEnd := current.Add(delta)
		count := 0
		for _, t := range convTimes {
			if !t.Before(current) && t.Before(windowEnd) {
				count++
			}
		}
		timestamps = append(timestamps, current)
		values = append(values, float64(count))
	}

	return schema.TimeSeries{Timestamps: timestamps, Values: values, Unit: unit}, nil
}

// SessionDurationTrend returns per-conversation durations in minutes,
// keyed by conversation start time. Conversations with fewer than two
// events are skipped.
func SessionDurationTrend(corpus *schema.Corpus) schema.TimeSeries {
	var timestamps []time.Time
	var durations []float64

	for _, conv := range corpus.Conversations {
		dur, ok := conv.Duration()
		if !ok {
			continue
		}
		start, _ := conv.StartTime()
		timestamps = append(timestamps, start)
		durations = append(durations, dur.Minutes())
	}

	return schema.TimeSeries{Timestamps: timestamps, Values: durations, Unit: "minutes"}
}

// TimeOfDayDistribution bins user events into four time-of-day buckets.
// Assistant events are not counted.
func TimeOfDayDistribution(corpus *schema.Corpus) schema.Distribution {
	bins := []string{"Night (00-06)", "Morning (06-12)", "Afternoon (12-18)", "Evening (18-24)"}
	counts := make([]int, 4)

	for _, conv := range corpus.Conversations {
		for _, event := range conv.Events {
			if event.Role != schema.UserRole {
				continue
			}
			hour := event.Timestamp.Hour()
			switch {
			case hour < 6:
				counts[0]++
			case hour < 12:
				counts[1]++
			case hour < 18:
				counts[2]++
			default:
				counts[3]++
			}
		}
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	proportions := make([]float64, 4)
	if total > 0 {
		for i, c := range counts {
			proportions[i] = float64(c) / float64(total)
		}
	}

	return schema.Distribution{Bins: bins, Counts: counts, Proportions: proportions}
}

// IndicatorTrajectory fits a least-squares line over the values and
// classifies the trend. Fewer than 3 points yields insufficient_data
// with a nil slope. The trend is stable when the slope magnitude is
// under 10% of the mean (or under 0.01 when the mean is zero).
func IndicatorTrajectory(values []float64, timestamps []time.Time) schema.Trajectory {
	if len(values) < 3 {
		return schema.Trajectory{
			Timestamps: timestamps,
			Values:     values,
			Trend:      schema.InsufficientDataTrend,
		}
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, values, nil, false)

	mean := stat.Mean(values, nil)
	threshold := 0.01
	if mean != 0 {
		threshold = math.Abs(mean) * 0.1
	}

	var trend schema.Trend
	switch {
	case math.Abs(slope) < threshold:
		trend = schema.StableTrend
	case slope > 0:
		trend = schema.IncreasingTrend
	default:
		trend = schema.DecreasingTrend
	}

	return schema.Trajectory{
		Timestamps: timestamps,
		Values:     values,
		Trend:      trend,
		Slope:      schema.Float64Ptr(slope),
	}
}

// EmotionalFunctionalTrajectory tracks the mean emotional content ratio
// of user messages per conversation over the corpus timeline.
func EmotionalFunctionalTrajectory(corpus *schema.Corpus) schema.Trajectory {
	var timestamps []time.Time
	var ratios []float64

	for _, conv := range corpus.Conversations {
		userEvents := conv.UserEvents()
		if len(userEvents) == 0 {
			continue
		}

		var convRatios []float64
		for _, event := range userEvents {
			if event.HasText() {
				convRatios = append(convRatios, EmotionalContentRatio(event.TextContent))
			}
		}
		if len(convRatios) == 0 {
			continue
		}

		timestamps = append(timestamps, userEvents[0].Timestamp)
		ratios = append(ratios, stat.Mean(convRatios, nil))
	}

	return IndicatorTrajectory(ratios, timestamps)
}
