package schema

import "time"

// TimeSeries is a sequence of measurements over time.
type TimeSeries struct {
	Timestamps []time.Time `json:"timestamps"`
	Values     []float64   `json:"values"`

	// Unit of the values, e.g. "conversations per week"
	Unit string `json:"unit"`
}

// Len returns the number of points in the series.
func (s *TimeSeries) Len() int {
	return len(s.Values)
}

// Distribution is a binned count with proportions per bin.
type Distribution struct {
	Bins        []string  `json:"bins"`
	Counts      []int     `json:"counts"`
	Proportions []float64 `json:"proportions"`
}

// Trajectory is a time series with a fitted trend.
type Trajectory struct {
	Timestamps []time.Time `json:"timestamps"`
	Values     []float64   `json:"values"`

	// Trend direction from the fitted slope
	Trend Trend `json:"trend"`

	// Slope of the least-squares fit, nil when under 3 points
	Slope *float64 `json:"slope"`
}

// SlopeOrZero returns the fitted slope, or 0.0 when none was computed.
func (t *Trajectory) SlopeOrZero() float64 {
	if t.Slope == nil {
		return 0.0
	}
	return *t.Slope
}

// LastValue returns the final value in the trajectory, or fallback when
// the trajectory is empty.
func (t *Trajectory) LastValue(fallback float64) float64 {
	if len(t.Values) == 0 {
		return fallback
	}
	return t.Values[len(t.Values)-1]
}

// PatternMatch is one lexicon or regex hit inside a text.
type PatternMatch struct {
	// Pattern that matched
	Pattern string `json:"pattern"`

	// Position of the match in the original text
	Position int `json:"position"`

	// Context is the surrounding text window
	Context string `json:"context"`
}
