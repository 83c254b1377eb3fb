package schema

import (
	"time"

	"github.com/google/uuid"
)

// IndicatorResult is one measured indicator inside a dimension report.
type IndicatorResult struct {
	// Name of the indicator
	Name string `json:"name"`

	// Value measured for this indicator
	Value float64 `json:"value"`

	// Baseline for comparison, nil when no baseline is established
	Baseline *float64 `json:"baseline"`

	// Unit of the value, e.g. "proportion" or "slope_per_week"
	Unit string `json:"unit"`

	// Confidence in [0,1], nil when not estimated
	Confidence *float64 `json:"confidence"`

	// Interpretation is a human-readable reading of the value
	Interpretation string `json:"interpretation"`
}

// DimensionReport is the output of one dimension analyzer.
type DimensionReport struct {
	// Dimension code this report belongs to
	Dimension Dimension `json:"dimension"`

	// Version of the analyzer that produced it
	Version string `json:"version"`

	// Indicators keyed by indicator name
	Indicators map[string]IndicatorResult `json:"indicators"`

	// Summary is prose describing what was measured
	Summary string `json:"summary"`

	// MethodologyNotes describes how values were computed
	MethodologyNotes string `json:"methodology_notes"`

	// Citations list the research grounding the measurement
	Citations []string `json:"citations"`
}

// Indicator returns the named indicator and whether it exists.
func (d *DimensionReport) Indicator(name string) (IndicatorResult, bool) {
	ind, ok := d.Indicators[name]
	return ind, ok
}

// Score is the mean of all indicator values, used for cross-dimensional
// analysis. Returns 0.0 for a report with no indicators.
func (d *DimensionReport) Score() float64 {
	if len(d.Indicators) == 0 {
		return 0.0
	}
	total := 0.0
	for _, ind := range d.Indicators {
		total += ind.Value
	}
	return total / float64(len(d.Indicators))
}

// EntrainReport is a full assessment combining dimension reports with
// optional cross-dimensional analysis.
type EntrainReport struct {
	// ReportID uniquely identifies this assessment run
	ReportID string `json:"report_id"`

	// Version of the engine that generated the report
	Version string `json:"entrain_version"`

	// GeneratedAt is the report creation time
	GeneratedAt time.Time `json:"generated_at"`

	// InputSummary describes what was analyzed
	InputSummary map[string]any `json:"input_summary"`

	// Dimensions keyed by dimension code
	Dimensions map[Dimension]*DimensionReport `json:"dimensions"`

	// CrossDimensional holds risk, patterns and correlations, nil
	// when cross-dimensional analysis was not requested
	CrossDimensional *CrossDimensionalReport `json:"cross_dimensional,omitempty"`

	// Methodology describes the overall analysis approach
	Methodology string `json:"methodology"`
}

// NewEntrainReport creates a report stamped with a fresh UUID, the
// current time and the engine version.
func NewEntrainReport(inputSummary map[string]any, methodology string) *EntrainReport {
	return &EntrainReport{
		ReportID:     uuid.NewString(),
		Version:      Version,
		GeneratedAt:  time.Now(),
		InputSummary: inputSummary,
		Dimensions:   map[Dimension]*DimensionReport{},
		Methodology:  methodology,
	}
}

// SortedDimensions returns the report's dimension codes in canonical
// order, for deterministic rendering.
func (r *EntrainReport) SortedDimensions() []Dimension {
	out := make([]Dimension, 0, len(r.Dimensions))
	for _, dim := range AllDimensions {
		if _, ok := r.Dimensions[dim]; ok {
			out = append(out, dim)
		}
	}
	return out
}

// DimensionScores returns the mean indicator value per dimension.
func (r *EntrainReport) DimensionScores() map[Dimension]float64 {
	scores := make(map[Dimension]float64, len(r.Dimensions))
	for dim, rep := range r.Dimensions {
		if rep == nil || len(rep.Indicators) == 0 {
			continue
		}
		scores[dim] = rep.Score()
	}
	return scores
}

// Float64Ptr returns a pointer to v, for optional numeric fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
