package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultCorrelationThreshold is the minimum |r| for a correlation to
// count as strong.
const DefaultCorrelationThreshold = 0.7

// CorrelationMatrix holds pairwise Pearson correlations between
// dimension scores across multiple reports.
type CorrelationMatrix struct {
	// Dimensions included in the matrix
	Dimensions []Dimension `json:"dimensions"`

	// Correlations keyed by both orderings of each pair
	Correlations map[Dimension]map[Dimension]float64 `json:"correlations"`

	// InsufficientData is true when fewer than 2 samples were available
	InsufficientData bool `json:"insufficient_data"`
}

// Correlation returns the coefficient for a pair of dimensions and
// whether it was computed.
func (m *CorrelationMatrix) Correlation(first, second Dimension) (float64, bool) {
	if row, ok := m.Correlations[first]; ok {
		if r, ok := row[second]; ok {
			return r, true
		}
	}
	if row, ok := m.Correlations[second]; ok {
		if r, ok := row[first]; ok {
			return r, true
		}
	}
	return 0.0, false
}

// StrongCorrelation is one dimension pair whose |r| meets the threshold.
type StrongCorrelation struct {
	First       Dimension `json:"first"`
	Second      Dimension `json:"second"`
	Coefficient float64   `json:"coefficient"`
}

// StrongCorrelations returns all distinct pairs with |r| at or above
// the threshold, strongest first.
func (m *CorrelationMatrix) StrongCorrelations(threshold float64) []StrongCorrelation {
	var out []StrongCorrelation
	for i, first := range m.Dimensions {
		for _, second := range m.Dimensions[i+1:] {
			r, ok := m.Correlation(first, second)
			if !ok || math.Abs(r) < threshold {
				continue
			}
			out = append(out, StrongCorrelation{First: first, Second: second, Coefficient: r})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Coefficient) > math.Abs(out[j].Coefficient)
	})
	return out
}

// RiskScore is the weighted composite risk across dimensions.
type RiskScore struct {
	// Score in [0,1]
	Score float64 `json:"score"`

	// Level classifies the score into a risk band
	Level RiskLevel `json:"level"`

	// Interpretation is prose explaining the score
	Interpretation string `json:"interpretation"`

	// TopContributors lists up to 3 dimensions driving the score
	TopContributors []Dimension `json:"top_contributors"`
}

// Pattern is one detected cross-dimensional interaction pattern.
type Pattern struct {
	// PatternID is a stable identifier, e.g. "high_sr_high_ae"
	PatternID string `json:"pattern_id"`

	// Description of what the pattern indicates
	Description string `json:"description"`

	// Severity of the detected pattern
	Severity RiskLevel `json:"severity"`

	// DimensionsInvolved lists the contributing dimensions
	DimensionsInvolved []Dimension `json:"dimensions_involved"`

	// Recommendation suggests a concrete mitigation
	Recommendation string `json:"recommendation"`
}

// CrossDimensionalReport combines risk scoring, pattern detection and
// correlation analysis over a set of dimension reports.
type CrossDimensionalReport struct {
	// RiskScore is the composite weighted risk
	RiskScore RiskScore `json:"risk_score"`

	// Patterns detected across dimensions
	Patterns []Pattern `json:"patterns"`

	// CorrelationMatrix is nil for single-report analysis
	CorrelationMatrix *CorrelationMatrix `json:"correlation_matrix,omitempty"`

	// Summary is a short prose roll-up
	Summary string `json:"summary"`
}

// NewCrossDimensionalReport assembles a report and its summary line.
func NewCrossDimensionalReport(risk RiskScore, patterns []Pattern, matrix *CorrelationMatrix) *CrossDimensionalReport {
	parts := []string{
		fmt.Sprintf("Overall Risk: %s (%.0f%%)", risk.Level, risk.Score*100),
	}
	concerning := 0
	for _, p := range patterns {
		if p.Severity == HighRisk || p.Severity == SevereRisk {
			concerning++
		}
	}
	if concerning > 0 {
		parts = append(parts, fmt.Sprintf("%d concerning pattern(s) detected", concerning))
	}
	if len(risk.TopContributors) > 0 {
		codes := make([]string, len(risk.TopContributors))
		for i, dim := range risk.TopContributors {
			codes[i] = string(dim)
		}
		parts = append(parts, fmt.Sprintf("Primary concerns: %s", strings.Join(codes, ", ")))
	}
	return &CrossDimensionalReport{
		RiskScore:         risk,
		Patterns:          patterns,
		CorrelationMatrix: matrix,
		Summary:           strings.Join(parts, ". ") + ".",
	}
}
