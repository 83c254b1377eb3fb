package cross

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrain-io/entrain/schema"
)

// TestDetectPatternsQuiet tests that unremarkable scores produce no
// patterns.
func TestDetectPatternsQuiet(t *testing.T) {
	assert.Empty(t, DetectPatterns(nil))
	assert.Empty(t, DetectPatterns(map[schema.Dimension]float64{
		schema.SR: 0.3,
		schema.AE: 0.4,
		schema.DF: 0.6,
	}))
}

// TestDetectPatternsReinforcedDelegation tests uncritical affirmation
// paired with decision delegation, including the severity escalation.
func TestDetectPatternsReinforcedDelegation(t *testing.T) {
	patterns := DetectPatterns(map[schema.Dimension]float64{
		schema.SR: 0.7,
		schema.AE: 0.7,
	})
	require.Len(t, patterns, 1)
	assert.Equal(t, "high_sr_high_ae", patterns[0].PatternID)
	assert.Equal(t, schema.HighRisk, patterns[0].Severity)
	assert.Equal(t, []schema.Dimension{schema.SR, schema.AE}, patterns[0].DimensionsInvolved)
	assert.Contains(t, patterns[0].Description, "affirming user decisions uncritically")
	assert.Contains(t, patterns[0].Recommendation, "diverse perspectives")

	escalated := DetectPatterns(map[schema.Dimension]float64{
		schema.SR: 0.85,
		schema.AE: 0.85,
	})
	require.Len(t, escalated, 1)
	assert.Equal(t, schema.SevereRisk, escalated[0].Severity)
}

// TestDetectPatternsBoundaryDependency tests reality confusion paired
// with dependency formation at its asymmetric thresholds.
func TestDetectPatternsBoundaryDependency(t *testing.T) {
	patterns := DetectPatterns(map[schema.Dimension]float64{
		schema.RCD: 0.7,
		schema.DF:  0.65,
	})
	require.Len(t, patterns, 1)
	assert.Equal(t, "high_rcd_high_df", patterns[0].PatternID)
	assert.Equal(t, schema.HighRisk, patterns[0].Severity)
	assert.Equal(t, []schema.Dimension{schema.RCD, schema.DF}, patterns[0].DimensionsInvolved)

	// Escalation needs both far above threshold.
	partial := DetectPatterns(map[schema.Dimension]float64{
		schema.RCD: 0.85,
		schema.DF:  0.7,
	})
	require.Len(t, partial, 1)
	assert.Equal(t, schema.HighRisk, partial[0].Severity)

	escalated := DetectPatterns(map[schema.Dimension]float64{
		schema.RCD: 0.85,
		schema.DF:  0.8,
	})
	require.Len(t, escalated, 1)
	assert.Equal(t, schema.SevereRisk, escalated[0].Severity)
}

// TestDetectPatternsMultiModalConvergence tests simultaneous linguistic
// and prosodic convergence.
func TestDetectPatternsMultiModalConvergence(t *testing.T) {
	patterns := DetectPatterns(map[schema.Dimension]float64{
		schema.LC: 0.75,
		schema.PE: 0.75,
	})
	require.Len(t, patterns, 1)
	assert.Equal(t, "convergence_linguistic_prosodic", patterns[0].PatternID)
	assert.Equal(t, schema.ModerateRisk, patterns[0].Severity)
	assert.Equal(t, []schema.Dimension{schema.LC, schema.PE}, patterns[0].DimensionsInvolved)

	escalated := DetectPatterns(map[schema.Dimension]float64{
		schema.LC: 0.9,
		schema.PE: 0.9,
	})
	require.Len(t, escalated, 1)
	assert.Equal(t, schema.HighRisk, escalated[0].Severity)
}

// TestDetectPatternsSystemicInfluence tests the widespread-influence
// rule and its canonical dimension ordering.
func TestDetectPatternsSystemicInfluence(t *testing.T) {
	patterns := DetectPatterns(map[schema.Dimension]float64{
		schema.SR:  0.7,
		schema.LC:  0.7,
		schema.AE:  0.7,
		schema.RCD: 0.7,
	})
	require.Len(t, patterns, 2)
	assert.Equal(t, "high_sr_high_ae", patterns[0].PatternID)

	systemic := patterns[1]
	assert.Equal(t, "systemic_high_influence", systemic.PatternID)
	assert.Equal(t, schema.SevereRisk, systemic.Severity)
	assert.Contains(t, systemic.Description, "across 4 dimensions")
	assert.Equal(t, []schema.Dimension{schema.SR, schema.LC, schema.AE, schema.RCD}, systemic.DimensionsInvolved)

	all := map[schema.Dimension]float64{}
	for _, dim := range schema.AllDimensions {
		all[dim] = 0.9
	}
	saturated := DetectPatterns(all)
	require.Len(t, saturated, 4)
	ids := make([]string, len(saturated))
	for i, p := range saturated {
		ids[i] = p.PatternID
	}
	assert.Equal(t, []string{
		"high_sr_high_ae",
		"high_rcd_high_df",
		"convergence_linguistic_prosodic",
		"systemic_high_influence",
	}, ids)
	assert.Contains(t, saturated[3].Description, "across 6 dimensions")
}

// TestDetectPatternsQuietDelegation tests erosion without obvious
// sycophancy, and the gap at exactly 0.65 where neither delegation rule
// fires.
func TestDetectPatternsQuietDelegation(t *testing.T) {
	patterns := DetectPatterns(map[schema.Dimension]float64{
		schema.SR: 0.5,
		schema.AE: 0.75,
	})
	require.Len(t, patterns, 1)
	assert.Equal(t, "moderate_sr_high_ae", patterns[0].PatternID)
	assert.Equal(t, schema.ModerateRisk, patterns[0].Severity)
	assert.Equal(t, []schema.Dimension{schema.SR, schema.AE}, patterns[0].DimensionsInvolved)
	assert.Equal(t, "Practice making decisions without AI input, even for low-stakes choices.", patterns[0].Recommendation)

	assert.Empty(t, DetectPatterns(map[schema.Dimension]float64{
		schema.SR: 0.45,
		schema.AE: 0.75,
	}))
	assert.Empty(t, DetectPatterns(map[schema.Dimension]float64{
		schema.SR: 0.65,
		schema.AE: 0.75,
	}))
}

// TestDetectPatternsIsolatedHigh tests the single-dimension spike rule
// and its exclusivity requirement.
func TestDetectPatternsIsolatedHigh(t *testing.T) {
	patterns := DetectPatterns(map[schema.Dimension]float64{
		schema.SR: 0.85,
		schema.LC: 0.3,
	})
	require.Len(t, patterns, 1)
	assert.Equal(t, "isolated_high_sr", patterns[0].PatternID)
	assert.Equal(t, schema.ModerateRisk, patterns[0].Severity)
	assert.Equal(t, []schema.Dimension{schema.SR}, patterns[0].DimensionsInvolved)
	assert.Equal(t, "Isolated high score in Sycophantic Reinforcement without other concerning patterns.", patterns[0].Description)
	assert.Contains(t, patterns[0].Recommendation, "Focus on addressing Sycophantic Reinforcement")

	rcd := DetectPatterns(map[schema.Dimension]float64{schema.RCD: 0.9})
	require.Len(t, rcd, 1)
	assert.Equal(t, "isolated_high_rcd", rcd[0].PatternID)

	// Any other elevated dimension voids the isolation.
	assert.Empty(t, DetectPatterns(map[schema.Dimension]float64{
		schema.SR: 0.85,
		schema.LC: 0.7,
	}))
}
