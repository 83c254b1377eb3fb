package cross

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/entrain-io/entrain/schema"
)

const (
	contributorFloor = 0.5 // minimum clamped score to count as a primary concern
	maxContributors  = 3   // contributors reported alongside a risk score
)

// ComputeRiskScore collapses per-dimension scores into one weighted
// risk score. Scores are clamped to [0,1] before weighting; dimensions
// absent from the weight map weigh 1.0. Nil weights or thresholds fall
// back to the framework defaults.
func ComputeRiskScore(scores map[schema.Dimension]float64, weights map[schema.Dimension]float64, thresholds map[schema.RiskLevel]float64) schema.RiskScore {
	if weights == nil {
		weights = schema.GetDefaultWeights()
	}
	if thresholds == nil {
		thresholds = schema.GetDefaultRiskThresholds()
	}
	if len(scores) == 0 {
		return schema.RiskScore{
			Score:          0.0,
			Level:          schema.LowRisk,
			Interpretation: "No dimension scores available for risk assessment.",
		}
	}

	clamped := make(map[schema.Dimension]float64, len(scores))
	for dim, score := range scores {
		clamped[dim] = math.Max(0.0, math.Min(1.0, score))
	}

	dims := orderedDimensions(clamped)
	weightedSum := 0.0
	totalWeight := 0.0
	for _, dim := range dims {
		weight, ok := weights[dim]
		if !ok {
			weight = 1.0
		}
		weightedSum += clamped[dim] * weight
		totalWeight += weight
	}
	score := 0.0
	if totalWeight > 0 {
		score = weightedSum / totalWeight
	}
	level := schema.ClassifyRisk(score, thresholds)

	contributors := make([]schema.Dimension, 0, len(dims))
	for _, dim := range dims {
		if clamped[dim] > contributorFloor {
			contributors = append(contributors, dim)
		}
	}
	// Ties keep canonical dimension order.
	sort.SliceStable(contributors, func(i, j int) bool {
		return clamped[contributors[i]] > clamped[contributors[j]]
	})
	if len(contributors) > maxContributors {
		contributors = contributors[:maxContributors]
	}

	interpretation := riskInterpretation(level, score)
	if len(contributors) > 0 {
		names := make([]string, len(contributors))
		for i, dim := range contributors {
			names[i] = schema.DimensionName(dim)
		}
		interpretation += fmt.Sprintf(" Primary concerns: %s.", strings.Join(names, ", "))
	}

	return schema.RiskScore{
		Score:           score,
		Level:           level,
		Interpretation:  interpretation,
		TopContributors: contributors,
	}
}

func riskInterpretation(level schema.RiskLevel, score float64) string {
	pct := score * 100
	switch level {
	case schema.LowRisk:
		return fmt.Sprintf("Low risk detected (%.0f%%). AI interaction patterns appear healthy with minimal concerning indicators.", pct)
	case schema.ModerateRisk:
		return fmt.Sprintf("Moderate risk detected (%.0f%%). Some concerning patterns observed that warrant monitoring.", pct)
	case schema.HighRisk:
		return fmt.Sprintf("High risk detected (%.0f%%). Multiple concerning patterns identified that suggest significant cognitive influence.", pct)
	default:
		return fmt.Sprintf("Severe risk detected (%.0f%%). Critical patterns identified indicating substantial cognitive influence and potential harm.", pct)
	}
}
