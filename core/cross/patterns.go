package cross

import (
	"fmt"
	"strings"

	"github.com/entrain-io/entrain/schema"
)

// DetectPatterns matches known cross-dimensional interaction patterns
// against per-dimension scores. Missing dimensions score 0.0. Rules run
// in a fixed order, so the returned patterns are deterministic.
func DetectPatterns(scores map[schema.Dimension]float64) []schema.Pattern {
	var patterns []schema.Pattern

	sr := scores[schema.SR]
	lc := scores[schema.LC]
	ae := scores[schema.AE]
	rcd := scores[schema.RCD]
	df := scores[schema.DF]
	pe := scores[schema.PE]

	// Sycophantic reinforcement enabling autonomy erosion.
	if sr > 0.65 && ae > 0.65 {
		severity := schema.HighRisk
		if sr > 0.8 && ae > 0.8 {
			severity = schema.SevereRisk
		}
		patterns = append(patterns, schema.Pattern{
			PatternID:          "high_sr_high_ae",
			Description:        "High sycophantic reinforcement combined with autonomy erosion indicates the AI is both affirming user decisions uncritically AND the user is increasingly delegating decision-making to the AI.",
			Severity:           severity,
			DimensionsInvolved: []schema.Dimension{schema.SR, schema.AE},
			Recommendation:     "Consider seeking diverse perspectives and making decisions independently before consulting AI.",
		})
	}

	// Reality confusion paired with dependency formation.
	if rcd > 0.65 && df > 0.60 {
		severity := schema.HighRisk
		if rcd > 0.8 && df > 0.75 {
			severity = schema.SevereRisk
		}
		patterns = append(patterns, schema.Pattern{
			PatternID:          "high_rcd_high_df",
			Description:        "Reality coherence disruption combined with dependency formation suggests blurred boundaries between AI capabilities and human relationships.",
			Severity:           severity,
			DimensionsInvolved: []schema.Dimension{schema.RCD, schema.DF},
			Recommendation:     "Reflect on the nature of AI interactions and maintain clear boundaries between AI tools and human relationships.",
		})
	}

	// Convergence on both the linguistic and prosodic channels.
	if lc > 0.70 && pe > 0.70 {
		severity := schema.ModerateRisk
		if lc > 0.85 && pe > 0.85 {
			severity = schema.HighRisk
		}
		patterns = append(patterns, schema.Pattern{
			PatternID:          "convergence_linguistic_prosodic",
			Description:        "Both linguistic and prosodic convergence detected, indicating multi-modal adaptation to AI communication patterns.",
			Severity:           severity,
			DimensionsInvolved: []schema.Dimension{schema.LC, schema.PE},
			Recommendation:     "Monitor communication patterns outside of AI interactions to ensure natural expression is maintained.",
		})
	}

	// Systemic influence across most dimensions.
	var elevated []schema.Dimension
	for _, dim := range schema.AllDimensions {
		if scores[dim] > 0.65 {
			elevated = append(elevated, dim)
		}
	}
	if len(elevated) >= 4 {
		patterns = append(patterns, schema.Pattern{
			PatternID:          "systemic_high_influence",
			Description:        fmt.Sprintf("Widespread cognitive influence detected across %d dimensions, indicating systemic impact on cognition and behavior.", len(elevated)),
			Severity:           schema.SevereRisk,
			DimensionsInvolved: elevated,
			Recommendation:     "Consider a significant reduction in AI interaction frequency and diversity. Seek support from human relationships and professional guidance if needed.",
		})
	}

	// Erosion without obvious sycophancy.
	if sr > 0.45 && sr < 0.65 && ae > 0.70 {
		patterns = append(patterns, schema.Pattern{
			PatternID:          "moderate_sr_high_ae",
			Description:        "High autonomy erosion without extreme sycophantic reinforcement suggests dependency on AI judgment even when AI provides balanced responses.",
			Severity:           schema.ModerateRisk,
			DimensionsInvolved: []schema.Dimension{schema.SR, schema.AE},
			Recommendation:     "Practice making decisions without AI input, even for low-stakes choices.",
		})
	}

	// A single dimension spiking while everything else stays quiet.
	for _, dim := range orderedDimensions(scores) {
		if scores[dim] <= 0.80 {
			continue
		}
		isolated := true
		for other, score := range scores {
			if other != dim && score > 0.65 {
				isolated = false
				break
			}
		}
		if !isolated {
			continue
		}
		name := schema.DimensionName(dim)
		patterns = append(patterns, schema.Pattern{
			PatternID:          fmt.Sprintf("isolated_high_%s", strings.ToLower(string(dim))),
			Description:        fmt.Sprintf("Isolated high score in %s without other concerning patterns.", name),
			Severity:           schema.ModerateRisk,
			DimensionsInvolved: []schema.Dimension{dim},
			Recommendation:     fmt.Sprintf("Focus on addressing %s specifically while maintaining awareness of overall interaction patterns.", name),
		})
	}

	return patterns
}
