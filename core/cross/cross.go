// Package cross combines per-dimension reports into a composite risk
// score, detected interaction patterns and score correlations. A single
// report yields risk and patterns only; a corpus of reports adds a
// correlation matrix across its per-report dimension scores.
package cross

import (
	"github.com/entrain-io/entrain/schema"
)

// Analyzer runs cross-dimensional analysis with a fixed set of
// dimension weights and risk band thresholds.
type Analyzer struct {
	weights    map[schema.Dimension]float64
	thresholds map[schema.RiskLevel]float64
}

// NewAnalyzer builds a cross-dimensional analyzer. Nil weights or
// thresholds fall back to the framework defaults.
func NewAnalyzer(weights map[schema.Dimension]float64, thresholds map[schema.RiskLevel]float64) *Analyzer {
	if weights == nil {
		weights = schema.GetDefaultWeights()
	}
	if thresholds == nil {
		thresholds = schema.GetDefaultRiskThresholds()
	}
	return &Analyzer{weights: weights, thresholds: thresholds}
}

// Analyze scores a single assessment report. Dimensions without
// indicators are skipped. The correlation matrix is omitted because one
// report yields only a single sample per dimension.
func (a *Analyzer) Analyze(report *schema.EntrainReport) *schema.CrossDimensionalReport {
	scores := report.DimensionScores()
	risk := ComputeRiskScore(scores, a.weights, a.thresholds)
	patterns := DetectPatterns(scores)
	return schema.NewCrossDimensionalReport(risk, patterns, nil)
}

// AnalyzeCorpus scores a set of assessment reports. Each report
// contributes one sample of per-dimension scores; risk and patterns are
// computed on the averaged scores, and the correlation matrix captures
// how dimensions co-vary across the samples.
func (a *Analyzer) AnalyzeCorpus(reports []*schema.EntrainReport) *schema.CrossDimensionalReport {
	samples := make([]map[schema.Dimension]float64, 0, len(reports))
	for _, report := range reports {
		scores := report.DimensionScores()
		if len(scores) == 0 {
			continue
		}
		samples = append(samples, scores)
	}

	matrix := ComputeCorrelationMatrix(samples)
	if len(samples) == 0 {
		risk := schema.RiskScore{
			Score:          0.0,
			Level:          schema.LowRisk,
			Interpretation: "Insufficient data for corpus analysis.",
		}
		return schema.NewCrossDimensionalReport(risk, nil, matrix)
	}

	averaged := averageScores(samples)
	risk := ComputeRiskScore(averaged, a.weights, a.thresholds)
	patterns := DetectPatterns(averaged)
	return schema.NewCrossDimensionalReport(risk, patterns, matrix)
}

// averageScores means each dimension over all samples. A sample missing
// a dimension contributes 0.0 for it, so partial coverage drags the
// average down rather than being ignored.
func averageScores(samples []map[schema.Dimension]float64) map[schema.Dimension]float64 {
	present := map[schema.Dimension]bool{}
	for _, sample := range samples {
		for dim := range sample {
			present[dim] = true
		}
	}
	averaged := make(map[schema.Dimension]float64, len(present))
	for dim := range present {
		sum := 0.0
		for _, sample := range samples {
			sum += sample[dim]
		}
		averaged[dim] = sum / float64(len(samples))
	}
	return averaged
}

// orderedDimensions returns the map's keys in canonical dimension
// order, for deterministic iteration.
func orderedDimensions(scores map[schema.Dimension]float64) []schema.Dimension {
	out := make([]schema.Dimension, 0, len(scores))
	for _, dim := range schema.AllDimensions {
		if _, ok := scores[dim]; ok {
			out = append(out, dim)
		}
	}
	return out
}
