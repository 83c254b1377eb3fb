package cross

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/entrain-io/entrain/schema"
)

// ComputeCorrelationMatrix computes pairwise Pearson correlations
// between dimension scores across samples. The matrix covers the
// dimensions present in the first sample; a pair is only correlated
// over samples where both dimensions are present, and needs at least 2
// such samples to appear in the matrix. Fewer than 2 samples overall
// yields an insufficient-data matrix with no correlations.
func ComputeCorrelationMatrix(samples []map[schema.Dimension]float64) *schema.CorrelationMatrix {
	var dims []schema.Dimension
	if len(samples) > 0 {
		dims = orderedDimensions(samples[0])
	}
	if len(samples) < 2 {
		return &schema.CorrelationMatrix{
			Dimensions:       dims,
			Correlations:     map[schema.Dimension]map[schema.Dimension]float64{},
			InsufficientData: true,
		}
	}

	correlations := make(map[schema.Dimension]map[schema.Dimension]float64, len(dims))
	for _, first := range dims {
		for _, second := range dims {
			var xs, ys []float64
			for _, sample := range samples {
				x, okFirst := sample[first]
				y, okSecond := sample[second]
				if okFirst && okSecond {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			if len(xs) < 2 {
				continue
			}
			row, ok := correlations[first]
			if !ok {
				row = make(map[schema.Dimension]float64, len(dims))
				correlations[first] = row
			}
			row[second] = pearson(xs, ys)
		}
	}

	return &schema.CorrelationMatrix{
		Dimensions:   dims,
		Correlations: correlations,
	}
}

// pearson computes the correlation coefficient for two equal-length
// series. Zero-variance input counts as uncorrelated, and the result
// is clamped to [-1, 1] to absorb floating point error.
func pearson(xs, ys []float64) float64 {
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0.0
	}
	return math.Max(-1.0, math.Min(1.0, r))
}
