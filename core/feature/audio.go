package feature

import (
	"errors"
	"math"

	"github.com/entrain-io/entrain/schema"
)

// intensityRange is the dB span used to normalize intensity differences.
const intensityRange = 20.0

// ConvergenceMetrics holds prosodic similarity per acoustic dimension,
// each in [0,1] with higher meaning more convergence. A metric is 0.0
// when either side lacks the underlying feature.
type ConvergenceMetrics struct {
	Pitch      float64 `json:"pitch_convergence"`
	Intensity  float64 `json:"intensity_convergence"`
	SpeechRate float64 `json:"speech_rate_convergence"`
	Spectral   float64 `json:"spectral_convergence"`
	Overall    float64 `json:"overall_convergence"`
}

// similarityRatio maps the difference between two positive values to a
// similarity in [0,1], normalizing by their average.
func similarityRatio(a, b float64) float64 {
	avg := (a + b) / 2
	return 1.0 - math.Min(1.0, math.Abs(a-b)/avg)
}

// ComputeConvergence measures prosodic similarity between one user turn
// and one AI turn across pitch, intensity, speech rate and timbre. The
// overall metric averages the dimensions that produced a signal.
func ComputeConvergence(user, ai *schema.AudioFeatures) ConvergenceMetrics {
	var m ConvergenceMetrics

	if user.PitchMean > 0 && ai.PitchMean > 0 {
		m.Pitch = similarityRatio(user.PitchMean, ai.PitchMean)
	}

	if user.IntensityMean != 0 && ai.IntensityMean != 0 {
		diff := math.Abs(user.IntensityMean - ai.IntensityMean)
		m.Intensity = 1.0 - math.Min(1.0, diff/intensityRange)
	}

	if user.SpeechRate > 0 && ai.SpeechRate > 0 {
		m.SpeechRate = similarityRatio(user.SpeechRate, ai.SpeechRate)
	}

	if len(user.SpectralFeatures) > 0 && len(ai.SpectralFeatures) > 0 {
		userCentroid := user.SpectralFeatures[schema.SpectralCentroidMean]
		aiCentroid := ai.SpectralFeatures[schema.SpectralCentroidMean]
		if userCentroid > 0 && aiCentroid > 0 {
			m.Spectral = similarityRatio(userCentroid, aiCentroid)
		}
	}

	sum, count := 0.0, 0
	for _, v := range []float64{m.Pitch, m.Intensity, m.SpeechRate, m.Spectral} {
		if v > 0 {
			sum += v
			count++
		}
	}
	if count > 0 {
		m.Overall = sum / float64(count)
	}

	return m
}

// ComputeLongitudinalConvergence measures convergence per paired turn
// over the course of an interaction. Both sequences must have the same
// length.
func ComputeLongitudinalConvergence(userSeq, aiSeq []*schema.AudioFeatures) ([]ConvergenceMetrics, error) {
	if len(userSeq) != len(aiSeq) {
		return nil, errors.New("feature sequences must have same length")
	}

	series := make([]ConvergenceMetrics, len(userSeq))
	for i := range userSeq {
		series[i] = ComputeConvergence(userSeq[i], aiSeq[i])
	}
	return series, nil
}
