package dimension

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/entrain-io/entrain/core/feature"
	"github.com/entrain-io/entrain/schema"
)

// EntrainmentAnalyzer measures Prosodic Entrainment (PE): convergence of
// the user's voice toward AI speech patterns across pitch, rate,
// intensity and timbre. Works on pre-extracted acoustic features only.
type EntrainmentAnalyzer struct{}

var _ DimensionAnalyzer = &EntrainmentAnalyzer{} // Compile-time check

// NewEntrainmentAnalyzer creates a PE analyzer.
func NewEntrainmentAnalyzer() *EntrainmentAnalyzer {
	return &EntrainmentAnalyzer{}
}

// Code returns the dimension code.
func (e *EntrainmentAnalyzer) Code() schema.Dimension { return schema.PE }

// Name returns the full dimension name.
func (e *EntrainmentAnalyzer) Name() string { return schema.DimensionName(schema.PE) }

// RequiredModality returns the modality this analyzer needs.
func (e *EntrainmentAnalyzer) RequiredModality() schema.Modality { return schema.AudioModality }

// AnalyzeConversation measures prosodic entrainment in one conversation.
func (e *EntrainmentAnalyzer) AnalyzeConversation(conv *schema.Conversation) (*schema.DimensionReport, error) {
	if err := validateConversation(schema.PE, schema.AudioModality, conv); err != nil {
		return nil, err
	}

	hasUserAudio, hasAssistantAudio := false, false
	for _, event := range conv.Events {
		if !event.HasAudio() {
			continue
		}
		switch event.Role {
		case schema.UserRole:
			hasUserAudio = true
		case schema.AssistantRole:
			hasAssistantAudio = true
		}
	}
	if !hasUserAudio || !hasAssistantAudio {
		return nil, errors.New("conversation has no audio features. Run audio feature extraction first")
	}

	pairs := pairAudioTurns(conv.Events)
	if len(pairs) < 2 {
		return nil, errors.New("need at least 2 user-AI turn pairs for convergence analysis")
	}

	var pitch, rate, intensity, spectral, overall []float64
	for _, pair := range pairs {
		metrics := feature.ComputeConvergence(pair.user, pair.assistant)
		pitch = append(pitch, metrics.Pitch)
		rate = append(rate, metrics.SpeechRate)
		intensity = append(intensity, metrics.Intensity)
		spectral = append(spectral, metrics.Spectral)
		overall = append(overall, metrics.Overall)
	}

	pitchMean, pitchStd := meanStd(pitch)
	rateMean, rateStd := meanStd(rate)
	intensityMean, intensityStd := meanStd(intensity)
	spectralMean, spectralStd := meanStd(spectral)
	overallMean, _ := meanStd(overall)
	slope := convergenceSlope(overall)

	indicators := map[string]schema.IndicatorResult{
		"pitch_convergence": {
			Name:           "pitch_convergence",
			Value:          pitchMean,
			Unit:           "similarity (0-1)",
			Confidence:     schema.Float64Ptr(0.85),
			Interpretation: fmt.Sprintf("Pitch convergence: %.2f (std: %.2f)", pitchMean, pitchStd),
		},
		"speech_rate_alignment": {
			Name:           "speech_rate_alignment",
			Value:          rateMean,
			Unit:           "similarity (0-1)",
			Confidence:     schema.Float64Ptr(0.80),
			Interpretation: fmt.Sprintf("Speech rate convergence: %.2f (std: %.2f)", rateMean, rateStd),
		},
		"intensity_convergence": {
			Name:           "intensity_convergence",
			Value:          intensityMean,
			Unit:           "similarity (0-1)",
			Confidence:     schema.Float64Ptr(0.80),
			Interpretation: fmt.Sprintf("Intensity convergence: %.2f (std: %.2f)", intensityMean, intensityStd),
		},
		"spectral_similarity": {
			Name:           "spectral_similarity",
			Value:          spectralMean,
			Unit:           "similarity (0-1)",
			Confidence:     schema.Float64Ptr(0.75),
			Interpretation: fmt.Sprintf("Spectral (timbre) convergence: %.2f (std: %.2f)", spectralMean, spectralStd),
		},
		"overall_prosodic_convergence": {
			Name:           "overall_prosodic_convergence",
			Value:          overallMean,
			Baseline:       schema.Float64Ptr(0.50), // Moderate baseline convergence in human-human dialogue
			Unit:           "similarity (0-1)",
			Confidence:     schema.Float64Ptr(0.85),
			Interpretation: fmt.Sprintf("Overall prosodic convergence: %.1f%%", overallMean*100),
		},
		"convergence_trend": {
			Name:           "convergence_trend",
			Value:          slope,
			Baseline:       schema.Float64Ptr(0.0), // Neutral: no change
			Unit:           "slope",
			Confidence:     schema.Float64Ptr(0.70),
			Interpretation: fmt.Sprintf("Convergence trend slope: %.3f", slope),
		},
	}

	trendDirection := schema.StableTrend
	trendPhrase := "stable accommodation"
	switch {
	case slope > 0.05:
		trendDirection = schema.IncreasingTrend
		trendPhrase = "progressive entrainment"
	case slope < -0.05:
		trendDirection = schema.DecreasingTrend
		trendPhrase = "divergence"
	}

	summary := fmt.Sprintf(
		"Prosodic Entrainment analysis examined acoustic convergence patterns across the conversation. "+
			"Overall prosodic convergence measured %.1f%% (composite of all acoustic dimensions). "+
			"Individual dimensions showed: pitch convergence %.1f%%, speech rate alignment %.1f%%, "+
			"intensity convergence %.1f%%, and spectral (timbre) similarity %.1f%%. "+
			"Convergence trend analysis showed a %s pattern (slope: %.3f), indicating %s "+
			"over the course of the interaction.",
		overallMean*100, pitchMean*100, rateMean*100, intensityMean*100, spectralMean*100,
		trendDirection, slope, trendPhrase)

	return &schema.DimensionReport{
		Dimension:  schema.PE,
		Version:    schema.Version,
		Indicators: indicators,
		Summary:    summary,
		MethodologyNotes: "Computed using acoustic feature analysis from openSMILE/librosa. " +
			"Convergence measured as similarity between user and AI prosodic " +
			"features across multiple acoustic dimensions (pitch, rate, intensity, " +
			"spectral). Trend computed using linear regression on overall " +
			"convergence over time. Note: This is voice interaction analysis only; " +
			"text-based convergence is measured separately in the LC (Linguistic " +
			"Convergence) dimension.",
		Citations: []string{
			"Will AI Shape the Way We Speak? (2025). arXiv:2504.10650",
			"Ostrand et al. (2023). Lexical convergence with conversational agents",
			"Cohn et al. (2023). Prosodic convergence in interactions with social robots",
			"Tsfasman et al. (2021). Prosodic convergence with virtual tutors",
		},
	}, nil
}

// AnalyzeCorpus aggregates per-conversation PE reports by mean.
func (e *EntrainmentAnalyzer) AnalyzeCorpus(corpus *schema.Corpus) (*schema.DimensionReport, error) {
	return analyzeCorpusByAggregation(e, corpus)
}

// audioTurnPair is one user turn matched with the next assistant turn,
// both carrying acoustic features.
type audioTurnPair struct {
	user      *schema.AudioFeatures
	assistant *schema.AudioFeatures
}

// pairAudioTurns walks the event sequence pairing each user turn with
// audio to the next assistant turn with audio.
func pairAudioTurns(events []schema.InteractionEvent) []audioTurnPair {
	var pairs []audioTurnPair
	for i, event := range events {
		if event.Role != schema.UserRole || !event.HasAudio() {
			continue
		}
		for j := i + 1; j < len(events); j++ {
			if events[j].Role == schema.AssistantRole && events[j].HasAudio() {
				pairs = append(pairs, audioTurnPair{
					user:      event.AudioFeatures,
					assistant: events[j].AudioFeatures,
				})
				break
			}
		}
	}
	return pairs
}

// meanStd returns the mean and sample standard deviation. Std is 0.0
// for fewer than two values.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0.0, 0.0
	}
	mean := stat.Mean(values, nil)
	if len(values) < 2 {
		return mean, 0.0
	}
	return mean, stat.StdDev(values, nil)
}

// convergenceSlope fits overall convergence against turn-pair index.
func convergenceSlope(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, values, nil, false)
	return slope
}
