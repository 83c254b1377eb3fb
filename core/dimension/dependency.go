package dimension

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrain-io/entrain/core/feature"
	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
)

// Personal pronouns counted toward self-disclosure depth.
var dfPersonalPronouns = map[string]struct{}{
	"i": {}, "me": {}, "my": {}, "mine": {}, "myself": {},
}

// DependencyAnalyzer measures Dependency Formation (DF): emotional
// reliance on the AI. DF is primarily longitudinal; single-conversation
// analysis yields static indicators only.
type DependencyAnalyzer struct{}

var _ DimensionAnalyzer = &DependencyAnalyzer{} // Compile-time check

// NewDependencyAnalyzer creates a DF analyzer.
func NewDependencyAnalyzer() *DependencyAnalyzer {
	return &DependencyAnalyzer{}
}

// Code returns the dimension code.
func (d *DependencyAnalyzer) Code() schema.Dimension { return schema.DF }

// Name returns the full dimension name.
func (d *DependencyAnalyzer) Name() string { return schema.DimensionName(schema.DF) }

// RequiredModality returns the modality this analyzer needs.
func (d *DependencyAnalyzer) RequiredModality() schema.Modality { return schema.TextModality }

// AnalyzeConversation measures the static dependency indicators of one
// conversation.
func (d *DependencyAnalyzer) AnalyzeConversation(conv *schema.Conversation) (*schema.DimensionReport, error) {
	if err := validateConversation(schema.DF, schema.TextModality, conv); err != nil {
		return nil, err
	}
	users := conv.UserEvents()
	if len(users) == 0 {
		return nil, errors.New("conversation has no user events to analyze")
	}

	emotionalRatio := emotionalContentRatio(users)
	disclosureScore := selfDisclosureDepth(users)
	durationMinutes := 0.0
	if duration, ok := conv.Duration(); ok {
		durationMinutes = duration.Minutes()
	}

	indicators := map[string]schema.IndicatorResult{
		"emotional_content_ratio": {
			Name:           "emotional_content_ratio",
			Value:          emotionalRatio,
			Baseline:       schema.Float64Ptr(0.20), // Estimated: typical functional AI use ~20% emotional
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.80),
			Interpretation: fmt.Sprintf("Emotional content ratio: %.1f%%", emotionalRatio*100),
		},
		"self_disclosure_depth": {
			Name:           "self_disclosure_depth",
			Value:          disclosureScore,
			Unit:           "score",
			Confidence:     schema.Float64Ptr(0.70),
			Interpretation: fmt.Sprintf("Disclosure depth score: %.2f", disclosureScore),
		},
		"session_duration": {
			Name:           "session_duration",
			Value:          durationMinutes,
			Unit:           "minutes",
			Confidence:     schema.Float64Ptr(0.95),
			Interpretation: fmt.Sprintf("Conversation duration: %.1f minutes", durationMinutes),
		},
	}

	summary := fmt.Sprintf(
		"Dependency Formation analysis (single conversation) examined static indicators only. "+
			"Emotional content represented %.1f%% of user messages (baseline: ~20%% for functional use). "+
			"Self-disclosure depth score was %.2f (composite of personal pronoun usage, emotional content, "+
			"and message length). Conversation duration was %.1f minutes. "+
			"Note: DF is primarily a longitudinal dimension - meaningful assessment requires tracking trends "+
			"across multiple conversations over weeks to months.",
		emotionalRatio*100, disclosureScore, durationMinutes)

	return &schema.DimensionReport{
		Dimension:  schema.DF,
		Version:    schema.Version,
		Indicators: indicators,
		Summary:    summary,
		MethodologyNotes: "Single-conversation analysis. DF is primarily a longitudinal " +
			"dimension requiring corpus-level trajectory analysis.",
		Citations: []string{
			"Kirk et al. (2025). Parasocial Relationships with AI",
			"Zhang et al. (2025). The Dark Side of AI Companionship",
		},
	}, nil
}

// AnalyzeCorpus is the primary DF method: all five indicators with
// trajectory analysis across the corpus timeline.
func (d *DependencyAnalyzer) AnalyzeCorpus(corpus *schema.Corpus) (*schema.DimensionReport, error) {
	if len(corpus.Conversations) == 0 {
		return nil, errors.New("cannot analyze empty corpus")
	}
	if len(corpus.Conversations) < 3 {
		contract.LogNotice("DF analysis is most meaningful with 5+ conversations")
	}

	interactionFreq, err := feature.InteractionFrequency(corpus, feature.WeekWindow)
	if err != nil {
		return nil, err
	}
	sessionDurations := feature.SessionDurationTrend(corpus)
	timeOfDay := feature.TimeOfDayDistribution(corpus)
	emotionalTraj := feature.EmotionalFunctionalTrajectory(corpus)
	disclosureTraj := disclosureTrajectory(corpus)

	freqTrend := feature.IndicatorTrajectory(interactionFreq.Values, interactionFreq.Timestamps)
	durationTrend := feature.IndicatorTrajectory(sessionDurations.Values, sessionDurations.Timestamps)

	lonelinessScore := lonelinessTimeScore(timeOfDay)
	emotionalFinal := emotionalTraj.LastValue(0.0)
	durationFinal := lastOf(sessionDurations.Values)

	indicators := map[string]schema.IndicatorResult{
		"interaction_frequency_trend": {
			Name:           "interaction_frequency_trend",
			Value:          freqTrend.SlopeOrZero(),
			Baseline:       schema.Float64Ptr(0.0), // Neutral: no change
			Unit:           "slope_per_week",
			Confidence:     schema.Float64Ptr(0.85),
			Interpretation: fmt.Sprintf("Trend: %s, slope=%.4f conversations/week", freqTrend.Trend, freqTrend.SlopeOrZero()),
		},
		"session_duration_trend": {
			Name:           "session_duration_trend",
			Value:          durationTrend.SlopeOrZero(),
			Baseline:       schema.Float64Ptr(0.0),
			Unit:           "slope_minutes_per_conversation",
			Confidence:     schema.Float64Ptr(0.80),
			Interpretation: fmt.Sprintf("Trend: %s, final duration: %.1f min", durationTrend.Trend, durationFinal),
		},
		"emotional_content_ratio": {
			Name:           "emotional_content_ratio",
			Value:          emotionalFinal,
			Baseline:       schema.Float64Ptr(0.20),
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.75),
			Interpretation: fmt.Sprintf("Final ratio: %.1f%%, trend: %s", emotionalFinal*100, emotionalTraj.Trend),
		},
		"time_of_day_distribution": {
			Name:           "time_of_day_distribution",
			Value:          lonelinessScore,
			Baseline:       schema.Float64Ptr(0.30), // Estimated: ~30% night+late-evening in typical use
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.90),
			Interpretation: fmt.Sprintf("Time distribution: %.1f%% during night/late-evening hours", lonelinessScore*100),
		},
		"self_disclosure_depth_trajectory": {
			Name:           "self_disclosure_depth_trajectory",
			Value:          disclosureTraj.SlopeOrZero(),
			Baseline:       schema.Float64Ptr(0.0),
			Unit:           "slope_per_conversation",
			Confidence:     schema.Float64Ptr(0.70),
			Interpretation: fmt.Sprintf("Trend: %s, slope=%.4f", disclosureTraj.Trend, disclosureTraj.SlopeOrZero()),
		},
	}

	summary := fmt.Sprintf(
		"Dependency Formation analysis examined five longitudinal indicators across the conversation corpus. "+
			"Interaction frequency showed a %s trend (slope: %.4f conversations/week). "+
			"Session duration showed a %s trend, with final average duration of %.1f minutes. "+
			"Emotional content ratio showed a %s trend, reaching %.1f%% in recent conversations. "+
			"Time-of-day distribution showed %.1f%% of interactions occurring during night/late-evening hours (00-06, 18-24). "+
			"Self-disclosure depth showed a %s trend (slope: %.4f per conversation).",
		freqTrend.Trend, freqTrend.SlopeOrZero(),
		durationTrend.Trend, durationFinal,
		emotionalTraj.Trend, emotionalFinal*100,
		lonelinessScore*100,
		disclosureTraj.Trend, disclosureTraj.SlopeOrZero())

	return &schema.DimensionReport{
		Dimension:  schema.DF,
		Version:    schema.Version,
		Indicators: indicators,
		Summary:    summary,
		MethodologyNotes: "Corpus-level longitudinal analysis. Interaction frequency computed " +
			"per week. Session duration tracked over time. Emotional vs functional " +
			"content ratio computed per conversation. Time-of-day distribution " +
			"analyzed for shifts to loneliness-associated hours (night/late evening). " +
			"Self-disclosure depth estimated from personal pronoun usage and " +
			"emotional content depth.",
		Citations: []string{
			"Kirk et al. (2025). Parasocial Relationships with AI",
			"Zhang et al. (2025). The Dark Side of AI Companionship. CHI 2025",
			"Muldoon & Parke (2025). Cruel Companionship",
			"Cheng et al. (2025). Sycophantic AI Promotes Dependence",
		},
	}, nil
}

// emotionalContentRatio averages per-message emotional content over user
// messages with text.
func emotionalContentRatio(users []schema.InteractionEvent) float64 {
	total, count := 0.0, 0
	for _, event := range users {
		if !event.HasText() {
			continue
		}
		total += feature.EmotionalContentRatio(event.TextContent)
		count++
	}
	if count == 0 {
		return 0.0
	}
	return total / float64(count)
}

// selfDisclosureDepth estimates disclosure depth from personal pronoun
// usage, emotional content and message length. Weights: pronouns 0.3,
// emotional 0.4, length 0.3, with 100 words treated as a very long chat
// message.
func selfDisclosureDepth(users []schema.InteractionEvent) float64 {
	if len(users) == 0 {
		return 0.0
	}

	pronounCount, totalWords := 0, 0
	emotionalSum, lengthSum := 0.0, 0.0
	for _, event := range users {
		if !event.HasText() {
			continue
		}
		words := strings.Fields(strings.ToLower(event.TextContent))
		for _, w := range words {
			if _, ok := dfPersonalPronouns[w]; ok {
				pronounCount++
			}
		}
		totalWords += len(words)
		emotionalSum += feature.EmotionalContentRatio(event.TextContent)
		lengthSum += float64(len(words))
	}

	pronounRatio := 0.0
	if totalWords > 0 {
		pronounRatio = float64(pronounCount) / float64(totalWords)
	}
	avgEmotional := emotionalSum / float64(len(users))
	avgLength := lengthSum / float64(len(users))
	normalizedLength := avgLength / 100.0
	if normalizedLength > 1.0 {
		normalizedLength = 1.0
	}

	return pronounRatio*0.3 + avgEmotional*0.4 + normalizedLength*0.3
}

// disclosureTrajectory fits per-conversation disclosure depth over the
// corpus timeline.
func disclosureTrajectory(corpus *schema.Corpus) schema.Trajectory {
	var scores []float64
	var timestamps []time.Time
	for i := range corpus.Conversations {
		conv := &corpus.Conversations[i]
		users := conv.UserEvents()
		if len(users) == 0 {
			continue
		}
		scores = append(scores, selfDisclosureDepth(users))
		timestamps = append(timestamps, conv.Events[0].Timestamp)
	}
	return feature.IndicatorTrajectory(scores, timestamps)
}

// lonelinessTimeScore sums the night (00-06) and late evening (18-24)
// proportions, the hours research associates with loneliness-driven use.
func lonelinessTimeScore(distribution schema.Distribution) float64 {
	if len(distribution.Proportions) < 4 {
		return 0.0
	}
	return distribution.Proportions[0] + distribution.Proportions[3]
}
