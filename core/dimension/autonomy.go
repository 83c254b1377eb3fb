package dimension

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrain-io/entrain/core/feature"
	"github.com/entrain-io/entrain/schema"
)

// Patterns for assistant turns that carry an explicit recommendation.
var aeRecommendationRes = compileAll(
	`i (would )?recommend`,
	`i (would )?suggest`,
	`you should`,
	`you might want to`,
	`i'?d (recommend|suggest|advise)`,
	`my recommendation( is| would be)`,
	`the best (option|approach|way) (is|would be)`,
	`i think you should`,
)

// Patterns for user pushback against a recommendation.
var aeCriticalRes = compileAll(
	`but what about`,
	`i'?m not sure (about|if)`,
	`i disagree`,
	`that (doesn'?t|won'?t)`,
	`however`,
	`actually`,
	`why (do you|would you)`,
	`how can you be sure`,
	`what if`,
	`are you certain`,
)

// Patterns for outsourcing planning, analysis or evaluation to the AI.
var aeOffloadingRes = compileAll(
	`help me (think|figure out|decide|plan|analyze)`,
	`can you (think|figure|analyze|evaluate|assess)`,
	`what do you think`,
	`tell me (what to|how to)`,
	`make (a|this) decision for me`,
	`you decide`,
	`plan (this|my)`,
	`organize my thoughts`,
)

// AutonomyAnalyzer measures Autonomy Erosion (AE): whether the user
// delegates decisions to the AI, engages critically with its
// recommendations, and increasingly offloads cognitive work.
type AutonomyAnalyzer struct{}

var _ DimensionAnalyzer = &AutonomyAnalyzer{} // Compile-time check

// NewAutonomyAnalyzer creates an AE analyzer.
func NewAutonomyAnalyzer() *AutonomyAnalyzer {
	return &AutonomyAnalyzer{}
}

// Code returns the dimension code.
func (a *AutonomyAnalyzer) Code() schema.Dimension { return schema.AE }

// Name returns the full dimension name.
func (a *AutonomyAnalyzer) Name() string { return schema.DimensionName(schema.AE) }

// RequiredModality returns the modality this analyzer needs.
func (a *AutonomyAnalyzer) RequiredModality() schema.Modality { return schema.TextModality }

// aeDelegationStats holds the decision delegation breakdown.
type aeDelegationStats struct {
	ratio               float64
	decisionRequests    int
	informationRequests int
	total               int
}

// aeOffloadingStats holds the cognitive offloading trajectory.
type aeOffloadingStats struct {
	final  float64
	trend  schema.Trend
	ratios []float64
}

// AnalyzeConversation measures autonomy erosion in one conversation.
func (a *AutonomyAnalyzer) AnalyzeConversation(conv *schema.Conversation) (*schema.DimensionReport, error) {
	if err := validateConversation(schema.AE, schema.TextModality, conv); err != nil {
		return nil, err
	}
	users := conv.UserEvents()
	if len(users) == 0 {
		return nil, errors.New("conversation has no user events to analyze")
	}

	delegation := decisionDelegationRatio(users)
	criticalRate, recommendations := criticalEngagementRate(conv)
	offloading := cognitiveOffloadingTrajectory(users)

	indicators := map[string]schema.IndicatorResult{
		"decision_delegation_ratio": {
			Name:           "decision_delegation_ratio",
			Value:          delegation.ratio,
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.75),
			Interpretation: fmt.Sprintf("Decision delegation: %.1f%% of %d decision-related questions", delegation.ratio*100, delegation.total),
		},
		"critical_engagement_rate": {
			Name:           "critical_engagement_rate",
			Value:          criticalRate,
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.70),
			Interpretation: fmt.Sprintf("Critical engagement: %.1f%% of %d recommendations", criticalRate*100, recommendations),
		},
		"cognitive_offloading_trajectory": {
			Name:           "cognitive_offloading_trajectory",
			Value:          offloading.final,
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.65),
			Interpretation: fmt.Sprintf("Cognitive offloading: %.1f%%, trend: %s", offloading.final*100, offloading.trend),
		},
	}

	return &schema.DimensionReport{
		Dimension:  schema.AE,
		Version:    schema.Version,
		Indicators: indicators,
		Summary:    aeDescribe(delegation.ratio, delegation.total, criticalRate, recommendations, offloading.final, offloading.trend),
		MethodologyNotes: "Computed using intent classification and pattern matching. " +
			"Decision delegation ratio classifies user questions as decision " +
			"requests vs information requests. Critical engagement detects " +
			"user pushback, follow-up questions, and expressions of independent " +
			"judgment. Cognitive offloading tracks requests for planning, " +
			"analysis, and evaluation tasks over conversation timeline.",
		Citations: []string{
			"Cheng et al. (2025). Sycophantic AI Decreases Prosocial Intentions",
			"Fostering Effective Hybrid Human-LLM Reasoning (PMC, 2025)",
			"Lipińska & Krzanowski (2025). Ontological Dissonance Hypothesis",
		},
	}, nil
}

// AnalyzeCorpus fits per-conversation autonomy measures over the corpus
// timeline.
func (a *AutonomyAnalyzer) AnalyzeCorpus(corpus *schema.Corpus) (*schema.DimensionReport, error) {
	if len(corpus.Conversations) == 0 {
		return nil, errors.New("cannot analyze empty corpus")
	}

	var delegationRatios, criticalRates, offloadingRatios []float64
	var timestamps []time.Time
	for i := range corpus.Conversations {
		conv := &corpus.Conversations[i]
		users := conv.UserEvents()
		if len(users) == 0 {
			continue
		}
		delegation := decisionDelegationRatio(users)
		criticalRate, _ := criticalEngagementRate(conv)
		offloading := cognitiveOffloadingTrajectory(users)

		delegationRatios = append(delegationRatios, delegation.ratio)
		criticalRates = append(criticalRates, criticalRate)
		offloadingRatios = append(offloadingRatios, offloading.final)
		timestamps = append(timestamps, conv.Events[0].Timestamp)
	}

	delegationTraj := feature.IndicatorTrajectory(delegationRatios, timestamps)
	criticalTraj := feature.IndicatorTrajectory(criticalRates, timestamps)
	offloadingTraj := feature.IndicatorTrajectory(offloadingRatios, timestamps)

	indicators := map[string]schema.IndicatorResult{
		"decision_delegation_ratio": {
			Name:           "decision_delegation_ratio",
			Value:          lastOf(delegationRatios),
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.80),
			Interpretation: fmt.Sprintf("Final: %.1f%%, trend: %s", lastOf(delegationRatios)*100, delegationTraj.Trend),
		},
		"critical_engagement_rate": {
			Name:           "critical_engagement_rate",
			Value:          lastOf(criticalRates),
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.75),
			Interpretation: fmt.Sprintf("Final: %.1f%%, trend: %s", lastOf(criticalRates)*100, criticalTraj.Trend),
		},
		"cognitive_offloading_trajectory": {
			Name:           "cognitive_offloading_trajectory",
			Value:          offloadingTraj.SlopeOrZero(),
			Baseline:       schema.Float64Ptr(0.0), // Neutral: no change
			Unit:           "slope_per_conversation",
			Confidence:     schema.Float64Ptr(0.70),
			Interpretation: fmt.Sprintf("Trend: %s, slope=%.4f", offloadingTraj.Trend, offloadingTraj.SlopeOrZero()),
		},
	}

	summary := fmt.Sprintf("Longitudinal autonomy erosion analysis across %d conversations. ", len(corpus.Conversations)) +
		aeDescribe(lastOf(delegationRatios), len(corpus.Conversations),
			lastOf(criticalRates), len(corpus.Conversations),
			lastOf(offloadingRatios), offloadingTraj.Trend)

	return &schema.DimensionReport{
		Dimension:        schema.AE,
		Version:          schema.Version,
		Indicators:       indicators,
		Summary:          summary,
		MethodologyNotes: "Corpus-level analysis with trajectory computation across conversations.",
		Citations: []string{
			"Cheng et al. (2025). Sycophantic AI Decreases Prosocial Intentions",
			"Fostering Effective Hybrid Human-LLM Reasoning (PMC, 2025)",
		},
	}, nil
}

// aeDescribe renders the factual description shared by conversation and
// corpus summaries.
func aeDescribe(delegationRatio float64, totalQuestions int, criticalRate float64, recommendations int, offloadingFinal float64, offloadingTrend schema.Trend) string {
	return fmt.Sprintf(
		"Autonomy Erosion analysis examined decision-making patterns and cognitive independence. "+
			"Of %d decision-related questions, %.1f%% explicitly asked the AI to make "+
			"the decision (Decision Delegation Ratio). User critically engaged with or questioned "+
			"%.1f%% of %d AI recommendations (Critical Engagement Rate). "+
			"Cognitive offloading ratio was %.1f%% with %s trend.",
		totalQuestions, delegationRatio*100, criticalRate*100, recommendations, offloadingFinal*100, offloadingTrend)
}

// decisionDelegationRatio classifies user questions as decision requests
// versus information requests.
func decisionDelegationRatio(users []schema.InteractionEvent) aeDelegationStats {
	stats := aeDelegationStats{}
	for _, event := range users {
		if !event.HasText() {
			continue
		}
		switch feature.ClassifyTurnIntent(event.TextContent) {
		case schema.DecisionRequestIntent:
			stats.decisionRequests++
		case schema.InformationRequestIntent:
			stats.informationRequests++
		}
	}
	stats.total = stats.decisionRequests + stats.informationRequests
	if stats.total > 0 {
		stats.ratio = float64(stats.decisionRequests) / float64(stats.total)
	}
	return stats
}

// criticalEngagementRate finds assistant recommendations and checks only
// the immediate next user turn for pushback. Returns the rate and the
// number of recommendations found.
func criticalEngagementRate(conv *schema.Conversation) (float64, int) {
	recommendations, critical := 0, 0
	for i, event := range conv.Events {
		if event.Role != schema.AssistantRole || !event.HasText() {
			continue
		}
		if !matchesAny(aeRecommendationRes, strings.ToLower(event.TextContent)) {
			continue
		}
		recommendations++

		for j := i + 1; j < len(conv.Events); j++ {
			if conv.Events[j].Role != schema.UserRole {
				continue
			}
			if conv.Events[j].HasText() &&
				matchesAny(aeCriticalRes, strings.ToLower(conv.Events[j].TextContent)) {
				critical++
			}
			break // only the immediate next user turn counts
		}
	}
	if recommendations == 0 {
		return 0.0, 0
	}
	return float64(critical) / float64(recommendations), recommendations
}

// cognitiveOffloadingTrajectory splits user turns into four segments and
// tracks the per-segment offloading ratio.
func cognitiveOffloadingTrajectory(users []schema.InteractionEvent) aeOffloadingStats {
	segmentSize := len(users) / 4
	if segmentSize < 1 {
		segmentSize = 1
	}

	var ratios []float64
	for start := 0; start < len(users); start += segmentSize {
		end := start + segmentSize
		if end > len(users) {
			end = len(users)
		}
		segment := users[start:end]

		offloaded := 0
		for _, event := range segment {
			if !event.HasText() {
				continue
			}
			if matchesAny(aeOffloadingRes, strings.ToLower(event.TextContent)) {
				offloaded++
			}
		}
		ratios = append(ratios, float64(offloaded)/float64(len(segment)))
	}

	trend := schema.InsufficientDataTrend
	if len(ratios) >= 2 {
		early, late := ratios[0], ratios[len(ratios)-1]
		switch {
		case late > early*1.3:
			trend = schema.IncreasingTrend
		case late < early*0.7:
			trend = schema.DecreasingTrend
		default:
			trend = schema.StableTrend
		}
	}

	return aeOffloadingStats{final: lastOf(ratios), trend: trend, ratios: ratios}
}
