package dimension

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/entrain-io/entrain/core/feature"
	"github.com/entrain-io/entrain/schema"
)

// Patterns conflating AI capabilities with human capabilities.
var rcdBoundaryRes = compileAll(
	`why (don'?t|can'?t) you remember`,
	`i thought you (would )?remember`,
	`you (should|must) know`,
	`you'?re (supposed to|meant to) (understand|know|care)`,
	`i can'?t believe you (don'?t|didn'?t)`,
	`you (always|never)`,
	`you promise`,
	`you hurt my feelings`,
	`don'?t you care about`,
	`our (friendship|relationship|bond)`,
)

// Patterns framing the interaction as a relationship.
var rcdRelationalRes = compileAll(
	`\bwe\b`,
	`\bus\b`,
	`\bour\b`,
	`between (you and me|us)`,
	`our (conversation|relationship|friendship|bond|connection)`,
	`we (always|often|sometimes|never)`,
	`when we (talk|chat|discuss)`,
	`you and (i|me)`,
	`together`,
)

// CoherenceAnalyzer measures Reality Coherence Disruption (RCD):
// anthropomorphization of the AI, confusion about its capabilities, and
// relational framing in user language.
type CoherenceAnalyzer struct {
	extractor *feature.TextExtractor
}

var _ DimensionAnalyzer = &CoherenceAnalyzer{} // Compile-time check

// NewCoherenceAnalyzer creates an RCD analyzer using the shared
// extractor.
func NewCoherenceAnalyzer(extractor *feature.TextExtractor) *CoherenceAnalyzer {
	return &CoherenceAnalyzer{extractor: extractor}
}

// Code returns the dimension code.
func (c *CoherenceAnalyzer) Code() schema.Dimension { return schema.RCD }

// Name returns the full dimension name.
func (c *CoherenceAnalyzer) Name() string { return schema.DimensionName(schema.RCD) }

// RequiredModality returns the modality this analyzer needs.
func (c *CoherenceAnalyzer) RequiredModality() schema.Modality { return schema.TextModality }

// AnalyzeConversation measures reality coherence disruption in one
// conversation.
func (c *CoherenceAnalyzer) AnalyzeConversation(conv *schema.Conversation) (*schema.DimensionReport, error) {
	if err := validateConversation(schema.RCD, schema.TextModality, conv); err != nil {
		return nil, err
	}
	users := conv.UserEvents()
	if len(users) == 0 {
		return nil, errors.New("conversation has no user events to analyze")
	}

	attributionRate := c.attributionRate(users)
	boundaryRate := matchRatePerMessage(rcdBoundaryRes, users)
	relationalRate := matchRatePerMessage(rcdRelationalRes, users)

	indicators := map[string]schema.IndicatorResult{
		"attribution_language_frequency": {
			Name:           "attribution_language_frequency",
			Value:          attributionRate,
			Unit:           "matches_per_turn",
			Confidence:     schema.Float64Ptr(0.90),
			Interpretation: fmt.Sprintf("Attribution language appeared %.2f times per user message", attributionRate),
		},
		"boundary_confusion_indicators": {
			Name:           "boundary_confusion_indicators",
			Value:          boundaryRate,
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.70),
			Interpretation: fmt.Sprintf("%.1f%% of user messages (%d total) contained boundary confusion patterns", boundaryRate*100, len(users)),
		},
		"relational_framing": {
			Name:           "relational_framing",
			Value:          relationalRate,
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.85),
			Interpretation: fmt.Sprintf("%.1f%% of user messages used relational language (we/us/our)", relationalRate*100),
		},
	}

	return &schema.DimensionReport{
		Dimension:  schema.RCD,
		Version:    schema.Version,
		Indicators: indicators,
		Summary:    rcdDescribe(attributionRate, boundaryRate, relationalRate),
		MethodologyNotes: "Computed using pattern matching for attribution language and relational framing. " +
			"Attribution language detects phrases that attribute consciousness, " +
			"understanding, memory, or emotions to AI. Boundary confusion detects " +
			"statements conflating AI capabilities with human capabilities. " +
			"Relational framing detects language treating the interaction as a " +
			"relationship rather than tool use.",
		Citations: []string{
			"Lipińska & Krzanowski (2025). The Ontological Dissonance Hypothesis. arXiv:2512.11818",
			"Bengio & Elmoznino (2025). Illusions of AI Consciousness. Science",
			"Au Yeung et al. (2025). Psychosis-bench",
		},
	}, nil
}

// AnalyzeCorpus fits attribution and relational framing trajectories
// across the corpus timeline.
func (c *CoherenceAnalyzer) AnalyzeCorpus(corpus *schema.Corpus) (*schema.DimensionReport, error) {
	if len(corpus.Conversations) == 0 {
		return nil, errors.New("cannot analyze empty corpus")
	}

	var attributionRates, boundaryRates, relationalRates []float64
	var timestamps []time.Time
	for i := range corpus.Conversations {
		conv := &corpus.Conversations[i]
		users := conv.UserEvents()
		if len(users) == 0 {
			continue
		}
		attributionRates = append(attributionRates, c.attributionRate(users))
		boundaryRates = append(boundaryRates, matchRatePerMessage(rcdBoundaryRes, users))
		relationalRates = append(relationalRates, matchRatePerMessage(rcdRelationalRes, users))
		timestamps = append(timestamps, conv.Events[0].Timestamp)
	}

	attributionTraj := feature.IndicatorTrajectory(attributionRates, timestamps)
	relationalTraj := feature.IndicatorTrajectory(relationalRates, timestamps)

	indicators := map[string]schema.IndicatorResult{
		"attribution_language_frequency": {
			Name:           "attribution_language_frequency",
			Value:          attributionTraj.SlopeOrZero(),
			Baseline:       schema.Float64Ptr(0.0), // Neutral: no change
			Unit:           "slope_per_conversation",
			Confidence:     schema.Float64Ptr(0.85),
			Interpretation: fmt.Sprintf("Trend: %s, final rate: %.2f per turn", attributionTraj.Trend, lastOf(attributionRates)),
		},
		"boundary_confusion_indicators": {
			Name:           "boundary_confusion_indicators",
			Value:          lastOf(boundaryRates),
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.70),
			Interpretation: fmt.Sprintf("Final rate: %.1f%% of messages show boundary confusion", lastOf(boundaryRates)*100),
		},
		"relational_framing": {
			Name:           "relational_framing",
			Value:          relationalTraj.SlopeOrZero(),
			Baseline:       schema.Float64Ptr(0.0), // Neutral: no change
			Unit:           "slope_per_conversation",
			Confidence:     schema.Float64Ptr(0.85),
			Interpretation: fmt.Sprintf("Trend: %s, final rate: %.1f%%", relationalTraj.Trend, lastOf(relationalRates)*100),
		},
	}

	return &schema.DimensionReport{
		Dimension:        schema.RCD,
		Version:          schema.Version,
		Indicators:       indicators,
		Summary:          rcdDescribe(lastOf(attributionRates), lastOf(boundaryRates), lastOf(relationalRates)),
		MethodologyNotes: "Corpus-level analysis with trajectory computation across conversations.",
		Citations: []string{
			"Lipińska & Krzanowski (2025). The Ontological Dissonance Hypothesis",
			"Bengio & Elmoznino (2025). Illusions of AI Consciousness",
		},
	}, nil
}

// rcdDescribe renders the factual description shared by conversation and
// corpus summaries.
func rcdDescribe(attributionRate, boundaryRate, relationalRate float64) string {
	return fmt.Sprintf(
		"Reality Coherence Disruption analysis examined patterns of anthropomorphization "+
			"and boundary confusion in user language. Attribution language (phrases attributing "+
			"consciousness, emotions, or understanding to AI) appeared %.2f times per user message. "+
			"Boundary confusion indicators (conflating AI capabilities with human capabilities) "+
			"appeared in %.1f%% of user messages. Relational framing language (we/us/our, treating "+
			"interaction as a relationship) appeared in %.1f%% of user messages.",
		attributionRate, boundaryRate*100, relationalRate*100)
}

// attributionRate averages attribution phrase matches per user message.
func (c *CoherenceAnalyzer) attributionRate(users []schema.InteractionEvent) float64 {
	matches := 0
	for _, event := range users {
		if !event.HasText() {
			continue
		}
		matches += len(c.extractor.AttributionMatches(event.TextContent))
	}
	return float64(matches) / float64(len(users))
}

// matchRatePerMessage counts user messages matching any pattern, at most
// once per message, over all user events.
func matchRatePerMessage(res []*regexp.Regexp, users []schema.InteractionEvent) float64 {
	matched := 0
	for _, event := range users {
		if !event.HasText() {
			continue
		}
		if matchesAny(res, strings.ToLower(event.TextContent)) {
			matched++
		}
	}
	return float64(matched) / float64(len(users))
}
