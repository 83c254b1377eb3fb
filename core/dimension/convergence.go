package dimension

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/entrain-io/entrain/core/feature"
	"github.com/entrain-io/entrain/schema"
)

// ConvergenceAnalyzer measures Linguistic Convergence (LC): shifts in
// the user's writing toward AI-characteristic patterns, covering
// vocabulary overlap, hedging adoption, sentence length, structural
// formatting and lexical diversity.
type ConvergenceAnalyzer struct {
	extractor *feature.TextExtractor
}

var _ DimensionAnalyzer = &ConvergenceAnalyzer{} // Compile-time check

// NewConvergenceAnalyzer creates an LC analyzer using the shared
// extractor.
func NewConvergenceAnalyzer(extractor *feature.TextExtractor) *ConvergenceAnalyzer {
	return &ConvergenceAnalyzer{extractor: extractor}
}

// Code returns the dimension code.
func (c *ConvergenceAnalyzer) Code() schema.Dimension { return schema.LC }

// Name returns the full dimension name.
func (c *ConvergenceAnalyzer) Name() string { return schema.DimensionName(schema.LC) }

// RequiredModality returns the modality this analyzer needs.
func (c *ConvergenceAnalyzer) RequiredModality() schema.Modality { return schema.TextModality }

// lcVocabularyStats summarizes per-turn vocabulary overlap with the
// assistant.
type lcVocabularyStats struct {
	overlaps []float64
	final    float64
	mean     float64
	trend    schema.Trend
}

// lcHedgingStats summarizes hedging phrase density in user text.
type lcHedgingStats struct {
	rate   float64 // hedges per 100 words
	change float64 // late-half rate minus early-half rate
}

// lcSentenceStats summarizes sentence length convergence.
type lcSentenceStats struct {
	score         float64
	userMean      float64
	assistantMean float64
}

// lcTTRStats summarizes type-token ratio per user turn.
type lcTTRStats struct {
	final float64
	mean  float64
	trend schema.Trend
}

// AnalyzeConversation measures linguistic convergence in one
// conversation.
func (c *ConvergenceAnalyzer) AnalyzeConversation(conv *schema.Conversation) (*schema.DimensionReport, error) {
	if err := validateConversation(schema.LC, schema.TextModality, conv); err != nil {
		return nil, err
	}
	users := conv.UserEvents()
	assistants := conv.AssistantEvents()
	if len(users) == 0 || len(assistants) == 0 {
		return nil, errors.New("conversation must have both user and assistant turns")
	}

	vocab := c.vocabularyOverlap(conv)
	hedging := c.hedgingAdoption(users)
	sentence := sentenceConvergence(users, assistants)
	formattingRate := formattingAdoption(users)
	ttr := ttrTrajectory(users)

	indicators := map[string]schema.IndicatorResult{
		"vocabulary_overlap_trajectory": {
			Name:           "vocabulary_overlap_trajectory",
			Value:          vocab.final,
			Unit:           "jaccard_similarity",
			Confidence:     schema.Float64Ptr(0.80),
			Interpretation: fmt.Sprintf("Vocabulary overlap: %.1f%%, trend: %s", vocab.final*100, vocab.trend),
		},
		"hedging_pattern_adoption": {
			Name:           "hedging_pattern_adoption",
			Value:          hedging.rate,
			Unit:           "hedges_per_100_words",
			Confidence:     schema.Float64Ptr(0.85),
			Interpretation: fmt.Sprintf("Hedging rate: %.2f per 100 words (change: %+.1f)", hedging.rate, hedging.change),
		},
		"sentence_length_convergence": {
			Name:           "sentence_length_convergence",
			Value:          sentence.score,
			Unit:           "convergence_ratio",
			Confidence:     schema.Float64Ptr(0.75),
			Interpretation: fmt.Sprintf("Convergence score: %.2f", sentence.score),
		},
		"structural_formatting_adoption": {
			Name:           "structural_formatting_adoption",
			Value:          formattingRate,
			Baseline:       schema.Float64Ptr(0.05), // Typical human writing: ~5% of messages
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.90),
			Interpretation: fmt.Sprintf("Structural formatting in %.1f%% of messages", formattingRate*100),
		},
		"type_token_ratio_trajectory": {
			Name:           "type_token_ratio_trajectory",
			Value:          ttr.final,
			Baseline:       schema.Float64Ptr(0.50), // Typical human conversational writing
			Unit:           "ttr",
			Confidence:     schema.Float64Ptr(0.80),
			Interpretation: fmt.Sprintf("Type-Token Ratio: %.3f, trend: %s", ttr.final, ttr.trend),
		},
	}

	return &schema.DimensionReport{
		Dimension:  schema.LC,
		Version:    schema.Version,
		Indicators: indicators,
		Summary:    lcDescribe(vocab.final, vocab.trend, hedging.rate, sentence, formattingRate, ttr.final, ttr.trend),
		MethodologyNotes: "Computed using text feature extraction and trajectory analysis. " +
			"Vocabulary overlap measured via Jaccard similarity between user and " +
			"assistant vocabularies across conversation turns. Hedging patterns " +
			"detected via pattern matching against LLM-characteristic phrases. " +
			"Sentence length convergence measured as ratio of user/assistant mean " +
			"sentence lengths. Structural formatting detected via regex patterns. " +
			"TTR trajectory computed per user turn over conversation timeline.",
		Citations: lcCitations(),
	}, nil
}

// AnalyzeCorpus computes longitudinal convergence trajectories across
// the corpus timeline rather than aggregating per-conversation reports.
func (c *ConvergenceAnalyzer) AnalyzeCorpus(corpus *schema.Corpus) (*schema.DimensionReport, error) {
	if len(corpus.Conversations) == 0 {
		return nil, errors.New("cannot analyze empty corpus")
	}

	vocabTraj := c.corpusVocabularyTrajectory(corpus)
	hedgingFinal, hedgingTrend := c.corpusHedgingTrend(corpus)
	ttrTraj := c.corpusTTRTrajectory(corpus)
	formattingRate := corpusFormattingAdoption(corpus)
	sentenceScore := corpusSentenceConvergence(corpus)

	indicators := map[string]schema.IndicatorResult{
		"vocabulary_overlap_trajectory": {
			Name:           "vocabulary_overlap_trajectory",
			Value:          vocabTraj.SlopeOrZero(),
			Baseline:       schema.Float64Ptr(0.0), // Neutral: no change
			Unit:           "slope_per_conversation",
			Confidence:     schema.Float64Ptr(0.85),
			Interpretation: fmt.Sprintf("Vocabulary overlap trend: %s, slope=%.4f", vocabTraj.Trend, vocabTraj.SlopeOrZero()),
		},
		"hedging_pattern_adoption": {
			Name:           "hedging_pattern_adoption",
			Value:          hedgingFinal,
			Unit:           "hedges_per_100_words",
			Confidence:     schema.Float64Ptr(0.85),
			Interpretation: fmt.Sprintf("Final hedging rate: %.2f, trend: %s", hedgingFinal, hedgingTrend),
		},
		"sentence_length_convergence": {
			Name:           "sentence_length_convergence",
			Value:          sentenceScore,
			Unit:           "convergence_ratio",
			Confidence:     schema.Float64Ptr(0.75),
			Interpretation: fmt.Sprintf("Sentence length convergence across corpus: %.3f", sentenceScore),
		},
		"structural_formatting_adoption": {
			Name:           "structural_formatting_adoption",
			Value:          formattingRate,
			Baseline:       schema.Float64Ptr(0.05),
			Unit:           "proportion",
			Confidence:     schema.Float64Ptr(0.90),
			Interpretation: fmt.Sprintf("Structural formatting in %.1f%% of user messages (baseline: 5%%)", formattingRate*100),
		},
		"type_token_ratio_trajectory": {
			Name:           "type_token_ratio_trajectory",
			Value:          ttrTraj.SlopeOrZero(),
			Baseline:       schema.Float64Ptr(0.0), // Neutral: no change
			Unit:           "slope_per_conversation",
			Confidence:     schema.Float64Ptr(0.80),
			Interpretation: fmt.Sprintf("TTR trend: %s, slope=%.4f", ttrTraj.Trend, ttrTraj.SlopeOrZero()),
		},
	}

	summary := fmt.Sprintf("Longitudinal linguistic convergence analysis across %d conversations. ", len(corpus.Conversations)) +
		lcDescribe(vocabTraj.SlopeOrZero(), vocabTraj.Trend, hedgingFinal,
			lcSentenceStats{score: sentenceScore}, formattingRate, ttrTraj.SlopeOrZero(), ttrTraj.Trend)

	return &schema.DimensionReport{
		Dimension:  schema.LC,
		Version:    schema.Version,
		Indicators: indicators,
		Summary:    summary,
		MethodologyNotes: "Corpus-level analysis computing trajectories across conversation timeline. " +
			"Vocabulary, hedging, and TTR trajectories use linear regression to detect trends.",
		Citations: lcCitations(),
	}, nil
}

// lcDescribe renders the factual description shared by conversation and
// corpus summaries. Corpus reports substitute slopes for final values
// and zero for the per-conversation sentence means.
func lcDescribe(finalOverlap float64, overlapTrend schema.Trend, hedgingRate float64, sentence lcSentenceStats, formattingRate, finalTTR float64, ttrTrend schema.Trend) string {
	return fmt.Sprintf(
		"Linguistic Convergence analysis examined shifts in writing patterns across the conversation. "+
			"Vocabulary overlap with AI reached %.1f%% (trend: %s). "+
			"User text contained %.2f AI-characteristic hedging phrases per 100 words. "+
			"Sentence length convergence score was %.2f (user mean: %.1f words, AI mean: %.1f words). "+
			"Structural formatting (lists, bullet points) appeared in %.1f%% of user messages. "+
			"Type-Token Ratio was %.3f with %s trend.",
		finalOverlap*100, overlapTrend, hedgingRate, sentence.score, sentence.userMean,
		sentence.assistantMean, formattingRate*100, finalTTR, ttrTrend)
}

func lcCitations() []string {
	return []string{
		"Pickering & Garrod (2004). Toward a mechanistic psychology of dialogue",
		"Can Large Language Models Simulate Spoken Human Conversations? (2025)",
	}
}

// vocabularyOverlap computes Jaccard similarity of each user turn's
// vocabulary against the assistant's full vocabulary.
func (c *ConvergenceAnalyzer) vocabularyOverlap(conv *schema.Conversation) lcVocabularyStats {
	assistantVocab := make(map[string]struct{})
	for _, event := range conv.AssistantEvents() {
		if !event.HasText() {
			continue
		}
		for word := range feature.Vocabulary(event.TextContent) {
			assistantVocab[word] = struct{}{}
		}
	}

	var overlaps []float64
	for _, event := range conv.UserEvents() {
		if !event.HasText() {
			continue
		}
		userVocab := feature.Vocabulary(event.TextContent)
		if len(userVocab) == 0 || len(assistantVocab) == 0 {
			continue
		}
		intersection := 0
		for word := range userVocab {
			if _, ok := assistantVocab[word]; ok {
				intersection++
			}
		}
		union := len(userVocab) + len(assistantVocab) - intersection
		overlaps = append(overlaps, float64(intersection)/float64(union))
	}

	if len(overlaps) == 0 {
		return lcVocabularyStats{trend: schema.InsufficientDataTrend}
	}

	trend := schema.InsufficientDataTrend
	if len(overlaps) >= 3 {
		half := len(overlaps) / 2
		trend = schema.StableTrend
		if meanOf(overlaps[half:]) > meanOf(overlaps[:half])*1.1 {
			trend = schema.IncreasingTrend
		}
	}

	return lcVocabularyStats{
		overlaps: overlaps,
		final:    lastOf(overlaps),
		mean:     meanOf(overlaps),
		trend:    trend,
	}
}

// hedgingAdoption computes hedging phrase density per 100 words and the
// change between the early and late halves of the conversation.
func (c *ConvergenceAnalyzer) hedgingAdoption(users []schema.InteractionEvent) lcHedgingStats {
	totalWords, totalHedges := 0, 0
	earlyRate, lateRate := 0.0, 0.0
	midpoint := len(users) / 2

	for i, event := range users {
		if !event.HasText() {
			continue
		}
		hedges := len(c.extractor.HedgingMatches(event.TextContent))
		words := len(strings.Fields(event.TextContent))
		totalHedges += hedges
		totalWords += words

		if words == 0 {
			continue
		}
		if i < midpoint {
			earlyRate += float64(hedges) / float64(words) * 100
		} else {
			lateRate += float64(hedges) / float64(words) * 100
		}
	}

	rate := 0.0
	if totalWords > 0 {
		rate = float64(totalHedges) / float64(totalWords) * 100
	}
	if midpoint > 0 {
		earlyRate /= float64(midpoint)
		lateCount := len(users) - midpoint
		if lateCount == 0 {
			lateCount = 1
		}
		lateRate /= float64(lateCount)
	}

	return lcHedgingStats{rate: rate, change: lateRate - earlyRate}
}

// sentenceConvergence scores how close user mean sentence length is to
// the assistant's. 1.0 is a perfect match; deviations reduce the score.
func sentenceConvergence(users, assistants []schema.InteractionEvent) lcSentenceStats {
	var userLens, assistantLens []int
	for _, event := range users {
		if event.HasText() {
			userLens = append(userLens, feature.SentenceLengths(event.TextContent)...)
		}
	}
	for _, event := range assistants {
		if event.HasText() {
			assistantLens = append(assistantLens, feature.SentenceLengths(event.TextContent)...)
		}
	}
	if len(userLens) == 0 || len(assistantLens) == 0 {
		return lcSentenceStats{}
	}

	userMean := meanOfInts(userLens)
	assistantMean := meanOfInts(assistantLens)
	score := 0.0
	if assistantMean != 0 {
		ratio := userMean / assistantMean
		score = 1.0 - math.Min(math.Abs(1.0-ratio), 1.0)
	}
	return lcSentenceStats{score: score, userMean: userMean, assistantMean: assistantMean}
}

// formattingAdoption counts user messages containing any structural
// formatting, over all user events.
func formattingAdoption(users []schema.InteractionEvent) float64 {
	if len(users) == 0 {
		return 0.0
	}
	formatted := 0
	for _, event := range users {
		if !event.HasText() {
			continue
		}
		if feature.CountStructuralFormatting(event.TextContent).Total() > 0 {
			formatted++
		}
	}
	return float64(formatted) / float64(len(users))
}

// ttrTrajectory computes type-token ratio per user turn. A decreasing
// TTR suggests narrowing vocabulary.
func ttrTrajectory(users []schema.InteractionEvent) lcTTRStats {
	var ttrs []float64
	for _, event := range users {
		if event.HasText() {
			ttrs = append(ttrs, feature.TypeTokenRatio(event.TextContent))
		}
	}
	if len(ttrs) == 0 {
		return lcTTRStats{trend: schema.InsufficientDataTrend}
	}

	trend := schema.InsufficientDataTrend
	if len(ttrs) >= 3 {
		half := len(ttrs) / 2
		early := meanOf(ttrs[:half])
		late := meanOf(ttrs[half:])
		switch {
		case late < early*0.9:
			trend = schema.DecreasingTrend
		case late > early*1.1:
			trend = schema.IncreasingTrend
		default:
			trend = schema.StableTrend
		}
	}
	return lcTTRStats{final: lastOf(ttrs), mean: meanOf(ttrs), trend: trend}
}

// corpusVocabularyTrajectory fits per-conversation mean overlap over the
// corpus timeline.
func (c *ConvergenceAnalyzer) corpusVocabularyTrajectory(corpus *schema.Corpus) schema.Trajectory {
	var values []float64
	var timestamps []time.Time
	for i := range corpus.Conversations {
		conv := &corpus.Conversations[i]
		if len(conv.UserEvents()) == 0 || len(conv.AssistantEvents()) == 0 {
			continue
		}
		values = append(values, c.vocabularyOverlap(conv).mean)
		timestamps = append(timestamps, conv.Events[0].Timestamp)
	}
	return feature.IndicatorTrajectory(values, timestamps)
}

// corpusHedgingTrend tracks the overall hedging rate per conversation
// and flags an increase when the last rate exceeds the first by 20%.
func (c *ConvergenceAnalyzer) corpusHedgingTrend(corpus *schema.Corpus) (float64, schema.Trend) {
	var rates []float64
	for i := range corpus.Conversations {
		rates = append(rates, c.hedgingAdoption(corpus.Conversations[i].UserEvents()).rate)
	}
	if len(rates) == 0 {
		return 0.0, schema.InsufficientDataTrend
	}
	trend := schema.StableTrend
	if rates[len(rates)-1] > rates[0]*1.2 {
		trend = schema.IncreasingTrend
	}
	return lastOf(rates), trend
}

// corpusTTRTrajectory fits per-conversation mean TTR over the corpus
// timeline, skipping conversations with no measurable user text.
func (c *ConvergenceAnalyzer) corpusTTRTrajectory(corpus *schema.Corpus) schema.Trajectory {
	var values []float64
	var timestamps []time.Time
	for i := range corpus.Conversations {
		conv := &corpus.Conversations[i]
		stats := ttrTrajectory(conv.UserEvents())
		if stats.mean > 0 {
			values = append(values, stats.mean)
			timestamps = append(timestamps, conv.Events[0].Timestamp)
		}
	}
	return feature.IndicatorTrajectory(values, timestamps)
}

// corpusFormattingAdoption counts formatted user messages over all user
// messages with text across the corpus.
func corpusFormattingAdoption(corpus *schema.Corpus) float64 {
	total, formatted := 0, 0
	for i := range corpus.Conversations {
		for _, event := range corpus.Conversations[i].UserEvents() {
			if !event.HasText() {
				continue
			}
			total++
			if feature.CountStructuralFormatting(event.TextContent).Total() > 0 {
				formatted++
			}
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(formatted) / float64(total)
}

// corpusSentenceConvergence averages the per-conversation convergence
// score over every conversation.
func corpusSentenceConvergence(corpus *schema.Corpus) float64 {
	var scores []float64
	for i := range corpus.Conversations {
		conv := &corpus.Conversations[i]
		scores = append(scores, sentenceConvergence(conv.UserEvents(), conv.AssistantEvents()).score)
	}
	return meanOf(scores)
}
