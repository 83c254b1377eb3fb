package dimension

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
)

// compileAll compiles a pattern list at package init. Patterns are
// written lowercase; callers lower the text before matching.
func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// matchesAny reports whether any pattern matches the text.
func matchesAny(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// validateConversation checks that a conversation carries the modality an
// analyzer needs before any measurement runs.
func validateConversation(code schema.Dimension, modality schema.Modality, conv *schema.Conversation) error {
	switch modality {
	case schema.TextModality:
		if !conv.HasTextContent() {
			return fmt.Errorf("%s analyzer requires text content, but conversation has no text", code)
		}
	case schema.AudioModality:
		if !conv.HasAudioFeatures() {
			return fmt.Errorf("%s analyzer requires audio features, but conversation has no audio", code)
		}
	case schema.BothModality:
		if !conv.HasTextContent() || !conv.HasAudioFeatures() {
			return fmt.Errorf("%s analyzer requires both text and audio, but conversation is missing one or both", code)
		}
	}
	return nil
}

// analyzeCorpusByAggregation is the default corpus strategy: analyze each
// conversation independently and aggregate indicator values by mean.
// Analyzers with true longitudinal indicators override AnalyzeCorpus
// instead of using this.
func analyzeCorpusByAggregation(a DimensionAnalyzer, corpus *schema.Corpus) (*schema.DimensionReport, error) {
	if len(corpus.Conversations) == 0 {
		return nil, errors.New("cannot analyze empty corpus")
	}

	var reports []*schema.DimensionReport
	for i := range corpus.Conversations {
		conv := &corpus.Conversations[i]
		report, err := a.AnalyzeConversation(conv)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to analyze conversation %s", conv.ID), err)
			continue
		}
		reports = append(reports, report)
	}
	if len(reports) == 0 {
		return nil, errors.New("no conversations could be analyzed")
	}

	return aggregateReports(a, reports), nil
}

// aggregateReports merges per-conversation reports into one corpus report.
// Indicator metadata (baseline, unit, confidence) is carried from the
// first report; values are averaged across all reports that measured the
// indicator.
func aggregateReports(a DimensionAnalyzer, reports []*schema.DimensionReport) *schema.DimensionReport {
	first := reports[0]

	names := make([]string, 0, len(first.Indicators))
	for name := range first.Indicators {
		names = append(names, name)
	}
	sort.Strings(names)

	indicators := make(map[string]schema.IndicatorResult, len(names))
	for _, name := range names {
		var values []float64
		for _, report := range reports {
			if ind, ok := report.Indicators[name]; ok {
				values = append(values, ind.Value)
			}
		}
		if len(values) == 0 {
			continue
		}
		total := 0.0
		for _, v := range values {
			total += v
		}
		mean := total / float64(len(values))

		template := first.Indicators[name]
		indicators[name] = schema.IndicatorResult{
			Name:           name,
			Value:          mean,
			Baseline:       template.Baseline,
			Unit:           template.Unit,
			Confidence:     template.Confidence,
			Interpretation: fmt.Sprintf("Mean across %d conversations: %.3f", len(reports), mean),
		}
	}

	return &schema.DimensionReport{
		Dimension:        a.Code(),
		Version:          schema.Version,
		Indicators:       indicators,
		Summary:          fmt.Sprintf("Aggregated %s analysis across %d conversations", a.Name(), len(reports)),
		MethodologyNotes: fmt.Sprintf("Computed per-conversation and aggregated (mean). Based on %s analyzer v%s", a.Code(), schema.Version),
		Citations:        first.Citations,
	}
}

// meanOf returns the arithmetic mean, or 0.0 for an empty slice.
func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// lastOf returns the last element, or 0.0 for an empty slice.
func lastOf(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return values[len(values)-1]
}

// meanOfInts returns the arithmetic mean of an int slice. Callers
// guarantee a non-empty slice.
func meanOfInts(values []int) float64 {
	total := 0
	for _, v := range values {
		total += v
	}
	return float64(total) / float64(len(values))
}
