// Package dimension implements the six behavioral dimension analyzers.
// Each analyzer measures one class of interaction pattern and emits a
// DimensionReport with named indicators. Text analyzers share a single
// TextExtractor; the prosodic analyzer works on acoustic features alone.
package dimension

import (
	"errors"
	"fmt"

	"github.com/entrain-io/entrain/core/feature"
	"github.com/entrain-io/entrain/schema"
)

// DimensionAnalyzer is implemented by every dimension analyzer.
type DimensionAnalyzer interface {
	// Code returns the dimension code, e.g. schema.SR.
	Code() schema.Dimension

	// Name returns the full human-readable dimension name.
	Name() string

	// RequiredModality returns the input modality the analyzer needs.
	RequiredModality() schema.Modality

	// AnalyzeConversation produces a report for a single conversation.
	AnalyzeConversation(conv *schema.Conversation) (*schema.DimensionReport, error)

	// AnalyzeCorpus produces a longitudinal report across conversations.
	AnalyzeCorpus(corpus *schema.Corpus) (*schema.DimensionReport, error)
}

// NewAnalyzer returns the analyzer for dim. The extractor is shared by
// the text analyzers that match against phrase lexicons; the remaining
// analyzers ignore it.
func NewAnalyzer(dim schema.Dimension, extractor *feature.TextExtractor) (DimensionAnalyzer, error) {
	switch dim {
	case schema.SR:
		return NewSycophancyAnalyzer(extractor), nil
	case schema.LC:
		return NewConvergenceAnalyzer(extractor), nil
	case schema.AE:
		return NewAutonomyAnalyzer(), nil
	case schema.RCD:
		return NewCoherenceAnalyzer(extractor), nil
	case schema.DF:
		return NewDependencyAnalyzer(), nil
	case schema.PE:
		return NewEntrainmentAnalyzer(), nil
	default:
		return nil, fmt.Errorf("unknown dimension: %s", dim)
	}
}

// NewAnalyzers resolves a dimension selection into analyzer instances,
// preserving order.
func NewAnalyzers(dims []schema.Dimension, extractor *feature.TextExtractor) ([]DimensionAnalyzer, error) {
	analyzers := make([]DimensionAnalyzer, 0, len(dims))
	for _, dim := range dims {
		analyzer, err := NewAnalyzer(dim, extractor)
		if err != nil {
			return nil, err
		}
		analyzers = append(analyzers, analyzer)
	}
	return analyzers, nil
}

// AggregateReports merges per-conversation reports from a into one
// mean-aggregated report. Callers that run their own conversation loop
// use this to get the same aggregation AnalyzeCorpus produces.
func AggregateReports(a DimensionAnalyzer, reports []*schema.DimensionReport) (*schema.DimensionReport, error) {
	if len(reports) == 0 {
		return nil, errors.New("no reports to aggregate")
	}
	return aggregateReports(a, reports), nil
}
