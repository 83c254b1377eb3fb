package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/entrain-io/entrain/core/cross"
	"github.com/entrain-io/entrain/core/dimension"
	"github.com/entrain-io/entrain/core/feature"
	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/internal/parse"
	"github.com/entrain-io/entrain/schema"
)

// conversationResult carries one conversation's dimension reports out of
// the worker pool. The index preserves corpus order for trend building.
type conversationResult struct {
	index int
	id    string
	dims  map[schema.Dimension]*schema.DimensionReport
}

// loadCorpus parses the configured export file and tags it with the
// subject identifier.
func loadCorpus(registry *parse.Registry, cfg *contract.Config) (*schema.Corpus, error) {
	corpus, err := registry.Parse(cfg.InputPath, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	if len(corpus.Conversations) == 0 {
		return nil, errors.New("export contains no conversations")
	}
	corpus.UserID = cfg.UserID
	return corpus, nil
}

// logAssessmentHeader prints the run header before analysis starts.
func logAssessmentHeader(cfg *contract.Config, corpus *schema.Corpus) {
	fileName := filepath.Base(cfg.InputPath)
	if fileName == "" || fileName == "." {
		fileName = cfg.InputPath
	}

	// Line 1: The assessment summary (input and scope)
	fmt.Printf("🔎 Input: %s (source: %s, scope: %s)\n", fileName, cfg.Source, cfg.Scope)

	// Line 2: The actual date range being analyzed
	if corpus.DateRange != nil {
		fmt.Printf("📅 Range: %s → %s\n",
			corpus.DateRange.Start.Format(contract.DateTimeFormat),
			corpus.DateRange.End.Format(contract.DateTimeFormat))
	}
}

// runAssessmentCore performs the common Tracking, Caching and Analysis steps.
func runAssessmentCore(ctx context.Context, cfg *contract.Config, corpus *schema.Corpus, mgr contract.CacheManager) (*schema.AssessmentOutput, error) {
	if !shouldSuppressHeader(ctx) {
		logAssessmentHeader(cfg, corpus)
	}

	// --- 0. Begin Run Tracking (if configured) ---
	var assessmentID int64
	store := assessmentStore(mgr)
	if store != nil {
		id, err := store.BeginAssessment(time.Now(), string(cfg.Source), cfg.Scope,
			int32(len(corpus.Conversations)), int32(corpus.EventCount()))
		if err != nil {
			contract.LogWarn("Assessment tracking initialization failed", err)
		} else if id > 0 {
			assessmentID = id
		}
	}

	// --- 1. Analysis Phase (with caching) ---
	output, err := cachedAssessment(ctx, cfg, corpus, mgr)
	if err != nil {
		return nil, err
	}

	// --- 2. End Run Tracking ---
	if store != nil && assessmentID > 0 {
		finishAssessment(store, assessmentID, output)
	}

	return output, nil
}

// finishAssessment records per-dimension scores and finalizes the run.
// Tracking failures are warnings; the analysis result is already in hand.
func finishAssessment(store contract.AssessmentStore, assessmentID int64, output *schema.AssessmentOutput) {
	now := time.Now()
	report := output.Report

	for _, dim := range report.SortedDimensions() {
		rep := report.Dimensions[dim]
		summary := rep.Summary
		record := schema.DimensionScoreRecord{
			AssessmentID:   assessmentID,
			Dimension:      dim,
			AnalysisTime:   now,
			Score:          rep.Score(),
			IndicatorCount: int32(len(rep.Indicators)),
			Summary:        &summary,
		}
		if err := store.RecordDimensionScore(assessmentID, record); err != nil {
			contract.LogWarn(fmt.Sprintf("Assessment tracking failed for %s score", dim), err)
		}
	}

	// Risk columns stay NULL when cross-dimensional analysis was off
	var riskScore float64
	var riskLevel schema.RiskLevel
	if report.CrossDimensional != nil {
		riskScore = report.CrossDimensional.RiskScore.Score
		riskLevel = report.CrossDimensional.RiskScore.Level
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		contract.LogWarn("Failed to serialize report for tracking", err)
		reportJSON = nil
	}

	if err := store.EndAssessment(assessmentID, now, riskScore, riskLevel, string(reportJSON)); err != nil {
		contract.LogWarn("Failed to finalize assessment tracking", err)
	}
}

// computeAssessment runs the selected analyzers over the corpus at the
// configured scope and assembles the final report.
func computeAssessment(ctx context.Context, cfg *contract.Config, corpus *schema.Corpus) (*schema.AssessmentOutput, error) {
	extractor := feature.NewTextExtractor()
	analyzers, err := dimension.NewAnalyzers(cfg.Dimensions, extractor)
	if err != nil {
		return nil, err
	}

	analyzers, err = filterByModality(analyzers, corpus)
	if err != nil {
		return nil, err
	}

	report := schema.NewEntrainReport(buildInputSummary(cfg, corpus), methodologyText(analyzers))

	var trend []schema.ConversationTrendPoint

	if cfg.Scope == schema.CorpusScope {
		dimReports := analyzeCorpusDimensions(cfg, analyzers, corpus)
		if len(dimReports) == 0 {
			return nil, errors.New("no dimensions completed successfully")
		}
		for dim, rep := range dimReports {
			report.Dimensions[dim] = rep
		}
		if cfg.CrossDimensional {
			report.CrossDimensional = cross.NewAnalyzer(cfg.Weights, cfg.RiskThresholds).Analyze(report)
		}
	} else {
		results := analyzeConversations(cfg, analyzers, corpus)
		if len(results) == 0 {
			return nil, errors.New("no conversations could be analyzed")
		}

		trend = buildTrend(results)

		finalDims := aggregateAcrossConversations(ctx, analyzers, corpus, results)
		if len(finalDims) == 0 {
			return nil, errors.New("no dimensions completed successfully")
		}
		for dim, rep := range finalDims {
			report.Dimensions[dim] = rep
		}
		if cfg.CrossDimensional {
			samples := perConversationReports(results)
			report.CrossDimensional = cross.NewAnalyzer(cfg.Weights, cfg.RiskThresholds).AnalyzeCorpus(samples)
		}
	}

	return &schema.AssessmentOutput{Report: report, Trend: trend}, nil
}

// filterByModality drops analyzers whose required modality is absent from
// the whole corpus. A partial corpus is fine; per-conversation modality
// checks happen inside the analyzers. Errors only when nothing remains.
func filterByModality(analyzers []dimension.DimensionAnalyzer, corpus *schema.Corpus) ([]dimension.DimensionAnalyzer, error) {
	hasText, hasAudio := corpusModalities(corpus)

	kept := make([]dimension.DimensionAnalyzer, 0, len(analyzers))
	for _, analyzer := range analyzers {
		switch analyzer.RequiredModality() {
		case schema.TextModality:
			if !hasText {
				contract.LogNotice(fmt.Sprintf("Skipping %s: corpus has no text content", analyzer.Code()))
				continue
			}
		case schema.AudioModality:
			if !hasAudio {
				contract.LogNotice(fmt.Sprintf("Skipping %s: corpus has no audio features", analyzer.Code()))
				continue
			}
		case schema.BothModality:
			if !hasText || !hasAudio {
				contract.LogNotice(fmt.Sprintf("Skipping %s: corpus lacks a required modality", analyzer.Code()))
				continue
			}
		}
		kept = append(kept, analyzer)
	}

	if len(kept) == 0 {
		codes := make([]string, len(analyzers))
		for i, a := range analyzers {
			codes[i] = string(a.Code())
		}
		return nil, fmt.Errorf("none of the selected dimensions (%s) can analyze this corpus: required modalities are missing",
			strings.Join(codes, ", "))
	}
	return kept, nil
}

// corpusModalities reports which modalities appear anywhere in the corpus.
func corpusModalities(corpus *schema.Corpus) (hasText, hasAudio bool) {
	for i := range corpus.Conversations {
		conv := &corpus.Conversations[i]
		if conv.HasTextContent() {
			hasText = true
		}
		if conv.HasAudioFeatures() {
			hasAudio = true
		}
		if hasText && hasAudio {
			return true, true
		}
	}
	return hasText, hasAudio
}

// analyzeConversations processes all conversations in parallel using a
// worker pool. It spawns cfg.Workers goroutines and collects the
// per-conversation dimension reports, restoring corpus order at the end.
func analyzeConversations(cfg *contract.Config, analyzers []dimension.DimensionAnalyzer, corpus *schema.Corpus) []conversationResult {
	convCh := make(chan int, len(corpus.Conversations))
	resultCh := make(chan conversationResult, len(corpus.Conversations))
	var wg sync.WaitGroup

	// Start worker pool
	workers := max(cfg.Workers, 1)
	for range workers {
		wg.Go(func() {
			for idx := range convCh {
				conv := &corpus.Conversations[idx]
				dims := analyzeOneConversation(analyzers, conv)
				if len(dims) == 0 {
					contract.LogWarn(fmt.Sprintf("Skipping conversation %s", conv.ID),
						errors.New("no dimension produced a report"))
					continue
				}
				resultCh <- conversationResult{index: idx, id: conv.ID, dims: dims}
			}
		})
	}

	// Send conversations to worker channel
	for idx := range corpus.Conversations {
		convCh <- idx
	}
	close(convCh)

	// Wait for all workers to finish processing
	wg.Wait()
	close(resultCh)

	results := make([]conversationResult, 0, len(corpus.Conversations))
	for r := range resultCh {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	return results
}

// analyzeOneConversation runs every analyzer over a single conversation.
// A failed dimension is skipped with a warning, never aborting siblings.
func analyzeOneConversation(analyzers []dimension.DimensionAnalyzer, conv *schema.Conversation) map[schema.Dimension]*schema.DimensionReport {
	dims := make(map[schema.Dimension]*schema.DimensionReport, len(analyzers))
	for _, analyzer := range analyzers {
		rep, err := analyzer.AnalyzeConversation(conv)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("%s analysis failed for conversation %s", analyzer.Code(), conv.ID), err)
			continue
		}
		dims[analyzer.Code()] = rep
	}
	return dims
}

// aggregateAcrossConversations merges the per-conversation reports into
// the final per-dimension reports. A single surviving conversation is
// reported as-is, keeping its original interpretations. DF switches to
// corpus scope when the context asks for longitudinal indicators.
func aggregateAcrossConversations(ctx context.Context, analyzers []dimension.DimensionAnalyzer, corpus *schema.Corpus, results []conversationResult) map[schema.Dimension]*schema.DimensionReport {
	final := make(map[schema.Dimension]*schema.DimensionReport, len(analyzers))
	for _, analyzer := range analyzers {
		code := analyzer.Code()

		if code == schema.DF && shouldCorpusDF(ctx) {
			rep, err := analyzer.AnalyzeCorpus(corpus)
			if err != nil {
				contract.LogWarn("DF corpus analysis failed", err)
				continue
			}
			final[code] = rep
			continue
		}

		var reports []*schema.DimensionReport
		for _, res := range results {
			if rep, ok := res.dims[code]; ok {
				reports = append(reports, rep)
			}
		}
		switch len(reports) {
		case 0:
			continue
		case 1:
			final[code] = reports[0]
		default:
			merged, err := dimension.AggregateReports(analyzer, reports)
			if err != nil {
				contract.LogWarn(fmt.Sprintf("Failed to aggregate %s reports", code), err)
				continue
			}
			final[code] = merged
		}
	}
	return final
}

// buildTrend converts per-conversation results into trend points for the
// HTML trend chart and the JSON payload.
func buildTrend(results []conversationResult) []schema.ConversationTrendPoint {
	points := make([]schema.ConversationTrendPoint, 0, len(results))
	for i, res := range results {
		scores := make(map[schema.Dimension]float64, len(res.dims))
		for dim, rep := range res.dims {
			scores[dim] = rep.Score()
		}
		points = append(points, schema.ConversationTrendPoint{
			Index:          i,
			ConversationID: res.id,
			Scores:         scores,
		})
	}
	return points
}

// perConversationReports wraps each conversation's dimension reports so
// the cross-dimensional analyzer can treat them as correlation samples.
func perConversationReports(results []conversationResult) []*schema.EntrainReport {
	samples := make([]*schema.EntrainReport, 0, len(results))
	for _, res := range results {
		samples = append(samples, &schema.EntrainReport{Dimensions: res.dims})
	}
	return samples
}

// analyzeCorpusDimensions runs each analyzer's corpus analysis on the
// worker pool. Dimensions are independent, so they parallelize cleanly.
func analyzeCorpusDimensions(cfg *contract.Config, analyzers []dimension.DimensionAnalyzer, corpus *schema.Corpus) map[schema.Dimension]*schema.DimensionReport {
	type dimResult struct {
		dim schema.Dimension
		rep *schema.DimensionReport
	}

	analyzerCh := make(chan dimension.DimensionAnalyzer, len(analyzers))
	resultCh := make(chan dimResult, len(analyzers))
	var wg sync.WaitGroup

	workers := max(cfg.Workers, 1)
	for range workers {
		wg.Go(func() {
			for analyzer := range analyzerCh {
				rep, err := analyzer.AnalyzeCorpus(corpus)
				if err != nil {
					contract.LogWarn(fmt.Sprintf("%s corpus analysis failed", analyzer.Code()), err)
					continue
				}
				resultCh <- dimResult{dim: analyzer.Code(), rep: rep}
			}
		})
	}

	for _, analyzer := range analyzers {
		analyzerCh <- analyzer
	}
	close(analyzerCh)

	wg.Wait()
	close(resultCh)

	out := make(map[schema.Dimension]*schema.DimensionReport, len(analyzers))
	for r := range resultCh {
		out[r.dim] = r.rep
	}
	return out
}

// buildInputSummary assembles the report's input_summary block.
func buildInputSummary(cfg *contract.Config, corpus *schema.Corpus) map[string]any {
	source := string(cfg.Source)
	if len(corpus.Conversations) > 0 && corpus.Conversations[0].Source != "" {
		source = corpus.Conversations[0].Source
	}
	return map[string]any{
		"conversations": len(corpus.Conversations),
		"total_events":  corpus.EventCount(),
		"source":        source,
		"scope":         string(cfg.Scope),
	}
}

// methodologyText names the modalities the surviving analyzers cover.
func methodologyText(analyzers []dimension.DimensionAnalyzer) string {
	for _, analyzer := range analyzers {
		modality := analyzer.RequiredModality()
		if modality == schema.AudioModality || modality == schema.BothModality {
			return "Text and audio analysis using Entrain Reference Library v" + schema.Version
		}
	}
	return "Text-based analysis using Entrain Reference Library v" + schema.Version
}
