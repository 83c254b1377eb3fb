// Package core has core logic for assessment orchestration: corpus
// loading, parallel dimension analysis, report caching and run tracking.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/internal/outwriter"
	"github.com/entrain-io/entrain/internal/parse"
	"github.com/entrain-io/entrain/schema"
)

// ExecutorFunc defines the function signature for executing different assessment modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// assessmentStore unwraps the assessment store, tolerating a nil manager.
func assessmentStore(mgr contract.CacheManager) contract.AssessmentStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetAssessmentStore()
}

// ExecuteAnalyze runs the full assessment pipeline and prints results.
// It serves as the main entry point for the 'analyze' mode.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	output, duration, err := GetAssessmentResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	ow := outwriter.NewOutWriter()
	return ow.WriteReport(output, cfg, duration)
}

// ExecuteReport runs the assessment pipeline for report generation. It
// behaves like ExecuteAnalyze except that DF is always analyzed at
// corpus scope, so reports carry the longitudinal dependency indicators
// regardless of the configured scope.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	output, duration, err := GetAssessmentResults(withCorpusDF(ctx), cfg, mgr)
	if err != nil {
		return err
	}
	ow := outwriter.NewOutWriter()
	return ow.WriteReport(output, cfg, duration)
}

// GetAssessmentResults parses the configured export and runs the
// assessment pipeline, returning the output instead of printing it.
// MCP tool handlers consume this directly.
func GetAssessmentResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.AssessmentOutput, time.Duration, error) {
	start := time.Now()
	registry := parse.NewRegistry()
	corpus, err := loadCorpus(registry, cfg)
	if err != nil {
		return nil, 0, err
	}
	output, err := runAssessmentCore(ctx, cfg, corpus, mgr)
	if err != nil {
		return nil, 0, err
	}
	return output, time.Since(start), nil
}

// ExecuteParse validates an export file and prints a parse summary
// without running any analysis.
func ExecuteParse(_ context.Context, cfg *contract.Config) error {
	registry := parse.NewRegistry()

	fmt.Printf("Parsing %s...\n", cfg.InputPath)
	corpus, err := registry.Parse(cfg.InputPath, cfg.Source)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if cfg.UseEmojis {
		fmt.Printf("✅ Parsed %d conversation(s)\n", len(corpus.Conversations))
	} else {
		fmt.Printf("Parsed %d conversation(s)\n", len(corpus.Conversations))
	}
	fmt.Printf("  Total events: %d\n", corpus.EventCount())
	if corpus.DateRange != nil {
		fmt.Printf("  Date range: %s to %s\n",
			corpus.DateRange.Start.Format("2006-01-02"),
			corpus.DateRange.End.Format("2006-01-02"))
	} else {
		fmt.Println("  Date range: N/A")
	}
	return nil
}

// GetHistoryRuns returns recent assessment runs from the configured store.
func GetHistoryRuns(cfg *contract.Config, mgr contract.CacheManager) ([]schema.AssessmentRunRecord, error) {
	store := assessmentStore(mgr)
	if store == nil {
		return nil, errors.New("assessment tracking is disabled; configure --assessment-backend")
	}
	return store.ListRuns(cfg.HistoryLimit)
}

// ExecuteHistory lists stored assessment runs, newest first.
func ExecuteHistory(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	runs, err := GetHistoryRuns(cfg, mgr)
	if err != nil {
		return err
	}
	ow := outwriter.NewOutWriter()
	return ow.WriteHistory(runs, cfg)
}

// ExecuteHistoryShow prints one stored run, looked up by its UUID.
func ExecuteHistoryShow(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	store := assessmentStore(mgr)
	if store == nil {
		return errors.New("assessment tracking is disabled; configure --assessment-backend")
	}
	if cfg.RunUUID == "" {
		return errors.New("--run is required")
	}
	run, err := store.GetRunByUUID(cfg.RunUUID)
	if err != nil {
		return err
	}
	ow := outwriter.NewOutWriter()
	return ow.WriteRunDetail(run, cfg)
}

// ExecuteDimensions displays the formal definitions of all dimensions.
// This is a static display that does not require any conversation analysis.
func ExecuteDimensions(_ context.Context, cfg *contract.Config) error {
	registry := parse.NewRegistry()
	names := registry.SourceNames()
	platforms := make([]string, len(names))
	for i, name := range names {
		platforms[i] = string(name)
	}
	ow := outwriter.NewOutWriter()
	return ow.WriteDimensions(cfg.Weights, platforms, cfg)
}
