package cmd

import (
	"github.com/entrain-io/entrain/core"
	"github.com/entrain-io/entrain/internal/contract"
	"github.com/spf13/cobra"
)

// analyzeCmd runs dimension analysis over a conversation export.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <export-file>",
	Short: "Score behavioral dimensions for a conversation export.",
	Long: `Run the full measurement pipeline over a conversation export.

Parses the export, extracts linguistic and audio features, and scores each
selected dimension per conversation (or across the corpus with --corpus).
Results include per-dimension scores, contributing indicators, and an
optional cross-dimensional risk assessment. Use this to:
- Measure sycophancy, convergence, and dependency signals in a corpus
- Track how scores trend across sequential conversations
- Surface compound risk patterns that span multiple dimensions
- Compare behavior across platforms or time periods

Dimensions are selected with --dim (comma-separated codes); all text
dimensions run by default. Audio dimensions require exports that carry
acoustic features.

Examples:
  # Analyze with all text dimensions
  entrain analyze conversations.json

  # Score only sycophancy and emotional dependency
  entrain analyze conversations.json --dim SR,AE

  # Corpus-level scoring with cross-dimensional risk
  entrain analyze conversations.json --corpus --cross-dimensional

  # JSON output to a file, bypassing the cache
  entrain analyze export.json -o json -f results.json --no-cache

  # Custom dimension weights for risk scoring
  entrain analyze export.json --cross-dimensional --weights-override SR:1.2,AE:1.8`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}
