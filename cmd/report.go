package cmd

import (
	"github.com/entrain-io/entrain/core"
	"github.com/entrain-io/entrain/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd produces a longitudinal assessment over an export.
var reportCmd = &cobra.Command{
	Use:   "report <export-file>",
	Short: "Generate a longitudinal dependency report for an export.",
	Long: `Generate a full longitudinal report over a conversation export.

Runs the same pipeline as analyze but always includes trajectory analysis:
dependency formation indicators are computed across the whole corpus, so
interaction frequency and session duration trends appear alongside the
per-conversation scores. Use this to:
- Assess dependency formation over weeks or months of history
- Review escalating usage or emotional reliance patterns
- Produce a periodic report for a long-running corpus

Examples:
  # Longitudinal report with default dimensions
  entrain report conversations.json

  # Report with cross-dimensional risk and chart output
  entrain report conversations.json --cross-dimensional -o html -f report.html

  # Corpus-level report for a specific user
  entrain report export.json --corpus -u alice`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot generate report", err)
		}
	},
}
