package cmd

import (
	"github.com/entrain-io/entrain/core"
	"github.com/entrain-io/entrain/internal/contract"
	"github.com/spf13/cobra"
)

// historyCmd lists recorded assessment runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded assessment runs.",
	Long: `List assessment runs recorded by the tracking store.

Each analyze or report invocation with assessment tracking enabled records
a run with its risk score, dimension count, and timing. Use this to:
- Review past assessments without re-running analysis
- Find a run UUID to inspect in detail with history show
- Watch how risk scores move across repeated assessments

Requires --assessment-backend to be configured.

Examples:
  # List the most recent runs
  entrain history --assessment-backend sqlite

  # List the last 25 runs
  entrain history --assessment-backend sqlite --limit 25`,
	PreRunE: settingsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistory(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list history", err)
		}
	},
}

// historyShowCmd shows the stored report for one run.
var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the full stored report for a single run.",
	Long: `Show the complete stored assessment for a single recorded run.

Fetches the run identified by --run and prints its persisted report,
including per-dimension scores and the cross-dimensional assessment if one
was computed.

Examples:
  # Show a run by UUID
  entrain history show --assessment-backend sqlite --run 4f6b2c1a-...`,
	PreRunE: settingsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistoryShow(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot show run", err)
		}
	},
}
