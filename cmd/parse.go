package cmd

import (
	"github.com/entrain-io/entrain/core"
	"github.com/entrain-io/entrain/internal/contract"
	"github.com/spf13/cobra"
)

// parseCmd validates an export file without running analysis.
var parseCmd = &cobra.Command{
	Use:   "parse <export-file>",
	Short: "Parse a conversation export and summarize its contents.",
	Long: `Parse a conversation export file and report what was found.

Reads the export, detects or applies the platform format, and prints a
summary of the parsed corpus without scoring any dimensions. Use this to:
- Confirm an export file is readable before a full analysis
- Check how many conversations and events a file contains
- Verify the detected platform when using --source auto
- Inspect the date range covered by an export

Examples:
  # Parse with automatic format detection
  entrain parse conversations.json

  # Force a specific platform parser
  entrain parse export.json --source chatgpt

  # Parse a Character.AI export
  entrain parse chats.json --source characterai`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteParse(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot parse export", err)
		}
	},
}
