package cmd

import (
	"github.com/entrain-io/entrain/core"
	"github.com/entrain-io/entrain/internal/contract"
	"github.com/spf13/cobra"
)

// dimensionsCmd displays the definitions of all measurement dimensions.
var dimensionsCmd = &cobra.Command{
	Use:   "dimensions",
	Short: "Display all measurement dimensions and their weights",
	Long: `Show the definitions, modalities, and risk weights for all dimensions.

Provides complete transparency into what the engine measures, including:
- Dimension codes, names, and descriptions
- Input modality each dimension requires (text, audio, or both)
- Risk weight each dimension contributes to the composite score
- Custom weights if configured via .entrain.yaml
- Supported export platforms

No export parsing is performed - this is purely informational.

Use this to:
- Understand what each dimension measures
- Explain scoring behavior to reviewers
- Validate custom weight configurations

Examples:
  # Show default dimension definitions
  entrain dimensions

  # View with custom weights from config file
  entrain dimensions --config .entrain.yaml`,
	PreRunE: settingsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDimensions(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot display dimensions", err)
		}
	},
}
