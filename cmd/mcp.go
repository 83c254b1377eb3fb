package cmd

import (
	"github.com/entrain-io/entrain/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Entrain MCP server",
	Long:  `Launch an MCP server that allows AI agents to run entrainment assessments via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Export paths arrive per tool call, so only the shared settings
		// are validated here. Header logs are suppressed per request to
		// avoid polluting stdio which is used for the protocol.
		return settingsSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
