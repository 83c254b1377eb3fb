// Package cmd defines the command-line interface for entrain.
package cmd

import (
	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(dimensionsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(assessmentCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyShowCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the assessment subcommands to the parent assessment command
	assessmentCmd.AddCommand(assessmentClearCmd)
	assessmentCmd.AddCommand(assessmentStatusCmd)
	assessmentCmd.AddCommand(assessmentExportCmd)
	assessmentCmd.AddCommand(assessmentMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("source", "s", string(schema.AutoSource), "Export format: auto or chatgpt or claude or characterai or generic")
	rootCmd.PersistentFlags().StringP("user", "u", "", "User identifier the corpus belongs to")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TableOut), "Output format: table or json or csv or markdown or html")
	rootCmd.PersistentFlags().StringP("file", "f", "", "Optional path to write output to")
	rootCmd.PersistentFlags().StringP("dim", "d", "", "Comma-separated dimension codes to analyze (empty = all text dimensions)")
	rootCmd.PersistentFlags().Bool("corpus", false, "Score the corpus as a whole instead of per conversation")
	rootCmd.PersistentFlags().Bool("cross-dimensional", false, "Include cross-dimensional risk and pattern analysis")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Bypass the assessment cache for this run")
	rootCmd.PersistentFlags().String("weights-override", "", "Dimension weight overrides (format: 'SR:1.2,AE:1.8')")
	rootCmd.PersistentFlags().String("thresholds-override", "", "Risk threshold overrides (format: 'low:0.35,moderate:0.55,high:0.75')")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("assessment-backend", "", "Assessment tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("assessment-db-connect", "", "Database connection string for assessment tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emoji in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all persistent flags of historyCmd to Viper (show inherits them)
	historyCmd.PersistentFlags().IntP("limit", "l", contract.DefaultHistoryLimit, "Number of runs to display")
	historyCmd.PersistentFlags().String("run", "", "Run UUID to inspect")
	if err := viper.BindPFlags(historyCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding history flags", err)
	}

	// Bind all flags of assessmentMigrateCmd to Viper
	assessmentMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(assessmentMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding assessment migrate flags", err)
	}
}
