package cmd

import (
	"fmt"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/internal/iocache"
	"github.com/entrain-io/entrain/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// assessmentSetup loads minimal configuration needed for assessment operations.
// This is used by commands that need assessment access without full shared setup.
func assessmentSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get assessment-related config values
	backendStr := viper.GetString("assessment-backend")
	connStr := viper.GetString("assessment-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	outputFile := viper.GetString("file")

	// Initialize stores with the loaded config (no result caching for assessment commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize assessment store: %w", err)
	}

	cfg.AssessmentBackend = backend
	cfg.AssessmentDBConnect = connStr
	cfg.OutputFile = outputFile

	return nil
}

// assessmentSetupWrapper wraps assessmentSetup to provide PreRunE for assessment commands.
func assessmentSetupWrapper(_ *cobra.Command, _ []string) error {
	return assessmentSetup()
}

// assessmentMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func assessmentMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get assessment-related config values
	backendStr := viper.GetString("assessment-backend")
	connStr := viper.GetString("assessment-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAssessmentDBFilePath()
	}

	cfg.AssessmentBackend = backend
	cfg.AssessmentDBConnect = connStr

	return nil
}

// assessmentMigrateSetupWrapper wraps assessmentMigrateSetup to provide PreRunE for migrate command.
func assessmentMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return assessmentMigrateSetup()
}

// assessmentCmd focused on assessment tracking data management.
//
// Note: Assessment subcommands use minimal initialization (assessmentSetup)
// instead of the full sharedSetup used by analysis commands. This avoids export
// path validation and complex config processing for simple store operations.
var assessmentCmd = &cobra.Command{
	Use:   "assessment",
	Short: "Manage historical assessment tracking and exports",
	Long: `Manage historical assessment data used for trend tracking and reporting.

When enabled, Entrain tracks every assessment run, storing:
- Run metadata (timestamp, source, scope, duration)
- Per-dimension scores and indicator counts
- The full serialized report including risk assessment

This enables longitudinal analysis, trend detection, and data export for BI tools.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show assessment tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  entrain assessment status

  # Export for analysis in pandas/DuckDB
  entrain assessment export --file assessment-data`,
}

// assessmentClearCmd clears the assessment data.
var assessmentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all historical assessment tracking data",
	Long: `Delete all stored assessment runs and dimension score history.

This removes:
- All assessment run metadata
- Historical dimension scores for every run
- Serialized reports and risk assessments

WARNING: This action cannot be undone. Consider exporting data first.

Use this when:
- Resetting trend tracking
- Database storage is full
- Starting fresh assessment history
- Testing tracking features

Examples:
  # Export before clearing
  entrain assessment export --file backup
  entrain assessment clear

  # Clear and start fresh
  entrain assessment clear`,
	PreRunE: assessmentSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearAssessments(cfg.AssessmentBackend, contract.GetAssessmentDBFilePath(), cfg.AssessmentDBConnect); err != nil {
			contract.LogFatal("Failed to clear assessment data", err)
		}
		fmt.Println("Assessment data cleared successfully.")
	},
}

// assessmentStatusCmd shows assessment status.
var assessmentStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display assessment tracking statistics and connection details",
	Long: `Show detailed information about historical assessment tracking.

Displays:
- Backend type and connection status
- Total number of assessment runs stored
- Last and oldest assessment run timestamps
- Total dimension scores recorded across all runs
- Database table sizes

Use this to:
- Verify assessment tracking is enabled and working
- Monitor data accumulation over time
- Check database connection health
- Estimate storage requirements

Examples:
  # Check assessment tracking status
  entrain assessment status`,
	PreRunE: assessmentSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetAssessmentStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get assessment status", err)
		}
		iocache.PrintAssessmentStatus(status)
	},
}

// assessmentExportCmd exports assessment data to Parquet files.
var assessmentExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export historical data to Parquet for BI tools and analytics",
	Long: `Export all stored assessment data to Parquet format for use with analytics tools.

Exports two datasets:
- Assessment runs - metadata about each assessment execution
- Dimension scores - per-dimension scores and indicator counts per run

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Schema evolution for future data additions
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --file parameter

Use cases:
- Trend analysis across repeated assessments
- Custom dashboards and visualizations
- Research datasets for dependency studies
- Executive reporting and KPIs

Examples:
  # Export all data (writes <file>.assessment_runs.parquet and <file>.dimension_scores.parquet)
  entrain assessment export --file entrain-data

  # Use with DuckDB for analysis
  entrain assessment export --file data
  duckdb -c "SELECT * FROM read_parquet('data.assessment_runs.parquet') LIMIT 10"`,
	PreRunE: assessmentSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteAssessmentExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export assessment data", err)
		}
	},
}

// assessmentMigrateCmd runs database migrations for the assessment store.
var assessmentMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the assessment tracking store.

Migrations allow:
- Upgrading to new schema versions when Entrain is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed
- Testing new features on specific schema versions

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  entrain assessment migrate

  # Migrate to specific version
  entrain assessment migrate --target-version 2

  # Rollback to previous version
  entrain assessment migrate --target-version 0`,
	PreRunE: assessmentMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateAssessments(cfg.AssessmentBackend, cfg.AssessmentDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
