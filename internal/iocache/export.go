package iocache

import (
	"errors"
	"fmt"

	"github.com/entrain-io/entrain/internal/parquet"
)

// ExecuteAssessmentExport performs the actual export of assessment data to Parquet files.
func ExecuteAssessmentExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--file is required for export command")
	}

	// Get the assessment store
	store := Manager.GetAssessmentStore()

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get assessment status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no assessment data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total assessment runs: %d\n", status.TotalRuns)
	fmt.Printf("Total dimension scores: %d\n", status.TableSizes[dimensionScoresTable])

	// Retrieve all assessment runs
	assessmentRuns, err := store.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve assessment runs: %w", err)
	}

	// Retrieve all dimension scores
	dimensionScores, err := store.GetAllDimensionScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve dimension scores: %w", err)
	}

	// Convert to Parquet format
	parquetRuns := parquet.ConvertAssessmentRunRecords(assessmentRuns)
	parquetScores := parquet.ConvertDimensionScoreRecords(dimensionScores)

	// Write assessment runs to Parquet
	runsFile := outputFile + ".assessment_runs.parquet"
	if err := parquet.WriteAssessmentRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write assessment runs: %w", err)
	}
	fmt.Printf("Exported %d assessment runs to: %s\n", len(parquetRuns), runsFile)

	// Write dimension scores to Parquet
	scoresFile := outputFile + ".dimension_scores.parquet"
	if err := parquet.WriteDimensionScoresParquet(parquetScores, scoresFile); err != nil {
		return fmt.Errorf("failed to write dimension scores: %w", err)
	}
	fmt.Printf("Exported %d dimension score records to: %s\n", len(parquetScores), scoresFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
