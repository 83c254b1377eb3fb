// Package parquet provides data structures and functions for exporting
// assessment history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/entrain-io/entrain/schema"
	"github.com/parquet-go/parquet-go"
)

// AssessmentRun represents a single assessment run with metadata.
// This struct maps to the entrain_assessment_runs database table.
type AssessmentRun struct {
	// AssessmentID is the unique identifier for this assessment run
	AssessmentID int64 `parquet:"assessment_id,snappy"`

	// RunUUID is the stable external identifier for this run
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the assessment began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the assessment completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the assessment run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Source is the conversation export platform that was analyzed
	Source string `parquet:"source,snappy"`

	// Scope indicates conversation or corpus level analysis
	Scope string `parquet:"scope,snappy"`

	// ConversationCount is the number of conversations analyzed in this run
	ConversationCount int32 `parquet:"conversation_count,snappy"`

	// EventCount is the number of interaction events analyzed in this run
	EventCount int32 `parquet:"event_count,snappy"`

	// RiskScore is the composite cross-dimensional risk score (nullable)
	RiskScore *float64 `parquet:"risk_score,optional,snappy"`

	// RiskLevel is the categorical risk classification (nullable)
	RiskLevel *string `parquet:"risk_level,optional,snappy"`

	// ReportJSON contains the JSON-encoded assessment report (nullable)
	ReportJSON *string `parquet:"report_json,optional,snappy"`
}

// DimensionScore represents the final score of one dimension in an assessment.
// This struct maps to the entrain_dimension_scores database table.
type DimensionScore struct {
	// AssessmentID references the parent assessment run
	AssessmentID int64 `parquet:"assessment_id,snappy"`

	// Dimension is the two or three letter dimension code
	Dimension string `parquet:"dimension,snappy"`

	// AnalysisTime is when this dimension was analyzed (stored as TIMESTAMP with nanosecond precision)
	AnalysisTime time.Time `parquet:"analysis_time,snappy"`

	// Score is the normalized dimension score (0-1, higher means more concerning)
	Score float64 `parquet:"score,snappy"`

	// IndicatorCount is the number of indicators computed for this dimension
	IndicatorCount int32 `parquet:"indicator_count,snappy"`

	// Summary is a human-readable summary of the dimension result (nullable)
	Summary *string `parquet:"summary,optional,snappy"`
}

// WriteAssessmentRunsParquet writes a slice of AssessmentRun structs to a Parquet file.
func WriteAssessmentRunsParquet(data []AssessmentRun, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the AssessmentRun struct tags
	writer := parquet.NewGenericWriter[AssessmentRun](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteDimensionScoresParquet writes a slice of DimensionScore structs to a Parquet file.
func WriteDimensionScoresParquet(data []DimensionScore, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the DimensionScore struct tags
	writer := parquet.NewGenericWriter[DimensionScore](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// MockFetchAssessmentRuns generates sample AssessmentRun data for demonstration.
func MockFetchAssessmentRuns() []AssessmentRun {
	now := time.Now()
	startTime1 := now.Add(-2 * time.Hour)
	endTime1 := now.Add(-1*time.Hour - 55*time.Minute)
	durationMs1 := int32(endTime1.Sub(startTime1).Milliseconds())
	riskScore1 := 0.42
	riskLevel1 := "MODERATE"
	reportJSON1 := `{"risk_level":"MODERATE","dimensions":["SR","LC","AE"]}`

	startTime2 := now.Add(-24 * time.Hour)
	endTime2 := now.Add(-24*time.Hour + 3*time.Minute)
	durationMs2 := int32(endTime2.Sub(startTime2).Milliseconds())
	riskScore2 := 0.71
	riskLevel2 := "HIGH"
	reportJSON2 := `{"risk_level":"HIGH","dimensions":["SR","LC","AE","RCD","DF"]}`

	startTime3 := now.Add(-10 * time.Minute)
	// Note: endTime3, durationMs3, risk fields are nil to demonstrate nullable fields

	return []AssessmentRun{
		{
			AssessmentID:      1,
			RunUUID:           "0c96b3e4-4f6d-4a7b-9c2e-1d5f8a3b7c90",
			StartTime:         startTime1,
			EndTime:           &endTime1,
			RunDurationMs:     &durationMs1,
			Source:            "chatgpt",
			Scope:             "conversation",
			ConversationCount: 12,
			EventCount:        480,
			RiskScore:         &riskScore1,
			RiskLevel:         &riskLevel1,
			ReportJSON:        &reportJSON1,
		},
		{
			AssessmentID:      2,
			RunUUID:           "7d1a2f5c-8e3b-4960-bb1d-2c4e6f8a0b12",
			StartTime:         startTime2,
			EndTime:           &endTime2,
			RunDurationMs:     &durationMs2,
			Source:            "claude",
			Scope:             "corpus",
			ConversationCount: 85,
			EventCount:        3200,
			RiskScore:         &riskScore2,
			RiskLevel:         &riskLevel2,
			ReportJSON:        &reportJSON2,
		},
		{
			AssessmentID:      3,
			RunUUID:           "f2e9c8d7-6b5a-4433-a2b1-9c8d7e6f5a40",
			StartTime:         startTime3,
			EndTime:           nil, // Still running - nullable field
			RunDurationMs:     nil, // Not yet calculated - nullable field
			Source:            "characterai",
			Scope:             "conversation",
			ConversationCount: 3,
			EventCount:        95,
			RiskScore:         nil, // No cross-dimensional result yet - nullable field
			RiskLevel:         nil,
			ReportJSON:        nil,
		},
	}
}

// MockFetchDimensionScores generates sample DimensionScore data for demonstration.
func MockFetchDimensionScores() []DimensionScore {
	now := time.Now()
	summary1 := "Low semantic mirroring with stable opinion shifts"
	summary2 := "High stylistic convergence over the final third"

	return []DimensionScore{
		{
			AssessmentID:   1,
			Dimension:      "SR",
			AnalysisTime:   now.Add(-1 * time.Hour),
			Score:          0.31,
			IndicatorCount: 5,
			Summary:        &summary1,
		},
		{
			AssessmentID:   1,
			Dimension:      "LC",
			AnalysisTime:   now.Add(-1 * time.Hour),
			Score:          0.78,
			IndicatorCount: 4,
			Summary:        &summary2,
		},
		{
			AssessmentID:   2,
			Dimension:      "DF",
			AnalysisTime:   now.Add(-23 * time.Hour),
			Score:          0.64,
			IndicatorCount: 6,
			Summary:        nil, // No summary recorded - nullable field
		},
	}
}

// ConvertAssessmentRunRecords converts schema.AssessmentRunRecord to AssessmentRun for Parquet export.
func ConvertAssessmentRunRecords(records []schema.AssessmentRunRecord) []AssessmentRun {
	result := make([]AssessmentRun, len(records))
	for i, record := range records {
		result[i] = AssessmentRun{
			AssessmentID:      record.AssessmentID,
			RunUUID:           record.RunUUID,
			StartTime:         record.StartTime,
			EndTime:           record.EndTime,
			RunDurationMs:     record.RunDurationMs,
			Source:            record.Source,
			Scope:             string(record.Scope),
			ConversationCount: record.ConversationCount,
			EventCount:        record.EventCount,
			RiskScore:         record.RiskScore,
			RiskLevel:         record.RiskLevel,
			ReportJSON:        record.ReportJSON,
		}
	}
	return result
}

// ConvertDimensionScoreRecords converts schema.DimensionScoreRecord to DimensionScore for Parquet export.
func ConvertDimensionScoreRecords(records []schema.DimensionScoreRecord) []DimensionScore {
	result := make([]DimensionScore, len(records))
	for i, record := range records {
		result[i] = DimensionScore{
			AssessmentID:   record.AssessmentID,
			Dimension:      string(record.Dimension),
			AnalysisTime:   record.AnalysisTime,
			Score:          record.Score,
			IndicatorCount: record.IndicatorCount,
			Summary:        record.Summary,
		}
	}
	return result
}
