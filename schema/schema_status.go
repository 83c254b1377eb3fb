package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// AssessmentStatus represents the status of the assessment store.
type AssessmentStatus struct {
	Backend            string           `json:"backend"`
	Connected          bool             `json:"connected"`
	TotalRuns          int              `json:"total_runs"`
	LastRunID          int64            `json:"last_run_id"`
	LastRunTime        time.Time        `json:"last_run_time"`
	OldestRunTime      time.Time        `json:"oldest_run_time"`
	TotalConversations int              `json:"total_conversations"`
	TableSizes         map[string]int64 `json:"table_sizes"`
}

// DimensionScoreRecord represents a row from the entrain_dimension_scores table.
type DimensionScoreRecord struct {
	AssessmentID   int64
	Dimension      Dimension
	AnalysisTime   time.Time
	Score          float64
	IndicatorCount int32
	Summary        *string
}
