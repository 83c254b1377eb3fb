package schema

import "time"

// CacheEntryRecord represents a row from the entrain_report_cache table.
type CacheEntryRecord struct {
	CacheKey     string    // SHA-256 over input identity plus analysis options
	CacheVersion int       // Bumped when the cached layout changes
	CreatedAt    time.Time // Insertion time, used for staleness checks
	ReportJSON   string    // Serialized EntrainReport
}

// AssessmentRunRecord represents a row from the entrain_assessment_runs table.
type AssessmentRunRecord struct {
	AssessmentID      int64         `json:"assessment_id"`
	RunUUID           string        `json:"run_uuid"`
	StartTime         time.Time     `json:"start_time"`
	EndTime           *time.Time    `json:"end_time,omitempty"`
	RunDurationMs     *int32        `json:"run_duration_ms,omitempty"`
	Source            string        `json:"source"`
	Scope             AnalysisScope `json:"scope"`
	ConversationCount int32         `json:"conversation_count"`
	EventCount        int32         `json:"event_count"`
	RiskScore         *float64      `json:"risk_score,omitempty"` // nil until the run ends, or when cross analysis was off
	RiskLevel         *string       `json:"risk_level,omitempty"`
	ReportJSON        *string       `json:"report_json,omitempty"`
}
