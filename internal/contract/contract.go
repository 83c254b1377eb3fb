// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/entrain-io/entrain/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetCacheStore() CacheStore
	GetAssessmentStore() AssessmentStore
}

// CacheStore defines the interface for report cache storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AssessmentStore defines the interface for tracking assessment runs and
// storing per-dimension scores.
type AssessmentStore interface {
	// BeginAssessment creates a new assessment run and returns its unique ID
	BeginAssessment(startTime time.Time, source string, scope schema.AnalysisScope, conversationCount, eventCount int32) (int64, error)

	// EndAssessment updates the assessment run with completion data
	EndAssessment(assessmentID int64, endTime time.Time, riskScore float64, riskLevel schema.RiskLevel, reportJSON string) error

	// RecordDimensionScore stores the final score of one dimension for a run
	RecordDimensionScore(assessmentID int64, record schema.DimensionScoreRecord) error

	// ListRuns returns the most recent assessment runs, newest first.
	// A limit of zero or below returns all runs.
	ListRuns(limit int) ([]schema.AssessmentRunRecord, error)

	// GetRunByUUID returns the assessment run with the given UUID
	GetRunByUUID(runUUID string) (*schema.AssessmentRunRecord, error)

	// GetAllDimensionScores returns every recorded dimension score,
	// ordered by run and dimension
	GetAllDimensionScores() ([]schema.DimensionScoreRecord, error)

	// GetStatus returns status information about the assessment store
	GetStatus() (schema.AssessmentStatus, error)

	// Close closes the underlying connection
	Close() error
}
