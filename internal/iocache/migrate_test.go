package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/entrain-io/entrain/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAssessments_NoneBackend(t *testing.T) {
	err := MigrateAssessments(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateAssessments_SQLite(t *testing.T) {
	// Create a temporary database file for testing
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test_migration.db")

	// Run migration to latest version (should go to version 2)
	err := MigrateAssessments(schema.SQLiteBackend, dbPath, -1)
	require.NoError(t, err)

	// Verify migration was successful by checking the database file exists
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	// Both assessment tables should exist at the latest version
	assertTableExists(t, dbPath, assessmentRunsTable, true)
	assertTableExists(t, dbPath, dimensionScoresTable, true)

	// Run migration again (should be a no-op)
	err = MigrateAssessments(schema.SQLiteBackend, dbPath, -1)
	assert.NoError(t, err)

	// Roll back to version 1 (drops the dimension scores table)
	err = MigrateAssessments(schema.SQLiteBackend, dbPath, 1)
	assert.NoError(t, err)
	assertTableExists(t, dbPath, assessmentRunsTable, true)
	assertTableExists(t, dbPath, dimensionScoresTable, false)

	// Rollback to version 0
	err = MigrateAssessments(schema.SQLiteBackend, dbPath, 0)
	assert.NoError(t, err)
	assertTableExists(t, dbPath, assessmentRunsTable, false)

	// Migrate back up to version 2
	err = MigrateAssessments(schema.SQLiteBackend, dbPath, 2)
	assert.NoError(t, err)
	assertTableExists(t, dbPath, dimensionScoresTable, true)
}

func TestMigrateAssessments_SQLiteInMemory(t *testing.T) {
	// Test with in-memory database
	err := MigrateAssessments(schema.SQLiteBackend, ":memory:", -1)
	require.NoError(t, err)
}

// assertTableExists checks whether a table is present in the SQLite database.
func assertTableExists(t *testing.T, dbPath, tableName string, want bool) {
	t.Helper()

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err, "Failed to open database for inspection")
	defer func() { _ = db.Close() }()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", tableName).Scan(&count)
	require.NoError(t, err, "Failed to query sqlite_master")

	if want {
		assert.Equal(t, 1, count, "Table %s should exist", tableName)
	} else {
		assert.Equal(t, 0, count, "Table %s should not exist", tableName)
	}
}
