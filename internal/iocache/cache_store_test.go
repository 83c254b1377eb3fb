package iocache

import (
	"database/sql"
	"testing"
	"time"

	"github.com/entrain-io/entrain/schema"
	"github.com/stretchr/testify/assert"
)

// TestSQLiteBackendOperations tests the full lifecycle of SQLite backend operations.
func TestSQLiteBackendOperations(t *testing.T) {
	t.Run("set and get operations", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		assert.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		// Test Set operation
		testKey := "test_key"
		testValue := []byte("test_value_data")
		testVersion := 1
		testTimestamp := int64(1234567890)

		err = store.Set(testKey, testValue, testVersion, testTimestamp)
		assert.NoError(t, err, "Set should not fail")

		// Test Get operation
		value, version, timestamp, err := store.Get(testKey)
		assert.NoError(t, err, "Get should not fail")

		assert.Equal(t, string(testValue), string(value), "Get value mismatch")
		assert.Equal(t, testVersion, version, "Get version mismatch")
		assert.Equal(t, testTimestamp, timestamp, "Get timestamp mismatch")
	})

	t.Run("upsert behavior", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		assert.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		// Insert initial value
		testKey := "upsert_key"
		err = store.Set(testKey, []byte("initial_value"), 1, 1000)
		assert.NoError(t, err, "Initial Set should not fail")

		// Update with new value
		err = store.Set(testKey, []byte("updated_value"), 2, 2000)
		assert.NoError(t, err, "Update Set should not fail")

		// Verify updated value
		value, version, timestamp, err := store.Get(testKey)
		assert.NoError(t, err, "Get after update should not fail")

		assert.Equal(t, "updated_value", string(value), "After upsert, value mismatch")
		assert.Equal(t, 2, version, "After upsert, version mismatch")
		assert.Equal(t, int64(2000), timestamp, "After upsert, timestamp mismatch")
	})

	t.Run("get non-existent key", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		assert.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		_, _, _, err = store.Get("non_existent_key")
		assert.Equal(t, sql.ErrNoRows, err, "Get non-existent key should return sql.ErrNoRows")
	})

	t.Run("multiple keys", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		assert.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		// Set multiple keys
		keys := []string{"key1", "key2", "key3"}
		for i, key := range keys {
			err := store.Set(key, []byte("value"+key), i+1, int64(1000+i))
			assert.NoError(t, err, "Set %s should not fail", key)
		}

		// Verify all keys can be retrieved
		for i, key := range keys {
			value, version, timestamp, err := store.Get(key)
			assert.NoError(t, err, "Get %s should not fail", key)
			expectedValue := "value" + key
			assert.Equal(t, expectedValue, string(value), "Get %s value mismatch", key)
			assert.Equal(t, i+1, version, "Get %s version mismatch", key)
			assert.Equal(t, int64(1000+i), timestamp, "Get %s timestamp mismatch", key)
		}
	})
}

// TestGetPlaceholder tests the getPlaceholder method for different backends.
func TestGetPlaceholder(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		want    string
	}{
		{
			name:    "SQLite backend",
			backend: schema.SQLiteBackend,
			want:    "?",
		},
		{
			name:    "MySQL backend",
			backend: schema.MySQLBackend,
			want:    "?",
		},
		{
			name:    "PostgreSQL backend",
			backend: schema.PostgreSQLBackend,
			want:    "$1",
		},
		{
			name:    "None backend",
			backend: schema.NoneBackend,
			want:    "?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &CacheStoreImpl{
				backend: tt.backend,
			}
			got := store.getPlaceholder()
			assert.Equal(t, tt.want, got, "getPlaceholder()")
		})
	}
}

// TestGetUpsertQuery tests the getUpsertQuery method for different backends.
func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		name         string
		backend      schema.DatabaseBackend
		tableName    string
		wantContains []string
	}{
		{
			name:      "SQLite backend",
			backend:   schema.SQLiteBackend,
			tableName: "test_table",
			wantContains: []string{
				"INSERT OR REPLACE",
				`"test_table"`,
			},
		},
		{
			name:      "MySQL backend",
			backend:   schema.MySQLBackend,
			tableName: "test_table",
			wantContains: []string{
				"INSERT INTO",
				"ON DUPLICATE KEY UPDATE",
				"`test_table`",
			},
		},
		{
			name:      "PostgreSQL backend",
			backend:   schema.PostgreSQLBackend,
			tableName: "test_table",
			wantContains: []string{
				"INSERT INTO",
				"ON CONFLICT",
				"DO UPDATE SET",
				`"test_table"`,
				"$1", "$2", "$3", "$4",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &CacheStoreImpl{
				backend:   tt.backend,
				tableName: tt.tableName,
			}
			got := store.getUpsertQuery()
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want, "getUpsertQuery() should contain %q", want)
			}
		})
	}
}

// TestGetCreateTableQuery tests the getCreateTableQuery function for different backends.
func TestGetCreateTableQuery(t *testing.T) {
	tests := []struct {
		name         string
		backend      schema.DatabaseBackend
		tableName    string
		wantContains []string
	}{
		{
			name:      "SQLite backend",
			backend:   schema.SQLiteBackend,
			tableName: "test_table",
			wantContains: []string{
				"CREATE TABLE IF NOT EXISTS",
				`"test_table"`,
				"cache_key TEXT PRIMARY KEY",
				"cache_value BLOB",
				"cache_version INTEGER",
				"cache_timestamp INTEGER",
			},
		},
		{
			name:      "MySQL backend",
			backend:   schema.MySQLBackend,
			tableName: "test_table",
			wantContains: []string{
				"CREATE TABLE IF NOT EXISTS",
				"`test_table`",
				"cache_key VARCHAR(255) PRIMARY KEY",
				"cache_value BLOB",
				"cache_version INT",
				"cache_timestamp BIGINT",
			},
		},
		{
			name:      "PostgreSQL backend",
			backend:   schema.PostgreSQLBackend,
			tableName: "test_table",
			wantContains: []string{
				"CREATE TABLE IF NOT EXISTS",
				`"test_table"`,
				"cache_key TEXT PRIMARY KEY",
				"cache_value BYTEA",
				"cache_version INTEGER",
				"cache_timestamp BIGINT",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getCreateTableQuery(tt.tableName, tt.backend)
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want, "getCreateTableQuery() should contain %q", want)
			}
		})
	}
}

// TestNewCacheStoreErrors tests error scenarios in NewCacheStore.
func TestNewCacheStoreErrors(t *testing.T) {
	t.Run("invalid table name", func(t *testing.T) {
		_, err := NewCacheStore("invalid-name", schema.SQLiteBackend, "")
		assert.Error(t, err, "Expected error for invalid table name")
	})

	t.Run("empty table name", func(t *testing.T) {
		_, err := NewCacheStore("", schema.SQLiteBackend, "")
		assert.Error(t, err, "Expected error for empty table name")
	})

	t.Run("unsupported backend", func(t *testing.T) {
		_, err := NewCacheStore("test_table", "unsupported", "")
		assert.Error(t, err, "Expected error for unsupported backend")
	})
}

// TestCacheStoreGetStatus tests the GetStatus method for different backends.
func TestCacheStoreGetStatus(t *testing.T) {
	t.Run("SQLite backend with data", func(t *testing.T) {
		store, err := NewCacheStore("test_status_table", schema.SQLiteBackend, ":memory:")
		assert.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		// Add some test data
		testData := []struct {
			key   string
			value []byte
			ts    int64
		}{
			{"key1", []byte("value1"), 1000},
			{"key2", []byte("value2"), 2000},
			{"key3", []byte("value3"), 1500},
		}

		for _, data := range testData {
			err := store.Set(data.key, data.value, 1, data.ts)
			assert.NoError(t, err, "Set should not fail")
		}

		// Get status
		status, err := store.GetStatus()
		assert.NoError(t, err, "GetStatus should not fail")

		assert.Equal(t, "sqlite", status.Backend, "Backend should be sqlite")
		assert.True(t, status.Connected, "Should be connected")
		assert.Equal(t, 3, status.TotalEntries, "Total entries should be 3")
		assert.Equal(t, time.Unix(2000, 0), status.LastEntryTime, "Last entry time should be 2000")
		assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime, "Oldest entry time should be 1000")
		assert.Greater(t, status.TableSizeBytes, int64(0), "Table size should be greater than 0")
	})

	t.Run("SQLite backend empty", func(t *testing.T) {
		store, err := NewCacheStore("test_empty_table", schema.SQLiteBackend, ":memory:")
		assert.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		// Get status without data
		status, err := store.GetStatus()
		assert.NoError(t, err, "GetStatus should not fail")

		assert.Equal(t, "sqlite", status.Backend, "Backend should be sqlite")
		assert.True(t, status.Connected, "Should be connected")
		assert.Equal(t, 0, status.TotalEntries, "Total entries should be 0")
		assert.True(t, status.LastEntryTime.IsZero(), "Last entry time should be zero")
		assert.True(t, status.OldestEntryTime.IsZero(), "Oldest entry time should be zero")
		assert.Equal(t, int64(0), status.TableSizeBytes, "Table size should be 0")
	})

	t.Run("None backend", func(t *testing.T) {
		store, err := NewCacheStore("test_none", schema.NoneBackend, "")
		assert.NoError(t, err, "Failed to create None store")

		// Get status
		status, err := store.GetStatus()
		assert.NoError(t, err, "GetStatus should not fail")

		assert.Equal(t, "none", status.Backend, "Backend should be none")
		assert.False(t, status.Connected, "Should not be connected")
		assert.Equal(t, 0, status.TotalEntries, "Total entries should be 0")
		assert.True(t, status.LastEntryTime.IsZero(), "Last entry time should be zero")
		assert.True(t, status.OldestEntryTime.IsZero(), "Oldest entry time should be zero")
		assert.Equal(t, int64(0), status.TableSizeBytes, "Table size should be 0")
	})
}

// TestCacheStoreNilDB tests store operations with a nil database handle.
func TestCacheStoreNilDB(t *testing.T) {
	store := &CacheStoreImpl{
		db:        nil,
		tableName: "test",
		backend:   schema.NoneBackend,
	}

	_, _, _, err := store.Get("test_key")
	assert.Equal(t, sql.ErrNoRows, err, "Get with nil db should return sql.ErrNoRows")

	err = store.Set("test_key", []byte("value"), 1, 1000)
	assert.NoError(t, err, "Set with nil db (NoneBackend) should not error")

	err = store.Close()
	assert.NoError(t, err, "Close on nil db should not error")
}
