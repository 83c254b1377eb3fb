//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestEntrainWithMySQL tests the entrain CLI with a MySQL backend.
func TestEntrainWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "entrain",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/entrain?parseTime=true", host, port.Port())

	// Set environment variables
	_ = os.Setenv("ENTRAIN_CACHE_BACKEND", "mysql")
	_ = os.Setenv("ENTRAIN_CACHE_DB_CONNECT", connStr)
	_ = os.Setenv("ENTRAIN_ASSESSMENT_BACKEND", "mysql")
	_ = os.Setenv("ENTRAIN_ASSESSMENT_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("ENTRAIN_CACHE_BACKEND") }()
	defer func() { _ = os.Unsetenv("ENTRAIN_CACHE_DB_CONNECT") }()
	defer func() { _ = os.Unsetenv("ENTRAIN_ASSESSMENT_BACKEND") }()
	defer func() { _ = os.Unsetenv("ENTRAIN_ASSESSMENT_DB_CONNECT") }()

	runStoreLifecycle(t)
}

// TestEntrainWithPostgres tests the entrain CLI with a PostgreSQL backend.
func TestEntrainWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	// Set environment variables
	_ = os.Setenv("ENTRAIN_CACHE_BACKEND", "postgresql")
	_ = os.Setenv("ENTRAIN_CACHE_DB_CONNECT", connStr)
	_ = os.Setenv("ENTRAIN_ASSESSMENT_BACKEND", "postgresql")
	_ = os.Setenv("ENTRAIN_ASSESSMENT_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("ENTRAIN_CACHE_BACKEND") }()
	defer func() { _ = os.Unsetenv("ENTRAIN_CACHE_DB_CONNECT") }()
	defer func() { _ = os.Unsetenv("ENTRAIN_ASSESSMENT_BACKEND") }()
	defer func() { _ = os.Unsetenv("ENTRAIN_ASSESSMENT_DB_CONNECT") }()

	runStoreLifecycle(t)
}

// runStoreLifecycle exercises the full persistence lifecycle against the
// configured backend: clear both stores, analyze with tracking, then read
// status and history back.
func runStoreLifecycle(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	exportPath, _, _ := writeSampleExport(t, dir, 3, 6)

	// Run entrain cache clear
	_, err := runEntrainCommand(t, "cache", "clear")
	require.NoError(t, err)

	// Run entrain assessment clear
	_, err = runEntrainCommand(t, "assessment", "clear")
	require.NoError(t, err)

	// Run a tracked analysis against the fixture
	_, err = runEntrainCommand(t, "analyze", exportPath, "--dim", "SR,AE", "--cross-dimensional")
	require.NoError(t, err)

	// Run entrain cache status
	_, err = runEntrainCommand(t, "cache", "status")
	require.NoError(t, err)

	// Run entrain assessment status
	_, err = runEntrainCommand(t, "assessment", "status")
	require.NoError(t, err)

	// Run entrain history and expect the tracked run to be listed
	output, err := runEntrainCommand(t, "history")
	require.NoError(t, err)
	require.Contains(t, output, "assessment run(s)", "history should render the run table")
	require.Contains(t, output, "generic", "tracked run should record its source")
}
