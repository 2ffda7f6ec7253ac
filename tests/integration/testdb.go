// Package integration runs the retail backend against a real PostgreSQL
// started with testcontainers. The schema comes from the embedded migrations.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/retail/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// retailTables lists the application tables, children first
var retailTables = []string{
	"sale_items",
	"sales",
	"low_stock_alerts",
	"stock_movements",
	"products",
	"users",
}

var (
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB is a migrated PostgreSQL database
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
	t     *testing.T
}

func startPostgres(ctx context.Context, dbName string) (testcontainers.Container, string, error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("retail123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", fmt.Errorf("read connection string: %w", err)
	}
	return container, dsn, nil
}

// NewEmptyTestDB starts a dedicated container without applying migrations.
// The container is terminated when the test ends.
func NewEmptyTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()
	container, dsn, err := startPostgres(ctx, "retail_migrate_test")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	return openTestDB(t, dsn)
}

// NewSharedTestDB returns a connection to the package-wide container,
// migrated on first use. Tests sharing it call CleanTables first.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer == nil {
		container, dsn, err := startPostgres(context.Background(), "retail_test")
		require.NoError(t, err)

		migrator, err := migration.Open(dsn, nil)
		require.NoError(t, err, "open migrator")
		require.NoError(t, migrator.Up(), "apply migrations")
		require.NoError(t, migrator.Close())

		sharedContainer = container
		sharedContainerDSN = dsn
	}

	return openTestDB(t, sharedContainerDSN)
}

func openTestDB(t *testing.T, dsn string) *TestDB {
	t.Helper()

	level := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = logger.Info
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(level),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err, "connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	tdb := &TestDB{DB: db, SqlDB: sqlDB, DSN: dsn, t: t}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return tdb
}

// CleanTables empties every application table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	for _, table := range retailTables {
		err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error
		require.NoError(tdb.t, err, "truncate %s", table)
	}
}

// TableExists reports whether table is present in the public schema
func (tdb *TestDB) TableExists(table string) bool {
	tdb.t.Helper()

	var count int64
	err := tdb.DB.Raw(
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?",
		table,
	).Scan(&count).Error
	require.NoError(tdb.t, err)
	return count > 0
}

// CleanupSharedContainer terminates the shared container. Call it from TestMain.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerDSN = ""
	}
}
