// Package testutil holds the fixtures shared by the retail backend tests:
// databases, actors, catalogue seeds and polling assertions.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/infrastructure/config"
	"github.com/retail/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB is GORM on top of sqlmock with the postgres dialect
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB opens a sqlmock-backed GORM handle, closed when the test ends
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err, "open gorm over sqlmock")

	t.Cleanup(func() { _ = sqlDB.Close() })
	return &MockDB{DB: gormDB, Mock: mock, SqlDB: sqlDB}
}

// ExpectationsWereMet fails the test on unmet sqlmock expectations
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "unmet database expectations")
}

// NewSQLiteDatabase opens an in-memory sqlite store with the schema applied
func NewSQLiteDatabase(t *testing.T) *persistence.Database {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   ":memory:",
	})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, db.AutoMigrate(), "migrate sqlite")

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewTestUUID derives a stable UUID from seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("retail-test/"+seed))
}

// TestActor is the cashier recorded on movements created by tests
func TestActor() shared.Actor {
	return shared.Actor{ID: NewTestUUID("cashier"), Name: "test-cashier"}
}

// ActorContext returns a context carrying TestActor
func ActorContext() context.Context {
	return shared.WithActor(context.Background(), TestActor())
}

// ProductSeed describes a catalogue row created directly through the repository
type ProductSeed struct {
	Code      string
	Name      string
	Category  string
	UnitPrice string
	Quantity  int
	MinStock  int
}

// SeedProduct persists a product with the given starting quantity. No
// movement is written; use the stock service when the ledger matters.
func SeedProduct(t *testing.T, db *gorm.DB, seed ProductSeed) *inventory.Product {
	t.Helper()

	if seed.Name == "" {
		seed.Name = seed.Code
	}
	if seed.UnitPrice == "" {
		seed.UnitPrice = "1.00"
	}

	product, err := inventory.NewProduct(seed.Code, seed.Name, seed.Category, decimal.RequireFromString(seed.UnitPrice), seed.MinStock)
	require.NoError(t, err)
	if seed.Quantity > 0 {
		_, _, err = product.AdjustQuantity(seed.Quantity)
		require.NoError(t, err)
	}

	require.NoError(t, persistence.NewGormProductRepository(db).Create(context.Background(), product))
	return product
}

func waitUntil(condition func() bool, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return condition()
}

// RequireEventually fails the test if condition stays false for timeout
func RequireEventually(t *testing.T, condition func() bool, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	if !waitUntil(condition, timeout, 10*time.Millisecond) {
		require.Fail(t, "condition not met within "+timeout.String(), msgAndArgs...)
	}
}

// RequireNever fails the test if condition becomes true within d
func RequireNever(t *testing.T, condition func() bool, d time.Duration, msgAndArgs ...any) {
	t.Helper()
	if waitUntil(condition, d, 10*time.Millisecond) {
		require.Fail(t, "condition unexpectedly became true", msgAndArgs...)
	}
}
