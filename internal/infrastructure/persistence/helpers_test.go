package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestDatabase opens a private in-memory sqlite database with the schema migrated
func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := NewDatabase(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedProduct inserts a product with the given stock level
func seedProduct(t *testing.T, db *Database, code string, quantity, minStock int) *inventory.Product {
	t.Helper()

	product, err := inventory.NewProduct(code, "Product "+code, "general", decimal.RequireFromString("2.50"), minStock)
	require.NoError(t, err)
	product.Quantity = quantity
	require.NoError(t, NewGormProductRepository(db.DB).Create(context.Background(), product))
	return product
}

var testActor = shared.Actor{ID: uuid.MustParse("7d1c3a52-5f0e-4c53-9d43-2f1d8f3b6a10"), Name: "till-1"}
