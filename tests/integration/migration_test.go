package integration

import (
	"testing"

	"github.com/retail/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_UpDown(t *testing.T) {
	skipShort(t)
	db := NewEmptyTestDB(t)

	migrator, err := migration.Open(db.DSN, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = migrator.Close() })

	version, dirty, err := migrator.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, migrator.Up())
	for _, table := range retailTables {
		assert.True(t, db.TableExists(table), table)
	}

	version, dirty, err = migrator.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(20260105090200), version)
	assert.False(t, dirty)

	require.NoError(t, migrator.Up(), "re-running is a no-op")

	require.NoError(t, migrator.Steps(-1))
	assert.False(t, db.TableExists("sales"))
	assert.True(t, db.TableExists("products"))

	require.NoError(t, migrator.Down())
	for _, table := range retailTables {
		assert.False(t, db.TableExists(table), table)
	}

	require.NoError(t, migrator.GoTo(20260105090100))
	assert.True(t, db.TableExists("stock_movements"))
	assert.False(t, db.TableExists("sale_items"))
}
