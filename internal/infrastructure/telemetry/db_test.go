package telemetry_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type shelfItem struct {
	ID       uint `gorm:"primaryKey"`
	SKU      string
	Quantity int
}

func newInstrumentedDB(t *testing.T, cfg telemetry.DBConfig) (*gorm.DB, *sdkmetric.ManualReader, *telemetry.DBInstrumentation) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&shelfItem{}))

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	inst, err := telemetry.InstrumentDB(db, cfg, provider.Meter("test"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = inst.Close() })
	return db, reader, inst
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, data metricdata.Aggregation, key attribute.Key, value string) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(key); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestInstrumentDB_QueryMetrics(t *testing.T) {
	db, reader, _ := newInstrumentedDB(t, telemetry.DBConfig{System: "sqlite", SlowQueryThreshold: time.Hour})
	ctx := context.Background()

	require.NoError(t, db.WithContext(ctx).Create(&shelfItem{SKU: "MILK-1L", Quantity: 10}).Error)
	require.NoError(t, db.WithContext(ctx).Create(&shelfItem{SKU: "BREAD", Quantity: 4}).Error)

	var items []shelfItem
	require.NoError(t, db.WithContext(ctx).Find(&items).Error)
	require.Len(t, items, 2)
	require.NoError(t, db.WithContext(ctx).Model(&shelfItem{}).Where("sku = ?", "BREAD").Update("quantity", 3).Error)
	require.NoError(t, db.WithContext(ctx).Where("sku = ?", "MILK-1L").Delete(&shelfItem{}).Error)

	metrics := collect(t, reader)
	queries := metrics["db_query_total"]
	require.NotNil(t, queries)
	assert.Equal(t, int64(2), sumFor(t, queries, telemetry.AttrDBOperation, "INSERT"))
	assert.Equal(t, int64(1), sumFor(t, queries, telemetry.AttrDBOperation, "SELECT"))
	assert.Equal(t, int64(1), sumFor(t, queries, telemetry.AttrDBOperation, "UPDATE"))
	assert.Equal(t, int64(1), sumFor(t, queries, telemetry.AttrDBOperation, "DELETE"))

	_, ok := metrics["db_query_duration_seconds"].(metricdata.Histogram[float64])
	assert.True(t, ok)
	assert.NotContains(t, metrics, "db_slow_query_total", "nothing is slower than an hour")
}

func TestInstrumentDB_SlowQueries(t *testing.T) {
	// a nanosecond threshold makes every statement slow
	db, reader, _ := newInstrumentedDB(t, telemetry.DBConfig{System: "sqlite", SlowQueryThreshold: time.Nanosecond})

	require.NoError(t, db.Create(&shelfItem{SKU: "EGGS", Quantity: 12}).Error)

	metrics := collect(t, reader)
	require.Contains(t, metrics, "db_slow_query_total")
	assert.Equal(t, int64(1), sumFor(t, metrics["db_slow_query_total"], telemetry.AttrDBOperation, "INSERT"))
}

func TestInstrumentDB_PoolMetrics(t *testing.T) {
	db, reader, inst := newInstrumentedDB(t, telemetry.DBConfig{System: "sqlite"})
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(3)

	metrics := collect(t, reader)
	conns, ok := metrics["db_pool_connections"].(metricdata.Gauge[int64])
	require.True(t, ok)
	states := map[string]bool{}
	for _, dp := range conns.DataPoints {
		v, _ := dp.Attributes.Value(telemetry.AttrDBState)
		states[v.AsString()] = true
	}
	assert.True(t, states["in_use"])
	assert.True(t, states["idle"])

	maxConns, ok := metrics["db_pool_connections_max"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, maxConns.DataPoints, 1)
	assert.Equal(t, int64(3), maxConns.DataPoints[0].Value)

	require.NoError(t, inst.Close())
	assert.NotContains(t, collect(t, reader), "db_pool_connections_max", "closed instrumentation stops observing")
}

func TestDBConfigFrom(t *testing.T) {
	cfg := telemetry.DBConfigFrom(true, false, "postgres", 0)
	assert.Equal(t, "postgresql", cfg.System)
	assert.True(t, cfg.Tracing)

	cfg = telemetry.DBConfigFrom(false, true, "sqlite", time.Second)
	assert.Equal(t, "sqlite", cfg.System)
	assert.Equal(t, time.Second, cfg.SlowQueryThreshold)
}
