package telemetry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/retail/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_RecordSaleCompleted(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: provider.Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordSaleCompleted(ctx, "CASH", decimal.RequireFromString("12.34"))
	bm.RecordSaleCompleted(ctx, "CASH", decimal.RequireFromString("0.66"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	assert.Equal(t, int64(2), sumOf(t, rm, "retail_sale_completed_total"))
	assert.Equal(t, int64(1300), sumOf(t, rm, "retail_sale_amount_total"))
}

func TestBusinessMetrics_RecordStockMovement(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: provider.Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordStockMovement(ctx, "SALE", -3)
	bm.RecordStockMovement(ctx, "RESTOCK", 10)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	assert.Equal(t, int64(2), sumOf(t, rm, "retail_stock_movement_total"))
	assert.Equal(t, int64(13), sumOf(t, rm, "retail_stock_units_total"))
}

func TestBusinessMetrics_CheckoutAndAlerts(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordCheckoutFailed(ctx, "RESERVING", "INSUFFICIENT_STOCK")
	bm.RecordCheckoutFailed(ctx, "COMMITTING", "")
	bm.RecordCheckoutDuration(ctx, 15*time.Millisecond, "COMPLETED")
	bm.RecordLowStockAlert(ctx, telemetry.AlertTriggered)
	bm.RecordLowStockAlert(ctx, telemetry.AlertResolved)
	bm.RecordLowStockCount(ctx, 5)
	bm.RecordOpenAlertCount(ctx, 3)
}

// Mock implementation for testing periodic collection

type mockInventoryProvider struct {
	lowStockCount int64
	openAlerts    int64
	err           error
	calls         atomic.Int32
}

func (m *mockInventoryProvider) GetLowStockCount(ctx context.Context) (int64, error) {
	m.calls.Add(1)
	if m.err != nil {
		return 0, m.err
	}
	return m.lowStockCount, nil
}

func (m *mockInventoryProvider) GetOpenAlertCount(ctx context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.openAlerts, nil
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	inventoryProvider := &mockInventoryProvider{
		lowStockCount: 5,
		openAlerts:    2,
	}

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:             meter,
		Logger:            zap.NewNop(),
		InventoryProvider: inventoryProvider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start periodic collection with short interval for testing
	bm.StartPeriodicCollection(ctx, 100*time.Millisecond)

	assert.Eventually(t, func() bool {
		return inventoryProvider.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	bm.Stop()
}

func TestBusinessMetrics_CollectInventoryMetrics_ProviderError(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	provider := &mockInventoryProvider{err: errors.New("db down")}
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:             meter,
		InventoryProvider: provider,
	})
	require.NoError(t, err)

	// Errors are logged, never propagated
	bm.CollectInventoryMetrics(context.Background())
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestBusinessMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
		// No inventory provider
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Should not panic with no inventory provider
	bm.StartPeriodicCollection(ctx, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_Stop_Idempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	// Calling Stop multiple times should not panic
	bm.Stop()
	bm.Stop()
	bm.Stop()
}

func TestBusinessMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Calling StartPeriodicCollection multiple times should only start once
	bm.StartPeriodicCollection(ctx, time.Hour)
	bm.StartPeriodicCollection(ctx, time.Minute)
	bm.StartPeriodicCollection(ctx, time.Second)

	bm.Stop()
}

func TestAlertTransition_Values(t *testing.T) {
	assert.Equal(t, telemetry.AlertTransition("triggered"), telemetry.AlertTriggered)
	assert.Equal(t, telemetry.AlertTransition("resolved"), telemetry.AlertResolved)
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}

// sumOf adds up every data point of an int64 sum metric
func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not collected", name)
	return 0
}
