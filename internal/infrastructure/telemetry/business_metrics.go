// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the point-of-sale backend.
// It tracks checkouts, stock movements and low-stock alerts.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	saleCompletedTotal  *Counter
	saleAmountTotal     *Counter
	checkoutFailedTotal *Counter
	stockMovementTotal  *Counter
	stockUnitsTotal     *Counter
	lowStockAlertTotal  *Counter

	// Histogram metrics
	checkoutDuration *Histogram

	// Gauge metrics (point-in-time values)
	lowStockProducts *Gauge
	openAlerts       *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	inventoryProvider InventoryMetricsProvider
}

// InventoryMetricsProvider provides inventory data for periodic metrics collection.
// This interface allows the telemetry layer to query inventory state without
// depending on the inventory domain directly.
type InventoryMetricsProvider interface {
	// GetLowStockCount returns the number of active products at or below their threshold
	GetLowStockCount(ctx context.Context) (int64, error)

	// GetOpenAlertCount returns the number of unresolved low-stock alerts
	GetOpenAlertCount(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	CollectInterval   time.Duration // Default: 5 minutes
	InventoryProvider InventoryMetricsProvider
}

// CheckoutDurationBuckets are bucket boundaries for checkout duration (seconds).
var CheckoutDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:             cfg.Meter,
		logger:            logger,
		stopChan:          make(chan struct{}),
		inventoryProvider: cfg.InventoryProvider,
	}

	var err error

	// Sale metrics
	bm.saleCompletedTotal, err = NewCounter(
		cfg.Meter,
		"retail_sale_completed_total",
		"Total number of committed sales",
		"{sales}",
	)
	if err != nil {
		return nil, err
	}

	bm.saleAmountTotal, err = NewCounter(
		cfg.Meter,
		"retail_sale_amount_total",
		"Total committed sale amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.checkoutFailedTotal, err = NewCounter(
		cfg.Meter,
		"retail_checkout_failed_total",
		"Total number of rejected or rolled back checkouts",
		"{checkouts}",
	)
	if err != nil {
		return nil, err
	}

	bm.checkoutDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "retail_checkout_duration_seconds",
		Description: "Duration of checkout processing",
		Unit:        "s",
		Boundaries:  CheckoutDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	// Stock metrics
	bm.stockMovementTotal, err = NewCounter(
		cfg.Meter,
		"retail_stock_movement_total",
		"Total number of stock movements recorded",
		"{movements}",
	)
	if err != nil {
		return nil, err
	}

	bm.stockUnitsTotal, err = NewCounter(
		cfg.Meter,
		"retail_stock_units_total",
		"Total absolute units moved by stock movements",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	bm.lowStockAlertTotal, err = NewCounter(
		cfg.Meter,
		"retail_low_stock_alert_total",
		"Total number of low-stock alerts triggered or resolved",
		"{alerts}",
	)
	if err != nil {
		return nil, err
	}

	// Inventory gauge metrics
	bm.lowStockProducts, err = NewGauge(
		cfg.Meter,
		"retail_inventory_low_stock_count",
		"Number of active products at or below their minimum stock threshold",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	bm.openAlerts, err = NewGauge(
		cfg.Meter,
		"retail_inventory_open_alerts",
		"Number of unresolved low-stock alerts",
		"{alerts}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Sale Metrics
// =============================================================================

// RecordSaleCompleted records a committed sale and its amount.
func (bm *BusinessMetrics) RecordSaleCompleted(ctx context.Context, paymentMethod string, total decimal.Decimal) {
	bm.saleCompletedTotal.Inc(ctx, AttrPaymentMethod.String(paymentMethod))

	// Convert to cents (multiply by 100)
	cents := total.Mul(decimal.NewFromInt(100)).IntPart()
	bm.saleAmountTotal.Add(ctx, cents, AttrPaymentMethod.String(paymentMethod))
}

// RecordCheckoutFailed records a checkout that did not commit.
// Stage is the processing state the failure occurred in.
func (bm *BusinessMetrics) RecordCheckoutFailed(ctx context.Context, stage, errorCode string) {
	if errorCode == "" {
		errorCode = "UNKNOWN"
	}
	bm.checkoutFailedTotal.Inc(ctx,
		AttrCheckoutStage.String(stage),
		AttrErrorCode.String(errorCode),
	)
}

// RecordCheckoutDuration records how long a checkout took, labelled by its final state.
func (bm *BusinessMetrics) RecordCheckoutDuration(ctx context.Context, d time.Duration, outcome string) {
	bm.checkoutDuration.RecordDuration(ctx, d, AttrCheckoutOutcome.String(outcome))
}

// =============================================================================
// Stock Metrics
// =============================================================================

// RecordStockMovement records one audited stock movement.
func (bm *BusinessMetrics) RecordStockMovement(ctx context.Context, movementType string, delta int) {
	if delta < 0 {
		delta = -delta
	}
	bm.stockMovementTotal.Inc(ctx, AttrMovementType.String(movementType))
	bm.stockUnitsTotal.Add(ctx, int64(delta), AttrMovementType.String(movementType))
}

// AlertTransition labels low-stock alert counters.
type AlertTransition string

const (
	AlertTriggered AlertTransition = "triggered"
	AlertResolved  AlertTransition = "resolved"
)

// RecordLowStockAlert records an alert being opened or closed.
func (bm *BusinessMetrics) RecordLowStockAlert(ctx context.Context, transition AlertTransition) {
	bm.lowStockAlertTotal.Inc(ctx, AttrAlertTransition.String(string(transition)))
}

// RecordLowStockCount records the number of products at or below their threshold.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	bm.lowStockProducts.Record(ctx, count)
}

// RecordOpenAlertCount records the number of unresolved alerts.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenAlertCount(ctx context.Context, count int64) {
	bm.openAlerts.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects inventory metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.CollectInventoryMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.CollectInventoryMetrics(ctx)
		}
	}
}

// CollectInventoryMetrics collects inventory gauge metrics once.
func (bm *BusinessMetrics) CollectInventoryMetrics(ctx context.Context) {
	if bm.inventoryProvider == nil {
		bm.logger.Debug("No inventory provider configured, skipping inventory metrics collection")
		return
	}

	lowStockCount, err := bm.inventoryProvider.GetLowStockCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get low stock count", zap.Error(err))
	} else {
		bm.RecordLowStockCount(ctx, lowStockCount)
	}

	openAlerts, err := bm.inventoryProvider.GetOpenAlertCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get open alert count", zap.Error(err))
	} else {
		bm.RecordOpenAlertCount(ctx, openAlerts)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Business metrics attribute keys not already defined in metrics.go
var (
	AttrCheckoutStage   = attribute.Key("checkout_stage")
	AttrCheckoutOutcome = attribute.Key("checkout_outcome")
	AttrErrorCode       = attribute.Key("error_code")
	AttrMovementType    = attribute.Key("movement_type")
	AttrAlertTransition = attribute.Key("alert_transition")
)
