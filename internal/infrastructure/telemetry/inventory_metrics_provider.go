package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormInventoryMetricsProvider implements InventoryMetricsProvider using GORM.
// It queries the products and low_stock_alerts tables directly for aggregated metrics.
type GormInventoryMetricsProvider struct {
	db *gorm.DB
}

// NewGormInventoryMetricsProvider creates a new GormInventoryMetricsProvider.
func NewGormInventoryMetricsProvider(db *gorm.DB) *GormInventoryMetricsProvider {
	return &GormInventoryMetricsProvider{db: db}
}

// GetLowStockCount returns the number of active products at or below their threshold.
func (p *GormInventoryMetricsProvider) GetLowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("active = ? AND quantity <= min_stock", true).
		Count(&count).Error

	return count, err
}

// GetOpenAlertCount returns the number of unresolved low-stock alerts.
func (p *GormInventoryMetricsProvider) GetOpenAlertCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("low_stock_alerts").
		Where("resolved = ?", false).
		Count(&count).Error

	return count, err
}
