package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InventorySummary is a snapshot of the stock ledger
type InventorySummary struct {
	ActiveProducts  int64           `json:"active_products"`
	TotalQuantity   int64           `json:"total_quantity"`
	TotalValue      decimal.Decimal `json:"total_value"` // quantity x unit price
	LowStockCount   int64           `json:"low_stock_count"`
	OutOfStockCount int64           `json:"out_of_stock_count"`
	OpenAlertCount  int64           `json:"open_alert_count"`
}

// InventoryValueByCategory groups stock value by product category
type InventoryValueByCategory struct {
	Category      string          `json:"category"`
	ProductCount  int64           `json:"product_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
	Percentage    decimal.Decimal `json:"percentage"`
}

// MovementSummary totals audit log entries of one movement type
type MovementSummary struct {
	MovementType  string `json:"movement_type"`
	MovementCount int64  `json:"movement_count"`
	NetQuantity   int64  `json:"net_quantity"`
}

// MovementReportFilter selects audit log entries by creation time
type MovementReportFilter struct {
	StartDate time.Time
	EndDate   time.Time
}

// InventoryReportRepository answers inventory report queries
type InventoryReportRepository interface {
	GetInventorySummary(ctx context.Context) (*InventorySummary, error)
	GetInventoryValueByCategory(ctx context.Context) ([]InventoryValueByCategory, error)
	GetMovementSummary(ctx context.Context, filter MovementReportFilter) ([]MovementSummary, error)
}
