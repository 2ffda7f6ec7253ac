package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTopN is the ranking size used when the filter leaves it unset
const DefaultTopN = 10

// SalesSummary aggregates the committed sales of a period.
// It is a read model computed from the sales tables, never persisted.
type SalesSummary struct {
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
	SaleCount    int64           `json:"sale_count"`
	ItemsSold    int64           `json:"items_sold"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	AvgSaleValue decimal.Decimal `json:"avg_sale_value"`
}

// DailySalesTrend is one day of committed sales
type DailySalesTrend struct {
	Date      time.Time       `json:"date"`
	SaleCount int64           `json:"sale_count"`
	ItemsSold int64           `json:"items_sold"`
	Total     decimal.Decimal `json:"total"`
}

// ProductSalesRanking ranks products by revenue
type ProductSalesRanking struct {
	Rank        int             `json:"rank"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category,omitempty"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
	SaleCount   int64           `json:"sale_count"`
}

// CashierSalesRanking ranks the users who rang up sales
type CashierSalesRanking struct {
	Rank      int             `json:"rank"`
	ActorID   uuid.UUID       `json:"actor_id"`
	ActorName string          `json:"actor_name"`
	SaleCount int64           `json:"sale_count"`
	Total     decimal.Decimal `json:"total"`
}

// PaymentMethodBreakdown splits takings by payment method
type PaymentMethodBreakdown struct {
	PaymentMethod string          `json:"payment_method"`
	SaleCount     int64           `json:"sale_count"`
	Total         decimal.Decimal `json:"total"`
	Percentage    decimal.Decimal `json:"percentage"` // share of the period total
}

// SalesReportFilter selects committed sales by completion time
type SalesReportFilter struct {
	StartDate time.Time
	EndDate   time.Time
	ProductID *uuid.UUID
	Category  string
	TopN      int
}

// Limit returns TopN, or DefaultTopN when unset
func (f SalesReportFilter) Limit() int {
	if f.TopN <= 0 {
		return DefaultTopN
	}
	return f.TopN
}

// SalesReportRepository answers sales report queries
type SalesReportRepository interface {
	GetSalesSummary(ctx context.Context, filter SalesReportFilter) (*SalesSummary, error)
	GetDailySalesTrend(ctx context.Context, filter SalesReportFilter) ([]DailySalesTrend, error)
	GetProductSalesRanking(ctx context.Context, filter SalesReportFilter) ([]ProductSalesRanking, error)
	GetCashierSalesRanking(ctx context.Context, filter SalesReportFilter) ([]CashierSalesRanking, error)
	GetPaymentMethodBreakdown(ctx context.Context, filter SalesReportFilter) ([]PaymentMethodBreakdown, error)
}
