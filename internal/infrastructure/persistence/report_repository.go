package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/report"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// GormSalesReportRepository implements report.SalesReportRepository with
// aggregate queries over sales and sale_items
type GormSalesReportRepository struct {
	db *gorm.DB
}

// NewGormSalesReportRepository creates a new GormSalesReportRepository
func NewGormSalesReportRepository(db *gorm.DB) *GormSalesReportRepository {
	return &GormSalesReportRepository{db: db}
}

// completedSales scopes a query on "sales s" to sales committed in the period
func (r *GormSalesReportRepository) completedSales(ctx context.Context, filter report.SalesReportFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Table("sales s").
		Where("s.status = ?", string(trade.SaleStatusCompleted)).
		Where("s.completed_at >= ? AND s.completed_at <= ?", filter.StartDate, filter.EndDate)

	if filter.ProductID != nil || filter.Category != "" {
		items := r.db.Table("sale_items si").Select("si.sale_id")
		if filter.ProductID != nil {
			items = items.Where("si.product_id = ?", *filter.ProductID)
		}
		if filter.Category != "" {
			items = items.Where("si.category = ?", filter.Category)
		}
		query = query.Where("s.id IN (?)", items)
	}
	return query
}

// GetSalesSummary returns the totals of the period
func (r *GormSalesReportRepository) GetSalesSummary(ctx context.Context, filter report.SalesReportFilter) (*report.SalesSummary, error) {
	var totals struct {
		SaleCount int64
		Subtotal  decimal.Decimal
		Tax       decimal.Decimal
		Discount  decimal.Decimal
		Total     decimal.Decimal
	}
	err := r.completedSales(ctx, filter).
		Select(`
			COUNT(*) AS sale_count,
			COALESCE(SUM(s.subtotal), 0) AS subtotal,
			COALESCE(SUM(s.tax), 0) AS tax,
			COALESCE(SUM(s.discount), 0) AS discount,
			COALESCE(SUM(s.total), 0) AS total
		`).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}

	var itemsSold int64
	err = r.completedSales(ctx, filter).
		Joins("JOIN sale_items si ON si.sale_id = s.id").
		Select("COALESCE(SUM(si.quantity), 0)").
		Scan(&itemsSold).Error
	if err != nil {
		return nil, fmt.Errorf("sales summary items: %w", err)
	}

	summary := &report.SalesSummary{
		PeriodStart: filter.StartDate,
		PeriodEnd:   filter.EndDate,
		SaleCount:   totals.SaleCount,
		ItemsSold:   itemsSold,
		Subtotal:    totals.Subtotal,
		Tax:         totals.Tax,
		Discount:    totals.Discount,
		Total:       totals.Total,
	}
	if totals.SaleCount > 0 {
		summary.AvgSaleValue = totals.Total.Div(decimal.NewFromInt(totals.SaleCount)).Round(2)
	}
	return summary, nil
}

// GetDailySalesTrend returns one row per day with at least one sale, oldest first
func (r *GormSalesReportRepository) GetDailySalesTrend(ctx context.Context, filter report.SalesReportFilter) ([]report.DailySalesTrend, error) {
	var rows []struct {
		Day       string
		SaleCount int64
		Total     decimal.Decimal
	}
	err := r.completedSales(ctx, filter).
		Select(`
			DATE(s.completed_at) AS day,
			COUNT(*) AS sale_count,
			COALESCE(SUM(s.total), 0) AS total
		`).
		Group("DATE(s.completed_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("daily sales trend: %w", err)
	}

	var items []struct {
		Day       string
		ItemsSold int64
	}
	err = r.completedSales(ctx, filter).
		Joins("JOIN sale_items si ON si.sale_id = s.id").
		Select("DATE(s.completed_at) AS day, COALESCE(SUM(si.quantity), 0) AS items_sold").
		Group("DATE(s.completed_at)").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("daily items sold: %w", err)
	}
	sold := make(map[string]int64, len(items))
	for _, it := range items {
		sold[it.Day] = it.ItemsSold
	}

	trend := make([]report.DailySalesTrend, 0, len(rows))
	for _, row := range rows {
		day, err := parseDay(row.Day)
		if err != nil {
			return nil, err
		}
		trend = append(trend, report.DailySalesTrend{
			Date:      day,
			SaleCount: row.SaleCount,
			ItemsSold: sold[row.Day],
			Total:     row.Total,
		})
	}
	return trend, nil
}

// parseDay reads the leading YYYY-MM-DD of a DATE() result. Postgres hands
// back a timestamp rendered as text, sqlite a bare date.
func parseDay(value string) (time.Time, error) {
	if len(value) < len(time.DateOnly) {
		return time.Time{}, fmt.Errorf("unexpected date value %q", value)
	}
	return time.Parse(time.DateOnly, value[:len(time.DateOnly)])
}

// GetProductSalesRanking returns the top products by revenue
func (r *GormSalesReportRepository) GetProductSalesRanking(ctx context.Context, filter report.SalesReportFilter) ([]report.ProductSalesRanking, error) {
	var rows []struct {
		ProductID   uuid.UUID
		ProductName string
		Category    string
		Quantity    int64
		Revenue     decimal.Decimal
		SaleCount   int64
	}
	query := r.completedSales(ctx, filter).
		Joins("JOIN sale_items si ON si.sale_id = s.id").
		Select(`
			si.product_id AS product_id,
			MAX(si.product_name) AS product_name,
			COALESCE(MAX(si.category), '') AS category,
			SUM(si.quantity) AS quantity,
			SUM(si.line_total) AS revenue,
			COUNT(DISTINCT s.id) AS sale_count
		`)
	if filter.ProductID != nil {
		query = query.Where("si.product_id = ?", *filter.ProductID)
	}
	if filter.Category != "" {
		query = query.Where("si.category = ?", filter.Category)
	}
	err := query.
		Group("si.product_id").
		Order("revenue DESC").
		Order("quantity DESC").
		Limit(filter.Limit()).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("product sales ranking: %w", err)
	}

	ranking := make([]report.ProductSalesRanking, len(rows))
	for i, row := range rows {
		ranking[i] = report.ProductSalesRanking{
			Rank:        i + 1,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Category:    row.Category,
			Quantity:    row.Quantity,
			Revenue:     row.Revenue,
			SaleCount:   row.SaleCount,
		}
	}
	return ranking, nil
}

// GetCashierSalesRanking returns the users with the highest takings
func (r *GormSalesReportRepository) GetCashierSalesRanking(ctx context.Context, filter report.SalesReportFilter) ([]report.CashierSalesRanking, error) {
	var rows []struct {
		ActorID   uuid.UUID
		ActorName string
		SaleCount int64
		Total     decimal.Decimal
	}
	err := r.completedSales(ctx, filter).
		Select(`
			s.actor_id AS actor_id,
			MAX(s.actor_name) AS actor_name,
			COUNT(*) AS sale_count,
			SUM(s.total) AS total
		`).
		Group("s.actor_id").
		Order("total DESC").
		Limit(filter.Limit()).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("cashier sales ranking: %w", err)
	}

	ranking := make([]report.CashierSalesRanking, len(rows))
	for i, row := range rows {
		ranking[i] = report.CashierSalesRanking{
			Rank:      i + 1,
			ActorID:   row.ActorID,
			ActorName: row.ActorName,
			SaleCount: row.SaleCount,
			Total:     row.Total,
		}
	}
	return ranking, nil
}

// GetPaymentMethodBreakdown returns takings per payment method, largest first
func (r *GormSalesReportRepository) GetPaymentMethodBreakdown(ctx context.Context, filter report.SalesReportFilter) ([]report.PaymentMethodBreakdown, error) {
	var rows []report.PaymentMethodBreakdown
	err := r.completedSales(ctx, filter).
		Select(`
			s.payment_method AS payment_method,
			COUNT(*) AS sale_count,
			SUM(s.total) AS total
		`).
		Group("s.payment_method").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("payment method breakdown: %w", err)
	}

	grand := decimal.Zero
	for _, row := range rows {
		grand = grand.Add(row.Total)
	}
	if !grand.IsZero() {
		for i := range rows {
			rows[i].Percentage = rows[i].Total.Div(grand).Mul(hundred).Round(2)
		}
	}
	return rows, nil
}

// GormInventoryReportRepository implements report.InventoryReportRepository
type GormInventoryReportRepository struct {
	db *gorm.DB
}

// NewGormInventoryReportRepository creates a new GormInventoryReportRepository
func NewGormInventoryReportRepository(db *gorm.DB) *GormInventoryReportRepository {
	return &GormInventoryReportRepository{db: db}
}

// GetInventorySummary returns the current stock position of active products
func (r *GormInventoryReportRepository) GetInventorySummary(ctx context.Context) (*report.InventorySummary, error) {
	var summary report.InventorySummary
	err := r.db.WithContext(ctx).Table("products").
		Select(`
			COUNT(*) AS active_products,
			COALESCE(SUM(quantity), 0) AS total_quantity,
			COALESCE(SUM(quantity * unit_price), 0) AS total_value,
			COALESCE(SUM(CASE WHEN quantity <= min_stock THEN 1 ELSE 0 END), 0) AS low_stock_count,
			COALESCE(SUM(CASE WHEN quantity = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock_count
		`).
		Where("active = ?", true).
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("inventory summary: %w", err)
	}

	err = r.db.WithContext(ctx).Table("low_stock_alerts").
		Where("resolved = ?", false).
		Count(&summary.OpenAlertCount).Error
	if err != nil {
		return nil, fmt.Errorf("open alert count: %w", err)
	}
	return &summary, nil
}

// GetInventoryValueByCategory returns stock value per category, largest first
func (r *GormInventoryReportRepository) GetInventoryValueByCategory(ctx context.Context) ([]report.InventoryValueByCategory, error) {
	var rows []report.InventoryValueByCategory
	err := r.db.WithContext(ctx).Table("products").
		Select(`
			COALESCE(category, '') AS category,
			COUNT(*) AS product_count,
			COALESCE(SUM(quantity), 0) AS total_quantity,
			COALESCE(SUM(quantity * unit_price), 0) AS total_value
		`).
		Where("active = ?", true).
		Group("COALESCE(category, '')").
		Order("total_value DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("inventory value by category: %w", err)
	}

	grand := decimal.Zero
	for _, row := range rows {
		grand = grand.Add(row.TotalValue)
	}
	if !grand.IsZero() {
		for i := range rows {
			rows[i].Percentage = rows[i].TotalValue.Div(grand).Mul(hundred).Round(2)
		}
	}
	return rows, nil
}

// GetMovementSummary totals the audit log per movement type for the period
func (r *GormInventoryReportRepository) GetMovementSummary(ctx context.Context, filter report.MovementReportFilter) ([]report.MovementSummary, error) {
	var rows []report.MovementSummary
	err := r.db.WithContext(ctx).Table("stock_movements").
		Select(`
			movement_type AS movement_type,
			COUNT(*) AS movement_count,
			COALESCE(SUM(quantity_changed), 0) AS net_quantity
		`).
		Where("created_at >= ? AND created_at <= ?", filter.StartDate, filter.EndDate).
		Group("movement_type").
		Order("movement_type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("movement summary: %w", err)
	}
	return rows, nil
}
