package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/report"
	"github.com/retail/backend/internal/domain/shared"
)

// MaxTopN caps ranking sizes
const MaxTopN = 100

// ReportService serves read-only sales and inventory reports
type ReportService struct {
	salesRepo     report.SalesReportRepository
	inventoryRepo report.InventoryReportRepository
}

// NewReportService creates a new ReportService
func NewReportService(salesRepo report.SalesReportRepository, inventoryRepo report.InventoryReportRepository) *ReportService {
	return &ReportService{
		salesRepo:     salesRepo,
		inventoryRepo: inventoryRepo,
	}
}

// SalesReportFilter is the query of every sales report endpoint
type SalesReportFilter struct {
	From      time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	To        time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	ProductID string    `form:"product_id" binding:"omitempty,uuid"`
	Category  string    `form:"category" binding:"max=100"`
	TopN      int       `form:"top_n" binding:"omitempty,min=1,max=100"`
}

// MovementReportFilter is the query of the audit log summary
type MovementReportFilter struct {
	From time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidArgument, "Both from and to are required")
	}
	if !to.After(from) {
		return shared.NewDomainError(shared.CodeInvalidArgument, "to must be after from")
	}
	return nil
}

func (f SalesReportFilter) toDomain() (report.SalesReportFilter, error) {
	if err := validateRange(f.From, f.To); err != nil {
		return report.SalesReportFilter{}, err
	}
	topN := f.TopN
	if topN > MaxTopN {
		topN = MaxTopN
	}
	out := report.SalesReportFilter{
		StartDate: f.From,
		EndDate:   f.To,
		Category:  f.Category,
		TopN:      topN,
	}
	if f.ProductID != "" {
		id, err := uuid.Parse(f.ProductID)
		if err != nil {
			return report.SalesReportFilter{}, shared.NewDomainError(shared.CodeInvalidArgument, "product_id must be a UUID")
		}
		out.ProductID = &id
	}
	return out, nil
}

// GetSalesSummary returns the totals of committed sales in the period
func (s *ReportService) GetSalesSummary(ctx context.Context, filter SalesReportFilter) (*report.SalesSummary, error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}
	return s.salesRepo.GetSalesSummary(ctx, domainFilter)
}

// GetDailySalesTrend returns committed sales per day
func (s *ReportService) GetDailySalesTrend(ctx context.Context, filter SalesReportFilter) ([]report.DailySalesTrend, error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}
	return s.salesRepo.GetDailySalesTrend(ctx, domainFilter)
}

// GetTopProducts ranks products by revenue
func (s *ReportService) GetTopProducts(ctx context.Context, filter SalesReportFilter) ([]report.ProductSalesRanking, error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}
	return s.salesRepo.GetProductSalesRanking(ctx, domainFilter)
}

// GetCashierRanking ranks users by takings
func (s *ReportService) GetCashierRanking(ctx context.Context, filter SalesReportFilter) ([]report.CashierSalesRanking, error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}
	return s.salesRepo.GetCashierSalesRanking(ctx, domainFilter)
}

// GetPaymentBreakdown splits takings by payment method
func (s *ReportService) GetPaymentBreakdown(ctx context.Context, filter SalesReportFilter) ([]report.PaymentMethodBreakdown, error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}
	return s.salesRepo.GetPaymentMethodBreakdown(ctx, domainFilter)
}

// GetInventorySummary returns the current stock position
func (s *ReportService) GetInventorySummary(ctx context.Context) (*report.InventorySummary, error) {
	return s.inventoryRepo.GetInventorySummary(ctx)
}

// GetInventoryValueByCategory returns stock value per category
func (s *ReportService) GetInventoryValueByCategory(ctx context.Context) ([]report.InventoryValueByCategory, error) {
	return s.inventoryRepo.GetInventoryValueByCategory(ctx)
}

// GetMovementSummary totals the audit log per movement type
func (s *ReportService) GetMovementSummary(ctx context.Context, filter MovementReportFilter) ([]report.MovementSummary, error) {
	if err := validateRange(filter.From, filter.To); err != nil {
		return nil, err
	}
	return s.inventoryRepo.GetMovementSummary(ctx, report.MovementReportFilter{
		StartDate: filter.From,
		EndDate:   filter.To,
	})
}
