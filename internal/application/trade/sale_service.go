package trade

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
)

// SaleService serves read queries over committed sales
type SaleService struct {
	saleRepo trade.SaleRepository
}

// NewSaleService creates a new SaleService
func NewSaleService(saleRepo trade.SaleRepository) *SaleService {
	return &SaleService{saleRepo: saleRepo}
}

// GetByID retrieves a sale by ID
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetByReceiptNumber retrieves a sale by its receipt number
func (s *SaleService) GetByReceiptNumber(ctx context.Context, receiptNumber string) (*SaleResponse, error) {
	receiptNumber = strings.ToUpper(strings.TrimSpace(receiptNumber))
	if receiptNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Receipt number is required")
	}
	sale, err := s.saleRepo.FindByReceiptNumber(ctx, receiptNumber)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// ListByDateRange lists sales completed in [From, To], most recent first
func (s *SaleService) ListByDateRange(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.To.Before(filter.From) {
		return nil, 0, shared.NewDomainError(shared.CodeInvalidArgument, "End of range is before its start")
	}
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	sales, err := s.saleRepo.FindByDateRange(ctx, filter.From, filter.To, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.saleRepo.CountByDateRange(ctx, filter.From, filter.To)
	if err != nil {
		return nil, 0, err
	}
	return ToSaleResponses(sales), total, nil
}
