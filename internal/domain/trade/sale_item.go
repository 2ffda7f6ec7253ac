package trade

import (
	"strings"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleItem is one cart line. Name, category and price are copies taken when the
// product was added, so later catalogue edits do not rewrite historical sales.
type SaleItem struct {
	ProductID   uuid.UUID
	ProductName string
	Category    string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal // Quantity * UnitPrice, always recomputed
}

// NewSaleItem creates a line with its total computed
func NewSaleItem(productID uuid.UUID, name, category string, qty int, unitPrice decimal.Decimal) (*SaleItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Product ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Product name cannot be empty")
	}
	if qty <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Unit price cannot be negative")
	}

	return &SaleItem{
		ProductID:   productID,
		ProductName: name,
		Category:    strings.TrimSpace(category),
		Quantity:    qty,
		UnitPrice:   unitPrice,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(qty))),
	}, nil
}

func (i *SaleItem) setQuantity(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError(shared.CodeInvalidArgument, "Quantity must be positive")
	}
	i.Quantity = qty
	i.LineTotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
	return nil
}
