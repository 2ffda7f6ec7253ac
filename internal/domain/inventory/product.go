package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/retail/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeProduct is the aggregate type name used in events
const AggregateTypeProduct = "Product"

// Product is a stock ledger entry: the authoritative on-hand quantity for one product.
// Quantity is only changed through AdjustQuantity so that every change can be paired
// with a StockMovement. Products are never deleted; Deactivate hides them from sale.
type Product struct {
	shared.BaseAggregateRoot
	Code      string
	Name      string
	Category  string
	UnitPrice decimal.Decimal
	Quantity  int
	MinStock  int
	Active    bool
}

// NewProduct creates an active product with zero quantity.
// Initial stock is added afterwards through the ledger so it is audited.
func NewProduct(code, name, category string, unitPrice decimal.Decimal, minStock int) (*Product, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product name cannot be empty")
	}
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Unit price must be positive")
	}
	if minStock < 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Minimum stock cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Category:          strings.TrimSpace(category),
		UnitPrice:         unitPrice,
		Quantity:          0,
		MinStock:          minStock,
		Active:            true,
	}, nil
}

// AdjustQuantity applies a signed delta and returns the quantity before and after.
// It refuses any change that would leave the quantity negative; callers are expected
// to check availability first, this is the last guard.
func (p *Product) AdjustQuantity(delta int) (previous, next int, err error) {
	previous = p.Quantity
	next = previous + delta
	if next < 0 {
		return previous, previous, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Adjusting %s by %d would leave a negative quantity (on hand %d)", p.Code, delta, previous))
	}

	p.Quantity = next
	p.UpdatedAt = time.Now()
	return previous, next, nil
}

// EnsureSellable checks that qty units of this product can be sold right now
func (p *Product) EnsureSellable(qty int) error {
	if !p.Active {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Product %s is inactive and cannot be sold", p.Code))
	}
	if qty > p.Quantity {
		return NewInsufficientStockError(p.ID, p.Name, p.Quantity, qty)
	}
	return nil
}

// IsLowStock reports whether an active product is at or below its threshold
func (p *Product) IsLowStock() bool {
	return p.Active && p.Quantity <= p.MinStock
}

// Deactivate hides the product from sale and low-stock scans. History is retained.
func (p *Product) Deactivate() error {
	if !p.Active {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Product %s is already inactive", p.Code))
	}
	p.Active = false
	p.UpdatedAt = time.Now()
	return nil
}

// Activate makes a deactivated product sellable again
func (p *Product) Activate() {
	if p.Active {
		return
	}
	p.Active = true
	p.UpdatedAt = time.Now()
}

// UpdateDetails changes catalogue attributes. Quantity is deliberately not settable here.
func (p *Product) UpdateDetails(name, category string, unitPrice decimal.Decimal, minStock int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeValidation, "Product name cannot be empty")
	}
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeValidation, "Unit price must be positive")
	}
	if minStock < 0 {
		return shared.NewDomainError(shared.CodeValidation, "Minimum stock cannot be negative")
	}

	p.Name = name
	p.Category = strings.TrimSpace(category)
	p.UnitPrice = unitPrice
	p.MinStock = minStock
	p.UpdatedAt = time.Now()
	return nil
}
