package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
)

// InsufficientStockError reports a shortfall for one product.
// It unwraps to a DomainError with code INSUFFICIENT_STOCK so generic
// error mapping keeps working.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

// NewInsufficientStockError builds the error for a product shortfall
func NewInsufficientStockError(productID uuid.UUID, productName string, available, requested int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID:   productID,
		ProductName: productName,
		Available:   available,
		Requested:   requested,
	}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d (short by %d)",
		e.ProductName, e.Requested, e.Available, e.Shortfall())
}

// Shortfall is the number of units missing
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

// Unwrap exposes the generic domain error
func (e *InsufficientStockError) Unwrap() error {
	return shared.NewDomainError(shared.CodeInsufficientStock, e.Error())
}
