package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
)

// AggregateTypeLowStockAlert is the aggregate type name used in events
const AggregateTypeLowStockAlert = "LowStockAlert"

// LowStockAlert flags a product whose quantity fell to or below its threshold.
// A product has at most one unresolved alert at a time; resolved alerts are kept
// for history until explicitly purged.
type LowStockAlert struct {
	shared.BaseEntity
	ProductID      uuid.UUID
	Quantity       int
	Threshold      int
	TriggeredAt    time.Time
	Resolved       bool
	ResolvedAt     *time.Time
	ResolvedBy     *uuid.UUID
	ResolutionNote string
}

// NewLowStockAlert creates an unresolved alert for the given snapshot
func NewLowStockAlert(productID uuid.UUID, quantity, threshold int) (*LowStockAlert, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product ID cannot be empty")
	}
	if quantity > threshold {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Quantity is above threshold, no alert needed")
	}

	entity := shared.NewBaseEntity()
	return &LowStockAlert{
		BaseEntity:  entity,
		ProductID:   productID,
		Quantity:    quantity,
		Threshold:   threshold,
		TriggeredAt: entity.CreatedAt,
	}, nil
}

// Resolve marks the alert resolved. Resolving twice is an error that also
// matches shared.ErrInvalidState.
func (a *LowStockAlert) Resolve(by uuid.UUID, note string) error {
	if a.Resolved {
		return shared.WrapDomainError(shared.CodeAlertAlreadyResolved,
			"Low-stock alert "+a.ID.String()+" is already resolved", shared.ErrInvalidState)
	}
	now := time.Now()
	a.Resolved = true
	a.ResolvedAt = &now
	if by != uuid.Nil {
		a.ResolvedBy = &by
	}
	a.ResolutionNote = note
	a.UpdatedAt = now
	return nil
}

// Shortfall is how far below the threshold the product was when triggered
func (a *LowStockAlert) Shortfall() int {
	return a.Threshold - a.Quantity
}
