package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
)

// AuditLog records every stock change. Records are immutable once appended and the
// log never updates or deletes them.
type AuditLog struct {
	movements inventory.StockMovementRepository
}

// NewAuditLog creates an audit log over the given movement repository
func NewAuditLog(movements inventory.StockMovementRepository) *AuditLog {
	return &AuditLog{movements: movements}
}

// Append persists a movement. Any failure is returned as a PERSISTENCE_ERROR so that
// the surrounding transaction aborts; a stock change without its record is not allowed.
func (a *AuditLog) Append(ctx context.Context, movement *inventory.StockMovement) error {
	if err := a.movements.Append(ctx, movement); err != nil {
		if shared.IsDomainError(err) {
			return err
		}
		return shared.WrapDomainError(shared.CodePersistence, "Failed to append stock movement", err)
	}
	return nil
}

// QueryByProduct returns a product's movements, newest first
func (a *AuditLog) QueryByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, int64, error) {
	movements, err := a.movements.FindByProduct(ctx, productID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := a.movements.CountByProduct(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// QueryByDateRange returns movements recorded in [start, end]
func (a *AuditLog) QueryByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]inventory.StockMovement, error) {
	if end.Before(start) {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "End of range must not be before start")
	}
	return a.movements.FindByDateRange(ctx, start, end, filter)
}

// QueryByUser returns movements recorded by one actor
func (a *AuditLog) QueryByUser(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	return a.movements.FindByActor(ctx, actorID, filter)
}

// QueryByRelated returns the movements produced by one document, such as a sale
func (a *AuditLog) QueryByRelated(ctx context.Context, relatedID uuid.UUID) ([]inventory.StockMovement, error) {
	return a.movements.FindByRelatedID(ctx, relatedID)
}
