package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Resolution notes recorded by automatic resolutions
const (
	ResolutionNoteReplenished = "auto-resolved on restock"
	ResolutionNoteDeactivated = "product deactivated"
)

// AlertRegister keeps at most one unresolved low-stock alert per product
type AlertRegister struct {
	alerts inventory.LowStockAlertRepository
	logger *zap.Logger
}

// NewAlertRegister creates an alert register over the given repository
func NewAlertRegister(alerts inventory.LowStockAlertRepository, logger *zap.Logger) *AlertRegister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertRegister{alerts: alerts, logger: logger}
}

// HasUnresolved reports whether the product already has an open alert
func (r *AlertRegister) HasUnresolved(ctx context.Context, productID uuid.UUID) (bool, error) {
	return r.alerts.ExistsUnresolved(ctx, productID)
}

// Trigger creates an unresolved alert unless one is already open for the product.
// It returns nil, nil when the alert was de-duplicated.
func (r *AlertRegister) Trigger(ctx context.Context, productID uuid.UUID, quantity, threshold int) (*inventory.LowStockAlert, error) {
	open, err := r.alerts.ExistsUnresolved(ctx, productID)
	if err != nil {
		return nil, wrapPersistence(err, "Failed to check open alerts")
	}
	if open {
		return nil, nil
	}

	alert, err := inventory.NewLowStockAlert(productID, quantity, threshold)
	if err != nil {
		return nil, err
	}
	if err := r.alerts.Create(ctx, alert); err != nil {
		// the partial unique index caught a concurrent trigger; the insert
		// was rolled back to its savepoint and the transaction continues
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, nil
		}
		return nil, wrapPersistence(err, "Failed to create low-stock alert")
	}

	r.logger.Info("low-stock alert triggered",
		zap.String("alert_id", alert.ID.String()),
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
		zap.Int("threshold", threshold),
	)
	return alert, nil
}

// Evaluate triggers an alert when the product is at or below its threshold
func (r *AlertRegister) Evaluate(ctx context.Context, product *inventory.Product) (*inventory.LowStockAlert, error) {
	if !product.IsLowStock() {
		return nil, nil
	}
	return r.Trigger(ctx, product.ID, product.Quantity, product.MinStock)
}

// ResolveOnReplenish resolves the product's open alert once its quantity is back above
// the threshold. It returns the resolved alert, or nil if nothing was resolved.
func (r *AlertRegister) ResolveOnReplenish(ctx context.Context, product *inventory.Product, actor shared.Actor) (*inventory.LowStockAlert, error) {
	if product.Quantity <= product.MinStock {
		return nil, nil
	}
	return r.resolveOpen(ctx, product.ID, actor, ResolutionNoteReplenished)
}

// ResolveForDeactivation closes the open alert of a product that left the catalogue
func (r *AlertRegister) ResolveForDeactivation(ctx context.Context, product *inventory.Product, actor shared.Actor) (*inventory.LowStockAlert, error) {
	return r.resolveOpen(ctx, product.ID, actor, ResolutionNoteDeactivated)
}

func (r *AlertRegister) resolveOpen(ctx context.Context, productID uuid.UUID, actor shared.Actor, note string) (*inventory.LowStockAlert, error) {
	alert, err := r.alerts.FindUnresolvedByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, wrapPersistence(err, "Failed to load open alert")
	}
	if err := alert.Resolve(actor.ID, note); err != nil {
		return nil, err
	}
	if err := r.alerts.MarkResolved(ctx, alert); err != nil {
		return nil, wrapPersistence(err, "Failed to resolve low-stock alert")
	}
	return alert, nil
}

// Resolve closes an alert by id. Resolving an alert twice fails with ALERT_ALREADY_RESOLVED.
func (r *AlertRegister) Resolve(ctx context.Context, alertID uuid.UUID, actor shared.Actor, note string) (*inventory.LowStockAlert, error) {
	alert, err := r.alerts.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if err := alert.Resolve(actor.ID, note); err != nil {
		return nil, err
	}
	if err := r.alerts.MarkResolved(ctx, alert); err != nil {
		return nil, wrapPersistence(err, "Failed to resolve low-stock alert")
	}

	r.logger.Info("low-stock alert resolved",
		zap.String("alert_id", alert.ID.String()),
		zap.String("product_id", alert.ProductID.String()),
		zap.String("resolved_by", actor.Name),
	)
	return alert, nil
}

// ListUnresolved returns open alerts, newest first
func (r *AlertRegister) ListUnresolved(ctx context.Context, filter shared.Filter) ([]inventory.LowStockAlert, int64, error) {
	alerts, err := r.alerts.FindUnresolved(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.alerts.CountUnresolved(ctx)
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// CountUnresolved returns the number of open alerts
func (r *AlertRegister) CountUnresolved(ctx context.Context) (int64, error) {
	return r.alerts.CountUnresolved(ctx)
}

// PurgeResolved deletes resolved alerts whose resolution is older than olderThan.
// Unresolved alerts are never purged.
func (r *AlertRegister) PurgeResolved(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan < 0 {
		return 0, shared.NewDomainError(shared.CodeInvalidArgument, "Retention must not be negative")
	}
	cutoff := time.Now().Add(-olderThan)
	deleted, err := r.alerts.DeleteResolvedBefore(ctx, cutoff)
	if err != nil {
		return 0, wrapPersistence(err, "Failed to purge resolved alerts")
	}
	if deleted > 0 {
		r.logger.Info("purged resolved low-stock alerts",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}

// wrapPersistence keeps domain errors intact and tags anything else as a storage failure
func wrapPersistence(err error, message string) error {
	if shared.IsDomainError(err) {
		return err
	}
	return shared.WrapDomainError(shared.CodePersistence, message, err)
}
