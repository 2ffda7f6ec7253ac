package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockChange describes one quantity change to apply through the ledger
type StockChange struct {
	ProductID uuid.UUID
	Type      inventory.MovementType
	Delta     int
	// WriteOff removes the remaining quantity on deactivation; ignored for other types
	WriteOff  bool
	Reason    string
	RelatedID *uuid.UUID
	Actor     shared.Actor
}

// StockChangeResult collects everything one applied change produced
type StockChangeResult struct {
	Product        *inventory.Product
	Movement       *inventory.StockMovement
	TriggeredAlert *inventory.LowStockAlert
	ResolvedAlert  *inventory.LowStockAlert
}

// Events returns the domain events to publish once the transaction has committed
func (r *StockChangeResult) Events() []shared.DomainEvent {
	events := []shared.DomainEvent{inventory.NewStockChangedEvent(r.Movement)}
	if r.TriggeredAlert != nil {
		events = append(events, inventory.NewLowStockAlertTriggeredEvent(r.TriggeredAlert, r.Product))
	}
	if r.ResolvedAlert != nil {
		events = append(events, inventory.NewLowStockAlertResolvedEvent(r.ResolvedAlert))
	}
	return events
}

// AlertPolicy tunes how the alert register reacts to stock increases
type AlertPolicy struct {
	// ResolveOnRestock closes the open alert once a restock lifts quantity above threshold
	ResolveOnRestock bool
}

// StockChanger is the single composition every stock change goes through:
// ledger update, then audit append, then alert evaluation. It must run inside
// a transaction scope; any failure aborts the whole change.
type StockChanger struct {
	policy AlertPolicy
	logger *zap.Logger
}

// NewStockChanger creates a StockChanger
func NewStockChanger(policy AlertPolicy, logger *zap.Logger) *StockChanger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockChanger{policy: policy, logger: logger}
}

// Apply performs the change against the transaction-scoped repositories
func (c *StockChanger) Apply(ctx context.Context, repos TransactionalRepositories, change StockChange) (*StockChangeResult, error) {
	if err := validateStockChange(change); err != nil {
		return nil, err
	}

	ledger := NewStockLedger(repos.ProductRepo())
	var (
		adj *LedgerAdjustment
		err error
	)
	if change.Type == inventory.MovementTypeDeactivation {
		adj, err = ledger.Deactivate(ctx, change.ProductID, change.WriteOff)
	} else {
		adj, err = ledger.Adjust(ctx, change.ProductID, change.Delta)
	}
	if err != nil {
		return nil, err
	}

	movement, err := inventory.NewStockMovement(change.ProductID, change.Type, adj.Previous, adj.Delta(), change.Actor)
	if err != nil {
		return nil, err
	}
	movement.WithReason(change.Reason)
	if change.RelatedID != nil {
		movement.WithRelatedID(*change.RelatedID)
	}
	if err := NewAuditLog(repos.MovementRepo()).Append(ctx, movement); err != nil {
		c.logger.Error("stock movement append failed, aborting change",
			zap.String("product_id", change.ProductID.String()),
			zap.String("type", change.Type.String()),
			zap.Int("delta", adj.Delta()),
			zap.Error(err),
		)
		return nil, err
	}

	result := &StockChangeResult{Product: adj.Product, Movement: movement}
	register := NewAlertRegister(repos.AlertRepo(), c.logger)
	switch {
	case change.Type == inventory.MovementTypeDeactivation:
		result.ResolvedAlert, err = register.ResolveForDeactivation(ctx, adj.Product, change.Actor)
	case adj.Product.IsLowStock():
		result.TriggeredAlert, err = register.Evaluate(ctx, adj.Product)
	case adj.Delta() > 0 && c.policy.ResolveOnRestock:
		result.ResolvedAlert, err = register.ResolveOnReplenish(ctx, adj.Product, change.Actor)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validateStockChange(change StockChange) error {
	if change.ProductID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidArgument, "Product ID is required")
	}
	if !change.Type.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidArgument, fmt.Sprintf("Unknown movement type %q", change.Type))
	}
	if change.Type == inventory.MovementTypeDeactivation {
		return nil
	}
	if !change.Type.AcceptsDelta(change.Delta) {
		return shared.NewDomainError(shared.CodeInvalidArgument,
			fmt.Sprintf("Quantity change %d is not allowed for %s", change.Delta, change.Type))
	}
	return nil
}
