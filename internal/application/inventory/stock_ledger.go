package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
)

// LedgerAdjustment is the outcome of one quantity change on the ledger
type LedgerAdjustment struct {
	Product  *inventory.Product
	Previous int
	New      int
}

// Delta returns the signed change that was applied
func (a LedgerAdjustment) Delta() int {
	return a.New - a.Previous
}

// StockLedger is the authoritative per-product quantity store.
// Bind it to transaction-scoped repositories when the change has to commit
// together with its audit record.
type StockLedger struct {
	products inventory.ProductRepository
}

// NewStockLedger creates a ledger over the given product repository
func NewStockLedger(products inventory.ProductRepository) *StockLedger {
	return &StockLedger{products: products}
}

// GetQuantity returns the current on-hand quantity of a product
func (l *StockLedger) GetQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	product, err := l.products.FindByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return product.Quantity, nil
}

// AdjustQuantity applies a signed delta and returns the quantity before and after
func (l *StockLedger) AdjustQuantity(ctx context.Context, productID uuid.UUID, delta int) (previous, next int, err error) {
	adj, err := l.Adjust(ctx, productID, delta)
	if err != nil {
		return 0, 0, err
	}
	return adj.Previous, adj.New, nil
}

// Adjust loads the product under lock, applies delta and saves it with a version check.
// A change that would leave the quantity negative is rejected before anything is written.
func (l *StockLedger) Adjust(ctx context.Context, productID uuid.UUID, delta int) (*LedgerAdjustment, error) {
	product, err := l.products.FindByIDForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}

	previous, next, err := product.AdjustQuantity(delta)
	if err != nil {
		return nil, err
	}
	if err := l.save(ctx, product); err != nil {
		return nil, err
	}
	return &LedgerAdjustment{Product: product, Previous: previous, New: next}, nil
}

// Deactivate marks the product inactive. With writeOff the remaining quantity is
// removed in the same save so the ledger and the audit record agree.
func (l *StockLedger) Deactivate(ctx context.Context, productID uuid.UUID, writeOff bool) (*LedgerAdjustment, error) {
	product, err := l.products.FindByIDForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.Deactivate(); err != nil {
		return nil, err
	}
	previous, next := product.Quantity, product.Quantity
	if writeOff && product.Quantity > 0 {
		previous, next, err = product.AdjustQuantity(-product.Quantity)
		if err != nil {
			return nil, err
		}
	}
	if err := l.save(ctx, product); err != nil {
		return nil, err
	}
	return &LedgerAdjustment{Product: product, Previous: previous, New: next}, nil
}

func (l *StockLedger) save(ctx context.Context, product *inventory.Product) error {
	if err := l.products.SaveWithLock(ctx, product); err != nil {
		if shared.IsDomainError(err) {
			return err
		}
		return shared.WrapDomainError(shared.CodePersistence, "Failed to save stock ledger entry", err)
	}
	return nil
}
