package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
)

// SaleRepository persists committed sales. Carts live in a CartStore until checkout.
type SaleRepository interface {
	// FindByID finds a sale by its ID, with items
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByReceiptNumber finds a sale by its receipt number
	FindByReceiptNumber(ctx context.Context, receiptNumber string) (*Sale, error)

	// FindByDateRange lists sales completed in [start, end], most recent first.
	// The completion time is the one reports bucket by.
	FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]Sale, error)

	// CountByDateRange counts sales completed in [start, end]
	CountByDateRange(ctx context.Context, start, end time.Time) (int64, error)

	// Create inserts the sale header and its items
	Create(ctx context.Context, sale *Sale) error

	// UpdateStatus persists a status transition made on the aggregate
	UpdateStatus(ctx context.Context, sale *Sale) error
}

// CartStore keeps PENDING sales between requests while they are being built.
// A cart is removed once it is checked out or abandoned.
type CartStore interface {
	// Save stores or replaces the cart, refreshing its expiry
	Save(ctx context.Context, cart *Sale) error

	// Get loads a cart, or returns ErrNotFound if it does not exist or has expired
	Get(ctx context.Context, id uuid.UUID) (*Sale, error)

	// Delete removes a cart; deleting a missing cart is not an error
	Delete(ctx context.Context, id uuid.UUID) error
}
