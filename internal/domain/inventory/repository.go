package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product (stock ledger) persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate loads a product and takes a row lock where the store supports it.
	// Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindByCode finds a product by its unique code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindAll lists products; filter keys: "active" (bool), "category" (string), "low_stock" (bool)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindLowStock lists active products at or below their threshold
	FindLowStock(ctx context.Context, filter shared.Filter) ([]Product, error)

	// CountLowStock counts active products at or below their threshold
	CountLowStock(ctx context.Context) (int64, error)

	// ExistsByCode checks whether a code is taken
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// SaveWithLock saves with optimistic locking. The update only applies when the stored
	// version equals product.Version; on success the version is incremented on both sides.
	SaveWithLock(ctx context.Context, product *Product) error
}

// StockMovementRepository is the append-only audit store.
// There is intentionally no update or delete.
type StockMovementRepository interface {
	// Append persists a movement and assigns its per-product sequence number
	Append(ctx context.Context, movement *StockMovement) error

	// FindByProduct returns movements for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByDateRange returns movements created in [start, end], newest first
	FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]StockMovement, error)

	// FindByActor returns movements recorded by a user, newest first
	FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByRelatedID returns movements linked to a document such as a sale
	FindByRelatedID(ctx context.Context, relatedID uuid.UUID) ([]StockMovement, error)

	// CountByProduct counts movements for a product
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

// LowStockAlertRepository defines the interface for alert persistence
type LowStockAlertRepository interface {
	// FindByID finds an alert by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*LowStockAlert, error)

	// FindUnresolvedByProduct returns the open alert for a product, or ErrNotFound
	FindUnresolvedByProduct(ctx context.Context, productID uuid.UUID) (*LowStockAlert, error)

	// ExistsUnresolved reports whether the product has an open alert
	ExistsUnresolved(ctx context.Context, productID uuid.UUID) (bool, error)

	// FindUnresolved lists open alerts, newest first
	FindUnresolved(ctx context.Context, filter shared.Filter) ([]LowStockAlert, error)

	// CountUnresolved counts open alerts
	CountUnresolved(ctx context.Context) (int64, error)

	// Create inserts a new alert
	Create(ctx context.Context, alert *LowStockAlert) error

	// MarkResolved persists the resolution of an open alert. It only updates rows that
	// are still unresolved and returns ErrAlertAlreadyResolved if none matched.
	MarkResolved(ctx context.Context, alert *LowStockAlert) error

	// DeleteResolvedBefore purges resolved alerts resolved before the cutoff
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
