package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements the append-only StockMovementRepository using GORM.
// It has no update or delete path.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append assigns the next per-product sequence number and inserts the movement.
// The caller holds the product row lock, so MAX(sequence)+1 cannot race; the unique
// (product_id, sequence) index rejects a writer that skipped the lock.
func (r *GormStockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	var last int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockMovementModel{}).
		Where("product_id = ?", movement.ProductID()).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error; err != nil {
		return fmt.Errorf("read last movement sequence: %w", err)
	}
	movement.AssignSequence(last + 1)

	if err := r.db.WithContext(ctx).Create(models.StockMovementModelFromDomain(movement)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.WrapDomainError(shared.CodeConcurrencyConflict,
				"Stock movement sequence taken by a concurrent writer", shared.ErrConcurrencyConflict)
		}
		return err
	}
	return nil
}

// FindByProduct returns movements for a product, newest first
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if filter.OrderBy == "" {
		filter.OrderBy = "sequence"
	}
	return r.find(applyOrderAndPaging(query, filter, StockMovementSortFields, "sequence", ""))
}

// FindByDateRange returns movements created in [start, end], newest first
func (r *GormStockMovementRepository) FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]inventory.StockMovement, error) {
	query := r.db.WithContext(ctx).Where("created_at >= ? AND created_at <= ?", start, end)
	return r.find(applyOrderAndPaging(query, filter, StockMovementSortFields, "created_at", "sequence"))
}

// FindByActor returns movements recorded by a user, newest first
func (r *GormStockMovementRepository) FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	query := r.db.WithContext(ctx).Where("actor_id = ?", actorID)
	return r.find(applyOrderAndPaging(query, filter, StockMovementSortFields, "created_at", "sequence"))
}

// FindByRelatedID returns movements linked to a document such as a sale
func (r *GormStockMovementRepository) FindByRelatedID(ctx context.Context, relatedID uuid.UUID) ([]inventory.StockMovement, error) {
	query := r.db.WithContext(ctx).Where("related_id = ?", relatedID).Order("created_at ASC").Order("product_id ASC")
	return r.find(query)
}

// CountByProduct counts movements for a product
func (r *GormStockMovementRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StockMovementModel{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, err
}

func (r *GormStockMovementRepository) find(query *gorm.DB) ([]inventory.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	movements := make([]inventory.StockMovement, 0, len(rows))
	for i := range rows {
		m, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		movements = append(movements, *m)
	}
	return movements, nil
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
