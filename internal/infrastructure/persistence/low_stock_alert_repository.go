package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLowStockAlertRepository implements LowStockAlertRepository using GORM
type GormLowStockAlertRepository struct {
	db *gorm.DB
}

// NewGormLowStockAlertRepository creates a new GormLowStockAlertRepository
func NewGormLowStockAlertRepository(db *gorm.DB) *GormLowStockAlertRepository {
	return &GormLowStockAlertRepository{db: db}
}

// FindByID finds an alert by its ID
func (r *GormLowStockAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.LowStockAlert, error) {
	var model models.LowStockAlertModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUnresolvedByProduct returns the open alert for a product
func (r *GormLowStockAlertRepository) FindUnresolvedByProduct(ctx context.Context, productID uuid.UUID) (*inventory.LowStockAlert, error) {
	var model models.LowStockAlertModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND resolved = ?", productID, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsUnresolved reports whether the product has an open alert
func (r *GormLowStockAlertRepository) ExistsUnresolved(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LowStockAlertModel{}).
		Where("product_id = ? AND resolved = ?", productID, false).
		Count(&count).Error
	return count > 0, err
}

// FindUnresolved lists open alerts, newest first
func (r *GormLowStockAlertRepository) FindUnresolved(ctx context.Context, filter shared.Filter) ([]inventory.LowStockAlert, error) {
	query := r.db.WithContext(ctx).Where("resolved = ?", false)
	query = applyOrderAndPaging(query, filter, LowStockAlertSortFields, "triggered_at", "id")

	var rows []models.LowStockAlertModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	alerts := make([]inventory.LowStockAlert, len(rows))
	for i := range rows {
		alerts[i] = *rows[i].ToDomain()
	}
	return alerts, nil
}

// CountUnresolved counts open alerts
func (r *GormLowStockAlertRepository) CountUnresolved(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LowStockAlertModel{}).
		Where("resolved = ?", false).
		Count(&count).Error
	return count, err
}

// Create inserts a new alert. A second open alert for the same product violates the
// partial unique index and is reported as ErrAlreadyExists.
func (r *GormLowStockAlertRepository) Create(ctx context.Context, alert *inventory.LowStockAlert) error {
	// Inside a caller's transaction this runs under a savepoint, so a unique
	// violation on PostgreSQL does not abort the outer transaction.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(models.LowStockAlertModelFromDomain(alert)).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return shared.WrapDomainError(shared.CodeAlreadyExists,
				"Product "+alert.ProductID.String()+" already has an open alert", shared.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// MarkResolved persists the resolution, only touching a row that is still open
func (r *GormLowStockAlertRepository) MarkResolved(ctx context.Context, alert *inventory.LowStockAlert) error {
	result := r.db.WithContext(ctx).
		Model(&models.LowStockAlertModel{}).
		Where("id = ? AND resolved = ?", alert.ID, false).
		Updates(map[string]interface{}{
			"resolved":        true,
			"resolved_at":     alert.ResolvedAt,
			"resolved_by":     alert.ResolvedBy,
			"resolution_note": alert.ResolutionNote,
			"updated_at":      alert.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.WrapDomainError(shared.CodeAlertAlreadyResolved,
			"Low-stock alert "+alert.ID.String()+" is already resolved", shared.ErrInvalidState)
	}
	return nil
}

// DeleteResolvedBefore purges resolved alerts resolved before the cutoff
func (r *GormLowStockAlertRepository) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("resolved = ? AND resolved_at < ?", true, cutoff).
		Delete(&models.LowStockAlertModel{})
	return result.RowsAffected, result.Error
}

// Ensure GormLowStockAlertRepository implements LowStockAlertRepository
var _ inventory.LowStockAlertRepository = (*GormLowStockAlertRepository)(nil)
