package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/retail/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by its ID, with items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReceiptNumber finds a sale by its receipt number
func (r *GormSaleRepository) FindByReceiptNumber(ctx context.Context, receiptNumber string) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Where("receipt_number = ?", strings.TrimSpace(receiptNumber)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDateRange lists sales completed in [start, end], most recent first
func (r *GormSaleRepository) FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]trade.Sale, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Where("completed_at >= ? AND completed_at <= ?", start, end)
	query = applyOrderAndPaging(query, filter, SaleSortFields, "completed_at", "id")

	var rows []models.SaleModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	sales := make([]trade.Sale, len(rows))
	for i := range rows {
		sales[i] = *rows[i].ToDomain()
	}
	return sales, nil
}

// CountByDateRange counts sales completed in [start, end]
func (r *GormSaleRepository) CountByDateRange(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("completed_at >= ? AND completed_at <= ?", start, end).
		Count(&count).Error
	return count, err
}

// Create inserts the sale header and its items
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	model := models.SaleModelFromDomain(sale)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.WrapDomainError(shared.CodeAlreadyExists,
				"Sale "+sale.ID.String()+" or receipt "+sale.ReceiptNumber+" already recorded", shared.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// UpdateStatus persists a status transition made on the aggregate
func (r *GormSaleRepository) UpdateStatus(ctx context.Context, sale *trade.Sale) error {
	result := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("id = ?", sale.ID).
		Updates(map[string]interface{}{
			"status":        sale.Status,
			"completed_at":  sale.CompletedAt,
			"cancelled_at":  sale.CancelledAt,
			"cancel_reason": sale.CancelReason,
			"updated_at":    sale.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSaleRepository implements SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
