package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a product with SELECT ... FOR UPDATE on postgres.
// sqlite has no row locks; its single connection already serialises writers.
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	query := r.db.WithContext(ctx)
	if supportsRowLocks(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model models.ProductModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	if len(ids) == 0 {
		return []inventory.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// FindByCode finds a product by its unique code
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*inventory.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Product, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	query = applyOrderAndPaging(query, filter, ProductSortFields, "created_at", "id")

	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter).Count(&count).Error
	return count, err
}

// FindLowStock lists active products at or below their threshold, lowest quantity first
func (r *GormProductRepository) FindLowStock(ctx context.Context, filter shared.Filter) ([]inventory.Product, error) {
	query := lowStock(r.db.WithContext(ctx).Model(&models.ProductModel{}))
	if filter.OrderBy == "" {
		filter.OrderBy = "quantity"
		filter.OrderDir = "asc"
	}
	query = applyOrderAndPaging(query, filter, ProductSortFields, "quantity", "id")

	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// CountLowStock counts the rows FindLowStock pages over
func (r *GormProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := lowStock(r.db.WithContext(ctx).Model(&models.ProductModel{})).Count(&count).Error
	return count, err
}

// lowStock restricts a product query to active products at or below their threshold
func lowStock(query *gorm.DB) *gorm.DB {
	return query.Where("active = ? AND quantity <= min_stock", true)
}

// ExistsByCode checks whether a code is taken
func (r *GormProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *inventory.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.WrapDomainError(shared.CodeAlreadyExists, "Product code "+product.Code+" already exists", err)
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking. The row is only updated when the stored
// version still equals product.Version; the version is then incremented on both sides.
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *inventory.Product) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND version = ?", product.ID, product.Version).
		Updates(map[string]interface{}{
			"name":       product.Name,
			"category":   product.Category,
			"unit_price": product.UnitPrice,
			"quantity":   product.Quantity,
			"min_stock":  product.MinStock,
			"active":     product.Active,
			"version":    product.Version + 1,
			"updated_at": product.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.WrapDomainError(shared.CodeConcurrencyConflict,
			"Product "+product.ID.String()+" was modified by another transaction", shared.ErrConcurrencyConflict)
	}
	product.IncrementVersion()
	return nil
}

// applyFilter applies the supported filter keys and free-text search
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}
	for key, value := range filter.Filters {
		switch key {
		case "active":
			if v, ok := value.(bool); ok {
				query = query.Where("active = ?", v)
			}
		case "category":
			if v, ok := value.(string); ok && v != "" {
				query = query.Where("category = ?", v)
			}
		case "low_stock":
			if value == true {
				query = lowStock(query)
			}
		}
	}
	return query
}

func productsToDomain(rows []models.ProductModel) []inventory.Product {
	products := make([]inventory.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

// Ensure GormProductRepository implements ProductRepository
var _ inventory.ProductRepository = (*GormProductRepository)(nil)
