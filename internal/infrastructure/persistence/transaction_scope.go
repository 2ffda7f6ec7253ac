package persistence

import (
	"context"

	appinv "github.com/retail/backend/internal/application/inventory"
	apptrade "github.com/retail/backend/internal/application/trade"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements the inventory TransactionScope using GORM transactions.
// It provides atomic execution of ledger, audit and alert operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormSaleTransactionScope implements the trade TransactionScope. The sale repository
// shares the transaction with the inventory repositories.
type GormSaleTransactionScope struct {
	db *gorm.DB
}

// NewGormSaleTransactionScope creates a new GormSaleTransactionScope.
func NewGormSaleTransactionScope(db *gorm.DB) *GormSaleTransactionScope {
	return &GormSaleTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormSaleTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() inventory.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// MovementRepo returns the stock movement repository scoped to the current transaction.
func (r *gormTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// AlertRepo returns the low stock alert repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AlertRepo() inventory.LowStockAlertRepository {
	return NewGormLowStockAlertRepository(r.tx)
}

// SaleRepo returns the sale repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SaleRepo() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

var (
	_ appinv.TransactionScope            = (*GormTransactionScope)(nil)
	_ apptrade.TransactionScope          = (*GormSaleTransactionScope)(nil)
	_ apptrade.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
