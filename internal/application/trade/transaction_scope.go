package trade

import (
	"context"

	appinv "github.com/retail/backend/internal/application/inventory"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/trade"
)

// TransactionScope runs a sale commit in one database transaction. The sale header,
// ledger updates, audit records and alerts are committed or rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories extends the inventory repositories with the sale repository,
// all bound to the same transaction.
type TransactionalRepositories interface {
	appinv.TransactionalRepositories
	// SaleRepo returns the sale repository scoped to the current transaction
	SaleRepo() trade.SaleRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	*appinv.NoOpTransactionScope
	saleRepo trade.SaleRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo inventory.ProductRepository,
	movementRepo inventory.StockMovementRepository,
	alertRepo inventory.LowStockAlertRepository,
	saleRepo trade.SaleRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		NoOpTransactionScope: appinv.NewNoOpTransactionScope(productRepo, movementRepo, alertRepo),
		saleRepo:             saleRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// SaleRepo returns the sale repository.
func (s *NoOpTransactionScope) SaleRepo() trade.SaleRepository {
	return s.saleRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
