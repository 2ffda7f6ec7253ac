package inventory

import (
	"context"

	"github.com/retail/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the inventory repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
//   - ProductRepo: the stock ledger. Quantity changes go through SaveWithLock.
//   - MovementRepo: append-only audit log. A failed append must abort the transaction.
//   - AlertRepo: low-stock alert register.
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() inventory.ProductRepository
	// MovementRepo returns the stock movement repository scoped to the current transaction
	MovementRepo() inventory.StockMovementRepository
	// AlertRepo returns the low stock alert repository scoped to the current transaction
	AlertRepo() inventory.LowStockAlertRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	productRepo  inventory.ProductRepository
	movementRepo inventory.StockMovementRepository
	alertRepo    inventory.LowStockAlertRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo inventory.ProductRepository,
	movementRepo inventory.StockMovementRepository,
	alertRepo inventory.LowStockAlertRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		alertRepo:    alertRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() inventory.ProductRepository {
	return s.productRepo
}

// MovementRepo returns the stock movement repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

// AlertRepo returns the low stock alert repository.
func (s *NoOpTransactionScope) AlertRepo() inventory.LowStockAlertRepository {
	return s.alertRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
