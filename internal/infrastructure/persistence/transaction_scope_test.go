package persistence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	appinv "github.com/retail/backend/internal/application/inventory"
	apptrade "github.com/retail/backend/internal/application/trade"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSaleProcessor(db *Database) *apptrade.SaleProcessor {
	locker := appinv.NewProductLocker(appinv.DefaultLockStripes)
	return apptrade.NewSaleProcessor(
		NewGormProductRepository(db.DB),
		NewGormSaleTransactionScope(db.DB),
		locker,
		appinv.NewStockChanger(appinv.AlertPolicy{}, nil),
		trade.NewRandomReceiptNumberGenerator("TEST"),
		apptrade.SaleProcessorConfig{TaxRate: decimal.RequireFromString("0.10"), CommitTimeout: 5 * time.Second},
		nil,
	)
}

func TestSaleCommit_WritesLedgerAuditAndAlertTogether(t *testing.T) {
	ctx := shared.WithActor(context.Background(), testActor)
	db := newTestDatabase(t)
	cola := seedProduct(t, db, "COLA", 6, 3)
	chips := seedProduct(t, db, "CHIPS", 20, 2)
	processor := newSaleProcessor(db)

	sale, err := processor.NewSale(ctx)
	require.NoError(t, err)
	require.NoError(t, sale.AddItem(cola.ID, cola.Name, cola.Category, 4, cola.UnitPrice))
	require.NoError(t, sale.AddItem(chips.ID, chips.Name, chips.Category, 1, chips.UnitPrice))

	result, err := processor.Process(ctx, sale)
	require.NoError(t, err)
	assert.Equal(t, trade.SaleStatusCompleted, sale.Status)
	assert.Len(t, result.Movements, 2)
	require.Len(t, result.TriggeredAlerts, 1)
	assert.Equal(t, cola.ID, result.TriggeredAlerts[0].ProductID)

	products := NewGormProductRepository(db.DB)
	storedCola, err := products.FindByID(ctx, cola.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, storedCola.Quantity)
	storedChips, err := products.FindByID(ctx, chips.ID)
	require.NoError(t, err)
	assert.Equal(t, 19, storedChips.Quantity)

	movements, err := NewGormStockMovementRepository(db.DB).FindByRelatedID(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, inventory.MovementTypeSale, m.Type())
		assert.Equal(t, testActor.ID, m.ActorID())
		assert.Equal(t, m.PreviousQuantity()+m.QuantityChanged(), m.NewQuantity())
	}

	stored, err := NewGormSaleRepository(db.DB).FindByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.SaleStatusCompleted, stored.Status)
	assert.True(t, stored.Total.Equal(sale.Total))

	open, err := NewGormLowStockAlertRepository(db.DB).CountUnresolved(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), open)
}

func TestSaleCommit_AlertFailureRollsBackEverything(t *testing.T) {
	ctx := shared.WithActor(context.Background(), testActor)
	db := newTestDatabase(t)
	cola := seedProduct(t, db, "COLA", 5, 3)
	processor := newSaleProcessor(db)

	require.NoError(t, db.DB.Callback().Create().Before("gorm:create").Register("test:fail_alerts", func(tx *gorm.DB) {
		if tx.Statement.Table == "low_stock_alerts" {
			_ = tx.AddError(errors.New("alerts table unavailable"))
		}
	}))

	sale, err := processor.NewSale(ctx)
	require.NoError(t, err)
	require.NoError(t, sale.AddItem(cola.ID, cola.Name, cola.Category, 3, cola.UnitPrice))

	_, err = processor.Process(ctx, sale)
	require.Error(t, err)

	var checkoutErr *apptrade.CheckoutError
	require.True(t, errors.As(err, &checkoutErr))
	assert.Equal(t, apptrade.StateCommitting, checkoutErr.Stage)
	assert.Equal(t, apptrade.StateFailed, checkoutErr.State)
	assert.Equal(t, shared.CodePersistence, shared.ErrorCode(err))
	assert.Equal(t, trade.SaleStatusPending, sale.Status, "caller's sale is untouched")

	stored, err := NewGormProductRepository(db.DB).FindByID(ctx, cola.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Quantity)
	assert.Equal(t, 1, stored.Version)

	count, err := NewGormStockMovementRepository(db.DB).CountByProduct(ctx, cola.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = NewGormSaleRepository(db.DB).FindByID(ctx, sale.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSaleCommit_InsufficientStockReturnsToBuilding(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	cola := seedProduct(t, db, "COLA", 2, 0)
	processor := newSaleProcessor(db)

	_, err := processor.QuickSale(ctx, apptrade.QuickSaleRequest{ProductID: cola.ID, Quantity: 3})
	require.Error(t, err)

	var checkoutErr *apptrade.CheckoutError
	require.True(t, errors.As(err, &checkoutErr))
	assert.True(t, checkoutErr.Recoverable())
	assert.Equal(t, shared.CodeInsufficientStock, shared.ErrorCode(err))

	stored, err := NewGormProductRepository(db.DB).FindByID(ctx, cola.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)
}

func TestSaleCommit_ConcurrentBuyersOfLastUnit(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	last := seedProduct(t, db, "LAST", 1, 0)
	processor := newSaleProcessor(db)

	const buyers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		shortages int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := processor.QuickSale(ctx, apptrade.QuickSaleRequest{ProductID: last.ID, Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case shared.ErrorCode(err) == shared.CodeInsufficientStock:
				shortages++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, buyers-1, shortages)

	stored, err := NewGormProductRepository(db.DB).FindByID(ctx, last.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Quantity)

	count, err := NewGormStockMovementRepository(db.DB).CountByProduct(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStockService_RestockAndDeactivateOverSQLite(t *testing.T) {
	ctx := shared.WithActor(context.Background(), testActor)
	db := newTestDatabase(t)
	milk := seedProduct(t, db, "MILK", 1, 4)

	alerts := NewGormLowStockAlertRepository(db.DB)
	service := appinv.NewStockService(
		NewGormProductRepository(db.DB),
		NewGormStockMovementRepository(db.DB),
		alerts,
		NewGormTransactionScope(db.DB),
		nil,
		appinv.StockServiceConfig{AlertPolicy: appinv.AlertPolicy{ResolveOnRestock: true}},
		nil,
	)

	adjusted, err := service.Adjust(ctx, milk.ID, appinv.AdjustStockRequest{Delta: -1, Reason: "spilt"})
	require.NoError(t, err)
	require.NotNil(t, adjusted.TriggeredAlert)
	assert.Zero(t, adjusted.Product.Quantity)

	restocked, err := service.Restock(ctx, milk.ID, appinv.RestockRequest{Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, restocked.Product.Quantity)
	require.NotNil(t, restocked.ResolvedAlert)
	assert.Equal(t, adjusted.TriggeredAlert.ID, restocked.ResolvedAlert.ID)

	deactivated, err := service.Deactivate(ctx, milk.ID, appinv.DeactivateProductRequest{WriteOff: true, Reason: "discontinued"})
	require.NoError(t, err)
	assert.False(t, deactivated.Product.Active)
	assert.Zero(t, deactivated.Product.Quantity)
	assert.Equal(t, -10, deactivated.Movement.QuantityChanged)

	history, total, err := service.ListMovementsByProduct(ctx, milk.ID, appinv.PageFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, history, 3)
	assert.Equal(t, int64(3), history[0].Sequence)

	_, err = service.Deactivate(ctx, milk.ID, appinv.DeactivateProductRequest{})
	require.Error(t, err)
	assert.Equal(t, shared.CodeInvalidState, shared.ErrorCode(err))
}

func TestStockService_ListLowStockSkipsInactive(t *testing.T) {
	ctx := shared.WithActor(context.Background(), testActor)
	db := newTestDatabase(t)
	seedProduct(t, db, "MILK", 1, 4)
	bread := seedProduct(t, db, "BREAD", 1, 4)
	seedProduct(t, db, "FLOUR", 9, 4)

	service := appinv.NewStockService(
		NewGormProductRepository(db.DB),
		NewGormStockMovementRepository(db.DB),
		NewGormLowStockAlertRepository(db.DB),
		NewGormTransactionScope(db.DB),
		nil,
		appinv.StockServiceConfig{},
		nil,
	)

	_, err := service.Deactivate(ctx, bread.ID, appinv.DeactivateProductRequest{WriteOff: true, Reason: "discontinued"})
	require.NoError(t, err)

	items, total, err := service.ListLowStock(ctx, appinv.PageFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "MILK", items[0].Code)
	assert.Equal(t, int64(len(items)), total)
}

func TestAlertCreate_DuplicateKeepsTransactionUsable(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	eggs := seedProduct(t, db, "EGGS", 1, 6)

	var mu sync.Mutex
	var statements []string
	require.NoError(t, db.DB.Callback().Raw().After("gorm:raw").Register("test:capture_raw", func(tx *gorm.DB) {
		mu.Lock()
		defer mu.Unlock()
		statements = append(statements, tx.Statement.SQL.String())
	}))

	err := NewGormTransactionScope(db.DB).Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		alerts := repos.AlertRepo()
		first, err := inventory.NewLowStockAlert(eggs.ID, 1, 6)
		require.NoError(t, err)
		require.NoError(t, alerts.Create(ctx, first))

		dup, err := inventory.NewLowStockAlert(eggs.ID, 1, 6)
		require.NoError(t, err)
		assert.ErrorIs(t, alerts.Create(ctx, dup), shared.ErrAlreadyExists)

		open, err := alerts.ExistsUnresolved(ctx, eggs.ID)
		require.NoError(t, err, "the transaction is still usable after the unique violation")
		assert.True(t, open)
		return nil
	})
	require.NoError(t, err)

	mu.Lock()
	executed := strings.Join(statements, "\n")
	mu.Unlock()
	assert.Contains(t, executed, "SAVEPOINT")
	assert.Contains(t, executed, "ROLLBACK TO SAVEPOINT")

	count, err := NewGormLowStockAlertRepository(db.DB).CountUnresolved(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
