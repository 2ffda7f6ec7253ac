package integration

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	inventoryapp "github.com/retail/backend/internal/application/inventory"
	tradeapp "github.com/retail/backend/internal/application/trade"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/retail/backend/internal/infrastructure/persistence"
	"github.com/retail/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movementsOf(t *testing.T, db *TestDB, productID uuid.UUID) []inventory.StockMovement {
	t.Helper()

	movements, err := persistence.NewGormStockMovementRepository(db.DB).
		FindByProduct(context.Background(), productID, shared.Filter{OrderDir: "asc"})
	require.NoError(t, err)
	sort.Slice(movements, func(i, j int) bool { return movements[i].Sequence() < movements[j].Sequence() })
	return movements
}

func TestQuickSale_ConcurrentInstancesDoNotOversell(t *testing.T) {
	skipShort(t)
	s := newStack(t)
	ctx := testutil.ActorContext()

	product := s.createProduct(t, "COLA-330", "1.50", 10, 2)

	// two processors with separate in-process lockers share only the database
	instances := []*tradeapp.SaleProcessor{s.processor, newProcessor(s.db, s.bus)}

	const attempts = 30
	var sold, rejected atomic.Int32
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(p *tradeapp.SaleProcessor) {
			defer wg.Done()
			_, err := p.QuickSale(ctx, tradeapp.QuickSaleRequest{ProductID: product.ID, Quantity: 1, PaymentMethod: "CASH"})
			var shortage *inventory.InsufficientStockError
			switch {
			case err == nil:
				sold.Add(1)
			case errors.As(err, &shortage):
				rejected.Add(1)
			default:
				errs <- err
			}
		}(instances[i%len(instances)])
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected sale error: %v", err)
	}
	assert.Equal(t, int32(10), sold.Load())
	assert.Equal(t, int32(attempts-10), rejected.Load())

	qty, err := s.stock.GetQuantity(ctx, product.ID)
	require.NoError(t, err)
	assert.Zero(t, qty)

	// one opening restock, then one SALE per unit with a gapless sequence
	movements := movementsOf(t, s.db, product.ID)
	require.Len(t, movements, 11)
	assert.Equal(t, inventory.MovementTypeRestock, movements[0].Type())
	for i, m := range movements {
		assert.Equal(t, int64(i+1), m.Sequence())
		if i > 0 {
			assert.Equal(t, inventory.MovementTypeSale, m.Type())
			assert.Equal(t, -1, m.QuantityChanged())
			assert.Equal(t, movements[i-1].NewQuantity(), m.PreviousQuantity())
		}
	}

	count, err := s.alerts.CountUnresolved(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "crossing the threshold repeatedly keeps a single open alert")
}

func TestCheckout_InsufficientLineRollsBackWholeSale(t *testing.T) {
	skipShort(t)
	s := newStack(t)
	ctx := testutil.ActorContext()

	bread := s.createProduct(t, "BREAD", "2.00", 5, 0)
	butter := s.createProduct(t, "BUTTER", "3.50", 1, 0)

	cart, err := s.carts.CreateCart(ctx)
	require.NoError(t, err)
	_, err = s.carts.AddItem(ctx, cart.ID, tradeapp.AddCartItemRequest{ProductID: bread.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = s.carts.AddItem(ctx, cart.ID, tradeapp.AddCartItemRequest{ProductID: butter.ID, Quantity: 1})
	require.NoError(t, err)

	// the last butter goes missing before the cashier checks out
	_, err = s.stock.Adjust(ctx, butter.ID, inventoryapp.AdjustStockRequest{Delta: -1, Reason: "damaged"})
	require.NoError(t, err)

	_, err = s.carts.Checkout(ctx, cart.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock) ||
		shared.ErrorCode(err) == shared.CodeInsufficientStock, "got %v", err)

	qty, err := s.stock.GetQuantity(ctx, bread.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, qty, "no line of a failed sale is applied")
	assert.Len(t, movementsOf(t, s.db, bread.ID), 1)

	_, err = s.sales.GetByID(ctx, cart.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound), "a failed sale is not persisted")

	open, err := s.carts.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.SaleStatusPending.String(), open.Status, "the cart can be corrected and resubmitted")

	_, err = s.stock.Restock(ctx, butter.ID, inventoryapp.RestockRequest{Quantity: 4, Reason: "delivery"})
	require.NoError(t, err)

	result, err := s.carts.Checkout(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, result.Sale.ID)
	assert.Equal(t, trade.SaleStatusCompleted.String(), result.Sale.Status)
	assert.Len(t, result.Movements, 2)
	assert.NotEmpty(t, result.Transitions)

	stored, err := s.sales.GetByReceiptNumber(ctx, result.Sale.ReceiptNumber)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.True(t, stored.Total.Equal(result.Sale.Total))

	linked, err := persistence.NewGormStockMovementRepository(s.db.DB).FindByRelatedID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, linked, 2)
	for _, m := range linked {
		assert.Equal(t, testutil.TestActor().ID, m.ActorID())
	}

	_, err = s.carts.GetCart(ctx, cart.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound), "a committed cart is discarded")
}

func TestStockChanges_PublishEventsAndResolveAlerts(t *testing.T) {
	skipShort(t)
	s := newStack(t)
	ctx := testutil.ActorContext()

	water := s.createProduct(t, "WATER", "0.80", 3, 2)

	_, err := s.carts.QuickSale(ctx, tradeapp.QuickSaleRequest{ProductID: water.ID, Quantity: 2})
	require.NoError(t, err)

	open, _, err := s.alerts.ListUnresolved(ctx, inventoryapp.PageFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, water.ID, open[0].ProductID)
	assert.Equal(t, 1, open[0].Quantity)

	restocked, err := s.stock.Restock(ctx, water.ID, inventoryapp.RestockRequest{Quantity: 10})
	require.NoError(t, err)
	require.NotNil(t, restocked.ResolvedAlert)
	assert.Equal(t, open[0].ID, restocked.ResolvedAlert.ID)

	count, err := s.alerts.CountUnresolved(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.NotEmpty(t, s.events.HandledOfType(trade.EventTypeSaleCompleted))
	assert.NotEmpty(t, s.events.HandledOfType(inventory.EventTypeLowStockAlertTriggered))
	assert.NotEmpty(t, s.events.HandledOfType(inventory.EventTypeLowStockAlertResolved))
	assert.NotEmpty(t, s.events.HandledOfType(inventory.EventTypeStockChanged))
}
