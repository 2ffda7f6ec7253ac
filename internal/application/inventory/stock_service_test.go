package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStockService(t *testing.T, policy AlertPolicy) (*StockService, *testRepos, *MockEventPublisher) {
	repos := newTestRepos()
	publisher := NewMockEventPublisher()
	svc := NewStockService(repos.products, repos.movements, repos.alerts, repos.scope, NewProductLocker(8),
		StockServiceConfig{CommitTimeout: time.Second, AlertPolicy: policy}, zaptest.NewLogger(t))
	svc.SetEventPublisher(publisher)
	return svc, repos, publisher
}

func TestStockService_CreateProduct(t *testing.T) {
	ctx := shared.WithActor(context.Background(), testActor)

	t.Run("records initial stock as a restock", func(t *testing.T) {
		svc, repos, publisher := newTestStockService(t, AlertPolicy{})

		resp, err := svc.CreateProduct(ctx, CreateProductRequest{
			Code:            "cola-330",
			Name:            "Cola 330ml",
			Category:        "Drinks",
			UnitPrice:       decimal.NewFromFloat(1.2),
			MinStock:        5,
			InitialQuantity: 24,
		})

		require.NoError(t, err)
		assert.Equal(t, "COLA-330", resp.Code)
		assert.Equal(t, 24, resp.Quantity)
		assert.False(t, resp.IsLowStock)

		movements, total, err := NewAuditLog(repos.movements).QueryByProduct(ctx, resp.ID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, inventory.MovementTypeRestock, movements[0].Type())
		assert.Equal(t, ReasonInitialStock, movements[0].Reason())
		assert.Equal(t, testActor.ID, movements[0].ActorID())
		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeStockChanged), 1)
	})

	t.Run("empty product starts with an alert", func(t *testing.T) {
		svc, repos, publisher := newTestStockService(t, AlertPolicy{})

		resp, err := svc.CreateProduct(ctx, CreateProductRequest{
			Code: "CHIPS", Name: "Chips", UnitPrice: decimal.NewFromInt(2), MinStock: 3,
		})

		require.NoError(t, err)
		assert.True(t, resp.IsLowStock)
		open, err := repos.alerts.ExistsUnresolved(ctx, resp.ID)
		require.NoError(t, err)
		assert.True(t, open)
		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeLowStockAlertTriggered), 1)
	})

	t.Run("duplicate code", func(t *testing.T) {
		svc, _, _ := newTestStockService(t, AlertPolicy{})
		req := CreateProductRequest{Code: "DUP", Name: "Dup", UnitPrice: decimal.NewFromInt(1)}

		_, err := svc.CreateProduct(ctx, req)
		require.NoError(t, err)
		_, err = svc.CreateProduct(ctx, req)
		assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
	})
}

func TestStockService_RestockAdjustDeactivate(t *testing.T) {
	ctx := shared.WithActor(context.Background(), testActor)
	svc, repos, publisher := newTestStockService(t, AlertPolicy{ResolveOnRestock: true})
	p := seedProduct(t, repos, 4, 3)

	adjusted, err := svc.Adjust(ctx, p.ID, AdjustStockRequest{Delta: -2, Reason: "breakage"})
	require.NoError(t, err)
	assert.Equal(t, 2, adjusted.Product.Quantity)
	require.NotNil(t, adjusted.TriggeredAlert)
	assert.Len(t, publisher.GetEventsByType(inventory.EventTypeLowStockAlertTriggered), 1)

	restocked, err := svc.Restock(ctx, p.ID, RestockRequest{Quantity: 10, Reason: "supplier"})
	require.NoError(t, err)
	assert.Equal(t, 12, restocked.Product.Quantity)
	require.NotNil(t, restocked.ResolvedAlert)
	assert.Len(t, publisher.GetEventsByType(inventory.EventTypeLowStockAlertResolved), 1)

	_, err = svc.Adjust(ctx, p.ID, AdjustStockRequest{Delta: -13, Reason: "count"})
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	_, err = svc.Adjust(ctx, p.ID, AdjustStockRequest{Delta: 1})
	assert.Equal(t, shared.CodeInvalidArgument, shared.ErrorCode(err))

	_, err = svc.Restock(ctx, p.ID, RestockRequest{Quantity: 0})
	assert.Equal(t, shared.CodeInvalidArgument, shared.ErrorCode(err))

	deactivated, err := svc.Deactivate(ctx, p.ID, DeactivateProductRequest{})
	require.NoError(t, err)
	assert.False(t, deactivated.Product.Active)
	assert.Equal(t, "DEACTIVATION", deactivated.Movement.Type)

	history, total, err := svc.ListMovementsByProduct(ctx, p.ID, PageFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	// newest first, and each record continues from the previous one
	assert.Equal(t, "DEACTIVATION", history[0].Type)
	for i := 0; i < len(history)-1; i++ {
		assert.Equal(t, history[i+1].NewQuantity, history[i].PreviousQuantity)
		assert.Equal(t, history[i+1].Sequence+1, history[i].Sequence)
	}

	byActor, err := svc.ListMovementsByActor(ctx, testActor.ID, PageFilter{})
	require.NoError(t, err)
	assert.Len(t, byActor, 3)
}

func TestStockService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	svc, repos, _ := newTestStockService(t, AlertPolicy{})
	p := seedProduct(t, repos, 4, 1)

	minStock := 6
	name := "Matcha Tea"
	resp, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Name: &name, MinStock: &minStock})
	require.NoError(t, err)
	assert.Equal(t, "Matcha Tea", resp.Name)
	assert.Equal(t, 4, resp.Quantity)
	assert.True(t, resp.IsLowStock)

	open, err := repos.alerts.ExistsUnresolved(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, open, "raising the threshold above quantity opens an alert")

	inactive := false
	_, err = svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Active: &inactive})
	assert.Equal(t, shared.CodeInvalidArgument, shared.ErrorCode(err))

	_, err = svc.UpdateProduct(ctx, uuid.New(), UpdateProductRequest{Name: &name})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestStockService_ConcurrentRestocksKeepChain(t *testing.T) {
	ctx := context.Background()
	svc, repos, _ := newTestStockService(t, AlertPolicy{})
	p := seedProduct(t, repos, 0, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Restock(ctx, p.ID, RestockRequest{Quantity: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	qty, err := svc.GetQuantity(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, qty)

	history, _, err := svc.ListMovementsByProduct(ctx, p.ID, PageFilter{PageSize: 100})
	require.NoError(t, err)
	require.Len(t, history, 20)
	for i := 0; i < len(history)-1; i++ {
		assert.Equal(t, history[i+1].NewQuantity, history[i].PreviousQuantity)
	}
}
