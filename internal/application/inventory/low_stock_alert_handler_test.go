package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// MockStockAlertNotifier is a mock notifier for testing
type MockStockAlertNotifier struct {
	mu     sync.Mutex
	alerts []StockAlert
	err    error
}

func NewMockStockAlertNotifier() *MockStockAlertNotifier {
	return &MockStockAlertNotifier{
		alerts: make([]StockAlert, 0),
	}
}

func (n *MockStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *MockStockAlertNotifier) GetAlerts() []StockAlert {
	n.mu.Lock()
	defer n.mu.Unlock()
	result := make([]StockAlert, len(n.alerts))
	copy(result, n.alerts)
	return result
}

func (n *MockStockAlertNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = make([]StockAlert, 0)
	n.err = nil
}

func triggeredEvent(t *testing.T, quantity, threshold int) *inventory.LowStockAlertTriggeredEvent {
	product, err := inventory.NewProduct("SKU-9", "Oat Milk", "Dairy", decimal.NewFromInt(3), threshold)
	require.NoError(t, err)
	alert, err := inventory.NewLowStockAlert(product.ID, quantity, threshold)
	require.NoError(t, err)
	return inventory.NewLowStockAlertTriggeredEvent(alert, product)
}

func TestLowStockAlertHandler_Handle(t *testing.T) {
	logger := zaptest.NewLogger(t)
	notifier := NewMockStockAlertNotifier()

	handler := NewLowStockAlertHandler(logger).
		WithNotifier(notifier)

	t.Run("handles low stock event", func(t *testing.T) {
		notifier.Reset()
		event := triggeredEvent(t, 2, 5)

		err := handler.Handle(context.Background(), event)
		require.NoError(t, err)

		alerts := notifier.GetAlerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, "low_stock", alerts[0].AlertType)
		assert.Equal(t, event.ProductID.String(), alerts[0].ProductID)
		assert.Equal(t, "SKU-9", alerts[0].ProductCode)
		assert.Equal(t, 2, alerts[0].Quantity)
		assert.Equal(t, 5, alerts[0].Threshold)
	})

	t.Run("handles out of stock event", func(t *testing.T) {
		notifier.Reset()

		err := handler.Handle(context.Background(), triggeredEvent(t, 0, 5))
		require.NoError(t, err)

		alerts := notifier.GetAlerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, "out_of_stock", alerts[0].AlertType)
	})

	t.Run("notifier failure does not fail handling", func(t *testing.T) {
		notifier.Reset()
		notifier.err = errors.New("smtp down")

		err := handler.Handle(context.Background(), triggeredEvent(t, 1, 5))
		assert.NoError(t, err)
	})

	t.Run("returns error for wrong event type", func(t *testing.T) {
		alert, err := inventory.NewLowStockAlert(uuid.New(), 0, 1)
		require.NoError(t, err)
		wrongEvent := inventory.NewLowStockAlertResolvedEvent(alert)

		err = handler.Handle(context.Background(), wrongEvent)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected event type")
	})
}

func TestLowStockAlertHandler_EventTypes(t *testing.T) {
	handler := NewLowStockAlertHandler(zap.NewNop())

	eventTypes := handler.EventTypes()
	assert.Len(t, eventTypes, 1)
	assert.Equal(t, inventory.EventTypeLowStockAlertTriggered, eventTypes[0])
}

func TestLoggingStockAlertNotifier_SendAlert(t *testing.T) {
	notifier := NewLoggingStockAlertNotifier(zaptest.NewLogger(t))

	err := notifier.SendAlert(context.Background(), StockAlert{
		AlertID:   uuid.New().String(),
		ProductID: uuid.New().String(),
		Quantity:  1,
		Threshold: 3,
		AlertType: "low_stock",
	})
	assert.NoError(t, err)
}
