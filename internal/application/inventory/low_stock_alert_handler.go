package inventory

import (
	"context"
	"fmt"

	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockAlertHandler handles LowStockAlertTriggered events
// and forwards them to a notifier for staff to reorder
type LowStockAlertHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// StockAlertNotifier is the interface for sending stock alerts
// Implementations can support different channels (in-app, email, SMS, etc.)
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a stock level notification
type StockAlert struct {
	AlertID     string `json:"alert_id"`
	ProductID   string `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Threshold   int    `json:"threshold"`
	AlertType   string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// NewLowStockAlertHandler creates a new handler for low-stock alert events
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockAlertHandler) WithNotifier(notifier StockAlertNotifier) *LowStockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeLowStockAlertTriggered}
}

// Handle processes a LowStockAlertTriggeredEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	triggered, ok := event.(*inventory.LowStockAlertTriggeredEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeLowStockAlertTriggered),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeLowStockAlertTriggered, event.EventType())
	}

	alertType := "low_stock"
	if triggered.Quantity == 0 {
		alertType = "out_of_stock"
	}

	alert := StockAlert{
		AlertID:     triggered.AlertID.String(),
		ProductID:   triggered.ProductID.String(),
		ProductCode: triggered.ProductCode,
		ProductName: triggered.ProductName,
		Quantity:    triggered.Quantity,
		Threshold:   triggered.Threshold,
		AlertType:   alertType,
	}

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			// the alert itself is already persisted
			h.logger.Error("failed to send stock alert notification",
				zap.String("alert_id", alert.AlertID),
				zap.Error(err),
			)
		} else {
			h.logger.Info("stock alert notification sent",
				zap.String("alert_id", alert.AlertID),
				zap.String("alert_type", alertType),
			)
		}
	}

	return nil
}

// Ensure LowStockAlertHandler implements shared.EventHandler
var _ shared.EventHandler = (*LowStockAlertHandler)(nil)

// LoggingStockAlertNotifier is a simple notifier that logs alerts
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_id", alert.ProductID),
		zap.String("product_code", alert.ProductCode),
		zap.Int("quantity", alert.Quantity),
		zap.Int("threshold", alert.Threshold),
	)
	return nil
}

// Ensure LoggingStockAlertNotifier implements StockAlertNotifier
var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
