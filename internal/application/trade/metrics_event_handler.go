package trade

import (
	"context"

	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/retail/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MetricsEventHandler feeds committed sales, stock movements and alert
// transitions into the business metrics
type MetricsEventHandler struct {
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
}

// NewMetricsEventHandler creates a new MetricsEventHandler
func NewMetricsEventHandler(metrics *telemetry.BusinessMetrics, logger *zap.Logger) *MetricsEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsEventHandler{metrics: metrics, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsEventHandler) EventTypes() []string {
	return []string{
		trade.EventTypeSaleCompleted,
		inventory.EventTypeStockChanged,
		inventory.EventTypeLowStockAlertTriggered,
		inventory.EventTypeLowStockAlertResolved,
	}
}

// Handle records the event. Unknown events are ignored.
func (h *MetricsEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.SaleCompletedEvent:
		h.metrics.RecordSaleCompleted(ctx, string(e.PaymentMethod), e.Total)
	case *inventory.StockChangedEvent:
		h.metrics.RecordStockMovement(ctx, string(e.MovementType), e.QuantityChanged)
	case *inventory.LowStockAlertTriggeredEvent:
		h.metrics.RecordLowStockAlert(ctx, telemetry.AlertTriggered)
	case *inventory.LowStockAlertResolvedEvent:
		h.metrics.RecordLowStockAlert(ctx, telemetry.AlertResolved)
	default:
		h.logger.Debug("metrics handler ignoring event", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*MetricsEventHandler)(nil)
