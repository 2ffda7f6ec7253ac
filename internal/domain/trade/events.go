package trade

import (
	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeSaleCompleted = "SaleCompleted"
)

// SaleItemInfo represents item information for events
type SaleItemInfo struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleCompletedEvent is raised when a sale has been committed
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID       `json:"sale_id"`
	ReceiptNumber string          `json:"receipt_number"`
	ActorID       uuid.UUID       `json:"actor_id"`
	Items         []SaleItemInfo  `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}

// NewSaleCompletedEvent creates a new SaleCompletedEvent
func NewSaleCompletedEvent(sale *Sale) *SaleCompletedEvent {
	items := make([]SaleItemInfo, len(sale.Items))
	for i, item := range sale.Items {
		items[i] = SaleItemInfo{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, AggregateTypeSale, sale.ID),
		SaleID:          sale.ID,
		ReceiptNumber:   sale.ReceiptNumber,
		ActorID:         sale.ActorID,
		Items:           items,
		Total:           sale.Total,
		PaymentMethod:   sale.PaymentMethod,
	}
}

// EventType returns the event type name
func (e *SaleCompletedEvent) EventType() string {
	return EventTypeSaleCompleted
}
