package inventory

import (
	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeStockChanged           = "StockChanged"
	EventTypeLowStockAlertTriggered = "LowStockAlertTriggered"
	EventTypeLowStockAlertResolved  = "LowStockAlertResolved"
)

// StockChangedEvent is raised after a quantity change has been committed
type StockChangedEvent struct {
	shared.BaseDomainEvent
	ProductID        uuid.UUID    `json:"product_id"`
	MovementID       uuid.UUID    `json:"movement_id"`
	MovementType     MovementType `json:"movement_type"`
	QuantityChanged  int          `json:"quantity_changed"`
	PreviousQuantity int          `json:"previous_quantity"`
	NewQuantity      int          `json:"new_quantity"`
}

// NewStockChangedEvent creates a StockChangedEvent from an appended movement
func NewStockChangedEvent(m *StockMovement) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockChanged, AggregateTypeProduct, m.ProductID()),
		ProductID:        m.ProductID(),
		MovementID:       m.ID(),
		MovementType:     m.Type(),
		QuantityChanged:  m.QuantityChanged(),
		PreviousQuantity: m.PreviousQuantity(),
		NewQuantity:      m.NewQuantity(),
	}
}

// LowStockAlertTriggeredEvent is raised when a new unresolved alert is created
type LowStockAlertTriggeredEvent struct {
	shared.BaseDomainEvent
	AlertID     uuid.UUID `json:"alert_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductCode string    `json:"product_code"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Threshold   int       `json:"threshold"`
}

// NewLowStockAlertTriggeredEvent creates the event for a freshly triggered alert
func NewLowStockAlertTriggeredEvent(alert *LowStockAlert, product *Product) *LowStockAlertTriggeredEvent {
	return &LowStockAlertTriggeredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockAlertTriggered, AggregateTypeLowStockAlert, alert.ID),
		AlertID:         alert.ID,
		ProductID:       alert.ProductID,
		ProductCode:     product.Code,
		ProductName:     product.Name,
		Quantity:        alert.Quantity,
		Threshold:       alert.Threshold,
	}
}

// EventType returns the event type name
func (e *LowStockAlertTriggeredEvent) EventType() string {
	return EventTypeLowStockAlertTriggered
}

// LowStockAlertResolvedEvent is raised when an alert is resolved, manually or on restock
type LowStockAlertResolvedEvent struct {
	shared.BaseDomainEvent
	AlertID        uuid.UUID `json:"alert_id"`
	ProductID      uuid.UUID `json:"product_id"`
	ResolutionNote string    `json:"resolution_note"`
}

// NewLowStockAlertResolvedEvent creates the event for a resolved alert
func NewLowStockAlertResolvedEvent(alert *LowStockAlert) *LowStockAlertResolvedEvent {
	return &LowStockAlertResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockAlertResolved, AggregateTypeLowStockAlert, alert.ID),
		AlertID:         alert.ID,
		ProductID:       alert.ProductID,
		ResolutionNote:  alert.ResolutionNote,
	}
}

// EventType returns the event type name
func (e *LowStockAlertResolvedEvent) EventType() string {
	return EventTypeLowStockAlertResolved
}
