package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
)

// StockMovementModel is the persistence model for the append-only audit log.
// (product_id, sequence) is unique so two writers can never record the same step.
type StockMovementModel struct {
	ID               uuid.UUID              `gorm:"type:uuid;primary_key"`
	ProductID        uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_stock_movement_product_seq,priority:1"`
	Sequence         int64                  `gorm:"not null;uniqueIndex:idx_stock_movement_product_seq,priority:2"`
	RelatedID        *uuid.UUID             `gorm:"type:uuid;index"`
	MovementType     inventory.MovementType `gorm:"type:varchar(20);not null;index"`
	PreviousQuantity int                    `gorm:"not null"`
	QuantityChanged  int                    `gorm:"not null"`
	NewQuantity      int                    `gorm:"not null"`
	Reason           string                 `gorm:"type:varchar(500)"`
	ActorID          uuid.UUID              `gorm:"type:uuid;not null;index"`
	ActorName        string                 `gorm:"type:varchar(100);not null"`
	CreatedAt        time.Time              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
// It fails if the stored quantities do not add up.
func (m *StockMovementModel) ToDomain() (*inventory.StockMovement, error) {
	return inventory.RestoreStockMovement(
		m.ID, m.ProductID, m.RelatedID, m.MovementType,
		m.PreviousQuantity, m.QuantityChanged, m.NewQuantity,
		m.Sequence, m.Reason, m.ActorID, m.ActorName, m.CreatedAt,
	)
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement.
func StockMovementModelFromDomain(s *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:               s.ID(),
		ProductID:        s.ProductID(),
		Sequence:         s.Sequence(),
		RelatedID:        s.RelatedID(),
		MovementType:     s.Type(),
		PreviousQuantity: s.PreviousQuantity(),
		QuantityChanged:  s.QuantityChanged(),
		NewQuantity:      s.NewQuantity(),
		Reason:           s.Reason(),
		ActorID:          s.ActorID(),
		ActorName:        s.ActorName(),
		CreatedAt:        s.CreatedAt(),
	}
}
