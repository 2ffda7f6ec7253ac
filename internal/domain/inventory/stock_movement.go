package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
)

// MovementType classifies a stock movement
type MovementType string

const (
	// MovementTypeSale is stock leaving through a completed sale
	MovementTypeSale MovementType = "SALE"
	// MovementTypeRestock is stock received from a supplier or initial load
	MovementTypeRestock MovementType = "RESTOCK"
	// MovementTypeAdjustment is a manual correction in either direction
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	// MovementTypeDeactivation documents the quantity when a product was deactivated
	MovementTypeDeactivation MovementType = "DEACTIVATION"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeSale,
		MovementTypeRestock,
		MovementTypeAdjustment,
		MovementTypeDeactivation:
		return true
	}
	return false
}

// AcceptsDelta reports whether the sign of delta fits the movement type
func (t MovementType) AcceptsDelta(delta int) bool {
	switch t {
	case MovementTypeSale:
		return delta < 0
	case MovementTypeRestock:
		return delta > 0
	case MovementTypeAdjustment:
		return delta != 0
	case MovementTypeDeactivation:
		return delta <= 0
	}
	return false
}

// StockMovement is an immutable audit record of one quantity change.
// The resulting quantity is derived from previous + delta and cannot be set.
// Corrections are new movements, never edits.
type StockMovement struct {
	id        uuid.UUID
	productID uuid.UUID
	relatedID *uuid.UUID
	mtype     MovementType
	delta     int
	previous  int
	sequence  int64
	reason    string
	actorID   uuid.UUID
	actorName string
	createdAt time.Time
}

// NewStockMovement creates a movement for a change that has just been applied
// to the ledger, from previous to previous+delta.
func NewStockMovement(productID uuid.UUID, mtype MovementType, previous, delta int, actor shared.Actor) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product ID cannot be empty")
	}
	if !mtype.IsValid() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Invalid movement type")
	}
	if !mtype.AcceptsDelta(delta) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Quantity change does not match movement type "+mtype.String())
	}
	if previous < 0 || previous+delta < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Movement would record a negative quantity")
	}

	return &StockMovement{
		id:        uuid.New(),
		productID: productID,
		mtype:     mtype,
		delta:     delta,
		previous:  previous,
		actorID:   actor.ID,
		actorName: actor.Name,
		createdAt: time.Now(),
	}, nil
}

// RestoreStockMovement rebuilds a persisted movement and re-checks its arithmetic,
// so a tampered row surfaces as an error instead of a silently wrong chain.
func RestoreStockMovement(
	id, productID uuid.UUID,
	relatedID *uuid.UUID,
	mtype MovementType,
	previous, delta, next int,
	sequence int64,
	reason string,
	actorID uuid.UUID,
	actorName string,
	createdAt time.Time,
) (*StockMovement, error) {
	if previous+delta != next {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Stored movement "+id.String()+" has inconsistent quantities")
	}
	return &StockMovement{
		id:        id,
		productID: productID,
		relatedID: relatedID,
		mtype:     mtype,
		delta:     delta,
		previous:  previous,
		sequence:  sequence,
		reason:    reason,
		actorID:   actorID,
		actorName: actorName,
		createdAt: createdAt,
	}, nil
}

// WithRelatedID links the movement to its originating document (e.g. a sale)
func (m *StockMovement) WithRelatedID(id uuid.UUID) *StockMovement {
	m.relatedID = &id
	return m
}

// WithReason sets the free-text reason
func (m *StockMovement) WithReason(reason string) *StockMovement {
	m.reason = reason
	return m
}

// AssignSequence is called by the audit store when the movement is appended
func (m *StockMovement) AssignSequence(seq int64) {
	m.sequence = seq
}

func (m *StockMovement) ID() uuid.UUID { return m.id }
func (m *StockMovement) ProductID() uuid.UUID { return m.productID }
func (m *StockMovement) RelatedID() *uuid.UUID { return m.relatedID }
func (m *StockMovement) Type() MovementType { return m.mtype }
func (m *StockMovement) QuantityChanged() int { return m.delta }
func (m *StockMovement) PreviousQuantity() int { return m.previous }
func (m *StockMovement) NewQuantity() int { return m.previous + m.delta }
func (m *StockMovement) Sequence() int64 { return m.sequence }
func (m *StockMovement) Reason() string { return m.reason }
func (m *StockMovement) ActorID() uuid.UUID { return m.actorID }
func (m *StockMovement) ActorName() string { return m.actorName }
func (m *StockMovement) CreatedAt() time.Time { return m.createdAt }
