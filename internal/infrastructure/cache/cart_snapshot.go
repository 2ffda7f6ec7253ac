package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// cartSnapshot is the serialized form of a PENDING sale. Totals are not stored;
// they are recomputed from the lines when the cart is loaded.
type cartSnapshot struct {
	ID            uuid.UUID          `json:"id"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	ReceiptNumber string             `json:"receipt_number"`
	ActorID       uuid.UUID          `json:"actor_id"`
	ActorName     string             `json:"actor_name"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	DiscountType  trade.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	PaymentMethod string             `json:"payment_method"`
	Status        trade.SaleStatus   `json:"status"`
	Items         []cartLine         `json:"items"`
}

type cartLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func encodeCart(cart *trade.Sale) ([]byte, error) {
	snap := cartSnapshot{
		ID:            cart.ID,
		CreatedAt:     cart.CreatedAt,
		UpdatedAt:     cart.UpdatedAt,
		ReceiptNumber: cart.ReceiptNumber,
		ActorID:       cart.ActorID,
		ActorName:     cart.ActorName,
		TaxRate:       cart.TaxRate,
		DiscountType:  cart.DiscountType,
		DiscountValue: cart.DiscountValue,
		PaymentMethod: string(cart.PaymentMethod),
		Status:        cart.Status,
		Items:         make([]cartLine, len(cart.Items)),
	}
	for i, item := range cart.Items {
		snap.Items[i] = cartLine{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Category:    item.Category,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return json.Marshal(snap)
}

func decodeCart(data []byte) (*trade.Sale, error) {
	var snap cartSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	cart := &trade.Sale{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{ID: snap.ID, CreatedAt: snap.CreatedAt, UpdatedAt: snap.UpdatedAt},
		},
		ReceiptNumber: snap.ReceiptNumber,
		ActorID:       snap.ActorID,
		ActorName:     snap.ActorName,
		TaxRate:       snap.TaxRate,
		DiscountType:  snap.DiscountType,
		DiscountValue: snap.DiscountValue,
		PaymentMethod: trade.PaymentMethod(snap.PaymentMethod),
		Status:        snap.Status,
		Items:         make([]trade.SaleItem, len(snap.Items)),
	}
	for i, line := range snap.Items {
		cart.Items[i] = trade.SaleItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Category:    line.Category,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		}
	}
	cart.Recalculate()
	cart.UpdatedAt = snap.UpdatedAt
	return cart, nil
}
