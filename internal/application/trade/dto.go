package trade

import (
	"time"

	"github.com/google/uuid"
	appinv "github.com/retail/backend/internal/application/inventory"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Cart DTOs ====================

// AddCartItemRequest adds units of a product to a cart
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// SetCartItemQuantityRequest replaces a line's quantity; zero removes the line
type SetCartItemQuantityRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// ApplyDiscountRequest sets the cart discount. Type is PERCENT or FIXED.
type ApplyDiscountRequest struct {
	Type  string          `json:"type" binding:"required,oneof=PERCENT FIXED"`
	Value decimal.Decimal `json:"value" binding:"required"`
}

// SetPaymentMethodRequest records how the customer pays
type SetPaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=CASH CARD E_WALLET OTHER"`
}

// AbandonCartRequest cancels a cart
type AbandonCartRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// QuickSaleRequest sells a single product in one call
type QuickSaleRequest struct {
	ProductID     uuid.UUID `json:"product_id" binding:"required"`
	Quantity      int       `json:"quantity" binding:"required,gt=0"`
	PaymentMethod string    `json:"payment_method" binding:"omitempty,oneof=CASH CARD E_WALLET OTHER"`
}

// ==================== Sale DTOs ====================

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleResponse represents a cart or a committed sale in API responses
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	ReceiptNumber string             `json:"receipt_number"`
	Status        string             `json:"status"`
	ActorID       uuid.UUID          `json:"actor_id"`
	ActorName     string             `json:"actor_name"`
	Items         []SaleItemResponse `json:"items"`
	ItemCount     int                `json:"item_count"`
	TotalQuantity int                `json:"total_quantity"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	DiscountType  string             `json:"discount_type"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason  string             `json:"cancel_reason,omitempty"`
}

// CheckoutResponse is returned for a committed sale
type CheckoutResponse struct {
	Sale            SaleResponse                   `json:"sale"`
	Movements       []appinv.StockMovementResponse `json:"movements"`
	TriggeredAlerts []appinv.LowStockAlertResponse `json:"triggered_alerts"`
	Transitions     []string                       `json:"transitions"`
	DurationMs      int64                          `json:"duration_ms"`
	ReceiptURL      string                         `json:"receipt_url,omitempty"`
}

// SaleListFilter selects committed sales by creation time
type SaleListFilter struct {
	From     time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	To       time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	Page     int       `form:"page" binding:"omitempty,min=1"`
	PageSize int       `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Category:    item.Category,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}
	return SaleResponse{
		ID:            s.ID,
		ReceiptNumber: s.ReceiptNumber,
		Status:        string(s.Status),
		ActorID:       s.ActorID,
		ActorName:     s.ActorName,
		Items:         items,
		ItemCount:     s.ItemCount(),
		TotalQuantity: s.TotalQuantity(),
		TaxRate:       s.TaxRate,
		DiscountType:  string(s.DiscountType),
		DiscountValue: s.DiscountValue,
		Subtotal:      s.Subtotal,
		Tax:           s.Tax,
		Discount:      s.Discount,
		Total:         s.Total,
		PaymentMethod: string(s.PaymentMethod),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		CompletedAt:   s.CompletedAt,
		CancelledAt:   s.CancelledAt,
		CancelReason:  s.CancelReason,
	}
}

// ToSaleResponses converts a slice of domain Sales to SaleResponses
func ToSaleResponses(sales []trade.Sale) []SaleResponse {
	responses := make([]SaleResponse, len(sales))
	for i := range sales {
		responses[i] = ToSaleResponse(&sales[i])
	}
	return responses
}

// ToCheckoutResponse converts a CheckoutResult to CheckoutResponse
func ToCheckoutResponse(r *CheckoutResult) CheckoutResponse {
	transitions := make([]string, len(r.Transitions))
	for i, state := range r.Transitions {
		transitions[i] = state.String()
	}
	alerts := make([]appinv.LowStockAlertResponse, 0, len(r.TriggeredAlerts))
	for _, alert := range r.TriggeredAlerts {
		alerts = append(alerts, appinv.ToLowStockAlertResponse(alert))
	}
	movements := make([]appinv.StockMovementResponse, 0, len(r.Movements))
	for _, movement := range r.Movements {
		movements = append(movements, appinv.ToStockMovementResponse(movement))
	}
	return CheckoutResponse{
		Sale:            ToSaleResponse(r.Sale),
		Movements:       movements,
		TriggeredAlerts: alerts,
		Transitions:     transitions,
		DurationMs:      r.Duration.Milliseconds(),
	}
}
