package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	sheetimport "github.com/retail/backend/internal/infrastructure/import"
	"github.com/shopspring/decimal"
)

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID         uuid.UUID       `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	MinStock   int             `json:"min_stock"`
	Active     bool            `json:"active"`
	IsLowStock bool            `json:"is_low_stock"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Version    int             `json:"version"`
}

// StockMovementResponse represents an audit record in API responses
type StockMovementResponse struct {
	ID               uuid.UUID  `json:"id"`
	ProductID        uuid.UUID  `json:"product_id"`
	RelatedID        *uuid.UUID `json:"related_id,omitempty"`
	Type             string     `json:"type"`
	QuantityChanged  int        `json:"quantity_changed"`
	PreviousQuantity int        `json:"previous_quantity"`
	NewQuantity      int        `json:"new_quantity"`
	Sequence         int64      `json:"sequence"`
	Reason           string     `json:"reason,omitempty"`
	ActorID          uuid.UUID  `json:"actor_id"`
	ActorName        string     `json:"actor_name"`
	CreatedAt        time.Time  `json:"created_at"`
}

// LowStockAlertResponse represents a low-stock alert in API responses
type LowStockAlertResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	Quantity       int        `json:"quantity"`
	Threshold      int        `json:"threshold"`
	Shortfall      int        `json:"shortfall"`
	TriggeredAt    time.Time  `json:"triggered_at"`
	Resolved       bool       `json:"resolved"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy     *uuid.UUID `json:"resolved_by,omitempty"`
	ResolutionNote string     `json:"resolution_note,omitempty"`
}

// StockChangeResponse is returned by restock, adjust and deactivate
type StockChangeResponse struct {
	Product        ProductResponse        `json:"product"`
	Movement       StockMovementResponse  `json:"movement"`
	TriggeredAlert *LowStockAlertResponse `json:"triggered_alert,omitempty"`
	ResolvedAlert  *LowStockAlertResponse `json:"resolved_alert,omitempty"`
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Code            string          `json:"code" binding:"required,max=50"`
	Name            string          `json:"name" binding:"required,max=200"`
	Category        string          `json:"category" binding:"max=100"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	MinStock        int             `json:"min_stock" binding:"min=0"`
	InitialQuantity int             `json:"initial_quantity" binding:"min=0"`
}

// UpdateProductRequest represents a partial update of catalogue attributes.
// Quantity cannot be changed here; use restock or adjust.
type UpdateProductRequest struct {
	Name      *string          `json:"name" binding:"omitempty,max=200"`
	Category  *string          `json:"category" binding:"omitempty,max=100"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	MinStock  *int             `json:"min_stock" binding:"omitempty,min=0"`
	Active    *bool            `json:"active"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RestockRequest represents a request to receive stock
type RestockRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Reason   string `json:"reason" binding:"max=255"`
}

// AdjustStockRequest represents a manual correction in either direction
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required,ne=0"`
	Reason string `json:"reason" binding:"required,max=255"`
}

// DeactivateProductRequest represents a request to take a product out of sale
type DeactivateProductRequest struct {
	Reason   string `json:"reason" binding:"max=255"`
	WriteOff bool   `json:"write_off"`
}

// ResolveAlertRequest represents a manual alert resolution
type ResolveAlertRequest struct {
	Note string `json:"note" binding:"max=255"`
}

// PageFilter represents plain pagination options
type PageFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// MovementRangeFilter selects movements by creation time
type MovementRangeFilter struct {
	From     time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	To       time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	Page     int       `form:"page" binding:"omitempty,min=1"`
	PageSize int       `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ImportProductsResponse reports the outcome of a bulk product import
type ImportProductsResponse struct {
	TotalRows   int                    `json:"total_rows"`
	ValidRows   int                    `json:"valid_rows"`
	DryRun      bool                   `json:"dry_run"`
	Created     []ProductResponse      `json:"created"`
	Errors      []sheetimport.RowError `json:"errors,omitempty"`
	TotalErrors int                    `json:"total_errors"`
	Truncated   bool                   `json:"truncated,omitempty"`
}

// PurgeAlertsResponse reports how many resolved alerts were deleted
type PurgeAlertsResponse struct {
	Deleted int64     `json:"deleted"`
	Cutoff  time.Time `json:"cutoff"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *inventory.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		Code:       p.Code,
		Name:       p.Name,
		Category:   p.Category,
		UnitPrice:  p.UnitPrice,
		Quantity:   p.Quantity,
		MinStock:   p.MinStock,
		Active:     p.Active,
		IsLowStock: p.IsLowStock(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Version:    p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []inventory.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ToStockMovementResponse converts a domain StockMovement to StockMovementResponse
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:               m.ID(),
		ProductID:        m.ProductID(),
		RelatedID:        m.RelatedID(),
		Type:             m.Type().String(),
		QuantityChanged:  m.QuantityChanged(),
		PreviousQuantity: m.PreviousQuantity(),
		NewQuantity:      m.NewQuantity(),
		Sequence:         m.Sequence(),
		Reason:           m.Reason(),
		ActorID:          m.ActorID(),
		ActorName:        m.ActorName(),
		CreatedAt:        m.CreatedAt(),
	}
}

// ToStockMovementResponses converts a slice of movements
func ToStockMovementResponses(movements []inventory.StockMovement) []StockMovementResponse {
	responses := make([]StockMovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToStockMovementResponse(&movements[i])
	}
	return responses
}

// ToLowStockAlertResponse converts a domain LowStockAlert to LowStockAlertResponse
func ToLowStockAlertResponse(a *inventory.LowStockAlert) LowStockAlertResponse {
	return LowStockAlertResponse{
		ID:             a.ID,
		ProductID:      a.ProductID,
		Quantity:       a.Quantity,
		Threshold:      a.Threshold,
		Shortfall:      a.Shortfall(),
		TriggeredAt:    a.TriggeredAt,
		Resolved:       a.Resolved,
		ResolvedAt:     a.ResolvedAt,
		ResolvedBy:     a.ResolvedBy,
		ResolutionNote: a.ResolutionNote,
	}
}

// ToLowStockAlertResponses converts a slice of alerts
func ToLowStockAlertResponses(alerts []inventory.LowStockAlert) []LowStockAlertResponse {
	responses := make([]LowStockAlertResponse, len(alerts))
	for i := range alerts {
		responses[i] = ToLowStockAlertResponse(&alerts[i])
	}
	return responses
}

// ToStockChangeResponse converts an applied change
func ToStockChangeResponse(r *StockChangeResult) StockChangeResponse {
	resp := StockChangeResponse{
		Product:  ToProductResponse(r.Product),
		Movement: ToStockMovementResponse(r.Movement),
	}
	if r.TriggeredAlert != nil {
		alert := ToLowStockAlertResponse(r.TriggeredAlert)
		resp.TriggeredAlert = &alert
	}
	if r.ResolvedAlert != nil {
		alert := ToLowStockAlertResponse(r.ResolvedAlert)
		resp.ResolvedAlert = &alert
	}
	return resp
}
