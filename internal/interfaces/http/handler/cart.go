package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptrade "github.com/retail/backend/internal/application/trade"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/interfaces/http/dto"
	"github.com/retail/backend/internal/interfaces/http/middleware"
)

// CartService is the till-facing part of the trade application
type CartService interface {
	CreateCart(ctx context.Context) (*apptrade.SaleResponse, error)
	GetCart(ctx context.Context, id uuid.UUID) (*apptrade.SaleResponse, error)
	AddItem(ctx context.Context, cartID uuid.UUID, req apptrade.AddCartItemRequest) (*apptrade.SaleResponse, error)
	SetQuantity(ctx context.Context, cartID, productID uuid.UUID, req apptrade.SetCartItemQuantityRequest) (*apptrade.SaleResponse, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*apptrade.SaleResponse, error)
	ApplyDiscount(ctx context.Context, cartID uuid.UUID, req apptrade.ApplyDiscountRequest) (*apptrade.SaleResponse, error)
	ClearDiscount(ctx context.Context, cartID uuid.UUID) (*apptrade.SaleResponse, error)
	SetPaymentMethod(ctx context.Context, cartID uuid.UUID, req apptrade.SetPaymentMethodRequest) (*apptrade.SaleResponse, error)
	Abandon(ctx context.Context, cartID uuid.UUID, req apptrade.AbandonCartRequest) (*apptrade.SaleResponse, error)
	Checkout(ctx context.Context, cartID uuid.UUID) (*apptrade.CheckoutResponse, error)
	QuickSale(ctx context.Context, req apptrade.QuickSaleRequest) (*apptrade.CheckoutResponse, error)
}

// CheckoutFailure is attached to a rejected checkout so the till knows
// whether the cart can be corrected and submitted again
// @Description Where a rejected checkout stopped
type CheckoutFailure struct {
	SaleID      uuid.UUID `json:"sale_id"`
	Stage       string    `json:"stage"`
	State       string    `json:"state"`
	Recoverable bool      `json:"recoverable"`
}

// CartHandler handles cart editing and checkout
type CartHandler struct {
	BaseHandler
	carts CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// Create godoc
// @Summary      Open a cart
// @Tags         carts
// @Produce      json
// @Success      201 {object} dto.Response{data=apptrade.SaleResponse}
// @Security     BearerAuth
// @Router       /carts [post]
func (h *CartHandler) Create(c *gin.Context) {
	cart, err := h.carts.CreateCart(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cart)
}

// Get godoc
// @Summary      Get a cart
// @Tags         carts
// @Produce      json
// @Param        id path string true "Cart ID" format(uuid)
// @Success      200 {object} dto.Response{data=apptrade.SaleResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /carts/{id} [get]
func (h *CartHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	cart, err := h.carts.GetCart(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem godoc
// @Summary      Add a product to a cart
// @Description  Adds units to the product's line, creating it when absent
// @Tags         carts
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Cart ID" format(uuid)
// @Param        request body apptrade.AddCartItemRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=apptrade.SaleResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /carts/{id}/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req apptrade.AddCartItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// SetQuantity godoc
// @Summary      Change a cart line's quantity
// @Description  A quantity of zero removes the line
// @Tags         carts
// @Accept       json
// @Produce      json
// @Param        id         path string                              true "Cart ID" format(uuid)
// @Param        product_id path string                              true "Product ID" format(uuid)
// @Param        request    body apptrade.SetCartItemQuantityRequest true "New quantity"
// @Success      200 {object} dto.Response{data=apptrade.SaleResponse}
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /carts/{id}/items/{product_id} [put]
func (h *CartHandler) SetQuantity(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "product_id")
	if !ok {
		return
	}
	var req apptrade.SetCartItemQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.carts.SetQuantity(c.Request.Context(), id, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem godoc
// @Summary      Remove a line from a cart
// @Tags         carts
// @Produce      json
// @Param        id         path string true "Cart ID" format(uuid)
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=apptrade.SaleResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /carts/{id}/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "product_id")
	if !ok {
		return
	}
	cart, err := h.carts.RemoveItem(c.Request.Context(), id, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// ApplyDiscount godoc
// @Summary      Set the cart discount
// @Tags         carts
// @Accept       json
// @Produce      json
// @Param        id      path string                        true "Cart ID" format(uuid)
// @Param        request body apptrade.ApplyDiscountRequest true "PERCENT or FIXED discount"
// @Success      200 {object} dto.Response{data=apptrade.SaleResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /carts/{id}/discount [put]
func (h *CartHandler) ApplyDiscount(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req apptrade.ApplyDiscountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.carts.ApplyDiscount(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// ClearDiscount godoc
// @Summary      Remove the cart discount
// @Tags         carts
// @Produce      json
// @Param        id path string true "Cart ID" format(uuid)
// @Success      200 {object} dto.Response{data=apptrade.SaleResponse}
// @Security     BearerAuth
// @Router       /carts/{id}/discount [delete]
func (h *CartHandler) ClearDiscount(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	cart, err := h.carts.ClearDiscount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// SetPaymentMethod godoc
// @Summary      Set the payment method
// @Tags         carts
// @Accept       json
// @Produce      json
// @Param        id      path string                           true "Cart ID" format(uuid)
// @Param        request body apptrade.SetPaymentMethodRequest true "Payment method"
// @Success      200 {object} dto.Response{data=apptrade.SaleResponse}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /carts/{id}/payment-method [put]
func (h *CartHandler) SetPaymentMethod(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req apptrade.SetPaymentMethodRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.carts.SetPaymentMethod(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Abandon godoc
// @Summary      Abandon a cart
// @Tags         carts
// @Accept       json
// @Produce      json
// @Param        id      path string                      true  "Cart ID" format(uuid)
// @Param        request body apptrade.AbandonCartRequest false "Reason"
// @Success      200 {object} dto.Response{data=apptrade.SaleResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /carts/{id}/abandon [post]
// @Router       /carts/{id} [delete]
func (h *CartHandler) Abandon(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req apptrade.AbandonCartRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.carts.Abandon(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Checkout godoc
// @Summary      Commit a cart as a sale
// @Description  Validates, reserves and commits the cart atomically. A rejected checkout leaves stock untouched;
// @Description  the error data tells whether the cart is back in BUILDING and can be resubmitted.
// @Tags         carts
// @Produce      json
// @Param        id path string true "Cart ID" format(uuid)
// @Success      200 {object} dto.Response{data=apptrade.CheckoutResponse}
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} dto.Response{data=CheckoutFailure}
// @Failure      422 {object} dto.Response{data=CheckoutFailure}
// @Security     BearerAuth
// @Router       /carts/{id}/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	result, err := h.carts.Checkout(c.Request.Context(), id)
	if err != nil {
		h.checkoutError(c, err)
		return
	}
	h.Success(c, result)
}

// QuickSale godoc
// @Summary      Sell one product without a cart
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body apptrade.QuickSaleRequest true "Product, quantity and payment method"
// @Success      200 {object} dto.Response{data=apptrade.CheckoutResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} dto.Response{data=CheckoutFailure}
// @Security     BearerAuth
// @Router       /sales/quick [post]
func (h *CartHandler) QuickSale(c *gin.Context) {
	var req apptrade.QuickSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.carts.QuickSale(c.Request.Context(), req)
	if err != nil {
		h.checkoutError(c, err)
		return
	}
	h.Success(c, result)
}

// checkoutError answers like HandleError and adds where the checkout stopped
func (h *CartHandler) checkoutError(c *gin.Context, err error) {
	var checkoutErr *apptrade.CheckoutError
	if !errors.As(err, &checkoutErr) {
		h.HandleError(c, err)
		return
	}

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		h.HandleError(c, err)
		return
	}
	code := dto.NormalizeErrorCode(domainErr.Code)
	resp := dto.NewErrorResponseWithRequestID(code, domainErr.Message, middleware.GetRequestID(c))
	resp.Data = CheckoutFailure{
		SaleID:      checkoutErr.SaleID,
		Stage:       checkoutErr.Stage.String(),
		State:       checkoutErr.State.String(),
		Recoverable: checkoutErr.Recoverable(),
	}
	c.JSON(dto.GetHTTPStatus(code), resp)
}
