package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptrade "github.com/retail/backend/internal/application/trade"
	"github.com/retail/backend/internal/interfaces/http/dto"
)

// SaleService reads committed sales
type SaleService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*apptrade.SaleResponse, error)
	GetByReceiptNumber(ctx context.Context, receiptNumber string) (*apptrade.SaleResponse, error)
	ListByDateRange(ctx context.Context, filter apptrade.SaleListFilter) ([]apptrade.SaleResponse, int64, error)
}

// SaleHandler handles sale history endpoints
type SaleHandler struct {
	BaseHandler
	sales SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// GetByID godoc
// @Summary      Get a committed sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=apptrade.SaleResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// GetByReceipt godoc
// @Summary      Get a sale by receipt number
// @Tags         sales
// @Produce      json
// @Param        receipt_number path string true "Receipt number"
// @Success      200 {object} dto.Response{data=apptrade.SaleResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/receipt/{receipt_number} [get]
func (h *SaleHandler) GetByReceipt(c *gin.Context) {
	sale, err := h.sales.GetByReceiptNumber(c.Request.Context(), c.Param("receipt_number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List godoc
// @Summary      List committed sales
// @Tags         sales
// @Produce      json
// @Param        from      query string true  "Range start (RFC 3339)"
// @Param        to        query string true  "Range end (RFC 3339)"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]apptrade.SaleResponse}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var filter apptrade.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !filter.To.After(filter.From) {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "to must be after from")
		return
	}
	sales, total, err := h.sales.ListByDateRange(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}
