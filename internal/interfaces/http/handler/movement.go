package handler

import (
	"github.com/gin-gonic/gin"
	appinv "github.com/retail/backend/internal/application/inventory"
	"github.com/retail/backend/internal/interfaces/http/dto"
)

// MovementHandler handles audit log queries that are not scoped to one product
type MovementHandler struct {
	BaseHandler
	stock StockService
}

// NewMovementHandler creates a new MovementHandler
func NewMovementHandler(stock StockService) *MovementHandler {
	return &MovementHandler{stock: stock}
}

// ListByDateRange godoc
// @Summary      Stock movements in a time range
// @Description  Movements created in [from, to), oldest first
// @Tags         movements
// @Produce      json
// @Param        from      query string true  "Range start (RFC 3339)"
// @Param        to        query string true  "Range end (RFC 3339)"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]appinv.StockMovementResponse}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /movements [get]
func (h *MovementHandler) ListByDateRange(c *gin.Context) {
	var filter appinv.MovementRangeFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !filter.To.After(filter.From) {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "to must be after from")
		return
	}
	movements, err := h.stock.ListMovementsByDateRange(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// ListByUser godoc
// @Summary      Stock movements recorded by a user
// @Tags         movements
// @Produce      json
// @Param        user_id   path  string true  "User ID" format(uuid)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]appinv.StockMovementResponse}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /movements/users/{user_id} [get]
func (h *MovementHandler) ListByUser(c *gin.Context) {
	userID, ok := h.uuidParam(c, "user_id")
	if !ok {
		return
	}
	var filter appinv.PageFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	movements, err := h.stock.ListMovementsByActor(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}
