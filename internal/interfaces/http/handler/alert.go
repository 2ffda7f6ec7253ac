package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/retail/backend/internal/application/inventory"
	"github.com/retail/backend/internal/interfaces/http/dto"
)

// AlertService is the part of the alert register the API exposes
type AlertService interface {
	ListUnresolved(ctx context.Context, filter appinv.PageFilter) ([]appinv.LowStockAlertResponse, int64, error)
	CountUnresolved(ctx context.Context) (int64, error)
	Resolve(ctx context.Context, alertID uuid.UUID, req appinv.ResolveAlertRequest) (*appinv.LowStockAlertResponse, error)
	PurgeResolved(ctx context.Context, olderThan time.Duration) (*appinv.PurgeAlertsResponse, error)
}

// AlertHandler handles low-stock alert endpoints
type AlertHandler struct {
	BaseHandler
	alerts          AlertService
	defaultPurgeAge time.Duration
}

// NewAlertHandler creates a new AlertHandler. defaultPurgeAge applies when a
// purge request does not name its own age.
func NewAlertHandler(alerts AlertService, defaultPurgeAge time.Duration) *AlertHandler {
	return &AlertHandler{alerts: alerts, defaultPurgeAge: defaultPurgeAge}
}

// ListUnresolved godoc
// @Summary      Open low-stock alerts
// @Tags         alerts
// @Produce      json
// @Param        page      query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]appinv.LowStockAlertResponse}
// @Security     BearerAuth
// @Router       /alerts [get]
func (h *AlertHandler) ListUnresolved(c *gin.Context) {
	var filter appinv.PageFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	alerts, total, err := h.alerts.ListUnresolved(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, alerts, total, filter.Page, filter.PageSize)
}

// CountUnresolved godoc
// @Summary      Number of open low-stock alerts
// @Tags         alerts
// @Produce      json
// @Success      200 {object} dto.Response{data=CountData}
// @Security     BearerAuth
// @Router       /alerts/count [get]
func (h *AlertHandler) CountUnresolved(c *gin.Context) {
	count, err := h.alerts.CountUnresolved(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: count})
}

// Resolve godoc
// @Summary      Resolve a low-stock alert
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        id      path string                     true  "Alert ID" format(uuid)
// @Param        request body appinv.ResolveAlertRequest false "Resolution note"
// @Success      200 {object} dto.Response{data=appinv.LowStockAlertResponse}
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req appinv.ResolveAlertRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	alert, err := h.alerts.Resolve(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alert)
}

// Purge godoc
// @Summary      Delete old resolved alerts
// @Tags         alerts
// @Produce      json
// @Param        older_than query string false "Minimum age as a Go duration, e.g. 720h"
// @Success      200 {object} dto.Response{data=appinv.PurgeAlertsResponse}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /alerts/resolved [delete]
func (h *AlertHandler) Purge(c *gin.Context) {
	olderThan := h.defaultPurgeAge
	if raw := c.Query("older_than"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "older_than must be a positive duration")
			return
		}
		olderThan = d
	}
	result, err := h.alerts.PurgeResolved(c.Request.Context(), olderThan)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
