package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appreport "github.com/retail/backend/internal/application/report"
	"github.com/retail/backend/internal/domain/report"
	"github.com/retail/backend/internal/interfaces/http/dto"
)

// ReportService serves sales and inventory reports
type ReportService interface {
	GetSalesSummary(ctx context.Context, filter appreport.SalesReportFilter) (*report.SalesSummary, error)
	GetDailySalesTrend(ctx context.Context, filter appreport.SalesReportFilter) ([]report.DailySalesTrend, error)
	GetTopProducts(ctx context.Context, filter appreport.SalesReportFilter) ([]report.ProductSalesRanking, error)
	GetCashierRanking(ctx context.Context, filter appreport.SalesReportFilter) ([]report.CashierSalesRanking, error)
	GetPaymentBreakdown(ctx context.Context, filter appreport.SalesReportFilter) ([]report.PaymentMethodBreakdown, error)
	GetInventorySummary(ctx context.Context) (*report.InventorySummary, error)
	GetInventoryValueByCategory(ctx context.Context) ([]report.InventoryValueByCategory, error)
	GetMovementSummary(ctx context.Context, filter appreport.MovementReportFilter) ([]report.MovementSummary, error)
}

// ReportHandler handles report endpoints
type ReportHandler struct {
	BaseHandler
	reports ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// salesReport binds the shared sales query and writes whatever fn returns
func salesReport[T any](h *ReportHandler, c *gin.Context, fn func(context.Context, appreport.SalesReportFilter) (T, error)) {
	var filter appreport.SalesReportFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !filter.To.After(filter.From) {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "to must be after from")
		return
	}
	result, err := fn(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SalesSummary godoc
// @Summary      Sales totals for a period
// @Tags         reports
// @Produce      json
// @Param        from       query string true  "Range start (RFC 3339)"
// @Param        to         query string true  "Range end (RFC 3339)"
// @Param        product_id query string false "Only sales containing this product" format(uuid)
// @Param        category   query string false "Only sales containing this category"
// @Success      200 {object} dto.Response{data=report.SalesSummary}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/sales/summary [get]
func (h *ReportHandler) SalesSummary(c *gin.Context) {
	salesReport(h, c, h.reports.GetSalesSummary)
}

// DailySales godoc
// @Summary      Sales per day
// @Tags         reports
// @Produce      json
// @Param        from query string true "Range start (RFC 3339)"
// @Param        to   query string true "Range end (RFC 3339)"
// @Success      200 {object} dto.Response{data=[]report.DailySalesTrend}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/sales/daily [get]
func (h *ReportHandler) DailySales(c *gin.Context) {
	salesReport(h, c, h.reports.GetDailySalesTrend)
}

// TopProducts godoc
// @Summary      Best selling products by revenue
// @Tags         reports
// @Produce      json
// @Param        from     query string true  "Range start (RFC 3339)"
// @Param        to       query string true  "Range end (RFC 3339)"
// @Param        category query string false "Restrict to a category"
// @Param        top_n    query int    false "Ranking size" default(10)
// @Success      200 {object} dto.Response{data=[]report.ProductSalesRanking}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/sales/top-products [get]
func (h *ReportHandler) TopProducts(c *gin.Context) {
	salesReport(h, c, h.reports.GetTopProducts)
}

// Cashiers godoc
// @Summary      Takings per cashier
// @Tags         reports
// @Produce      json
// @Param        from  query string true  "Range start (RFC 3339)"
// @Param        to    query string true  "Range end (RFC 3339)"
// @Param        top_n query int    false "Ranking size" default(10)
// @Success      200 {object} dto.Response{data=[]report.CashierSalesRanking}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/sales/cashiers [get]
func (h *ReportHandler) Cashiers(c *gin.Context) {
	salesReport(h, c, h.reports.GetCashierRanking)
}

// PaymentMethods godoc
// @Summary      Takings per payment method
// @Tags         reports
// @Produce      json
// @Param        from query string true "Range start (RFC 3339)"
// @Param        to   query string true "Range end (RFC 3339)"
// @Success      200 {object} dto.Response{data=[]report.PaymentMethodBreakdown}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/sales/payment-methods [get]
func (h *ReportHandler) PaymentMethods(c *gin.Context) {
	salesReport(h, c, h.reports.GetPaymentBreakdown)
}

// InventorySummary godoc
// @Summary      Current stock position
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.InventorySummary}
// @Security     BearerAuth
// @Router       /reports/inventory/summary [get]
func (h *ReportHandler) InventorySummary(c *gin.Context) {
	summary, err := h.reports.GetInventorySummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// InventoryByCategory godoc
// @Summary      Stock value per category
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=[]report.InventoryValueByCategory}
// @Security     BearerAuth
// @Router       /reports/inventory/categories [get]
func (h *ReportHandler) InventoryByCategory(c *gin.Context) {
	values, err := h.reports.GetInventoryValueByCategory(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, values)
}

// Movements godoc
// @Summary      Audit log totals per movement type
// @Tags         reports
// @Produce      json
// @Param        from query string true "Range start (RFC 3339)"
// @Param        to   query string true "Range end (RFC 3339)"
// @Success      200 {object} dto.Response{data=[]report.MovementSummary}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/inventory/movements [get]
func (h *ReportHandler) Movements(c *gin.Context) {
	var filter appreport.MovementReportFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !filter.To.After(filter.From) {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "to must be after from")
		return
	}
	summary, err := h.reports.GetMovementSummary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
