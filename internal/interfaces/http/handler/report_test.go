package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appreport "github.com/retail/backend/internal/application/report"
	"github.com/retail/backend/internal/domain/report"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) GetSalesSummary(ctx context.Context, filter appreport.SalesReportFilter) (*report.SalesSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SalesSummary), args.Error(1)
}

func (m *mockReportService) GetDailySalesTrend(ctx context.Context, filter appreport.SalesReportFilter) ([]report.DailySalesTrend, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]report.DailySalesTrend), args.Error(1)
}

func (m *mockReportService) GetTopProducts(ctx context.Context, filter appreport.SalesReportFilter) ([]report.ProductSalesRanking, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]report.ProductSalesRanking), args.Error(1)
}

func (m *mockReportService) GetCashierRanking(ctx context.Context, filter appreport.SalesReportFilter) ([]report.CashierSalesRanking, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]report.CashierSalesRanking), args.Error(1)
}

func (m *mockReportService) GetPaymentBreakdown(ctx context.Context, filter appreport.SalesReportFilter) ([]report.PaymentMethodBreakdown, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]report.PaymentMethodBreakdown), args.Error(1)
}

func (m *mockReportService) GetInventorySummary(ctx context.Context) (*report.InventorySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.InventorySummary), args.Error(1)
}

func (m *mockReportService) GetInventoryValueByCategory(ctx context.Context) ([]report.InventoryValueByCategory, error) {
	args := m.Called(ctx)
	return args.Get(0).([]report.InventoryValueByCategory), args.Error(1)
}

func (m *mockReportService) GetMovementSummary(ctx context.Context, filter appreport.MovementReportFilter) ([]report.MovementSummary, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]report.MovementSummary), args.Error(1)
}

func setupReportRouter(reports *mockReportService) *gin.Engine {
	h := NewReportHandler(reports)
	router := newTestRouter()
	router.GET("/reports/sales/summary", h.SalesSummary)
	router.GET("/reports/sales/daily", h.DailySales)
	router.GET("/reports/sales/top-products", h.TopProducts)
	router.GET("/reports/sales/cashiers", h.Cashiers)
	router.GET("/reports/sales/payment-methods", h.PaymentMethods)
	router.GET("/reports/inventory/summary", h.InventorySummary)
	router.GET("/reports/inventory/categories", h.InventoryByCategory)
	router.GET("/reports/inventory/movements", h.Movements)
	return router
}

func TestReportHandler_SalesSummary(t *testing.T) {
	reports := new(mockReportService)
	router := setupReportRouter(reports)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	reports.On("GetSalesSummary", mock.Anything, mock.MatchedBy(func(f appreport.SalesReportFilter) bool {
		return f.From.Equal(from) && f.To.Equal(to) && f.Category == "bakery"
	})).Return(&report.SalesSummary{SaleCount: 4, Total: decimal.RequireFromString("18.40")}, nil)

	w := performRequest(router, http.MethodGet, "/reports/sales/summary?"+rangeQuery(from, to)+"&category=bakery", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var summary report.SalesSummary
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Equal(t, int64(4), summary.SaleCount)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("18.40")))
	reports.AssertExpectations(t)
}

func TestReportHandler_SalesReportsRequireRange(t *testing.T) {
	reports := new(mockReportService)
	router := setupReportRouter(reports)

	for _, path := range []string{
		"/reports/sales/summary",
		"/reports/sales/daily",
		"/reports/sales/top-products",
		"/reports/sales/cashiers",
		"/reports/sales/payment-methods",
		"/reports/inventory/movements",
	} {
		w := performRequest(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	reports.AssertNotCalled(t, "GetSalesSummary", mock.Anything, mock.Anything)
	reports.AssertNotCalled(t, "GetMovementSummary", mock.Anything, mock.Anything)
}

func TestReportHandler_TopProducts(t *testing.T) {
	reports := new(mockReportService)
	router := setupReportRouter(reports)

	from := time.Now().Add(-24 * time.Hour).Truncate(time.Second)
	to := from.Add(24 * time.Hour)
	ranking := []report.ProductSalesRanking{
		{Rank: 1, ProductID: uuid.New(), ProductName: "Sourdough", Quantity: 12, Revenue: decimal.NewFromInt(54)},
	}
	reports.On("GetTopProducts", mock.Anything, mock.MatchedBy(func(f appreport.SalesReportFilter) bool {
		return f.TopN == 5
	})).Return(ranking, nil)

	w := performRequest(router, http.MethodGet, "/reports/sales/top-products?"+rangeQuery(from, to)+"&top_n=5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var got []report.ProductSalesRanking
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Sourdough", got[0].ProductName)
}

func TestReportHandler_TopProductsRejectsOversizedRanking(t *testing.T) {
	reports := new(mockReportService)
	router := setupReportRouter(reports)

	from := time.Now().Add(-time.Hour).Truncate(time.Second)
	w := performRequest(router, http.MethodGet, "/reports/sales/top-products?"+rangeQuery(from, from.Add(time.Hour))+"&top_n=500", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	reports.AssertNotCalled(t, "GetTopProducts", mock.Anything, mock.Anything)
}

func TestReportHandler_InvertedRange(t *testing.T) {
	reports := new(mockReportService)
	router := setupReportRouter(reports)

	to := time.Now().Truncate(time.Second)
	from := to.Add(time.Hour)
	w := performRequest(router, http.MethodGet, "/reports/sales/cashiers?"+rangeQuery(from, to), nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
	reports.AssertNotCalled(t, "GetCashierRanking", mock.Anything, mock.Anything)
}

func TestReportHandler_ServiceValidationError(t *testing.T) {
	reports := new(mockReportService)
	router := setupReportRouter(reports)

	from := time.Now().Add(-time.Hour).Truncate(time.Second)
	reports.On("GetPaymentBreakdown", mock.Anything, mock.Anything).
		Return([]report.PaymentMethodBreakdown(nil), shared.NewDomainError(shared.CodeInvalidArgument, "product_id must be a UUID"))

	w := performRequest(router, http.MethodGet, "/reports/sales/payment-methods?"+rangeQuery(from, from.Add(time.Hour)), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_InventorySummary(t *testing.T) {
	reports := new(mockReportService)
	router := setupReportRouter(reports)

	reports.On("GetInventorySummary", mock.Anything).Return(&report.InventorySummary{
		ActiveProducts: 3,
		TotalQuantity:  42,
		LowStockCount:  1,
		OpenAlertCount: 1,
	}, nil)

	w := performRequest(router, http.MethodGet, "/reports/inventory/summary", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var summary report.InventorySummary
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Equal(t, int64(3), summary.ActiveProducts)
	assert.Equal(t, int64(1), summary.OpenAlertCount)
}

func TestReportHandler_InventoryByCategoryFailure(t *testing.T) {
	reports := new(mockReportService)
	router := setupReportRouter(reports)

	reports.On("GetInventoryValueByCategory", mock.Anything).
		Return([]report.InventoryValueByCategory(nil), errors.New("connection reset"))

	w := performRequest(router, http.MethodGet, "/reports/inventory/categories", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestReportHandler_Movements(t *testing.T) {
	reports := new(mockReportService)
	router := setupReportRouter(reports)

	from := time.Now().Add(-time.Hour).Truncate(time.Second)
	reports.On("GetMovementSummary", mock.Anything, mock.Anything).Return([]report.MovementSummary{
		{MovementType: "SALE", MovementCount: 3, NetQuantity: -7},
		{MovementType: "RESTOCK", MovementCount: 1, NetQuantity: 20},
	}, nil)

	w := performRequest(router, http.MethodGet, "/reports/inventory/movements?"+rangeQuery(from, from.Add(time.Hour)), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var got []report.MovementSummary
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Len(t, got, 2)
}
