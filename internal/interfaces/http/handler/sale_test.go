package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/retail/backend/internal/application/inventory"
	apptrade "github.com/retail/backend/internal/application/trade"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSaleService struct {
	mock.Mock
}

func (m *mockSaleService) GetByID(ctx context.Context, id uuid.UUID) (*apptrade.SaleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.SaleResponse), args.Error(1)
}

func (m *mockSaleService) GetByReceiptNumber(ctx context.Context, receiptNumber string) (*apptrade.SaleResponse, error) {
	args := m.Called(ctx, receiptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.SaleResponse), args.Error(1)
}

func (m *mockSaleService) ListByDateRange(ctx context.Context, filter apptrade.SaleListFilter) ([]apptrade.SaleResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]apptrade.SaleResponse), args.Get(1).(int64), args.Error(2)
}

func setupSaleRouter(sales *mockSaleService, stock *mockStockService) *gin.Engine {
	sh := NewSaleHandler(sales)
	mh := NewMovementHandler(stock)
	router := newTestRouter()
	router.GET("/sales", sh.List)
	router.GET("/sales/receipt/:receipt_number", sh.GetByReceipt)
	router.GET("/sales/:id", sh.GetByID)
	router.GET("/movements", mh.ListByDateRange)
	router.GET("/movements/users/:user_id", mh.ListByUser)
	return router
}

func rangeQuery(from, to time.Time) string {
	q := url.Values{}
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))
	return q.Encode()
}

func TestSaleHandler_GetByID(t *testing.T) {
	sales := new(mockSaleService)
	router := setupSaleRouter(sales, nil)
	id := uuid.New()
	sales.On("GetByID", mock.Anything, id).Return(&apptrade.SaleResponse{ID: id, Status: "COMPLETED"}, nil)

	rec := performRequest(router, http.MethodGet, "/sales/"+id.String(), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSaleHandler_GetByReceipt(t *testing.T) {
	sales := new(mockSaleService)
	router := setupSaleRouter(sales, nil)
	sales.On("GetByReceiptNumber", mock.Anything, "R-20261015-000042").
		Return(nil, shared.NewDomainError(shared.CodeNotFound, "sale not found"))

	rec := performRequest(router, http.MethodGet, "/sales/receipt/R-20261015-000042", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaleHandler_List(t *testing.T) {
	sales := new(mockSaleService)
	router := setupSaleRouter(sales, nil)

	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	sales.On("ListByDateRange", mock.Anything, mock.MatchedBy(func(f apptrade.SaleListFilter) bool {
		return f.From.Equal(from) && f.To.Equal(to)
	})).Return([]apptrade.SaleResponse{{Status: "COMPLETED"}}, int64(1), nil)

	rec := performRequest(router, http.MethodGet, "/sales?"+rangeQuery(from, to), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(router, http.MethodGet, "/sales?"+rangeQuery(to, from), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(router, http.MethodGet, "/sales", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	sales.AssertNumberOfCalls(t, "ListByDateRange", 1)
}

func TestMovementHandler_ListByDateRange(t *testing.T) {
	stock := new(mockStockService)
	router := setupSaleRouter(nil, stock)

	from := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	stock.On("ListMovementsByDateRange", mock.Anything, mock.MatchedBy(func(f appinv.MovementRangeFilter) bool {
		return f.From.Equal(from) && f.To.Equal(to)
	})).Return([]appinv.StockMovementResponse{{Type: "SALE"}, {Type: "ADJUSTMENT"}}, nil)

	rec := performRequest(router, http.MethodGet, "/movements?"+rangeQuery(from, to), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []appinv.StockMovementResponse
	decodeData(t, rec, &got)
	assert.Len(t, got, 2)
}

func TestMovementHandler_ListByUser(t *testing.T) {
	stock := new(mockStockService)
	router := setupSaleRouter(nil, stock)

	userID := uuid.New()
	stock.On("ListMovementsByActor", mock.Anything, userID, appinv.PageFilter{Page: 3}).
		Return([]appinv.StockMovementResponse{{ActorID: userID}}, nil)

	rec := performRequest(router, http.MethodGet, "/movements/users/"+userID.String()+"?page=3", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(router, http.MethodGet, "/movements/users/system", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
