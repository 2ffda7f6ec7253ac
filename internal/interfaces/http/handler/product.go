package handler

import (
	"context"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/retail/backend/internal/application/inventory"
	"github.com/retail/backend/internal/interfaces/http/dto"
)

// StockService is the part of the inventory application the product and
// movement endpoints use
type StockService interface {
	CreateProduct(ctx context.Context, req appinv.CreateProductRequest) (*appinv.ProductResponse, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*appinv.ProductResponse, error)
	GetProductByCode(ctx context.Context, code string) (*appinv.ProductResponse, error)
	ListProducts(ctx context.Context, filter appinv.ProductListFilter) ([]appinv.ProductResponse, int64, error)
	ListLowStock(ctx context.Context, filter appinv.PageFilter) ([]appinv.ProductResponse, int64, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, req appinv.UpdateProductRequest) (*appinv.ProductResponse, error)
	Restock(ctx context.Context, productID uuid.UUID, req appinv.RestockRequest) (*appinv.StockChangeResponse, error)
	Adjust(ctx context.Context, productID uuid.UUID, req appinv.AdjustStockRequest) (*appinv.StockChangeResponse, error)
	Deactivate(ctx context.Context, productID uuid.UUID, req appinv.DeactivateProductRequest) (*appinv.StockChangeResponse, error)
	ListMovementsByProduct(ctx context.Context, productID uuid.UUID, filter appinv.PageFilter) ([]appinv.StockMovementResponse, int64, error)
	ListMovementsByDateRange(ctx context.Context, filter appinv.MovementRangeFilter) ([]appinv.StockMovementResponse, error)
	ListMovementsByActor(ctx context.Context, actorID uuid.UUID, filter appinv.PageFilter) ([]appinv.StockMovementResponse, error)
}

// ProductImporter creates products from an uploaded sheet
type ProductImporter interface {
	Import(ctx context.Context, fileName string, r io.Reader, dryRun bool) (*appinv.ImportProductsResponse, error)
}

// ProductHandler handles product and stock-level endpoints
type ProductHandler struct {
	BaseHandler
	stock    StockService
	importer ProductImporter
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(stock StockService, importer ProductImporter) *ProductHandler {
	return &ProductHandler{stock: stock, importer: importer}
}

// Create godoc
// @Summary      Create a product
// @Description  Create a product. A positive initial quantity is recorded as a restock movement.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body appinv.CreateProductRequest true "Product creation request"
// @Success      201 {object} dto.Response{data=appinv.ProductResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req appinv.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.stock.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        search    query string false "Code or name contains"
// @Param        category  query string false "Category"
// @Param        active    query bool   false "Active flag"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        order_by  query string false "Sort field"
// @Param        order_dir query string false "asc or desc"
// @Success      200 {object} dto.Response{data=[]appinv.ProductResponse}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter appinv.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	products, total, err := h.stock.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// ListLowStock godoc
// @Summary      List low-stock products
// @Description  Active products whose quantity is at or below their minimum stock
// @Tags         products
// @Produce      json
// @Param        page      query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]appinv.ProductResponse}
// @Security     BearerAuth
// @Router       /products/low-stock [get]
func (h *ProductHandler) ListLowStock(c *gin.Context) {
	var filter appinv.PageFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	products, total, err := h.stock.ListLowStock(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=appinv.ProductResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	product, err := h.stock.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetByCode godoc
// @Summary      Get a product by code
// @Tags         products
// @Produce      json
// @Param        code path string true "Product code"
// @Success      200 {object} dto.Response{data=appinv.ProductResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/code/{code} [get]
func (h *ProductHandler) GetByCode(c *gin.Context) {
	product, err := h.stock.GetProductByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Update godoc
// @Summary      Update a product
// @Description  Change catalogue attributes. Quantity changes go through restock or adjust.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Product ID" format(uuid)
// @Param        request body appinv.UpdateProductRequest true "Changed fields"
// @Success      200 {object} dto.Response{data=appinv.ProductResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req appinv.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.stock.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Restock godoc
// @Summary      Receive stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id      path string                true "Product ID" format(uuid)
// @Param        request body appinv.RestockRequest true "Received quantity"
// @Success      200 {object} dto.Response{data=appinv.StockChangeResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/restock [post]
func (h *ProductHandler) Restock(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req appinv.RestockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.stock.Restock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Adjust godoc
// @Summary      Correct stock
// @Description  Apply a signed correction. The result may not go below zero.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Product ID" format(uuid)
// @Param        request body appinv.AdjustStockRequest true "Signed delta and reason"
// @Success      200 {object} dto.Response{data=appinv.StockChangeResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/adjust [post]
func (h *ProductHandler) Adjust(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req appinv.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.stock.Adjust(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Deactivate godoc
// @Summary      Take a product out of sale
// @Description  Deactivate a product, optionally writing its remaining stock off
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Product ID" format(uuid)
// @Param        request body appinv.DeactivateProductRequest true "Reason and write-off flag"
// @Success      200 {object} dto.Response{data=appinv.StockChangeResponse}
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/deactivate [post]
func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req appinv.DeactivateProductRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	result, err := h.stock.Deactivate(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListMovements godoc
// @Summary      Stock movements of a product
// @Tags         movements
// @Produce      json
// @Param        id        path  string true  "Product ID" format(uuid)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]appinv.StockMovementResponse}
// @Security     BearerAuth
// @Router       /products/{id}/movements [get]
func (h *ProductHandler) ListMovements(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var filter appinv.PageFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	movements, total, err := h.stock.ListMovementsByProduct(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// Import godoc
// @Summary      Import products
// @Description  Create products from a CSV or XLSX sheet with the columns code, name, category,
// @Description  unit_price, min_stock and initial_quantity. Nothing is created when any row is invalid.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        file    formData file true  "CSV or XLSX file"
// @Param        dry_run query    bool false "Validate only"
// @Success      200 {object} dto.Response{data=appinv.ImportProductsResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/import [post]
func (h *ProductHandler) Import(c *gin.Context) {
	dryRun, err := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "dry_run must be a boolean")
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		h.bindError(c, err)
		return
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Cannot read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.importer.Import(c.Request.Context(), header.Filename, file, dryRun)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
