package inventory

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/retail/backend/internal/domain/shared"
	sheetimport "github.com/retail/backend/internal/infrastructure/import"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Product import columns
const (
	ColumnCode            = "code"
	ColumnName            = "name"
	ColumnCategory        = "category"
	ColumnUnitPrice       = "unit_price"
	ColumnMinStock        = "min_stock"
	ColumnInitialQuantity = "initial_quantity"
)

// ProductCreator creates one catalogue entry with its opening stock
type ProductCreator interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error)
}

// ProductImportConfig limits uploaded files
type ProductImportConfig struct {
	MaxRows   int
	MaxErrors int
}

// DefaultProductImportConfig returns default import limits
func DefaultProductImportConfig() ProductImportConfig {
	return ProductImportConfig{MaxRows: 5000, MaxErrors: 100}
}

// ProductImportService bulk-creates products from CSV or XLSX files. The
// whole file is validated before anything is written; a file with any
// invalid row creates nothing.
type ProductImportService struct {
	creator ProductCreator
	config  ProductImportConfig
	logger  *zap.Logger
}

// NewProductImportService creates a new ProductImportService
func NewProductImportService(creator ProductCreator, config ProductImportConfig, logger *zap.Logger) *ProductImportService {
	defaults := DefaultProductImportConfig()
	if config.MaxRows <= 0 {
		config.MaxRows = defaults.MaxRows
	}
	if config.MaxErrors <= 0 {
		config.MaxErrors = defaults.MaxErrors
	}
	return &ProductImportService{creator: creator, config: config, logger: logger}
}

// ValidationRules returns the column rules applied to every row
func (s *ProductImportService) ValidationRules() []sheetimport.FieldRule {
	return []sheetimport.FieldRule{
		sheetimport.Field(ColumnCode).Required().MaxLength(50).Unique().Build(),
		sheetimport.Field(ColumnName).Required().MaxLength(200).Build(),
		sheetimport.Field(ColumnCategory).MaxLength(100).Build(),
		sheetimport.Field(ColumnUnitPrice).Required().Decimal().MinValue(decimal.NewFromFloat(0.01)).Build(),
		sheetimport.Field(ColumnMinStock).Int().MinValue(decimal.Zero).Build(),
		sheetimport.Field(ColumnInitialQuantity).Int().MinValue(decimal.Zero).Build(),
	}
}

// Import reads fileName from r and creates one product per row. With dryRun
// the file is only validated.
func (s *ProductImportService) Import(ctx context.Context, fileName string, r io.Reader, dryRun bool) (*ImportProductsResponse, error) {
	reader, err := sheetimport.Open(fileName, r)
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodeValidation, "Cannot read import file", err)
	}
	defer reader.Close()

	if missing := sheetimport.MissingHeaders(reader, []string{ColumnCode, ColumnName, ColumnUnitPrice}); len(missing) > 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Missing required columns: "+strings.Join(missing, ", "))
	}

	rows, err := sheetimport.ReadAll(reader, s.config.MaxRows)
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodeValidation, "Cannot read import file", err)
	}

	resp := &ImportProductsResponse{TotalRows: len(rows), DryRun: dryRun}
	validator := sheetimport.NewFieldValidator(s.ValidationRules(), s.config.MaxErrors)
	requests := make([]CreateProductRequest, 0, len(rows))
	for _, row := range rows {
		if validator.ValidateRow(row) {
			requests = append(requests, toCreateProductRequest(row))
		}
	}
	resp.ValidRows = len(requests)

	if errs := validator.Errors(); errs.HasErrors() {
		resp.Errors = errs.Errors()
		resp.TotalErrors = errs.TotalCount()
		resp.Truncated = errs.IsTruncated()
		return resp, nil
	}
	if dryRun {
		return resp, nil
	}

	failures := sheetimport.NewErrorCollection(s.config.MaxErrors)
	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		product, err := s.creator.CreateProduct(ctx, req)
		if err != nil {
			var de *shared.DomainError
			if !errors.As(err, &de) || de.Code == shared.CodePersistence {
				return nil, err
			}
			failures.Add(sheetimport.RowError{
				Row:     rows[i].LineNumber,
				Column:  ColumnCode,
				Code:    de.Code,
				Message: de.Message,
				Value:   req.Code,
			})
			continue
		}
		resp.Created = append(resp.Created, *product)
	}
	resp.Errors = failures.Errors()
	resp.TotalErrors = failures.TotalCount()
	resp.Truncated = failures.IsTruncated()

	s.logger.Info("product import finished",
		zap.String("file", fileName),
		zap.Int("rows", resp.TotalRows),
		zap.Int("created", len(resp.Created)),
		zap.Int("failed", resp.TotalErrors),
	)
	return resp, nil
}

// toCreateProductRequest converts a row that passed validation
func toCreateProductRequest(row *sheetimport.Row) CreateProductRequest {
	price, _ := decimal.NewFromString(row.Get(ColumnUnitPrice))
	minStock, _ := strconv.Atoi(row.Get(ColumnMinStock))
	initial, _ := strconv.Atoi(row.Get(ColumnInitialQuantity))
	return CreateProductRequest{
		Code:            row.Get(ColumnCode),
		Name:            row.Get(ColumnName),
		Category:        row.Get(ColumnCategory),
		UnitPrice:       price,
		MinStock:        minStock,
		InitialQuantity: initial,
	}
}
