package persistence

import (
	"strings"

	"github.com/retail/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"display_name":  true,
	"role":          true,
	"last_login_at": true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"category":   true,
	"unit_price": true,
	"quantity":   true,
	"min_stock":  true,
}

// StockMovementSortFields contains allowed sort fields for stock movements
var StockMovementSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"sequence":         true,
	"movement_type":    true,
	"quantity_changed": true,
}

// LowStockAlertSortFields contains allowed sort fields for alerts
var LowStockAlertSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"triggered_at": true,
	"quantity":     true,
	"threshold":    true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"receipt_number": true,
	"total":          true,
	"completed_at":   true,
}

// applyOrderAndPaging adds a whitelisted ORDER BY and LIMIT/OFFSET to the query.
// tieBreak, when set, is appended so that pages are stable for equal sort keys.
func applyOrderAndPaging(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField, tieBreak string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(field + " " + dir)
	if tieBreak != "" && tieBreak != field {
		query = query.Order(tieBreak + " " + dir)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}
