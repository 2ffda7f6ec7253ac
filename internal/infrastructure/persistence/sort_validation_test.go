package persistence

import (
	"testing"

	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	for input, want := range map[string]string{
		"":                      "DESC",
		"asc":                   "ASC",
		"  ASC ":                "ASC",
		"desc":                  "DESC",
		"sideways":              "DESC",
		"ASC; DROP TABLE sales": "DESC",
		"asc, (SELECT 1)":       "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(input), "%q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "created_at"},
		{"quantity", "quantity"},
		{"  unit_price ", "unit_price"},
		{"QUANTITY", "created_at"},
		{"password_hash", "created_at"},
		{"quantity; DROP TABLE products;--", "created_at"},
		{"quantity DESC, (SELECT 1)", "created_at"},
		{"code' OR '1'='1", "created_at"},
		{"CASE WHEN 1=1 THEN code ELSE name END", "created_at"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateSortField(tt.input, ProductSortFields, "created_at"), "%q", tt.input)
	}
}

func TestSortFieldWhitelistsExposeNoSecrets(t *testing.T) {
	for name, whitelist := range map[string]map[string]bool{
		"users":     UserSortFields,
		"products":  ProductSortFields,
		"movements": StockMovementSortFields,
		"alerts":    LowStockAlertSortFields,
		"sales":     SaleSortFields,
	} {
		assert.True(t, whitelist["id"], "%s sorts by id for stable pages", name)
		assert.False(t, whitelist["password_hash"], name)
	}
}

func TestApplyOrderAndPaging(t *testing.T) {
	db := newTestDatabase(t)

	render := func(filter shared.Filter, defaultField, tieBreak string) string {
		return db.DB.ToSQL(func(tx *gorm.DB) *gorm.DB {
			query := applyOrderAndPaging(tx.Model(&models.ProductModel{}), filter, ProductSortFields, defaultField, tieBreak)
			return query.Find(&[]models.ProductModel{})
		})
	}

	t.Run("whitelisted field with tie break", func(t *testing.T) {
		sql := render(shared.Filter{OrderBy: "quantity", OrderDir: "asc", Page: 3, PageSize: 10}, "created_at", "id")
		assert.Contains(t, sql, "ORDER BY quantity ASC,id ASC")
		assert.Contains(t, sql, "LIMIT 10 OFFSET 20")
	})

	t.Run("unknown field falls back", func(t *testing.T) {
		sql := render(shared.Filter{OrderBy: "secret"}, "created_at", "id")
		assert.Contains(t, sql, "ORDER BY created_at DESC,id DESC")
		assert.NotContains(t, sql, "LIMIT")
	})

	t.Run("tie break equal to sort field is not repeated", func(t *testing.T) {
		sql := render(shared.Filter{OrderBy: "id"}, "created_at", "id")
		assert.Contains(t, sql, "ORDER BY id DESC")
		assert.NotContains(t, sql, "id DESC,id")
	})
}
