package models

import (
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	Code      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_code"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Category  string          `gorm:"type:varchar(100);index"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Quantity  int             `gorm:"not null;default:0;check:chk_product_quantity,quantity >= 0"`
	MinStock  int             `gorm:"not null;default:0"`
	Active    bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *inventory.Product {
	return &inventory.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Category:          m.Category,
		UnitPrice:         m.UnitPrice,
		Quantity:          m.Quantity,
		MinStock:          m.MinStock,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *inventory.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Category = p.Category
	m.UnitPrice = p.UnitPrice
	m.Quantity = p.Quantity
	m.MinStock = p.MinStock
	m.Active = p.Active
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
