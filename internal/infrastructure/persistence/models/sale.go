package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for a committed Sale.
type SaleModel struct {
	AggregateModel
	ReceiptNumber string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_sale_receipt_number"`
	ActorID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	ActorName     string              `gorm:"type:varchar(100);not null"`
	Items         []SaleItemModel     `gorm:"foreignKey:SaleID;references:ID"`
	TaxRate       decimal.Decimal     `gorm:"type:decimal(8,6);not null;default:0"`
	DiscountType  trade.DiscountType  `gorm:"type:varchar(10);not null;default:'NONE'"`
	DiscountValue decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Tax           decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Discount      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Total         decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentMethod trade.PaymentMethod `gorm:"type:varchar(20);not null;default:'CASH'"`
	Status        trade.SaleStatus    `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CompletedAt   *time.Time          `gorm:"index"`
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale.
func (m *SaleModel) ToDomain() *trade.Sale {
	sale := &trade.Sale{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ReceiptNumber:     m.ReceiptNumber,
		ActorID:           m.ActorID,
		ActorName:         m.ActorName,
		Items:             make([]trade.SaleItem, len(m.Items)),
		TaxRate:           m.TaxRate,
		DiscountType:      m.DiscountType,
		DiscountValue:     m.DiscountValue,
		Subtotal:          m.Subtotal,
		Tax:               m.Tax,
		Discount:          m.Discount,
		Total:             m.Total,
		PaymentMethod:     m.PaymentMethod,
		Status:            m.Status,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
	}
	for i, item := range m.Items {
		sale.Items[i] = item.ToDomain()
	}
	return sale
}

// FromDomain populates the persistence model from a domain Sale.
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.ReceiptNumber = s.ReceiptNumber
	m.ActorID = s.ActorID
	m.ActorName = s.ActorName
	m.TaxRate = s.TaxRate
	m.DiscountType = s.DiscountType
	m.DiscountValue = s.DiscountValue
	m.Subtotal = s.Subtotal
	m.Tax = s.Tax
	m.Discount = s.Discount
	m.Total = s.Total
	m.PaymentMethod = s.PaymentMethod
	m.Status = s.Status
	m.CompletedAt = s.CompletedAt
	m.CancelledAt = s.CancelledAt
	m.CancelReason = s.CancelReason
	m.Items = make([]SaleItemModel, len(s.Items))
	for i, item := range s.Items {
		m.Items[i] = SaleItemModelFromDomain(s.ID, i+1, item)
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale.
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// SaleItemModel is one line of a committed sale, keyed by sale and line number.
type SaleItemModel struct {
	SaleID      uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LineNo      int             `gorm:"primaryKey"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Category    string          `gorm:"type:varchar(100)"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem.
func (m *SaleItemModel) ToDomain() trade.SaleItem {
	return trade.SaleItem{
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Category:    m.Category,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
	}
}

// SaleItemModelFromDomain creates a line model for the given sale
func SaleItemModelFromDomain(saleID uuid.UUID, lineNo int, item trade.SaleItem) SaleItemModel {
	return SaleItemModel{
		SaleID:      saleID,
		LineNo:      lineNo,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Category:    item.Category,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   item.LineTotal,
	}
}
