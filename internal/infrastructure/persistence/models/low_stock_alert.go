package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
)

// LowStockAlertModel is the persistence model for the LowStockAlert entity.
// The partial unique index allows at most one unresolved alert per product.
type LowStockAlertModel struct {
	BaseModel
	ProductID      uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_low_stock_alert_open,where:resolved = false"`
	Quantity       int        `gorm:"not null"`
	Threshold      int        `gorm:"not null"`
	TriggeredAt    time.Time  `gorm:"not null;index"`
	Resolved       bool       `gorm:"not null;default:false;index"`
	ResolvedAt     *time.Time `gorm:"index"`
	ResolvedBy     *uuid.UUID `gorm:"type:uuid"`
	ResolutionNote string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LowStockAlertModel) TableName() string {
	return "low_stock_alerts"
}

// ToDomain converts the persistence model to a domain LowStockAlert.
func (m *LowStockAlertModel) ToDomain() *inventory.LowStockAlert {
	return &inventory.LowStockAlert{
		BaseEntity:     m.BaseModel.ToDomain(),
		ProductID:      m.ProductID,
		Quantity:       m.Quantity,
		Threshold:      m.Threshold,
		TriggeredAt:    m.TriggeredAt,
		Resolved:       m.Resolved,
		ResolvedAt:     m.ResolvedAt,
		ResolvedBy:     m.ResolvedBy,
		ResolutionNote: m.ResolutionNote,
	}
}

// LowStockAlertModelFromDomain creates a new persistence model from a domain LowStockAlert.
func LowStockAlertModelFromDomain(a *inventory.LowStockAlert) *LowStockAlertModel {
	m := &LowStockAlertModel{
		ProductID:      a.ProductID,
		Quantity:       a.Quantity,
		Threshold:      a.Threshold,
		TriggeredAt:    a.TriggeredAt,
		Resolved:       a.Resolved,
		ResolvedAt:     a.ResolvedAt,
		ResolvedBy:     a.ResolvedBy,
		ResolutionNote: a.ResolutionNote,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}
