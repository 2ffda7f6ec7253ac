// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free from
// ORM concerns.
//
// Each model provides ToDomain and FromDomain mappers; repositories only ever hand
// domain types to callers.
//
// Tables:
//   - users: till users (identity)
//   - products: the stock ledger (inventory)
//   - stock_movements: append-only audit log (inventory)
//   - low_stock_alerts: alert register (inventory)
//   - sales, sale_items: committed sales (trade)
package models
