package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteLine is one concept row of a quote. Catalog data is denormalized so
// later catalog edits never rewrite an issued quote.
type QuoteLine struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	QuoteID       uuid.UUID       `gorm:"column:quote_id;type:uuid;not null;index:idx_quote_lines_quote_id"`
	CatalogItemID *uuid.UUID      `gorm:"column:catalog_item_id;type:uuid"`
	Name          string          `gorm:"column:name;not null"`
	Unit          string          `gorm:"column:unit;not null;default:''"`
	System        *string         `gorm:"column:system"`
	Description   *string         `gorm:"column:description"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:numeric(14,2);not null;default:1"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null;default:0"`
	Subtotal      decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2);not null;default:0"`
	Position      int             `gorm:"column:position;not null;default:0"`
}
