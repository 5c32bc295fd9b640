package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poliutech/cotizador-backend/pkg/enums"
)

// Quote is the aggregate root of the quotation domain. Money columns hold the
// persisted 2-decimal values; the totals invariant is enforced by the service
// before any write.
type Quote struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Folio          string            `gorm:"column:folio;not null;uniqueIndex:idx_quotes_folio"`
	ClientID       *uuid.UUID        `gorm:"column:client_id;type:uuid"`
	Client         *Client           `gorm:"foreignKey:ClientID"`
	ClientName     string            `gorm:"column:client_name;not null;default:''"`
	Status         enums.QuoteStatus `gorm:"column:status;not null;default:'PENDING'"`
	Subtotal       decimal.Decimal   `gorm:"column:subtotal;type:numeric(14,2);not null;default:0"`
	DiscountTotal  decimal.Decimal   `gorm:"column:discount_total;type:numeric(14,2);not null;default:0"`
	TaxPercent     decimal.Decimal   `gorm:"column:tax_percent;type:numeric(5,2);not null;default:16"`
	TaxAmount      decimal.Decimal   `gorm:"column:tax_amount;type:numeric(14,2);not null;default:0"`
	Total          decimal.Decimal   `gorm:"column:total;type:numeric(14,2);not null;default:0"`
	Currency       string            `gorm:"column:currency;not null;default:'MXN'"`
	ZoneName       string            `gorm:"column:zone_name;not null;default:''"`
	ZonePercent    decimal.Decimal   `gorm:"column:zone_percent;type:numeric(5,2);not null;default:0"`
	Notes          *string           `gorm:"column:notes"`
	Owner          string            `gorm:"column:owner;not null;default:''"`
	ValidUntil     *time.Time        `gorm:"column:valid_until"`
	LastNotifiedAt *time.Time        `gorm:"column:last_notified_at"`
	Lines          []QuoteLine       `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
