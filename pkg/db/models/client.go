package models

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a customer record. Clients are auto-created the first
// time a quote references an unknown name and are never deleted by quotes.
type Client struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;index:idx_clients_name"`
	Company   *string   `gorm:"column:company"`
	Owner     string    `gorm:"column:owner;not null;default:''"`
	Email     *string   `gorm:"column:email"`
	Phone     *string   `gorm:"column:phone"`
	Address   *string   `gorm:"column:address"`
	TaxID     *string   `gorm:"column:tax_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
