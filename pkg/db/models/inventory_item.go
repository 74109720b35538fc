package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryItem is one line of the admin inventory. Quantity is only changed
// through the inventory ledger and may go negative when orders overcommit.
type InventoryItem struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string           `gorm:"column:name;not null"`
	Description   *string          `gorm:"column:description"`
	Quantity      decimal.Decimal  `gorm:"column:quantity;type:numeric(12,3);not null;default:0"`
	Unit          string           `gorm:"column:unit;not null"`
	PricePerUnit  *decimal.Decimal `gorm:"column:price_per_unit;type:numeric(12,2)"`
	LowStockAlert *decimal.Decimal `gorm:"column:low_stock_alert;type:numeric(12,3)"`
	ProviderID    *uuid.UUID       `gorm:"column:provider_id;type:uuid"`
	Provider      *Provider        `gorm:"foreignKey:ProviderID"`
	CategoryID    *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	Category      *Category        `gorm:"foreignKey:CategoryID"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *InventoryItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// Price returns the unit price, treating an unset price as zero.
func (i InventoryItem) Price() decimal.Decimal {
	if i.PricePerUnit == nil {
		return decimal.Zero
	}
	return *i.PricePerUnit
}

// Threshold returns the low-stock threshold, falling back to DefaultLowStockAlert.
func (i InventoryItem) Threshold() decimal.Decimal {
	if i.LowStockAlert == nil {
		return decimal.NewFromInt(DefaultLowStockAlert)
	}
	return *i.LowStockAlert
}
