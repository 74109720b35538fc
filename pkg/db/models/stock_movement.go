package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
)

// StockMovement is an append-only journal row for one applied quantity change.
// Order and provider order ids are kept after their owners are deleted.
type StockMovement struct {
	ID              uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AdminItemID     uuid.UUID                 `gorm:"column:admin_item_id;type:uuid;not null"`
	OrderID         *uuid.UUID                `gorm:"column:order_id;type:uuid"`
	ProviderOrderID *uuid.UUID                `gorm:"column:provider_order_id;type:uuid"`
	Reason          enums.StockMovementReason `gorm:"column:reason;not null"`
	Delta           decimal.Decimal           `gorm:"column:delta;type:numeric(12,3);not null"`
	QuantityBefore  decimal.Decimal           `gorm:"column:quantity_before;type:numeric(12,3);not null"`
	QuantityAfter   decimal.Decimal           `gorm:"column:quantity_after;type:numeric(12,3);not null"`
	Note            *string                   `gorm:"column:note"`
	CreatedAt       time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
