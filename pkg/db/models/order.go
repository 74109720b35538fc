package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
)

// Order is a customer sales order drawn against the admin inventory.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID      uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	Customer        *Customer         `gorm:"foreignKey:CustomerID"`
	Status          enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'PENDING'"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:numeric(14,2);not null;default:0"`
	Notes           *string           `gorm:"column:notes"`
	PaymentDeadline *time.Time        `gorm:"column:payment_deadline"`
	CancelledAt     *time.Time        `gorm:"column:cancelled_at"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem snapshots the admin item at the time the line was ordered.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	AdminItemID  uuid.UUID       `gorm:"column:admin_item_id;type:uuid;not null"`
	LineNo       int             `gorm:"column:line_no;not null;default:0"`
	ItemName     string          `gorm:"column:item_name;not null"`
	Unit         string          `gorm:"column:unit;not null"`
	Quantity     decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null"`
	PricePerUnit decimal.Decimal `gorm:"column:price_per_unit;type:numeric(12,2);not null;default:0"`
	TotalPrice   decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
