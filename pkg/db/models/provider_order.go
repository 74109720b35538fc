package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
)

// ProviderOrder is a restock purchase order raised against a provider.
type ProviderOrder struct {
	ID          uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID  uuid.UUID                 `gorm:"column:provider_id;type:uuid;not null"`
	Provider    *Provider                 `gorm:"foreignKey:ProviderID"`
	Status      enums.ProviderOrderStatus `gorm:"column:status;type:provider_order_status;not null;default:'PENDING'"`
	TotalAmount decimal.Decimal           `gorm:"column:total_amount;type:numeric(14,2);not null;default:0"`
	Notes       *string                   `gorm:"column:notes"`
	EmailSent   bool                      `gorm:"column:email_sent;not null;default:false"`
	EmailSentAt *time.Time                `gorm:"column:email_sent_at"`
	ReceivedAt  *time.Time                `gorm:"column:received_at"`
	Items       []ProviderOrderItem       `gorm:"foreignKey:ProviderOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *ProviderOrder) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// ProviderOrderItem is one restock line on a provider order.
type ProviderOrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderOrderID uuid.UUID       `gorm:"column:provider_order_id;type:uuid;not null"`
	AdminItemID     uuid.UUID       `gorm:"column:admin_item_id;type:uuid;not null"`
	ItemName        string          `gorm:"column:item_name;not null"`
	Unit            string          `gorm:"column:unit;not null"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null"`
	PricePerUnit    decimal.Decimal `gorm:"column:price_per_unit;type:numeric(12,2);not null;default:0"`
	TotalPrice      decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *ProviderOrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
