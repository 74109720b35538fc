package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer places orders against the admin inventory.
type Customer struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string             `gorm:"column:name;not null"`
	Email     *string            `gorm:"column:email"`
	Phone     *string            `gorm:"column:phone"`
	Address   *string            `gorm:"column:address"`
	Inventory *CustomerInventory `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
