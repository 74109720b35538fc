package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerInventory is the per-customer view over the admin inventory.
type CustomerInventory struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID               `gorm:"column:customer_id;type:uuid;not null;uniqueIndex"`
	Items      []CustomerInventoryItem `gorm:"foreignKey:CustomerInventoryID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CustomerInventory) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// CustomerInventoryItem grants one admin item to a customer inventory.
type CustomerInventoryItem struct {
	ID                  uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerInventoryID uuid.UUID      `gorm:"column:customer_inventory_id;type:uuid;not null"`
	AdminItemID         uuid.UUID      `gorm:"column:admin_item_id;type:uuid;not null"`
	AdminItem           *InventoryItem `gorm:"foreignKey:AdminItemID;references:ID"`
	CreatedAt           time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (c *CustomerInventoryItem) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
