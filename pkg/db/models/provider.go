package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Provider is an external supplier that restocks admin inventory.
type Provider struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	ContactName *string   `gorm:"column:contact_name"`
	Email       *string   `gorm:"column:email"`
	Phone       *string   `gorm:"column:phone"`
	Address     *string   `gorm:"column:address"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Provider) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
