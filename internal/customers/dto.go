package customers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
)

type CustomerDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Address     *string    `json:"address,omitempty"`
	InventoryID *uuid.UUID `json:"inventoryId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	Name    string  `json:"name" validate:"required,max=160"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

type UpdateInput struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=160"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// GrantInput adds one admin item to a customer inventory.
type GrantInput struct {
	AdminItemID uuid.UUID `json:"adminItemId" validate:"required"`
}

// InventoryEntryDTO is one granted admin item with its live stock.
type InventoryEntryDTO struct {
	AdminItemID  uuid.UUID        `json:"adminItemId"`
	ItemName     string           `json:"itemName"`
	Unit         string           `json:"unit"`
	Quantity     decimal.Decimal  `json:"quantity"`
	PricePerUnit *decimal.Decimal `json:"pricePerUnit,omitempty"`
	GrantedAt    time.Time        `json:"grantedAt"`
}

func mapCustomer(c models.Customer) CustomerDTO {
	dto := CustomerDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Inventory != nil {
		id := c.Inventory.ID
		dto.InventoryID = &id
	}
	return dto
}

func mapEntry(grant models.CustomerInventoryItem) InventoryEntryDTO {
	dto := InventoryEntryDTO{
		AdminItemID: grant.AdminItemID,
		GrantedAt:   grant.CreatedAt,
	}
	if grant.AdminItem != nil {
		dto.ItemName = grant.AdminItem.Name
		dto.Unit = grant.AdminItem.Unit
		dto.Quantity = grant.AdminItem.Quantity
		dto.PricePerUnit = grant.AdminItem.PricePerUnit
	}
	return dto
}
