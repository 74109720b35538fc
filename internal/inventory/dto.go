package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
)

// ListFilters narrows the admin inventory listing.
type ListFilters struct {
	ProviderID   *uuid.UUID
	CategoryID   *uuid.UUID
	LowStockOnly bool
	Query        string
}

// CreateItemInput carries a new admin item. Quantity seeds the opening stock.
type CreateItemInput struct {
	Name          string           `json:"name" validate:"required,max=200"`
	Description   *string          `json:"description,omitempty"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Unit          string           `json:"unit" validate:"required,max=32"`
	PricePerUnit  *decimal.Decimal `json:"pricePerUnit,omitempty"`
	LowStockAlert *decimal.Decimal `json:"lowStockAlert,omitempty"`
	ProviderID    *uuid.UUID       `json:"providerId,omitempty"`
	CategoryID    *uuid.UUID       `json:"categoryId,omitempty"`
}

// UpdateItemInput patches descriptive fields. Quantity moves only through AdjustStock.
type UpdateItemInput struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description,omitempty"`
	Unit          *string          `json:"unit,omitempty" validate:"omitempty,min=1,max=32"`
	PricePerUnit  *decimal.Decimal `json:"pricePerUnit,omitempty"`
	LowStockAlert *decimal.Decimal `json:"lowStockAlert,omitempty"`
	ProviderID    *uuid.UUID       `json:"providerId,omitempty"`
	CategoryID    *uuid.UUID       `json:"categoryId,omitempty"`
	ClearProvider bool             `json:"clearProvider,omitempty"`
	ClearCategory bool             `json:"clearCategory,omitempty"`
}

// AdjustStockInput is a manual stock correction; a negative delta decrements.
type AdjustStockInput struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason" validate:"required,max=500"`
}

// AdjustStockResult echoes the movement applied by AdjustStock.
type AdjustStockResult struct {
	Item    ItemDTO       `json:"item"`
	Before  string        `json:"before"`
	After   string        `json:"after"`
	Warning *StockWarning `json:"warning,omitempty"`
}

type RefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ItemDTO is the API shape of an admin inventory item.
type ItemDTO struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Unit          string           `json:"unit"`
	PricePerUnit  *decimal.Decimal `json:"pricePerUnit,omitempty"`
	LowStockAlert decimal.Decimal  `json:"lowStockAlert"`
	IsLowStock    bool             `json:"isLowStock"`
	ProviderID    *uuid.UUID       `json:"providerId,omitempty"`
	Provider      *RefDTO          `json:"provider,omitempty"`
	CategoryID    *uuid.UUID       `json:"categoryId,omitempty"`
	Category      *RefDTO          `json:"category,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ItemList is one page of admin items.
type ItemList struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

func mapItem(item models.InventoryItem) ItemDTO {
	dto := ItemDTO{
		ID:            item.ID,
		Name:          item.Name,
		Description:   item.Description,
		Quantity:      item.Quantity,
		Unit:          item.Unit,
		PricePerUnit:  item.PricePerUnit,
		LowStockAlert: item.Threshold(),
		IsLowStock:    IsLowStock(item),
		ProviderID:    item.ProviderID,
		CategoryID:    item.CategoryID,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
	if item.Provider != nil {
		dto.Provider = &RefDTO{ID: item.Provider.ID, Name: item.Provider.Name}
	}
	if item.Category != nil {
		dto.Category = &RefDTO{ID: item.Category.ID, Name: item.Category.Name}
	}
	return dto
}
