package restock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
)

// ListFilters narrow provider order listings.
type ListFilters struct {
	Status     *enums.ProviderOrderStatus
	ProviderID *uuid.UUID
}

// Summary reports what one planner run found and wrote.
type Summary struct {
	LowStockCount     int         `json:"lowStockCount"`
	SkippedNoProvider int         `json:"skippedNoProvider"`
	CreatedOrderIDs   []uuid.UUID `json:"createdOrderIds"`
	AppendedOrderIDs  []uuid.UUID `json:"appendedOrderIds"`
}

type ProviderRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
	Phone *string   `json:"phone,omitempty"`
}

type ProviderOrderItemDTO struct {
	ID           uuid.UUID       `json:"id"`
	AdminItemID  uuid.UUID       `json:"adminItemId"`
	ItemName     string          `json:"itemName"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

// ProviderOrderDTO is the API shape of a restock order.
type ProviderOrderDTO struct {
	ID          uuid.UUID                 `json:"id"`
	ProviderID  uuid.UUID                 `json:"providerId"`
	Provider    *ProviderRef              `json:"provider,omitempty"`
	Status      enums.ProviderOrderStatus `json:"status"`
	TotalAmount decimal.Decimal           `json:"totalAmount"`
	Notes       *string                   `json:"notes,omitempty"`
	EmailSent   bool                      `json:"emailSent"`
	EmailSentAt *time.Time                `json:"emailSentAt,omitempty"`
	ReceivedAt  *time.Time                `json:"receivedAt,omitempty"`
	Items       []ProviderOrderItemDTO    `json:"items"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

type ProviderOrderList struct {
	Orders     []ProviderOrderDTO `json:"orders"`
	NextCursor string             `json:"nextCursor,omitempty"`
}

func mapProviderOrder(order models.ProviderOrder) ProviderOrderDTO {
	dto := ProviderOrderDTO{
		ID:          order.ID,
		ProviderID:  order.ProviderID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Notes:       order.Notes,
		EmailSent:   order.EmailSent,
		EmailSentAt: order.EmailSentAt,
		ReceivedAt:  order.ReceivedAt,
		Items:       make([]ProviderOrderItemDTO, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	if order.Provider != nil {
		dto.Provider = &ProviderRef{
			ID:    order.Provider.ID,
			Name:  order.Provider.Name,
			Email: order.Provider.Email,
			Phone: order.Provider.Phone,
		}
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, ProviderOrderItemDTO{
			ID:           item.ID,
			AdminItemID:  item.AdminItemID,
			ItemName:     item.ItemName,
			Unit:         item.Unit,
			Quantity:     item.Quantity,
			PricePerUnit: item.PricePerUnit,
			TotalPrice:   item.TotalPrice,
		})
	}
	return dto
}
