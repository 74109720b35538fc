package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-backoffice/internal/inventory"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
)

// ListFilters narrow GetAllOrders.
type ListFilters struct {
	Status     *enums.OrderStatus
	CustomerID *uuid.UUID
}

// LineInput is one requested order line.
type LineInput struct {
	AdminItemID uuid.UUID       `json:"adminItemId"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
}

// CreateOrderInput is a candidate order before validation.
type CreateOrderInput struct {
	CustomerID      uuid.UUID   `json:"customerId"`
	Items           []LineInput `json:"items"`
	Notes           *string     `json:"notes,omitempty"`
	PaymentDeadline *time.Time  `json:"paymentDeadline,omitempty"`
}

// DraftLine is a validated line with its admin item snapshot and totals.
type DraftLine struct {
	Item         models.InventoryItem
	Quantity     decimal.Decimal
	Unit         string
	PricePerUnit decimal.Decimal
	TotalPrice   decimal.Decimal
	Insufficient bool
}

// Draft is a validated order ready for the lifecycle to persist.
type Draft struct {
	Customer        models.Customer
	Inventory       models.CustomerInventory
	Lines           []DraftLine
	TotalAmount     decimal.Decimal
	Notes           *string
	PaymentDeadline *time.Time
	Warnings        []inventory.StockWarning
}

// CustomerRef is the nested customer on order responses.
type CustomerRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
	Phone *string   `json:"phone,omitempty"`
}

type OrderItemDTO struct {
	ID           uuid.UUID       `json:"id"`
	AdminItemID  uuid.UUID       `json:"adminItemId"`
	LineNo       int             `json:"lineNo"`
	ItemName     string          `json:"itemName"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

// OrderDTO is the API shape of a customer order.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	CustomerID      uuid.UUID         `json:"customerId"`
	Customer        *CustomerRef      `json:"customer,omitempty"`
	Status          enums.OrderStatus `json:"status"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
	Notes           *string           `json:"notes,omitempty"`
	PaymentDeadline *time.Time        `json:"paymentDeadline,omitempty"`
	CancelledAt     *time.Time        `json:"cancelledAt,omitempty"`
	Items           []OrderItemDTO    `json:"items"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// OrderCreated is the typed outcome of CreateOrder. Warnings lists lines accepted
// against insufficient stock.
type OrderCreated struct {
	Order    OrderDTO
	Warnings []inventory.StockWarning
}

// OrderUpdated is the outcome of AddItemToOrder.
type OrderUpdated struct {
	Order    OrderDTO
	Warnings []inventory.StockWarning
}

func mapOrder(order models.Order) OrderDTO {
	dto := OrderDTO{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		Status:          order.Status,
		TotalAmount:     order.TotalAmount,
		Notes:           order.Notes,
		PaymentDeadline: order.PaymentDeadline,
		CancelledAt:     order.CancelledAt,
		Items:           make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if order.Customer != nil {
		dto.Customer = &CustomerRef{
			ID:    order.Customer.ID,
			Name:  order.Customer.Name,
			Email: order.Customer.Email,
			Phone: order.Customer.Phone,
		}
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:           item.ID,
			AdminItemID:  item.AdminItemID,
			LineNo:       item.LineNo,
			ItemName:     item.ItemName,
			Unit:         item.Unit,
			Quantity:     item.Quantity,
			PricePerUnit: item.PricePerUnit,
			TotalPrice:   item.TotalPrice,
		})
	}
	return dto
}
