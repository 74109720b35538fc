package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
)

// OrderLine is the per-line shape shared by order events.
type OrderLine struct {
	AdminItemID uuid.UUID       `json:"admin_item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// OrderCreatedEvent is emitted once an order and its ledger decrements commit.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID       `json:"order_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Lines         []OrderLine     `json:"lines"`
	StockWarnings []uuid.UUID     `json:"stock_warnings,omitempty"`
}

// OrderStatusChangedEvent reports a pure status transition.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	CustomerID uuid.UUID         `json:"customer_id"`
	From       enums.OrderStatus `json:"from"`
	To         enums.OrderStatus `json:"to"`
}

// OrderCancelledEvent reports a cancellation and the stock it restored.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	From        enums.OrderStatus `json:"from"`
	Restored    []OrderLine       `json:"restored"`
	CancelledAt time.Time         `json:"cancelled_at"`
}

// OrderDeletedEvent reports a hard delete; Restored is empty unless the order was pending.
type OrderDeletedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	CustomerID uuid.UUID         `json:"customer_id"`
	Status     enums.OrderStatus `json:"status"`
	Restored   []OrderLine       `json:"restored,omitempty"`
}

// OrderItemAddedEvent reports a line appended to a pending order.
type OrderItemAddedEvent struct {
	OrderID      uuid.UUID       `json:"order_id"`
	Line         OrderLine       `json:"line"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	StockWarning bool            `json:"stock_warning"`
}

// ProviderOrderLine is the per-line shape shared by provider order events.
type ProviderOrderLine struct {
	AdminItemID uuid.UUID       `json:"admin_item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ProviderOrderCreatedEvent is emitted when the planner opens a new restock order.
type ProviderOrderCreatedEvent struct {
	ProviderOrderID uuid.UUID           `json:"provider_order_id"`
	ProviderID      uuid.UUID           `json:"provider_id"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Lines           []ProviderOrderLine `json:"lines"`
}

// ProviderOrderItemsAppendedEvent is emitted when the planner extends an open order.
type ProviderOrderItemsAppendedEvent struct {
	ProviderOrderID uuid.UUID           `json:"provider_order_id"`
	ProviderID      uuid.UUID           `json:"provider_id"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Lines           []ProviderOrderLine `json:"lines"`
}

// ProviderOrderStatusChangedEvent reports a provider order transition.
type ProviderOrderStatusChangedEvent struct {
	ProviderOrderID uuid.UUID                 `json:"provider_order_id"`
	ProviderID      uuid.UUID                 `json:"provider_id"`
	From            enums.ProviderOrderStatus `json:"from"`
	To              enums.ProviderOrderStatus `json:"to"`
}

// InventoryLowStockEvent is emitted per item found under threshold by a planner run.
type InventoryLowStockEvent struct {
	AdminItemID uuid.UUID       `json:"admin_item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Threshold   decimal.Decimal `json:"threshold"`
	ProviderID  *uuid.UUID      `json:"provider_id,omitempty"`
}
