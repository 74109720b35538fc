package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder         OutboxAggregateType = "order"
	AggregateProviderOrder OutboxAggregateType = "provider_order"
	AggregateInventoryItem OutboxAggregateType = "inventory_item"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateProviderOrder,
	AggregateInventoryItem,
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names a domain event written to the outbox.
type OutboxEventType string

const (
	EventOrderCreated               OutboxEventType = "order.created"
	EventOrderStatusChanged         OutboxEventType = "order.status_changed"
	EventOrderCancelled             OutboxEventType = "order.cancelled"
	EventOrderDeleted               OutboxEventType = "order.deleted"
	EventOrderItemAdded             OutboxEventType = "order.item_added"
	EventProviderOrderCreated       OutboxEventType = "provider_order.created"
	EventProviderOrderItemsAppended OutboxEventType = "provider_order.items_appended"
	EventProviderOrderStatusChanged OutboxEventType = "provider_order.status_changed"
	EventInventoryLowStock          OutboxEventType = "inventory.low_stock"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderStatusChanged,
	EventOrderCancelled,
	EventOrderDeleted,
	EventOrderItemAdded,
	EventProviderOrderCreated,
	EventProviderOrderItemsAppended,
	EventProviderOrderStatusChanged,
	EventInventoryLowStock,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
