package enums

import "fmt"

// StockMovementReason says why an admin item's quantity changed.
type StockMovementReason string

const (
	StockMovementOrderPlaced           StockMovementReason = "order_placed"
	StockMovementOrderItemAdded        StockMovementReason = "order_item_added"
	StockMovementOrderCancelled        StockMovementReason = "order_cancelled"
	StockMovementOrderDeleted          StockMovementReason = "order_deleted"
	StockMovementProviderOrderReceived StockMovementReason = "provider_order_received"
	StockMovementManualAdjustment      StockMovementReason = "manual_adjustment"
)

var validStockMovementReasons = []StockMovementReason{
	StockMovementOrderPlaced,
	StockMovementOrderItemAdded,
	StockMovementOrderCancelled,
	StockMovementOrderDeleted,
	StockMovementProviderOrderReceived,
	StockMovementManualAdjustment,
}

// IsValid reports whether the value is a known StockMovementReason.
func (r StockMovementReason) IsValid() bool {
	for _, candidate := range validStockMovementReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStockMovementReason converts raw input into a StockMovementReason.
func ParseStockMovementReason(value string) (StockMovementReason, error) {
	for _, candidate := range validStockMovementReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement reason %q", value)
}
