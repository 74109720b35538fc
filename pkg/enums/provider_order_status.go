package enums

import (
	"fmt"
	"strings"
)

// ProviderOrderStatus tracks a restock purchase order sent to a provider.
type ProviderOrderStatus string

const (
	ProviderOrderStatusPending   ProviderOrderStatus = "PENDING"
	ProviderOrderStatusSent      ProviderOrderStatus = "SENT"
	ProviderOrderStatusConfirmed ProviderOrderStatus = "CONFIRMED"
	ProviderOrderStatusShipped   ProviderOrderStatus = "SHIPPED"
	ProviderOrderStatusReceived  ProviderOrderStatus = "RECEIVED"
	ProviderOrderStatusCancelled ProviderOrderStatus = "CANCELLED"
)

var validProviderOrderStatuses = []ProviderOrderStatus{
	ProviderOrderStatusPending,
	ProviderOrderStatusSent,
	ProviderOrderStatusConfirmed,
	ProviderOrderStatusShipped,
	ProviderOrderStatusReceived,
	ProviderOrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s ProviderOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProviderOrderStatus.
func (s ProviderOrderStatus) IsValid() bool {
	for _, candidate := range validProviderOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the planner and status updates must leave the order alone.
func (s ProviderOrderStatus) IsTerminal() bool {
	return s == ProviderOrderStatusReceived || s == ProviderOrderStatusCancelled
}

// ParseProviderOrderStatus converts raw input (case-insensitive) into a ProviderOrderStatus.
func ParseProviderOrderStatus(value string) (ProviderOrderStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validProviderOrderStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid provider order status %q", value)
}
