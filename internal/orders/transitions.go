package orders

import (
	"fmt"

	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
)

// CONFIRMED and PROCESSING are reporting stages; every non-terminal status may be cancelled.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusConfirmed: {
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusShipped,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// AllowedTargets lists the statuses reachable from from.
func AllowedTargets(from enums.OrderStatus) []enums.OrderStatus {
	targets := allowedTransitions[from]
	out := make([]enums.OrderStatus, len(targets))
	copy(out, targets)
	return out
}

func checkTransition(from, to enums.OrderStatus) error {
	if from == to {
		return pkgerrors.New(pkgerrors.CodeNoOp, fmt.Sprintf("order is already %s", to)).
			WithDetails(map[string]any{"status": to})
	}
	if !CanTransition(from, to) {
		return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot move order from %s to %s", from, to)).
			WithDetails(map[string]any{
				"from":    from,
				"to":      to,
				"allowed": AllowedTargets(from),
			})
	}
	return nil
}
