package models

import "github.com/google/uuid"

// DefaultLowStockAlert applies when an inventory item has no explicit threshold.
const DefaultLowStockAlert = 20

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
