package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
)

// WarningInsufficientStock marks a decrement that took an item below zero.
const WarningInsufficientStock = "INSUFFICIENT_STOCK"

// StockWarning is a non-fatal outcome attached to a ledger movement.
type StockWarning struct {
	Code        string          `json:"code"`
	AdminItemID uuid.UUID       `json:"adminItemId"`
	ItemName    string          `json:"itemName"`
	Requested   decimal.Decimal `json:"requested"`
	Available   decimal.Decimal `json:"available"`
}

// Movement records one applied quantity change.
type Movement struct {
	Item    models.InventoryItem
	Before  decimal.Decimal
	After   decimal.Decimal
	Warning *StockWarning
}

// QuantityScale is the number of decimal places the quantity columns keep.
const QuantityScale = 3

// ExceedsScale reports whether q carries more decimal places than QuantityScale.
func ExceedsScale(q decimal.Decimal) bool {
	return !q.Equal(q.Truncate(QuantityScale))
}

// IsLowStock reports whether item sits strictly below its low-stock threshold.
func IsLowStock(item models.InventoryItem) bool {
	return item.Quantity.LessThan(item.Threshold())
}

// Ledger owns admin inventory quantities. Callers pass the transaction that should
// carry the change; atomicity across items is theirs.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) (*Ledger, error) {
	if repo == nil {
		return nil, errors.New("inventory repository required")
	}
	return &Ledger{repo: repo}, nil
}

// Decrement subtracts amount from the item even when stock is short. The result is
// not floored; a shortfall is reported through Movement.Warning.
func (l *Ledger) Decrement(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, amount decimal.Decimal) (Movement, error) {
	return l.apply(ctx, tx, itemID, amount, true)
}

// Increment adds amount back to the item. There is no ceiling.
func (l *Ledger) Increment(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, amount decimal.Decimal) (Movement, error) {
	return l.apply(ctx, tx, itemID, amount, false)
}

func (l *Ledger) apply(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, amount decimal.Decimal, decrement bool) (Movement, error) {
	if itemID == uuid.Nil {
		return Movement{}, pkgerrors.MissingField("adminItemId")
	}
	if !amount.IsPositive() {
		return Movement{}, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero").
			WithDetails(map[string]any{"field": "quantity"})
	}
	if ExceedsScale(amount) {
		return Movement{}, pkgerrors.New(pkgerrors.CodeValidation, "amount has too many decimal places").
			WithDetails(map[string]any{"field": "quantity", "scale": QuantityScale})
	}

	repo := l.repo.WithTx(tx)
	item, err := repo.FindByIDForUpdate(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Movement{}, itemNotFound(itemID)
		}
		return Movement{}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load inventory item")
	}

	movement := Movement{Before: item.Quantity}
	if decrement {
		movement.After = item.Quantity.Sub(amount)
		if amount.GreaterThan(item.Quantity) {
			movement.Warning = &StockWarning{
				Code:        WarningInsufficientStock,
				AdminItemID: item.ID,
				ItemName:    item.Name,
				Requested:   amount,
				Available:   item.Quantity,
			}
		}
	} else {
		movement.After = item.Quantity.Add(amount)
	}

	if err := repo.UpdateQuantity(ctx, item.ID, movement.After); err != nil {
		return Movement{}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update inventory quantity")
	}
	item.Quantity = movement.After
	movement.Item = *item
	return movement, nil
}

func itemNotFound(id uuid.UUID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found").
		WithDetails(map[string]any{"adminItemId": id.String()})
}
