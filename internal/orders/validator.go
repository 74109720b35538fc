package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/internal/inventory"
	"github.com/angelmondragon/wholesale-backoffice/pkg/config"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
)

// Validator turns a candidate order into a priced Draft. It never mutates state.
type Validator struct {
	catalog          Catalog
	enforceAllowlist bool
}

func NewValidator(catalog Catalog, cfg config.OrdersConfig) (*Validator, error) {
	if catalog == nil {
		return nil, errors.New("order catalog required")
	}
	return &Validator{catalog: catalog, enforceAllowlist: cfg.EnforceCustomerAllowlist}, nil
}

// Validate checks the customer, its inventory record and then each line in turn,
// fields first and item second.
// Short stock is reported on Draft.Warnings and never fails validation.
func (v *Validator) Validate(ctx context.Context, tx *gorm.DB, input CreateOrderInput) (*Draft, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.MissingField("customerId")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.MissingField("items")
	}

	customer, inv, err := v.resolveCustomer(ctx, tx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	draft := &Draft{
		Customer:        *customer,
		Inventory:       *inv,
		Lines:           make([]DraftLine, 0, len(input.Items)),
		TotalAmount:     decimal.Zero,
		Notes:           input.Notes,
		PaymentDeadline: input.PaymentDeadline,
	}
	for i, line := range input.Items {
		if err := checkLineFields(line, fmt.Sprintf("items[%d]", i)); err != nil {
			return nil, err
		}
		priced, err := v.priceLine(ctx, tx, inv.ID, line)
		if err != nil {
			return nil, err
		}
		draft.Lines = append(draft.Lines, priced)
		draft.TotalAmount = draft.TotalAmount.Add(priced.TotalPrice)
		if priced.Insufficient {
			draft.Warnings = append(draft.Warnings, shortfall(priced))
		}
	}
	return draft, nil
}

// ValidateLine checks one line against an existing order's customer.
func (v *Validator) ValidateLine(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, line LineInput) (*DraftLine, error) {
	_, inv, err := v.resolveCustomer(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}
	if err := checkLineFields(line, "item"); err != nil {
		return nil, err
	}
	priced, err := v.priceLine(ctx, tx, inv.ID, line)
	if err != nil {
		return nil, err
	}
	return &priced, nil
}

func (v *Validator) resolveCustomer(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*models.Customer, *models.CustomerInventory, error) {
	catalog := v.catalog.WithTx(tx)
	customer, err := catalog.FindCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found").
				WithDetails(map[string]any{"customerId": customerID.String()})
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load customer")
	}
	inv, err := catalog.FindCustomerInventory(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer inventory not found").
				WithDetails(map[string]any{"customerId": customerID.String()})
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load customer inventory")
	}
	return customer, inv, nil
}

func (v *Validator) priceLine(ctx context.Context, tx *gorm.DB, inventoryID uuid.UUID, line LineInput) (DraftLine, error) {
	catalog := v.catalog.WithTx(tx)
	item, err := catalog.FindItem(ctx, line.AdminItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DraftLine{}, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found").
				WithDetails(map[string]any{"adminItemId": line.AdminItemID.String()})
		}
		return DraftLine{}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load inventory item")
	}
	if v.enforceAllowlist {
		granted, err := catalog.IsGranted(ctx, inventoryID, item.ID)
		if err != nil {
			return DraftLine{}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "check customer inventory grant")
		}
		if !granted {
			return DraftLine{}, pkgerrors.New(pkgerrors.CodeNotFound, "item not available to customer").
				WithDetails(map[string]any{"adminItemId": item.ID.String()})
		}
	}

	price := item.Price()
	return DraftLine{
		Item:         *item,
		Quantity:     line.Quantity,
		Unit:         strings.TrimSpace(line.Unit),
		PricePerUnit: price,
		TotalPrice:   line.Quantity.Mul(price).Round(2),
		Insufficient: line.Quantity.GreaterThan(item.Quantity),
	}, nil
}

func checkLineFields(line LineInput, prefix string) error {
	if line.AdminItemID == uuid.Nil {
		return pkgerrors.MissingField(prefix + ".adminItemId")
	}
	if !line.Quantity.IsPositive() {
		return pkgerrors.MissingField(prefix + ".quantity")
	}
	if inventory.ExceedsScale(line.Quantity) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity allows at most %d decimal places", inventory.QuantityScale)).
			WithDetails(map[string]any{"field": prefix + ".quantity"})
	}
	if strings.TrimSpace(line.Unit) == "" {
		return pkgerrors.MissingField(prefix + ".unit")
	}
	return nil
}

func shortfall(line DraftLine) inventory.StockWarning {
	return inventory.StockWarning{
		Code:        inventory.WarningInsufficientStock,
		AdminItemID: line.Item.ID,
		ItemName:    line.Item.Name,
		Requested:   line.Quantity,
		Available:   line.Item.Quantity,
	}
}
