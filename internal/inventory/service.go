package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/internal/ledger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockJournal interface {
	Record(ctx context.Context, tx *gorm.DB, entry ledger.Entry) (*models.StockMovement, error)
}

// Service exposes admin inventory CRUD and manual stock adjustments.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ItemList, error)
	AdjustStock(ctx context.Context, id uuid.UUID, input AdjustStockInput) (*AdjustStockResult, error)
}

type service struct {
	repo    Repository
	ledger  *Ledger
	journal stockJournal
	tx      txRunner
	logg    *logger.Logger
}

func NewService(repo Repository, stock *Ledger, journal stockJournal, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("inventory repository required")
	}
	if stock == nil {
		return nil, errors.New("inventory ledger required")
	}
	if journal == nil {
		return nil, errors.New("stock journal required")
	}
	if tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, ledger: stock, journal: journal, tx: tx, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.MissingField("name")
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		return nil, pkgerrors.MissingField("unit")
	}
	if input.Quantity.IsNegative() {
		return nil, fieldError("quantity", "quantity cannot be negative")
	}
	if ExceedsScale(input.Quantity) {
		return nil, fieldError("quantity", "quantity has too many decimal places")
	}
	if err := validateMoney(input.PricePerUnit, input.LowStockAlert); err != nil {
		return nil, err
	}

	item := &models.InventoryItem{
		Name:          name,
		Description:   input.Description,
		Quantity:      input.Quantity,
		Unit:          unit,
		PricePerUnit:  input.PricePerUnit,
		LowStockAlert: input.LowStockAlert,
		ProviderID:    input.ProviderID,
		CategoryID:    input.CategoryID,
	}

	var created *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.checkRefs(ctx, repo, input.ProviderID, input.CategoryID); err != nil {
			return err
		}
		if err := repo.Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create inventory item")
		}
		loaded, err := repo.FindByID(ctx, item.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reload inventory item")
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := mapItem(*created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("id")
	}
	if err := validateMoney(input.PricePerUnit, input.LowStockAlert); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.MissingField("name")
		}
		updates["name"] = name
	}
	if input.Unit != nil {
		unit := strings.TrimSpace(*input.Unit)
		if unit == "" {
			return nil, pkgerrors.MissingField("unit")
		}
		updates["unit"] = unit
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PricePerUnit != nil {
		updates["price_per_unit"] = *input.PricePerUnit
	}
	if input.LowStockAlert != nil {
		updates["low_stock_alert"] = *input.LowStockAlert
	}
	if input.ClearProvider && input.ProviderID != nil {
		return nil, fieldError("clearProvider", "clearProvider cannot be combined with providerId")
	}
	if input.ClearCategory && input.CategoryID != nil {
		return nil, fieldError("clearCategory", "clearCategory cannot be combined with categoryId")
	}
	switch {
	case input.ProviderID != nil:
		updates["provider_id"] = *input.ProviderID
	case input.ClearProvider:
		updates["provider_id"] = nil
	}
	switch {
	case input.CategoryID != nil:
		updates["category_id"] = *input.CategoryID
	case input.ClearCategory:
		updates["category_id"] = nil
	}

	var updated *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			return notFoundOr(err, id, "load inventory item")
		}
		if err := s.checkRefs(ctx, repo, input.ProviderID, input.CategoryID); err != nil {
			return err
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update inventory item")
		}
		loaded, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reload inventory item")
		}
		updated = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := mapItem(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.MissingField("id")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "inventory item is referenced by orders").
				WithDetails(map[string]any{"adminItemId": id.String()})
		}
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "delete inventory item")
	}
	if affected == 0 {
		return itemNotFound(id)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("id")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, id, "load inventory item")
	}
	dto := mapItem(*item)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ItemList, error) {
	filters.Query = strings.ToLower(strings.TrimSpace(filters.Query))
	rows, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list inventory items")
	}
	page := pagination.Trim(rows, params.Limit, func(item models.InventoryItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: item.CreatedAt, ID: item.ID}
	})
	out := &ItemList{Items: make([]ItemDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, item := range page.Items {
		out.Items = append(out.Items, mapItem(item))
	}
	return out, nil
}

// AdjustStock routes a manual correction through the ledger.
func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, input AdjustStockInput) (*AdjustStockResult, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("id")
	}
	if input.Delta.IsZero() {
		return nil, fieldError("delta", "delta must be non-zero")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.MissingField("reason")
	}

	var movement Movement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		if input.Delta.IsPositive() {
			movement, err = s.ledger.Increment(ctx, tx, id, input.Delta)
		} else {
			movement, err = s.ledger.Decrement(ctx, tx, id, input.Delta.Neg())
		}
		if err != nil {
			return err
		}
		_, err = s.journal.Record(ctx, tx, ledger.Entry{
			AdminItemID: id,
			Reason:      enums.StockMovementManualAdjustment,
			Before:      movement.Before,
			After:       movement.After,
			Note:        input.Reason,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"admin_item_id": id.String(),
		"before":        movement.Before.String(),
		"after":         movement.After.String(),
		"reason":        input.Reason,
	})
	if movement.Warning != nil {
		s.logg.Warn(logCtx, "manual stock adjustment left item below zero")
	} else {
		s.logg.Info(logCtx, "manual stock adjustment applied")
	}

	return &AdjustStockResult{
		Item:    mapItem(movement.Item),
		Before:  movement.Before.String(),
		After:   movement.After.String(),
		Warning: movement.Warning,
	}, nil
}

func (s *service) checkRefs(ctx context.Context, repo Repository, providerID, categoryID *uuid.UUID) error {
	if providerID != nil {
		ok, err := repo.ProviderExists(ctx, *providerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "check provider")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "provider not found").
				WithDetails(map[string]any{"providerId": providerID.String()})
		}
	}
	if categoryID != nil {
		ok, err := repo.CategoryExists(ctx, *categoryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "check category")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found").
				WithDetails(map[string]any{"categoryId": categoryID.String()})
		}
	}
	return nil
}

func validateMoney(price, threshold *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return fieldError("pricePerUnit", "pricePerUnit cannot be negative")
	}
	if threshold != nil && threshold.IsNegative() {
		return fieldError("lowStockAlert", "lowStockAlert cannot be negative")
	}
	if threshold != nil && ExceedsScale(*threshold) {
		return fieldError("lowStockAlert", "lowStockAlert has too many decimal places")
	}
	return nil
}

func fieldError(field, message string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"field": field})
}

func notFoundOr(err error, id uuid.UUID, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return itemNotFound(id)
	}
	return pkgerrors.Wrap(pkgerrors.CodePersistence, err, action)
}
