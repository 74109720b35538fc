package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

// lowStockPredicate is the SQL form of IsLowStock.
const lowStockPredicate = "inventory_items.quantity < COALESCE(inventory_items.low_stock_alert, ?)"

// likeEscaper neutralizes LIKE wildcards in user search text.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repository persists admin inventory items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.InventoryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.InventoryItem, error)
	ListAll(ctx context.Context) ([]models.InventoryItem, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.InventoryItem, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	ProviderExists(ctx context.Context, id uuid.UUID) (bool, error)
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Provider").
		Preload("Category").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate row-locks the item until the surrounding transaction ends.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.InventoryItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&items).Error
	return items, err
}

// ListAll returns every admin item ordered by name then id.
func (r *repository) ListAll(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.InventoryItem, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Preload("Provider").
		Preload("Category")
	if filters.ProviderID != nil {
		q = q.Where("inventory_items.provider_id = ?", *filters.ProviderID)
	}
	if filters.CategoryID != nil {
		q = q.Where("inventory_items.category_id = ?", *filters.CategoryID)
	}
	if filters.LowStockOnly {
		q = q.Where(lowStockPredicate, models.DefaultLowStockAlert)
	}
	if filters.Query != "" {
		q = q.Where(`LOWER(inventory_items.name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(filters.Query)+"%")
	}

	var items []models.InventoryItem
	err = q.Scopes(pagination.Scope("inventory_items", cursor, params.Limit)).
		Find(&items).Error
	return items, err
}

func (r *repository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InventoryItem{})
	return res.RowsAffected, res.Error
}

func (r *repository) ProviderExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Provider{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
