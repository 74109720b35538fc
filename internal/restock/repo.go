package restock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

// Repository persists provider orders and their restock lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.ProviderOrder) error
	CreateItems(ctx context.Context, items []models.ProviderOrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ProviderOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ProviderOrder, error)
	FindOldestPending(ctx context.Context, providerID uuid.UUID) (*models.ProviderOrder, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.ProviderOrder, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.ProviderOrder) error {
	return r.db.WithContext(ctx).Omit("Items", "Provider").Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.ProviderOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ProviderOrder, error) {
	var order models.ProviderOrder
	err := r.db.WithContext(ctx).
		Preload("Provider").
		Preload("Items", itemsOrdered).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ProviderOrder, error) {
	var order models.ProviderOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// FindOldestPending locks the provider's earliest PENDING order so concurrent
// planner runs append to the same row.
func (r *repository) FindOldestPending(ctx context.Context, providerID uuid.UUID) (*models.ProviderOrder, error) {
	var order models.ProviderOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("provider_id = ? AND status = ?", providerID, enums.ProviderOrderStatusPending).
		Order("created_at ASC").
		Order("id ASC").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.ProviderOrder, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).
		Model(&models.ProviderOrder{}).
		Preload("Provider").
		Preload("Items", itemsOrdered)
	if filters.Status != nil {
		q = q.Where("provider_orders.status = ?", *filters.Status)
	}
	if filters.ProviderID != nil {
		q = q.Where("provider_orders.provider_id = ?", *filters.ProviderID)
	}

	var orders []models.ProviderOrder
	err = q.Scopes(pagination.Scope("provider_orders", cursor, params.Limit)).
		Find(&orders).Error
	return orders, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.ProviderOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) loadItems(ctx context.Context, order *models.ProviderOrder) error {
	return r.db.WithContext(ctx).
		Scopes(itemsOrdered).
		Where("provider_order_id = ?", order.ID).
		Find(&order.Items).Error
}

func itemsOrdered(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}
