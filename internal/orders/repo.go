package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items", "Customer").Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", orderItemsOrdered).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate locks the order row, then loads its items unlocked.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	items, err := r.FindItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *repository) FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := orderItemsOrdered(r.db.WithContext(ctx)).
		Where("order_id = ?", orderID).
		Find(&items).Error
	return items, err
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Customer").
		Preload("Items", orderItemsOrdered)
	if filters.Status != nil {
		q = q.Where("orders.status = ?", *filters.Status)
	}
	if filters.CustomerID != nil {
		q = q.Where("orders.customer_id = ?", *filters.CustomerID)
	}

	var orders []models.Order
	err = q.Scopes(pagination.Scope("orders", cursor, params.Limit)).
		Find(&orders).Error
	return orders, err
}

// FindPendingPastDeadline returns PENDING orders whose payment deadline is before now, oldest first.
func (r *repository) FindPendingPastDeadline(ctx context.Context, now time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.OrderStatusPending).
		Where("payment_deadline IS NOT NULL AND payment_deadline < ?", now).
		Order("payment_deadline ASC").
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the order and its items. Items go first so stores without
// cascading foreign keys end up in the same state.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&models.Order{}).Error
}

func orderItemsOrdered(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC").Order("created_at ASC").Order("id ASC")
}
