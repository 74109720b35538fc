package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

// Repository manages persistence for stock movements. Rows are never updated.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, movement *models.StockMovement) error
	ListByItem(ctx context.Context, itemID uuid.UUID, params pagination.Params) ([]models.StockMovement, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.StockMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock movement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListByItem(ctx context.Context, itemID uuid.UUID, params pagination.Params) ([]models.StockMovement, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	var movements []models.StockMovement
	err = r.db.WithContext(ctx).
		Where("stock_movements.admin_item_id = ?", itemID).
		Scopes(pagination.Scope("stock_movements", cursor, params.Limit)).
		Find(&movements).Error
	return movements, err
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&movements).Error
	return movements, err
}
