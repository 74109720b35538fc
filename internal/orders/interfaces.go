package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/internal/inventory"
	"github.com/angelmondragon/wholesale-backoffice/internal/ledger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

// Repository defines persistence operations for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, error)
	FindPendingPastDeadline(ctx context.Context, now time.Time) ([]models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Catalog is the read side the validator resolves customers and admin items against.
type Catalog interface {
	WithTx(tx *gorm.DB) Catalog
	FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindCustomerInventory(ctx context.Context, customerID uuid.UUID) (*models.CustomerInventory, error)
	IsGranted(ctx context.Context, inventoryID, adminItemID uuid.UUID) (bool, error)
	FindItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
}

// StockLedger moves admin inventory quantities inside the caller's transaction.
type StockLedger interface {
	Decrement(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, amount decimal.Decimal) (inventory.Movement, error)
	Increment(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, amount decimal.Decimal) (inventory.Movement, error)
}

// StockJournal records each ledger movement next to the change that caused it.
type StockJournal interface {
	Record(ctx context.Context, tx *gorm.DB, entry ledger.Entry) (*models.StockMovement, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}
