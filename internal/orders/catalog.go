package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
)

type catalog struct {
	db *gorm.DB
}

// NewCatalog builds the validator's read model over customers and admin items.
func NewCatalog(db *gorm.DB) Catalog {
	return &catalog{db: db}
}

func (c *catalog) WithTx(tx *gorm.DB) Catalog {
	if tx == nil {
		return c
	}
	return &catalog{db: tx}
}

func (c *catalog) FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *catalog) FindCustomerInventory(ctx context.Context, customerID uuid.UUID) (*models.CustomerInventory, error) {
	var inv models.CustomerInventory
	if err := c.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (c *catalog) IsGranted(ctx context.Context, inventoryID, adminItemID uuid.UUID) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.CustomerInventoryItem{}).
		Where("customer_inventory_id = ? AND admin_item_id = ?", inventoryID, adminItemID).
		Count(&count).Error
	return count > 0, err
}

func (c *catalog) FindItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}
