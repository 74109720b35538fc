// Package testdb opens throwaway in-memory sqlite databases carrying the back office schema.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/wholesale-backoffice/pkg/db"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
)

// schema mirrors pkg/migrate/migrations with sqlite column types.
var schema = []string{
	`CREATE TABLE categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE providers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		contact_name TEXT,
		email TEXT,
		phone TEXT,
		address TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		address TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE inventory_items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		quantity NUMERIC NOT NULL DEFAULT 0,
		unit TEXT NOT NULL,
		price_per_unit NUMERIC,
		low_stock_alert NUMERIC,
		provider_id TEXT,
		category_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE customer_inventories (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL UNIQUE,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE customer_inventory_items (
		id TEXT PRIMARY KEY,
		customer_inventory_id TEXT NOT NULL,
		admin_item_id TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE (customer_inventory_id, admin_item_id)
	)`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		total_amount NUMERIC NOT NULL DEFAULT 0,
		notes TEXT,
		payment_deadline DATETIME,
		cancelled_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		admin_item_id TEXT NOT NULL,
		line_no INTEGER NOT NULL DEFAULT 0,
		item_name TEXT NOT NULL,
		unit TEXT NOT NULL,
		quantity NUMERIC NOT NULL,
		price_per_unit NUMERIC NOT NULL DEFAULT 0,
		total_price NUMERIC NOT NULL DEFAULT 0,
		created_at DATETIME
	)`,
	`CREATE TABLE provider_orders (
		id TEXT PRIMARY KEY,
		provider_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		total_amount NUMERIC NOT NULL DEFAULT 0,
		notes TEXT,
		email_sent BOOLEAN NOT NULL DEFAULT 0,
		email_sent_at DATETIME,
		received_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE provider_order_items (
		id TEXT PRIMARY KEY,
		provider_order_id TEXT NOT NULL,
		admin_item_id TEXT NOT NULL,
		item_name TEXT NOT NULL,
		unit TEXT NOT NULL,
		quantity NUMERIC NOT NULL,
		price_per_unit NUMERIC NOT NULL DEFAULT 0,
		total_price NUMERIC NOT NULL DEFAULT 0,
		created_at DATETIME,
		UNIQUE (provider_order_id, admin_item_id)
	)`,
	`CREATE TABLE stock_movements (
		id TEXT PRIMARY KEY,
		admin_item_id TEXT NOT NULL,
		order_id TEXT,
		provider_order_id TEXT,
		reason TEXT NOT NULL,
		delta NUMERIC NOT NULL,
		quantity_before NUMERIC NOT NULL,
		quantity_after NUMERIC NOT NULL,
		note TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`,
}

// Open returns a fresh in-memory database private to t.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// OpenClient wraps Open in a db.Client so services get a real WithTx.
func OpenClient(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.NewFromGorm(conn), conn
}

// Dec parses a decimal literal, failing the test on bad input.
func Dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}

// DecPtr is Dec returning a pointer.
func DecPtr(t *testing.T, value string) *decimal.Decimal {
	t.Helper()
	d := Dec(t, value)
	return &d
}

func MustCreateProvider(t *testing.T, tx *gorm.DB, name string) *models.Provider {
	t.Helper()
	provider := &models.Provider{Name: name}
	if err := tx.Create(provider).Error; err != nil {
		t.Fatalf("create provider: %v", err)
	}
	return provider
}

func MustCreateCategory(t *testing.T, tx *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	if err := tx.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

// MustCreateItem inserts an admin item; price and threshold may be empty to leave them unset.
func MustCreateItem(t *testing.T, tx *gorm.DB, name, quantity, price, threshold string, providerID *uuid.UUID) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		Name:       name,
		Quantity:   Dec(t, quantity),
		Unit:       "kg",
		ProviderID: providerID,
	}
	if price != "" {
		item.PricePerUnit = DecPtr(t, price)
	}
	if threshold != "" {
		item.LowStockAlert = DecPtr(t, threshold)
	}
	if err := tx.Create(item).Error; err != nil {
		t.Fatalf("create inventory item: %v", err)
	}
	return item
}

// MustCreateCustomer inserts a customer together with its (empty) customer inventory.
func MustCreateCustomer(t *testing.T, tx *gorm.DB, name string) *models.Customer {
	t.Helper()
	customer := &models.Customer{Name: name}
	if err := tx.Create(customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	inventory := &models.CustomerInventory{CustomerID: customer.ID}
	if err := tx.Create(inventory).Error; err != nil {
		t.Fatalf("create customer inventory: %v", err)
	}
	customer.Inventory = inventory
	return customer
}

// MustGrant adds itemID to the customer's inventory.
func MustGrant(t *testing.T, tx *gorm.DB, customer *models.Customer, itemID uuid.UUID) {
	t.Helper()
	if customer.Inventory == nil {
		t.Fatalf("customer %s has no inventory", customer.ID)
	}
	grant := &models.CustomerInventoryItem{
		CustomerInventoryID: customer.Inventory.ID,
		AdminItemID:         itemID,
	}
	if err := tx.Create(grant).Error; err != nil {
		t.Fatalf("grant item: %v", err)
	}
}

// MustCreateProviderOrder inserts a provider order with no lines.
func MustCreateProviderOrder(t *testing.T, tx *gorm.DB, providerID uuid.UUID, status enums.ProviderOrderStatus) *models.ProviderOrder {
	t.Helper()
	order := &models.ProviderOrder{ProviderID: providerID, Status: status}
	if err := tx.Create(order).Error; err != nil {
		t.Fatalf("create provider order: %v", err)
	}
	return order
}

// Quantity reloads an item's stock level.
func Quantity(t *testing.T, tx *gorm.DB, itemID uuid.UUID) decimal.Decimal {
	t.Helper()
	var item models.InventoryItem
	if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	return item.Quantity
}
