package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "*_create_inventory_items.sql"), []string{
		"CREATE TABLE IF NOT EXISTS inventory_items",
		"FOREIGN KEY (provider_id) REFERENCES providers(id) ON DELETE SET NULL",
		"quantity numeric(12,3) NOT NULL DEFAULT 0",
		"low_stock_alert numeric(12,3)",
		"DROP TABLE IF EXISTS inventory_items",
	})
}

func TestOrdersMigrationCascadesItems(t *testing.T) {
	assertContains(t, readMigration(t, "*_create_orders.sql"), []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"status order_status NOT NULL DEFAULT 'PENDING'",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS order_items",
	})
}

func TestProviderOrdersMigrationPreventsDuplicateLines(t *testing.T) {
	assertContains(t, readMigration(t, "*_create_provider_orders.sql"), []string{
		"CREATE TABLE IF NOT EXISTS provider_orders",
		"status provider_order_status NOT NULL DEFAULT 'PENDING'",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_provider_order_items_item ON provider_order_items (provider_order_id, admin_item_id)",
	})
}

func TestCustomerInventoryMigrationUniqueGrant(t *testing.T) {
	assertContains(t, readMigration(t, "*_create_customer_inventories.sql"), []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_customer_inventories_customer",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_customer_inventory_items",
	})
}
