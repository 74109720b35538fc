package restock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/internal/inventory"
	"github.com/angelmondragon/wholesale-backoffice/internal/testdb"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/metrics"
	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox"
)

type plannerHarness struct {
	conn    *gorm.DB
	planner *Planner
	repo    Repository
	events  *outbox.Repository
}

func newPlannerHarness(t *testing.T) *plannerHarness {
	t.Helper()
	client, conn := testdb.OpenClient(t)
	repo := NewRepository(conn)
	events := outbox.NewRepository(conn)
	planner, err := NewPlanner(PlannerParams{
		Repo:       repo,
		Items:      inventory.NewRepository(conn),
		Tx:         client,
		Outbox:     outbox.NewService(events, logger.Nop()),
		Multiplier: decimal.NewFromInt(2),
		Metrics:    metrics.NewOrderMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return &plannerHarness{conn: conn, planner: planner, repo: repo, events: events}
}

func (h *plannerHarness) providerOrders(t *testing.T, providerID uuid.UUID) []models.ProviderOrder {
	t.Helper()
	var orders []models.ProviderOrder
	require.NoError(t, h.conn.
		Preload("Items").
		Where("provider_id = ?", providerID).
		Order("created_at ASC").
		Find(&orders).Error)
	return orders
}

func TestRestockQuantity(t *testing.T) {
	two := decimal.NewFromInt(2)
	cases := []struct {
		name      string
		quantity  string
		threshold string
		want      string
	}{
		{"explicit threshold", "15", "20", "25"},
		{"default threshold", "5", "", "35"},
		{"negative stock", "-4", "10", "24"},
		{"already above target", "50", "20", "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := models.InventoryItem{Quantity: testdb.Dec(t, tc.quantity)}
			if tc.threshold != "" {
				item.LowStockAlert = testdb.DecPtr(t, tc.threshold)
			}
			assert.True(t, RestockQuantity(item, two).Equal(testdb.Dec(t, tc.want)))
		})
	}
}

func TestRestockQuantityStaysWithinColumnScale(t *testing.T) {
	item := models.InventoryItem{
		Quantity:      testdb.Dec(t, "10.001"),
		LowStockAlert: testdb.DecPtr(t, "12.345"),
	}
	qty := RestockQuantity(item, testdb.Dec(t, "1.5"))
	assert.Equal(t, "8.517", qty.String())
}

func TestCheckAndCreateOrdersSelectsLowStockOnly(t *testing.T) {
	h := newPlannerHarness(t)
	provider := testdb.MustCreateProvider(t, h.conn, "Farm")
	low := testdb.MustCreateItem(t, h.conn, "Lettuce", "15", "1.00", "20", &provider.ID)
	testdb.MustCreateItem(t, h.conn, "Cabbage", "25", "1.00", "20", &provider.ID)
	testdb.MustCreateItem(t, h.conn, "Loose", "1", "1.00", "20", nil)

	summary, err := h.planner.CheckAndCreateOrders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.LowStockCount)
	assert.Equal(t, 1, summary.SkippedNoProvider)
	require.Len(t, summary.CreatedOrderIDs, 1)
	assert.Empty(t, summary.AppendedOrderIDs)

	orders := h.providerOrders(t, provider.ID)
	require.Len(t, orders, 1)
	assert.Equal(t, enums.ProviderOrderStatusPending, orders[0].Status)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, low.ID, orders[0].Items[0].AdminItemID)
	assert.True(t, orders[0].Items[0].Quantity.Equal(decimal.NewFromInt(25)))
	assert.True(t, orders[0].TotalAmount.Equal(decimal.NewFromInt(25)))

	events, err := h.events.ListForAggregate(orders[0].ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventProviderOrderCreated, events[0].EventType)
}

func TestCheckAndCreateOrdersDoesNotDuplicateOnRerun(t *testing.T) {
	h := newPlannerHarness(t)
	ctx := context.Background()
	provider := testdb.MustCreateProvider(t, h.conn, "Farm")
	testdb.MustCreateItem(t, h.conn, "Lettuce", "15", "1.00", "20", &provider.ID)
	testdb.MustCreateItem(t, h.conn, "Kale", "2", "3.00", "", &provider.ID)

	first, err := h.planner.CheckAndCreateOrders(ctx)
	require.NoError(t, err)
	require.Len(t, first.CreatedOrderIDs, 1)

	second, err := h.planner.CheckAndCreateOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, second.CreatedOrderIDs)
	assert.Empty(t, second.AppendedOrderIDs)

	orders := h.providerOrders(t, provider.ID)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 2)
}

func TestCheckAndCreateOrdersAppendsToOldestPending(t *testing.T) {
	h := newPlannerHarness(t)
	ctx := context.Background()
	provider := testdb.MustCreateProvider(t, h.conn, "Farm")
	lettuce := testdb.MustCreateItem(t, h.conn, "Lettuce", "15", "1.00", "20", &provider.ID)

	_, err := h.planner.CheckAndCreateOrders(ctx)
	require.NoError(t, err)
	orders := h.providerOrders(t, provider.ID)
	require.Len(t, orders, 1)
	pending := orders[0]

	kale := testdb.MustCreateItem(t, h.conn, "Kale", "2", "3.00", "", &provider.ID)
	summary, err := h.planner.CheckAndCreateOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary.CreatedOrderIDs)
	assert.Equal(t, []uuid.UUID{pending.ID}, summary.AppendedOrderIDs)

	orders = h.providerOrders(t, provider.ID)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 2)
	seen := map[uuid.UUID]decimal.Decimal{}
	for _, item := range orders[0].Items {
		seen[item.AdminItemID] = item.Quantity
	}
	assert.True(t, seen[lettuce.ID].Equal(decimal.NewFromInt(25)))
	assert.True(t, seen[kale.ID].Equal(decimal.NewFromInt(38)))
	// 25 * 1.00 + 38 * 3.00
	assert.True(t, orders[0].TotalAmount.Equal(decimal.NewFromInt(139)), orders[0].TotalAmount.String())
}

func TestCheckAndCreateOrdersIgnoresSentOrders(t *testing.T) {
	h := newPlannerHarness(t)
	provider := testdb.MustCreateProvider(t, h.conn, "Farm")
	sent := testdb.MustCreateProviderOrder(t, h.conn, provider.ID, enums.ProviderOrderStatusSent)
	testdb.MustCreateItem(t, h.conn, "Lettuce", "15", "1.00", "20", &provider.ID)

	summary, err := h.planner.CheckAndCreateOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.CreatedOrderIDs, 1)
	assert.NotEqual(t, sent.ID, summary.CreatedOrderIDs[0])
	assert.Len(t, h.providerOrders(t, provider.ID), 2)
}

func TestCheckAndCreateOrdersGroupsByProvider(t *testing.T) {
	h := newPlannerHarness(t)
	farm := testdb.MustCreateProvider(t, h.conn, "Farm")
	dairy := testdb.MustCreateProvider(t, h.conn, "Dairy")
	testdb.MustCreateItem(t, h.conn, "Lettuce", "15", "1.00", "20", &farm.ID)
	testdb.MustCreateItem(t, h.conn, "Kale", "1", "1.00", "20", &farm.ID)
	testdb.MustCreateItem(t, h.conn, "Milk", "3", "1.00", "20", &dairy.ID)

	summary, err := h.planner.CheckAndCreateOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.LowStockCount)
	assert.Len(t, summary.CreatedOrderIDs, 2)

	farmOrders := h.providerOrders(t, farm.ID)
	require.Len(t, farmOrders, 1)
	assert.Len(t, farmOrders[0].Items, 2)
	dairyOrders := h.providerOrders(t, dairy.ID)
	require.Len(t, dairyOrders, 1)
	assert.Len(t, dairyOrders[0].Items, 1)
}

func TestNewPlannerRequiresDependencies(t *testing.T) {
	_, err := NewPlanner(PlannerParams{})
	assert.Error(t, err)
}
