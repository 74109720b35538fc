package restock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/internal/inventory"
	"github.com/angelmondragon/wholesale-backoffice/internal/ledger"
	"github.com/angelmondragon/wholesale-backoffice/internal/testdb"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client, conn := testdb.OpenClient(t)
	stock, err := inventory.NewLedger(inventory.NewRepository(conn))
	require.NoError(t, err)
	journal, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(conn), stock, journal, client, outbox.NewService(outbox.NewRepository(conn), logger.Nop()), nil)
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return svc, conn
}

func addLine(t *testing.T, tx *gorm.DB, order *models.ProviderOrder, item *models.InventoryItem, qty string) {
	t.Helper()
	line := &models.ProviderOrderItem{
		ProviderOrderID: order.ID,
		AdminItemID:     item.ID,
		ItemName:        item.Name,
		Unit:            item.Unit,
		Quantity:        testdb.Dec(t, qty),
	}
	require.NoError(t, tx.Create(line).Error)
}

func TestUpdateStatusWalksPipeline(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	provider := testdb.MustCreateProvider(t, conn, "Farm")
	lettuce := testdb.MustCreateItem(t, conn, "Lettuce", "15", "1.00", "20", &provider.ID)
	order := testdb.MustCreateProviderOrder(t, conn, provider.ID, enums.ProviderOrderStatusPending)
	addLine(t, conn, order, lettuce, "25")

	sent, err := svc.UpdateStatus(ctx, order.ID, enums.ProviderOrderStatusSent)
	require.NoError(t, err)
	assert.Equal(t, enums.ProviderOrderStatusSent, sent.Status)
	assert.True(t, sent.EmailSent)
	require.NotNil(t, sent.EmailSentAt)
	require.NotNil(t, sent.Provider)
	assert.Equal(t, "Farm", sent.Provider.Name)

	_, err = svc.UpdateStatus(ctx, order.ID, enums.ProviderOrderStatusConfirmed)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, enums.ProviderOrderStatusShipped)
	require.NoError(t, err)
	assert.True(t, testdb.Quantity(t, conn, lettuce.ID).Equal(testdb.Dec(t, "15")))

	received, err := svc.UpdateStatus(ctx, order.ID, enums.ProviderOrderStatusReceived)
	require.NoError(t, err)
	assert.Equal(t, enums.ProviderOrderStatusReceived, received.Status)
	assert.NotNil(t, received.ReceivedAt)
	assert.True(t, testdb.Quantity(t, conn, lettuce.ID).Equal(testdb.Dec(t, "40")))

	var movements []models.StockMovement
	require.NoError(t, conn.Where("admin_item_id = ?", lettuce.ID).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, enums.StockMovementProviderOrderReceived, movements[0].Reason)
	require.NotNil(t, movements[0].ProviderOrderID)
	assert.Equal(t, order.ID, *movements[0].ProviderOrderID)
	assert.Equal(t, "25", movements[0].Delta.String())
	assert.Equal(t, "15", movements[0].QuantityBefore.String())
	assert.Equal(t, "40", movements[0].QuantityAfter.String())

	_, err = svc.UpdateStatus(ctx, order.ID, enums.ProviderOrderStatusCancelled)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition))
	assert.True(t, testdb.Quantity(t, conn, lettuce.ID).Equal(testdb.Dec(t, "40")))
}

func TestUpdateStatusRejections(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	provider := testdb.MustCreateProvider(t, conn, "Farm")
	order := testdb.MustCreateProviderOrder(t, conn, provider.ID, enums.ProviderOrderStatusPending)

	_, err := svc.UpdateStatus(ctx, order.ID, enums.ProviderOrderStatusPending)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNoOp))

	_, err = svc.UpdateStatus(ctx, order.ID, enums.ProviderOrderStatusReceived)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition))

	_, err = svc.UpdateStatus(ctx, order.ID, enums.ProviderOrderStatus("LOST"))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateStatus(ctx, uuid.New(), enums.ProviderOrderStatusSent)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	cancelled, err := svc.UpdateStatus(ctx, order.ID, enums.ProviderOrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, enums.ProviderOrderStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.EmailSent)
}

func TestProviderOrderReads(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	farm := testdb.MustCreateProvider(t, conn, "Farm")
	dairy := testdb.MustCreateProvider(t, conn, "Dairy")
	milk := testdb.MustCreateItem(t, conn, "Milk", "1", "1.20", "", &dairy.ID)
	testdb.MustCreateProviderOrder(t, conn, farm.ID, enums.ProviderOrderStatusPending)
	testdb.MustCreateProviderOrder(t, conn, farm.ID, enums.ProviderOrderStatusSent)
	dairyOrder := testdb.MustCreateProviderOrder(t, conn, dairy.ID, enums.ProviderOrderStatusPending)
	addLine(t, conn, dairyOrder, milk, "39")

	all, err := svc.List(ctx, pagination.Params{}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, all.Orders, 3)

	pending := enums.ProviderOrderStatusPending
	byStatus, err := svc.List(ctx, pagination.Params{}, ListFilters{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, byStatus.Orders, 2)

	byProvider, err := svc.List(ctx, pagination.Params{}, ListFilters{ProviderID: &farm.ID})
	require.NoError(t, err)
	assert.Len(t, byProvider.Orders, 2)

	got, err := svc.Get(ctx, dairyOrder.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Provider)
	assert.Equal(t, "Dairy", got.Provider.Name)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Milk", got.Items[0].ItemName)

	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCanTransitionTerminal(t *testing.T) {
	for _, to := range []enums.ProviderOrderStatus{
		enums.ProviderOrderStatusPending,
		enums.ProviderOrderStatusSent,
		enums.ProviderOrderStatusCancelled,
	} {
		assert.False(t, CanTransition(enums.ProviderOrderStatusReceived, to))
		assert.False(t, CanTransition(enums.ProviderOrderStatusCancelled, to))
	}
	assert.True(t, CanTransition(enums.ProviderOrderStatusShipped, enums.ProviderOrderStatusCancelled))
}
